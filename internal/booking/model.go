package booking

import (
	"fmt"
	"sort"
	"time"
)

type ResourceKind string

const (
	KindClass   ResourceKind = "class"
	KindMember  ResourceKind = "member"
	KindRoom    ResourceKind = "room"
	KindTrainer ResourceKind = "trainer"
)

// ResourceKey names one schedulable resource, e.g. "trainer:42".
type ResourceKey struct {
	Kind ResourceKind
	ID   int
}

func (k ResourceKey) String() string {
	return fmt.Sprintf("%s:%d", k.Kind, k.ID)
}

// SortKeys returns a deduplicated copy of keys in canonical lock order.
func SortKeys(keys []ResourceKey) []ResourceKey {
	seen := make(map[ResourceKey]struct{}, len(keys))
	out := make([]ResourceKey, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].ID < out[j].ID
	})
	return out
}

type ClassRegistration struct {
	ID           int       `db:"registration_id" json:"registration_id"`
	MemberID     int       `db:"member_id" json:"member_id"`
	ClassID      int       `db:"class_id" json:"class_id"`
	RegisteredAt time.Time `db:"registered_at" json:"registered_at"`
}

type PTSession struct {
	ID        int       `db:"session_id" json:"session_id"`
	MemberID  int       `db:"member_id" json:"member_id"`
	TrainerID int       `db:"trainer_id" json:"trainer_id"`
	RoomID    int       `db:"room_id" json:"room_id"`
	StartTime time.Time `db:"start_time" json:"start_time"`
	EndTime   time.Time `db:"end_time" json:"end_time"`
}

func (s PTSession) Interval() Interval {
	return Interval{Start: s.StartTime, End: s.EndTime}
}

// ResourceID returns the id of the resource of the given kind held by the session.
func (s PTSession) ResourceID(kind ResourceKind) int {
	switch kind {
	case KindTrainer:
		return s.TrainerID
	case KindRoom:
		return s.RoomID
	case KindMember:
		return s.MemberID
	default:
		return 0
	}
}

type HealthMetric struct {
	ID          int       `db:"metric_id" json:"metric_id"`
	MemberID    int       `db:"member_id" json:"member_id"`
	MetricType  string    `db:"metric_type" json:"metric_type"`
	MetricValue float64   `db:"metric_value" json:"metric_value"`
	MeasuredAt  time.Time `db:"measured_at" json:"measured_at"`
}

// ScheduleRequest describes a PT session to be booked.
type ScheduleRequest struct {
	MemberID  int
	TrainerID int
	RoomID    int
	StartTime time.Time
	EndTime   time.Time
}

func (r ScheduleRequest) Interval() Interval {
	return Interval{Start: r.StartTime, End: r.EndTime}
}
