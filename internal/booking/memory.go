package booking

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-process Store. Inserts re-check uniqueness, capacity
// and session exclusion under the write lock, so the store stays consistent
// even when callers skip the Locker.
type MemoryStore struct {
	mu            sync.RWMutex
	members       map[int]struct{}
	trainers      map[int]struct{}
	rooms         map[int]struct{}
	classCapacity map[int]int
	registrations []ClassRegistration
	sessions      []PTSession
	metrics       []HealthMetric
	nextRegID     int
	nextSessionID int
	nextMetricID  int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		members:       make(map[int]struct{}),
		trainers:      make(map[int]struct{}),
		rooms:         make(map[int]struct{}),
		classCapacity: make(map[int]int),
	}
}

func (s *MemoryStore) AddMember(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[id] = struct{}{}
}

func (s *MemoryStore) AddTrainer(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trainers[id] = struct{}{}
}

func (s *MemoryStore) AddRoom(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[id] = struct{}{}
}

func (s *MemoryStore) AddClass(id, capacity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.classCapacity[id] = capacity
}

func (s *MemoryStore) AddMetric(m HealthMetric) HealthMetric {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextMetricID++
	m.ID = s.nextMetricID
	s.metrics = append(s.metrics, m)
	return m
}

func (s *MemoryStore) MemberExists(_ context.Context, memberID int) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.members[memberID]
	return ok, nil
}

func (s *MemoryStore) TrainerExists(_ context.Context, trainerID int) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.trainers[trainerID]
	return ok, nil
}

func (s *MemoryStore) RoomExists(_ context.Context, roomID int) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rooms[roomID]
	return ok, nil
}

func (s *MemoryStore) GetClassCapacity(_ context.Context, classID int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	capacity, ok := s.classCapacity[classID]
	if !ok {
		return 0, &NotFoundError{Resource: ResourceKey{Kind: KindClass, ID: classID}}
	}
	return capacity, nil
}

func (s *MemoryStore) CountRegistrations(_ context.Context, classID int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countRegistrations(classID), nil
}

func (s *MemoryStore) countRegistrations(classID int) int {
	n := 0
	for _, r := range s.registrations {
		if r.ClassID == classID {
			n++
		}
	}
	return n
}

func (s *MemoryStore) HasRegistration(_ context.Context, memberID, classID int) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasRegistration(memberID, classID), nil
}

func (s *MemoryStore) hasRegistration(memberID, classID int) bool {
	for _, r := range s.registrations {
		if r.MemberID == memberID && r.ClassID == classID {
			return true
		}
	}
	return false
}

func (s *MemoryStore) InsertRegistration(_ context.Context, memberID, classID int, at time.Time) (*ClassRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	classKey := ResourceKey{Kind: KindClass, ID: classID}
	capacity, ok := s.classCapacity[classID]
	if !ok {
		return nil, &NotFoundError{Resource: classKey}
	}
	if _, ok := s.members[memberID]; !ok {
		return nil, &NotFoundError{Resource: ResourceKey{Kind: KindMember, ID: memberID}}
	}
	if s.countRegistrations(classID) >= capacity {
		return nil, &ConflictError{Reason: ErrCapacityExceeded, Resource: classKey}
	}
	if s.hasRegistration(memberID, classID) {
		return nil, &ConflictError{Reason: ErrDuplicateRegistration, Resource: classKey}
	}

	s.nextRegID++
	reg := ClassRegistration{
		ID:           s.nextRegID,
		MemberID:     memberID,
		ClassID:      classID,
		RegisteredAt: at,
	}
	s.registrations = append(s.registrations, reg)
	return &reg, nil
}

func (s *MemoryStore) FindOverlapping(_ context.Context, kind ResourceKind, id int, start, end time.Time) ([]PTSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.overlapping(kind, id, start, end), nil
}

func (s *MemoryStore) overlapping(kind ResourceKind, id int, start, end time.Time) []PTSession {
	var out []PTSession
	for _, existing := range s.sessions {
		if existing.ResourceID(kind) == id && Overlaps(existing.StartTime, existing.EndTime, start, end) {
			out = append(out, existing)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out
}

func (s *MemoryStore) InsertPTSession(_ context.Context, session PTSession) (*PTSession, error) {
	if !session.EndTime.After(session.StartTime) {
		return nil, &ValidationError{Field: "end_time", Err: ErrInvalidInterval}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, res := range sessionResources {
		id := session.ResourceID(res.kind)
		if hits := s.overlapping(res.kind, id, session.StartTime, session.EndTime); len(hits) > 0 {
			return nil, &ConflictError{
				Reason:    res.reason,
				Resource:  ResourceKey{Kind: res.kind, ID: id},
				SessionID: hits[0].ID,
			}
		}
	}

	s.nextSessionID++
	session.ID = s.nextSessionID
	s.sessions = append(s.sessions, session)
	return &session, nil
}

func (s *MemoryStore) GetLatestMetric(_ context.Context, memberID int) (*HealthMetric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *HealthMetric
	for i := range s.metrics {
		m := s.metrics[i]
		if m.MemberID != memberID {
			continue
		}
		if latest == nil || m.MeasuredAt.After(latest.MeasuredAt) ||
			(m.MeasuredAt.Equal(latest.MeasuredAt) && m.ID > latest.ID) {
			latest = &m
		}
	}
	return latest, nil
}

func (s *MemoryStore) CountRegistrationsForMember(_ context.Context, memberID int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, r := range s.registrations {
		if r.MemberID == memberID {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) CountFuturePTSessions(_ context.Context, memberID int, now time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, session := range s.sessions {
		if session.MemberID == memberID && session.StartTime.After(now) {
			n++
		}
	}
	return n, nil
}

// InTx runs fn directly. Each insert is atomic on its own and a booking
// performs at most one write, so there is nothing to roll back.
func (s *MemoryStore) InTx(_ context.Context, _ []ResourceKey, fn func(Store) error) error {
	return fn(s)
}
