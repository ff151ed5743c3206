package dashboard

import (
	"context"
	"time"

	"fitclub/internal/booking"

	"golang.org/x/sync/errgroup"
)

// Reader is the slice of the booking store the dashboard needs.
type Reader interface {
	MemberExists(ctx context.Context, memberID int) (bool, error)
	GetLatestMetric(ctx context.Context, memberID int) (*booking.HealthMetric, error)
	CountRegistrationsForMember(ctx context.Context, memberID int) (int, error)
	CountFuturePTSessions(ctx context.Context, memberID int, now time.Time) (int, error)
}

// Dashboard summarizes a member's state. The latest metric fields are nil
// when the member has no metrics yet.
type Dashboard struct {
	MemberID               int        `json:"member_id"`
	LatestMetricValue      *float64   `json:"latest_metric_value"`
	LatestMetricType       *string    `json:"latest_metric_type"`
	LatestMeasuredAt       *time.Time `json:"latest_measured_at"`
	TotalClassesRegistered int        `json:"total_classes_registered"`
	UpcomingPTSessions     int        `json:"upcoming_pt_sessions"`
}

type Service interface {
	GetMemberDashboard(ctx context.Context, memberID int) (*Dashboard, error)
}

type service struct {
	reader Reader
	now    func() time.Time
}

func NewService(reader Reader, now func() time.Time) Service {
	if now == nil {
		now = time.Now
	}
	return &service{reader: reader, now: now}
}

func (s *service) GetMemberDashboard(ctx context.Context, memberID int) (*Dashboard, error) {
	if memberID <= 0 {
		return nil, &booking.ValidationError{Field: "member_id", Err: booking.ErrInvalidID}
	}

	ok, err := s.reader.MemberExists(ctx, memberID)
	if err != nil {
		return nil, &booking.InfrastructureError{Op: "check member", Err: err}
	}
	if !ok {
		return nil, &booking.NotFoundError{Resource: booking.ResourceKey{Kind: booking.KindMember, ID: memberID}}
	}

	now := s.now()
	d := &Dashboard{MemberID: memberID}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := s.reader.GetLatestMetric(gctx, memberID)
		if err != nil {
			return &booking.InfrastructureError{Op: "latest metric", Err: err}
		}
		if m != nil {
			d.LatestMetricValue = &m.MetricValue
			d.LatestMetricType = &m.MetricType
			d.LatestMeasuredAt = &m.MeasuredAt
		}
		return nil
	})
	g.Go(func() error {
		n, err := s.reader.CountRegistrationsForMember(gctx, memberID)
		if err != nil {
			return &booking.InfrastructureError{Op: "count registrations", Err: err}
		}
		d.TotalClassesRegistered = n
		return nil
	})
	g.Go(func() error {
		n, err := s.reader.CountFuturePTSessions(gctx, memberID, now)
		if err != nil {
			return &booking.InfrastructureError{Op: "count upcoming sessions", Err: err}
		}
		d.UpcomingPTSessions = n
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}
