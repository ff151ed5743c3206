package booking

import (
	"context"
	"errors"
	"time"

	"fitclub/internal/logger"
	"fitclub/internal/metrics"
)

const (
	OpRegisterClass     = "register_class"
	OpSchedulePTSession = "schedule_pt_session"

	EventClassRegistered     = "class.registered"
	EventPTSessionScheduled  = "pt_session.scheduled"
	outcomeAccepted          = "accepted"
	defaultSideEffectTimeout = 5 * time.Second
)

// sessionResources lists the resources a PT session holds, in the order
// conflicts are reported.
var sessionResources = []struct {
	kind   ResourceKind
	reason error
}{
	{KindTrainer, ErrTrainerUnavailable},
	{KindRoom, ErrRoomUnavailable},
	{KindMember, ErrMemberDoubleBooked},
}

type Service interface {
	RegisterForClass(ctx context.Context, memberID, classID int) (*ClassRegistration, error)
	SchedulePTSession(ctx context.Context, req ScheduleRequest) (*PTSession, error)
}

// Notifier sends confirmations after a booking is committed.
type Notifier interface {
	NotifyClassRegistration(ctx context.Context, reg ClassRegistration) error
	NotifyPTSession(ctx context.Context, session PTSession) error
}

// EventPublisher hands committed bookings to a message broker.
type EventPublisher interface {
	Publish(ctx context.Context, eventType, key string, payload any) error
}

type Option func(*service)

func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

func WithNotifier(n Notifier) Option {
	return func(s *service) { s.notifier = n }
}

func WithPublisher(p EventPublisher) Option {
	return func(s *service) { s.publisher = p }
}

type service struct {
	store     Store
	locker    Locker
	now       func() time.Time
	notifier  Notifier
	publisher EventPublisher
}

func NewService(store Store, locker Locker, opts ...Option) Service {
	s := &service{
		store:  store,
		locker: locker,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) RegisterForClass(ctx context.Context, memberID, classID int) (*ClassRegistration, error) {
	started := time.Now()

	if err := validateID("member_id", memberID); err != nil {
		return nil, s.reject(OpRegisterClass, started, err)
	}
	if err := validateID("class_id", classID); err != nil {
		return nil, s.reject(OpRegisterClass, started, err)
	}

	classKey := ResourceKey{Kind: KindClass, ID: classID}

	var reg *ClassRegistration
	err := s.admit(ctx, OpRegisterClass, []ResourceKey{classKey}, func(tx Store) error {
		capacity, err := tx.GetClassCapacity(ctx, classID)
		if err != nil {
			return err
		}

		ok, err := tx.MemberExists(ctx, memberID)
		if err != nil {
			return err
		}
		if !ok {
			return &NotFoundError{Resource: ResourceKey{Kind: KindMember, ID: memberID}}
		}

		count, err := tx.CountRegistrations(ctx, classID)
		if err != nil {
			return err
		}
		if count >= capacity {
			return &ConflictError{Reason: ErrCapacityExceeded, Resource: classKey}
		}

		dup, err := tx.HasRegistration(ctx, memberID, classID)
		if err != nil {
			return err
		}
		if dup {
			return &ConflictError{Reason: ErrDuplicateRegistration, Resource: classKey}
		}

		reg, err = tx.InsertRegistration(ctx, memberID, classID, s.now())
		return err
	})
	if err != nil {
		return nil, s.reject(OpRegisterClass, started, err)
	}

	metrics.RecordAdmission(OpRegisterClass, outcomeAccepted, time.Since(started).Seconds())
	logger.Info("class registration accepted",
		"registration_id", reg.ID,
		"member_id", memberID,
		"class_id", classID,
	)

	s.afterCommit(ctx, EventClassRegistered, classKey.String(), *reg, func(ctx context.Context) error {
		if s.notifier == nil {
			return nil
		}
		return s.notifier.NotifyClassRegistration(ctx, *reg)
	})

	return reg, nil
}

func (s *service) SchedulePTSession(ctx context.Context, req ScheduleRequest) (*PTSession, error) {
	started := time.Now()

	if err := validateSchedule(req); err != nil {
		return nil, s.reject(OpSchedulePTSession, started, err)
	}

	keys := []ResourceKey{
		{Kind: KindTrainer, ID: req.TrainerID},
		{Kind: KindRoom, ID: req.RoomID},
		{Kind: KindMember, ID: req.MemberID},
	}
	candidate := PTSession{
		MemberID:  req.MemberID,
		TrainerID: req.TrainerID,
		RoomID:    req.RoomID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}

	var session *PTSession
	err := s.admit(ctx, OpSchedulePTSession, keys, func(tx Store) error {
		if err := checkExists(ctx, tx, candidate); err != nil {
			return err
		}

		for _, res := range sessionResources {
			id := candidate.ResourceID(res.kind)
			existing, err := tx.FindOverlapping(ctx, res.kind, id, candidate.StartTime, candidate.EndTime)
			if err != nil {
				return err
			}
			if hit, ok := firstOverlap(existing, candidate.Interval()); ok {
				return &ConflictError{
					Reason:    res.reason,
					Resource:  ResourceKey{Kind: res.kind, ID: id},
					SessionID: hit.ID,
				}
			}
		}

		var err error
		session, err = tx.InsertPTSession(ctx, candidate)
		return err
	})
	if err != nil {
		return nil, s.reject(OpSchedulePTSession, started, err)
	}

	metrics.RecordAdmission(OpSchedulePTSession, outcomeAccepted, time.Since(started).Seconds())
	logger.Info("pt session scheduled",
		"session_id", session.ID,
		"member_id", session.MemberID,
		"trainer_id", session.TrainerID,
		"room_id", session.RoomID,
		"start_time", session.StartTime,
	)

	key := ResourceKey{Kind: KindTrainer, ID: session.TrainerID}.String()
	s.afterCommit(ctx, EventPTSessionScheduled, key, *session, func(ctx context.Context) error {
		if s.notifier == nil {
			return nil
		}
		return s.notifier.NotifyPTSession(ctx, *session)
	})

	return session, nil
}

// admit holds the resource locks for exactly one check-and-insert
// transaction. The locks are released before any side effect runs.
func (s *service) admit(ctx context.Context, op string, keys []ResourceKey, fn func(Store) error) error {
	release, err := s.acquire(ctx, op, keys...)
	if err != nil {
		return err
	}
	defer release()

	if err := s.store.InTx(ctx, keys, fn); err != nil {
		return classify(op, err)
	}
	return nil
}

func (s *service) acquire(ctx context.Context, op string, keys ...ResourceKey) (func(), error) {
	waitStarted := time.Now()
	release, err := s.locker.Acquire(ctx, keys...)
	metrics.RecordLockWait(op, time.Since(waitStarted).Seconds())
	if err != nil {
		return nil, &InfrastructureError{Op: "acquire resource lock", Err: err}
	}
	return release, nil
}

// reject records a refused admission and returns err unchanged.
func (s *service) reject(op string, started time.Time, err error) error {
	metrics.RecordAdmission(op, Code(err), time.Since(started).Seconds())

	if errors.Is(err, ErrInfrastructure) {
		logger.Error("booking admission failed", "operation", op, "error", err)
	} else {
		logger.Debug("booking admission rejected", "operation", op, "code", Code(err), "error", err)
	}
	return err
}

// afterCommit runs the best-effort side effects of a committed booking.
// Failures are logged and never change the outcome.
func (s *service) afterCommit(ctx context.Context, eventType, key string, payload any, notify func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultSideEffectTimeout)
	defer cancel()

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, eventType, key, payload); err != nil {
			logger.Warn("failed to publish booking event", "type", eventType, "key", key, "error", err)
		}
	}
	if err := notify(ctx); err != nil {
		logger.Warn("failed to queue booking confirmation", "type", eventType, "error", err)
	}
}

func validateID(field string, id int) error {
	if id <= 0 {
		return &ValidationError{Field: field, Err: ErrInvalidID}
	}
	return nil
}

func validateSchedule(req ScheduleRequest) error {
	if err := req.Interval().Validate(); err != nil {
		return &ValidationError{Field: "end_time", Err: err}
	}
	if err := validateID("member_id", req.MemberID); err != nil {
		return err
	}
	if err := validateID("trainer_id", req.TrainerID); err != nil {
		return err
	}
	return validateID("room_id", req.RoomID)
}

func checkExists(ctx context.Context, tx Store, s PTSession) error {
	checks := []struct {
		kind   ResourceKind
		exists func(context.Context, int) (bool, error)
	}{
		{KindTrainer, tx.TrainerExists},
		{KindRoom, tx.RoomExists},
		{KindMember, tx.MemberExists},
	}
	for _, c := range checks {
		id := s.ResourceID(c.kind)
		ok, err := c.exists(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return &NotFoundError{Resource: ResourceKey{Kind: c.kind, ID: id}}
		}
	}
	return nil
}

// firstOverlap re-checks store results with Overlaps so every Store
// implementation is held to the same half-open semantics.
func firstOverlap(existing []PTSession, iv Interval) (PTSession, bool) {
	for _, e := range existing {
		if e.Interval().Overlaps(iv) {
			return e, true
		}
	}
	return PTSession{}, false
}
