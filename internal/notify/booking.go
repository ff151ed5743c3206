package notify

import (
	"context"
	"fmt"
	"time"

	"fitclub/internal/booking"
)

const (
	TypeClassRegistration = "class_registration"
	TypePTSession         = "pt_session"
)

// ContactLookup resolves where a member's confirmations go.
type ContactLookup interface {
	Contact(ctx context.Context, memberID int) (name, email string, err error)
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
}

// BookingNotifier turns committed bookings into confirmation emails.
type BookingNotifier struct {
	queue    Queue
	contacts ContactLookup
	location *time.Location
}

var _ booking.Notifier = (*BookingNotifier)(nil)

func NewBookingNotifier(queue Queue, contacts ContactLookup) *BookingNotifier {
	return &BookingNotifier{queue: queue, contacts: contacts, location: time.UTC}
}

func (n *BookingNotifier) NotifyClassRegistration(ctx context.Context, reg booking.ClassRegistration) error {
	return n.confirm(ctx, reg.MemberID, TypeClassRegistration, "Class registration",
		fmt.Sprintf("Class #%d, registration #%d", reg.ClassID, reg.ID), reg.RegisteredAt)
}

func (n *BookingNotifier) NotifyPTSession(ctx context.Context, session booking.PTSession) error {
	return n.confirm(ctx, session.MemberID, TypePTSession, "Personal training",
		fmt.Sprintf("Trainer #%d in room #%d until %s", session.TrainerID, session.RoomID,
			session.EndTime.In(n.location).Format("3:04 PM")),
		session.StartTime)
}

func (n *BookingNotifier) confirm(ctx context.Context, memberID int, jobType, bookingType, details string, when time.Time) error {
	name, email, err := n.contacts.Contact(ctx, memberID)
	if err != nil {
		return fmt.Errorf("lookup member %d contact: %w", memberID, err)
	}

	return n.queue.Enqueue(ctx, Job{
		Type:    jobType,
		To:      email,
		Name:    name,
		Subject: "Booking Confirmed - " + bookingType,
		Body:    confirmationBody(name, bookingType, details, when.In(n.location)),
	})
}

func confirmationBody(name, bookingType, details string, when time.Time) string {
	return fmt.Sprintf(`Hi %s,

Your booking is confirmed!

Type: %s
Details: %s
Time: %s

See you at the club!

- FitClub Team`, name, bookingType, details, when.Format("Jan 2, 2006 at 3:04 PM"))
}
