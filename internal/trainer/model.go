package trainer

import "time"

type Trainer struct {
	ID             int       `db:"trainer_id" json:"trainer_id"`
	Name           string    `db:"name" json:"name"`
	Email          string    `db:"email" json:"email"`
	Specialization *string   `db:"specialization" json:"specialization,omitempty"`
	PasswordHash   string    `db:"password_hash" json:"-"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Availability is a block the trainer advertises. Booking never consults it.
type Availability struct {
	ID        int       `db:"availability_id" json:"availability_id"`
	TrainerID int       `db:"trainer_id" json:"trainer_id"`
	StartTime time.Time `db:"start_time" json:"start_time"`
	EndTime   time.Time `db:"end_time" json:"end_time"`
}

const (
	ItemPTSession = "pt_session"
	ItemClass     = "class"
)

// ScheduleItem is one entry of the combined schedule. Classes have no end time.
type ScheduleItem struct {
	ItemType  string     `db:"item_type" json:"item_type"`
	StartTime time.Time  `db:"start_time" json:"start_time"`
	EndTime   *time.Time `db:"end_time" json:"end_time"`
	Title     string     `db:"title" json:"title"`
}

type RegisterRequest struct {
	Name           string  `json:"name" binding:"required"`
	Email          string  `json:"email" binding:"required,email"`
	Specialization *string `json:"specialization"`
	Password       string  `json:"password" binding:"required,min=8"`
}

type RegisterResponse struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	Trainer      Trainer `json:"trainer"`
}

type AddAvailabilityRequest struct {
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
}
