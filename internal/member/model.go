package member

import (
	"time"

	"fitclub/internal/booking"
)

const dobLayout = "2006-01-02"

type Member struct {
	ID           int       `db:"member_id" json:"member_id"`
	Name         string    `db:"name" json:"name"`
	DOB          time.Time `db:"dob" json:"dob"`
	Gender       *string   `db:"gender" json:"gender,omitempty"`
	Email        string    `db:"email" json:"email"`
	Phone        *string   `db:"phone" json:"phone,omitempty"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// HealthMetric is shared with the booking store, which reads the latest one
// for the dashboard.
type HealthMetric = booking.HealthMetric

type FitnessGoal struct {
	ID          int       `db:"goal_id" json:"goal_id"`
	MemberID    int       `db:"member_id" json:"member_id"`
	GoalType    string    `db:"goal_type" json:"goal_type"`
	TargetValue *float64  `db:"target_value" json:"target_value,omitempty"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type RegisterRequest struct {
	Name     string  `json:"name" binding:"required"`
	DOB      string  `json:"dob" binding:"required" example:"1990-04-12"`
	Gender   *string `json:"gender"`
	Email    string  `json:"email" binding:"required,email"`
	Phone    *string `json:"phone"`
	Password string  `json:"password" binding:"required,min=8"`
}

type RegisterResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Member       Member `json:"member"`
}

type AddMetricRequest struct {
	MetricType  string     `json:"metric_type" binding:"required" example:"weight"`
	MetricValue float64    `json:"metric_value" binding:"required,gt=0" example:"72.5"`
	MeasuredAt  *time.Time `json:"measured_at"`
}

type AddGoalRequest struct {
	GoalType    string   `json:"goal_type" binding:"required" example:"weight_loss"`
	TargetValue *float64 `json:"target_value" example:"70"`
	Status      string   `json:"status" binding:"omitempty,oneof=active completed abandoned"`
}
