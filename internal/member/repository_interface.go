package member

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, m Member) (*Member, error)
	FindByID(ctx context.Context, id int) (*Member, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Exists(ctx context.Context, id int) (bool, error)
	AddMetric(ctx context.Context, memberID int, metricType string, value float64, measuredAt time.Time) (*HealthMetric, error)
	ListMetrics(ctx context.Context, memberID int) ([]HealthMetric, error)
	AddGoal(ctx context.Context, g FitnessGoal) (*FitnessGoal, error)
	ListGoals(ctx context.Context, memberID int) ([]FitnessGoal, error)
}
