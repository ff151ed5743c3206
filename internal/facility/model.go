package facility

import "time"

type Room struct {
	ID       int    `db:"room_id" json:"room_id"`
	Name     string `db:"name" json:"name"`
	Capacity int    `db:"capacity" json:"capacity"`
}

// FitnessClass is a group class held at a fixed start time. Classes carry no
// end time, so they never take part in room or trainer overlap checks.
type FitnessClass struct {
	ID        int       `db:"class_id" json:"class_id"`
	Name      string    `db:"name" json:"name"`
	StartTime time.Time `db:"start_time" json:"start_time"`
	Capacity  int       `db:"capacity" json:"capacity"`
	TrainerID int       `db:"trainer_id" json:"trainer_id"`
	RoomID    int       `db:"room_id" json:"room_id"`
}

type ClassWithAvailability struct {
	FitnessClass
	Registered int  `db:"registered" json:"registered"`
	Available  int  `db:"-" json:"available"`
	IsFull     bool `db:"-" json:"is_full"`
}

type CreateRoomRequest struct {
	Name     string `json:"name" binding:"required"`
	Capacity int    `json:"capacity" binding:"required,min=1"`
}

type CreateClassRequest struct {
	Name      string `json:"name" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	Capacity  int    `json:"capacity" binding:"required,min=1"`
	TrainerID int    `json:"trainer_id" binding:"required,gt=0"`
	RoomID    int    `json:"room_id" binding:"required,gt=0"`
}
