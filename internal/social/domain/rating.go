package domain

import "time"

const (
	MinScore = 0.0
	MaxScore = 5.0
)

type Rating struct {
	ID          int64
	RaterID     int64
	RatedUserID int64
	Score       float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
