package model

import "time"

// Checkin records one daily study check-in for streak tracking.
// swagger:model Checkin
type Checkin struct {
	BaseModel
	UserID     uint      `gorm:"index;type:bigint unsigned;not null" json:"userId"`
	CheckinAt  time.Time `gorm:"not null" json:"checkinAt"`
	StreakDays int       `gorm:"default:1" json:"streakDays"`
}

func (Checkin) TableName() string {
	return "checkins"
}
