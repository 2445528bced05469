package model

import "time"

type UserRole string

const (
	Student UserRole = "student"
	Admin   UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Name     string   `gorm:"size:100;not null" json:"name"`
	Email    string   `gorm:"size:100;unique;not null" json:"email"`
	Phone    string   `gorm:"size:20" json:"phone"`
	Password string   `gorm:"size:100;not null" json:"-"`
	Role     UserRole `gorm:"type:enum('student','admin');default:'student'" json:"role"`
	// ProficiencyLevel is the learner's current CEFR band (A1..C2).
	ProficiencyLevel string    `gorm:"size:10;default:'A1'" json:"proficiencyLevel"`
	BatchID          *uint     `gorm:"index" json:"batchId,omitempty"`
	Disabled         bool      `gorm:"default:false" json:"disabled"`
	LastSeen         time.Time `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}
