package model

import "time"

// swagger:model Exam
type Exam struct {
	BaseModel
	Title            string `gorm:"size:255;not null" json:"title"`
	Description      string `gorm:"type:text" json:"description"`
	ProficiencyLevel string `gorm:"size:10" json:"proficiencyLevel"`
	// DurationMinutes and IsActive carry no column defaults: GORM would
	// drop zero values from the INSERT and the column default would
	// override an explicit 0 or false. Defaults live in CreateExam.
	DurationMinutes int `json:"durationMinutes"`
	// TotalQuestions caches the count of answerable questions; recomputed
	// after every question add/edit/delete.
	TotalQuestions int        `gorm:"default:0" json:"totalQuestions"`
	IsActive       bool       `json:"isActive"`
	ResultsVisible bool       `gorm:"default:false" json:"resultsVisible"`
	AvailableFrom  *time.Time `json:"availableFrom,omitempty"`
	AvailableUntil *time.Time `json:"availableUntil,omitempty"`
	CreatedBy      uint       `gorm:"index" json:"createdBy"`
}

func (Exam) TableName() string {
	return "exams"
}
