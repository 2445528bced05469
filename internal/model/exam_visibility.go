package model

// ExamVisibility grants an exam to a single user or to a whole batch;
// exactly one of BatchID/UserID is set.
// swagger:model ExamVisibility
type ExamVisibility struct {
	BaseModel
	ExamID  uint  `gorm:"index;type:bigint unsigned;not null" json:"examId"`
	BatchID *uint `gorm:"index" json:"batchId,omitempty"`
	UserID  *uint `gorm:"index" json:"userId,omitempty"`
}

func (ExamVisibility) TableName() string {
	return "exam_visibilities"
}
