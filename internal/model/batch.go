package model

// Batch groups students of one course intake; exam visibility rules may
// target a whole batch.
// swagger:model Batch
type Batch struct {
	BaseModel
	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	IsActive    bool   `gorm:"default:true" json:"isActive"`
}

func (Batch) TableName() string {
	return "batches"
}
