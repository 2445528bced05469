package repository

import (
	"lingua_backend/internal/grading"
	"lingua_backend/internal/model"

	"gorm.io/gorm"
)

type ExamQuestionRepository struct {
	DB *gorm.DB
}

func NewExamQuestionRepository(db *gorm.DB) *ExamQuestionRepository {
	return &ExamQuestionRepository{DB: db}
}

func (r *ExamQuestionRepository) Create(q *model.ExamQuestion) error {
	return r.DB.Create(q).Error
}

func (r *ExamQuestionRepository) Update(q *model.ExamQuestion) error {
	return r.DB.Save(q).Error
}

func (r *ExamQuestionRepository) FindByID(id uint) (*model.ExamQuestion, error) {
	var q model.ExamQuestion
	if err := r.DB.First(&q, id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *ExamQuestionRepository) ListByExam(examID uint) ([]model.ExamQuestion, error) {
	var qs []model.ExamQuestion
	err := r.DB.Where("exam_id = ?", examID).Order("`order` ASC").Find(&qs).Error
	return qs, err
}

func (r *ExamQuestionRepository) MaxOrder(examID uint) (int, error) {
	var max *int
	err := r.DB.Model(&model.ExamQuestion{}).
		Where("exam_id = ?", examID).
		Select("MAX(`order`)").Scan(&max).Error
	if err != nil || max == nil {
		return 0, err
	}
	return *max, nil
}

// CountAnswerable counts questions contributing to the score, i.e. the
// exam's cached totalQuestions.
func (r *ExamQuestionRepository) CountAnswerable(examID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.ExamQuestion{}).
		Where("exam_id = ? AND type IN ?", examID, grading.AnswerableTypes()).
		Count(&count).Error
	return count, err
}

// DeleteWithRenumber removes a question together with any answers saved
// against it, then closes the gap so orders stay dense 1..N.
func (r *ExamQuestionRepository) DeleteWithRenumber(q *model.ExamQuestion) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().
			Where("question_id = ?", q.ID).
			Delete(&model.ExamAnswer{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(q).Error; err != nil {
			return err
		}
		return renumber(tx, q.ExamID)
	})
}

// Reorder reassigns orders 1..N following the given id sequence.
func (r *ExamQuestionRepository) Reorder(examID uint, ids []uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		for i, id := range ids {
			if err := tx.Model(&model.ExamQuestion{}).
				Where("id = ? AND exam_id = ?", id, examID).
				Update("order", i+1).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func renumber(tx *gorm.DB, examID uint) error {
	var qs []model.ExamQuestion
	if err := tx.Where("exam_id = ?", examID).
		Order("`order` ASC").Find(&qs).Error; err != nil {
		return err
	}
	for i := range qs {
		if qs[i].Order == i+1 {
			continue
		}
		if err := tx.Model(&qs[i]).Update("order", i+1).Error; err != nil {
			return err
		}
	}
	return nil
}
