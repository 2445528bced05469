package repository

import (
	"lingua_backend/internal/model"

	"gorm.io/gorm"
)

type ExamRepository struct {
	DB *gorm.DB
}

func NewExamRepository(db *gorm.DB) *ExamRepository {
	return &ExamRepository{DB: db}
}

func (r *ExamRepository) Create(exam *model.Exam) error {
	return r.DB.Create(exam).Error
}

func (r *ExamRepository) Update(exam *model.Exam) error {
	return r.DB.Save(exam).Error
}

func (r *ExamRepository) FindByID(id uint) (*model.Exam, error) {
	var exam model.Exam
	if err := r.DB.First(&exam, id).Error; err != nil {
		return nil, err
	}
	return &exam, nil
}

func (r *ExamRepository) List(page, limit int) ([]model.Exam, int64, error) {
	var exams []model.Exam
	var total int64

	if err := r.DB.Model(&model.Exam{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.DB.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&exams).Error
	return exams, total, err
}

// FindVisibleForUser returns active exams with at least one visibility rule
// resolving to the user directly or through their batch.
func (r *ExamRepository) FindVisibleForUser(userID uint, batchID *uint) ([]model.Exam, error) {
	var exams []model.Exam
	q := r.DB.Model(&model.Exam{}).
		Joins("JOIN exam_visibilities v ON v.exam_id = exams.id AND v.deleted_at IS NULL").
		Where("exams.is_active = ?", true)
	if batchID != nil {
		q = q.Where("v.user_id = ? OR v.batch_id = ?", userID, *batchID)
	} else {
		q = q.Where("v.user_id = ?", userID)
	}
	err := q.Group("exams.id").Order("exams.created_at DESC").Find(&exams).Error
	return exams, err
}

// IsVisibleToUser checks a single exam against the caller's rules.
func (r *ExamRepository) IsVisibleToUser(examID, userID uint, batchID *uint) (bool, error) {
	var count int64
	q := r.DB.Model(&model.ExamVisibility{}).Where("exam_id = ?", examID)
	if batchID != nil {
		q = q.Where("user_id = ? OR batch_id = ?", userID, *batchID)
	} else {
		q = q.Where("user_id = ?", userID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

// AddVisibility inserts a rule unless an identical one already exists;
// duplicates are silently absorbed.
func (r *ExamRepository) AddVisibility(rule *model.ExamVisibility) error {
	var count int64
	q := r.DB.Model(&model.ExamVisibility{}).Where("exam_id = ?", rule.ExamID)
	if rule.BatchID != nil {
		q = q.Where("batch_id = ?", *rule.BatchID)
	} else {
		q = q.Where("user_id = ?", *rule.UserID)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return r.DB.Create(rule).Error
}

func (r *ExamRepository) ListVisibility(examID uint) ([]model.ExamVisibility, error) {
	var rules []model.ExamVisibility
	err := r.DB.Where("exam_id = ?", examID).Find(&rules).Error
	return rules, err
}

func (r *ExamRepository) RemoveVisibility(examID, ruleID uint) error {
	return r.DB.Where("exam_id = ?", examID).Delete(&model.ExamVisibility{}, ruleID).Error
}

// DeleteCascade removes an exam with everything hanging off it: answers,
// submissions, visibility rules and questions go in one transaction.
func (r *ExamRepository) DeleteCascade(examID uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().
			Where("submission_id IN (?)",
				tx.Model(&model.ExamSubmission{}).Select("id").Where("exam_id = ?", examID)).
			Delete(&model.ExamAnswer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("exam_id = ?", examID).Delete(&model.ExamSubmission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("exam_id = ?", examID).Delete(&model.ExamVisibility{}).Error; err != nil {
			return err
		}
		if err := tx.Where("exam_id = ?", examID).Delete(&model.ExamQuestion{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Exam{}, examID).Error
	})
}
