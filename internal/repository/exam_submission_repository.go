package repository

import (
	"errors"
	"time"

	"lingua_backend/internal/model"

	"gorm.io/gorm"
)

type ExamSubmissionRepository struct {
	DB *gorm.DB
}

func NewExamSubmissionRepository(db *gorm.DB) *ExamSubmissionRepository {
	return &ExamSubmissionRepository{DB: db}
}

func (r *ExamSubmissionRepository) Create(sub *model.ExamSubmission) error {
	return r.DB.Create(sub).Error
}

func (r *ExamSubmissionRepository) Save(sub *model.ExamSubmission) error {
	return r.DB.Save(sub).Error
}

func (r *ExamSubmissionRepository) FindByID(id uint) (*model.ExamSubmission, error) {
	var sub model.ExamSubmission
	if err := r.DB.First(&sub, id).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// FindByExamAndUser returns nil, nil when no attempt exists yet.
func (r *ExamSubmissionRepository) FindByExamAndUser(examID, userID uint) (*model.ExamSubmission, error) {
	var sub model.ExamSubmission
	err := r.DB.Where("exam_id = ? AND user_id = ?", examID, userID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// SubmissionListRow carries a submission joined with its student identity
// for the admin listing.
type SubmissionListRow struct {
	model.ExamSubmission
	StudentName  string `json:"studentName"`
	StudentEmail string `json:"studentEmail"`
}

func (r *ExamSubmissionRepository) ListByExam(examID uint, page, limit int, status string) ([]SubmissionListRow, int64, error) {
	q := r.DB.Model(&model.ExamSubmission{}).
		Select("exam_submissions.*, users.name AS student_name, users.email AS student_email").
		Joins("JOIN users ON users.id = exam_submissions.user_id").
		Where("exam_submissions.exam_id = ?", examID)
	if status != "" {
		q = q.Where("exam_submissions.status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []SubmissionListRow
	err := q.Order("exam_submissions.updated_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Scan(&rows).Error
	return rows, total, err
}

// UpsertAnswer overwrites a previously saved answer for the same question;
// saves are last-write-wins per (submission, question).
func (r *ExamSubmissionRepository) UpsertAnswer(submissionID, questionID uint, userAnswer []byte, now time.Time) error {
	var existing model.ExamAnswer
	err := r.DB.Where("submission_id = ? AND question_id = ?", submissionID, questionID).
		First(&existing).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if existing.ID == 0 {
		return r.DB.Create(&model.ExamAnswer{
			SubmissionID: submissionID,
			QuestionID:   questionID,
			UserAnswer:   userAnswer,
			AnsweredAt:   now,
		}).Error
	}

	existing.UserAnswer = userAnswer
	existing.AnsweredAt = now
	existing.IsCorrect = nil
	existing.PointsEarned = nil
	return r.DB.Save(&existing).Error
}

func (r *ExamSubmissionRepository) GetAnswers(submissionID uint) ([]model.ExamAnswer, error) {
	var answers []model.ExamAnswer
	err := r.DB.Where("submission_id = ?", submissionID).Find(&answers).Error
	return answers, err
}

// FinalizeGrades persists a submission's grading outcome and every graded
// answer in one transaction.
func (r *ExamSubmissionRepository) FinalizeGrades(sub *model.ExamSubmission, answers []model.ExamAnswer) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		for i := range answers {
			if err := tx.Save(&answers[i]).Error; err != nil {
				return err
			}
		}
		return tx.Save(sub).Error
	})
}

// ResetWithAnswers deletes every answer and blanks the submission row
// atomically, so a crash cannot leave orphaned answers behind a reset
// attempt.
func (r *ExamSubmissionRepository) ResetWithAnswers(sub *model.ExamSubmission) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().
			Where("submission_id = ?", sub.ID).
			Delete(&model.ExamAnswer{}).Error; err != nil {
			return err
		}
		return tx.Save(sub).Error
	})
}
