package service

import (
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"sync"
	"time"

	"lingua_backend/internal/config"
	"lingua_backend/internal/grading"
	"lingua_backend/internal/model"
	"lingua_backend/internal/repository"
	"lingua_backend/internal/util"
	"lingua_backend/pkg/logger"

	"go.uber.org/zap"
)

// ExamAdminService is the authoring surface: exam CRUD, question
// management with audio attachments, visibility rules and the submission
// back-office (list, reopen, reset).
type ExamAdminService struct {
	Exams     *repository.ExamRepository
	Questions *repository.ExamQuestionRepository
	Subs      *repository.ExamSubmissionRepository
	Storage   *StorageService
	Session   *ExamSessionService
	Config    *config.Config
}

func NewExamAdminService(exams *repository.ExamRepository, questions *repository.ExamQuestionRepository, subs *repository.ExamSubmissionRepository, storage *StorageService, session *ExamSessionService, cfg *config.Config) *ExamAdminService {
	return &ExamAdminService{
		Exams:     exams,
		Questions: questions,
		Subs:      subs,
		Storage:   storage,
		Session:   session,
		Config:    cfg,
	}
}

// ExamReq carries create/update fields. On update, nil pointers leave the
// stored value untouched; empty strings clear the availability window.
type ExamReq struct {
	Title            *string `json:"title"`
	Description      *string `json:"description"`
	ProficiencyLevel *string `json:"proficiencyLevel"`
	DurationMinutes  *int    `json:"durationMinutes"`
	IsActive         *bool   `json:"isActive"`
	ResultsVisible   *bool   `json:"resultsVisible"`
	AvailableFrom    *string `json:"availableFrom"`
	AvailableUntil   *string `json:"availableUntil"`
}

// applyWindow parses and validates the availability bounds on an exam.
func applyWindow(exam *model.Exam, req *ExamReq) error {
	if req.AvailableFrom != nil {
		if *req.AvailableFrom == "" {
			exam.AvailableFrom = nil
		} else {
			t, err := util.ParseFlexibleTime(*req.AvailableFrom)
			if err != nil {
				return err
			}
			exam.AvailableFrom = &t
		}
	}
	if req.AvailableUntil != nil {
		if *req.AvailableUntil == "" {
			exam.AvailableUntil = nil
		} else {
			t, err := util.ParseFlexibleTime(*req.AvailableUntil)
			if err != nil {
				return err
			}
			exam.AvailableUntil = &t
		}
	}
	if exam.AvailableFrom != nil && exam.AvailableUntil != nil &&
		!exam.AvailableUntil.After(*exam.AvailableFrom) {
		return util.ErrInvalidTimeWindow
	}
	return nil
}

func (s *ExamAdminService) CreateExam(req *ExamReq, createdBy uint) (*model.Exam, error) {
	exam := &model.Exam{
		DurationMinutes: 60,
		IsActive:        true,
		CreatedBy:       createdBy,
	}
	if req.Title != nil {
		exam.Title = *req.Title
	}
	if req.Description != nil {
		exam.Description = *req.Description
	}
	if req.ProficiencyLevel != nil {
		exam.ProficiencyLevel = *req.ProficiencyLevel
	}
	if req.DurationMinutes != nil && *req.DurationMinutes > 0 {
		exam.DurationMinutes = *req.DurationMinutes
	}
	if req.IsActive != nil {
		exam.IsActive = *req.IsActive
	}
	if req.ResultsVisible != nil {
		exam.ResultsVisible = *req.ResultsVisible
	}
	if err := applyWindow(exam, req); err != nil {
		return nil, err
	}
	if err := s.Exams.Create(exam); err != nil {
		return nil, err
	}
	return exam, nil
}

func (s *ExamAdminService) UpdateExam(examID uint, req *ExamReq) (*model.Exam, error) {
	exam, err := s.Exams.FindByID(examID)
	if err != nil {
		return nil, util.ErrExamNotFound
	}
	if req.Title != nil {
		exam.Title = *req.Title
	}
	if req.Description != nil {
		exam.Description = *req.Description
	}
	if req.ProficiencyLevel != nil {
		exam.ProficiencyLevel = *req.ProficiencyLevel
	}
	if req.DurationMinutes != nil && *req.DurationMinutes > 0 {
		exam.DurationMinutes = *req.DurationMinutes
	}
	if req.IsActive != nil {
		exam.IsActive = *req.IsActive
	}
	if req.ResultsVisible != nil {
		exam.ResultsVisible = *req.ResultsVisible
	}
	if err := applyWindow(exam, req); err != nil {
		return nil, err
	}
	if err := s.Exams.Update(exam); err != nil {
		return nil, err
	}
	return exam, nil
}

func (s *ExamAdminService) ListExams(page, limit int) ([]model.Exam, int64, error) {
	return s.Exams.List(page, limit)
}

// ExamDetail is the admin view: full questions, keys included.
type ExamDetail struct {
	Exam      model.Exam           `json:"exam"`
	Questions []model.ExamQuestion `json:"questions"`
}

func (s *ExamAdminService) GetExamDetail(examID uint) (*ExamDetail, error) {
	exam, err := s.Exams.FindByID(examID)
	if err != nil {
		return nil, util.ErrExamNotFound
	}
	questions, err := s.Questions.ListByExam(examID)
	if err != nil {
		return nil, err
	}
	return &ExamDetail{Exam: *exam, Questions: questions}, nil
}

// DeleteExam removes the exam and all dependent rows atomically, then
// cleans up stored audio assets best-effort in the background.
func (s *ExamAdminService) DeleteExam(examID uint) error {
	if _, err := s.Exams.FindByID(examID); err != nil {
		return util.ErrExamNotFound
	}
	questions, err := s.Questions.ListByExam(examID)
	if err != nil {
		return err
	}

	if err := s.Exams.DeleteCascade(examID); err != nil {
		return err
	}

	var assetIDs []string
	for _, q := range questions {
		if q.AudioAssetID != "" {
			assetIDs = append(assetIDs, q.AudioAssetID)
		}
	}
	if len(assetIDs) > 0 {
		go s.deleteAssets(assetIDs)
	}
	return nil
}

func (s *ExamAdminService) deleteAssets(assetIDs []string) {
	var wg sync.WaitGroup
	for _, id := range assetIDs {
		wg.Add(1)
		go func(assetID string) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := s.Storage.Delete(ctx, assetID); err != nil {
				logger.Log.Warn("audio asset cleanup failed",
					zap.String("assetId", assetID),
					zap.Error(err))
			}
		}(id)
	}
	wg.Wait()
}

// QuestionReq carries question fields. Exactly one of an uploaded audio
// file or AudioURL may provide audio; an empty AudioURL with no upload
// removes existing audio on update.
type QuestionReq struct {
	Type     *string         `json:"type"`
	Data     json.RawMessage `json:"data"`
	Points   *float64        `json:"points"`
	AudioURL *string         `json:"audioUrl"`
}

// storeAudio validates and uploads a multipart audio file, returning the
// object key and public URL.
func (s *ExamAdminService) storeAudio(ctx context.Context, file *multipart.FileHeader) (assetID, url string, err error) {
	maxBytes := s.Config.Exam.MaxAudioSizeMB * 1024 * 1024
	if file.Size > maxBytes {
		return "", "", fmt.Errorf("audio file exceeds %dMB limit", s.Config.Exam.MaxAudioSizeMB)
	}

	src, err := file.Open()
	if err != nil {
		return "", "", err
	}
	defer src.Close()

	mimeType, _ := util.ValidateMimeType(src, []string{"audio/", "video/", "application/octet-stream"})
	if !util.IsAudio(mimeType) {
		return "", "", fmt.Errorf("unsupported audio type %s", mimeType)
	}
	if _, err := src.Seek(0, 0); err != nil {
		return "", "", err
	}

	ext := filepath.Ext(file.Filename)
	objectKey := "exam-audio/" + model.GenerateUUID() + ext

	if _, err := s.Storage.Upload(ctx, objectKey, src, file.Size, mimeType); err != nil {
		return "", "", fmt.Errorf("audio upload failed: %w", err)
	}

	s.probeAudio(file)

	return objectKey, s.Storage.GetURL(objectKey), nil
}

// probeAudio extracts duration and codec for the authoring log. Probe
// failures never block the upload.
func (s *ExamAdminService) probeAudio(file *multipart.FileHeader) {
	src, err := file.Open()
	if err != nil {
		return
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "exam-audio-*"+filepath.Ext(file.Filename))
	if err != nil {
		return
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := tmp.ReadFrom(src); err != nil {
		return
	}
	info, err := util.GetAudioInfo(tmp.Name())
	if err != nil {
		logger.Log.Debug("audio probe failed",
			zap.String("filename", file.Filename),
			zap.Error(err))
		return
	}
	logger.Log.Info("audio attachment stored",
		zap.String("filename", file.Filename),
		zap.Float64("durationSeconds", info.Duration),
		zap.String("codec", info.Codec))
}

func (s *ExamAdminService) recomputeTotals(exam *model.Exam) error {
	count, err := s.Questions.CountAnswerable(exam.ID)
	if err != nil {
		return err
	}
	exam.TotalQuestions = int(count)
	return s.Exams.Update(exam)
}

// AddQuestion appends a question at the end of the exam's order.
func (s *ExamAdminService) AddQuestion(ctx context.Context, examID uint, req *QuestionReq, audioFile *multipart.FileHeader) (*model.ExamQuestion, error) {
	exam, err := s.Exams.FindByID(examID)
	if err != nil {
		return nil, util.ErrExamNotFound
	}
	if req.Type == nil || !grading.IsKnownType(*req.Type) {
		return nil, fmt.Errorf("unknown question type %q", deref(req.Type))
	}
	qType := *req.Type

	if err := grading.ValidateData(qType, req.Data); err != nil {
		return nil, err
	}
	if (audioFile != nil || (req.AudioURL != nil && *req.AudioURL != "")) && !grading.AllowsAudio(qType) {
		return nil, util.ErrAudioNotAllowed
	}

	maxOrder, err := s.Questions.MaxOrder(examID)
	if err != nil {
		return nil, err
	}

	q := &model.ExamQuestion{
		ExamID: examID,
		Order:  maxOrder + 1,
		Type:   qType,
		Data:   req.Data,
	}
	if req.Points != nil && grading.IsAnswerable(qType) {
		q.Points = *req.Points
	} else if grading.IsAnswerable(qType) {
		q.Points = 1
	}

	if audioFile != nil {
		assetID, url, err := s.storeAudio(ctx, audioFile)
		if err != nil {
			return nil, err
		}
		q.AudioAssetID = assetID
		q.AudioURL = url
	} else if req.AudioURL != nil {
		q.AudioURL = *req.AudioURL
	}

	if err := s.Questions.Create(q); err != nil {
		return nil, err
	}
	if err := s.recomputeTotals(exam); err != nil {
		return nil, err
	}
	return q, nil
}

// UpdateQuestion edits a question in place. A new upload or a new direct
// URL replaces existing audio; the old stored asset is removed best-effort.
func (s *ExamAdminService) UpdateQuestion(ctx context.Context, examID, questionID uint, req *QuestionReq, audioFile *multipart.FileHeader) (*model.ExamQuestion, error) {
	exam, err := s.Exams.FindByID(examID)
	if err != nil {
		return nil, util.ErrExamNotFound
	}
	q, err := s.Questions.FindByID(questionID)
	if err != nil || q.ExamID != examID {
		return nil, util.ErrQuestionNotFound
	}

	if req.Type != nil && *req.Type != q.Type {
		if !grading.IsKnownType(*req.Type) {
			return nil, fmt.Errorf("unknown question type %q", *req.Type)
		}
		q.Type = *req.Type
		if !grading.IsAnswerable(q.Type) {
			q.Points = 0
		}
	}
	if req.Data != nil {
		q.Data = req.Data
	}
	if err := grading.ValidateData(q.Type, q.Data); err != nil {
		return nil, err
	}
	if req.Points != nil && grading.IsAnswerable(q.Type) {
		q.Points = *req.Points
	}

	newDirectURL := req.AudioURL != nil && *req.AudioURL != q.AudioURL
	if (audioFile != nil || (newDirectURL && *req.AudioURL != "")) && !grading.AllowsAudio(q.Type) {
		return nil, util.ErrAudioNotAllowed
	}

	if audioFile != nil || newDirectURL {
		if q.AudioAssetID != "" {
			go s.deleteAssets([]string{q.AudioAssetID})
			q.AudioAssetID = ""
		}
		if audioFile != nil {
			assetID, url, err := s.storeAudio(ctx, audioFile)
			if err != nil {
				return nil, err
			}
			q.AudioAssetID = assetID
			q.AudioURL = url
		} else {
			q.AudioURL = *req.AudioURL
		}
	}

	if err := s.Questions.Update(q); err != nil {
		return nil, err
	}
	if err := s.recomputeTotals(exam); err != nil {
		return nil, err
	}
	return q, nil
}

// DeleteQuestion removes a question with its saved answers and keeps the
// remaining order dense.
func (s *ExamAdminService) DeleteQuestion(examID, questionID uint) error {
	exam, err := s.Exams.FindByID(examID)
	if err != nil {
		return util.ErrExamNotFound
	}
	q, err := s.Questions.FindByID(questionID)
	if err != nil || q.ExamID != examID {
		return util.ErrQuestionNotFound
	}

	if err := s.Questions.DeleteWithRenumber(q); err != nil {
		return err
	}
	if q.AudioAssetID != "" {
		go s.deleteAssets([]string{q.AudioAssetID})
	}
	return s.recomputeTotals(exam)
}

// ReorderQuestions takes the complete id list in its new sequence. The
// list must cover exactly the exam's questions.
func (s *ExamAdminService) ReorderQuestions(examID uint, ids []uint) error {
	if _, err := s.Exams.FindByID(examID); err != nil {
		return util.ErrExamNotFound
	}
	questions, err := s.Questions.ListByExam(examID)
	if err != nil {
		return err
	}
	if len(ids) != len(questions) {
		return fmt.Errorf("expected %d question ids, got %d", len(questions), len(ids))
	}
	existing := make(map[uint]bool, len(questions))
	for _, q := range questions {
		existing[q.ID] = true
	}
	for _, id := range ids {
		if !existing[id] {
			return fmt.Errorf("question %d does not belong to this exam", id)
		}
		delete(existing, id)
	}
	return s.Questions.Reorder(examID, ids)
}

// VisibilityReq grants access to whole batches and/or individual users.
type VisibilityReq struct {
	BatchIDs []uint `json:"batchIds"`
	UserIDs  []uint `json:"userIds"`
}

func (s *ExamAdminService) SetVisibility(examID uint, req *VisibilityReq) error {
	if _, err := s.Exams.FindByID(examID); err != nil {
		return util.ErrExamNotFound
	}
	for _, batchID := range req.BatchIDs {
		id := batchID
		if err := s.Exams.AddVisibility(&model.ExamVisibility{ExamID: examID, BatchID: &id}); err != nil {
			return err
		}
	}
	for _, userID := range req.UserIDs {
		id := userID
		if err := s.Exams.AddVisibility(&model.ExamVisibility{ExamID: examID, UserID: &id}); err != nil {
			return err
		}
	}
	return nil
}

func (s *ExamAdminService) GetVisibility(examID uint) ([]model.ExamVisibility, error) {
	if _, err := s.Exams.FindByID(examID); err != nil {
		return nil, util.ErrExamNotFound
	}
	return s.Exams.ListVisibility(examID)
}

func (s *ExamAdminService) RemoveVisibility(examID, ruleID uint) error {
	if _, err := s.Exams.FindByID(examID); err != nil {
		return util.ErrExamNotFound
	}
	return s.Exams.RemoveVisibility(examID, ruleID)
}

func (s *ExamAdminService) ListSubmissions(examID uint, page, limit int, status string) ([]repository.SubmissionListRow, int64, error) {
	if _, err := s.Exams.FindByID(examID); err != nil {
		return nil, 0, util.ErrExamNotFound
	}
	return s.Subs.ListByExam(examID, page, limit, status)
}

func (s *ExamAdminService) ReopenSubmission(submissionID uint) (*model.ExamSubmission, error) {
	return s.Session.Reopen(submissionID, time.Now())
}

func (s *ExamAdminService) ResetSubmission(submissionID uint) (*model.ExamSubmission, error) {
	return s.Session.ResetForRetest(submissionID)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
