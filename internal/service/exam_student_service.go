package service

import (
	"encoding/json"
	"time"

	"lingua_backend/internal/grading"
	"lingua_backend/internal/model"
	"lingua_backend/internal/repository"
	"lingua_backend/internal/util"
)

// ExamStudentService resolves visibility for the calling student and
// orchestrates the session state machine for the student-facing API.
type ExamStudentService struct {
	Exams     *repository.ExamRepository
	Questions *repository.ExamQuestionRepository
	Subs      *repository.ExamSubmissionRepository
	Users     *repository.UserRepository
	Session   *ExamSessionService
}

func NewExamStudentService(exams *repository.ExamRepository, questions *repository.ExamQuestionRepository, subs *repository.ExamSubmissionRepository, users *repository.UserRepository, session *ExamSessionService) *ExamStudentService {
	return &ExamStudentService{Exams: exams, Questions: questions, Subs: subs, Users: users, Session: session}
}

// resolveExam loads an exam the caller is allowed to see, or reports why
// not. The caller's own batch is the only batch consulted.
func (s *ExamStudentService) resolveExam(userID, examID uint) (*model.Exam, *model.User, error) {
	user, err := s.Users.FindByID(userID)
	if err != nil {
		return nil, nil, util.ErrUserNotFound
	}

	exam, err := s.Exams.FindByID(examID)
	if err != nil || !exam.IsActive {
		return nil, nil, util.ErrExamNotFound
	}

	visible, err := s.Exams.IsVisibleToUser(examID, userID, user.BatchID)
	if err != nil {
		return nil, nil, err
	}
	if !visible {
		return nil, nil, util.ErrExamNotVisible
	}
	return exam, user, nil
}

// VisibleExamRow is one exam in the student's list, joined with their own
// attempt when one exists.
type VisibleExamRow struct {
	Exam       model.Exam            `json:"exam"`
	Submission *model.ExamSubmission `json:"submission,omitempty"`
}

func (s *ExamStudentService) VisibleExams(userID uint) ([]VisibleExamRow, error) {
	user, err := s.Users.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}

	exams, err := s.Exams.FindVisibleForUser(userID, user.BatchID)
	if err != nil {
		return nil, err
	}

	rows := make([]VisibleExamRow, 0, len(exams))
	for _, exam := range exams {
		sub, err := s.Subs.FindByExamAndUser(exam.ID, userID)
		if err != nil {
			return nil, err
		}
		rows = append(rows, VisibleExamRow{Exam: exam, Submission: sub})
	}
	return rows, nil
}

// ExamInfo is the visibility-gated single-exam view with the caller's
// attempt and live countdown attached.
type ExamInfo struct {
	Exam             model.Exam            `json:"exam"`
	Submission       *model.ExamSubmission `json:"submission,omitempty"`
	RemainingSeconds int                   `json:"remainingSeconds"`
}

func (s *ExamStudentService) GetExamInfo(userID, examID uint, now time.Time) (*ExamInfo, error) {
	exam, _, err := s.resolveExam(userID, examID)
	if err != nil {
		return nil, err
	}

	info := &ExamInfo{Exam: *exam}

	sub, err := s.Subs.FindByExamAndUser(examID, userID)
	if err != nil {
		return nil, err
	}
	if sub != nil {
		if sub.Status == model.SubmissionInProgress {
			remaining, _, _, err := s.Session.RemainingTime(exam, userID, now)
			if err != nil {
				return nil, err
			}
			info.RemainingSeconds = remaining
			// RemainingTime may have just auto-closed the attempt.
			sub, err = s.Subs.FindByExamAndUser(examID, userID)
			if err != nil {
				return nil, err
			}
		}
		info.Submission = sub
	}
	return info, nil
}

// StudentQuestion is a question as served to a taker: key fields stripped.
type StudentQuestion struct {
	ID       uint            `json:"id"`
	Order    int             `json:"order"`
	Type     string          `json:"type"`
	Data     json.RawMessage `json:"data"`
	AudioURL string          `json:"audioUrl,omitempty"`
	Points   float64         `json:"points"`
}

func toStudentQuestion(q *model.ExamQuestion) StudentQuestion {
	return StudentQuestion{
		ID:       q.ID,
		Order:    q.Order,
		Type:     q.Type,
		Data:     grading.StripKeyFields(q.Type, q.Data),
		AudioURL: q.AudioURL,
		Points:   q.Points,
	}
}

// StartPayload is returned on a successful start or resume.
type StartPayload struct {
	Exam         model.Exam               `json:"exam"`
	Submission   model.ExamSubmission     `json:"submission"`
	Questions    []StudentQuestion        `json:"questions"`
	SavedAnswers map[uint]json.RawMessage `json:"savedAnswers"`
}

// Start enforces the availability window, drives the state machine, and
// serves the question list with all answer keys stripped plus any answers
// already saved in this attempt.
func (s *ExamStudentService) Start(userID, examID uint, now time.Time) (*StartPayload, error) {
	exam, _, err := s.resolveExam(userID, examID)
	if err != nil {
		return nil, err
	}

	if exam.AvailableFrom != nil && now.Before(*exam.AvailableFrom) {
		return nil, util.ErrExamNotYetOpen
	}
	if exam.AvailableUntil != nil && now.After(*exam.AvailableUntil) {
		return nil, util.ErrExamWindowClosed
	}

	sub, err := s.Session.Start(exam, userID, now)
	if err != nil {
		return nil, err
	}

	questions, err := s.Questions.ListByExam(examID)
	if err != nil {
		return nil, err
	}
	studentQs := make([]StudentQuestion, 0, len(questions))
	for i := range questions {
		studentQs = append(studentQs, toStudentQuestion(&questions[i]))
	}

	saved, err := s.Subs.GetAnswers(sub.ID)
	if err != nil {
		return nil, err
	}
	savedAnswers := make(map[uint]json.RawMessage, len(saved))
	for _, a := range saved {
		savedAnswers[a.QuestionID] = a.UserAnswer
	}

	return &StartPayload{
		Exam:         *exam,
		Submission:   *sub,
		Questions:    studentQs,
		SavedAnswers: savedAnswers,
	}, nil
}

func (s *ExamStudentService) SaveAnswer(userID, examID, questionID uint, answer json.RawMessage, now time.Time) error {
	exam, _, err := s.resolveExam(userID, examID)
	if err != nil {
		return err
	}
	return s.Session.SaveAnswer(exam, userID, questionID, answer, now)
}

func (s *ExamStudentService) RecordWarning(userID, examID uint, now time.Time) (*WarningOutcome, error) {
	exam, _, err := s.resolveExam(userID, examID)
	if err != nil {
		return nil, err
	}
	return s.Session.RecordWarning(exam, userID, now)
}

func (s *ExamStudentService) Submit(userID, examID uint, now time.Time) (*model.ExamSubmission, error) {
	exam, _, err := s.resolveExam(userID, examID)
	if err != nil {
		return nil, err
	}
	return s.Session.Submit(exam, userID, now)
}

func (s *ExamStudentService) RemainingTime(userID, examID uint, now time.Time) (int, bool, string, error) {
	exam, _, err := s.resolveExam(userID, examID)
	if err != nil {
		return 0, false, "", err
	}
	return s.Session.RemainingTime(exam, userID, now)
}

// ResultQuestion pairs a full question (keys included) with the taker's
// graded answer.
type ResultQuestion struct {
	Question model.ExamQuestion `json:"question"`
	Answer   *model.ExamAnswer  `json:"answer,omitempty"`
}

// ExamResult is the post-grading review view.
type ExamResult struct {
	Exam       model.Exam           `json:"exam"`
	Submission model.ExamSubmission `json:"submission"`
	Questions  []ResultQuestion     `json:"questions"`
}

// GetResult is gated on both the attempt having started and the exam's
// resultsVisible flag; until both hold, even the taker sees nothing.
func (s *ExamStudentService) GetResult(userID, examID uint) (*ExamResult, error) {
	exam, _, err := s.resolveExam(userID, examID)
	if err != nil {
		return nil, err
	}

	sub, err := s.Subs.FindByExamAndUser(examID, userID)
	if err != nil {
		return nil, err
	}
	if sub == nil || sub.Status == model.SubmissionNotStarted || !exam.ResultsVisible {
		return nil, util.ErrResultsHidden
	}

	questions, err := s.Questions.ListByExam(examID)
	if err != nil {
		return nil, err
	}
	answers, err := s.Subs.GetAnswers(sub.ID)
	if err != nil {
		return nil, err
	}
	answerByQuestion := make(map[uint]*model.ExamAnswer, len(answers))
	for i := range answers {
		answerByQuestion[answers[i].QuestionID] = &answers[i]
	}

	result := &ExamResult{Exam: *exam, Submission: *sub}
	for _, q := range questions {
		result.Questions = append(result.Questions, ResultQuestion{
			Question: q,
			Answer:   answerByQuestion[q.ID],
		})
	}
	return result, nil
}
