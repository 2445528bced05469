package service

import (
	"encoding/json"
	"sync/atomic"
	"time"

	"lingua_backend/internal/grading"
	"lingua_backend/internal/model"
	"lingua_backend/internal/repository"
	"lingua_backend/internal/util"
	"lingua_backend/pkg/logger"
	"lingua_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// ExamSessionService owns the lifecycle of one (exam, user) attempt:
// start, answer accumulation, warning escalation, time expiry, final
// grading and admin recovery. There is no background timer; expiry is
// detected lazily on every time-sensitive touch and persisted the first
// time it is observed.
type ExamSessionService struct {
	Subs      *repository.ExamSubmissionRepository
	Questions *repository.ExamQuestionRepository
	Exams     *repository.ExamRepository
	// maxWarnings proctoring violations force-close the session. Atomic
	// because the config watcher updates it while handlers read it.
	maxWarnings atomic.Int32
}

func NewExamSessionService(subs *repository.ExamSubmissionRepository, questions *repository.ExamQuestionRepository, exams *repository.ExamRepository, maxWarnings int) *ExamSessionService {
	s := &ExamSessionService{Subs: subs, Questions: questions, Exams: exams}
	s.SetMaxWarnings(maxWarnings)
	return s
}

func (s *ExamSessionService) MaxWarnings() int {
	return int(s.maxWarnings.Load())
}

// SetMaxWarnings applies a new violation limit; invalid values fall back
// to 3.
func (s *ExamSessionService) SetMaxWarnings(n int) {
	if n <= 0 {
		n = 3
	}
	s.maxWarnings.Store(int32(n))
}

// refreshExpiry transitions an in-progress submission to auto_closed if
// its clock has run out, persisting the observation. A stale in_progress
// status column is never trusted on a time-sensitive path.
func (s *ExamSessionService) refreshExpiry(sub *model.ExamSubmission, exam *model.Exam, now time.Time) (bool, error) {
	if sub.Status != model.SubmissionInProgress || sub.StartedAt == nil {
		return false, nil
	}
	_, expired := util.Remaining(*sub.StartedAt, exam.DurationMinutes, now)
	if !expired {
		return false, nil
	}

	sub.Status = model.SubmissionAutoClosed
	sub.FinishedAt = &now
	if err := s.Subs.Save(sub); err != nil {
		return true, err
	}
	monitoring.ExamSubmissions.WithLabelValues(model.SubmissionAutoClosed).Inc()
	return true, nil
}

// Start creates or resumes the caller's attempt. Window and visibility
// checks belong to the caller; no submission row is created when they
// fail.
func (s *ExamSessionService) Start(exam *model.Exam, userID uint, now time.Time) (*model.ExamSubmission, error) {
	sub, err := s.Subs.FindByExamAndUser(exam.ID, userID)
	if err != nil {
		return nil, err
	}

	if sub == nil {
		total := float64(exam.TotalQuestions)
		sub = &model.ExamSubmission{
			ExamID:      exam.ID,
			UserID:      userID,
			Status:      model.SubmissionInProgress,
			StartedAt:   &now,
			TotalPoints: &total,
		}
		if err := s.Subs.Create(sub); err != nil {
			return nil, err
		}
		return sub, nil
	}

	switch sub.Status {
	case model.SubmissionCompleted:
		return nil, util.ErrAlreadyCompleted
	case model.SubmissionWarnedOut:
		return nil, util.ErrWarnedOut
	case model.SubmissionAutoClosed:
		return nil, util.ErrTimeExpired
	case model.SubmissionNotStarted:
		total := float64(exam.TotalQuestions)
		sub.Status = model.SubmissionInProgress
		sub.StartedAt = &now
		sub.TotalPoints = &total
		if err := s.Subs.Save(sub); err != nil {
			return nil, err
		}
		return sub, nil
	}

	// Idempotent resume, unless the clock ran out in the meantime.
	expired, err := s.refreshExpiry(sub, exam, now)
	if err != nil {
		return nil, err
	}
	if expired {
		return nil, util.ErrTimeExpired
	}
	return sub, nil
}

// SaveAnswer upserts one answer while the session is live. Grading is
// deferred entirely to Submit, so answers may be revised freely.
func (s *ExamSessionService) SaveAnswer(exam *model.Exam, userID, questionID uint, answer json.RawMessage, now time.Time) error {
	sub, err := s.Subs.FindByExamAndUser(exam.ID, userID)
	if err != nil {
		return err
	}
	if sub == nil || sub.Status != model.SubmissionInProgress {
		return util.ErrNoActiveSession
	}

	expired, err := s.refreshExpiry(sub, exam, now)
	if err != nil {
		return err
	}
	if expired {
		return util.ErrTimeExpired
	}

	question, err := s.Questions.FindByID(questionID)
	if err != nil || question.ExamID != exam.ID {
		return util.ErrQuestionNotFound
	}
	if !grading.IsAnswerable(question.Type) {
		return util.ErrNotAnswerable
	}

	return s.Subs.UpsertAnswer(sub.ID, questionID, answer, now)
}

// WarningOutcome reports the state after one recorded violation.
type WarningOutcome struct {
	WarningCount      int  `json:"warningCount"`
	Closed            bool `json:"closed"`
	RemainingWarnings int  `json:"remainingWarnings,omitempty"`
}

// RecordWarning increments the proctoring violation count and force-closes
// the session when the limit is reached. The count only ever resets
// through admin reopen/reset.
func (s *ExamSessionService) RecordWarning(exam *model.Exam, userID uint, now time.Time) (*WarningOutcome, error) {
	sub, err := s.Subs.FindByExamAndUser(exam.ID, userID)
	if err != nil {
		return nil, err
	}
	if sub == nil || sub.Status != model.SubmissionInProgress {
		return nil, util.ErrNoActiveSession
	}

	limit := s.MaxWarnings()
	sub.WarningCount++
	if sub.WarningCount >= limit {
		sub.Status = model.SubmissionWarnedOut
		sub.FinishedAt = &now
		if err := s.Subs.Save(sub); err != nil {
			return nil, err
		}
		monitoring.ExamSubmissions.WithLabelValues(model.SubmissionWarnedOut).Inc()
		return &WarningOutcome{WarningCount: sub.WarningCount, Closed: true}, nil
	}

	if err := s.Subs.Save(sub); err != nil {
		return nil, err
	}
	return &WarningOutcome{
		WarningCount:      sub.WarningCount,
		Closed:            false,
		RemainingWarnings: limit - sub.WarningCount,
	}, nil
}

// Submit grades every answerable question and finalizes the attempt.
// A second submit is rejected without re-grading.
func (s *ExamSessionService) Submit(exam *model.Exam, userID uint, now time.Time) (*model.ExamSubmission, error) {
	sub, err := s.Subs.FindByExamAndUser(exam.ID, userID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, util.ErrNoActiveSession
	}
	if sub.Status == model.SubmissionCompleted {
		return nil, util.ErrAlreadyCompleted
	}

	questions, err := s.Questions.ListByExam(exam.ID)
	if err != nil {
		return nil, err
	}
	saved, err := s.Subs.GetAnswers(sub.ID)
	if err != nil {
		return nil, err
	}
	answerByQuestion := make(map[uint]*model.ExamAnswer, len(saved))
	for i := range saved {
		answerByQuestion[saved[i].QuestionID] = &saved[i]
	}

	var totalPoints, earnedPoints float64
	graded := make([]model.ExamAnswer, 0, len(saved))

	for _, q := range questions {
		if !grading.IsAnswerable(q.Type) {
			continue
		}
		totalPoints += q.Points

		ans, ok := answerByQuestion[q.ID]
		if !ok {
			// Unanswered questions earn nothing.
			continue
		}

		res := grading.Grade(q.Type, q.Data, ans.UserAnswer)
		points := util.RoundTo(q.Points*res.ScoreRatio, 4)
		earnedPoints += points

		correct := res.IsCorrect
		ans.IsCorrect = &correct
		ans.PointsEarned = &points
		graded = append(graded, *ans)
	}

	score := 0.0
	if totalPoints > 0 {
		score = util.RoundTo(earnedPoints/totalPoints*100, 2)
	}
	earnedPoints = util.RoundTo(earnedPoints, 4)

	sub.Status = model.SubmissionCompleted
	sub.FinishedAt = &now
	sub.Score = &score
	sub.TotalPoints = &totalPoints
	sub.EarnedPoints = &earnedPoints

	if err := s.Subs.FinalizeGrades(sub, graded); err != nil {
		return nil, err
	}
	monitoring.ExamSubmissions.WithLabelValues(model.SubmissionCompleted).Inc()

	logger.Log.Info("exam submitted",
		zap.Uint("examId", exam.ID),
		zap.Uint("userId", userID),
		zap.Float64("score", score),
	)
	return sub, nil
}

// RemainingTime answers the live countdown for one attempt, persisting an
// expiry transition if it is the first to observe it.
func (s *ExamSessionService) RemainingTime(exam *model.Exam, userID uint, now time.Time) (remainingSeconds int, isExpired bool, status string, err error) {
	sub, err := s.Subs.FindByExamAndUser(exam.ID, userID)
	if err != nil {
		return 0, false, "", err
	}
	if sub == nil {
		return 0, false, model.SubmissionNotStarted, nil
	}

	if sub.Status == model.SubmissionInProgress && sub.StartedAt != nil {
		if _, err := s.refreshExpiry(sub, exam, now); err != nil {
			return 0, false, "", err
		}
		if sub.Status == model.SubmissionInProgress {
			remaining, _ := util.Remaining(*sub.StartedAt, exam.DurationMinutes, now)
			return remaining, false, sub.Status, nil
		}
	}

	return 0, sub.Status == model.SubmissionAutoClosed, sub.Status, nil
}

// Reopen resumes a terminated attempt preserving answers and score; a
// recovery, not a retest. When the original clock is already spent the
// attempt gets a fresh one, otherwise the next time-sensitive touch
// would auto-close it again.
func (s *ExamSessionService) Reopen(submissionID uint, now time.Time) (*model.ExamSubmission, error) {
	sub, err := s.Subs.FindByID(submissionID)
	if err != nil {
		return nil, util.ErrSubmissionNotFound
	}
	if !sub.IsTerminal() {
		return nil, util.ErrNotReopenable
	}
	exam, err := s.Exams.FindByID(sub.ExamID)
	if err != nil {
		return nil, util.ErrExamNotFound
	}

	sub.Status = model.SubmissionInProgress
	sub.WarningCount = 0
	sub.IsReopened = true
	sub.FinishedAt = nil
	if sub.StartedAt == nil {
		sub.StartedAt = &now
	} else if _, expired := util.Remaining(*sub.StartedAt, exam.DurationMinutes, now); expired {
		sub.StartedAt = &now
	}
	if err := s.Subs.Save(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// ResetForRetest erases every answer and returns the attempt to
// not_started, atomically.
func (s *ExamSessionService) ResetForRetest(submissionID uint) (*model.ExamSubmission, error) {
	sub, err := s.Subs.FindByID(submissionID)
	if err != nil {
		return nil, util.ErrSubmissionNotFound
	}

	sub.Status = model.SubmissionNotStarted
	sub.WarningCount = 0
	sub.IsReopened = true
	sub.StartedAt = nil
	sub.FinishedAt = nil
	sub.Score = nil
	sub.TotalPoints = nil
	sub.EarnedPoints = nil

	if err := s.Subs.ResetWithAnswers(sub); err != nil {
		return nil, err
	}
	return sub, nil
}
