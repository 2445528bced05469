package service

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"lingua_backend/internal/grading"
	"lingua_backend/internal/model"
	"lingua_backend/internal/repository"
	"lingua_backend/internal/util"
	"lingua_backend/pkg/logger"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newSessionService(t *testing.T) (*ExamSessionService, *gorm.DB) {
	t.Helper()
	if logger.Log == nil {
		logger.Log = zap.NewNop()
	}
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	// In-memory sqlite is per-connection; keep the pool at one.
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(
		&model.Exam{},
		&model.ExamQuestion{},
		&model.ExamSubmission{},
		&model.ExamAnswer{},
		&model.ExamVisibility{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	svc := NewExamSessionService(
		repository.NewExamSubmissionRepository(db),
		repository.NewExamQuestionRepository(db),
		repository.NewExamRepository(db),
		3,
	)
	return svc, db
}

func seedExam(t *testing.T, db *gorm.DB, durationMinutes int) (*model.Exam, []model.ExamQuestion) {
	t.Helper()
	exam := &model.Exam{
		Title:           "A1 Placement",
		DurationMinutes: durationMinutes,
		IsActive:        true,
		TotalQuestions:  2,
	}
	if err := db.Create(exam).Error; err != nil {
		t.Fatalf("create exam: %v", err)
	}
	questions := []model.ExamQuestion{
		{
			ExamID: exam.ID,
			Order:  1,
			Type:   grading.TypeMCQSingle,
			Data:   json.RawMessage(`{"options":["der","die","das"],"correct":1}`),
			Points: 2,
		},
		{
			ExamID: exam.ID,
			Order:  2,
			Type:   grading.TypeMCQSingle,
			Data:   json.RawMessage(`{"options":["haben","sein"],"correct":0}`),
			Points: 2,
		},
	}
	for i := range questions {
		if err := db.Create(&questions[i]).Error; err != nil {
			t.Fatalf("create question: %v", err)
		}
	}
	return exam, questions
}

func reloadSubmission(t *testing.T, db *gorm.DB, id uint) *model.ExamSubmission {
	t.Helper()
	var sub model.ExamSubmission
	if err := db.First(&sub, id).Error; err != nil {
		t.Fatalf("reload submission: %v", err)
	}
	return &sub
}

func TestStartResumesExistingSession(t *testing.T) {
	svc, db := newSessionService(t)
	exam, _ := seedExam(t, db, 30)
	t0 := time.Now()

	first, err := svc.Start(exam, 7, t0)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if first.Status != model.SubmissionInProgress {
		t.Fatalf("status = %q, want in_progress", first.Status)
	}

	second, err := svc.Start(exam, 7, t0.Add(5*time.Minute))
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("resume created a new submission: %d != %d", second.ID, first.ID)
	}
	if second.StartedAt.Unix() != first.StartedAt.Unix() {
		t.Errorf("resume moved startedAt")
	}
}

func TestWarningEscalationClosesAtLimit(t *testing.T) {
	svc, db := newSessionService(t)
	exam, _ := seedExam(t, db, 30)
	t0 := time.Now()

	sub, err := svc.Start(exam, 7, t0)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	for i, wantRemaining := range []int{2, 1} {
		out, err := svc.RecordWarning(exam, 7, t0.Add(time.Duration(i)*time.Minute))
		if err != nil {
			t.Fatalf("warning %d: %v", i+1, err)
		}
		if out.Closed {
			t.Fatalf("warning %d closed the session early", i+1)
		}
		if out.RemainingWarnings != wantRemaining {
			t.Errorf("warning %d remaining = %d, want %d", i+1, out.RemainingWarnings, wantRemaining)
		}
	}

	out, err := svc.RecordWarning(exam, 7, t0.Add(3*time.Minute))
	if err != nil {
		t.Fatalf("third warning: %v", err)
	}
	if !out.Closed || out.WarningCount != 3 {
		t.Fatalf("third warning outcome = %+v, want closed at count 3", out)
	}

	got := reloadSubmission(t, db, sub.ID)
	if got.Status != model.SubmissionWarnedOut {
		t.Errorf("status = %q, want warned_out", got.Status)
	}
	if got.FinishedAt == nil {
		t.Error("finishedAt not set on warned_out")
	}

	// A fourth violation has no live session to count against.
	if _, err := svc.RecordWarning(exam, 7, t0.Add(4*time.Minute)); !errors.Is(err, util.ErrNoActiveSession) {
		t.Errorf("fourth warning err = %v, want ErrNoActiveSession", err)
	}
	if _, err := svc.Start(exam, 7, t0.Add(4*time.Minute)); !errors.Is(err, util.ErrWarnedOut) {
		t.Errorf("start after warned_out err = %v, want ErrWarnedOut", err)
	}
}

func TestSubmitGradesOnceAndRejectsSecond(t *testing.T) {
	svc, db := newSessionService(t)
	exam, questions := seedExam(t, db, 30)
	t0 := time.Now()

	if _, err := svc.Start(exam, 7, t0); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := svc.SaveAnswer(exam, 7, questions[0].ID, json.RawMessage(`"die"`), t0.Add(time.Minute)); err != nil {
		t.Fatalf("save answer: %v", err)
	}

	sub, err := svc.Submit(exam, 7, t0.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if sub.Status != model.SubmissionCompleted {
		t.Fatalf("status = %q, want completed", sub.Status)
	}
	if sub.Score == nil || *sub.Score != 50 {
		t.Errorf("score = %v, want 50", sub.Score)
	}
	if sub.EarnedPoints == nil || *sub.EarnedPoints != 2 {
		t.Errorf("earnedPoints = %v, want 2", sub.EarnedPoints)
	}
	if sub.TotalPoints == nil || *sub.TotalPoints != 4 {
		t.Errorf("totalPoints = %v, want 4", sub.TotalPoints)
	}

	if _, err := svc.Submit(exam, 7, t0.Add(3*time.Minute)); !errors.Is(err, util.ErrAlreadyCompleted) {
		t.Errorf("second submit err = %v, want ErrAlreadyCompleted", err)
	}
}

func TestExpiryObservedLazily(t *testing.T) {
	svc, db := newSessionService(t)
	exam, questions := seedExam(t, db, 30)
	t0 := time.Now()

	sub, err := svc.Start(exam, 7, t0)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	late := t0.Add(31 * time.Minute)
	if err := svc.SaveAnswer(exam, 7, questions[0].ID, json.RawMessage(`"die"`), late); !errors.Is(err, util.ErrTimeExpired) {
		t.Fatalf("save after expiry err = %v, want ErrTimeExpired", err)
	}

	got := reloadSubmission(t, db, sub.ID)
	if got.Status != model.SubmissionAutoClosed {
		t.Errorf("status = %q, want auto_closed persisted", got.Status)
	}
	if got.FinishedAt == nil {
		t.Error("finishedAt not set on auto_closed")
	}

	if _, err := svc.Start(exam, 7, late.Add(time.Minute)); !errors.Is(err, util.ErrTimeExpired) {
		t.Errorf("start after auto_close err = %v, want ErrTimeExpired", err)
	}
	remaining, expired, status, err := svc.RemainingTime(exam, 7, late.Add(time.Minute))
	if err != nil {
		t.Fatalf("remaining time: %v", err)
	}
	if remaining != 0 || !expired || status != model.SubmissionAutoClosed {
		t.Errorf("remaining = (%d, %v, %q), want (0, true, auto_closed)", remaining, expired, status)
	}
}

func TestResetForRetestClearsAnswers(t *testing.T) {
	svc, db := newSessionService(t)
	exam, questions := seedExam(t, db, 30)
	t0 := time.Now()

	sub, err := svc.Start(exam, 7, t0)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := svc.SaveAnswer(exam, 7, questions[0].ID, json.RawMessage(`"die"`), t0.Add(time.Minute)); err != nil {
		t.Fatalf("save answer: %v", err)
	}
	if _, err := svc.Submit(exam, 7, t0.Add(2*time.Minute)); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := svc.ResetForRetest(sub.ID); err != nil {
		t.Fatalf("reset: %v", err)
	}

	got := reloadSubmission(t, db, sub.ID)
	if got.Status != model.SubmissionNotStarted {
		t.Errorf("status = %q, want not_started", got.Status)
	}
	if got.StartedAt != nil || got.FinishedAt != nil || got.Score != nil {
		t.Error("reset left timing or score fields populated")
	}
	if !got.IsReopened {
		t.Error("reset did not mark the attempt as reopened")
	}
	answers, err := svc.Subs.GetAnswers(sub.ID)
	if err != nil {
		t.Fatalf("get answers: %v", err)
	}
	if len(answers) != 0 {
		t.Errorf("reset left %d answers behind", len(answers))
	}
}

func TestReopenExpiredAttemptGrantsFreshClock(t *testing.T) {
	svc, db := newSessionService(t)
	exam, _ := seedExam(t, db, 30)
	t0 := time.Now()

	sub, err := svc.Start(exam, 7, t0)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	late := t0.Add(31 * time.Minute)
	if _, _, _, err := svc.RemainingTime(exam, 7, late); err != nil {
		t.Fatalf("remaining time: %v", err)
	}
	if got := reloadSubmission(t, db, sub.ID); got.Status != model.SubmissionAutoClosed {
		t.Fatalf("status = %q, want auto_closed", got.Status)
	}

	reopenAt := t0.Add(40 * time.Minute)
	reopened, err := svc.Reopen(sub.ID, reopenAt)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.Status != model.SubmissionInProgress || reopened.WarningCount != 0 {
		t.Fatalf("reopened = %+v, want in_progress with warnings cleared", reopened)
	}
	if reopened.StartedAt == nil || !reopened.StartedAt.Equal(reopenAt) {
		t.Errorf("startedAt = %v, want fresh clock at %v", reopened.StartedAt, reopenAt)
	}

	// The session must survive the next time-sensitive touch.
	remaining, expired, status, err := svc.RemainingTime(exam, 7, reopenAt.Add(time.Minute))
	if err != nil {
		t.Fatalf("remaining after reopen: %v", err)
	}
	if expired || status != model.SubmissionInProgress || remaining <= 0 {
		t.Errorf("remaining = (%d, %v, %q), want live session", remaining, expired, status)
	}
}

func TestReopenKeepsRunningClock(t *testing.T) {
	svc, db := newSessionService(t)
	exam, _ := seedExam(t, db, 30)
	t0 := time.Now()

	sub, err := svc.Start(exam, 7, t0)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.Submit(exam, 7, t0.Add(5*time.Minute)); err != nil {
		t.Fatalf("submit: %v", err)
	}

	reopened, err := svc.Reopen(sub.ID, t0.Add(10*time.Minute))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.StartedAt.Unix() != t0.Unix() {
		t.Errorf("startedAt = %v, want original %v preserved", reopened.StartedAt, t0)
	}
}

func TestReopenRejectsLiveSession(t *testing.T) {
	svc, db := newSessionService(t)
	exam, _ := seedExam(t, db, 30)

	sub, err := svc.Start(exam, 7, time.Now())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.Reopen(sub.ID, time.Now()); !errors.Is(err, util.ErrNotReopenable) {
		t.Errorf("reopen live session err = %v, want ErrNotReopenable", err)
	}
}

func TestSetMaxWarningsTakesEffect(t *testing.T) {
	svc, db := newSessionService(t)
	exam, _ := seedExam(t, db, 30)
	t0 := time.Now()

	svc.SetMaxWarnings(2)
	if got := svc.MaxWarnings(); got != 2 {
		t.Fatalf("MaxWarnings() = %d, want 2", got)
	}

	if _, err := svc.Start(exam, 7, t0); err != nil {
		t.Fatalf("start: %v", err)
	}
	if out, err := svc.RecordWarning(exam, 7, t0.Add(time.Minute)); err != nil || out.Closed {
		t.Fatalf("first warning = (%+v, %v), want open", out, err)
	}
	out, err := svc.RecordWarning(exam, 7, t0.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("second warning: %v", err)
	}
	if !out.Closed {
		t.Error("lowered limit did not close at 2 warnings")
	}

	svc.SetMaxWarnings(0)
	if got := svc.MaxWarnings(); got != 3 {
		t.Errorf("MaxWarnings() after invalid set = %d, want fallback 3", got)
	}
}
