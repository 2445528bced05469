package repository

import (
	"testing"

	"lingua_backend/internal/model"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
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
	return db
}

// An exam created inactive must stay inactive after the insert; a column
// default must not override the explicit false.
func TestCreatePersistsInactiveExam(t *testing.T) {
	db := newTestDB(t)
	repo := NewExamRepository(db)

	exam := &model.Exam{Title: "Draft placement", DurationMinutes: 60, IsActive: false}
	if err := repo.Create(exam); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.FindByID(exam.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.IsActive {
		t.Fatal("exam created inactive persisted as active")
	}

	userID := uint(7)
	if err := repo.AddVisibility(&model.ExamVisibility{ExamID: exam.ID, UserID: &userID}); err != nil {
		t.Fatalf("add visibility: %v", err)
	}
	visible, err := repo.FindVisibleForUser(userID, nil)
	if err != nil {
		t.Fatalf("visible: %v", err)
	}
	if len(visible) != 0 {
		t.Errorf("inactive exam listed as visible: %d rows", len(visible))
	}
}

// A structural question carries zero points and must persist that way.
func TestCreatePersistsZeroPointQuestion(t *testing.T) {
	db := newTestDB(t)
	exams := NewExamRepository(db)
	questions := NewExamQuestionRepository(db)

	exam := &model.Exam{Title: "Placement", DurationMinutes: 60, IsActive: true}
	if err := exams.Create(exam); err != nil {
		t.Fatalf("create exam: %v", err)
	}

	q := &model.ExamQuestion{ExamID: exam.ID, Order: 1, Type: "page_break", Points: 0}
	if err := questions.Create(q); err != nil {
		t.Fatalf("create question: %v", err)
	}

	got, err := questions.FindByID(q.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Points != 0 {
		t.Errorf("points = %v, want 0", got.Points)
	}
}
