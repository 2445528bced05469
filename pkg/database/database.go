package database

import (
	"fmt"
	"log"

	"lingua_backend/internal/config"
	"lingua_backend/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.User{},
		&model.Batch{},
		&model.Exam{},
		&model.ExamQuestion{},
		&model.ExamVisibility{},
		&model.ExamSubmission{},
		&model.ExamAnswer{},
		&model.Checkin{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	// Seed a default admin account on first run.
	var adminCount int64
	db.Model(&model.User{}).Where("role = ?", model.Admin).Count(&adminCount)
	if adminCount == 0 {
		hash, err := bcrypt.GenerateFromPassword([]byte("change-me-now"), bcrypt.DefaultCost)
		if err == nil {
			db.Create(&model.User{
				Name:     "Admin",
				Email:    "admin@lingua.local",
				Password: string(hash),
				Role:     model.Admin,
			})
			log.Println("Seeded default admin account (admin@lingua.local)")
		}
	}

	return db, nil
}
