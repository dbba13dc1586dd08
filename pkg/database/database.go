package database

import (
	"fmt"
	"log"

	"skillorbit_backend/internal/config"
	"skillorbit_backend/internal/model"

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
		// Duplicate-key errors must surface as gorm.ErrDuplicatedKey so the
		// conditional-write paths can tell a lost race from a real failure.
		TranslateError: true,
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Training{},
		&model.TrainingTrainer{},
		&model.TrainingAssignment{},
		&model.SharedAssignment{},
		&model.AssignmentSubmission{},
		&model.SharedFeedback{},
		&model.FeedbackResponse{},
	)
}
