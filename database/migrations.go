package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"presslog/models"
)

func RunMigrations(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")

	err := db.AutoMigrate(
		&models.User{},
		&models.TwitterToken{},
		&models.UserCode{},
		&models.Post{},
		&models.Tag{},
		&models.PostTag{},
		&models.Comment{},
		&models.Link{},
	)

	if err != nil {
		log.Error("migrations failed", zap.Error(err))
		return err
	}

	log.Info("migrations completed")
	return nil
}
