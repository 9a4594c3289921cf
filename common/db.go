package common

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"presslog/database"
)

func ConnectDb(cfg *Config, log *zap.Logger) (*gorm.DB, error) {
	log.Info("connecting sqlite db", zap.String("path", cfg.SqliteDB))

	db, err := database.Open(cfg.SqliteDB)
	if err != nil {
		log.Error("error opening sqlite db", zap.Error(err))
		return nil, err
	}

	log.Info("opened sqlite db", zap.String("path", cfg.SqliteDB))
	return db, nil
}
