// Package databasetest opens throwaway databases for package tests.
package databasetest

import (
	"testing"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"presslog/database"
)

// Open returns a migrated in-memory database bound to a single connection. It is
// closed when the test ends.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Open("file::memory:")
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	db.Logger = logger.Discard

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	// every connection to :memory: is a fresh database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.RunMigrations(db, zap.NewNop()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}
