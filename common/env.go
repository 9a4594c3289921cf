package common

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"presslog/cache"
	"presslog/email"
	"presslog/metrics"
	"presslog/twitter"
)

// Env holds the collaborators every module needs. It is built once at startup and
// passed to module constructors.
type Env struct {
	Config  *Config
	DB      *gorm.DB
	Cache   cache.Store
	Mail    email.Sender
	Twitter twitter.Service
	Log     *zap.Logger
	Metrics *metrics.Metrics
}
