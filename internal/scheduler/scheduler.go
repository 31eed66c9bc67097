package scheduler

import (
	"context"
	stdsync "sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/bulgareesoft/bulgaree/internal/config"
	"github.com/bulgareesoft/bulgaree/pkg/clients/updates"
)

// NotifyFunc receives each newly discovered update exactly once per version.
type NotifyFunc func(info updates.VersionInfo)

// Scheduler periodically polls the update manifest off the caller's thread.
// Poll failures stay silent; the next tick retries.
type Scheduler struct {
	cron    *cron.Cron
	updates *updates.Client
	notify  NotifyFunc
	cfg     config.UpdateConfig
	logger  *zap.Logger

	mu           stdsync.Mutex
	latest       *updates.VersionInfo
	lastNotified string
}

// NewScheduler creates the update-check scheduler.
func NewScheduler(cfg config.UpdateConfig, client *updates.Client, notify NotifyFunc, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cron:    cron.New(),
		updates: client,
		notify:  notify,
		cfg:     cfg,
		logger:  logger,
	}
}

// Start registers the polling job and launches the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting update scheduler", zap.String("schedule", s.cfg.CronSchedule))

	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.checkForUpdate); err != nil {
		s.logger.Error("failed to schedule update check", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping update scheduler")
	s.cron.Stop()
}

// Latest returns the most recently seen pending update, nil when the running
// version is current.
func (s *Scheduler) Latest() *updates.VersionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		return nil
	}
	info := *s.latest
	return &info
}

func (s *Scheduler) checkForUpdate() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	info, err := s.updates.Check(ctx)
	if err != nil {
		s.logger.Debug("update check failed", zap.Error(err))
		return
	}

	if !updates.Newer(info.Version, updates.Version) {
		return
	}

	s.mu.Lock()
	s.latest = info
	alreadyNotified := info.Version == s.lastNotified
	if !alreadyNotified {
		s.lastNotified = info.Version
	}
	s.mu.Unlock()

	if alreadyNotified {
		return
	}

	s.logger.Info("update available",
		zap.String("current", updates.Version), zap.String("remote", info.Version))

	if s.notify != nil {
		s.notify(*info)
	}
}
