package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"autopostq/internal/constants"
	"autopostq/internal/models"
)

// ReleaseScheduler periodically releases due autoposts and optionally
// publishes them right away. It also runs the retention sweep for published
// entries.
type ReleaseScheduler struct {
	queue       *QueueService
	config      models.QueueConfig
	logger      *logrus.Logger
	stopCh      chan struct{}
	clock       func() time.Time
	cleanupEach int
	sweeps      int
}

func NewReleaseScheduler(queue *QueueService, config models.QueueConfig, logger *logrus.Logger) *ReleaseScheduler {
	if config.ReleaseIntervalSec <= 0 {
		config.ReleaseIntervalSec = constants.DefaultReleaseIntervalSec
	}
	if config.RetentionDays <= 0 {
		config.RetentionDays = constants.DefaultRetentionDays
	}
	return &ReleaseScheduler{
		queue:  queue,
		config: config,
		logger: logger,
		stopCh: make(chan struct{}),
		clock:  time.Now,
		// Retention runs once per hour's worth of release sweeps.
		cleanupEach: 3600 / config.ReleaseIntervalSec,
	}
}

func (s *ReleaseScheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(time.Duration(s.config.ReleaseIntervalSec) * time.Second)
	defer ticker.Stop()

	s.logger.WithFields(logrus.Fields{
		"interval_sec": s.config.ReleaseIntervalSec,
		"auto_publish": s.config.AutoPublish,
	}).Info("Starting release scheduler")

	s.runSweep(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Release scheduler context cancelled, stopping")
			return
		case <-s.stopCh:
			s.logger.Info("Release scheduler stop signal received, stopping")
			return
		case <-ticker.C:
			s.runSweep(ctx)
		}
	}
}

func (s *ReleaseScheduler) Stop() {
	close(s.stopCh)
}

func (s *ReleaseScheduler) runSweep(ctx context.Context) {
	now := s.clock()

	released, err := s.queue.ReleaseDue(ctx, now)
	if err != nil {
		s.logger.WithError(err).Error("Failed to release due autoposts")
		return
	}

	if s.config.AutoPublish {
		for _, entry := range released {
			if _, err := s.queue.Publish(ctx, entry.ID, now); err != nil {
				s.logger.WithError(err).WithField("autopost_id", entry.ID).
					Error("Failed to auto-publish released autopost")
			}
		}
	}

	s.sweeps++
	if s.cleanupEach > 0 && s.sweeps%s.cleanupEach == 0 {
		if _, err := s.queue.CleanupPublished(ctx, s.config.RetentionDays); err != nil {
			s.logger.WithError(err).Error("Failed retention sweep")
		}
	}
}
