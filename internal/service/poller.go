package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"autopostq/internal/autopost"
	"autopostq/internal/constants"
	"autopostq/internal/metrics"
	"autopostq/internal/models"
	"autopostq/pkg/queue"
)

// PollSnapshot is the poller's current view of the queue: raw entries already
// run through the normalization pipeline, plus fetch bookkeeping. Consumers
// get a copy; mutating it never affects the poller.
type PollSnapshot struct {
	Entries    []*autopost.QueueEntry
	NextCursor *int64
	Err        error
	Refreshing bool
	FetchedAt  time.Time
}

// QueuePoller periodically fetches the autopost queue through the API client
// and keeps the latest normalized snapshot. Overlapping fetches are tolerated;
// the last completed fetch wins.
type QueuePoller struct {
	client  queue.Client
	config  models.PollerConfig
	logger  *logrus.Logger
	metrics *metrics.Metrics

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	running   bool
	refreshCh chan struct{}

	mu       sync.RWMutex
	snapshot PollSnapshot
}

// NewQueuePoller creates a poller over the given queue API client.
func NewQueuePoller(client queue.Client, config models.PollerConfig, logger *logrus.Logger, m *metrics.Metrics) *QueuePoller {
	if config.IntervalSec <= 0 {
		config.IntervalSec = constants.DefaultPollIntervalSec
	}
	if config.TimeoutSec <= 0 {
		config.TimeoutSec = constants.DefaultPollTimeoutSec
	}
	if config.Limit <= 0 {
		config.Limit = constants.DefaultPollLimit
	}
	return &QueuePoller{
		client:    client,
		config:    config,
		logger:    logger,
		metrics:   m,
		refreshCh: make(chan struct{}, 1),
		snapshot:  PollSnapshot{Entries: []*autopost.QueueEntry{}},
	}
}

// Start begins the background polling process. The first fetch happens
// immediately.
func (p *QueuePoller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return fmt.Errorf("queue poller is already running")
	}
	if !p.config.Enabled {
		p.logger.Info("Queue polling is disabled in configuration")
		return nil
	}

	p.ctx, p.cancel = context.WithCancel(ctx)
	p.running = true

	p.wg.Add(1)
	go p.pollLoop()

	p.logger.WithFields(logrus.Fields{
		"interval_sec": p.config.IntervalSec,
		"status":       p.config.Status,
		"limit":        p.config.Limit,
	}).Info("Queue poller started")

	return nil
}

// Stop gracefully stops the polling process.
func (p *QueuePoller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.cancel()
	p.mu.Unlock()

	// The in-flight fetch needs the mutex to install its snapshot, so the
	// wait happens outside the lock.
	p.wg.Wait()
	p.logger.Info("Queue poller stopped")
}

// IsRunning returns whether the poller is currently active.
func (p *QueuePoller) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running
}

// Snapshot returns a copy of the latest poll result.
func (p *QueuePoller) Snapshot() PollSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	snapshot := p.snapshot
	snapshot.Entries = append([]*autopost.QueueEntry{}, p.snapshot.Entries...)
	return snapshot
}

// Refresh requests an immediate re-fetch. A refresh already in flight
// absorbs the request.
func (p *QueuePoller) Refresh() {
	select {
	case p.refreshCh <- struct{}{}:
	default:
	}
}

func (p *QueuePoller) pollLoop() {
	defer p.wg.Done()

	interval := time.Duration(p.config.IntervalSec) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.fetch()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.fetch()
		case <-p.refreshCh:
			p.fetch()
		}
	}
}

// fetch runs one poll cycle and installs the result. Errors leave an empty
// entry list rather than the previous page so consumers never render stale
// data as current.
func (p *QueuePoller) fetch() {
	p.setRefreshing(true)

	timeout := time.Duration(p.config.TimeoutSec) * time.Second
	ctx, cancel := context.WithTimeout(p.ctx, timeout)
	defer cancel()

	response, err := p.client.ListAutoposts(ctx, queue.ListOptions{
		Status: p.config.Status,
		Limit:  p.config.Limit,
	})

	if p.metrics != nil {
		p.metrics.PollCycle(err)
	}

	snapshot := PollSnapshot{
		Entries:    []*autopost.QueueEntry{},
		Refreshing: false,
		FetchedAt:  time.Now(),
	}
	if err != nil {
		snapshot.Err = err
		p.logger.WithError(err).Warn("Queue poll failed")
	} else {
		snapshot.Entries = autopost.MapEntries(response.Autoposts)
		snapshot.NextCursor = response.NextCursor
	}

	p.mu.Lock()
	p.snapshot = snapshot
	p.mu.Unlock()
}

func (p *QueuePoller) setRefreshing(refreshing bool) {
	p.mu.Lock()
	p.snapshot.Refreshing = refreshing
	p.mu.Unlock()
}
