package application

import (
	"context"
	"slices"
	"time"

	"github.com/bnema/ff1c/internal/domain"
	"github.com/bnema/ff1c/internal/logging"
	"github.com/bnema/ff1c/internal/ports"
)

const defaultReportTimeout = 10 * time.Second

// SyncLoop drives one bridge round-trip per iteration and reports what the
// snapshots reveal to the multiworld session.
type SyncLoop struct {
	bridge        ports.Bridge
	session       ports.Session
	store         *MessageStore
	clock         ports.Clock
	logger        *logging.Logger
	retryPause    time.Duration
	reportTimeout time.Duration

	queue *reportQueue

	// owned by the report worker
	previous domain.Snapshot
	finished bool
}

type SyncOption func(*SyncLoop)

// WithRetryPause waits between failed connect attempts. Zero retries at once.
func WithRetryPause(d time.Duration) SyncOption {
	return func(l *SyncLoop) {
		if d > 0 {
			l.retryPause = d
		}
	}
}

func WithSyncLogger(logger *logging.Logger) SyncOption {
	return func(l *SyncLoop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

func WithReportTimeout(d time.Duration) SyncOption {
	return func(l *SyncLoop) {
		if d > 0 {
			l.reportTimeout = d
		}
	}
}

func NewSyncLoop(bridge ports.Bridge, session ports.Session, store *MessageStore, clock ports.Clock, opts ...SyncOption) *SyncLoop {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	l := &SyncLoop{
		bridge:        bridge,
		session:       session,
		store:         store,
		clock:         clock,
		logger:        logging.Nop(),
		reportTimeout: defaultReportTimeout,
		queue:         newReportQueue(),
	}
	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Run loops until ctx is cancelled. A round-trip already in flight is left to
// finish or time out; queued reports are then flushed and the bridge closed.
// Run is meant to be called once.
func (l *SyncLoop) Run(ctx context.Context) error {
	l.logger.Info("starting bridge connector, use /nes for status information")

	go l.queue.run(l.report)

	for ctx.Err() == nil {
		l.step(ctx)
	}

	l.queue.close()
	l.queue.wait()

	if err := l.bridge.Close(); err != nil {
		l.logger.Warn("close bridge connection", "error", err)
	}

	return nil
}

// Status is the current bridge status line.
func (l *SyncLoop) Status() domain.BridgeStatus {
	return l.bridge.Status()
}

// ResetBinding makes the next snapshot be diffed even if it matches the last
// one, so a fresh session gets a full report.
func (l *SyncLoop) ResetBinding() {
	l.queue.push(reportJob{reset: true})
}

func (l *SyncLoop) step(ctx context.Context) {
	if !l.bridge.Connected() {
		l.logger.Debug("attempting to connect to bridge")
		if err := l.bridge.Connect(ctx); err != nil {
			l.logger.Debug("bridge connect failed, trying again", "error", err)
			l.pause(ctx)
		}
		return
	}

	now := l.clock.Now()
	payload := domain.BridgePayload{
		Items:    itemIDs(l.session.ItemsReceived()),
		Messages: l.store.Visible(now),
		At:       now,
	}

	frame, err := l.bridge.RoundTrip(ctx, payload)
	if err != nil {
		l.logger.Info("lost connection to bridge and attempting to reconnect, use /nes for status updates",
			"status", l.bridge.Status().Text, "error", err)
		return
	}

	if frame.KeepAlive || !l.session.Ready() {
		return
	}

	l.queue.push(reportJob{snapshot: frame.Snapshot})
}

func (l *SyncLoop) pause(ctx context.Context) {
	if l.retryPause <= 0 {
		return
	}

	timer := time.NewTimer(l.retryPause)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func (l *SyncLoop) report(job reportJob) {
	if job.reset {
		l.previous = nil
		return
	}

	tracked := slices.Clone(l.session.MissingLocations())
	slices.Sort(tracked)

	result := Diff(l.previous, job.snapshot, tracked, l.finished)
	l.previous = job.snapshot

	ctx, cancel := context.WithTimeout(context.Background(), l.reportTimeout)
	defer cancel()

	if len(result.Checked) > 0 {
		if err := l.session.SendMessages(ctx, domain.NewLocationChecks(result.Checked)); err != nil {
			l.logger.Warn("report location checks", "count", len(result.Checked), "error", err)
			l.previous = nil
		} else {
			l.logger.Debug("reported location checks", "locations", result.Checked)
		}
	}

	if result.JustFinished {
		if err := l.session.SendMessages(ctx, domain.NewGoalStatusUpdate()); err != nil {
			l.logger.Warn("report goal completion", "error", err)
			l.previous = nil
			return
		}
		l.finished = true
		l.logger.Info("goal completion reported")
	}
}

func itemIDs(items []domain.Item) []int64 {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.Item)
	}
	return ids
}
