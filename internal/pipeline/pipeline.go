package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/contrib-matrix/internal/domain"
	"github.com/couchcryptid/contrib-matrix/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Fetcher downloads the current contributions payload.
type Fetcher interface {
	Fetch(ctx context.Context) (domain.Payload, error)
}

// Transformer converts a payload into a frame for the matrix.
type Transformer interface {
	Transform(p domain.Payload) (domain.Frame, error)
}

// Display is a pixel sink whose buffered pixels become visible on Show.
type Display interface {
	domain.PixelSink
	Show() error
}

// Publisher receives a snapshot of every rendered frame.
type Publisher interface {
	Publish(ctx context.Context, snap domain.Snapshot) error
}

// Options tunes the scheduler.
type Options struct {
	Username        string
	PollInterval    time.Duration
	AnimationFrames int
	FrameDelay      time.Duration
	MaxBrightness   int

	// Clock defaults to the real clock and Rand to a randomly seeded source.
	Clock clockwork.Clock
	Rand  *rand.Rand

	// Publisher is optional.
	Publisher Publisher
}

// Scheduler owns the poll loop: once per hour it fetches, transforms,
// animates, and renders. It is Idle between checks and Refreshing while a
// cycle runs.
type Scheduler struct {
	fetcher     Fetcher
	transformer Transformer
	display     Display
	hours       domain.HourSource
	logger      *slog.Logger
	metrics     *observability.Metrics
	opts        Options

	// owned by the Run goroutine; -1 until the first successful refresh
	lastHour int

	mu      sync.RWMutex
	current domain.Frame
	ready   atomic.Bool
}

// New creates a Scheduler with the given collaborators and observability.
func New(f Fetcher, t Transformer, d Display, hours domain.HourSource, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Scheduler {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Scheduler{
		fetcher:     f,
		transformer: t,
		display:     d,
		hours:       hours,
		logger:      logger,
		metrics:     metrics,
		opts:        opts,
		lastHour:    -1,
	}
}

// CheckReadiness returns nil once a frame has been rendered.
func (s *Scheduler) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("no frame rendered yet")
	}
	return nil
}

// CurrentFrame returns a copy of the frame on the matrix.
func (s *Scheduler) CurrentFrame() (domain.Frame, bool) {
	if !s.ready.Load() {
		return domain.Frame{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	f := s.current
	f.Levels = slices.Clone(f.Levels)
	return f, true
}

// Run checks the hour every poll interval until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler started", "poll_interval", s.opts.PollInterval, "username", s.opts.Username)
	s.metrics.SchedulerRunning.Set(1)
	defer s.metrics.SchedulerRunning.Set(0)

	for {
		if ctx.Err() != nil {
			s.logger.Info("scheduler stopping", "reason", ctx.Err())
			return nil
		}

		s.Tick(ctx)

		if !sleepWithContext(ctx, s.opts.Clock, s.opts.PollInterval) {
			s.logger.Info("scheduler stopping", "reason", ctx.Err())
			return nil
		}
	}
}

// Tick runs one hour check and refreshes when the hour differs from the last
// successful refresh. Failures are logged and leave the last hour untouched so
// the next check retries. Returns true if the matrix was refreshed.
func (s *Scheduler) Tick(ctx context.Context) bool {
	hour := s.hours.CurrentHour()
	if hour == s.lastHour {
		return false
	}

	if err := s.refresh(ctx, hour); err != nil {
		s.logger.Warn("refresh failed, keeping previous frame", "hour", hour, "error", err)
		return false
	}

	s.lastHour = hour
	return true
}

// LastUpdateHour reports the hour of the last successful refresh. It must be
// called from the goroutine driving Tick or after Run has returned.
func (s *Scheduler) LastUpdateHour() (int, bool) {
	return s.lastHour, s.lastHour >= 0
}

func (s *Scheduler) refresh(ctx context.Context, hour int) error {
	start := s.opts.Clock.Now()

	payload, err := s.fetcher.Fetch(ctx)
	if err != nil {
		s.metrics.RefreshesTotal.WithLabelValues(observability.OutcomeFetchError).Inc()
		return err
	}

	frame, err := s.transformer.Transform(payload)
	if err != nil {
		s.metrics.RefreshesTotal.WithLabelValues(observability.OutcomeParseError).Inc()
		return fmt.Errorf("transform: %w", err)
	}

	if err := s.draw(ctx, frame); err != nil {
		s.metrics.RefreshesTotal.WithLabelValues(observability.OutcomeRenderError).Inc()
		return err
	}

	s.mu.Lock()
	s.current = frame
	s.mu.Unlock()
	s.ready.Store(true)

	lit := frame.Lit()
	s.metrics.RefreshesTotal.WithLabelValues(observability.OutcomeSuccess).Inc()
	s.metrics.Peak.Set(float64(frame.Peak))
	s.metrics.LitPixels.Set(float64(lit))
	s.metrics.LastRefresh.Set(float64(s.opts.Clock.Now().Unix()))

	s.logger.Info("matrix refreshed",
		"hour", hour,
		"peak", frame.Peak,
		"lit", lit,
		"duration", s.opts.Clock.Since(start),
	)

	s.publish(ctx, hour, frame)
	return nil
}

// draw plays the transition and then the frame. The animation always
// finishes before the first pixel of the new frame is written.
func (s *Scheduler) draw(ctx context.Context, frame domain.Frame) error {
	present := func() error {
		if err := s.display.Show(); err != nil {
			return err
		}
		if !sleepWithContext(ctx, s.opts.Clock, s.opts.FrameDelay) {
			return ctx.Err()
		}
		return nil
	}

	err := domain.Animate(s.opts.AnimationFrames, frame.Width, frame.Height, s.opts.MaxBrightness, s.display, s.opts.Rand, present)
	if err != nil {
		return fmt.Errorf("animate: %w", err)
	}

	domain.Render(frame.Levels, frame.Width, frame.Height, s.display)
	if err := s.display.Show(); err != nil {
		return fmt.Errorf("show frame: %w", err)
	}
	return nil
}

func (s *Scheduler) publish(ctx context.Context, hour int, frame domain.Frame) {
	if s.opts.Publisher == nil {
		return
	}
	snap := domain.Snapshot{
		Username:   s.opts.Username,
		Hour:       hour,
		Width:      frame.Width,
		Height:     frame.Height,
		Peak:       frame.Peak,
		Levels:     frame.Levels,
		RenderedAt: s.opts.Clock.Now(),
	}
	if err := s.opts.Publisher.Publish(ctx, snap); err != nil {
		s.metrics.PublishErrors.Inc()
		s.logger.Warn("snapshot publish failed", "error", err)
	}
}

func sleepWithContext(ctx context.Context, clock clockwork.Clock, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
