package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrShutdownTimeout is returned when workers don't stop within timeout.
var ErrShutdownTimeout = errors.New("worker pool shutdown timed out")

// Warmer refreshes the poster cache for a channel when its entry would
// expire within margin. Implemented by service.ResolveService.
type Warmer interface {
	WarmChannel(ctx context.Context, login string, margin time.Duration) error
}

// Pool keeps posters warm for a configured set of channels: every tick it
// re-probes each channel so the first viewer after a cache expiry never
// waits on the probe loop.
type Pool struct {
	workers  int
	interval time.Duration
	channels []string
	warmer   Warmer
	logger   *slog.Logger

	jobs   chan string
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// Config holds worker pool configuration.
type Config struct {
	Workers  int
	Interval time.Duration
	Channels []string
}

// NewPool creates a new warmup pool.
func NewPool(cfg Config, warmer Warmer, logger *slog.Logger) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		workers:  cfg.Workers,
		interval: cfg.Interval,
		channels: cfg.Channels,
		warmer:   warmer,
		logger:   logger,
		jobs:     make(chan string, len(cfg.Channels)+1),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the dispatcher and all workers. With no channels
// configured the pool stays idle.
func (p *Pool) Start() {
	if len(p.channels) == 0 {
		p.logger.Info("no warmup channels configured, pool idle")
		return
	}

	p.logger.Info("starting warmup pool",
		"workers", p.workers,
		"channels", len(p.channels),
		"interval", p.interval,
	)

	p.wg.Add(1)
	go p.dispatcher()

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop gracefully stops the dispatcher and workers.
func (p *Pool) Stop(timeout time.Duration) error {
	p.logger.Info("stopping warmup pool")
	p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("warmup pool stopped gracefully")
		return nil
	case <-time.After(timeout):
		return ErrShutdownTimeout
	}
}

// dispatcher enqueues every configured channel each tick, including one
// immediate pass at startup.
func (p *Pool) dispatcher() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.enqueueAll()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.enqueueAll()
		}
	}
}

func (p *Pool) enqueueAll() {
	for _, login := range p.channels {
		select {
		case p.jobs <- login:
		default:
			// Queue still full from the previous tick; skip rather
			// than pile up duplicate warmups.
		}
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	logger := p.logger.With("worker_id", id)
	logger.Debug("warmup worker started")

	for {
		select {
		case <-p.ctx.Done():
			logger.Debug("warmup worker stopping")
			return
		case login := <-p.jobs:
			// Margin is the tick interval: anything expiring before the
			// next tick gets re-probed now.
			if err := p.warmer.WarmChannel(p.ctx, login, p.interval); err != nil {
				if !errors.Is(err, context.Canceled) {
					logger.Warn("warmup failed", "channel", login, "error", err)
				}
				continue
			}
			logger.Debug("poster warmed", "channel", login)
		}
	}
}
