package relay

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// TickFunc produces one sample event. It is called once per interval.
type TickFunc func(ctx context.Context) error

// Generator runs a TickFunc on a fixed interval until stopped. A tick that
// returns an error or panics is logged and skipped; the next tick runs on
// schedule.
type Generator struct {
	name     string
	interval time.Duration
	tick     TickFunc
	logger   *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewGenerator creates a stopped generator.
func NewGenerator(name string, interval time.Duration, tick TickFunc) *Generator {
	return &Generator{
		name:     name,
		interval: interval,
		tick:     tick,
		logger:   slog.Default().With("generator", name),
	}
}

// Name returns the generator name.
func (g *Generator) Name() string { return g.name }

// Interval returns the tick interval.
func (g *Generator) Interval() time.Duration { return g.interval }

// Running reports whether the generator loop is active.
func (g *Generator) Running() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.done != nil
}

// Start launches the tick loop. It runs until ctx is done or Stop is called.
// Starting a running generator is a no-op.
func (g *Generator) Start(ctx context.Context) error {
	if g.interval <= 0 {
		return fmt.Errorf("generator %s: interval must be positive, got %s", g.name, g.interval)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.done != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	g.cancel = cancel
	g.done = done

	go g.loop(ctx, done)
	g.logger.Info("Generator started", "interval", g.interval)
	return nil
}

// Stop cancels the loop and waits for an in-flight tick to finish.
// Stopping a stopped generator is a no-op.
func (g *Generator) Stop() {
	g.mu.Lock()
	cancel, done := g.cancel, g.done
	g.cancel, g.done = nil, nil
	g.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	g.logger.Info("Generator stopped")
}

func (g *Generator) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := g.runTick(ctx); err != nil {
				g.logger.Error("Generator tick failed", "error", err)
			}
		}
	}
}

func (g *Generator) runTick(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in tick: %v", r)
		}
	}()
	return g.tick(ctx)
}
