package registry

import (
	"context"
	"log/slog"
	"time"
)

// Loop periodically drives one best-effort round of work. Round errors
// are logged and never stop the ticker. Cancelling the context or
// calling Stop ends the loop cleanly; neither is reported as an error
// from Start.
type Loop interface {
	Start(ctx context.Context) error
	Stop()
}

type loop struct {
	name     string
	interval time.Duration
	round    func(ctx context.Context) error
	logger   *slog.Logger
	stopChan chan struct{}
}

// NewGossipLoop drives Service.GossipRound at the configured interval.
func NewGossipLoop(svc Service, interval time.Duration, logger *slog.Logger) Loop {
	return &loop{
		name:     "gossip",
		interval: interval,
		round:    svc.GossipRound,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// NewHealthLoop drives Service.HealthRound at the configured interval.
func NewHealthLoop(svc Service, interval time.Duration, logger *slog.Logger) Loop {
	return &loop{
		name:     "health",
		interval: interval,
		round:    svc.HealthRound,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

func (l *loop) Start(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.logger.Info("loop started",
		slog.String("loop", l.name),
		slog.Duration("interval", l.interval),
	)

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("loop stopping", slog.String("loop", l.name))

			return nil
		case <-l.stopChan:
			l.logger.Info("loop stopped", slog.String("loop", l.name))

			return nil
		case <-ticker.C:
			if err := l.round(ctx); err != nil {
				l.logger.Error("round failed",
					slog.String("loop", l.name),
					slog.Any("error", err),
				)
			}
		}
	}
}

func (l *loop) Stop() {
	close(l.stopChan)
}
