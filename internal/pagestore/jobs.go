package pagestore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/inkpage/internal/server/storage"
)

// FadeConfig параметры фонового угасания фигур
type FadeConfig struct {
	Interval time.Duration // Interval период прохода; 0 отключает угасание
	Delta    float64       // Delta на сколько уменьшается alpha за проход
	Cutoff   float64       // Cutoff фигуры с alpha ниже удаляются
}

// FadeAll runs one fade pass over every page the lister knows about.
// A failure on one page is logged and does not stop the pass.
// Returns the number of pages faded successfully.
func (s *Service) FadeAll(ctx context.Context, lister storage.PageLister, delta, cutoff float64) (int, error) {
	keys, err := lister.ListPages(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to list pages: %w", ErrStore, err)
	}

	faded := 0
	for _, key := range keys {
		if ctx.Err() != nil {
			return faded, ctx.Err()
		}
		if err := s.FadeShapes(ctx, key, delta, cutoff); err != nil {
			s.logger.WarnContext(ctx, "fade failed", slog.String("page", key), slog.Any("error", err))
			continue
		}
		faded++
	}

	return faded, nil
}

// RunFader periodically fades all pages until ctx is done
func (s *Service) RunFader(ctx context.Context, lister storage.PageLister, cfg FadeConfig) {
	if cfg.Interval <= 0 {
		return
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			faded, err := s.FadeAll(ctx, lister, cfg.Delta, cfg.Cutoff)
			if err != nil {
				s.logger.Error("fade pass failed", slog.Any("error", err))
				continue
			}
			s.logger.Debug("fade pass completed", slog.Int("pages", faded))
		case <-ctx.Done():
			return
		}
	}
}

// RunJanitor periodically reaps idle serializer slots and change logs until
// ctx is done
func (s *Service) RunJanitor(ctx context.Context, interval, idle time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			locks, logs := s.Reap(idle)
			if locks > 0 || logs > 0 {
				s.logger.Info("reaped idle pages", slog.Int("locks", locks), slog.Int("logs", logs))
			}
		case <-ctx.Done():
			return
		}
	}
}
