// Package pagestore manages the shapes stored on pages.
//
// Every state-changing operation on a page runs inside that page's serializer
// slot: read the page from the durable store, compute the new state, write it
// back and, on success, append one event to the page's change log. Readers of
// history long-poll the change log directly.
package pagestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/inkpage/internal/history"
	"github.com/iudanet/inkpage/internal/metrics"
	"github.com/iudanet/inkpage/internal/models"
	"github.com/iudanet/inkpage/internal/pagelock"
	"github.com/iudanet/inkpage/internal/server/storage"
	"github.com/iudanet/inkpage/internal/validation"
)

// Service is the page state manager. Create it once and share it between
// request handlers and background jobs.
type Service struct {
	store   storage.PageStorage
	locks   *pagelock.Serializer
	history *history.Registry
	logger  *slog.Logger
}

// Option настраивает Service
type Option func(*Service)

// WithHistory задает реестр журналов изменений
func WithHistory(r *history.Registry) Option {
	return func(s *Service) {
		s.history = r
	}
}

// New creates a page state manager over store
func New(store storage.PageStorage, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:   store,
		locks:   pagelock.New(),
		history: history.NewRegistry(),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetSnapshot returns the shapes of the page together with the change log
// watermark to watch from. A page that was never written yields an empty
// snapshot with First set.
//
// Shapes stored without an id get one from NextID here, in memory only. The
// repair is persisted by the next mutation of the page; until then repeated
// reads may number such shapes differently.
func (s *Service) GetSnapshot(ctx context.Context, key string) (*Snapshot, error) {
	// Watermark читается до состояния: событие, попавшее между двумя чтениями,
	// придет клиенту повторно, но не потеряется
	watermark := s.history.Time(key)

	info, first, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		Shapes:     info.Shapes,
		NextID:     info.NextID,
		NextUpdate: watermark,
		First:      first,
	}, nil
}

// AddShape validates the input and appends the shape to the page.
// A page that already holds an equivalent shape is left untouched and
// StatusDuplicate is returned. Invalid input fails with
// validation.ErrInvalidShape before any lock or I/O.
func (s *Service) AddShape(ctx context.Context, key string, in validation.ShapeInput) (Result, error) {
	shape, err := validation.BuildShape(in)
	if err != nil {
		metrics.Mutations.WithLabelValues("add", metrics.ResultInvalid).Inc()
		return Result{}, err
	}

	var res Result
	err = s.mutate(ctx, "add", key, func(ctx context.Context) error {
		info, _, err := s.load(ctx, key)
		if err != nil {
			return err
		}

		if models.FindEquivalent(info.Shapes, &shape) >= 0 {
			res = Result{Status: StatusDuplicate, Shape: shape}
			return nil
		}

		shape.ID = info.NextID
		info.NextID++
		info.Shapes = append(info.Shapes, shape)

		if err := s.save(ctx, key, info); err != nil {
			return err
		}

		s.history.Append(key, models.EventAddShape, shape)
		res = Result{Status: StatusApplied, Shape: shape}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	metrics.Mutations.WithLabelValues("add", res.Status.String()).Inc()
	s.logger.DebugContext(ctx, "add shape",
		slog.String("page", key),
		slog.String("status", res.Status.String()),
		slog.Int64("shape_id", res.Shape.ID))

	return res, nil
}

// DeleteShape removes the first shape on the page that is equivalent to the
// input. NextID is never decreased, so deleted ids are not reused.
func (s *Service) DeleteShape(ctx context.Context, key string, in validation.ShapeInput) (Result, error) {
	needle, err := validation.BuildShape(in)
	if err != nil {
		metrics.Mutations.WithLabelValues("delete", metrics.ResultInvalid).Inc()
		return Result{}, err
	}

	var res Result
	err = s.mutate(ctx, "delete", key, func(ctx context.Context) error {
		info, _, err := s.load(ctx, key)
		if err != nil {
			return err
		}

		idx := models.FindEquivalent(info.Shapes, &needle)
		if idx < 0 {
			res = Result{Status: StatusNotFound, Shape: needle}
			return nil
		}

		matched := info.Shapes[idx]
		info.Shapes = append(info.Shapes[:idx], info.Shapes[idx+1:]...)

		if err := s.save(ctx, key, info); err != nil {
			return err
		}

		s.history.Append(key, models.EventDeleteShape, matched)
		res = Result{Status: StatusApplied, Shape: matched}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	metrics.Mutations.WithLabelValues("delete", res.Status.String()).Inc()
	s.logger.DebugContext(ctx, "delete shape",
		slog.String("page", key),
		slog.String("status", res.Status.String()),
		slog.Int64("shape_id", res.Shape.ID))

	return res, nil
}

// FadeShapes subtracts alphaDelta from every shape's alpha and drops shapes
// whose alpha falls below cutoff. It is a silent decay pass: no change log
// event is emitted, however many shapes are removed. A page that was never
// written is left alone. The error is informational; callers usually only
// log it.
func (s *Service) FadeShapes(ctx context.Context, key string, alphaDelta, cutoff float64) error {
	removed := 0

	err := s.mutate(ctx, "fade", key, func(ctx context.Context) error {
		info, first, err := s.load(ctx, key)
		if err != nil {
			return err
		}
		if first {
			return nil
		}

		kept := info.Shapes[:0]
		for _, shape := range info.Shapes {
			shape.A -= alphaDelta
			if shape.A >= cutoff {
				kept = append(kept, shape)
			}
		}
		removed = len(info.Shapes) - len(kept)
		info.Shapes = kept

		return s.save(ctx, key, info)
	})
	if err != nil {
		return err
	}

	metrics.Mutations.WithLabelValues("fade", metrics.ResultApplied).Inc()
	metrics.FadedShapes.Add(float64(removed))
	s.logger.DebugContext(ctx, "faded shapes",
		slog.String("page", key),
		slog.Int("removed", removed))

	return nil
}

// StreamUpdates waits for change log events of the page newer than since.
// See history.Registry.After for the timeout and cancellation rules.
func (s *Service) StreamUpdates(ctx context.Context, key string, since int64) (history.Batch, error) {
	return s.history.After(ctx, key, since)
}

// Reap drops serializer slots and change logs idle for longer than idle
func (s *Service) Reap(idle time.Duration) (locks, logs int) {
	return s.locks.Reap(idle), s.history.Reap(idle)
}

// mutate выполняет fn в слоте страницы. Ввод-вывод внутри слота не
// прерывается отменой запроса: начатая мутация доводится до конца.
func (s *Service) mutate(ctx context.Context, op, key string, fn func(ctx context.Context) error) error {
	err := s.locks.Do(ctx, key, func() error {
		start := time.Now()
		defer func() {
			metrics.MutationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
		}()

		return fn(context.WithoutCancel(ctx))
	})
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrStore) {
		metrics.Mutations.WithLabelValues(op, metrics.ResultError).Inc()
		s.logger.ErrorContext(ctx, "page mutation failed",
			slog.String("op", op),
			slog.String("page", key),
			slog.Any("error", err))
	}
	return err
}

// load читает страницу из хранилища. Для отсутствующей страницы возвращает
// пустое состояние и first = true.
func (s *Service) load(ctx context.Context, key string) (*models.PageInfo, bool, error) {
	blob, err := s.store.GetPage(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrPageNotFound) {
			return &models.PageInfo{Shapes: []models.Shape{}}, true, nil
		}
		return nil, false, fmt.Errorf("%w: failed to read page %q: %w", ErrStore, key, err)
	}

	var info models.PageInfo
	if err := json.Unmarshal(blob, &info); err != nil {
		return nil, false, fmt.Errorf("%w: failed to decode page %q: %w", ErrStore, key, err)
	}
	if info.Shapes == nil {
		info.Shapes = []models.Shape{}
	}

	// nextId мог потеряться в старых данных: не выдаем уже занятые id
	for i := range info.Shapes {
		if id := info.Shapes[i].ID; info.Shapes[i].HasID() && id >= info.NextID {
			info.NextID = id + 1
		}
	}

	// Ленивая выдача id фигурам из старых данных, без записи
	for i := range info.Shapes {
		if !info.Shapes[i].HasID() {
			s.logger.WarnContext(ctx, "shape without id",
				slog.String("page", key),
				slog.Int64("assigned_id", info.NextID))
			info.Shapes[i].ID = info.NextID
			info.NextID++
		}
	}

	return &info, false, nil
}

// save записывает {shapes, nextId} страницы целиком
func (s *Service) save(ctx context.Context, key string, info *models.PageInfo) error {
	blob, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("%w: failed to encode page %q: %w", ErrStore, key, err)
	}

	if err := s.store.SetPage(ctx, key, blob); err != nil {
		return fmt.Errorf("%w: failed to write page %q: %w", ErrStore, key, err)
	}

	return nil
}
