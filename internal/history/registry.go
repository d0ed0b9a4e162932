// Package history keeps per-page change logs in memory and serves
// long-poll "everything after T" requests against them.
package history

import (
	"context"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/iudanet/inkpage/internal/metrics"
	"github.com/iudanet/inkpage/internal/models"
)

// DefaultIdleTimeout время, через которое пустой long-poll возвращает heartbeat
const DefaultIdleTimeout = 10 * time.Second

// Registry владеет журналами всех страниц и общими часами.
// Журналы создаются лениво при первом обращении.
type Registry struct {
	logs *xsync.MapOf[string, *Log]
	// floors время последнего события удаленного журнала страницы:
	// запрос с since ниже него мог пропустить события
	floors      *xsync.MapOf[string, int64]
	clock       *Clock
	now         func() time.Time
	idleTimeout time.Duration
}

// Option настраивает Registry
type Option func(*Registry)

// WithIdleTimeout задает время ожидания пустого long-poll запроса
func WithIdleTimeout(d time.Duration) Option {
	return func(r *Registry) {
		r.idleTimeout = d
	}
}

// WithClock задает часы, которыми штампуются события
func WithClock(c *Clock) Option {
	return func(r *Registry) {
		r.clock = c
	}
}

// WithNow задает источник времени для учета простоя журналов
func WithNow(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// NewRegistry создает пустой реестр журналов
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		logs:        xsync.NewMapOf[string, *Log](),
		floors:      xsync.NewMapOf[string, int64](),
		clock:       NewClock(),
		now:         time.Now,
		idleTimeout: DefaultIdleTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) get(key string) *Log {
	l, _ := r.logs.LoadOrCompute(key, func() *Log {
		return newLog(r.clock, r.now())
	})
	return l
}

// Append stamps the event with the next clock value, appends it to the page
// log and wakes every waiter on that page. The log keeps its own copy of the
// shape, so the caller may keep using it.
func (r *Registry) Append(key string, eventType models.EventType, shape models.Shape) models.ChangeEvent {
	event := models.ChangeEvent{Type: eventType, Shape: shape.Clone()}
	for {
		if stamped, ok := r.get(key).add(event, r.now()); ok {
			metrics.HistoryEvents.WithLabelValues(string(eventType)).Inc()
			return stamped
		}
	}
}

// Time возвращает текущий watermark журнала страницы
func (r *Registry) Time(key string) int64 {
	for {
		if t, ok := r.get(key).time(); ok {
			return t
		}
	}
}

// After returns every event of the page log newer than since. When there is
// none it suspends until one is appended, the idle timeout elapses (empty
// batch with Watermark == since) or ctx is done (ctx.Err()).
//
// If a reaped log of the page held events newer than since, After returns
// ErrHistoryTruncated instead of waiting.
func (r *Registry) After(ctx context.Context, key string, since int64) (Batch, error) {
	for {
		if floor, ok := r.floors.Load(key); ok && since < floor {
			return Batch{}, ErrHistoryTruncated
		}
		batch, ok, err := r.get(key).after(ctx, since, r.idleTimeout, r.now)
		if ok {
			return batch, err
		}
	}
}

// Reap удаляет журналы без ожидающих, к которым не обращались дольше idle.
// Возвращает количество удаленных журналов.
func (r *Registry) Reap(idle time.Duration) int {
	now := r.now()
	reaped := 0

	r.logs.Range(func(key string, l *Log) bool {
		if l.reap(now, idle, func(last int64) { r.remove(key, last) }) {
			reaped++
		}
		return true
	})

	if reaped > 0 {
		metrics.Reaped.WithLabelValues("history").Add(float64(reaped))
	}
	return reaped
}

// remove удаляет журнал, запоминая время его последнего события
func (r *Registry) remove(key string, last int64) {
	if last > 0 {
		r.floors.Compute(key, func(floor int64, loaded bool) (int64, bool) {
			return max(floor, last), false
		})
	}
	r.logs.Delete(key)
}

// Len возвращает количество живых журналов
func (r *Registry) Len() int {
	return r.logs.Size()
}
