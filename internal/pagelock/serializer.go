// Package pagelock serializes state-changing operations per page key.
//
// Operations on the same key run one at a time in submission order (FIFO
// hand-off); operations on different keys never wait for each other.
package pagelock

import (
	"context"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/iudanet/inkpage/internal/metrics"
)

// slot очередь ожидающих для одного ключа
type slot struct {
	lastUsed time.Time
	queue    []chan struct{} // ожидающие в порядке поступления
	mu       sync.Mutex
	busy     bool
	dead     bool // удален janitor'ом
}

// Serializer владеет очередями всех ключей. Очереди создаются лениво.
type Serializer struct {
	slots *xsync.MapOf[string, *slot]
	now   func() time.Time
}

// New создает пустой Serializer
func New() *Serializer {
	return &Serializer{
		slots: xsync.NewMapOf[string, *slot](),
		now:   time.Now,
	}
}

// Acquire waits for the key's slot. The returned release must be called
// exactly once; it hands the slot to the next waiter in FIFO order.
// If ctx is done before the slot is granted, Acquire returns ctx.Err() and
// the caller holds nothing.
func (s *Serializer) Acquire(ctx context.Context, key string) (func(), error) {
	for {
		sl, _ := s.slots.LoadOrCompute(key, func() *slot {
			return &slot{lastUsed: s.now()}
		})

		sl.mu.Lock()
		if sl.dead {
			// Слот удалили между загрузкой и блокировкой, берем новый
			sl.mu.Unlock()
			continue
		}

		if !sl.busy {
			sl.busy = true
			sl.mu.Unlock()
			return s.releaser(sl), nil
		}

		ready := make(chan struct{})
		sl.queue = append(sl.queue, ready)
		sl.mu.Unlock()

		select {
		case <-ready:
			return s.releaser(sl), nil
		case <-ctx.Done():
			sl.mu.Lock()
			if sl.remove(ready) {
				sl.mu.Unlock()
				return nil, ctx.Err()
			}
			sl.mu.Unlock()

			// Слот уже передан нам: отдаем его следующему
			s.release(sl)
			return nil, ctx.Err()
		}
	}
}

// Do runs fn while holding the key's slot. The slot is released on every
// path, including panics in fn.
func (s *Serializer) Do(ctx context.Context, key string, fn func() error) error {
	release, err := s.Acquire(ctx, key)
	if err != nil {
		return err
	}
	defer release()

	return fn()
}

func (s *Serializer) releaser(sl *slot) func() {
	var once sync.Once
	return func() {
		once.Do(func() { s.release(sl) })
	}
}

func (s *Serializer) release(sl *slot) {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	sl.lastUsed = s.now()
	if len(sl.queue) == 0 {
		sl.busy = false
		return
	}

	// busy остается true: слот переходит к первому ожидающему
	next := sl.queue[0]
	sl.queue[0] = nil
	sl.queue = sl.queue[1:]
	close(next)
}

// remove убирает ожидающего из очереди. false означает, что слот ему уже передан.
func (sl *slot) remove(ready chan struct{}) bool {
	for i, ch := range sl.queue {
		if ch == ready {
			sl.queue = append(sl.queue[:i], sl.queue[i+1:]...)
			return true
		}
	}
	return false
}

// Reap удаляет свободные слоты без очереди, не использовавшиеся дольше idle.
// Возвращает количество удаленных слотов.
func (s *Serializer) Reap(idle time.Duration) int {
	now := s.now()
	reaped := 0

	s.slots.Range(func(key string, sl *slot) bool {
		sl.mu.Lock()
		if !sl.dead && !sl.busy && len(sl.queue) == 0 && now.Sub(sl.lastUsed) > idle {
			sl.dead = true
			s.slots.Delete(key)
			reaped++
		}
		sl.mu.Unlock()
		return true
	})

	if reaped > 0 {
		metrics.Reaped.WithLabelValues("lock").Add(float64(reaped))
	}
	return reaped
}

// Len возвращает количество живых слотов
func (s *Serializer) Len() int {
	return s.slots.Size()
}
