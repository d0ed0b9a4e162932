package pagelock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitQueued ждет, пока в очереди ключа окажется n ожидающих
func waitQueued(t *testing.T, s *Serializer, key string, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		sl, ok := s.slots.Load(key)
		if !ok {
			return false
		}
		sl.mu.Lock()
		defer sl.mu.Unlock()
		return len(sl.queue) == n
	}, time.Second, time.Millisecond)
}

func TestSerializer_MutualExclusion(t *testing.T) {
	s := New()
	ctx := context.Background()

	var inFlight, maxInFlight int32
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Do(ctx, "page", func() error {
				n := atomic.AddInt32(&inFlight, 1)
				for {
					m := atomic.LoadInt32(&maxInFlight)
					if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
						break
					}
				}
				time.Sleep(100 * time.Microsecond)
				atomic.AddInt32(&inFlight, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInFlight, "only one action per key may run at a time")
}

func TestSerializer_FIFOOrder(t *testing.T) {
	s := New()
	ctx := context.Background()

	release, err := s.Acquire(ctx, "page")
	require.NoError(t, err)

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup

	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = s.Do(ctx, "page", func() error {
				mu.Lock()
				order = append(order, n)
				mu.Unlock()
				return nil
			})
		}(i)
		// Следующий встает в очередь только после предыдущего
		waitQueued(t, s, "page", i+1)
	}

	release()
	wg.Wait()

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestSerializer_DifferentKeysDoNotBlock(t *testing.T) {
	s := New()
	ctx := context.Background()

	release, err := s.Acquire(ctx, "a")
	require.NoError(t, err)
	defer release()

	done := make(chan struct{})
	go func() {
		_ = s.Do(ctx, "b", func() error { return nil })
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("action on another key was blocked")
	}
}

func TestSerializer_DoPropagatesErrorAndReleases(t *testing.T) {
	s := New()
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Do(ctx, "page", func() error { return boom })
	assert.ErrorIs(t, err, boom)

	// Слот освобожден
	ctx2, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	release, err := s.Acquire(ctx2, "page")
	require.NoError(t, err)
	release()
}

func TestSerializer_DoReleasesOnPanic(t *testing.T) {
	s := New()
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = s.Do(ctx, "page", func() error { panic("oops") })
	})

	ctx2, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, s.Do(ctx2, "page", func() error { return nil }))
}

func TestSerializer_ReleaseIsIdempotent(t *testing.T) {
	s := New()
	ctx := context.Background()

	release, err := s.Acquire(ctx, "page")
	require.NoError(t, err)

	release()
	release()

	sl, ok := s.slots.Load("page")
	require.True(t, ok)
	assert.False(t, sl.busy)
}

func TestSerializer_CancelWhileQueued(t *testing.T) {
	s := New()

	release, err := s.Acquire(context.Background(), "page")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := s.Acquire(ctx, "page")
		errCh <- err
	}()
	waitQueued(t, s, "page", 1)

	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)
	waitQueued(t, s, "page", 0)

	release()

	// Слот свободен, отмененный ожидающий его не занял
	ctx2, cancel2 := context.WithTimeout(context.Background(), time.Second)
	defer cancel2()
	release2, err := s.Acquire(ctx2, "page")
	require.NoError(t, err)
	release2()
}

func TestSerializer_Reap(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	s := New()
	s.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	advance := func(d time.Duration) {
		mu.Lock()
		now = now.Add(d)
		mu.Unlock()
	}
	ctx := context.Background()

	require.NoError(t, s.Do(ctx, "idle", func() error { return nil }))
	held, err := s.Acquire(ctx, "held")
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())

	assert.Equal(t, 0, s.Reap(time.Minute), "nothing is idle yet")

	advance(2 * time.Minute)
	assert.Equal(t, 1, s.Reap(time.Minute), "busy slot must survive")
	assert.Equal(t, 1, s.Len())

	held()
	advance(2 * time.Minute)
	assert.Equal(t, 1, s.Reap(time.Minute))
	assert.Equal(t, 0, s.Len())

	// После удаления ключ снова работает
	require.NoError(t, s.Do(ctx, "idle", func() error { return nil }))
	assert.Equal(t, 1, s.Len())
}

func TestSerializer_ReapRacesWithAcquire(t *testing.T) {
	s := New()
	ctx := context.Background()

	var inFlight, violations int32
	var wg sync.WaitGroup
	stop := make(chan struct{})

	go func() {
		for {
			select {
			case <-stop:
				return
			default:
				s.Reap(0)
			}
		}
	}()

	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Do(ctx, "page", func() error {
				if atomic.AddInt32(&inFlight, 1) > 1 {
					atomic.AddInt32(&violations, 1)
				}
				atomic.AddInt32(&inFlight, -1)
				return nil
			})
		}()
	}
	wg.Wait()
	close(stop)

	assert.Equal(t, int32(0), violations)
}
