package history

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/inkpage/internal/models"
)

func testShape(id int64) models.Shape {
	return models.Shape{ID: id, Points: []models.Point{{float64(id), float64(id)}}, A: 1}
}

func newTestRegistry(timeout time.Duration) *Registry {
	return NewRegistry(WithClock(NewLogicalClock()), WithIdleTimeout(timeout))
}

func TestRegistry_AppendAndTime(t *testing.T) {
	r := newTestRegistry(time.Second)

	assert.Equal(t, int64(0), r.Time("page"), "fresh log starts at clock value")

	ev1 := r.Append("page", models.EventAddShape, testShape(0))
	ev2 := r.Append("page", models.EventDeleteShape, testShape(0))

	assert.Equal(t, int64(1), ev1.Time)
	assert.Equal(t, int64(2), ev2.Time)
	assert.Equal(t, models.EventAddShape, ev1.Type)
	assert.Equal(t, models.EventDeleteShape, ev2.Type)
	assert.Equal(t, int64(2), r.Time("page"))

	// Другая страница получает отметки из тех же часов
	ev3 := r.Append("other", models.EventAddShape, testShape(1))
	assert.Equal(t, int64(3), ev3.Time)
	assert.Equal(t, int64(2), r.Time("page"))
}

func TestRegistry_After_Immediate(t *testing.T) {
	r := newTestRegistry(time.Second)
	ctx := context.Background()

	r.Append("page", models.EventAddShape, testShape(0))
	r.Append("page", models.EventAddShape, testShape(1))
	r.Append("page", models.EventAddShape, testShape(2))

	tests := []struct {
		name          string
		since         int64
		expectedIDs   []int64
		expectedWater int64
	}{
		{name: "all events", since: 0, expectedIDs: []int64{0, 1, 2}, expectedWater: 3},
		{name: "after first", since: 1, expectedIDs: []int64{1, 2}, expectedWater: 3},
		{name: "after second", since: 2, expectedIDs: []int64{2}, expectedWater: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch, err := r.After(ctx, "page", tt.since)
			require.NoError(t, err)

			ids := make([]int64, 0, len(batch.Events))
			for _, ev := range batch.Events {
				ids = append(ids, ev.Shape.ID)
			}
			assert.Equal(t, tt.expectedIDs, ids)
			assert.Equal(t, tt.expectedWater, batch.Watermark)
		})
	}
}

func TestRegistry_After_Heartbeat(t *testing.T) {
	r := newTestRegistry(30 * time.Millisecond)

	start := time.Now()
	batch, err := r.After(context.Background(), "page", 0)
	require.NoError(t, err)

	assert.Empty(t, batch.Events)
	assert.Equal(t, int64(0), batch.Watermark)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestRegistry_After_SameSinceTwice(t *testing.T) {
	r := newTestRegistry(20 * time.Millisecond)
	ctx := context.Background()

	since := r.Time("page")

	first, err := r.After(ctx, "page", since)
	require.NoError(t, err)
	second, err := r.After(ctx, "page", since)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	r.Append("page", models.EventAddShape, testShape(5))

	third, err := r.After(ctx, "page", since)
	require.NoError(t, err)
	require.Len(t, third.Events, 1)
	assert.Equal(t, int64(5), third.Events[0].Shape.ID)

	// Следующий запрос с новым watermark не получает то же событие повторно
	fourth, err := r.After(ctx, "page", third.Watermark)
	require.NoError(t, err)
	assert.Empty(t, fourth.Events)
}

func TestRegistry_After_WakesOnAppend(t *testing.T) {
	r := newTestRegistry(5 * time.Second)
	since := r.Time("page")

	const waiters = 5
	results := make(chan Batch, waiters)

	var wg sync.WaitGroup
	wg.Add(waiters)
	for i := 0; i < waiters; i++ {
		go func() {
			defer wg.Done()
			batch, err := r.After(context.Background(), "page", since)
			assert.NoError(t, err)
			results <- batch
		}()
	}

	// Ждем, пока все запросы повиснут
	require.Eventually(t, func() bool {
		l := r.get("page")
		l.mu.Lock()
		defer l.mu.Unlock()
		return l.waiters == waiters
	}, time.Second, 5*time.Millisecond)

	ev := r.Append("page", models.EventAddShape, testShape(1))
	wg.Wait()
	close(results)

	for batch := range results {
		require.Len(t, batch.Events, 1)
		assert.Equal(t, ev, batch.Events[0])
		assert.Equal(t, ev.Time, batch.Watermark)
	}
}

func TestRegistry_After_OtherPageDoesNotWake(t *testing.T) {
	r := newTestRegistry(50 * time.Millisecond)
	since := r.Time("page")

	done := make(chan Batch, 1)
	go func() {
		batch, _ := r.After(context.Background(), "page", since)
		done <- batch
	}()

	r.Append("other", models.EventAddShape, testShape(1))

	batch := <-done
	assert.Empty(t, batch.Events)
}

func TestRegistry_After_Cancel(t *testing.T) {
	r := newTestRegistry(5 * time.Second)
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		_, err := r.After(ctx, "page", 0)
		errCh <- err
	}()

	require.Eventually(t, func() bool {
		l := r.get("page")
		l.mu.Lock()
		defer l.mu.Unlock()
		return l.waiters == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)

	// Регистрация снята, состояние журнала не изменилось
	l := r.get("page")
	l.mu.Lock()
	assert.Equal(t, 0, l.waiters)
	assert.Empty(t, l.events)
	l.mu.Unlock()
}

func TestRegistry_Reap(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	clockNow := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	advance := func(d time.Duration) {
		mu.Lock()
		now = now.Add(d)
		mu.Unlock()
	}

	clock := NewLogicalClock()
	r := NewRegistry(WithClock(clock), WithNow(clockNow), WithIdleTimeout(5*time.Second))

	r.Append("idle", models.EventAddShape, testShape(0))
	r.Append("busy", models.EventAddShape, testShape(1))
	assert.Equal(t, 2, r.Len())

	// Не простаивает достаточно долго
	assert.Equal(t, 0, r.Reap(time.Minute))

	// "busy" держит ожидающий запрос
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_, _ = r.After(ctx, "busy", 100)
	}()
	require.Eventually(t, func() bool {
		l := r.get("busy")
		l.mu.Lock()
		defer l.mu.Unlock()
		return l.waiters == 1
	}, time.Second, 5*time.Millisecond)

	advance(2 * time.Minute)
	assert.Equal(t, 1, r.Reap(time.Minute))
	assert.Equal(t, 1, r.Len())

	// Новый журнал начинается с текущего значения часов, поэтому
	// старые watermark остаются осмысленными
	assert.Equal(t, clock.GetTimestamp(), r.Time("idle"))
	ev := r.Append("idle", models.EventAddShape, testShape(2))
	assert.Greater(t, ev.Time, int64(2))

	batch, err := r.After(context.Background(), "idle", 1)
	require.NoError(t, err)
	require.Len(t, batch.Events, 1)
	assert.Equal(t, int64(2), batch.Events[0].Shape.ID)
}

func TestRegistry_After_TruncatedAfterReap(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewRegistry(
		WithClock(NewLogicalClock()),
		WithNow(func() time.Time { return now }),
		WithIdleTimeout(10*time.Millisecond),
	)

	watermark := r.Time("p")
	ev := r.Append("p", models.EventAddShape, testShape(0))

	now = now.Add(2 * time.Minute)
	require.Equal(t, 1, r.Reap(time.Minute))

	// Событие новее watermark удалено вместе с журналом
	_, err := r.After(context.Background(), "p", watermark)
	assert.ErrorIs(t, err, ErrHistoryTruncated)

	// Клиент, видевший последнее событие, ничего не потерял
	batch, err := r.After(context.Background(), "p", ev.Time)
	require.NoError(t, err)
	assert.Empty(t, batch.Events)
	assert.Equal(t, ev.Time, batch.Watermark)

	// Снимок после удаления дает watermark, с которого можно продолжать
	fresh := r.Time("p")
	assert.GreaterOrEqual(t, fresh, ev.Time)
	next := r.Append("p", models.EventAddShape, testShape(1))
	batch, err = r.After(context.Background(), "p", fresh)
	require.NoError(t, err)
	require.Len(t, batch.Events, 1)
	assert.Equal(t, next.Time, batch.Events[0].Time)
}

func TestRegistry_ReapEmptyLogKeepsNoFloor(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewRegistry(
		WithClock(NewLogicalClock()),
		WithNow(func() time.Time { return now }),
		WithIdleTimeout(10*time.Millisecond),
	)

	r.Time("p")
	now = now.Add(2 * time.Minute)
	require.Equal(t, 1, r.Reap(time.Minute))

	batch, err := r.After(context.Background(), "p", 0)
	require.NoError(t, err)
	assert.Empty(t, batch.Events)
}

func TestRegistry_AppendKeepsOwnCopy(t *testing.T) {
	r := newTestRegistry(time.Second)

	shape := testShape(1)
	r.Append("p", models.EventAddShape, shape)

	// Вызывающий продолжает работать со своей фигурой
	shape.Points[0] = models.Point{42, 42}

	batch, err := r.After(context.Background(), "p", 0)
	require.NoError(t, err)
	require.Len(t, batch.Events, 1)
	assert.Equal(t, []models.Point{{1, 1}}, batch.Events[0].Shape.Points)
}

func TestRegistry_ConcurrentAppendIsOrdered(t *testing.T) {
	r := newTestRegistry(time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			r.Append("page", models.EventAddShape, testShape(id))
		}(int64(i))
	}
	wg.Wait()

	batch, err := r.After(context.Background(), "page", 0)
	require.NoError(t, err)
	require.Len(t, batch.Events, 50)

	for i := 1; i < len(batch.Events); i++ {
		assert.Greater(t, batch.Events[i].Time, batch.Events[i-1].Time)
	}
}
