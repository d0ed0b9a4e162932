package history

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogicalClock(t *testing.T) {
	clock := NewLogicalClock()

	require.NotNil(t, clock)
	assert.Equal(t, int64(0), clock.GetTimestamp(), "Initial counter should be 0")
}

func TestClock_Tick(t *testing.T) {
	clock := NewLogicalClock()

	tests := []struct {
		name          string
		expectedValue int64
	}{
		{"First tick", 1},
		{"Second tick", 2},
		{"Third tick", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := clock.Tick()
			assert.Equal(t, tt.expectedValue, result, "Tick should return incremented value")
			assert.Equal(t, tt.expectedValue, clock.GetTimestamp(), "Counter should be incremented")
		})
	}
}

func TestClock_Tick_Physical(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	current := base
	clock := &Clock{now: func() time.Time { return current }}

	// Первая отметка берется из физического времени
	ts1 := clock.Tick()
	assert.Equal(t, base.UnixMicro(), ts1)

	// Время не сдвинулось: отметка все равно растет
	ts2 := clock.Tick()
	assert.Equal(t, ts1+1, ts2)

	// Время ушло назад: монотонность сохраняется
	current = base.Add(-time.Hour)
	ts3 := clock.Tick()
	assert.Equal(t, ts2+1, ts3)

	// Время ушло вперед: отметка догоняет его
	current = base.Add(time.Second)
	ts4 := clock.Tick()
	assert.Equal(t, current.UnixMicro(), ts4)
}

func TestClock_NewClockUsesWallTime(t *testing.T) {
	before := time.Now().UnixMicro()
	ts := NewClock().Tick()
	assert.GreaterOrEqual(t, ts, before)
}

func TestClock_ConcurrentTick(t *testing.T) {
	clock := NewLogicalClock()
	iterations := 1000
	goroutines := 10

	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				clock.Tick()
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, int64(goroutines*iterations), clock.GetTimestamp(),
		"Concurrent Tick calls should increment counter correctly")
}

func BenchmarkClock_Tick(b *testing.B) {
	clock := NewClock()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		clock.Tick()
	}
}
