package history

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iudanet/inkpage/internal/metrics"
	"github.com/iudanet/inkpage/internal/models"
)

// Batch результат одного long-poll запроса
type Batch struct {
	Events    []models.ChangeEvent // Events события с Time > since, по возрастанию времени
	Watermark int64                // Watermark отметка для следующего запроса
}

// Log журнал изменений одной страницы.
// Хранится только в памяти: это канал уведомлений, а не durable запись.
type Log struct {
	touched time.Time
	clock   *Clock
	notify  chan struct{} // закрывается и пересоздается при каждом добавлении
	events  []models.ChangeEvent
	base    int64 // отметка часов на момент создания журнала
	waiters int
	mu      sync.Mutex
	dead    bool // журнал удален janitor'ом, нужно взять новый из Registry
}

func newLog(clock *Clock, now time.Time) *Log {
	return &Log{
		clock:   clock,
		base:    clock.GetTimestamp(),
		notify:  make(chan struct{}),
		touched: now,
	}
}

// add добавляет событие и будит всех ожидающих.
// Возвращает false, если журнал уже удален.
func (l *Log) add(event models.ChangeEvent, now time.Time) (models.ChangeEvent, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.dead {
		return event, false
	}

	event.Time = l.clock.Tick()
	l.events = append(l.events, event)
	l.touched = now

	close(l.notify)
	l.notify = make(chan struct{})

	return event, true
}

// time возвращает отметку последнего события или отметку создания журнала
func (l *Log) time() (int64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.dead {
		return 0, false
	}
	return l.timeLocked(), true
}

func (l *Log) timeLocked() int64 {
	if n := len(l.events); n > 0 {
		return l.events[n-1].Time
	}
	return l.base
}

// sinceLocked возвращает копию событий с Time > since
func (l *Log) sinceLocked(since int64) []models.ChangeEvent {
	i := sort.Search(len(l.events), func(i int) bool {
		return l.events[i].Time > since
	})
	if i == len(l.events) {
		return nil
	}

	out := make([]models.ChangeEvent, len(l.events)-i)
	copy(out, l.events[i:])
	return out
}

// after ждет событий новее since, истечения timeout или отмены ctx.
// Второе значение false означает, что журнал удален и запрос нужно повторить.
func (l *Log) after(ctx context.Context, since int64, timeout time.Duration, now func() time.Time) (Batch, bool, error) {
	l.mu.Lock()
	if l.dead {
		l.mu.Unlock()
		return Batch{}, false, nil
	}

	// Пока есть ожидающие, janitor журнал не тронет
	l.waiters++
	l.touched = now()
	metrics.LongPollWaiters.Inc()
	defer func() {
		l.mu.Lock()
		l.waiters--
		l.touched = now()
		l.mu.Unlock()
		metrics.LongPollWaiters.Dec()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		if events := l.sinceLocked(since); len(events) > 0 {
			l.mu.Unlock()
			return Batch{
				Events:    events,
				Watermark: events[len(events)-1].Time,
			}, true, nil
		}

		notify := l.notify
		l.mu.Unlock()

		select {
		case <-notify:
		case <-timer.C:
			// heartbeat: пустой ответ, клиент повторит запрос
			return Batch{Watermark: since}, true, nil
		case <-ctx.Done():
			return Batch{}, true, ctx.Err()
		}

		l.mu.Lock()
	}
}

// reap помечает журнал удаленным, если он простаивает дольше idle.
// remove получает время последнего события (0, если событий не было) и
// вызывается под блокировкой журнала, чтобы конкурирующий get не получал
// удаленный журнал повторно.
func (l *Log) reap(now time.Time, idle time.Duration, remove func(last int64)) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.dead || l.waiters > 0 || now.Sub(l.touched) <= idle {
		return false
	}
	l.dead = true

	var last int64
	if n := len(l.events); n > 0 {
		last = l.events[n-1].Time
	}
	remove(last)
	return true
}
