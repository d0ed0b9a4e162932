package history

import (
	"sync"
	"time"
)

// Clock выдает монотонно возрастающие отметки времени для журналов изменений.
//
// Если задан источник физического времени, Tick возвращает
// max(counter+1, now в микросекундах): отметки переживают перезапуск процесса
// и watermark клиента из прошлой жизни сервера не "застревает" в будущем.
type Clock struct {
	now     func() time.Time // источник физического времени, nil для чисто логических часов
	counter int64            // последняя выданная отметка
	mu      sync.Mutex
}

// NewClock создает гибридные часы, привязанные к системному времени
func NewClock() *Clock {
	return &Clock{now: time.Now}
}

// NewLogicalClock создает чисто логические часы, начинающиеся с 0.
// Используется в тестах и там, где важна воспроизводимость отметок.
func NewLogicalClock() *Clock {
	return &Clock{}
}

// Tick увеличивает счетчик и возвращает новую отметку
func (c *Clock) Tick() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.counter++
	if c.now != nil {
		if physical := c.now().UnixMicro(); physical > c.counter {
			c.counter = physical
		}
	}
	return c.counter
}

// GetTimestamp возвращает последнюю выданную отметку без изменения счетчика
func (c *Clock) GetTimestamp() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.counter
}
