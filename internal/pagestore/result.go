package pagestore

import "github.com/iudanet/inkpage/internal/models"

// Status итог мутации страницы
type Status int

const (
	// StatusApplied мутация записана и попала в журнал изменений
	StatusApplied Status = iota
	// StatusDuplicate на странице уже есть эквивалентная фигура, ничего не изменено
	StatusDuplicate
	// StatusNotFound удаляемой фигуры нет на странице, ничего не изменено
	StatusNotFound
)

func (s Status) String() string {
	switch s {
	case StatusApplied:
		return "applied"
	case StatusDuplicate:
		return "duplicate"
	case StatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Result результат AddShape/DeleteShape
type Result struct {
	Shape  models.Shape // Shape добавленная (с назначенным ID) или удаленная фигура
	Status Status
}

// Snapshot состояние страницы на момент чтения
type Snapshot struct {
	Shapes     []models.Shape
	NextID     int64
	NextUpdate int64 // NextUpdate watermark журнала, с которого можно ждать обновлений
	First      bool  // First страница еще ни разу не записывалась
}
