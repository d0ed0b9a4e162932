package api

import (
	"bytes"
	"encoding/json"
)

// Lenient строковое поле запроса, принимающее JSON-строку или число.
// Любое другое значение (null, bool, объект, массив) читается как пустая
// строка, и сервер подставляет значение по умолчанию.
type Lenient string

// UnmarshalJSON accepts a JSON string or number; anything else becomes ""
func (l *Lenient) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*l = ""
	if len(data) == 0 {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = Lenient(s)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(data, &n); err == nil {
			*l = Lenient(n.String())
		}
	}
	return nil
}

// ShapeRequest представляет запрос на добавление или удаление фигуры
type ShapeRequest struct {
	P Lenient `json:"p"`           // точки в формате "x1,y1;x2,y2"
	T Lenient `json:"t,omitempty"` // толщина линии
	R Lenient `json:"r,omitempty"` // красный канал
	G Lenient `json:"g,omitempty"` // зеленый канал
	B Lenient `json:"b,omitempty"` // синий канал
	A Lenient `json:"a,omitempty"` // прозрачность
}

// Shape представляет фигуру в ответах сервера
type Shape struct {
	Points    [][2]float64 `json:"p"`
	ID        int64        `json:"id"`
	Thickness float64      `json:"t"`
	A         float64      `json:"a"`
	R         int          `json:"r"`
	G         int          `json:"g"`
	B         int          `json:"b"`
}

// ShapeResponse представляет результат мутации страницы
type ShapeResponse struct {
	Status string `json:"status"` // applied, duplicate или not_found
	Shape  Shape  `json:"shape"`
}

// SnapshotResponse представляет текущее состояние страницы
type SnapshotResponse struct {
	Shapes     []Shape `json:"shapes"`
	NextID     int64   `json:"nextId"`
	NextUpdate int64   `json:"nextUpdate"` // watermark для первого запроса обновлений
	First      bool    `json:"first"`      // страница еще ни разу не записывалась
}

// Event представляет одно изменение страницы
type Event struct {
	Type  string `json:"type"` // add_shape или delete_shape
	Shape Shape  `json:"shape"`
	Time  int64  `json:"time"`
}

// UpdatesResponse представляет ответ на long-poll запрос обновлений.
// Пустой Events означает heartbeat: запрос нужно повторить с тем же Watermark.
type UpdatesResponse struct {
	Events    []Event `json:"events"`
	Watermark int64   `json:"watermark"`
}

// FadeRequest представляет запрос на угасание фигур страницы
type FadeRequest struct {
	Delta  float64 `json:"delta"`  // на сколько уменьшить alpha
	Cutoff float64 `json:"cutoff"` // фигуры с alpha ниже удаляются
}

// HealthResponse представляет ответ health check
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
}
