package models

import "encoding/json"

// NoID помечает фигуру, у которой еще нет идентификатора
// (старые данные, сохраненные до появления поля id).
const NoID int64 = -1

// Point представляет пару координат (x, y)
type Point [2]float64

// Shape представляет одну нарисованную фигуру на странице.
// JSON-имена полей совпадают с форматом, который хранится в durable store.
type Shape struct {
	Points    []Point `json:"p"`  // Points упорядоченная последовательность точек
	ID        int64   `json:"id"` // ID назначается менеджером страницы, уникален в пределах страницы
	Thickness float64 `json:"t"`  // Thickness толщина линии
	A         float64 `json:"a"`  // A прозрачность (alpha)
	R         int     `json:"r"`  // R красный канал [0,255]
	G         int     `json:"g"`  // G зеленый канал [0,255]
	B         int     `json:"b"`  // B синий канал [0,255]
}

// HasID reports whether the shape already carries a manager-assigned id.
func (s *Shape) HasID() bool {
	return s.ID != NoID
}

// Equivalent сравнивает фигуры по геометрии.
// Фигуры эквивалентны, если их последовательности точек совпадают по длине
// и попарно по значению. Цвет, толщина и alpha не учитываются.
func (s *Shape) Equivalent(other *Shape) bool {
	if len(s.Points) != len(other.Points) {
		return false
	}
	for i := range s.Points {
		if s.Points[i] != other.Points[i] {
			return false
		}
	}
	return true
}

// Clone создает глубокую копию фигуры
func (s *Shape) Clone() Shape {
	points := make([]Point, len(s.Points))
	copy(points, s.Points)

	c := *s
	c.Points = points
	return c
}

// UnmarshalJSON декодирует фигуру, выставляя ID в NoID, если поле id отсутствует
func (s *Shape) UnmarshalJSON(data []byte) error {
	type shapeAlias Shape
	aux := struct {
		ID *int64 `json:"id"`
		*shapeAlias
	}{
		shapeAlias: (*shapeAlias)(s),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	s.ID = NoID
	if aux.ID != nil {
		s.ID = *aux.ID
	}

	return nil
}

// FindEquivalent возвращает индекс первой фигуры в shapes, эквивалентной needle,
// или -1, если такой нет.
func FindEquivalent(shapes []Shape, needle *Shape) int {
	for i := range shapes {
		if shapes[i].Equivalent(needle) {
			return i
		}
	}
	return -1
}
