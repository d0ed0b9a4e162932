package models

// PageInfo представляет состояние страницы, которое целиком хранится
// в durable store под ключом страницы.
type PageInfo struct {
	Shapes []Shape `json:"shapes"` // Shapes упорядоченный список фигур
	NextID int64   `json:"nextId"` // NextID следующий свободный идентификатор фигуры
}
