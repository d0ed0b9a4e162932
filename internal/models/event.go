package models

// EventType тип изменения страницы
type EventType string

const (
	EventAddShape    EventType = "add_shape"
	EventDeleteShape EventType = "delete_shape"
)

// ChangeEvent представляет одно изменение страницы в истории.
// Time выставляется журналом изменений в момент добавления.
type ChangeEvent struct {
	Type  EventType `json:"type"`
	Shape Shape     `json:"shape"`
	Time  int64     `json:"time"`
}
