package validation

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/iudanet/inkpage/internal/models"
)

// ErrInvalidShape означает, что после разбора у фигуры не осталось ни одной точки
var ErrInvalidShape = errors.New("invalid shape: no valid points")

const (
	// PairSeparator разделяет пары координат: "x,y;x,y"
	PairSeparator = ";"
	// CoordSeparator разделяет координаты внутри пары
	CoordSeparator = ","

	// DefaultThickness, DefaultChannel и DefaultAlpha подставляются
	// вместо отсутствующих или нечисловых значений
	DefaultThickness = 0.0
	DefaultChannel   = 0.0
	DefaultAlpha     = 1.0
)

// ShapeInput содержит сырые пользовательские значения фигуры
type ShapeInput struct {
	Points    string // Points точки в формате "x,y;x,y"
	Thickness string
	R         string
	G         string
	B         string
	A         string
}

// BuildShape собирает фигуру из сырых значений.
//
// Числовые поля разбираются нестрого: пустое или нечисловое значение
// молча заменяется значением по умолчанию, а не отклоняется.
// Фигура без точек считается невалидной (ErrInvalidShape).
// ID не назначается: это делает менеджер страницы.
func BuildShape(in ShapeInput) (models.Shape, error) {
	points := ParsePoints(in.Points, PairSeparator, CoordSeparator)
	if len(points) == 0 {
		return models.Shape{}, ErrInvalidShape
	}

	return models.Shape{
		ID:        models.NoID,
		Points:    points,
		Thickness: ParseFloatOr(in.Thickness, DefaultThickness),
		R:         clampChannel(ParseFloatOr(in.R, DefaultChannel)),
		G:         clampChannel(ParseFloatOr(in.G, DefaultChannel)),
		B:         clampChannel(ParseFloatOr(in.B, DefaultChannel)),
		A:         ParseFloatOr(in.A, DefaultAlpha),
	}, nil
}

// ParsePoints разбирает строку точек. Пара, которая не состоит ровно
// из двух конечных чисел, отбрасывается.
func ParsePoints(raw, pairSep, coordSep string) []models.Point {
	if raw == "" {
		return nil
	}

	var points []models.Point
	for _, pair := range strings.Split(raw, pairSep) {
		coords := strings.Split(pair, coordSep)
		if len(coords) != 2 {
			continue
		}

		x, ok := parseFinite(coords[0])
		if !ok {
			continue
		}
		y, ok := parseFinite(coords[1])
		if !ok {
			continue
		}

		points = append(points, models.Point{x, y})
	}

	return points
}

// ParseFloatOr возвращает число из s или def, если s пустая или нечисловая
func ParseFloatOr(s string, def float64) float64 {
	v, ok := parseFinite(s)
	if !ok {
		return def
	}
	return v
}

func parseFinite(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// clampChannel приводит значение цветового канала к целому в диапазоне [0,255]
func clampChannel(v float64) int {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return int(v)
	}
}
