// Package ratings форматирует средний рейтинг в виде строки звёзд.
package ratings

import (
	"math"
	"strings"
)

const (
	full   = "★"
	hollow = "☆"
	slots  = 5
)

// Stars возвращает пять символов: целые звёзды, затем одна пустая звезда для половины и пустые до пяти.
// Нулевой, отрицательный или нечисловой рейтинг даёт пять пустых звёзд.
func Stars(avg float64) string {
	if math.IsNaN(avg) || avg <= 0 {
		return strings.Repeat(hollow, slots)
	}
	if avg > slots {
		avg = slots
	}

	n := int(math.Floor(avg))
	var b strings.Builder
	b.WriteString(strings.Repeat(full, n))
	if avg-float64(n) >= 0.5 {
		b.WriteString(hollow)
		n++
	}
	b.WriteString(strings.Repeat(hollow, slots-n))
	return b.String()
}
