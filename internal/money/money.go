// Package money содержит форматирование денежных сумм и разбор пользовательского ввода.
package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidQuantity возвращается, если значение не является положительным конечным числом.
var ErrInvalidQuantity = errors.New("invalid quantity")

// Format приводит сумму к виду с ровно двумя знаками после запятой.
// Половина копейки округляется от нуля (для неотрицательных сумм это обычное округление вверх).
func Format(v decimal.Decimal) string {
	return v.Round(2).StringFixed(2)
}

// FormatFloat форматирует сумму, заданную числом с плавающей точкой.
func FormatFloat(v float64) string {
	return Format(decimal.NewFromFloat(v))
}

// ParseAmount разбирает значение поля ввода. Пустая строка и мусор дают (0, false).
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ParsePositive разбирает количество и требует, чтобы оно было больше нуля.
func ParsePositive(s string) (decimal.Decimal, error) {
	d, ok := ParseAmount(s)
	if !ok || !d.IsPositive() {
		return decimal.Zero, ErrInvalidQuantity
	}
	return d, nil
}

// NonNegativeOrZero возвращает разобранную сумму либо ноль для пустого, некорректного или отрицательного ввода.
func NonNegativeOrZero(s string) decimal.Decimal {
	d, ok := ParseAmount(s)
	if !ok || d.IsNegative() {
		return decimal.Zero
	}
	return d
}
