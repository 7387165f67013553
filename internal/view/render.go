// Package view отображает состояние корзины и связывает действия пользователя с корзиной.
package view

import (
	"github.com/mmeshcher/shopapp/internal/cart"
	"github.com/mmeshcher/shopapp/internal/money"
)

// Row описывает строку корзины в готовом для показа виде.
type Row struct {
	Index     int
	Name      string
	KindLabel string
	Unit      string
	Quantity  string
	UnitPrice string
	LineTotal string
}

// CartView содержит результат отрисовки корзины.
type CartView struct {
	Empty         bool
	SubmitEnabled bool
	Rows          []Row
	Total         string
}

// Render строит представление корзины. Функция чистая: одинаковые входные данные дают одинаковый результат.
// Итог равен сумме строк плюс текущая стоимость доставки.
func Render(snap cart.Snapshot, deliveryInput string) CartView {
	delivery := money.NonNegativeOrZero(deliveryInput)

	if snap.Empty() {
		return CartView{
			Empty: true,
			Total: money.Format(delivery),
		}
	}

	rows := make([]Row, 0, len(snap.Lines))
	for i, l := range snap.Lines {
		rows = append(rows, Row{
			Index:     i,
			Name:      l.Name,
			KindLabel: l.Kind.Label(),
			Unit:      l.Unit,
			Quantity:  l.Quantity.String(),
			UnitPrice: money.Format(l.UnitPrice),
			LineTotal: money.Format(l.Total()),
		})
	}

	return CartView{
		SubmitEnabled: true,
		Rows:          rows,
		Total:         money.Format(snap.Subtotal().Add(delivery)),
	}
}
