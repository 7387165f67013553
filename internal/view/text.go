package view

import (
	"fmt"
	"io"
	"sync"
	"text/tabwriter"
)

// TextRenderer выводит корзину таблицей в текстовый поток.
type TextRenderer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTextRenderer создаёт TextRenderer, пишущий в w.
func NewTextRenderer(w io.Writer) *TextRenderer {
	return &TextRenderer{w: w}
}

// Render выводит представление корзины.
func (r *TextRenderer) Render(v CartView) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v.Empty {
		fmt.Fprintf(r.w, "Корзина пуста. Итого: %s ₽\n", v.Total)
		return
	}

	tw := tabwriter.NewWriter(r.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tНаименование\tТип\tКол-во\tЦена\tСумма")
	for _, row := range v.Rows {
		fmt.Fprintf(tw, "%d\t%s\t%s · %s\t%s\t%s ₽\t%s ₽\n",
			row.Index, row.Name, row.KindLabel, row.Unit, row.Quantity, row.UnitPrice, row.LineTotal)
	}
	_ = tw.Flush()

	submit := "доступно"
	if !v.SubmitEnabled {
		submit = "недоступно"
	}
	fmt.Fprintf(r.w, "Итого: %s ₽ (оформление %s)\n", v.Total, submit)
}
