package view

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/shopapp/internal/cart"
	"github.com/mmeshcher/shopapp/internal/model"
)

func snapshot(lines ...model.CartLine) cart.Snapshot {
	return cart.Snapshot{Lines: lines}
}

func cartLine(id int64, price, qty string) model.CartLine {
	return model.CartLine{
		Kind:      model.KindProduct,
		ID:        id,
		Name:      "Брус",
		Unit:      "м³",
		UnitPrice: decimal.RequireFromString(price),
		Quantity:  decimal.RequireFromString(qty),
	}
}

func TestRender_Empty(t *testing.T) {
	v := Render(snapshot(), "150")

	assert.True(t, v.Empty)
	assert.False(t, v.SubmitEnabled)
	assert.Empty(t, v.Rows)
	assert.Equal(t, "150.00", v.Total)
}

func TestRender_TotalIncludesDelivery(t *testing.T) {
	tests := []struct {
		name     string
		lines    []model.CartLine
		delivery string
		want     string
	}{
		{
			name:     "half cent rounds up",
			lines:    []model.CartLine{cartLine(1, "12.345", "1")},
			delivery: "0.005",
			want:     "12.35",
		},
		{
			name:     "several lines",
			lines:    []model.CartLine{cartLine(1, "10", "2"), cartLine(2, "0.5", "3")},
			delivery: "100",
			want:     "121.50",
		},
		{
			name:     "bad delivery counts as zero",
			lines:    []model.CartLine{cartLine(1, "10", "1")},
			delivery: "abc",
			want:     "10.00",
		},
		{
			name:     "empty delivery counts as zero",
			lines:    []model.CartLine{cartLine(1, "10", "1")},
			delivery: "",
			want:     "10.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Render(snapshot(tt.lines...), tt.delivery)
			assert.Equal(t, tt.want, v.Total)
			assert.True(t, v.SubmitEnabled)
		})
	}
}

func TestRender_Rows(t *testing.T) {
	v := Render(snapshot(cartLine(1, "3.333", "3")), "0")

	require.Len(t, v.Rows, 1)
	assert.Equal(t, Row{
		Index:     0,
		Name:      "Брус",
		KindLabel: "Товар",
		Unit:      "м³",
		Quantity:  "3",
		UnitPrice: "3.33",
		LineTotal: "10.00",
	}, v.Rows[0])
}

func TestRender_Idempotent(t *testing.T) {
	snap := snapshot(cartLine(1, "10", "2"), cartLine(2, "5", "1"))
	assert.Equal(t, Render(snap, "10"), Render(snap, "10"))
}
