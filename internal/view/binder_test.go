package view

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mmeshcher/shopapp/internal/cart"
	"github.com/mmeshcher/shopapp/internal/model"
	"github.com/mmeshcher/shopapp/internal/notify"
)

type recordingRenderer struct {
	views []CartView
}

func (r *recordingRenderer) Render(v CartView) {
	r.views = append(r.views, v)
}

type fixture struct {
	store    *cart.Store
	page     *Page
	toasts   *notify.Toasts
	renderer *recordingRenderer
	binder   *Binder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:    cart.NewStore(),
		page:     NewPage(),
		toasts:   notify.NewToasts(zap.NewNop()),
		renderer: &recordingRenderer{},
	}
	f.binder = NewBinder(f.store, f.page, f.toasts, f.renderer, zap.NewNop())
	return f
}

func (f *fixture) lastToast(t *testing.T) notify.Toast {
	t.Helper()
	toast, ok := f.toasts.Last()
	require.True(t, ok, "no toast shown")
	return toast
}

var board = model.ItemSource{Type: "product", ID: "7", Name: "Доска", Unit: "шт", Price: "250"}

func TestBinder_InitialRenderIsEmpty(t *testing.T) {
	f := newFixture(t)

	require.Len(t, f.renderer.views, 1)
	assert.True(t, f.binder.View().Empty)
	assert.False(t, f.page.SubmitEnabled())
}

func TestBinder_AddTwiceMergesLine(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.binder.Dispatch(Event{Action: ActionAddToCart, Source: board, QtyInput: "2"}).Err)
	require.NoError(t, f.binder.Dispatch(Event{Action: ActionAddToCart, Source: board}).Err)

	v := f.binder.View()
	require.Len(t, v.Rows, 1)
	assert.Equal(t, "3", v.Rows[0].Quantity)
	assert.Equal(t, "750.00", v.Total)
	assert.True(t, v.SubmitEnabled)

	toast := f.lastToast(t)
	assert.Equal(t, notify.LevelSuccess, toast.Level)
	assert.Equal(t, "Доска добавлен в калькулятор.", toast.Message)
}

func TestBinder_AddInvalidQuantityWarns(t *testing.T) {
	f := newFixture(t)

	res := f.binder.Dispatch(Event{Action: ActionAddToCart, Source: board, QtyInput: "0"})
	require.ErrorIs(t, res.Err, cart.ErrInvalidQuantity)

	assert.Equal(t, 0, f.store.Len())
	assert.Equal(t, notify.LevelWarning, f.lastToast(t).Level)
}

func TestBinder_AddUnknownTypeIsRejected(t *testing.T) {
	f := newFixture(t)

	src := model.ItemSource{Type: "bogus", ID: "1", Name: "Нечто", Price: "10"}
	res := f.binder.Dispatch(Event{Action: ActionAddToCart, Source: src, QtyInput: "2"})
	require.Error(t, res.Err)

	assert.Equal(t, 0, f.store.Len())
	assert.True(t, f.binder.View().Empty)
	_, shown := f.toasts.Last()
	assert.False(t, shown)
}

func TestBinder_ChangeQtyInvalidRestoresPrevious(t *testing.T) {
	for _, value := range []string{"0", "-2", "abc", ""} {
		t.Run(value, func(t *testing.T) {
			f := newFixture(t)
			require.NoError(t, f.binder.Dispatch(Event{Action: ActionAddToCart, Source: board, QtyInput: "1.5"}).Err)

			res := f.binder.Dispatch(Event{Action: ActionChangeQty, Index: 0, Value: value})
			require.ErrorIs(t, res.Err, cart.ErrInvalidQuantity)
			assert.Equal(t, "1.5", res.Restore)

			line, ok := f.store.Line(0)
			require.True(t, ok)
			assert.Equal(t, "1.5", line.Quantity.String())
			assert.Equal(t, notify.LevelWarning, f.lastToast(t).Level)
		})
	}
}

func TestBinder_ChangeQty(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.binder.Dispatch(Event{Action: ActionAddToCart, Source: board}).Err)

	res := f.binder.Dispatch(Event{Action: ActionChangeQty, Index: 0, Value: "4"})
	require.NoError(t, res.Err)
	assert.Equal(t, "1000.00", f.binder.View().Total)
}

func TestBinder_RemoveLastLineDisablesSubmit(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.binder.Dispatch(Event{Action: ActionAddToCart, Source: board}).Err)
	require.True(t, f.page.SubmitEnabled())

	require.NoError(t, f.binder.Dispatch(Event{Action: ActionRemoveItem, Index: 0}).Err)

	v := f.binder.View()
	assert.True(t, v.Empty)
	assert.False(t, v.SubmitEnabled)
	assert.False(t, f.page.SubmitEnabled())
	assert.Equal(t, "Позиция удалена из заказа.", f.lastToast(t).Message)
}

func TestBinder_RemoveOutOfRange(t *testing.T) {
	f := newFixture(t)
	res := f.binder.Dispatch(Event{Action: ActionRemoveItem, Index: 3})
	require.ErrorIs(t, res.Err, cart.ErrNoLine)
}

func TestBinder_DeliveryInputRerenders(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.binder.Dispatch(Event{Action: ActionAddToCart, Source: board}).Err)

	before := len(f.renderer.views)
	require.NoError(t, f.binder.Dispatch(Event{Action: ActionDeliveryInput, Value: "99.99"}).Err)

	assert.Len(t, f.renderer.views, before+1)
	assert.Equal(t, "349.99", f.binder.View().Total)
}

func TestBinder_UnknownAction(t *testing.T) {
	f := newFixture(t)
	res := f.binder.Dispatch(Event{Action: "explode"})
	require.ErrorIs(t, res.Err, ErrUnknownAction)
}

func TestBinder_RefreshIsIdempotent(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.binder.Dispatch(Event{Action: ActionAddToCart, Source: board}).Err)

	f.binder.Refresh()
	first := f.binder.View()
	f.binder.Refresh()

	assert.Equal(t, first, f.binder.View())
}

func TestTextRenderer(t *testing.T) {
	var buf bytes.Buffer
	r := NewTextRenderer(&buf)

	r.Render(Render(cart.Snapshot{}, "0"))
	assert.Equal(t, "Корзина пуста. Итого: 0.00 ₽\n", buf.String())

	buf.Reset()
	v := Render(snapshot(cartLine(1, "10", "2")), "5")
	v.SubmitEnabled = false
	r.Render(v)

	out := buf.String()
	assert.True(t, strings.Contains(out, "Брус"))
	assert.True(t, strings.Contains(out, "Итого: 25.00 ₽ (оформление недоступно)"))
}
