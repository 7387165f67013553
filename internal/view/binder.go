package view

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mmeshcher/shopapp/internal/cart"
	"github.com/mmeshcher/shopapp/internal/model"
	"github.com/mmeshcher/shopapp/internal/money"
	"github.com/mmeshcher/shopapp/internal/notify"
)

// Action идентифицирует действие пользователя с корзиной.
type Action string

const (
	ActionAddToCart     Action = "add-to-cart"
	ActionRemoveItem    Action = "remove-item"
	ActionChangeQty     Action = "change-qty"
	ActionDeliveryInput Action = "delivery-input"
)

// ErrUnknownAction возвращается для действия без обработчика.
var ErrUnknownAction = errors.New("unknown action")

// Event описывает действие пользователя.
type Event struct {
	Action Action
	// Source и QtyInput заполняются для add-to-cart.
	Source   model.ItemSource
	QtyInput string
	// Index задаёт номер строки для remove-item и change-qty.
	Index int
	// Value содержит новое значение поля для change-qty и delivery-input.
	Value string
}

// Result описывает итог обработки действия.
type Result struct {
	Err error
	// Restore содержит значение, которое нужно вернуть в поле ввода после отклонённого изменения.
	Restore string
}

// Renderer получает новое представление корзины после каждой отрисовки.
type Renderer interface {
	Render(v CartView)
}

// Binder перерисовывает корзину после каждого изменения и обрабатывает действия пользователя.
type Binder struct {
	store    *cart.Store
	page     *Page
	notifier notify.Notifier
	renderer Renderer
	logger   *zap.Logger

	mu   sync.Mutex
	last CartView

	handlers map[Action]func(Event) Result
}

// NewBinder связывает корзину со страницей и сразу выполняет первую отрисовку.
func NewBinder(store *cart.Store, page *Page, notifier notify.Notifier, renderer Renderer, logger *zap.Logger) *Binder {
	if logger == nil {
		logger = zap.NewNop()
	}

	b := &Binder{
		store:    store,
		page:     page,
		notifier: notifier,
		renderer: renderer,
		logger:   logger,
	}
	b.handlers = map[Action]func(Event) Result{
		ActionAddToCart:     b.handleAdd,
		ActionRemoveItem:    b.handleRemove,
		ActionChangeQty:     b.handleChangeQty,
		ActionDeliveryInput: b.handleDelivery,
	}

	store.Subscribe(b.render)
	b.Refresh()

	return b
}

// Dispatch передаёт действие его обработчику.
func (b *Binder) Dispatch(ev Event) Result {
	h, ok := b.handlers[ev.Action]
	if !ok {
		return Result{Err: fmt.Errorf("%w: %s", ErrUnknownAction, ev.Action)}
	}
	return h(ev)
}

// Refresh перерисовывает корзину по текущему состоянию.
func (b *Binder) Refresh() {
	b.render(b.store.Snapshot())
}

// View возвращает последнее отрисованное представление.
func (b *Binder) View() CartView {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}

func (b *Binder) render(snap cart.Snapshot) {
	v := Render(snap, b.page.Delivery())
	b.page.setHasItems(!v.Empty)
	v.SubmitEnabled = b.page.SubmitEnabled()

	b.mu.Lock()
	b.last = v
	b.mu.Unlock()

	if b.renderer != nil {
		b.renderer.Render(v)
	}
}

func (b *Binder) handleAdd(ev Event) Result {
	qty, err := parseQtyInput(ev.QtyInput)
	if err != nil {
		b.notifier.Notify(notify.LevelWarning, "Укажите корректное количество.", notify.DefaultTimeout)
		return Result{Err: err}
	}

	line, err := ev.Source.Line(qty)
	if err != nil {
		b.logger.Warn("bad add-to-cart source", zap.Error(err))
		return Result{Err: err}
	}

	if err := b.store.Add(line); err != nil {
		if errors.Is(err, cart.ErrInvalidQuantity) {
			b.notifier.Notify(notify.LevelWarning, "Укажите корректное количество.", notify.DefaultTimeout)
		} else {
			b.logger.Warn("cart line rejected", zap.Error(err))
		}
		return Result{Err: err}
	}

	b.notifier.Notify(notify.LevelSuccess, line.Name+" добавлен в калькулятор.", notify.DefaultTimeout)
	return Result{}
}

func (b *Binder) handleRemove(ev Event) Result {
	if !b.store.RemoveAt(ev.Index) {
		return Result{Err: cart.ErrNoLine}
	}
	b.notifier.Notify(notify.LevelInfo, "Позиция удалена из заказа.", notify.DefaultTimeout)
	return Result{}
}

func (b *Binder) handleChangeQty(ev Event) Result {
	line, ok := b.store.Line(ev.Index)
	if !ok {
		return Result{Err: cart.ErrNoLine}
	}

	qty, err := money.ParsePositive(ev.Value)
	if err == nil {
		err = b.store.SetQuantityAt(ev.Index, qty)
	}
	if err != nil {
		b.notifier.Notify(notify.LevelWarning, "Количество должно быть больше нуля.", notify.DefaultTimeout)
		return Result{Err: err, Restore: line.Quantity.String()}
	}
	return Result{}
}

func (b *Binder) handleDelivery(ev Event) Result {
	b.page.SetDelivery(ev.Value)
	b.Refresh()
	return Result{}
}

// parseQtyInput разбирает поле количества карточки; отсутствующее поле означает одну единицу.
func parseQtyInput(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.NewFromInt(1), nil
	}
	return money.ParsePositive(s)
}
