// Package order реализует оформление заявки из содержимого корзины.
package order

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/shopapp/internal/api"
	"github.com/mmeshcher/shopapp/internal/cart"
	"github.com/mmeshcher/shopapp/internal/model"
	"github.com/mmeshcher/shopapp/internal/money"
	"github.com/mmeshcher/shopapp/internal/notify"
	"github.com/mmeshcher/shopapp/internal/view"
)

// OrdersPath указывает страницу со списком заявок, куда клиент переходит после успешного оформления.
const OrdersPath = "/app/orders"

// DefaultNavigateDelay даёт пользователю время прочитать уведомление перед переходом.
const DefaultNavigateDelay = 1500 * time.Millisecond

var (
	// ErrEmptyCart возвращается при попытке оформить пустую корзину.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInFlight возвращается, если предыдущая заявка ещё отправляется.
	ErrInFlight = errors.New("order submission already in progress")
)

// State описывает состояние оформления.
type State int32

const (
	StateIdle State = iota
	StateSubmitting
)

func (s State) String() string {
	if s == StateSubmitting {
		return "submitting"
	}
	return "idle"
}

// Backend определяет контракт бэкенда, используемый при оформлении.
type Backend interface {
	CreateOrder(ctx context.Context, req model.OrderRequest) (*model.OrderResponse, error)
}

// Navigator выполняет переход на другую страницу приложения.
type Navigator interface {
	Navigate(path string)
}

// Refresher перерисовывает корзину.
type Refresher interface {
	Refresh()
}

// Flow отправляет заявку. Одновременно может выполняться только одна отправка.
type Flow struct {
	store     *cart.Store
	page      *view.Page
	view      Refresher
	backend   Backend
	notifier  notify.Notifier
	navigator Navigator
	logger    *zap.Logger

	navigateDelay time.Duration
	state         atomic.Int32
}

// NewFlow создаёт сценарий оформления заявки.
func NewFlow(
	store *cart.Store,
	page *view.Page,
	refresher Refresher,
	backend Backend,
	notifier notify.Notifier,
	navigator Navigator,
	navigateDelay time.Duration,
	logger *zap.Logger,
) *Flow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Flow{
		store:         store,
		page:          page,
		view:          refresher,
		backend:       backend,
		notifier:      notifier,
		navigator:     navigator,
		navigateDelay: navigateDelay,
		logger:        logger,
	}
}

// State возвращает текущее состояние оформления.
func (f *Flow) State() State {
	return State(f.state.Load())
}

// Submit отправляет содержимое корзины. При успехе корзина и поля заказа очищаются,
// а через navigateDelay выполняется переход к списку заявок. При ошибке корзина остаётся как была.
func (f *Flow) Submit(ctx context.Context) error {
	if f.store.Len() == 0 {
		return ErrEmptyCart
	}
	if !f.state.CompareAndSwap(int32(StateIdle), int32(StateSubmitting)) {
		return ErrInFlight
	}
	defer f.state.Store(int32(StateIdle))

	f.setBusy(true)

	snap := f.store.Snapshot()
	req := model.OrderRequest{
		Items:         snap.Items(),
		Comment:       f.page.Comment(),
		DeliveryPrice: money.NonNegativeOrZero(f.page.Delivery()).InexactFloat64(),
	}

	res, err := f.backend.CreateOrder(ctx, req)
	if err != nil {
		f.logger.Warn("order submission failed", zap.Error(err), zap.Int("items", len(req.Items)))
		f.notifier.Notify(notify.LevelDanger, api.ErrorMessage(err, "Не удалось оформить заказ."), notify.LongTimeout)
		f.setBusy(false)
		return fmt.Errorf("create order: %w", err)
	}

	f.logger.Info("order accepted", zap.Int64("orderID", res.OrderID))
	f.notifier.Notify(notify.LevelSuccess,
		fmt.Sprintf("Заявка №%d принята. Менеджер свяжется с вами.", res.OrderID),
		notify.LongTimeout,
	)

	f.page.ResetOrderInputs()
	f.page.SetBusy(false)
	f.store.Clear()

	if f.navigator != nil {
		time.AfterFunc(f.navigateDelay, func() {
			f.navigator.Navigate(OrdersPath)
		})
	}

	return nil
}

func (f *Flow) setBusy(busy bool) {
	f.page.SetBusy(busy)
	if f.view != nil {
		f.view.Refresh()
	}
}
