package shell

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mmeshcher/shopapp/internal/cart"
	"github.com/mmeshcher/shopapp/internal/forms"
	"github.com/mmeshcher/shopapp/internal/model"
	"github.com/mmeshcher/shopapp/internal/notify"
	"github.com/mmeshcher/shopapp/internal/order"
	"github.com/mmeshcher/shopapp/internal/view"
)

type stubBackend struct {
	mu       sync.Mutex
	catalog  []model.CatalogItem
	orders   []model.OrderRequest
	reviews  []model.ReviewRequest
	profiles []model.ProfileRequest
	feedback []model.FeedbackRequest
}

func (b *stubBackend) Catalog(ctx context.Context) ([]model.CatalogItem, error) {
	return b.catalog, nil
}

func (b *stubBackend) CreateOrder(ctx context.Context, req model.OrderRequest) (*model.OrderResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.orders = append(b.orders, req)
	return &model.OrderResponse{OK: true, OrderID: int64(len(b.orders))}, nil
}

func (b *stubBackend) SubmitReview(ctx context.Context, req model.ReviewRequest) error {
	b.reviews = append(b.reviews, req)
	return nil
}

func (b *stubBackend) UpdateProfile(ctx context.Context, req model.ProfileRequest) error {
	b.profiles = append(b.profiles, req)
	return nil
}

func (b *stubBackend) SendFeedback(ctx context.Context, req model.FeedbackRequest) error {
	b.feedback = append(b.feedback, req)
	return nil
}

type fixture struct {
	shell   *Shell
	out     *bytes.Buffer
	store   *cart.Store
	page    *view.Page
	backend *stubBackend
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	out := &bytes.Buffer{}
	backend := &stubBackend{catalog: []model.CatalogItem{
		{Type: model.KindProduct, ID: 1, Name: "Брус", Unit: "м³", Price: 100, Rating: 4},
		{Type: model.KindService, ID: 2, Name: "Распил", Unit: "рез", Price: 10.5},
	}}

	logger := zap.NewNop()
	toasts := notify.NewToasts(logger)
	store := cart.NewStore()
	page := view.NewPage()
	binder := view.NewBinder(store, page, toasts, view.NewTextRenderer(out), logger)
	flow := order.NewFlow(store, page, binder, backend, toasts, nil, time.Millisecond, logger)
	flows := forms.NewFlows(backend, toasts, nil, logger)

	sh := New(Deps{
		Catalog: backend,
		Binder:  binder,
		Page:    page,
		Order:   flow,
		Forms:   flows,
		Toasts:  toasts,
	}, out, logger)

	return &fixture{shell: sh, out: out, store: store, page: page, backend: backend}
}

func TestShell_CatalogAndCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.shell.Exec(ctx, "catalog")
	assert.Contains(t, f.out.String(), "1. Брус: 100.00 ₽ / м³ [Товар] ★★★★☆")
	assert.Contains(t, f.out.String(), "2. Распил: 10.50 ₽ / рез [Услуга]")

	f.shell.Exec(ctx, "add 1 2")
	f.shell.Exec(ctx, "add 2")
	require.Equal(t, 2, f.store.Len())
	assert.Contains(t, f.out.String(), "[success] Брус добавлен в калькулятор.")

	f.shell.Exec(ctx, "qty 0 0")
	assert.Contains(t, f.out.String(), "Количество осталось прежним: 2")

	f.shell.Exec(ctx, "delivery 50")
	assert.Contains(t, f.out.String(), "Итого: 260.50 ₽")

	f.shell.Exec(ctx, "rm 1")
	assert.Equal(t, 1, f.store.Len())
}

func TestShell_Order(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.shell.Exec(ctx, "order")
	assert.Contains(t, f.out.String(), "Корзина пуста.")

	f.shell.Exec(ctx, "catalog")
	f.shell.Exec(ctx, "add 1 3")
	f.shell.Exec(ctx, "comment позвонить заранее")
	f.shell.Exec(ctx, "delivery 200")
	f.shell.Exec(ctx, "order")

	require.Len(t, f.backend.orders, 1)
	req := f.backend.orders[0]
	assert.Equal(t, "позвонить заранее", req.Comment)
	assert.InDelta(t, 200, req.DeliveryPrice, 0.001)
	require.Len(t, req.Items, 1)
	assert.InDelta(t, 3, req.Items[0].Qty, 0.001)

	assert.Equal(t, 0, f.store.Len())
	assert.Equal(t, "0", f.page.Delivery())
	assert.Contains(t, f.out.String(), "Заявка №1 принята")
}

func TestShell_Forms(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.shell.Exec(ctx, "catalog")
	f.shell.Exec(ctx, "review 2 5 Быстро и ровно")
	require.Len(t, f.backend.reviews, 1)
	assert.Equal(t, model.ReviewRequest{TargetType: "service", TargetID: 2, Rating: 5, Text: "Быстро и ровно"}, f.backend.reviews[0])

	f.shell.Exec(ctx, "review 2 5")
	assert.Len(t, f.backend.reviews, 1)
	assert.Contains(t, f.out.String(), "Заполните оценку и комментарий.")

	f.shell.Exec(ctx, "profile +79990001122 | ivan@example.com | ул. Лесная, 1")
	require.Len(t, f.backend.profiles, 1)
	assert.Equal(t, "ул. Лесная, 1", f.backend.profiles[0].DeliveryAddress)

	f.shell.Exec(ctx, "feedback Иван | Когда доставка?")
	require.Len(t, f.backend.feedback, 1)
	assert.Equal(t, "Когда доставка?", f.backend.feedback[0].Message)

	f.shell.Exec(ctx, "refresh")
	assert.Contains(t, f.out.String(), "Запустите приложение из Telegram")
}

func TestShell_UsageAndUnknown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.shell.Exec(ctx, "add")
	assert.Contains(t, f.out.String(), "Использование: add")

	f.shell.Exec(ctx, "add 5")
	assert.Contains(t, f.out.String(), "Нет такой позиции")

	f.shell.Exec(ctx, "dance")
	assert.Contains(t, f.out.String(), `Неизвестная команда "dance"`)
}

func TestShell_Run(t *testing.T) {
	f := newFixture(t)

	in := strings.NewReader("catalog\nadd 1\nquit\nadd 2\n")
	require.NoError(t, f.shell.Run(context.Background(), in))

	assert.Equal(t, 1, f.store.Len())
}

func TestShell_ForgetsExpiredToasts(t *testing.T) {
	f := newFixture(t)
	toasts := f.shell.deps.Toasts

	toasts.Notify(notify.LevelInfo, "коротко", 200*time.Millisecond)
	f.shell.flushToasts()
	f.shell.flushToasts()
	assert.Equal(t, 1, strings.Count(f.out.String(), "коротко"))
	assert.Len(t, f.shell.seen, 1)

	require.Eventually(t, func() bool {
		f.shell.flushToasts()
		return len(f.shell.seen) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestShell_WatchToastsPrintsAsyncToasts(t *testing.T) {
	f := newFixture(t)
	out := &lockedBuffer{}
	f.shell.out = out

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- f.shell.WatchToasts(ctx, 5*time.Millisecond)
	}()

	f.shell.deps.Toasts.Notify(notify.LevelInfo, "каталог загружен", notify.DefaultTimeout)

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "[info] каталог загружен")
	}, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestPrintNavigator(t *testing.T) {
	var buf bytes.Buffer
	NewPrintNavigator(&buf, "http://localhost:8080/").Navigate(order.OrdersPath)
	assert.Equal(t, "Переход: http://localhost:8080/app/orders\n", buf.String())
}
