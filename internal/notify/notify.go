// Package notify содержит способы показать пользователю уведомление.
package notify

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Level описывает оформление уведомления.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelDanger  Level = "danger"
)

const (
	// DefaultTimeout задаёт время показа обычного уведомления.
	DefaultTimeout = 4 * time.Second
	// LongTimeout задаёт время показа результата оформления заявки.
	LongTimeout = 6 * time.Second
)

// Notifier показывает уведомление. Показ выполняется по возможности и не возвращает ошибок.
type Notifier interface {
	Notify(level Level, message string, timeout time.Duration)
}

// Toast описывает одно всплывающее уведомление.
type Toast struct {
	ID        string
	Level     Level
	Message   string
	ExpiresAt time.Time
}

// Toasts хранит стопку всплывающих уведомлений. Уведомление исчезает по истечении своего таймаута.
type Toasts struct {
	mu     sync.Mutex
	stack  []Toast
	now    func() time.Time
	logger *zap.Logger
}

// NewToasts создаёт пустую стопку уведомлений.
func NewToasts(logger *zap.Logger) *Toasts {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Toasts{
		now:    time.Now,
		logger: logger,
	}
}

// Notify добавляет уведомление в стопку.
func (t *Toasts) Notify(level Level, message string, timeout time.Duration) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.pruneLocked(now)

	toast := Toast{
		ID:        "toast-" + uuid.NewString(),
		Level:     level,
		Message:   message,
		ExpiresAt: now.Add(timeout),
	}
	t.stack = append(t.stack, toast)

	t.logger.Debug("toast shown",
		zap.String("id", toast.ID),
		zap.String("level", string(level)),
		zap.String("message", message),
	)
}

// Active возвращает уведомления, которые ещё видны, в порядке показа.
func (t *Toasts) Active() []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.pruneLocked(t.now())

	res := make([]Toast, len(t.stack))
	copy(res, t.stack)
	return res
}

// Last возвращает последнее видимое уведомление.
func (t *Toasts) Last() (Toast, bool) {
	active := t.Active()
	if len(active) == 0 {
		return Toast{}, false
	}
	return active[len(active)-1], true
}

func (t *Toasts) pruneLocked(now time.Time) {
	kept := t.stack[:0]
	for _, toast := range t.stack {
		if now.Before(toast.ExpiresAt) {
			kept = append(kept, toast)
		}
	}
	t.stack = kept
}

// Alert синхронно выводит сообщение в writer. Используется, если стопка уведомлений недоступна.
type Alert struct {
	mu sync.Mutex
	w  io.Writer
}

// NewAlert создаёт запасной Notifier, пишущий в w.
func NewAlert(w io.Writer) *Alert {
	return &Alert{w: w}
}

// Notify выводит сообщение. Уровень и таймаут игнорируются, как у блокирующего alert.
func (a *Alert) Notify(_ Level, message string, _ time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()

	_, _ = fmt.Fprintln(a.w, message)
}

// Select выбирает реализацию при запуске: стопку уведомлений, если она доступна, иначе Alert.
func Select(richAvailable bool, fallback io.Writer, logger *zap.Logger) Notifier {
	if richAvailable {
		return NewToasts(logger)
	}
	return NewAlert(fallback)
}
