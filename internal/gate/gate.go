// Package gate решает, показать ли приложение сразу по сохранённой сессии
// или сначала авторизовать пользователя через платформу.
package gate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/shopapp/internal/api"
	"github.com/mmeshcher/shopapp/internal/model"
)

// State описывает состояние шлюза авторизации.
type State int

const (
	StateUnknown State = iota
	StateChecking
	StateAuthenticated
	StateAwaitingPlatform
	StatePlatformAuthFailed
)

func (s State) String() string {
	switch s {
	case StateChecking:
		return "checking"
	case StateAuthenticated:
		return "authenticated"
	case StateAwaitingPlatform:
		return "awaiting_platform"
	case StatePlatformAuthFailed:
		return "platform_auth_failed"
	default:
		return "unknown"
	}
}

const (
	DefaultBridgeTimeout   = 7 * time.Second
	DefaultPollInterval    = 50 * time.Millisecond
	DefaultAfterLoginDelay = 50 * time.Millisecond
)

var (
	// ErrPlatformUnavailable возвращается, если мост платформы так и не появился.
	ErrPlatformUnavailable = errors.New("platform bridge unavailable")
	// ErrEmptyInitData возвращается, если платформа не передала данные запуска.
	ErrEmptyInitData = errors.New("platform init data is empty")
	// ErrAlreadyStarted возвращается при повторном запуске шлюза.
	ErrAlreadyStarted = errors.New("gate already started")
)

// AuthRejectedError описывает отказ сервера принять данные запуска платформы.
type AuthRejectedError struct {
	Message string
}

func (e *AuthRejectedError) Error() string {
	return "platform auth rejected: " + e.Message
}

// Backend определяет методы бэкенда, используемые шлюзом.
type Backend interface {
	Me(ctx context.Context) (*model.User, error)
	TelegramAuth(ctx context.Context, initData string) (*model.TelegramAuthResponse, error)
}

// Option настраивает Gate.
type Option func(*Gate)

// WithDiagnostics задаёт получателя диагностических сообщений о ходе авторизации.
func WithDiagnostics(fn func(string)) Option {
	return func(g *Gate) { g.diag = fn }
}

// WithBridgeTimeout задаёт максимальное время ожидания моста платформы.
func WithBridgeTimeout(d time.Duration) Option {
	return func(g *Gate) { g.bridgeTimeout = d }
}

// WithPollInterval задаёт интервал опроса моста платформы.
func WithPollInterval(d time.Duration) Option {
	return func(g *Gate) { g.pollInterval = d }
}

// WithAfterLoginDelay задаёт задержку перед вызовом хука после входа.
func WithAfterLoginDelay(d time.Duration) Option {
	return func(g *Gate) { g.afterLoginDelay = d }
}

// WithLogger задаёт логгер.
func WithLogger(l *zap.Logger) Option {
	return func(g *Gate) { g.logger = l }
}

// Gate реализует конечный автомат авторизации. Содержимое приложения показывается только после
// успешной проверки сессии или успешной авторизации через платформу.
type Gate struct {
	backend Backend
	bridge  BridgeProvider
	content Revealer
	diag    func(string)
	logger  *zap.Logger

	bridgeTimeout   time.Duration
	pollInterval    time.Duration
	afterLoginDelay time.Duration

	mu         sync.Mutex
	state      State
	message    string
	afterLogin func()
}

// New создаёт шлюз в состоянии Unknown.
func New(backend Backend, bridge BridgeProvider, content Revealer, opts ...Option) *Gate {
	g := &Gate{
		backend:         backend,
		bridge:          bridge,
		content:         content,
		logger:          zap.NewNop(),
		bridgeTimeout:   DefaultBridgeTimeout,
		pollInterval:    DefaultPollInterval,
		afterLoginDelay: DefaultAfterLoginDelay,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.bridge == nil {
		g.bridge = func() (Bridge, bool) { return nil, false }
	}
	return g
}

// State возвращает текущее состояние.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Message возвращает последнее диагностическое сообщение.
func (g *Gate) Message() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.message
}

// OnAfterLogin регистрирует хук, который один раз вызывается после входа.
// Если вход уже выполнен, хук будет вызван сразу после задержки.
func (g *Gate) OnAfterLogin(fn func()) {
	g.mu.Lock()
	if g.state != StateAuthenticated {
		g.afterLogin = fn
		g.mu.Unlock()
		return
	}
	g.mu.Unlock()

	g.runAfterLogin(fn)
}

// Run выполняет авторизацию. Шлюз запускается один раз за время жизни страницы;
// ошибка авторизации окончательна, содержимое остаётся скрытым.
func (g *Gate) Run(ctx context.Context) error {
	g.mu.Lock()
	if g.state != StateUnknown {
		g.mu.Unlock()
		return ErrAlreadyStarted
	}
	g.state = StateChecking
	g.mu.Unlock()

	g.report("Проверяем сохранённую сессию…")

	_, err := g.backend.Me(ctx)
	if err == nil {
		g.logger.Info("session probe accepted")
		g.authenticate()
		return nil
	}

	var trErr *api.TransportError
	if errors.As(err, &trErr) {
		g.report("Не удалось использовать сохранённую сессию.")
	}
	g.logger.Debug("session probe rejected", zap.Error(err))

	g.setState(StateAwaitingPlatform)

	bridge, ok := WaitBridge(ctx, g.bridge, g.bridgeTimeout, g.pollInterval)
	if !ok {
		return g.fail("Запустите страницу из Telegram.", ErrPlatformUnavailable)
	}

	g.setState(StateChecking)
	bridge.Ready()
	bridge.Expand()

	initData := bridge.InitData()
	if initData == "" {
		return g.fail("Не получили данные от Telegram.", ErrEmptyInitData)
	}

	g.report("Авторизуемся через Telegram…")

	res, err := g.backend.TelegramAuth(ctx, initData)
	if err != nil {
		return g.fail("Ошибка связи с сервером: "+err.Error(), fmt.Errorf("platform auth: %w", err))
	}

	if !res.Success {
		msg := res.Error
		if msg == "" {
			msg = "Не удалось авторизоваться."
		}
		return g.fail(msg, &AuthRejectedError{Message: msg})
	}

	g.report("Готово! Загружаем приложение…")
	g.logger.Info("platform auth accepted")
	g.authenticate()
	return nil
}

func (g *Gate) authenticate() {
	g.mu.Lock()
	g.state = StateAuthenticated
	hook := g.afterLogin
	g.afterLogin = nil
	g.mu.Unlock()

	g.content.Reveal()

	if hook != nil {
		g.runAfterLogin(hook)
	}
}

func (g *Gate) runAfterLogin(hook func()) {
	time.AfterFunc(g.afterLoginDelay, func() {
		defer func() {
			if r := recover(); r != nil {
				g.logger.Warn("after login hook error", zap.Any("panic", r))
			}
		}()
		hook()
	})
}

func (g *Gate) fail(msg string, err error) error {
	g.setState(StatePlatformAuthFailed)
	g.report(msg)
	g.logger.Warn("platform auth failed", zap.Error(err))
	return err
}

func (g *Gate) setState(s State) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = s
}

func (g *Gate) report(msg string) {
	g.mu.Lock()
	g.message = msg
	g.mu.Unlock()

	if g.diag != nil {
		g.diag(msg)
	}
}
