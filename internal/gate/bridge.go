package gate

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
)

// Bridge описывает объект, который платформа внедряет в страницу мини-приложения.
type Bridge interface {
	Ready()
	Expand()
	// InitData возвращает подписанные платформой данные запуска. Пустая строка означает, что данных нет.
	InitData() string
	ShowAlert(message string)
	ImpactOccurred(style string)
}

// BridgeProvider возвращает мост платформы, если он уже доступен.
type BridgeProvider func() (Bridge, bool)

// WaitBridge ждёт появления моста не дольше timeout, опрашивая provider с интервалом interval.
func WaitBridge(ctx context.Context, provider BridgeProvider, timeout, interval time.Duration) (Bridge, bool) {
	if b, ok := provider(); ok {
		return b, true
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, false
		case <-deadline.C:
			return nil, false
		case <-ticker.C:
			if b, ok := provider(); ok {
				return b, true
			}
		}
	}
}

// StaticBridge реализует мост с заранее известными данными запуска. Используется терминальным клиентом,
// который получает данные запуска из конфигурации, а не от платформы.
type StaticBridge struct {
	initData string
	out      io.Writer
	logger   *zap.Logger
}

// NewStaticBridge создаёт мост с указанными данными запуска. Сообщения ShowAlert выводятся в out.
func NewStaticBridge(initData string, out io.Writer, logger *zap.Logger) *StaticBridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StaticBridge{initData: initData, out: out, logger: logger}
}

// Provider возвращает BridgeProvider: мост доступен, только если данные запуска заданы.
func (b *StaticBridge) Provider() BridgeProvider {
	return func() (Bridge, bool) {
		if b.initData == "" {
			return nil, false
		}
		return b, true
	}
}

func (b *StaticBridge) Ready()  { b.logger.Debug("bridge ready") }
func (b *StaticBridge) Expand() { b.logger.Debug("bridge expand") }

func (b *StaticBridge) InitData() string { return b.initData }

func (b *StaticBridge) ShowAlert(message string) {
	_, _ = fmt.Fprintln(b.out, message)
}

func (b *StaticBridge) ImpactOccurred(style string) {
	b.logger.Debug("haptic feedback", zap.String("style", style))
}
