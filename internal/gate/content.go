package gate

import (
	"sync"
	"sync/atomic"
)

// Revealer показывает закрытое содержимое приложения.
type Revealer interface {
	Reveal()
}

// Content хранит закрытое содержимое приложения. Показывается не более одного раза.
type Content struct {
	once    sync.Once
	visible atomic.Bool
	onShow  func()
}

// NewContent создаёт скрытое содержимое. onShow вызывается один раз в момент показа.
func NewContent(onShow func()) *Content {
	return &Content{onShow: onShow}
}

// Reveal показывает содержимое. Повторные вызовы ничего не делают.
func (c *Content) Reveal() {
	c.once.Do(func() {
		c.visible.Store(true)
		if c.onShow != nil {
			c.onShow()
		}
	})
}

// Visible сообщает, показано ли содержимое.
func (c *Content) Visible() bool {
	return c.visible.Load()
}
