package view

import "sync"

// Page хранит состояние полей формы заказа и кнопки оформления.
type Page struct {
	mu       sync.Mutex
	comment  string
	delivery string
	hasItems bool
	busy     bool
}

// NewPage создаёт страницу с пустым комментарием и нулевой доставкой.
func NewPage() *Page {
	return &Page{delivery: "0"}
}

// Comment возвращает текущий комментарий к заявке.
func (p *Page) Comment() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.comment
}

// SetComment меняет комментарий к заявке.
func (p *Page) SetComment(v string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.comment = v
}

// Delivery возвращает значение поля стоимости доставки как его ввёл пользователь.
func (p *Page) Delivery() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.delivery
}

// SetDelivery меняет значение поля стоимости доставки.
func (p *Page) SetDelivery(v string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.delivery = v
}

// ResetOrderInputs очищает комментарий и обнуляет доставку.
func (p *Page) ResetOrderInputs() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.comment = ""
	p.delivery = "0"
}

// SetBusy блокирует кнопку оформления на время отправки заявки.
func (p *Page) SetBusy(busy bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.busy = busy
}

// SubmitEnabled сообщает, доступна ли кнопка оформления: корзина не пуста и заявка не отправляется.
func (p *Page) SubmitEnabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasItems && !p.busy
}

func (p *Page) setHasItems(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hasItems = v
}
