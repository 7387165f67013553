// Package cart реализует корзину мини-приложения: список позиций, уникальность и итоги.
package cart

import (
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/shopapp/internal/model"
	"github.com/mmeshcher/shopapp/internal/money"
)

// ErrInvalidQuantity возвращается при попытке записать в корзину неположительное количество.
var (
	ErrInvalidQuantity = money.ErrInvalidQuantity
	// ErrNoLine возвращается, если позиции с указанным номером нет.
	ErrNoLine = errors.New("cart line not found")
	// ErrInvalidLine возвращается для позиции неизвестного типа или с отрицательной ценой.
	ErrInvalidLine = errors.New("invalid cart line")
)

// Snapshot содержит неизменяемую копию позиций корзины.
type Snapshot struct {
	Lines []model.CartLine
}

// Empty сообщает, пуста ли корзина.
func (s Snapshot) Empty() bool {
	return len(s.Lines) == 0
}

// Subtotal возвращает сумму стоимостей всех позиций без доставки.
func (s Snapshot) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.Lines {
		total = total.Add(l.Total())
	}
	return total
}

// Items возвращает позиции в формате заявки.
func (s Snapshot) Items() []model.OrderItem {
	items := make([]model.OrderItem, 0, len(s.Lines))
	for _, l := range s.Lines {
		items = append(items, model.OrderItem{
			Type: l.Kind,
			ID:   l.ID,
			Qty:  l.Quantity.InexactFloat64(),
		})
	}
	return items
}

// Store владеет позициями корзины. Изменять корзину можно только через его методы.
type Store struct {
	mu        sync.Mutex
	lines     []model.CartLine
	observers []func(Snapshot)
}

// NewStore создаёт пустую корзину.
func NewStore() *Store {
	return &Store{}
}

// Subscribe регистрирует наблюдателя, который вызывается после каждого успешного изменения.
func (s *Store) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.observers = append(s.observers, fn)
}

// Add добавляет позицию. Если позиция с тем же ключом уже есть, количество суммируется.
func (s *Store) Add(line model.CartLine) error {
	if !line.Kind.Valid() || line.UnitPrice.IsNegative() {
		return ErrInvalidLine
	}
	if !line.Quantity.IsPositive() {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	merged := false
	for i := range s.lines {
		if s.lines[i].Key() == line.Key() {
			s.lines[i].Quantity = s.lines[i].Quantity.Add(line.Quantity)
			merged = true
			break
		}
	}
	if !merged {
		s.lines = append(s.lines, line)
	}
	s.mu.Unlock()

	s.notify()
	return nil
}

// RemoveAt удаляет позицию по номеру. Для несуществующего номера ничего не делает и возвращает false.
func (s *Store) RemoveAt(pos int) bool {
	s.mu.Lock()
	if pos < 0 || pos >= len(s.lines) {
		s.mu.Unlock()
		return false
	}
	s.lines = append(s.lines[:pos:pos], s.lines[pos+1:]...)
	s.mu.Unlock()

	s.notify()
	return true
}

// SetQuantityAt меняет количество позиции. Неположительное значение отклоняется, корзина не меняется.
func (s *Store) SetQuantityAt(pos int, qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	if pos < 0 || pos >= len(s.lines) {
		s.mu.Unlock()
		return ErrNoLine
	}
	s.lines[pos].Quantity = qty
	s.mu.Unlock()

	s.notify()
	return nil
}

// Line возвращает копию позиции по номеру.
func (s *Store) Line(pos int) (model.CartLine, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pos < 0 || pos >= len(s.lines) {
		return model.CartLine{}, false
	}
	return s.lines[pos], true
}

// Len возвращает количество позиций.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.lines)
}

// Snapshot возвращает копию текущих позиций.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked()
}

// Clear удаляет все позиции.
func (s *Store) Clear() {
	s.mu.Lock()
	s.lines = nil
	s.mu.Unlock()

	s.notify()
}

func (s *Store) snapshotLocked() Snapshot {
	lines := make([]model.CartLine, len(s.lines))
	copy(lines, s.lines)
	return Snapshot{Lines: lines}
}

func (s *Store) notify() {
	s.mu.Lock()
	snap := s.snapshotLocked()
	observers := make([]func(Snapshot), len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	for _, fn := range observers {
		fn(snap)
	}
}
