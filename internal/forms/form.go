// Package forms реализует отправку вспомогательных форм: отзыва, профиля и обратной связи.
package forms

import "sync"

// Form хранит значения полей формы, её data-атрибуты и признак блокировки элементов управления.
type Form struct {
	mu       sync.Mutex
	fields   map[string]string
	initial  map[string]string
	data     map[string]string
	disabled bool
}

// NewForm создаёт форму с начальными значениями полей и data-атрибутами.
func NewForm(initial, data map[string]string) *Form {
	f := &Form{
		fields:  make(map[string]string, len(initial)),
		initial: make(map[string]string, len(initial)),
		data:    make(map[string]string, len(data)),
	}
	for k, v := range initial {
		f.fields[k] = v
		f.initial[k] = v
	}
	for k, v := range data {
		f.data[k] = v
	}
	return f
}

// Set меняет значение поля.
func (f *Form) Set(name, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fields[name] = value
}

// Value возвращает значение поля.
func (f *Form) Value(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields[name]
}

// Data возвращает data-атрибут формы.
func (f *Form) Data(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data[name]
}

// Disabled сообщает, заблокированы ли элементы управления формы.
func (f *Form) Disabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.disabled
}

// Reset возвращает поля к начальным значениям.
func (f *Form) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.fields = make(map[string]string, len(f.initial))
	for k, v := range f.initial {
		f.fields[k] = v
	}
}

func (f *Form) setDisabled(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disabled = v
}
