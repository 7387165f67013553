// Package model содержит доменные сущности и форматы обмена мини-приложения магазина.
package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind описывает тип позиции каталога.
type Kind string

const (
	KindProduct Kind = "product"
	KindService Kind = "service"
)

// Valid сообщает, что тип позиции известен.
func (k Kind) Valid() bool {
	return k == KindProduct || k == KindService
}

// Label возвращает подпись типа позиции для отображения.
func (k Kind) Label() string {
	switch k {
	case KindProduct:
		return "Товар"
	case KindService:
		return "Услуга"
	default:
		return ""
	}
}

// LineKey идентифицирует строку корзины. В корзине не бывает двух строк с одинаковым ключом.
type LineKey struct {
	Kind Kind
	ID   int64
}

// CartLine описывает одну позицию корзины.
type CartLine struct {
	Kind      Kind
	ID        int64
	Name      string
	Unit      string
	UnitPrice decimal.Decimal
	Quantity  decimal.Decimal
}

// Key возвращает ключ уникальности строки.
func (l CartLine) Key() LineKey {
	return LineKey{Kind: l.Kind, ID: l.ID}
}

// Total возвращает стоимость строки.
func (l CartLine) Total() decimal.Decimal {
	return l.UnitPrice.Mul(l.Quantity)
}

// ItemSource содержит data-атрибуты карточки товара или услуги, с которой добавляют позицию в корзину.
type ItemSource struct {
	Type  string
	ID    string
	Name  string
	Unit  string
	Price string
}

// Line собирает строку корзины из атрибутов карточки и указанного количества.
// Некорректная цена считается нулевой.
func (s ItemSource) Line(qty decimal.Decimal) (CartLine, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s.ID), 10, 64)
	if err != nil {
		return CartLine{}, fmt.Errorf("parse item id %q: %w", s.ID, err)
	}

	kind := Kind(strings.TrimSpace(s.Type))
	if !kind.Valid() {
		return CartLine{}, fmt.Errorf("unknown item type %q", s.Type)
	}

	price, err := decimal.NewFromString(strings.TrimSpace(s.Price))
	if err != nil || price.IsNegative() {
		price = decimal.Zero
	}

	return CartLine{
		Kind:      kind,
		ID:        id,
		Name:      s.Name,
		Unit:      s.Unit,
		UnitPrice: price,
		Quantity:  qty,
	}, nil
}

// OrderItem описывает позицию в заявке. Цену и название сервер определяет сам по идентификатору.
type OrderItem struct {
	Type Kind    `json:"type"`
	ID   int64   `json:"id"`
	Qty  float64 `json:"qty"`
}

// OrderRequest содержит тело запроса на оформление заявки.
type OrderRequest struct {
	Items         []OrderItem `json:"items"`
	Comment       string      `json:"comment"`
	DeliveryPrice float64     `json:"delivery_price"`
}

// OrderResponse содержит ответ сервера на оформление заявки.
type OrderResponse struct {
	OK      bool    `json:"ok"`
	OrderID int64   `json:"order_id"`
	Total   float64 `json:"total"`
}

// TelegramAuthRequest содержит подписанные данные запуска, полученные от платформы.
type TelegramAuthRequest struct {
	InitData string `json:"initData"`
}

// TelegramAuthResponse содержит результат авторизации через платформу.
type TelegramAuthResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	User    *User  `json:"user,omitempty"`
}

// User описывает текущего пользователя.
type User struct {
	ID              int64  `json:"id"`
	TelegramID      int64  `json:"telegram_id"`
	Username        string `json:"username,omitempty"`
	FirstName       string `json:"first_name,omitempty"`
	LastName        string `json:"last_name,omitempty"`
	Phone           string `json:"phone,omitempty"`
	Email           string `json:"email,omitempty"`
	DeliveryAddress string `json:"delivery_address,omitempty"`
}

// ReviewRequest содержит отзыв о товаре или услуге.
type ReviewRequest struct {
	TargetType string `json:"target_type"`
	TargetID   int64  `json:"target_id"`
	Rating     int    `json:"rating" validate:"required,min=1,max=5"`
	Text       string `json:"text" validate:"required"`
}

// ProfileRequest содержит контактные данные профиля.
type ProfileRequest struct {
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	DeliveryAddress string `json:"delivery_address"`
}

// FeedbackRequest содержит сообщение обратной связи.
type FeedbackRequest struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message" validate:"required"`
}

// StatusResponse описывает типовой ответ сервера с признаком успеха и текстом ошибки.
type StatusResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// CatalogItem описывает товар или услугу каталога вместе со средней оценкой.
type CatalogItem struct {
	Type   Kind    `json:"type"`
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Unit   string  `json:"unit"`
	Price  float64 `json:"price"`
	Rating float64 `json:"rating"`
}

// Source возвращает атрибуты карточки, с которой позицию добавляют в корзину.
func (c CatalogItem) Source() ItemSource {
	return ItemSource{
		Type:  string(c.Type),
		ID:    strconv.FormatInt(c.ID, 10),
		Name:  c.Name,
		Unit:  c.Unit,
		Price: strconv.FormatFloat(c.Price, 'f', -1, 64),
	}
}
