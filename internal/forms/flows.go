package forms

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mmeshcher/shopapp/internal/api"
	"github.com/mmeshcher/shopapp/internal/model"
	"github.com/mmeshcher/shopapp/internal/notify"
)

// ErrInvalidForm возвращается, если обязательные поля не заполнены. Запрос на сервер при этом не отправляется.
var ErrInvalidForm = errors.New("form is not filled in")

// ErrInFlight возвращается, если форма уже отправляется.
var ErrInFlight = errors.New("form submission already in progress")

// Backend определяет методы бэкенда, используемые формами.
type Backend interface {
	SubmitReview(ctx context.Context, req model.ReviewRequest) error
	UpdateProfile(ctx context.Context, req model.ProfileRequest) error
	SendFeedback(ctx context.Context, req model.FeedbackRequest) error
}

// Alerter описывает возможности моста платформы, нужные для обновления профиля.
type Alerter interface {
	ShowAlert(message string)
	ImpactOccurred(style string)
}

// AlerterProvider возвращает мост платформы, если он доступен.
type AlerterProvider func() (Alerter, bool)

type messages struct {
	invalid string
	success string
	failure string
	reset   bool
}

// Flows отправляет вспомогательные формы.
type Flows struct {
	backend  Backend
	notifier notify.Notifier
	validate *validator.Validate
	bridge   AlerterProvider
	logger   *zap.Logger
}

// NewFlows создаёт обработчики форм.
func NewFlows(backend Backend, notifier notify.Notifier, bridge AlerterProvider, logger *zap.Logger) *Flows {
	if logger == nil {
		logger = zap.NewNop()
	}
	if bridge == nil {
		bridge = func() (Alerter, bool) { return nil, false }
	}
	return &Flows{
		backend:  backend,
		notifier: notifier,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		bridge:   bridge,
		logger:   logger,
	}
}

// SubmitReview отправляет отзыв. Оценка и текст обязательны.
func (f *Flows) SubmitReview(ctx context.Context, form *Form) error {
	targetID, _ := strconv.ParseInt(strings.TrimSpace(form.Data("target-id")), 10, 64)
	rating, _ := strconv.Atoi(strings.TrimSpace(form.Value("rating")))

	req := model.ReviewRequest{
		TargetType: form.Data("target-type"),
		TargetID:   targetID,
		Rating:     rating,
		Text:       strings.TrimSpace(form.Value("text")),
	}

	return f.submit(ctx, form, req, func(ctx context.Context) error {
		return f.backend.SubmitReview(ctx, req)
	}, messages{
		invalid: "Заполните оценку и комментарий.",
		success: "Спасибо! Отзыв отправлен на модерацию.",
		failure: "Не удалось отправить отзыв.",
		reset:   true,
	})
}

// SubmitProfile сохраняет контактные данные. Поля проверяет сервер, форма после сохранения не очищается.
func (f *Flows) SubmitProfile(ctx context.Context, form *Form) error {
	req := model.ProfileRequest{
		Phone:           form.Value("phone"),
		Email:           form.Value("email"),
		DeliveryAddress: form.Value("delivery_address"),
	}

	return f.submit(ctx, form, req, func(ctx context.Context) error {
		return f.backend.UpdateProfile(ctx, req)
	}, messages{
		success: "Профиль обновлён.",
		failure: "Не удалось обновить профиль.",
	})
}

// SubmitFeedback отправляет сообщение обратной связи. Имя и сообщение обязательны.
func (f *Flows) SubmitFeedback(ctx context.Context, form *Form) error {
	req := model.FeedbackRequest{
		Name:    strings.TrimSpace(form.Value("name")),
		Phone:   form.Value("phone"),
		Email:   form.Value("email"),
		Subject: form.Value("subject"),
		Message: strings.TrimSpace(form.Value("message")),
	}

	return f.submit(ctx, form, req, func(ctx context.Context) error {
		return f.backend.SendFeedback(ctx, req)
	}, messages{
		invalid: "Заполните имя и сообщение.",
		success: "Сообщение отправлено. Менеджер свяжется с вами.",
		failure: "Не удалось отправить сообщение.",
		reset:   true,
	})
}

// RefreshProfile подсказывает, как синхронизировать имя и логин с платформой.
func (f *Flows) RefreshProfile() {
	if b, ok := f.bridge(); ok {
		b.ImpactOccurred("light")
		b.ShowAlert("Откройте бота @WinstGradBot и отправьте команду /start для синхронизации имени и логина.")
		return
	}
	f.notifier.Notify(notify.LevelInfo, "Запустите приложение из Telegram, чтобы обновить данные автоматически.", notify.DefaultTimeout)
}

func (f *Flows) submit(ctx context.Context, form *Form, payload any, call func(context.Context) error, msg messages) error {
	if err := f.validate.Struct(payload); err != nil {
		f.notifier.Notify(notify.LevelWarning, msg.invalid, notify.DefaultTimeout)
		return fmt.Errorf("%w: %v", ErrInvalidForm, err)
	}

	form.mu.Lock()
	if form.disabled {
		form.mu.Unlock()
		return ErrInFlight
	}
	form.disabled = true
	form.mu.Unlock()
	defer form.setDisabled(false)

	if err := call(ctx); err != nil {
		f.logger.Warn("form submission failed", zap.Error(err))
		f.notifier.Notify(notify.LevelDanger, api.ErrorMessage(err, msg.failure), notify.DefaultTimeout)
		return err
	}

	f.notifier.Notify(notify.LevelSuccess, msg.success, notify.DefaultTimeout)
	if msg.reset {
		form.Reset()
	}
	return nil
}
