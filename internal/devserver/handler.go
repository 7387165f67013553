// Package devserver реализует JSON API бэкенда мини-приложения в памяти для локальной разработки.
package devserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/shopapp/internal/initdata"
	"github.com/mmeshcher/shopapp/internal/model"
)

// Handler реализует HTTP-обработчики API.
type Handler struct {
	store    *Store
	sessions *Sessions
	botToken string
	logger   *zap.Logger
	now      func() time.Time
}

// NewHandler создаёт обработчики API.
func NewHandler(store *Store, sessions *Sessions, botToken string, logger *zap.Logger) *Handler {
	return &Handler{
		store:    store,
		sessions: sessions,
		botToken: botToken,
		logger:   logger,
		now:      time.Now,
	}
}

// TelegramAuth проверяет данные запуска и выдаёт cookie сессии.
func (h *Handler) TelegramAuth(w http.ResponseWriter, r *http.Request) {
	var req model.TelegramAuthRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	data, err := initdata.Verify(req.InitData, h.botToken, h.now())
	if err != nil {
		msg := "Invalid initData"
		if errors.Is(err, initdata.ErrNoUser) {
			msg = "No user in initData"
		}
		h.logger.Info("platform auth rejected", zap.Error(err))
		writeJSON(w, http.StatusUnauthorized, model.TelegramAuthResponse{Success: false, Error: msg})
		return
	}

	u := h.store.UpsertPlatformUser(data.User)
	h.sessions.SetCookie(w, u.ID)
	writeJSON(w, http.StatusOK, model.TelegramAuthResponse{Success: true, User: u})
}

// Me возвращает текущего пользователя.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	u, err := h.store.User(userID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// Catalog возвращает товары и услуги.
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Catalog())
}

// CreateOrder оформляет заявку текущего пользователя.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var req model.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "Заявка пуста")
		return
	}
	for _, it := range req.Items {
		if it.Qty <= 0 {
			writeError(w, http.StatusBadRequest, "Количество должно быть больше нуля")
			return
		}
	}
	if req.DeliveryPrice < 0 {
		writeError(w, http.StatusBadRequest, "Некорректная стоимость доставки")
		return
	}

	o, err := h.store.CreateOrder(userID, req, h.now())
	if err != nil {
		if errors.Is(err, ErrUnknownItem) {
			writeError(w, http.StatusBadRequest, "Позиция не найдена в каталоге")
			return
		}
		h.logger.Error("create order error", zap.Error(err), zap.Int64("userID", userID))
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	h.logger.Info("order created", zap.Int64("orderID", o.ID), zap.Int64("userID", userID))
	writeJSON(w, http.StatusOK, model.OrderResponse{OK: true, OrderID: o.ID, Total: o.Total.InexactFloat64()})
}

// Profile сохраняет контактные данные.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var req model.ProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.DeliveryAddress = strings.TrimSpace(req.DeliveryAddress)

	if req.Email != "" && !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "Некорректный email")
		return
	}
	if req.Phone != "" && len(req.Phone) < 6 {
		writeError(w, http.StatusBadRequest, "Некорректный телефон")
		return
	}

	if err := h.store.UpdateProfile(userID, req); err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, model.StatusResponse{OK: true})
}

// Reviews принимает отзыв на модерацию.
func (h *Handler) Reviews(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var req model.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	req.Text = strings.TrimSpace(req.Text)

	if (req.TargetType != string(model.KindProduct) && req.TargetType != string(model.KindService)) || req.TargetID <= 0 {
		writeError(w, http.StatusBadRequest, "Некорректная цель")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		writeError(w, http.StatusBadRequest, "Рейтинг 1–5")
		return
	}
	if len([]rune(req.Text)) < 5 {
		writeError(w, http.StatusBadRequest, "Слишком короткий отзыв")
		return
	}

	h.store.AddReview(userID, req)
	writeJSON(w, http.StatusOK, model.StatusResponse{OK: true})
}

// Feedback принимает сообщение обратной связи.
func (h *Handler) Feedback(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var req model.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Message = strings.TrimSpace(req.Message)

	if req.Name == "" || req.Message == "" {
		writeError(w, http.StatusBadRequest, "Заполните имя и сообщение")
		return
	}

	h.store.AddFeedback(userID, req)
	writeJSON(w, http.StatusOK, model.StatusResponse{OK: true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.StatusResponse{OK: false, Error: msg})
}
