// Package api предоставляет клиент для JSON API бэкенда мини-приложения.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"

	"github.com/mmeshcher/shopapp/internal/model"
)

const (
	pathMe           = "/app/me"
	pathCatalog      = "/app/api/catalog"
	pathTelegramAuth = "/app/api/telegram/auth"
	pathOrder        = "/app/order"
	pathReviews      = "/app/reviews"
	pathProfile      = "/app/profile"
	pathFeedback     = "/app/feedback"
)

// Client инкапсулирует HTTP-взаимодействие с бэкендом. Cookie сессии хранятся в jar и отправляются с каждым запросом.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient создаёт клиент для бэкенда по указанному адресу.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	base := strings.TrimRight(baseURL, "/")
	if base != "" && !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	return &Client{
		baseURL: base,
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
		logger: logger,
	}, nil
}

// BaseURL возвращает адрес бэкенда.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Me проверяет сохранённую сессию. Любой ответ вне 2xx означает, что сессии нет.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	resp, err := c.do(ctx, http.MethodGet, pathMe, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newServerError(resp.StatusCode, "")
	}

	var u model.User
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		c.logger.Debug("session probe returned no user body", zap.Error(err))
	}
	return &u, nil
}

// Catalog возвращает активные товары и услуги.
func (c *Client) Catalog(ctx context.Context) ([]model.CatalogItem, error) {
	resp, err := c.do(ctx, http.MethodGet, pathCatalog, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, responseError(resp.StatusCode, resp.Body)
	}

	var items []model.CatalogItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, &TransportError{Op: "decode catalog", Err: err}
	}
	return items, nil
}

// TelegramAuth передаёт бэкенду подписанные данные запуска.
// Тело ответа разбирается при любом коде: решение принимается по полю success.
func (c *Client) TelegramAuth(ctx context.Context, initData string) (*model.TelegramAuthResponse, error) {
	resp, err := c.do(ctx, http.MethodPost, pathTelegramAuth, model.TelegramAuthRequest{InitData: initData})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result model.TelegramAuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &TransportError{Op: "decode auth response", Err: err}
	}
	return &result, nil
}

// CreateOrder оформляет заявку.
func (c *Client) CreateOrder(ctx context.Context, req model.OrderRequest) (*model.OrderResponse, error) {
	var result model.OrderResponse
	if err := c.postJSON(ctx, pathOrder, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SubmitReview отправляет отзыв на модерацию.
func (c *Client) SubmitReview(ctx context.Context, req model.ReviewRequest) error {
	return c.postJSON(ctx, pathReviews, req, nil)
}

// UpdateProfile сохраняет контактные данные пользователя.
func (c *Client) UpdateProfile(ctx context.Context, req model.ProfileRequest) error {
	return c.postJSON(ctx, pathProfile, req, nil)
}

// SendFeedback отправляет сообщение обратной связи.
func (c *Client) SendFeedback(ctx context.Context, req model.FeedbackRequest) error {
	return c.postJSON(ctx, pathFeedback, req, nil)
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	resp, err := c.do(ctx, http.MethodPost, path, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return responseError(resp.StatusCode, resp.Body)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: "decode response", Err: err}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "do request", Err: err}
	}

	c.logger.Debug("backend request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)
	return resp, nil
}

// responseError разбирает тело ответа с кодом вне 2xx. Тело, которое не является JSON, считается сбоем транспорта.
func responseError(code int, r io.Reader) error {
	var body model.StatusResponse
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return &TransportError{Op: "decode error response", Err: fmt.Errorf("status %d: %w", code, err)}
	}
	return newServerError(code, body.Error)
}
