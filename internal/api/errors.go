package api

import (
	"errors"
	"fmt"
	"net/http"
)

// TransportError описывает сбой сети или ответ, который не удалось разобрать как JSON.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServerError описывает ответ сервера с кодом вне диапазона 2xx.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("server rejected request: %d %s", e.StatusCode, msg)
}

// newServerError создаёт ошибку сервера. Message остаётся пустым, если сервер не прислал текст ошибки.
func newServerError(code int, message string) *ServerError {
	return &ServerError{StatusCode: code, Message: message}
}

// ErrorMessage возвращает текст для уведомления: сообщение сервера, если оно есть, иначе fallback.
func ErrorMessage(err error, fallback string) string {
	var srvErr *ServerError
	if errors.As(err, &srvErr) && srvErr.Message != "" {
		return srvErr.Message
	}
	return fallback
}

// IsUnauthorized сообщает, что сервер не принял сессию.
func IsUnauthorized(err error) bool {
	var srvErr *ServerError
	return errors.As(err, &srvErr) && srvErr.StatusCode == http.StatusUnauthorized
}
