// Package initdata проверяет подписанные данные запуска мини-приложения.
package initdata

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// MaxAge ограничивает возраст данных запуска.
const MaxAge = 24 * time.Hour

var (
	// ErrBadSignature возвращается, если подпись отсутствует или не совпадает.
	ErrBadSignature = errors.New("init data signature mismatch")
	// ErrExpired возвращается для устаревших данных запуска.
	ErrExpired = errors.New("init data expired")
	// ErrNoUser возвращается, если в данных нет пользователя.
	ErrNoUser = errors.New("init data has no user")
)

// User описывает пользователя платформы из данных запуска.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username,omitempty"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
	IsPremium    bool   `json:"is_premium,omitempty"`
}

// Data содержит проверенные данные запуска.
type Data struct {
	QueryID  string
	AuthDate time.Time
	User     User
}

// Verify проверяет подпись данных запуска ключом бота и возвращает их содержимое.
func Verify(initData, botToken string, now time.Time) (*Data, error) {
	fields, err := parse(initData)
	if err != nil {
		return nil, err
	}

	received, ok := fields["hash"]
	if !ok || received == "" {
		return nil, ErrBadSignature
	}
	delete(fields, "hash")

	expected := calcHash(checkString(fields), botToken)
	if !hmac.Equal([]byte(expected), []byte(received)) {
		return nil, ErrBadSignature
	}

	var d Data
	d.QueryID = fields["query_id"]

	if v := fields["auth_date"]; v != "" && v != "0" {
		sec, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse auth_date: %w", err)
		}
		d.AuthDate = time.Unix(sec, 0)
		if now.Sub(d.AuthDate) > MaxAge {
			return nil, ErrExpired
		}
	}

	rawUser := fields["user"]
	if rawUser == "" {
		return nil, ErrNoUser
	}
	if err := json.Unmarshal([]byte(rawUser), &d.User); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	if d.User.ID == 0 {
		return nil, ErrNoUser
	}

	return &d, nil
}

// Sign подписывает поля ключом бота и возвращает строку данных запуска.
func Sign(fields map[string]string, botToken string) string {
	values := url.Values{}
	for k, v := range fields {
		if k == "hash" {
			continue
		}
		values.Set(k, v)
	}

	plain := make(map[string]string, len(fields))
	for k := range values {
		plain[k] = values.Get(k)
	}
	values.Set("hash", calcHash(checkString(plain), botToken))
	return values.Encode()
}

// SignUser собирает подписанные данные запуска для пользователя с текущим временем авторизации.
func SignUser(u User, botToken string, authDate time.Time) (string, error) {
	raw, err := json.Marshal(u)
	if err != nil {
		return "", fmt.Errorf("encode user: %w", err)
	}
	return Sign(map[string]string{
		"user":      string(raw),
		"auth_date": strconv.FormatInt(authDate.Unix(), 10),
	}, botToken), nil
}

func parse(initData string) (map[string]string, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, fmt.Errorf("parse init data: %w", err)
	}

	fields := make(map[string]string, len(values))
	for k, vs := range values {
		if len(vs) > 0 {
			fields[k] = vs[len(vs)-1]
		}
	}
	return fields, nil
}

func checkString(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+"="+fields[k])
	}
	return strings.Join(lines, "\n")
}

func calcHash(check, botToken string) string {
	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(check))
	return hex.EncodeToString(mac.Sum(nil))
}
