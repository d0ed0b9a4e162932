package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/iudanet/inkpage/internal/validation"
	"github.com/iudanet/inkpage/pkg/api"
)

// ErrHistoryTruncated сервер удалил события после since: нужно заново
// прочитать снимок страницы и продолжать с его NextUpdate
var ErrHistoryTruncated = errors.New("page history truncated")

// StatusError ответ сервера с неожиданным статусом
type StatusError struct {
	Message string
	Code    int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.Code, e.Message)
}

// DefaultTimeout таймаут обычных запросов
const DefaultTimeout = 30 * time.Second

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient *http.Client
	baseURL    string
	timeout    time.Duration
}

// Option настраивает Client
type Option func(*Client)

// WithTimeout задает таймаут обычных запросов. Long-poll запросы им не
// ограничены: сервер держит их до -poll-timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// NewClient создает новый API клиент
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		timeout: DefaultTimeout,
		httpClient: &http.Client{
			// Таймауты задаются через контекст запроса
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Ограничиваем количество редиректов
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				return nil
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot получает текущее состояние страницы
func (c *Client) Snapshot(ctx context.Context, page string) (*api.SnapshotResponse, error) {
	path, err := pagePath(page, "")
	if err != nil {
		return nil, err
	}

	var resp api.SnapshotResponse
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("snapshot request failed: %w", err)
	}
	return &resp, nil
}

// AddShape добавляет фигуру на страницу. Дубликат не считается ошибкой:
// resp.Status будет "duplicate".
func (c *Client) AddShape(ctx context.Context, page string, req api.ShapeRequest) (*api.ShapeResponse, error) {
	path, err := pagePath(page, "/shapes")
	if err != nil {
		return nil, err
	}

	var resp api.ShapeResponse
	if err := c.doRequest(ctx, http.MethodPost, path, req, &resp, http.StatusConflict); err != nil {
		return nil, fmt.Errorf("add shape request failed: %w", err)
	}
	return &resp, nil
}

// DeleteShape удаляет фигуру со страницы. Отсутствие фигуры не считается
// ошибкой: resp.Status будет "not_found".
func (c *Client) DeleteShape(ctx context.Context, page string, req api.ShapeRequest) (*api.ShapeResponse, error) {
	path, err := pagePath(page, "/shapes")
	if err != nil {
		return nil, err
	}

	var resp api.ShapeResponse
	if err := c.doRequest(ctx, http.MethodDelete, path, req, &resp, http.StatusNotFound); err != nil {
		return nil, fmt.Errorf("delete shape request failed: %w", err)
	}
	return &resp, nil
}

// Fade уменьшает прозрачность всех фигур страницы
func (c *Client) Fade(ctx context.Context, page string, req api.FadeRequest) error {
	path, err := pagePath(page, "/fade")
	if err != nil {
		return err
	}

	if err := c.doRequest(ctx, http.MethodPost, path, req, nil); err != nil {
		return fmt.Errorf("fade request failed: %w", err)
	}
	return nil
}

// Updates выполняет один long-poll запрос обновлений страницы
func (c *Client) Updates(ctx context.Context, page string, since int64) (*api.UpdatesResponse, error) {
	path, err := pagePath(page, "/updates")
	if err != nil {
		return nil, err
	}
	path += "?since=" + strconv.FormatInt(since, 10)

	var resp api.UpdatesResponse
	if err := c.send(ctx, http.MethodGet, path, nil, &resp); err != nil {
		if IsStatus(err, http.StatusGone) {
			return nil, fmt.Errorf("%w: %w", ErrHistoryTruncated, err)
		}
		return nil, fmt.Errorf("updates request failed: %w", err)
	}
	return &resp, nil
}

// Watch повторяет long-poll запросы начиная с since и вызывает fn для
// каждого события, пока ctx не отменен или fn не вернет ошибку.
// Heartbeat'ы (пустые ответы) пропускаются. Если история обрезана,
// возвращается ErrHistoryTruncated.
func (c *Client) Watch(ctx context.Context, page string, since int64, fn func(api.Event) error) error {
	for {
		resp, err := c.Updates(ctx, page, since)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		for _, event := range resp.Events {
			if err := fn(event); err != nil {
				return err
			}
		}
		since = resp.Watermark
	}
}

// pagePath собирает путь API страницы. Ключ проверяется до отправки запроса.
func pagePath(page, suffix string) (string, error) {
	if err := validation.ValidatePageKey(page); err != nil {
		return "", err
	}
	return "/api/v1/pages/" + page + suffix, nil
}

// doRequest выполняет HTTP запрос с таймаутом клиента
func (c *Client) doRequest(ctx context.Context, method, path string, body, result interface{}, accept ...int) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.send(ctx, method, path, body, result, accept...)
}

// send выполняет HTTP запрос. Статусы 2xx и перечисленные в accept
// декодируются в result, остальные возвращаются как *StatusError.
func (c *Client) send(ctx context.Context, method, path string, body, result interface{}, accept ...int) error {
	target := strings.TrimSuffix(c.baseURL, "/") + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if !accepted(resp.StatusCode, accept) {
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			return &StatusError{Code: resp.StatusCode, Message: errResp.Error}
		}
		return &StatusError{Code: resp.StatusCode, Message: string(respBody)}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

func accepted(code int, extra []int) bool {
	if code >= 200 && code < 300 {
		return true
	}
	for _, c := range extra {
		if c == code {
			return true
		}
	}
	return false
}

// IsStatus сообщает, что err это ответ сервера с кодом code
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}
