package paymentprocessor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	circuit "github.com/rubyist/circuitbreaker"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// Client клиент карточного процессинга. Все мутирующие вызовы несут
// Idempotency-Key: повтор с тем же ключом на стороне провайдера
// возвращает результат первой попытки, а не вторую операцию.
type Client struct {
	baseURL    string
	httpClient *circuit.HTTPClient
	maxRetries int
	log        Logger
}

// NewClient создает новый экземпляр клиента процессинга.
// threshold - число последовательных ошибок до размыкания circuit breaker'а.
func NewClient(baseURL string, timeout time.Duration, threshold int64, maxRetries int, log Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: circuit.NewHTTPClient(timeout, threshold, nil),
		maxRetries: maxRetries,
		log:        log,
	}
}

// Authorize авторизует сумму на карте клиента без списания
func (c *Client) Authorize(ctx context.Context, tenantID string, amount int64, idempotencyKey string) (*ChargeResult, error) {
	body := chargeRequest{TenantID: tenantID, Amount: amount, Description: "booking authorization"}
	return c.post(ctx, "/v1/authorizations", body, idempotencyKey)
}

// Capture списывает ранее авторизованную сумму.
// applicationFee - доля платформы, удерживается провайдером из суммы.
func (c *Client) Capture(ctx context.Context, tenantID string, authRef string, amount, applicationFee int64, idempotencyKey string) (*ChargeResult, error) {
	body := chargeRequest{TenantID: tenantID, Amount: amount, ApplicationFee: applicationFee}
	path := fmt.Sprintf("/v1/authorizations/%s/capture", authRef)
	return c.post(ctx, path, body, idempotencyKey)
}

// ChargeFee списывает отдельную комиссию (no-show, отмена) мимо авторизации
func (c *Client) ChargeFee(ctx context.Context, tenantID string, amount int64, description, idempotencyKey string) (*ChargeResult, error) {
	body := chargeRequest{TenantID: tenantID, Amount: amount, Description: description}
	return c.post(ctx, "/v1/charges", body, idempotencyKey)
}

// Refund возвращает часть или всю сумму ранее захваченного платежа
func (c *Client) Refund(ctx context.Context, tenantID string, chargeRef string, amount int64, idempotencyKey string) (*ChargeResult, error) {
	body := refundRequest{TenantID: tenantID, ChargeRef: chargeRef, Amount: amount}
	return c.post(ctx, "/v1/refunds", body, idempotencyKey)
}

// post выполняет запрос с ограниченным числом повторов.
// 429/503 с Retry-After повторяются после указанной паузы; терминальный
// отказ (402) не повторяется никогда. Исчерпание повторов - транзиентная
// ошибка ErrProcessorUnavailable, вызывающий решает судьбу платежа сам.
func (c *Client) post(ctx context.Context, path string, body interface{}, idempotencyKey string) (*ChargeResult, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal request: %v", ErrInternal, err)
	}

	url := c.baseURL + path

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", idempotencyKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			c.log.Warn("paymentprocessor: attempt %d failed for %s: %v", attempt+1, path, err)
			continue
		}

		result, retryAfter, err := c.handleResponse(resp)
		if err == nil {
			return result, nil
		}
		if retryAfter < 0 {
			// Терминальная ошибка, повторять нельзя
			return nil, err
		}

		lastErr = err
		c.log.Warn("paymentprocessor: attempt %d got transient error for %s: %v", attempt+1, path, err)

		if attempt < c.maxRetries && retryAfter > 0 {
			select {
			case <-time.After(retryAfter):
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: context canceled during retry wait: %v", ErrProcessorUnavailable, ctx.Err())
			}
		}
	}

	return nil, fmt.Errorf("%w: retries exhausted: %v", ErrProcessorUnavailable, lastErr)
}

// handleResponse разбирает ответ процессинга.
// Возвращаемая пауза: -1 - не повторять, 0 - повторить сразу, >0 - подождать.
func (c *Client) handleResponse(resp *http.Response) (*ChargeResult, time.Duration, error) {
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		var result ChargeResult
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return nil, -1, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
		}
		if result.Status == StatusFailed {
			return nil, -1, fmt.Errorf("%w: provider_ref=%s", ErrPaymentDeclined, result.ProviderRef)
		}
		return &result, 0, nil

	case http.StatusPaymentRequired:
		body, _ := io.ReadAll(resp.Body)
		return nil, -1, fmt.Errorf("%w: %s", ErrPaymentDeclined, string(body))

	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return nil, parseRetryAfter(resp.Header.Get("Retry-After")), fmt.Errorf("%w: status %d", ErrProcessorUnavailable, resp.StatusCode)

	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, -1, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return time.Second
	}

	if seconds, err := strconv.Atoi(header); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}

	if at, err := http.ParseTime(header); err == nil {
		if wait := time.Until(at); wait > 0 {
			return wait
		}
	}

	return time.Second
}
