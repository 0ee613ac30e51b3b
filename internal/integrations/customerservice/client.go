package customerservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// Client клиент для работы с customer service
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента customer service
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// GetCustomer получает клиента по идентификатору
func (c *Client) GetCustomer(ctx context.Context, tenantID, customerID string) (*Customer, error) {
	url := fmt.Sprintf("%s/internal/customers/%s", c.baseURL, customerID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", tenantID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Продолжаем обработку
	case http.StatusNotFound:
		return nil, ErrCustomerNotFound
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	var customer Customer
	if err := json.NewDecoder(resp.Body).Decode(&customer); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	if customer.Blocked {
		return nil, ErrCustomerBlocked
	}

	return &customer, nil
}

// VerifyCustomerWithGracefulDegradation проверяет клиента с graceful degradation.
// При недоступности customer service возвращает ErrServiceDegraded: бронирование
// важнее проверки, блокировку доработает тенант вручную.
func (c *Client) VerifyCustomerWithGracefulDegradation(ctx context.Context, tenantID, customerID string) error {
	_, err := c.GetCustomer(ctx, tenantID, customerID)
	if err == nil {
		return nil
	}

	// Бизнес-ошибки пробрасываем дальше
	if errors.Is(err, ErrCustomerNotFound) || errors.Is(err, ErrCustomerBlocked) {
		return err
	}

	c.log.Error("CustomerService unavailable, applying graceful degradation for customer_id=%s: %v", customerID, err)
	return fmt.Errorf("%w: customer_id=%s, error=%v", ErrServiceDegraded, customerID, err)
}
