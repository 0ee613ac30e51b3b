package catalogservice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// Client клиент для работы с каталогом ресурсов и услуг
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента каталога
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// GetResource получает ресурс по ID. Неактивный ресурс считается не найденным:
// движку расписания нечего планировать на выключенном ресурсе.
func (c *Client) GetResource(ctx context.Context, tenantID string, resourceID uuid.UUID) (*Resource, error) {
	url := fmt.Sprintf("%s/internal/resources/%s", c.baseURL, resourceID)

	var resource Resource
	if err := c.getJSON(ctx, tenantID, url, &resource, ErrResourceNotFound); err != nil {
		return nil, err
	}

	if !resource.Active {
		return nil, ErrResourceNotFound
	}

	return &resource, nil
}

// GetService получает услугу по ID для снапшота в бронировании
func (c *Client) GetService(ctx context.Context, tenantID string, serviceID uuid.UUID) (*Service, error) {
	url := fmt.Sprintf("%s/internal/services/%s", c.baseURL, serviceID)

	var service Service
	if err := c.getJSON(ctx, tenantID, url, &service, ErrServiceNotFound); err != nil {
		return nil, err
	}

	if !service.Active {
		return nil, ErrServiceNotFound
	}

	return &service, nil
}

func (c *Client) getJSON(ctx context.Context, tenantID, url string, dst interface{}, notFound error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", tenantID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	// Обработка статус-кодов
	switch resp.StatusCode {
	case http.StatusOK:
		// Продолжаем обработку
	case http.StatusNotFound:
		return notFound
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return nil
}
