package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/anshddoshi27/Tithi-sub002/internal/api/handlers"
	"github.com/anshddoshi27/Tithi-sub002/pkg/metrics"
)

type ctxKey int

const (
	tenantIDKey ctxKey = iota
	idempotencyKeyKey
)

// HeaderTenantID заголовок тенанта; значение непрозрачно для движка
// и резолвится вышестоящим шлюзом
const HeaderTenantID = "X-Tenant-ID"

// HeaderIdempotencyKey заголовок idempotency-токена мутирующих запросов
const HeaderIdempotencyKey = "Idempotency-Key"

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
}

// TenantFromContext возвращает идентификатор тенанта запроса
func TenantFromContext(ctx context.Context) string {
	tenantID, _ := ctx.Value(tenantIDKey).(string)
	return tenantID
}

// IdempotencyKeyFromContext возвращает idempotency-токен запроса
func IdempotencyKeyFromContext(ctx context.Context) string {
	key, _ := ctx.Value(idempotencyKeyKey).(string)
	return key
}

// RequireTenant требует заголовок X-Tenant-ID на каждом запросе
func RequireTenant(logger Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenantID := r.Header.Get(HeaderTenantID)
			if tenantID == "" {
				logger.Warn("%s %s - missing %s header", r.Method, r.URL.Path, HeaderTenantID)
				handlers.RespondBadRequest(w, "заголовок X-Tenant-ID обязателен")
				return
			}

			ctx := context.WithValue(r.Context(), tenantIDKey, tenantID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireIdempotencyKey требует заголовок Idempotency-Key.
// Вешается на мутирующие маршруты.
func RequireIdempotencyKey(logger Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(HeaderIdempotencyKey)
			if key == "" {
				logger.Warn("%s %s - missing %s header", r.Method, r.URL.Path, HeaderIdempotencyKey)
				handlers.RespondBadRequest(w, "заголовок Idempotency-Key обязателен")
				return
			}

			ctx := context.WithValue(r.Context(), idempotencyKeyKey, key)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// statusRecorder перехватывает статус ответа для метрик
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Metrics снимает метрики HTTP запросов по шаблону маршрута
func Metrics(m *metrics.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(recorder, r)

			path := r.URL.Path
			if route := mux.CurrentRoute(r); route != nil {
				if template, err := route.GetPathTemplate(); err == nil {
					path = template
				}
			}

			m.ObserveHTTPRequest(r.Method, path, recorder.status, time.Since(started))
		})
	}
}
