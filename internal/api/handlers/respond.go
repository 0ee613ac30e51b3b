package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Problem тело ошибки в формате RFC 7807 (application/problem+json)
type Problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`

	// Контекст конфликта интервалов
	ResourceID string `json:"resource_id,omitempty"`
	StartAt    string `json:"start_at,omitempty"`
	EndAt      string `json:"end_at,omitempty"`
}

const problemTypePrefix = "https://tithi.dev/problems/"

// RespondJSON пишет успешный JSON-ответ
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// RespondProblem пишет ошибку в формате RFC 7807
func RespondProblem(w http.ResponseWriter, problem Problem) {
	if problem.Type == "" {
		problem.Type = problemTypePrefix + slugFromStatus(problem.Status)
	}
	if problem.Title == "" {
		problem.Title = http.StatusText(problem.Status)
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(problem.Status)
	_ = json.NewEncoder(w).Encode(problem)
}

// RespondError пишет ошибку с произвольным статусом
func RespondError(w http.ResponseWriter, status int, detail string) {
	RespondProblem(w, Problem{Status: status, Detail: detail})
}

// RespondBadRequest пишет ошибку 400
func RespondBadRequest(w http.ResponseWriter, detail string) {
	RespondError(w, http.StatusBadRequest, detail)
}

// RespondNotFound пишет ошибку 404
func RespondNotFound(w http.ResponseWriter, detail string) {
	RespondError(w, http.StatusNotFound, detail)
}

// RespondConflict пишет ошибку 409 с контекстом занятого интервала
func RespondConflict(w http.ResponseWriter, detail, resourceID, startAt, endAt string) {
	RespondProblem(w, Problem{
		Status:     http.StatusConflict,
		Detail:     detail,
		ResourceID: resourceID,
		StartAt:    startAt,
		EndAt:      endAt,
	})
}

// RespondUnprocessable пишет ошибку 422
func RespondUnprocessable(w http.ResponseWriter, detail string) {
	RespondError(w, http.StatusUnprocessableEntity, detail)
}

// RespondInternalError пишет ошибку 500 без деталей
func RespondInternalError(w http.ResponseWriter) {
	RespondError(w, http.StatusInternalServerError, "внутренняя ошибка сервиса")
}

// DecodeJSON декодирует тело запроса, отклоняя неизвестные поля
func DecodeJSON(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func slugFromStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad-request"
	case http.StatusNotFound:
		return "not-found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusUnprocessableEntity:
		return "unprocessable"
	case http.StatusPaymentRequired:
		return "payment-failed"
	case http.StatusServiceUnavailable:
		return "upstream-unavailable"
	default:
		return "internal"
	}
}
