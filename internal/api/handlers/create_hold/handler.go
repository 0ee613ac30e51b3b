package create_hold

import (
	"errors"
	"net/http"
	"time"

	"github.com/anshddoshi27/Tithi-sub002/internal/api/handlers"
	"github.com/anshddoshi27/Tithi-sub002/internal/api/middleware"
	createHold "github.com/anshddoshi27/Tithi-sub002/internal/usecase/create_hold"
)

const (
	msgInvalidBody      = "некорректное тело запроса"
	msgResourceNotFound = "ресурс не найден"
	msgConflict         = "интервал уже занят"
	msgInvalidInterval  = "некорректный интервал холда"
)

type Handler struct {
	useCase CreateHoldUseCase
	logger  Logger
}

func NewHandler(useCase CreateHoldUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/holds
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var httpReq CreateHoldRequest
	if err := handlers.DecodeJSON(r, &httpReq); err != nil {
		h.logger.Warn("POST /holds - decode failed: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBody)
		return
	}

	req, err := httpReq.ToUseCaseRequest(middleware.TenantFromContext(r.Context()))
	if err != nil {
		h.logger.Warn("POST /holds - invalid request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, createHold.ErrResourceNotFound):
			handlers.RespondNotFound(w, msgResourceNotFound)
		case errors.Is(err, createHold.ErrConflict):
			handlers.RespondConflict(w, msgConflict,
				req.ResourceID.String(),
				req.StartAt.Format(time.RFC3339),
				req.EndAt.Format(time.RFC3339))
		case errors.Is(err, createHold.ErrInvalidInterval):
			handlers.RespondBadRequest(w, msgInvalidInterval)
		case errors.Is(err, createHold.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidBody)
		default:
			h.logger.Error("POST /holds - failed: resource_id=%s, error=%v", req.ResourceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /holds - created: hold_id=%s, resource_id=%s", result.HoldID, req.ResourceID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
