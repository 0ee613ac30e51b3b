package manage_rules

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/anshddoshi27/Tithi-sub002/internal/api/handlers"
	"github.com/anshddoshi27/Tithi-sub002/internal/api/middleware"
	"github.com/anshddoshi27/Tithi-sub002/internal/domain"
	"github.com/anshddoshi27/Tithi-sub002/internal/service/rules"
)

const (
	msgInvalidBody       = "некорректное тело запроса"
	msgInvalidResourceID = "некорректный идентификатор ресурса"
	msgInvalidRuleID     = "некорректный идентификатор правила"
	msgRuleNotFound      = "правило не найдено"
	msgInvalidRule       = "правило нарушает инварианты"
	msgInvalidWeek       = "некорректные границы недели"
)

type Handler struct {
	service RulesService
	logger  Logger
}

func NewHandler(service RulesService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// HandleCreate POST /api/v1/resources/{resourceId}/rules
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	resourceID := mux.Vars(r)["resourceId"]

	var httpReq CreateRuleRequest
	if err := handlers.DecodeJSON(r, &httpReq); err != nil {
		h.logger.Warn("POST /rules - decode failed: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBody)
		return
	}
	httpReq.ResourceID = resourceID

	rule, err := httpReq.ToDomainRule(middleware.TenantFromContext(r.Context()))
	if err != nil {
		h.logger.Warn("POST /rules - invalid request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBody)
		return
	}

	created, err := h.service.Create(r.Context(), rule)
	if err != nil {
		switch {
		case errors.Is(err, rules.ErrInvalidRule):
			handlers.RespondUnprocessable(w, msgInvalidRule)
		case errors.Is(err, rules.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidBody)
		default:
			h.logger.Error("POST /rules - failed: resource_id=%s, error=%v", resourceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, FromDomainRule(created))
}

// HandleList GET /api/v1/resources/{resourceId}/rules
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	resourceID, err := uuid.Parse(mux.Vars(r)["resourceId"])
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidResourceID)
		return
	}

	result, err := h.service.ListByResource(r.Context(), middleware.TenantFromContext(r.Context()), resourceID)
	if err != nil {
		h.logger.Error("GET /rules - failed: resource_id=%s, error=%v", resourceID, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromDomainRuleList(result))
}

// HandleDeactivate PATCH /api/v1/rules/{ruleId}/deactivate
func (h *Handler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	ruleID, err := uuid.Parse(mux.Vars(r)["ruleId"])
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidRuleID)
		return
	}

	err = h.service.Deactivate(r.Context(), middleware.TenantFromContext(r.Context()), ruleID)
	if err != nil {
		switch {
		case errors.Is(err, rules.ErrRuleNotFound):
			handlers.RespondNotFound(w, msgRuleNotFound)
		default:
			h.logger.Error("PATCH /rules/{id}/deactivate - failed: rule_id=%s, error=%v", ruleID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusNoContent, nil)
}

// HandleCopyWeek POST /api/v1/resources/{resourceId}/rules/copy-week
func (h *Handler) HandleCopyWeek(w http.ResponseWriter, r *http.Request) {
	resourceID, err := uuid.Parse(mux.Vars(r)["resourceId"])
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidResourceID)
		return
	}

	var httpReq CopyWeekRequest
	if err := handlers.DecodeJSON(r, &httpReq); err != nil {
		h.logger.Warn("POST /rules/copy-week - decode failed: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBody)
		return
	}

	sourceWeekStart, err := time.Parse(domain.DateFormat, httpReq.SourceWeekStart)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidWeek)
		return
	}
	targetWeekStart, err := time.Parse(domain.DateFormat, httpReq.TargetWeekStart)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidWeek)
		return
	}

	created, err := h.service.CopyWeek(r.Context(), middleware.TenantFromContext(r.Context()),
		resourceID, sourceWeekStart, targetWeekStart)
	if err != nil {
		switch {
		case errors.Is(err, rules.ErrInvalidWeek):
			handlers.RespondBadRequest(w, msgInvalidWeek)
		default:
			h.logger.Error("POST /rules/copy-week - failed: resource_id=%s, error=%v", resourceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, FromDomainRuleList(created))
}
