package get_availability

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/anshddoshi27/Tithi-sub002/internal/api/handlers"
	"github.com/anshddoshi27/Tithi-sub002/internal/api/middleware"
	computeAvailability "github.com/anshddoshi27/Tithi-sub002/internal/usecase/compute_availability"
)

const (
	msgInvalidResourceID = "некорректный идентификатор ресурса"
	msgInvalidQuery      = "некорректные параметры запроса"
	msgResourceNotFound  = "ресурс не найден"
	msgServiceNotFound   = "услуга не найдена"
	msgInvalidRange      = "некорректный период запроса"
	msgRangeTooWide      = "период запроса слишком широкий"
	msgInvalidTimezone   = "некорректная зона отображения"
)

type Handler struct {
	useCase ComputeAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase ComputeAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/resources/{resourceId}/availability
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	resourceID, err := uuid.Parse(mux.Vars(r)["resourceId"])
	if err != nil {
		h.logger.Warn("GET /availability - invalid resource id: %v", err)
		handlers.RespondBadRequest(w, msgInvalidResourceID)
		return
	}

	tenantID := middleware.TenantFromContext(r.Context())

	req, err := parseQuery(tenantID, resourceID, r.URL.Query())
	if err != nil {
		h.logger.Warn("GET /availability - invalid query: %v", err)
		handlers.RespondBadRequest(w, msgInvalidQuery)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, computeAvailability.ErrResourceNotFound):
			handlers.RespondNotFound(w, msgResourceNotFound)
		case errors.Is(err, computeAvailability.ErrServiceNotFound):
			handlers.RespondNotFound(w, msgServiceNotFound)
		case errors.Is(err, computeAvailability.ErrInvalidRange):
			handlers.RespondBadRequest(w, msgInvalidRange)
		case errors.Is(err, computeAvailability.ErrRangeTooWide):
			handlers.RespondBadRequest(w, msgRangeTooWide)
		case errors.Is(err, computeAvailability.ErrInvalidTimezone):
			handlers.RespondBadRequest(w, msgInvalidTimezone)
		case errors.Is(err, computeAvailability.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidQuery)
		default:
			h.logger.Error("GET /availability - failed: resource_id=%s, error=%v", resourceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, fromUseCaseResponse(result))
}
