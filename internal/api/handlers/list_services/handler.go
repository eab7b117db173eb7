package list_services

import (
	"net/http"

	"github.com/m04kA/SMC-CarWashBooking/internal/api/handlers"
)

const (
	msgInvalidActive = "некорректный параметр active"
)

type Handler struct {
	service CatalogService
	public  bool
	logger  Logger
}

// NewHandler public = true для витрины: отдаются только включенные услуги, параметр active игнорируется
func NewHandler(service CatalogService, public bool, logger Logger) *Handler {
	return &Handler{
		service: service,
		public:  public,
		logger:  logger,
	}
}

// Handle GET /api/v1/services/public и GET /api/v1/services?active=
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	onlyActive := h.public
	if !h.public {
		active, err := handlers.QueryBool(r, "active")
		if err != nil {
			h.logger.Warn("GET /services - Invalid active flag: %v", err)
			handlers.RespondBadRequest(w, msgInvalidActive)
			return
		}
		onlyActive = active != nil && *active
	}

	result, err := h.service.List(r.Context(), onlyActive)
	if err != nil {
		h.logger.Error("GET /services - Failed to list services: error=%v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /services - Services retrieved successfully: count=%d, only_active=%t", len(result.Services), onlyActive)
	handlers.RespondJSON(w, http.StatusOK, result)
}
