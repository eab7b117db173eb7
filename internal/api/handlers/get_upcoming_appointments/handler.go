package get_upcoming_appointments

import (
	"net/http"

	"github.com/m04kA/SMC-CarWashBooking/internal/api/handlers"
)

const (
	msgInvalidLimit = "некорректный limit"
)

type Handler struct {
	service AppointmentService
	logger  Logger
}

func NewHandler(service AppointmentService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/appointments/upcoming
// Query params: limit (опционально, по умолчанию 10)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	limit, err := handlers.QueryInt(r, "limit")
	if err != nil || (limit != nil && *limit <= 0) {
		h.logger.Warn("GET /appointments/upcoming - Invalid limit: %q", r.URL.Query().Get("limit"))
		handlers.RespondBadRequest(w, msgInvalidLimit)
		return
	}

	n := 0
	if limit != nil {
		n = *limit
	}

	result, err := h.service.Upcoming(r.Context(), n)
	if err != nil {
		h.logger.Error("GET /appointments/upcoming - Failed to get appointments: error=%v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /appointments/upcoming - Appointments retrieved successfully: count=%d", result.Total)
	handlers.RespondJSON(w, http.StatusOK, result)
}
