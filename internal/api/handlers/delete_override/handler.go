package delete_override

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-CarWashBooking/internal/api/handlers"
	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
	"github.com/m04kA/SMC-CarWashBooking/internal/service/schedule"
)

const (
	msgInvalidDate = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgNotFound    = "исключение на эту дату не найдено"
)

type Handler struct {
	service ScheduleService
	logger  Logger
}

func NewHandler(service ScheduleService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle DELETE /api/v1/schedule/overrides/{date}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	date, err := handlers.PathDate(r, "date")
	if err != nil {
		h.logger.Warn("DELETE /schedule/overrides/{date} - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	if err := h.service.DeleteOverride(r.Context(), date); err != nil {
		if errors.Is(err, schedule.ErrOverrideNotFound) {
			h.logger.Warn("DELETE /schedule/overrides/{date} - Override not found: date=%s", date.Format(domain.DateFormat))
			handlers.RespondNotFound(w, msgNotFound)
			return
		}

		h.logger.Error("DELETE /schedule/overrides/{date} - Failed to delete override: date=%s, error=%v",
			date.Format(domain.DateFormat), err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("DELETE /schedule/overrides/{date} - Override deleted: date=%s", date.Format(domain.DateFormat))
	handlers.RespondJSON(w, http.StatusNoContent, nil)
}
