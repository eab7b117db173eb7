package update_business_hours

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-CarWashBooking/internal/api/handlers"
	"github.com/m04kA/SMC-CarWashBooking/internal/service/schedule"
	"github.com/m04kA/SMC-CarWashBooking/internal/service/schedule/models"
)

const (
	msgInvalidDay         = "некорректный день недели, ожидается число от 0 (воскресенье) до 6 (суббота)"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidData        = "некорректные рабочие часы: время открытия должно быть раньше времени закрытия"
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

// Handle PUT /api/v1/schedule/business-hours/{day}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем день недели из URL
	vars := mux.Vars(r)
	dayStr := vars["day"]

	day, err := strconv.Atoi(dayStr)
	if err != nil {
		h.logger.Warn("PUT /schedule/business-hours/{day} - Invalid day: %q", dayStr)
		handlers.RespondBadRequest(w, msgInvalidDay)
		return
	}

	// Декодируем body
	var req models.BusinessHoursRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /schedule/business-hours/{day} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.UpdateBusinessHours(r.Context(), day, &req)
	if err != nil {
		if errors.Is(err, schedule.ErrInvalidInput) {
			h.logger.Warn("PUT /schedule/business-hours/{day} - Invalid data: day=%d, error=%v", day, err)
			handlers.RespondBadRequest(w, msgInvalidData)
			return
		}

		h.logger.Error("PUT /schedule/business-hours/{day} - Failed to update business hours: day=%d, error=%v", day, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("PUT /schedule/business-hours/{day} - Business hours updated: day=%d, is_open=%t", day, result.IsOpen)
	handlers.RespondJSON(w, http.StatusOK, result)
}
