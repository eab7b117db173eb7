package get_available_slots

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-CarWashBooking/internal/api/handlers"
	getAvailableSlots "github.com/m04kA/SMC-CarWashBooking/internal/usecase/get_available_slots"
)

const (
	msgMissingDate        = "дата обязательна"
	msgInvalidDate        = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidServiceID   = "некорректный ID услуги"
	msgInvalidDuration    = "некорректная длительность услуги"
	msgServiceAndDuration = "укажите либо услугу, либо длительность"
	msgInvalidParams      = "некорректные параметры запроса"
	msgServiceNotFound    = "услуга не найдена"
	msgServiceInactive    = "услуга недоступна для записи"
	msgDateInPast         = "нельзя выбрать прошедшую дату"
	msgDateTooFar         = "дата слишком далеко в будущем"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/appointments/availability
// Query params: date (обязателен, YYYY-MM-DD), serviceId, duration (или service_duration), diagnostics
// serviceId и duration взаимоисключающие: длительность берется либо из услуги, либо из запроса
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if query.Get("date") == "" {
		h.logger.Warn("GET /appointments/availability - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	date, err := handlers.ParseDate(query.Get("date"))
	if err != nil {
		h.logger.Warn("GET /appointments/availability - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	useCaseReq := &getAvailableSlots.Request{Date: date}

	serviceID, err := handlers.QueryInt(r, "serviceId")
	if err != nil || (serviceID != nil && *serviceID <= 0) {
		h.logger.Warn("GET /appointments/availability - Invalid service ID: %q", query.Get("serviceId"))
		handlers.RespondBadRequest(w, msgInvalidServiceID)
		return
	}
	if serviceID != nil {
		id := int64(*serviceID)
		useCaseReq.ServiceID = &id
	}

	durationParam := "duration"
	if query.Get(durationParam) == "" {
		durationParam = "service_duration"
	}
	duration, err := handlers.QueryInt(r, durationParam)
	if err != nil {
		h.logger.Warn("GET /appointments/availability - Invalid duration: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDuration)
		return
	}
	if duration != nil && useCaseReq.ServiceID != nil {
		h.logger.Warn("GET /appointments/availability - Both serviceId and %s given", durationParam)
		handlers.RespondBadRequest(w, msgServiceAndDuration)
		return
	}
	useCaseReq.DurationMinutes = duration

	diagnostics, err := handlers.QueryBool(r, "diagnostics")
	if err != nil {
		h.logger.Warn("GET /appointments/availability - Invalid diagnostics flag: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}
	useCaseReq.Diagnostics = diagnostics != nil && *diagnostics

	// Вызываем use case
	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrServiceNotFound):
			h.logger.Warn("GET /appointments/availability - Service not found: service_id=%v", query.Get("serviceId"))
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, getAvailableSlots.ErrServiceInactive):
			h.logger.Warn("GET /appointments/availability - Service inactive: service_id=%v", query.Get("serviceId"))
			handlers.RespondBadRequest(w, msgServiceInactive)

		case errors.Is(err, getAvailableSlots.ErrDateInPast):
			h.logger.Warn("GET /appointments/availability - Date in past: date=%s", query.Get("date"))
			handlers.RespondBadRequest(w, msgDateInPast)

		case errors.Is(err, getAvailableSlots.ErrDateTooFarInFuture):
			h.logger.Warn("GET /appointments/availability - Date too far: date=%s", query.Get("date"))
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, getAvailableSlots.ErrInvalidInput):
			h.logger.Warn("GET /appointments/availability - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidDuration)

		default:
			h.logger.Error("GET /appointments/availability - Failed to get slots: date=%s, error=%v",
				query.Get("date"), err)
			handlers.RespondInternalError(w)
		}
		return
	}

	// Формируем HTTP ответ
	response := FromUseCaseResponse(result, useCaseReq.Diagnostics)

	h.logger.Info("GET /appointments/availability - Slots retrieved successfully: date=%s, duration=%d, slots_count=%d",
		query.Get("date"), result.DurationMinutes, response.Total)
	handlers.RespondJSON(w, http.StatusOK, response)
}
