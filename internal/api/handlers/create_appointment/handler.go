package create_appointment

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/SMC-CarWashBooking/internal/api/handlers"
	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
	createAppointment "github.com/m04kA/SMC-CarWashBooking/internal/usecase/create_appointment"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidStart       = "некорректное время начала, ожидается startTime в формате RFC3339 или date (YYYY-MM-DD) и time (HH:MM)"
	msgInvalidData        = "некорректные данные записи"
	msgServiceNotFound    = "услуга не найдена"
	msgServiceInactive    = "услуга недоступна для записи"
	msgDateInPast         = "нельзя записаться на прошедшую дату"
	msgDateTooFar         = "дата записи слишком далеко в будущем"
	msgInvalidTimeSlot    = "выбранное время не совпадает ни с одним слотом"
	msgTooLateToBook      = "слишком поздно для записи на этот слот"
	msgSlotNotAvailable   = "выбранный временной слот недоступен"
	msgSlotTaken          = "это время только что заняли, выберите другое"
	msgSlotBusy           = "на эту дату сейчас оформляется другая запись, попробуйте еще раз"
)

type Handler struct {
	useCase CreateAppointmentUseCase
	loc     *time.Location
	channel string
	logger  Logger
}

// NewHandler channel - createAppointment.ChannelPublic или ChannelAdmin
func NewHandler(useCase CreateAppointmentUseCase, loc *time.Location, channel string, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		loc:     loc,
		channel: channel,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments/public и POST /api/v1/appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	route := "POST /appointments"
	if h.channel == createAppointment.ChannelPublic {
		route = "POST /appointments/public"
	}

	var req CreateAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("%s - Invalid request body: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Конвертируем HTTP запрос в модель use case (с переводом момента в часовой пояс мойки)
	useCaseReq, err := req.ToUseCaseRequest(h.loc, h.channel)
	if err != nil {
		h.logger.Warn("%s - Failed to parse start: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidStart)
		return
	}

	// Вызываем use case
	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createAppointment.ErrInvalidInput):
			h.logger.Warn("%s - Invalid data: %v", route, err)
			handlers.RespondBadRequest(w, msgInvalidData)

		case errors.Is(err, createAppointment.ErrServiceNotFound):
			h.logger.Warn("%s - Service not found: service_id=%d", route, req.ServiceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, createAppointment.ErrServiceInactive):
			h.logger.Warn("%s - Service inactive: service_id=%d", route, req.ServiceID)
			handlers.RespondBadRequest(w, msgServiceInactive)

		case errors.Is(err, createAppointment.ErrDateInPast):
			h.logger.Warn("%s - Date in past: date=%s", route, useCaseReq.Date.Format(domain.DateFormat))
			handlers.RespondBadRequest(w, msgDateInPast)

		case errors.Is(err, createAppointment.ErrDateTooFarInFuture):
			h.logger.Warn("%s - Date too far in future: date=%s", route, useCaseReq.Date.Format(domain.DateFormat))
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, createAppointment.ErrInvalidTimeSlot):
			h.logger.Warn("%s - Invalid time slot: start=%s", route, useCaseReq.StartTime)
			handlers.RespondBadRequest(w, msgInvalidTimeSlot)

		case errors.Is(err, createAppointment.ErrTooLateToBook):
			h.logger.Warn("%s - Too late to book: start=%s", route, useCaseReq.StartTime)
			handlers.RespondBadRequest(w, msgTooLateToBook)

		case errors.Is(err, createAppointment.ErrSlotNotAvailable):
			h.logger.Warn("%s - Slot not available: start=%s", route, useCaseReq.StartTime)
			handlers.RespondConflict(w, msgSlotNotAvailable)

		case errors.Is(err, createAppointment.ErrSlotTaken):
			h.logger.Warn("%s - Slot just taken: start=%s", route, useCaseReq.StartTime)
			handlers.RespondConflict(w, msgSlotTaken)

		case errors.Is(err, createAppointment.ErrSlotBusy):
			h.logger.Warn("%s - Date locked by another booking: date=%s", route, useCaseReq.Date.Format(domain.DateFormat))
			handlers.RespondConflict(w, msgSlotBusy)

		default:
			h.logger.Error("%s - Failed to create appointment: service_id=%d, error=%v", route, req.ServiceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	// Формируем HTTP ответ
	response := FromUseCaseResponse(result, h.loc)

	h.logger.Info("%s - Appointment created successfully: appointment_id=%d, start=%s",
		route, result.ID, response.StartTime.Format(time.RFC3339))
	handlers.RespondJSON(w, http.StatusCreated, response)
}
