package list_appointments

import (
	"net/http"

	"github.com/m04kA/SMC-CarWashBooking/internal/api/handlers"
	"github.com/m04kA/SMC-CarWashBooking/internal/service/appointments/models"
)

// ToServiceRequest собирает фильтр из query параметров
func ToServiceRequest(r *http.Request) (*models.ListRequest, error) {
	req := &models.ListRequest{}

	var err error
	if req.Date, err = handlers.QueryDate(r, "date"); err != nil {
		return nil, err
	}
	if req.StartDate, err = handlers.QueryDate(r, "startDate"); err != nil {
		return nil, err
	}
	if req.EndDate, err = handlers.QueryDate(r, "endDate"); err != nil {
		return nil, err
	}

	if status := r.URL.Query().Get("status"); status != "" {
		req.Status = &status
	}

	return req, nil
}
