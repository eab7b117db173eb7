package health

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/m04kA/SMC-CarWashBooking/internal/api/handlers"
)

const (
	statusOK   = "ok"
	statusFail = "unavailable"

	checkTimeout = 2 * time.Second
)

// Response ответ проверки состояния
type Response struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

type Handler struct {
	checks map[string]Check
	logger Logger
}

func NewHandler(checks map[string]Check, logger Logger) *Handler {
	return &Handler{
		checks: checks,
		logger: logger,
	}
}

// Live GET /api/v1/health/live
// Процесс жив и отвечает, зависимости не проверяются
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, Response{Status: statusOK})
}

// Ready GET /api/v1/health/ready
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := Response{Status: statusOK, Checks: make(map[string]string, len(names))}
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			h.logger.Warn("GET /health/ready - %s check failed: %v", name, err)
			resp.Checks[name] = statusFail
			resp.Status = statusFail
			continue
		}
		resp.Checks[name] = statusOK
	}

	if resp.Status != statusOK {
		handlers.RespondJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, resp)
}
