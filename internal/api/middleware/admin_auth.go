package middleware

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/m04kA/SMC-CarWashBooking/internal/api/handlers"
)

const (
	msgUnauthorized = "требуется токен администратора"
	msgInvalidToken = "неверный токен администратора"

	bearerPrefix = "Bearer "
)

// AdminAuth пропускает запрос только с заголовком Authorization: Bearer <token>,
// где bcrypt-хэш токена совпадает с tokenHash. При пустом tokenHash админские маршруты закрыты
func AdminAuth(tokenHash string, logger Logger) func(http.Handler) http.Handler {
	hash := []byte(tokenHash)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, bearerPrefix) {
				logger.Warn("%s %s - Missing admin token", r.Method, r.URL.Path)
				handlers.RespondUnauthorized(w, msgUnauthorized)
				return
			}

			token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
			if token == "" || len(hash) == 0 {
				logger.Warn("%s %s - Empty admin token or hash not configured", r.Method, r.URL.Path)
				handlers.RespondUnauthorized(w, msgInvalidToken)
				return
			}

			if err := bcrypt.CompareHashAndPassword(hash, []byte(token)); err != nil {
				logger.Warn("%s %s - Invalid admin token: request_id=%s", r.Method, r.URL.Path, GetRequestID(r.Context()))
				handlers.RespondUnauthorized(w, msgInvalidToken)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
