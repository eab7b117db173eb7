package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"github.com/m04kA/SMC-CarWashBooking/internal/api/handlers"
)

const (
	msgTooManyRequests = "слишком много запросов, попробуйте позже"

	maxTrackedClients = 10000
)

// RateLimitConfig параметры ограничения частоты запросов с одного IP
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
	TTL               time.Duration // сколько хранить лимитер неактивного клиента
}

// RateLimiter ограничивает частоту запросов по IP клиента
// Лимитеры живут в LRU с TTL, поэтому память не растет с числом уникальных адресов
type RateLimiter struct {
	cfg      RateLimitConfig
	limiters *expirable.LRU[string, *rate.Limiter]
	mu       sync.Mutex
	logger   Logger
}

func NewRateLimiter(cfg RateLimitConfig, logger Logger) *RateLimiter {
	return &RateLimiter{
		cfg:      cfg,
		limiters: expirable.NewLRU[string, *rate.Limiter](maxTrackedClients, nil, cfg.TTL),
		logger:   logger,
	}
}

// Middleware отвечает 429, когда клиент исчерпал лимит
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !rl.limiter(ip).Allow() {
			rl.logger.Warn("Rate limit exceeded: ip=%s, path=%s", ip, r.URL.Path)
			handlers.RespondTooManyRequests(w, msgTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) limiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if limiter, ok := rl.limiters.Get(ip); ok {
		return limiter
	}

	limiter := rate.NewLimiter(rate.Limit(rl.cfg.RequestsPerSecond), rl.cfg.Burst)
	rl.limiters.Add(ip, limiter)
	return limiter
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if ips[0] != "" {
			return strings.TrimSpace(ips[0])
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
