package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор prometheus-метрик сервиса
type Metrics struct {
	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// База данных
	DBQueryDuration    *prometheus.HistogramVec
	DBQueryErrors      *prometheus.CounterVec
	DBOpenConnections  *prometheus.GaugeVec
	DBInUseConnections *prometheus.GaugeVec
	DBIdleConnections  *prometheus.GaugeVec
	DBWaitCount        *prometheus.GaugeVec

	// Доменные
	SlotsComputed       *prometheus.HistogramVec
	AppointmentsCreated *prometheus.CounterVec
	BookingConflicts    *prometheus.CounterVec
}

// New регистрирует метрики в глобальном реестре prometheus
func New(serviceName string) *Metrics {
	return newWithRegisterer(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegistry используется в тестах, чтобы не конфликтовать с глобальным реестром
func NewWithRegistry(serviceName string, reg prometheus.Registerer) *Metrics {
	return newWithRegisterer(serviceName, reg)
}

func newWithRegisterer(serviceName string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	constLabels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),

		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		}, []string{"method", "route"}),

		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query latency",
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			ConstLabels: constLabels,
		}, []string{"operation"}),

		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_query_errors_total",
			Help:        "Database query errors",
			ConstLabels: constLabels,
		}, []string{"operation"}),

		DBOpenConnections: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Open connections in the pool",
			ConstLabels: constLabels,
		}, []string{"db"}),

		DBInUseConnections: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_in_use_connections",
			Help:        "Connections currently in use",
			ConstLabels: constLabels,
		}, []string{"db"}),

		DBIdleConnections: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_idle_connections",
			Help:        "Idle connections in the pool",
			ConstLabels: constLabels,
		}, []string{"db"}),

		DBWaitCount: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_wait_count",
			Help:        "Total number of connections waited for",
			ConstLabels: constLabels,
		}, []string{"db"}),

		SlotsComputed: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "availability_slots_returned",
			Help:        "Number of slots returned per availability request",
			Buckets:     []float64{0, 1, 2, 4, 8, 12, 16, 20, 30},
			ConstLabels: constLabels,
		}, []string{"mode"}),

		AppointmentsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "appointments_created_total",
			Help:        "Appointments successfully created",
			ConstLabels: constLabels,
		}, []string{"channel"}),

		BookingConflicts: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "booking_conflicts_total",
			Help:        "Booking attempts rejected because the slot was taken",
			ConstLabels: constLabels,
		}, []string{"stage"}),
	}
}

// ObserveHTTPRequest фиксирует запрос; route - шаблон маршрута mux, а не фактический путь
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveSlots фиксирует размер выдачи слотов
func (m *Metrics) ObserveSlots(mode string, count int) {
	m.SlotsComputed.WithLabelValues(mode).Observe(float64(count))
}

// IncAppointmentsCreated увеличивает счётчик созданных записей
func (m *Metrics) IncAppointmentsCreated(channel string) {
	m.AppointmentsCreated.WithLabelValues(channel).Inc()
}

// IncBookingConflict фиксирует отказ из-за занятого слота.
// stage: "advisory" (проверка движка), "lock" (redis) или "store" (constraint или конфликт сериализации в БД)
func (m *Metrics) IncBookingConflict(stage string) {
	m.BookingConflicts.WithLabelValues(stage).Inc()
}

// Nop реализация доменных метрик, когда сбор метрик выключен
type Nop struct{}

func (Nop) ObserveHTTPRequest(string, string, int, time.Duration) {}
func (Nop) ObserveSlots(string, int)                             {}
func (Nop) IncAppointmentsCreated(string)                        {}
func (Nop) IncBookingConflict(string)                            {}
