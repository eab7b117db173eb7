package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	cancelAppointmentHandler "github.com/m04kA/SMC-CarWashBooking/internal/api/handlers/cancel_appointment"
	createAppointmentHandler "github.com/m04kA/SMC-CarWashBooking/internal/api/handlers/create_appointment"
	createServiceHandler "github.com/m04kA/SMC-CarWashBooking/internal/api/handlers/create_service"
	deleteOverrideHandler "github.com/m04kA/SMC-CarWashBooking/internal/api/handlers/delete_override"
	deleteServiceHandler "github.com/m04kA/SMC-CarWashBooking/internal/api/handlers/delete_service"
	getAppointmentHandler "github.com/m04kA/SMC-CarWashBooking/internal/api/handlers/get_appointment"
	getAvailableSlotsHandler "github.com/m04kA/SMC-CarWashBooking/internal/api/handlers/get_available_slots"
	getBusinessHoursHandler "github.com/m04kA/SMC-CarWashBooking/internal/api/handlers/get_business_hours"
	getDashboardHandler "github.com/m04kA/SMC-CarWashBooking/internal/api/handlers/get_dashboard"
	getDayAvailabilityHandler "github.com/m04kA/SMC-CarWashBooking/internal/api/handlers/get_day_availability"
	getServiceHandler "github.com/m04kA/SMC-CarWashBooking/internal/api/handlers/get_service"
	getTodayAppointmentsHandler "github.com/m04kA/SMC-CarWashBooking/internal/api/handlers/get_today_appointments"
	getUpcomingAppointmentsHandler "github.com/m04kA/SMC-CarWashBooking/internal/api/handlers/get_upcoming_appointments"
	healthHandler "github.com/m04kA/SMC-CarWashBooking/internal/api/handlers/health"
	listAppointmentsHandler "github.com/m04kA/SMC-CarWashBooking/internal/api/handlers/list_appointments"
	listOverridesHandler "github.com/m04kA/SMC-CarWashBooking/internal/api/handlers/list_overrides"
	listServicesHandler "github.com/m04kA/SMC-CarWashBooking/internal/api/handlers/list_services"
	toggleServiceHandler "github.com/m04kA/SMC-CarWashBooking/internal/api/handlers/toggle_service"
	updateAppointmentHandler "github.com/m04kA/SMC-CarWashBooking/internal/api/handlers/update_appointment"
	updateAppointmentStatusHandler "github.com/m04kA/SMC-CarWashBooking/internal/api/handlers/update_appointment_status"
	updateBusinessHoursHandler "github.com/m04kA/SMC-CarWashBooking/internal/api/handlers/update_business_hours"
	updateServiceHandler "github.com/m04kA/SMC-CarWashBooking/internal/api/handlers/update_service"
	upsertOverrideHandler "github.com/m04kA/SMC-CarWashBooking/internal/api/handlers/upsert_override"
	"github.com/m04kA/SMC-CarWashBooking/internal/api/middleware"
	"github.com/m04kA/SMC-CarWashBooking/internal/availability"
	"github.com/m04kA/SMC-CarWashBooking/internal/config"
	scheduleCache "github.com/m04kA/SMC-CarWashBooking/internal/infra/cache/schedule"
	"github.com/m04kA/SMC-CarWashBooking/internal/infra/lock"
	appointmentRepo "github.com/m04kA/SMC-CarWashBooking/internal/infra/storage/appointment"
	catalogRepo "github.com/m04kA/SMC-CarWashBooking/internal/infra/storage/catalog"
	scheduleRepo "github.com/m04kA/SMC-CarWashBooking/internal/infra/storage/schedule"
	appointmentsService "github.com/m04kA/SMC-CarWashBooking/internal/service/appointments"
	catalogService "github.com/m04kA/SMC-CarWashBooking/internal/service/catalog"
	scheduleService "github.com/m04kA/SMC-CarWashBooking/internal/service/schedule"
	createAppointmentUC "github.com/m04kA/SMC-CarWashBooking/internal/usecase/create_appointment"
	getAvailableSlotsUC "github.com/m04kA/SMC-CarWashBooking/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-CarWashBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-CarWashBooking/pkg/logger"
	"github.com/m04kA/SMC-CarWashBooking/pkg/metrics"
	"github.com/m04kA/SMC-CarWashBooking/pkg/simpletxmanager"
	"github.com/m04kA/SMC-CarWashBooking/pkg/txmanager"
)

// domainMetrics доменные метрики use case'ов
type domainMetrics interface {
	ObserveSlots(mode string, count int)
	IncAppointmentsCreated(channel string)
	IncBookingConflict(stage string)
}

func main() {
	configPath := "config.toml"
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}

	// Загружаем конфигурацию
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-CarWashBooking...")
	log.Info("Configuration loaded from %s", configPath)

	loc, err := cfg.Scheduling.Location()
	if err != nil {
		log.Fatal("Invalid timezone: %v", err)
	}

	// Инициализируем метрики (если включены)
	var (
		metricsCollector *metrics.Metrics
		useCaseMetrics   domainMetrics = metrics.Nop{}
	)
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		useCaseMetrics = metricsCollector
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Репозитории и transaction manager (с метриками или без)
	var (
		executor  dbmetrics.DBExecutor
		txManager *txmanager.TransactionManager
	)

	if cfg.Metrics.Enabled {
		wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		executor = wrappedDB
		txManager = txmanager.NewTransactionManager(wrappedDB)
	} else {
		executor = db
		txManager = simpletxmanager.NewTransactionManager(db)
	}

	appointmentRepository := appointmentRepo.NewRepository(executor)
	catalogRepository := catalogRepo.NewRepository(executor)
	scheduleRepository := scheduleRepo.NewRepository(executor)

	// Чтение расписания для витрины идёт через кэш, запись сбрасывает его
	var scheduleReader scheduleCache.Repository = scheduleRepository
	if cfg.Cache.Enabled {
		scheduleReader = scheduleCache.NewCachedRepository(scheduleRepository, cfg.Cache.Size, cfg.Cache.TTL(), log)
		log.Info("Schedule cache enabled (size=%d, ttl=%s)", cfg.Cache.Size, cfg.Cache.TTL())
	}

	// Блокировка дня в Redis (если включена)
	healthChecks := map[string]healthHandler.Check{
		"postgres": db.PingContext,
	}

	var locker lock.Locker = lock.NoopLocker{}
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		pingCtx, cancelPing := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			// Сервис стартует: без Redis запись защищена только транзакцией и constraint в БД
			log.Warn("Redis is not reachable at %s: %v", cfg.Redis.Addr, err)
		}
		cancelPing()

		locker = lock.NewRedisLocker(rdb, cfg.Redis.LockTTL(), cfg.Redis.LockPrefix, log)
		healthChecks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		log.Info("Redis booking lock enabled (addr=%s, ttl=%s)", cfg.Redis.Addr, cfg.Redis.LockTTL())
	} else {
		log.Warn("Redis disabled: double booking is prevented by the database only")
	}

	// Движок доступности
	engine := availability.NewEngine(availability.Options{
		Granularity: cfg.Scheduling.Granularity(),
		LeadTime:    cfg.Scheduling.LeadTime(),
		Location:    loc,
	})

	// Инициализируем сервисы
	appointmentsSvc := appointmentsService.NewService(appointmentRepository, txManager, loc, log)
	catalogSvc := catalogService.NewService(catalogRepository, log)
	scheduleSvc := scheduleService.NewService(scheduleReader, log)

	// Инициализируем use cases
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		appointmentRepository,
		scheduleReader,
		catalogRepository,
		engine,
		getAvailableSlotsUC.Options{
			DefaultDurationMinutes: cfg.Scheduling.DefaultDurationMinutes,
			MaxAdvanceDays:         cfg.Scheduling.MaxAdvanceDays,
		},
		useCaseMetrics,
		log,
	)

	// Внутри транзакции расписание читается напрямую из БД, мимо кэша
	createAppointmentUseCase := createAppointmentUC.NewUseCase(
		appointmentRepository,
		scheduleRepository,
		catalogRepository,
		engine,
		locker,
		txManager,
		createAppointmentUC.Options{MaxAdvanceDays: cfg.Scheduling.MaxAdvanceDays},
		useCaseMetrics,
		log,
	)

	// Инициализируем handlers
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	createPublicAppointment := createAppointmentHandler.NewHandler(createAppointmentUseCase, loc, createAppointmentUC.ChannelPublic, log)
	createAdminAppointment := createAppointmentHandler.NewHandler(createAppointmentUseCase, loc, createAppointmentUC.ChannelAdmin, log)
	listPublicServices := listServicesHandler.NewHandler(catalogSvc, true, log)
	getDayAvailability := getDayAvailabilityHandler.NewHandler(scheduleSvc, log)
	health := healthHandler.NewHandler(healthChecks, log)

	listAppointments := listAppointmentsHandler.NewHandler(appointmentsSvc, log)
	getTodayAppointments := getTodayAppointmentsHandler.NewHandler(appointmentsSvc, log)
	getUpcomingAppointments := getUpcomingAppointmentsHandler.NewHandler(appointmentsSvc, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentsSvc, log)
	updateAppointment := updateAppointmentHandler.NewHandler(appointmentsSvc, log)
	updateAppointmentStatus := updateAppointmentStatusHandler.NewHandler(appointmentsSvc, log)
	cancelAppointment := cancelAppointmentHandler.NewHandler(appointmentsSvc, log)
	getDashboard := getDashboardHandler.NewHandler(appointmentsSvc, log)

	listServices := listServicesHandler.NewHandler(catalogSvc, false, log)
	getService := getServiceHandler.NewHandler(catalogSvc, log)
	createService := createServiceHandler.NewHandler(catalogSvc, log)
	updateService := updateServiceHandler.NewHandler(catalogSvc, log)
	toggleService := toggleServiceHandler.NewHandler(catalogSvc, log)
	deleteService := deleteServiceHandler.NewHandler(catalogSvc, log)

	getBusinessHours := getBusinessHoursHandler.NewHandler(scheduleSvc, log)
	updateBusinessHours := updateBusinessHoursHandler.NewHandler(scheduleSvc, log)
	listOverrides := listOverridesHandler.NewHandler(scheduleSvc, log)
	upsertOverride := upsertOverrideHandler.NewHandler(scheduleSvc, log)
	deleteOverride := deleteOverrideHandler.NewHandler(scheduleSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(log))

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health/live", health.Live).Methods(http.MethodGet)
	api.HandleFunc("/health/ready", health.Ready).Methods(http.MethodGet)

	// ============================================================
	// PUBLIC ROUTES (без аутентификации, с ограничением частоты)
	// ============================================================

	public := api.PathPrefix("").Subrouter()
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
			TTL:               time.Duration(cfg.RateLimit.TTLMinutes) * time.Minute,
		}, log)
		public.Use(limiter.Middleware)
		log.Info("Rate limit enabled for public routes (%.2f rps, burst %d)",
			cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	public.HandleFunc("/appointments/availability", getAvailableSlots.Handle).Methods(http.MethodGet)
	public.HandleFunc("/appointments/public", createPublicAppointment.Handle).Methods(http.MethodPost)
	public.HandleFunc("/services/public", listPublicServices.Handle).Methods(http.MethodGet)
	public.HandleFunc("/schedule/days/{date}", getDayAvailability.Handle).Methods(http.MethodGet)

	// ============================================================
	// ADMIN ROUTES (Authorization: Bearer <token>)
	// ============================================================

	if cfg.Admin.TokenHash == "" {
		log.Warn("admin.token_hash is empty: admin routes will reject every request")
	}

	admin := api.PathPrefix("").Subrouter()
	admin.Use(middleware.AdminAuth(cfg.Admin.TokenHash, log))

	// --- Записи ---
	admin.HandleFunc("/appointments", listAppointments.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/appointments", createAdminAppointment.Handle).Methods(http.MethodPost)
	admin.HandleFunc("/appointments/today", getTodayAppointments.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/appointments/upcoming", getUpcomingAppointments.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/appointments/{id:[0-9]+}", getAppointment.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/appointments/{id:[0-9]+}", updateAppointment.Handle).Methods(http.MethodPut)
	admin.HandleFunc("/appointments/{id:[0-9]+}", cancelAppointment.Handle).Methods(http.MethodDelete)
	admin.HandleFunc("/appointments/{id:[0-9]+}/status", updateAppointmentStatus.Handle).Methods(http.MethodPatch)
	admin.HandleFunc("/dashboard", getDashboard.Handle).Methods(http.MethodGet)

	// --- Услуги ---
	admin.HandleFunc("/services", listServices.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/services", createService.Handle).Methods(http.MethodPost)
	admin.HandleFunc("/services/{id:[0-9]+}", getService.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/services/{id:[0-9]+}", updateService.Handle).Methods(http.MethodPut)
	admin.HandleFunc("/services/{id:[0-9]+}", deleteService.Handle).Methods(http.MethodDelete)
	admin.HandleFunc("/services/{id:[0-9]+}/toggle", toggleService.Handle).Methods(http.MethodPatch)

	// --- Расписание ---
	admin.HandleFunc("/schedule/business-hours", getBusinessHours.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/schedule/business-hours/{day}", updateBusinessHours.Handle).Methods(http.MethodPut)
	admin.HandleFunc("/schedule/overrides", listOverrides.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/schedule/overrides/{date}", upsertOverride.Handle).Methods(http.MethodPut)
	admin.HandleFunc("/schedule/overrides/{date}", deleteOverride.Handle).Methods(http.MethodDelete)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
