package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	_ "github.com/lib/pq"

	"github.com/m04kA/SMC-CarWashBooking/internal/availability"
	"github.com/m04kA/SMC-CarWashBooking/internal/config"
	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-CarWashBooking/internal/infra/storage/appointment"
	catalogRepo "github.com/m04kA/SMC-CarWashBooking/internal/infra/storage/catalog"
	scheduleRepo "github.com/m04kA/SMC-CarWashBooking/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-CarWashBooking/pkg/logger"
	"github.com/m04kA/SMC-CarWashBooking/pkg/ptr"
)

var defaultServices = []domain.ServiceDefinition{
	{Name: "Lavagem simples", Description: ptr.Ptr("Lavagem externa"), Price: 40, DurationMinutes: 30},
	{Name: "Lavagem completa", Description: ptr.Ptr("Lavagem externa e interna com aspiração"), Price: 80, DurationMinutes: 90},
	{Name: "Polimento", Description: ptr.Ptr("Polimento e enceramento"), Price: 150, DurationMinutes: 120},
	{Name: "Higienização interna", Price: 120, DurationMinutes: 60},
}

var vehicleTypes = []string{"Hatch", "Sedan", "SUV", "Picape", "Moto", "Van"}

var notes = []string{
	"Cliente prefere contato por WhatsApp",
	"Atenção aos bancos de couro",
	"Carro com adesivos na lateral",
	"Retirar cadeirinha antes da lavagem",
}

func main() {
	configPath := flag.String("config", "config.toml", "path to config file")
	days := flag.Int("days", 14, "how many days ahead to fill")
	perDay := flag.Int("per-day", 4, "appointments per open day")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	loc, err := cfg.Scheduling.Location()
	if err != nil {
		log.Fatal("Invalid timezone: %v", err)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}

	s := &seeder{
		appointments: appointmentRepo.NewRepository(db),
		catalog:      catalogRepo.NewRepository(db),
		schedule:     scheduleRepo.NewRepository(db),
		engine: availability.NewEngine(availability.Options{
			Granularity: cfg.Scheduling.Granularity(),
			LeadTime:    cfg.Scheduling.LeadTime(),
			Location:    loc,
		}),
		log: log,
	}

	log.Info("seed starting: days=%d, per_day=%d", *days, *perDay)

	services, err := s.seedServices(ctx)
	if err != nil {
		log.Fatal("seed services: %v", err)
	}

	rules, err := s.seedBusinessHours(ctx)
	if err != nil {
		log.Fatal("seed business hours: %v", err)
	}

	created, err := s.seedAppointments(ctx, services, rules, *days, *perDay)
	if err != nil {
		log.Fatal("seed appointments: %v", err)
	}

	log.Info("seed complete: services=%d, appointments=%d", len(services), created)
}

type seeder struct {
	appointments *appointmentRepo.Repository
	catalog      *catalogRepo.Repository
	schedule     *scheduleRepo.Repository
	engine       *availability.Engine
	log          *logger.Logger
}

// seedServices создает каталог, если он пуст
func (s *seeder) seedServices(ctx context.Context) ([]*domain.ServiceDefinition, error) {
	existing, err := s.catalog.List(ctx, true)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		s.log.Info("catalog already has %d active services, skipping", len(existing))
		return existing, nil
	}

	services := make([]*domain.ServiceDefinition, 0, len(defaultServices))
	for _, def := range defaultServices {
		def.Active = true
		created, err := s.catalog.Create(ctx, &def)
		if err != nil {
			return nil, err
		}
		services = append(services, created)
	}

	s.log.Info("services seeded: %d", len(services))
	return services, nil
}

// seedBusinessHours записывает недельное расписание по умолчанию
func (s *seeder) seedBusinessHours(ctx context.Context) ([]domain.BusinessHoursRule, error) {
	for _, rule := range domain.DefaultBusinessHours() {
		if _, err := s.schedule.UpsertBusinessHours(ctx, rule); err != nil {
			return nil, err
		}
	}
	return s.schedule.GetBusinessHours(ctx)
}

// seedAppointments раскладывает записи по свободным слотам, поэтому они не пересекаются
func (s *seeder) seedAppointments(ctx context.Context, services []*domain.ServiceDefinition, rules []domain.BusinessHoursRule, days, perDay int) (int, error) {
	loc := s.engine.Location()
	now := time.Now().In(loc)
	today := availability.CalendarDate(now, loc)
	created := 0

	for d := 0; d < days; d++ {
		day := today.AddDate(0, 0, d)

		for i := 0; i < perDay; i++ {
			service := services[gofakeit.Number(0, len(services)-1)]

			existing, err := s.appointments.GetByDay(ctx, day, day.AddDate(0, 0, 1))
			if err != nil {
				return created, err
			}

			slots := s.engine.ComputeAvailableSlots(availability.Input{
				Date:            day,
				DurationMinutes: service.DurationMinutes,
				BusinessHours:   rules,
				Appointments:    existing,
				Now:             now,
			})
			if len(slots) == 0 {
				break
			}

			slot := slots[gofakeit.Number(0, len(slots)-1)]
			appointment := &domain.Appointment{
				ServiceID:     service.ID,
				CustomerName:  gofakeit.Name(),
				CustomerPhone: gofakeit.Phone(),
				VehicleType:   gofakeit.RandomString(vehicleTypes),
				StartTime:     slot.Start,
				EndTime:       slot.End,
				Status:        domain.UpcomingStatuses[gofakeit.Number(0, len(domain.UpcomingStatuses)-1)],
				ServiceName:   service.Name,
				ServicePrice:  service.Price,
			}
			if gofakeit.Bool() {
				appointment.Notes = ptr.Ptr(gofakeit.RandomString(notes))
			}

			if _, err := s.appointments.Create(ctx, appointment); err != nil {
				return created, err
			}
			created++
		}

		s.log.Info("appointments seeded for %s", day.Format(domain.DateFormat))
	}

	return created, nil
}
