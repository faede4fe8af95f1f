package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/meinhoongagan/healthsphere/config"
	"github.com/meinhoongagan/healthsphere/controllers"
	"github.com/meinhoongagan/healthsphere/cron"
	"github.com/meinhoongagan/healthsphere/db"
	"github.com/meinhoongagan/healthsphere/logging"
	"github.com/meinhoongagan/healthsphere/middleware"
	"github.com/meinhoongagan/healthsphere/redis"
	"github.com/meinhoongagan/healthsphere/routes"
	"github.com/meinhoongagan/healthsphere/scheduling"
	"github.com/meinhoongagan/healthsphere/utils"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "healthsphere",
		Short: "HealthSphere appointment scheduling service",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(reconcileCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and background jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			conn, err := db.Open(cfg.Database.URL, log)
			if err != nil {
				return err
			}
			defer db.Close(conn)
			return db.Migrate(conn, log)
		},
	}
}

func reconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Release ledger entries held by closed or missing appointments",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			svc, err := newServices(cmd.Context(), cfg, log, nil)
			if err != nil {
				return err
			}
			defer svc.close()

			freed, err := svc.reconciler.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("released %d stale reservations\n", freed)
			return nil
		},
	}
}

func setup() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logging.New(cfg.App.LogLevel, cfg.IsDevelopment()), nil
}

// services is the wired scheduling core shared by serve and reconcile.
type services struct {
	db         *gorm.DB
	closers    []func() error
	directory  *scheduling.GormDirectory
	templates  *scheduling.GormTemplateStore
	calc       *scheduling.Calculator
	workflow   *scheduling.Workflow
	reconciler *scheduling.Reconciler
	reminders  *scheduling.ReminderJob
}

func newServices(ctx context.Context, cfg *config.Config, log zerolog.Logger, metrics *scheduling.Metrics) (*services, error) {
	conn, err := db.Open(cfg.Database.URL, logging.Component(log, "db"))
	if err != nil {
		return nil, err
	}
	svc := &services{db: conn, closers: []func() error{func() error { return db.Close(conn) }}}

	var ledger scheduling.Ledger
	switch cfg.Scheduling.LedgerBackend {
	case config.LedgerRedis:
		client, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logging.Component(log, "redis"))
		if err != nil {
			svc.close()
			return nil, err
		}
		svc.closers = append(svc.closers, client.Close)
		ledger = scheduling.NewRedisLedger(client)
	default:
		ledger = scheduling.NewPostgresLedger(conn)
	}
	log.Info().Str("backend", cfg.Scheduling.LedgerBackend).Msg("slot ledger ready")

	svc.directory = scheduling.NewGormDirectory(conn)
	svc.templates = scheduling.NewGormTemplateStore(conn)
	store := scheduling.NewGormStore(conn)

	var notifier scheduling.Notifier = scheduling.NopNotifier{}
	if cfg.SMTP.Enabled {
		mailer := utils.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password)
		notifier = scheduling.NewMailNotifier(mailer, svc.directory)
	}

	opts := scheduling.Options{
		Location:    cfg.Location(),
		SlotLength:  time.Duration(cfg.Scheduling.SlotMinutes) * time.Minute,
		HorizonDays: cfg.Scheduling.BookingHorizonDays,
	}
	schedLog := logging.Component(log, "scheduling")
	svc.calc = scheduling.NewCalculator(svc.directory, ledger, opts, metrics)
	svc.workflow = scheduling.NewWorkflow(svc.calc, store, notifier, metrics, schedLog)
	if cfg.Scheduling.LedgerBackend == config.LedgerPostgres {
		svc.workflow.WithTransactions(scheduling.NewGormTx(conn))
	}
	svc.reconciler = scheduling.NewReconciler(ledger, store, cfg.Scheduling.ReconcileLookback, metrics, schedLog).
		WithOrphanGrace(cfg.Scheduling.OrphanGrace)
	svc.reminders = scheduling.NewReminderJob(store, notifier, opts, schedLog)
	return svc, nil
}

func (s *services) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		_ = s.closers[i]()
	}
}

func runServer(ctx context.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := scheduling.NewMetrics(registry)

	svc, err := newServices(ctx, cfg, log, metrics)
	if err != nil {
		return err
	}
	defer svc.close()

	jobs := cron.NewScheduler(cfg.Location(), logging.Component(log, "cron"))
	if err := jobs.Add("reconcile", cfg.Scheduling.ReconcileCron, svc.reconciler); err != nil {
		return err
	}
	if err := jobs.Add("reminders", cfg.Scheduling.ReminderCron, svc.reminders); err != nil {
		return err
	}
	jobs.Start()

	httpLog := logging.Component(log, "http")
	app := fiber.New(fiber.Config{
		AppName:               "healthsphere",
		DisableStartupMessage: !cfg.IsDevelopment(),
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins(),
	}))
	app.Use(middleware.RequestLogger(httpLog))

	routes.Setup(app, routes.Controllers{
		Appointments: controllers.NewAppointmentController(svc.calc, svc.workflow, httpLog),
		Directory:    controllers.NewDirectoryController(svc.directory, httpLog),
		Hospitals:    controllers.NewHospitalController(svc.workflow, httpLog),
		WorkingHours: controllers.NewWorkingHourController(svc.directory, svc.templates, httpLog),
	}, middleware.Protected(cfg.Auth.JWTSecret), registry)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("server starting")
		errCh <- app.Listen(":" + cfg.App.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("server stopped")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	jobs.Stop(shutdownCtx)
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}
