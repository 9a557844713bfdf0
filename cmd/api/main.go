package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eclinic/cmd/internal/config"
	"eclinic/cmd/internal/metrics"
	authmw "eclinic/cmd/internal/middleware"
	"eclinic/cmd/internal/routes"
	"eclinic/cmd/internal/service"
	"eclinic/cmd/internal/utils/validators"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "eclinic",
		Short: "Doctor availability and booking API",
	}
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema of the configured store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log.SetLevel(cfg.GommonLevel())
			return migrate(cmd.Context(), cfg)
		},
	}
}

func runServer(ctx context.Context, cfg *config.Config) error {
	log.SetLevel(cfg.GommonLevel())

	validate := validator.New()
	validators.Register(validate)

	policy, err := cfg.SchedulePolicy()
	if err != nil {
		return err
	}

	// Storage
	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()

	resolver, err := newTokenResolver(ctx, cfg)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	schedMetrics := metrics.NewSchedulingMetrics(registry)

	// Getting services
	profileService := service.NewProfileService(st.profiles, validate)
	slotService := service.NewAvailabilityService(st.profiles, st.appointments, policy, schedMetrics)
	bookingService := service.NewBookingService(st.appointments, st.profiles, validate, policy, schedMetrics)
	scheduleService := service.NewScheduleService(st.profiles, validate, policy)

	// Getting routes
	doctorRoutes := routes.NewDoctorDefault(profileService, slotService, scheduleService)
	apptRoutes := routes.NewAppointmentDefault(bookingService)
	profileRoutes := routes.NewProfileDefault(profileService)

	e := echo.New()
	e.HideBanner = true
	e.Debug = cfg.IsDev()
	e.Logger.SetLevel(cfg.GommonLevel())
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(authmw.Authenticate(resolver))

	routes.Register(e, doctorRoutes, apptRoutes, profileRoutes)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	go func() {
		log.Infof("starting %s server on :%s with %s store", cfg.Env, cfg.Port, cfg.StoreBackend)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
