package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Emmanjr/health-monitoring/common/database"
	commonlogger "github.com/Emmanjr/health-monitoring/common/logger"
	commonredis "github.com/Emmanjr/health-monitoring/common/redis"
	"github.com/Emmanjr/health-monitoring/internal/alarm"
	"github.com/Emmanjr/health-monitoring/internal/config"
	httpapi "github.com/Emmanjr/health-monitoring/internal/http"
	"github.com/Emmanjr/health-monitoring/internal/metrics"
	"github.com/Emmanjr/health-monitoring/internal/repository"
	"github.com/Emmanjr/health-monitoring/internal/service"
	"github.com/Emmanjr/health-monitoring/internal/store"
	"github.com/Emmanjr/health-monitoring/internal/subscription"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	logger, err := commonlogger.NewLogger(cfg.Log.Level, cfg.Log.Format, "health-portal")
	if err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer logger.Sync()

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New("health-portal")
	hub := subscription.NewHub(logger)
	var checks []httpapi.ReadinessCheck

	var (
		users        repository.UsersRepository
		readings     repository.ReadingsRepository
		appointments repository.AppointmentsRepository
		alerts       repository.AlertEventsRepository
	)
	if cfg.DBEnabled {
		db, err := database.NewPostgresDB(ctx, &cfg.Database)
		if err != nil {
			logger.Fatal("Failed to connect database", zap.Error(err))
		}
		defer database.Close(db)
		if err := repository.EnsureSchema(ctx, db); err != nil {
			logger.Fatal("Failed to apply schema", zap.Error(err))
		}
		users = repository.NewPostgresUsersRepository(db)
		readings = repository.NewPostgresReadingsRepository(db)
		appointments = repository.NewPostgresAppointmentsRepository(db)
		alerts = repository.NewPostgresAlertEventsRepository(db, logger)
		checks = append(checks, httpapi.ReadinessCheck{Name: "database", Check: db.PingContext})
		logger.Info("DB enabled for health-portal")
	} else {
		logger.Warn("Database disabled, records are kept in memory")
		users = repository.NewMemoryUsersRepo()
		readings = repository.NewMemoryReadingsRepo()
		appointments = repository.NewMemoryAppointmentsRepo()
		alerts = repository.NewMemoryAlertEventsRepo()
	}

	// Without Redis, changes only reach streams served by this process.
	var (
		notifier   subscription.Notifier = hub
		publisher  service.ReadingPublisher
		alertCache service.AlertCache
	)
	if cfg.RedisEnabled {
		rdb := commonredis.NewRedisClient(&cfg.Redis)
		defer commonredis.Close(rdb)
		if err := commonredis.Ping(ctx, rdb); err != nil {
			logger.Fatal("Failed to connect redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}

		relay := subscription.NewRedisNotifier(rdb, subscription.DefaultChannel, logger)
		notifier = relay
		go func() {
			if err := relay.Relay(ctx, hub, nil); err != nil {
				logger.Error("Change relay stopped", zap.Error(err))
			}
		}()

		publisher = service.NewStreamPublisher(rdb, cfg.Streams.Readings)
		alertCache = alarm.NewCacheManager(
			store.NewRedisKV(rdb),
			cfg.Alarm.Cache.AlertKeyPrefix,
			cfg.Alarm.Cache.AlertSuffix,
			time.Duration(cfg.Alarm.Cache.AlertTTL)*time.Second,
			logger,
		)
		checks = append(checks, httpapi.ReadinessCheck{Name: "redis", Check: func(ctx context.Context) error {
			return commonredis.Ping(ctx, rdb)
		}})
	} else {
		logger.Warn("Redis disabled, reading events are not published")
	}

	handler := httpapi.NewHandler(httpapi.Deps{
		Auth:         service.NewAuthService(users, notifier, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, m, logger),
		Users:        service.NewUserService(users, alertCache, notifier, logger),
		Vitals:       service.NewVitalsService(readings, users, alerts, alertCache, publisher, notifier, m, logger),
		Appointments: service.NewAppointmentService(appointments, users, notifier, m, logger),
		Dashboard:    service.NewDashboardService(users, readings, logger),
		Hub:          hub,
		Checks:       checks,
		Metrics:      m,
		Logger:       logger,
	})

	srv := service.NewServer(cfg.HTTP.Addr, handler.Router(), logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("Received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.Error("HTTP server failed", zap.Error(err))
		}
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
	logger.Info("health-portal stopped")
}
