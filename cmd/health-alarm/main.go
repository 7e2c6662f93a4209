package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	commonlogger "github.com/Emmanjr/health-monitoring/common/logger"
	"github.com/Emmanjr/health-monitoring/internal/alarm"
	"github.com/Emmanjr/health-monitoring/internal/config"
	"github.com/Emmanjr/health-monitoring/internal/metrics"
	"github.com/Emmanjr/health-monitoring/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	logger, err := commonlogger.NewLogger(cfg.Log.Level, cfg.Log.Format, "health-alarm")
	if err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New("health-alarm")
	alarmService, err := alarm.NewService(ctx, cfg, m, logger)
	if err != nil {
		logger.Fatal("Failed to create alarm service", zap.Error(err))
	}
	defer alarmService.Stop()

	gin.SetMode(gin.ReleaseMode)
	probes := gin.New()
	probes.Use(gin.Recovery())
	probes.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "main thread alive"})
	})
	probes.GET("/ready", func(c *gin.Context) {
		rctx, rcancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer rcancel()
		if err := alarmService.Ready(rctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "ready"})
	})
	probes.GET("/metrics", gin.WrapH(m.Handler()))
	probeServer := service.NewServer(cfg.Alarm.MetricsAddr, probes, logger)

	errCh := make(chan error, 2)
	go func() {
		if err := alarmService.Start(ctx); err != nil {
			errCh <- err
		}
	}()
	go func() {
		if err := probeServer.Start(); err != nil {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("Received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.Error("Alarm service failed", zap.Error(err))
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := probeServer.Stop(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}
