package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smartkitchen/internal/api"
	"smartkitchen/internal/client"
	"smartkitchen/internal/config"
	"smartkitchen/internal/dashboard"
	"smartkitchen/internal/database"
	"smartkitchen/internal/metrics"
	"smartkitchen/internal/monitoring"

	"github.com/gin-gonic/gin"
)

var (
	port        = flag.Int("port", 0, "API server port (overrides config)")
	metricsPort = flag.Int("metrics-port", 0, "Metrics server port (overrides config)")
	configFile  = flag.String("config", "configs/config.yaml", "Path to configuration file")
)

func main() {
	flag.Parse()

	// Initialize context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}
	if *metricsPort > 0 {
		cfg.MetricsConfig.Port = *metricsPort
	}
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	store, err := database.Open(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Initialize metrics collector
	metricsCollector := metrics.NewMetricsCollector()

	// Initialize backend client and dashboard service
	backend := client.NewApiClient(cfg.Backend.URL,
		client.WithTimeout(cfg.Backend.Timeout),
		client.WithObserver(metricsCollector.ObserveBackend),
	)
	svc := dashboard.NewService(backend, cfg.Thresholds,
		dashboard.WithCache(store),
		dashboard.WithMetrics(metricsCollector),
		dashboard.WithMonitor(monitoring.NewMonitor()),
	)
	if err := svc.Warm(); err != nil {
		log.Printf("Failed to load cached snapshot: %v", err)
	}

	// Initialize API server
	dashboardAPI := api.NewDashboardAPI(svc, api.Options{
		AllowOrigins: cfg.Server.AllowOrigins,
		JWTSecret:    cfg.Auth.JWTSecret,
	})
	if !cfg.AuthEnabled() {
		log.Println("No JWT secret configured, write endpoints are unauthenticated")
	}

	// Start pollers
	go client.NewPoller("snapshot", cfg.Backend.PollInterval, svc.Refresh).Run(ctx)
	go client.NewPoller("sales", cfg.Backend.PollInterval, svc.RefreshSales).Run(ctx)

	// Start metrics server
	if cfg.MetricsConfig.Enabled {
		go startMetricsServer(cfg.MetricsConfig.Port, cfg.MetricsConfig.Path, metricsCollector)
	}

	// Start API server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: dashboardAPI.Router,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down servers...")

		// Stop pollers before the server drains
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("API server shutdown error: %v", err)
		}
	}()

	log.Printf("Starting API server on port %d (backend %s)", cfg.Server.Port, cfg.Backend.URL)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("API server error: %v", err)
	}
}

func startMetricsServer(port int, path string, collector *metrics.MetricsCollector) {
	if path == "" {
		path = "/metrics"
	}
	metricsRouter := gin.New()
	metricsRouter.Use(gin.Recovery())
	metricsRouter.GET(path, gin.WrapH(collector.Handler()))

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: metricsRouter,
	}

	log.Printf("Starting metrics server on port %d", port)
	if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Printf("Metrics server error: %v", err)
	}
}
