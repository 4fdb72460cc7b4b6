package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/sales-visualizer/backend/internal/api"
	"github.com/sales-visualizer/backend/internal/chart"
	"github.com/sales-visualizer/backend/internal/config"
	"github.com/sales-visualizer/backend/internal/metrics"
	"github.com/sales-visualizer/backend/internal/schema"
	"github.com/sales-visualizer/backend/internal/store"
	"github.com/sales-visualizer/backend/internal/validate"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

func main() {
	// Get the executable's directory for config resolution
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	exeDir := filepath.Dir(exePath)

	// Load XML configuration
	configPath := filepath.Join(exeDir, "SalesVisualizer.exe.config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Advanced.LogLevel)
	slog.SetDefault(logger)

	// Ensure all data directories exist
	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Printf("Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	// Initialize metadata store and seed the visualization catalog
	repo, err := store.NewMetaStore(cfg.Storage.DatabasePath)
	if err != nil {
		fmt.Printf("Failed to initialize metadata store: %v\n", err)
		os.Exit(1)
	}
	defer repo.Close()

	if err := repo.Seed(context.Background(), store.DefaultVisualizations); err != nil {
		fmt.Printf("Failed to seed visualizations: %v\n", err)
		os.Exit(1)
	}

	// Schema contracts: built-ins plus optional overrides from file
	registry := schema.NewRegistry()
	if err := registry.LoadFile(cfg.Storage.SchemaFile); err != nil {
		logger.Warn("failed to load schema overrides", "path", cfg.Storage.SchemaFile, "error", err)
	}

	// Initialize file storage
	files, err := store.NewFileStore(cfg.Storage.StoreDirectory, logger)
	if err != nil {
		fmt.Printf("Failed to initialize file store: %v\n", err)
		os.Exit(1)
	}

	m := metrics.New()
	coordinator := store.NewCoordinator(files, repo, nil, logger)
	generator := chart.NewGenerator(repo, cfg.ScriptTimeout(), logger, m)
	validator := validate.New(registry)

	h := api.NewHandler(repo, validator, coordinator, generator, files, m, logger)

	e := echo.New()
	e.HideBanner = true

	// Configure middleware
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.Advanced.EnableRequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return path == "/api/health" || path == "/metrics"
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	// Body limit middleware
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// CORS configuration
	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	api.RegisterRoutes(e, h, m)

	// Configure server with settings from XML config
	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Print startup banner
	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           Sales Visualizer Server                         ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Data Dir:  %-46s║\n", cfg.Storage.DataDirectory)
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	e.Logger.Fatal(e.StartServer(s))
}
