package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "bms_telemetry/docs"
	"bms_telemetry/internal/config"
	"bms_telemetry/internal/handlers"
	"bms_telemetry/internal/logger"
	"bms_telemetry/internal/repository"
	"bms_telemetry/internal/repository/db"
	"bms_telemetry/internal/server"
	"bms_telemetry/internal/service"
)

const defaultShutdownTimeout = 10 * time.Second

// @title                       BMS Telemetry API
// @version                     1.0
// @description                 Battery telemetry: latest state, history, events, routes and exports.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	// load config.yml, .env and BMS_* overrides
	cfg, err := config.Load()
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	// init logger
	log := logger.Init(logger.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	defer func() { _ = log.Sync() }()

	// open DB
	conn, dialect, err := db.Open(cfg.Database)
	if err != nil {
		log.Fatalw("failed to open database", "driver", cfg.Database.Driver, "err", err)
	}
	defer closeDB(conn, log)
	log.Infow("database ready", "driver", cfg.Database.Driver)

	opts, err := service.OptionsFromConfig(cfg)
	if err != nil {
		log.Fatalw("invalid api configuration", "err", err)
	}

	// wire dependencies
	repos := repository.NewRepository(conn, dialect)
	services := service.NewService(repos, opts)
	apiHandler := handlers.NewHandler(services, log, handlers.Options{
		CORS:      cfg.CORS,
		RateLimit: cfg.RateLimit,
		DB:        conn,
	})

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, cfg.Server, apiHandler, log)

	// graceful shutdown
	waitForShutdown(srv, cfg.Server.ShutdownTimeout, log)
}

func closeDB(conn *sql.DB, log *logger.Logger) {
	if cerr := conn.Close(); cerr != nil {
		log.Errorw("failed to close database", "err", cerr)
	}
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, cfg config.ServerConfig, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		log.Infow("http server listening", "port", cfg.Port)
		if err := srv.Run(cfg, handler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(srv *server.Server, timeout time.Duration, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	// allow in-flight requests to complete
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
