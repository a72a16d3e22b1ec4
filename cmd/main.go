package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"air_purifier/internal/appliance"
	"air_purifier/internal/config"
	"air_purifier/internal/handlers"
	"air_purifier/internal/homekit"
	"air_purifier/internal/logger"
	"air_purifier/internal/models"
	"air_purifier/internal/mqtt"
	"air_purifier/internal/repository"
	"air_purifier/internal/repository/db"
	"air_purifier/internal/server"
	"air_purifier/internal/service"

	"github.com/google/uuid"
)

// @title                       OneLife X Air Purifier API
// @version                     1.0
// @description                 Remote-controller API for a single OneLife X air purifier accessory.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	// load configs/config.yml + PURIFIER_* env
	cfg, err := config.Load("configs")
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()

	// open DB
	conn, err := openDB(cfg.DB, log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// the one accessory; its state starts fresh on every boot
	app, err := appliance.New(cfg.Accessory.Name,
		appliance.WithLogger(log.Named("accessory")),
		appliance.WithSerialNumber(cfg.Accessory.SerialNumber),
		appliance.WithFirmware(cfg.Accessory.Firmware),
	)
	if err != nil {
		log.Fatalw("failed to create accessory", "err", err)
	}

	// wire dependencies
	repos := repository.NewRepository(conn)
	services := service.NewService(repos, app, service.AuthConfig{
		SigningKey: cfg.Auth.SigningKey,
		TokenTTL:   cfg.Auth.TokenTTL,
	}, log)
	apiHandler := handlers.NewHandler(services, log.Named("http"))

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	journalStartup(ctx, repos.EventRepo, app, log)

	// optional hosts subscribe before the watcher publishes its first snapshot
	startHomeKit(ctx, cfg.HomeKit, services, log)
	mq := startMQTT(ctx, cfg.MQTT, app.Name(), services, log)

	go services.Watcher.Run(ctx, cfg.Watch.Interval)

	// start HTTP server
	srv := server.New(cfg.HTTP.Port, apiHandler.InitRoutes(), server.Options{
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	})
	runHTTPServer(srv, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, cfg.HTTP.ShutdownTimeout, log)
	if mq != nil {
		_ = mq.Close()
	}
}

// openDB initializes the SQLite journal.
func openDB(cfg config.DBConfig, log *logger.Logger) (*sql.DB, error) {
	path := cfg.Path
	if path == "" {
		log.Infow("db.path not set in config; using default file", "default", "purifier.db")
		path = "purifier.db"
	}
	return db.InitDB(path)
}

func journalStartup(ctx context.Context, repo repository.EventRepo, app *appliance.Appliance, log *logger.Logger) {
	err := repo.Append(ctx, models.PurifierEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  time.Now().UTC(),
		Type:        models.EventStartup,
		Description: "Air purifier accessory started",
		Metadata: map[string]any{
			"name":     app.Name(),
			"identity": app.Identity(),
		},
	})
	if err != nil {
		log.Errorw("startup_journal_failed", "err", err)
	}
}

func startHomeKit(ctx context.Context, cfg config.HomeKitConfig, services *service.Service, log *logger.Logger) {
	if !cfg.Enabled {
		return
	}
	hk := homekit.New(services.Purifier, log.Named("homekit"))
	services.Watcher.Subscribe(hk.Notify)
	go func() {
		if err := hk.Serve(ctx, cfg); err != nil {
			log.Errorw("homekit_stopped", "err", err)
		}
	}()
}

func startMQTT(ctx context.Context, cfg config.MQTTConfig, name string, services *service.Service, log *logger.Logger) *mqtt.Client {
	if !cfg.Enabled {
		return nil
	}
	mlog := log.Named("mqtt")
	topics := mqtt.NewTopics(cfg.TopicPrefix, name)
	client, err := mqtt.Connect(cfg, topics, mlog)
	if err != nil {
		log.Errorw("mqtt_connect_failed", "err", err, "broker", cfg.Broker)
		return nil
	}

	bridge := mqtt.NewBridge(client, topics, services.Purifier, mlog)
	if err := bridge.Start(); err != nil {
		log.Errorw("mqtt_subscribe_failed", "err", err)
	}
	services.Watcher.Subscribe(bridge.Notify)
	go bridge.Run(ctx)
	return client
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, log *logger.Logger) {
	go func() {
		log.Infow("http_listening", "addr", srv.Addr())
		if err := srv.Run(); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, timeout time.Duration, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
