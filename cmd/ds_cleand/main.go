package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ds-clean/internal/config"
	"ds-clean/internal/database"
	"ds-clean/internal/exitcodes"
	"ds-clean/internal/logging"
	"ds-clean/internal/metrics"
	"ds-clean/internal/scheduler"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "/etc/ds-clean/config.yaml", "Path to configuration file")
	once := flag.Bool("once", false, "Sweep all roots once and exit (no loop)")
	flag.Parse()

	// Console only until the config names a log directory
	logger := logging.New(config.LoggingCfg{}, os.Stdout)
	logger.Printf("Config file: %s", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Printf("ERROR: Failed to load config: %v", err)
		return exitcodes.InvalidConfig
	}
	logger = logging.New(cfg.Logging, os.Stdout)
	logger.Println("ds-clean sweeper starting...")
	logger.Printf("Roots: %v (interval %s)", cfg.Roots, cfg.Interval())

	metrics.Init()
	if addr := cfg.PrometheusAddress(); addr != "" {
		logger.Printf("Starting Prometheus metrics on %s", addr)
		metrics.StartServer(addr, logger)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			metrics.Shutdown(ctx, logger)
		}()
	}

	var db *database.RemovalDB
	if cfg.DatabasePath != "" {
		logger.Printf("Opening removal history: %s", cfg.DatabasePath)
		db, err = database.NewRemovalDB(cfg.DatabasePath)
		if err != nil {
			logger.Printf("ERROR: Failed to open database: %v", err)
			return exitcodes.RuntimeError
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.Printf("ERROR: Failed to close database: %v", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	}()

	// SIGUSR1 and POST /trigger share one channel
	trigger := make(chan os.Signal, 1)
	signal.Notify(trigger, syscall.SIGUSR1)
	metrics.SetTriggerChannel(trigger)

	code := exitcodes.Success
	if *once {
		if err := scheduler.RunOnce(ctx, cfg, logger, db); err != nil {
			logger.Printf("ERROR: Sweep failed: %v", err)
			code = exitcodes.RuntimeError
		} else {
			logger.Println("Sweep completed successfully")
		}
	} else if err := scheduler.Run(ctx, cfg, logger, db, trigger); err != nil && err != context.Canceled {
		logger.Printf("ERROR: Scheduler failed: %v", err)
		code = exitcodes.RuntimeError
	}

	logger.Println("ds-clean sweeper stopped")
	return code
}
