// finitude monitors the RS-485 bus of a Carrier Infinity or Bryant
// Evolution HVAC system and exports everything it hears as Prometheus
// metrics, with optional MQTT state mirroring.
//
// One goroutine supervises each configured bus connection; the process
// runs until interrupted.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/finitude/finitude/internal/infrastructure/config"
	"github.com/finitude/finitude/internal/infrastructure/logging"
	"github.com/finitude/finitude/internal/infrastructure/mqtt"
	"github.com/finitude/finitude/internal/metrics"
	"github.com/finitude/finitude/internal/monitor"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// shutdownTimeout bounds how long the metrics server may drain on exit.
const shutdownTimeout = 5 * time.Second

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting finitude",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)

	registry := metrics.NewRegistry()

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	} else {
		log.Info("MQTT disabled")
	}

	if len(cfg.Listeners) == 0 {
		log.Warn("no listeners configured, serving metrics only")
	}

	// Deterministic startup order makes logs comparable across restarts.
	names := make([]string, 0, len(cfg.Listeners))
	for name := range cfg.Listeners {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		opts := monitor.Options{}
		if mqttClient != nil {
			opts.Publisher = monitor.NewMQTTPublisher(mqttClient, name)
		}
		m := monitor.New(name, cfg.Listeners[name], registry, log, opts)

		// A device that cannot be reached at startup is misconfiguration;
		// only failures after this first open are retried.
		if err := m.Open(); err != nil {
			return fmt.Errorf("device %s: %w", name, err)
		}
		go m.Run(ctx)
	}
	log.Info("monitors started", "devices", len(names))

	server := metrics.NewServer(registry, cfg.Metrics.Host, cfg.Metrics.Port, cfg.Metrics.Path, log)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	select {
	case err := <-serverErr:
		// Start only returns early on listener failure.
		return err
	case <-ctx.Done():
	}

	log.Info("shutdown signal received, cleaning up")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("error stopping metrics server", "error", err)
	}

	log.Info("finitude stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses FINITUDE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("FINITUDE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
