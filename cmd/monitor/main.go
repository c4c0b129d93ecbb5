// Command monitor scans Polymarket order books for whale orders.
//
// By default it runs a single scan cycle and exits, so it can be driven by
// cron or a CI schedule. With -loop it keeps scanning on an interval.
package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/johan/polymarket-whale-monitor/internal/config"
	"github.com/johan/polymarket-whale-monitor/internal/monitor"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	loop := flag.Bool("loop", false, "Keep scanning on an interval instead of exiting after one cycle")
	interval := flag.Duration("interval", 60*time.Second, "Scan interval in loop mode")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		// If config file doesn't exist, use defaults
		if errors.Is(err, fs.ErrNotExist) {
			log.Printf("Config file not found, using defaults")
			cfg = config.DefaultConfig()
			cfg.ApplyEnv()
		} else {
			log.Fatalf("Error loading config: %v", err)
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	log.Printf("Alert threshold: $%.0f", cfg.Scan.MinOrderValueUSD)
	log.Printf("Discord webhook: %s", cfg.MaskedWebhookURL())

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	svc := monitor.NewService(cfg)

	if *loop {
		log.Printf("Starting monitor loop, interval %v", *interval)
		if err := svc.Run(ctx, *interval); err != nil && err != context.Canceled {
			log.Fatalf("Monitor error: %v", err)
		}
	} else {
		if err := svc.RunCycle(ctx); err != nil {
			log.Fatalf("Scan cycle error: %v", err)
		}
	}

	log.Println("Monitor shutdown complete")
}
