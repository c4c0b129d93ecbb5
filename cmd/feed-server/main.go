// Command feed-server serves the alerts feed to the dashboard front end.
package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/johan/polymarket-whale-monitor/internal/config"
	"github.com/johan/polymarket-whale-monitor/internal/feedapi"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	addr := flag.String("addr", "", "Override listen address")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Printf("Config file not found, using defaults")
			cfg = config.DefaultConfig()
			cfg.ApplyEnv()
		} else {
			log.Fatalf("Error loading config: %v", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	listenAddr := cfg.Server.ListenAddr
	if *addr != "" {
		listenAddr = *addr
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	srv := feedapi.NewServer(cfg.Feed.Path)
	log.Printf("Serving alerts feed %s on %s", cfg.Feed.Path, listenAddr)

	if err := srv.Run(ctx, listenAddr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Feed server shutdown complete")
}
