package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/GriffinCanCode/SafeWaters/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/infrastructure/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Flags override environment
	port := flag.String("port", cfg.Server.Port, "Server port")
	host := flag.String("host", cfg.Server.Host, "Listen address")
	classifierURL := flag.String("classifier", cfg.Classifier.BaseURL, "Reputation service base URL")
	storage := flag.String("storage", cfg.Storage.DSN, "Settings database path (empty keeps settings in memory)")
	patterns := flag.String("patterns", cfg.Guard.PatternsFile, "URL pattern file (.yaml or .toml)")
	dev := flag.Bool("dev", cfg.Logging.Development, "Development mode (debug level, console logs)")
	flag.Parse()

	cfg.Server.Port = *port
	cfg.Server.Host = *host
	cfg.Classifier.BaseURL = *classifierURL
	cfg.Storage.DSN = *storage
	cfg.Guard.PatternsFile = *patterns
	cfg.Logging.Development = *dev
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := srv.Run(ctx)
	if err := srv.Close(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	if runErr != nil {
		log.Fatalf("Server error: %v", runErr)
	}
}
