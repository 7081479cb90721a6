package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/goliatone/go-identity/config"
	"github.com/goliatone/go-identity/repository"
)

func main() {
	envFile := flag.String("env", ".env", "dotenv file to load before reading the environment")
	timeout := flag.Duration("timeout", 30*time.Second, "migration timeout")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	db, err := repository.Open(cfg.GetDatabaseDSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("database ping: %v", err)
	}

	if err := repository.CreateSchema(ctx, db); err != nil {
		log.Fatalf("schema: %v", err)
	}

	log.Printf("identity schema ready")
}
