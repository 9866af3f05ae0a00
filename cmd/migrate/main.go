package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/geocoder89/expensetracker/internal/config"
	"github.com/geocoder89/expensetracker/internal/db"
)

// migrate applies the embedded schema and exits.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)

	defer stop()

	pool, err := db.NewPool(ctx, cfg.DBURL, 2)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		log.Printf("migrate failed: %v", err)
		return
	}

	log.Println("migrations applied")
}
