package main

import (
	"context"
	"log"
	"time"

	"github.com/turnoshq/turnos-api/internal/config"
	"github.com/turnoshq/turnos-api/internal/db"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	database, dialect, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer database.Close()

	if err := db.Migrate(ctx, database, dialect); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	log.Printf("migrations applied (%s)", dialect)
}
