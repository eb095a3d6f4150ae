package main

import (
	"context"
	"log"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/turnoshq/turnos-api/internal/appointment"
	"github.com/turnoshq/turnos-api/internal/config"
	"github.com/turnoshq/turnos-api/internal/datekey"
	"github.com/turnoshq/turnos-api/internal/db"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

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

	repo := appointment.NewSQLRepository(database, dialect)
	gofakeit.Seed(time.Now().UnixNano())

	weeks, err := datekey.RemainingWorkWeeks(datekey.FromTime(time.Now()))
	if err != nil {
		log.Fatalf("resolve remaining weeks: %v", err)
	}

	total := 0
	for _, week := range weeks {
		for _, day := range week {
			count, err := repo.CountByDate(ctx, day)
			if err != nil {
				log.Fatalf("count %s: %v", day, err)
			}

			target := gofakeit.Number(0, appointment.MaxAppointmentsPerDay)
			for count < target {
				phone := gofakeit.Phone()
				in := appointment.CreateInput{
					Date:  day,
					Name:  gofakeit.Name(),
					Phone: phone,
				}
				appt, err := appointment.ValidateCreate(in)
				if err != nil {
					log.Fatalf("build appointment for %s: %v", day, err)
				}
				if _, err := repo.Insert(ctx, appt); err != nil {
					log.Fatalf("insert appointment for %s: %v", day, err)
				}
				count++
				total++
			}
		}
	}

	log.Printf("seed complete: %d appointments inserted", total)
}
