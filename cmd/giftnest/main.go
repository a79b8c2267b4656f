package main

import (
	"log"

	"github.com/giftnest-dev/giftnest/db"
	"github.com/giftnest-dev/giftnest/internal/auth"
	"github.com/giftnest-dev/giftnest/internal/config"
	"github.com/giftnest-dev/giftnest/internal/events"
	"github.com/giftnest-dev/giftnest/internal/handlers"
	"github.com/giftnest-dev/giftnest/internal/logging"
	"github.com/giftnest-dev/giftnest/internal/router"
	"github.com/giftnest-dev/giftnest/internal/services"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading configuration from environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg.LogLevel)

	if err := auth.InitJWTSecret(cfg.JWTSecret); err != nil {
		logger.Fatalf("Failed to initialize JWT secret: %v", err)
	}

	if err := db.ConnectDatabase(cfg.DatabaseURL); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.MigrateDatabase(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	svc := services.New(db.DB, logger, cfg.VisibilityThreshold)
	hub := events.NewHub()

	r := router.NewRouter(router.Deps{
		Auth:        &handlers.AuthHandler{Log: logger, Domain: cfg.Domain},
		Family:      &handlers.FamilyHandler{Svc: svc.Family, Log: logger},
		Wishlist:    &handlers.WishlistHandler{Svc: svc.Wishlist, Vis: svc.Visibility, Hub: hub, Log: logger},
		Reservation: &handlers.ReservationHandler{Svc: svc.Reservation, Hub: hub, Log: logger},
		WS:          &handlers.WSHandler{Hub: hub, Log: logger},
	})

	logger.Infof("giftnest listening on :%s", cfg.Port)

	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
