package main

import (
	"log"
	"net/http"
	"os"

	"sketch-party/internal/config"
	"sketch-party/internal/db"
	"sketch-party/internal/server"

	"gorm.io/gorm"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg := config.Load()

	var conn *gorm.DB
	if os.Getenv("DATABASE_URL") != "" {
		opened, err := db.Open()
		if err != nil {
			log.Fatalf("database open failed: %v", err)
		}
		if err := db.ConfigurePool(opened, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetimeSeconds, cfg.DBConnMaxIdleTimeSeconds); err != nil {
			log.Fatalf("database pool setup failed: %v", err)
		}
		if err := db.Migrate(opened); err != nil {
			log.Fatalf("database migration failed: %v", err)
		}
		conn = opened
	} else {
		log.Println("DATABASE_URL not set, audit trail disabled")
	}

	srv := server.New(conn, cfg)
	log.Printf("sketch-party server listening on %s", cfg.Addr())
	if err := http.ListenAndServe(cfg.Addr(), srv.Handler()); err != nil {
		log.Fatal(err)
	}
}
