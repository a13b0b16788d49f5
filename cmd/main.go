package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"grievancedesk/backend/internal/api/handler"
	"grievancedesk/backend/internal/config"
	"grievancedesk/backend/internal/dedupe"
	"grievancedesk/backend/internal/models"
	"grievancedesk/backend/internal/resolution"
	"grievancedesk/backend/internal/storage"
)

func setupDependencies(cfg *config.Config) (*gorm.DB, *redis.Client) {
	// 1. PostgreSQL
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	// 2. Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	// 3. Migrations
	err = db.AutoMigrate(
		&models.ComplaintRecord{},
		&models.DuplicateGroup{},
		&models.GroupMember{},
		&models.Decision{},
		&models.AuditRecord{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting GrievanceDesk Backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	cfg := config.Load()

	// 1. Dependencies
	db, rdb := setupDependencies(cfg)
	s := storage.NewStorageService(db, rdb)
	if err := s.InitAppendOnlyGuards(); err != nil {
		log.Fatalf("Failed to install append-only guards: %v", err)
	}

	// 2. Core services
	engine := dedupe.NewEngine(s)
	resolver := resolution.NewService(s)

	// 3. Gin routing
	r := gin.Default()
	h := handler.NewHandler(s, engine, resolver, cfg)
	h.RegisterRoutes(r)

	server := &http.Server{
		Addr:           cfg.ListenAddr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
