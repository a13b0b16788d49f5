package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"grievancedesk/backend/internal/audit"
	"grievancedesk/backend/internal/config"
	"grievancedesk/backend/internal/dedupe"
	"grievancedesk/backend/internal/models"
	"grievancedesk/backend/internal/seed"
	"grievancedesk/backend/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	cfg := config.Load()

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})

	storageSvc := storage.NewStorageService(db, rdb)

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <seed|dedupe|verify-audit> [args]")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "seed":
		if err := db.AutoMigrate(
			&models.ComplaintRecord{}, &models.DuplicateGroup{}, &models.GroupMember{},
			&models.Decision{}, &models.AuditRecord{},
		); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		if err := storageSvc.InitAppendOnlyGuards(); err != nil {
			log.Fatalf("Failed to install append-only guards: %v", err)
		}
		if err := seed.Run(storageSvc, cfg.DefaultRegion); err != nil {
			log.Fatalf("Error seeding database: %v", err)
		}

	case "dedupe":
		threshold := cfg.Threshold
		if len(os.Args) > 2 {
			v, err := strconv.ParseFloat(os.Args[2], 64)
			if err != nil || v <= 0 || v > 1 {
				fmt.Println("Invalid threshold. Provide a number in (0,1].")
				os.Exit(1)
			}
			threshold = v
		}
		summary, err := dedupe.NewEngine(storageSvc).Run(context.Background(), threshold)
		if err != nil {
			log.Fatalf("Error running dedupe: %v", err)
		}
		fmt.Printf("Run %s: %d records, %d candidate pairs, %d edges, %d groups created\n",
			summary.RunID, summary.Records, summary.CandidatePairs, summary.Edges, summary.GroupsCreated)

	case "verify-audit":
		recs, err := storageSvc.ExportAudit()
		if err != nil {
			log.Fatalf("Error exporting audit log: %v", err)
		}
		if err := audit.Verify(recs); err != nil {
			log.Fatalf("TAMPER DETECTED: %v", err)
		}
		fmt.Printf("Audit chain OK: %d records verified.\n", len(recs))

	default:
		fmt.Printf("Unknown command %q. Usage: admin <seed|dedupe|verify-audit>\n", os.Args[1])
		os.Exit(1)
	}
}
