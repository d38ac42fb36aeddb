package main

import (
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/quizora-labs/quizora_api/seed/seeders"
	"github.com/quizora-labs/quizora_api/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	var (
		seedType = flag.String("type", "all", "Type of seeding: all, users, quizzes")
		dbPath   = flag.String("db", "", "Database path (overrides DB_DATABASE env var)")
		help     = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	databasePath := *dbPath
	if databasePath == "" {
		databasePath = os.Getenv("DB_DATABASE")
		if databasePath == "" {
			databasePath = "quizora.db"
		}
	}

	db, err := gorm.Open(sqlite.Open(databasePath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Printf("Connected to database: %s", databasePath)

	if err := db.AutoMigrate(services.Models()...); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	mainSeeder := seeders.NewMainSeeder(db)

	switch *seedType {
	case "all":
		log.Println("Running complete database seeding...")
		err = mainSeeder.SeedAll()
	case "users":
		log.Println("Seeding users...")
		err = mainSeeder.SeedUsers()
	case "quizzes":
		log.Println("Seeding quizzes...")
		err = mainSeeder.SeedQuizzes()
	default:
		log.Fatalf("Unknown seed type: %s", *seedType)
	}

	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Seeding completed successfully")
}

func showHelp() {
	log.Println("Usage: seed [-type all|users|quizzes] [-db path]")
	log.Println("  -type  what to seed (default all)")
	log.Println("  -db    sqlite database path (default DB_DATABASE or quizora.db)")
}
