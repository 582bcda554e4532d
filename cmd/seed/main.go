package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"

	"github.com/alexsergeyev/skillforge/config"
	"github.com/alexsergeyev/skillforge/database"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	env, err := config.Get()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	store, err := database.StartGORM(env)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	separator := strings.Repeat("=", 60)
	fmt.Println(separator)
	fmt.Println("SkillForge - Database Seeding")
	fmt.Println(separator)
	fmt.Println()

	if err := database.NewSeeder(store.DB(), env).SeedAll(); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	fmt.Println()
	fmt.Println(separator)
	fmt.Println("🎉 Seeding completed successfully!")
	fmt.Println(separator)
}
