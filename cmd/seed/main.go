package main

import (
	"flag"
	"log"

	"biling/internal/config"
	"biling/internal/database"
	"biling/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "number of users to create")
	numPosts := flag.Int("posts", 100, "number of posts to create")
	clean := flag.Bool("clean", false, "delete existing rows before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Run(db, seed.Options{
		NumUsers:    *numUsers,
		NumPosts:    *numPosts,
		ShouldClean: *clean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Seeding complete")
}
