// Command seed populates the database with demo data.
package main

import (
	"flag"
	"log"

	"packtrail/internal/config"
	"packtrail/internal/database"
	"packtrail/internal/middleware"
	"packtrail/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 10, "Number of users to create")
	tripsPerUser := flag.Int("trips", 2, "Number of trips per user")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	middleware.InitMiddleware(cfg)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db)

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	if err := s.Run(seed.Options{NumUsers: *numUsers, TripsPerUser: *tripsPerUser}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Seeding complete")
}
