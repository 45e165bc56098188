// Command seed fills the database with sample forum content.
package main

import (
	"flag"
	"log"

	"stackit/internal/config"
	"stackit/internal/database"
	"stackit/internal/seed"

	"github.com/joho/godotenv"
)

func main() {
	fake := flag.Int("fake", 0, "Number of generated users to add on top of the fixtures")
	perUser := flag.Int("questions", 2, "Maximum generated questions per user")
	randSeed := flag.Int64("rand-seed", 0, "Seed for generated content (0 = time based)")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	skipFixtures := flag.Bool("no-fixtures", false, "Skip the hand-written sample content")
	flag.Parse()

	_ = godotenv.Load()

	log.Println("🌱 Database Seeder")
	log.Println("==================")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: true})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db)
	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("❌ Cleanup failed: %v", err)
		}
	}

	if !*skipFixtures {
		fixtures, err := seed.LoadFixtures()
		if err != nil {
			log.Fatalf("❌ Loading fixtures failed: %v", err)
		}
		stats, err := s.SeedFixtures(fixtures)
		if err != nil {
			log.Fatalf("❌ Fixture seeding failed: %v", err)
		}
		log.Printf("✓ fixtures: %d users, %d questions, %d answers", stats.Users, stats.Questions, stats.Answers)
	}

	if *fake > 0 {
		stats, err := s.SeedFakeMesh(seed.MeshOptions{Users: *fake, QuestionsPerUser: *perUser, Seed: *randSeed})
		if err != nil {
			log.Fatalf("❌ Generated content failed: %v", err)
		}
		log.Printf("✓ generated: %d users, %d questions, %d answers, %d votes",
			stats.Users, stats.Questions, stats.Answers, stats.Votes)
	}

	if err := database.ResetSequences(db); err != nil {
		log.Fatalf("❌ Sequence reset failed: %v", err)
	}

	log.Println("✨ All done! Your database is now populated with test data.")
	log.Printf("📧 All test users have the password: %s", seed.DefaultPassword)
}
