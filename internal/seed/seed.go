// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"packtrail/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configure the seeder.
type Options struct {
	NumUsers     int
	TripsPerUser int
	ShouldClean  bool
}

// Seeder creates demo data for local development.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	rng     *rand.Rand
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{
		db:      db,
		factory: NewFactory(db),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll removes all seeded rows. Deletion order respects foreign keys.
func (s *Seeder) ClearAll() error {
	tables := []interface{}{
		&models.Item{},
		&models.Category{},
		&models.Bag{},
		&models.Trip{},
		&models.BugReport{},
		&models.Changelog{},
		&models.Article{},
		&models.User{},
	}
	for _, table := range tables {
		if err := s.db.Unscoped().Where("1 = 1").Delete(table).Error; err != nil {
			return fmt.Errorf("clear %T: %w", table, err)
		}
	}
	log.Println("database cleared")
	return nil
}

// Run seeds users with trips, bags, categories and items, plus a handful of
// articles and changelog entries from an admin account.
func (s *Seeder) Run(opts Options) error {
	numUsers := opts.NumUsers
	if numUsers <= 0 {
		numUsers = 10
	}
	tripsPerUser := opts.TripsPerUser
	if tripsPerUser <= 0 {
		tripsPerUser = 2
	}

	admin, err := s.factory.CreateUser(func(u *models.User) {
		u.Username = "trailadmin"
		u.Email = "admin@packtrail.app"
		u.IsAdmin = true
	})
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := s.factory.CreateArticle(admin); err != nil {
			return fmt.Errorf("create article: %w", err)
		}
		if _, err := s.factory.CreateChangelog(admin); err != nil {
			return fmt.Errorf("create changelog: %w", err)
		}
	}

	for i := 0; i < numUsers; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			return fmt.Errorf("create user %d: %w", i, err)
		}

		for j := 0; j < tripsPerUser; j++ {
			trip, err := s.factory.CreateTrip(user)
			if err != nil {
				return fmt.Errorf("create trip for user %d: %w", user.ID, err)
			}

			numBags := 1 + s.rng.Intn(2)
			for k := 0; k < numBags; k++ {
				// Roughly a third of seeded bags are listed publicly.
				listed := s.rng.Intn(3) == 0
				if _, err := s.factory.CreateBag(trip, func(b *models.Bag) {
					b.ExploreBags = listed
					if listed {
						b.Likes = s.rng.Intn(40)
					}
				}); err != nil {
					return fmt.Errorf("create bag for trip %d: %w", trip.ID, err)
				}
			}
		}
	}

	log.Printf("seeded %d users with %d trips each", numUsers, tripsPerUser)
	return nil
}

// hashPassword is shared by the factory; every seeded account uses the same
// development password.
func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
