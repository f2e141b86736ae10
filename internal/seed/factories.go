package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"packtrail/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// DefaultPassword is the password every seeded account gets.
const DefaultPassword = "Trailhead1!"

var trailNames = []string{
	"Appalachian Trail", "Pacific Crest Trail", "Continental Divide",
	"John Muir Trail", "Tour du Mont Blanc", "West Highland Way",
	"Kungsleden", "Laugavegur", "Te Araroa", "Camino de Santiago",
	"Tahoe Rim Trail", "Wonderland Trail", "Long Trail", "Colorado Trail",
}

var categoryTemplates = []struct {
	Name  string
	Color string
}{
	{"Shelter", "#2F6F4F"},
	{"Sleep System", "#4A6FA5"},
	{"Cooking", "#C0653B"},
	{"Clothing", "#7B5EA7"},
	{"Electronics", "#3A3A3A"},
	{"First Aid", "#B03A48"},
	{"Water", "#2C7DA0"},
}

var itemTemplates = map[string][]struct {
	Name   string
	Weight float64
	Unit   string
	Worn   bool
}{
	"Shelter": {
		{"Tent", 2.2, models.UnitPound, false},
		{"Stakes", 3.0, models.UnitOunce, false},
		{"Groundsheet", 150, models.UnitGram, false},
	},
	"Sleep System": {
		{"Sleeping bag", 1.9, models.UnitPound, false},
		{"Sleeping pad", 450, models.UnitGram, false},
		{"Pillow", 2.5, models.UnitOunce, false},
	},
	"Cooking": {
		{"Stove", 85, models.UnitGram, false},
		{"Pot", 140, models.UnitGram, false},
		{"Spork", 0.6, models.UnitOunce, false},
		{"Fuel canister", 230, models.UnitGram, false},
	},
	"Clothing": {
		{"Rain jacket", 9.5, models.UnitOunce, false},
		{"Down jacket", 280, models.UnitGram, false},
		{"Hiking shirt", 140, models.UnitGram, true},
		{"Trail shoes", 1.4, models.UnitPound, true},
	},
	"Electronics": {
		{"Headlamp", 3.2, models.UnitOunce, false},
		{"Power bank", 190, models.UnitGram, false},
		{"Phone", 170, models.UnitGram, true},
	},
	"First Aid": {
		{"First aid kit", 110, models.UnitGram, false},
		{"Blister kit", 1.0, models.UnitOunce, false},
	},
	"Water": {
		{"Water filter", 65, models.UnitGram, false},
		{"Bottles", 2.4, models.UnitOunce, false},
	},
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db  *gorm.DB
	rng *rand.Rand
}

// NewFactory creates a Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{db: db, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// CreateUser persists a user with a verified account and a hashed default
// password. Overrides run before the insert.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hashed, err := hashPassword(DefaultPassword)
	if err != nil {
		return nil, err
	}

	username := strings.ToLower(gofakeit.Username())
	units := []string{models.UnitPound, models.UnitKilogram, models.UnitGram, models.UnitOunce}
	user := &models.User{
		Username:     username,
		Email:        fmt.Sprintf("%s@%s", username, gofakeit.DomainName()),
		Password:     hashed,
		WeightUnit:   units[f.rng.Intn(len(units))],
		DistanceUnit: models.DistanceMiles,
		Verified:     true,
	}
	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateTrip persists a trip for user with a realistic date range.
func (f *Factory) CreateTrip(user *models.User, overrides ...func(*models.Trip)) (*models.Trip, error) {
	start := gofakeit.DateRange(time.Now().AddDate(0, -6, 0), time.Now().AddDate(0, 3, 0))
	end := start.AddDate(0, 0, 2+f.rng.Intn(12))

	trip := &models.Trip{
		UserID:    user.ID,
		Name:      trailNames[f.rng.Intn(len(trailNames))],
		About:     gofakeit.Paragraph(1, 2, 8, " "),
		Distance:  float64(20 + f.rng.Intn(180)),
		StartDate: &start,
		EndDate:   &end,
	}
	for _, override := range overrides {
		override(trip)
	}

	if err := f.db.Create(trip).Error; err != nil {
		return nil, err
	}
	return trip, nil
}

// CreateBag persists a bag under trip, filled with a few categories and
// their usual items.
func (f *Factory) CreateBag(trip *models.Trip, overrides ...func(*models.Bag)) (*models.Bag, error) {
	bag := &models.Bag{
		TripID:      trip.ID,
		UserID:      trip.UserID,
		Name:        gofakeit.RandomString([]string{"Base Weight", "Main Pack", "Summit Pack", "Overnight Kit", "Day Pack"}),
		Description: gofakeit.Sentence(10),
		Goal:        fmt.Sprintf("%d lb", 8+f.rng.Intn(20)),
	}
	for _, override := range overrides {
		override(bag)
	}
	if err := f.db.Create(bag).Error; err != nil {
		return nil, err
	}

	numCategories := 3 + f.rng.Intn(len(categoryTemplates)-2)
	for pos, tmpl := range categoryTemplates[:numCategories] {
		category := &models.Category{
			TripID:   trip.ID,
			BagID:    bag.ID,
			UserID:   trip.UserID,
			Name:     tmpl.Name,
			Color:    tmpl.Color,
			Position: pos + 1,
		}
		if err := f.db.Create(category).Error; err != nil {
			return nil, err
		}

		for ipos, it := range itemTemplates[tmpl.Name] {
			item := &models.Item{
				TripID:     trip.ID,
				BagID:      bag.ID,
				CategoryID: category.ID,
				UserID:     trip.UserID,
				Name:       it.Name,
				Qty:        1,
				Weight:     it.Weight,
				WeightUnit: it.Unit,
				Priority:   models.PriorityLow,
				Worn:       it.Worn,
				Position:   ipos + 1,
			}
			if f.rng.Intn(4) == 0 {
				item.Priority = models.PriorityHigh
			}
			if err := f.db.Create(item).Error; err != nil {
				return nil, err
			}
		}
	}

	return bag, nil
}

// CreateArticle persists an admin-authored article.
func (f *Factory) CreateArticle(author *models.User) (*models.Article, error) {
	article := &models.Article{
		UserID: author.ID,
		Title:  gofakeit.Sentence(6),
		Body:   gofakeit.Paragraph(3, 4, 10, "\n\n"),
	}
	if err := f.db.Create(article).Error; err != nil {
		return nil, err
	}
	return article, nil
}

// CreateChangelog persists a release note entry.
func (f *Factory) CreateChangelog(author *models.User) (*models.Changelog, error) {
	entry := &models.Changelog{
		UserID: author.ID,
		Title:  fmt.Sprintf("v%d.%d.%d", 1+f.rng.Intn(2), f.rng.Intn(10), f.rng.Intn(10)),
		Body:   gofakeit.Paragraph(1, 3, 8, "\n"),
	}
	if err := f.db.Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}
