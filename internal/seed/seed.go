// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"strings"
	"time"

	"trackback/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options configuration for the seeder.
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

var itemTitles = map[models.ItemType][]string{
	models.ItemPhone:    {"iPhone 13", "Samsung Galaxy S23", "Tecno Spark 10", "Google Pixel 7", "Infinix Note 30"},
	models.ItemLaptop:   {"MacBook Pro 14", "Lenovo ThinkPad X1", "HP EliteBook", "Dell XPS 13"},
	models.ItemPurse:    {"leather purse", "beaded purse", "clutch purse"},
	models.ItemWallet:   {"leather wallet", "canvas wallet", "cardholder wallet"},
	models.ItemIDCard:   {"national ID card", "student ID card", "staff badge"},
	models.ItemDocument: {"passport", "logbook", "title deed", "birth certificate"},
	models.ItemPet:      {"tabby cat", "German shepherd", "parrot"},
	models.ItemBag:      {"backpack", "laptop bag", "gym bag", "handbag"},
	models.ItemOther:    {"umbrella", "set of keys", "wrist watch", "pair of glasses"},
}

var locations = []string{
	"Nairobi CBD", "Westlands", "Kilimani", "Thika Road Mall", "Ngong Road",
	"Karen", "Embakasi", "Kasarani", "Mombasa Road", "Gigiri",
}

// Seeder populates the database with realistic development data.
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a seeder bound to the given database.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// ClearAll wipes every seeded table.
func (s *Seeder) ClearAll() error {
	log.Println("🗑️  Clearing existing data...")
	sql := `TRUNCATE TABLE found_interactions, support_messages, posts, users RESTART IDENTITY CASCADE;`
	return s.db.Exec(sql).Error
}

// SeedUsers creates n accounts. Every account goes through the same
// sync path the client uses, so none of them has a local password.
func (s *Seeder) SeedUsers(n int) ([]models.User, error) {
	users := make([]models.User, 0, n)
	for i := 0; i < n; i++ {
		person := gofakeit.Person()
		fullName := person.FirstName + " " + person.LastName
		user := models.User{
			Email:         strings.ToLower(fmt.Sprintf("%s.%s%d@example.com", person.FirstName, person.LastName, i)),
			PasswordHash:  models.PasswordSentinel,
			FullName:      fullName,
			PhoneNumber:   gofakeit.Phone(),
			TermsAccepted: true,
			Roles:         models.RoleSet{models.RoleUser},
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user %d: %w", i, err)
		}
		users = append(users, user)
	}
	log.Printf("✓ %d users created", len(users))
	return users, nil
}

// SeedPosts creates n reports spread across the seeded users. Roughly
// two thirds are loss reports, and a tenth are already resolved.
func (s *Seeder) SeedPosts(users []models.User, n int) ([]models.Post, error) {
	if len(users) == 0 {
		return nil, fmt.Errorf("no users to attribute posts to")
	}

	posts := make([]models.Post, 0, n)
	for i := 0; i < n; i++ {
		owner := users[gofakeit.Number(0, len(users)-1)]
		itemType := models.ItemTypes[gofakeit.Number(0, len(models.ItemTypes)-1)]
		names := itemTitles[itemType]
		title := gofakeit.Color() + " " + names[gofakeit.Number(0, len(names)-1)]

		kind := models.KindLost
		if gofakeit.Number(0, 2) == 0 {
			kind = models.KindFound
		}
		status := models.StatusActive
		if gofakeit.Number(0, 9) == 0 {
			status = models.StatusResolved
		}

		post := models.Post{
			Title:        title,
			Description:  gofakeit.Sentence(12),
			Location:     locations[gofakeit.Number(0, len(locations)-1)],
			Date:         time.Now().AddDate(0, 0, -gofakeit.Number(0, 30)),
			ItemType:     itemType,
			Kind:         kind,
			Status:       status,
			UserID:       owner.ID,
			UserName:     owner.FullName,
			UserInitial:  strings.ToUpper(owner.FullName[:1]),
			Color:        gofakeit.Color(),
			ContactPhone: owner.PhoneNumber,
		}
		if itemType == models.ItemPhone || itemType == models.ItemLaptop {
			post.IMEI = gofakeit.Regex(`[0-9]{15}`)
			post.SerialNumber = gofakeit.Regex(`[A-Z0-9]{12}`)
		}
		if itemType == models.ItemIDCard {
			post.IDNumber = gofakeit.Regex(`[0-9]{8}`)
		}

		if err := s.db.Create(&post).Error; err != nil {
			return nil, fmt.Errorf("failed to create post %d: %w", i, err)
		}
		posts = append(posts, post)
	}
	log.Printf("✓ %d posts created", len(posts))
	return posts, nil
}

// SeedClaims files a found-report against roughly a quarter of the
// claimable posts so the owner dashboards have something to show.
func (s *Seeder) SeedClaims(posts []models.Post) (int, error) {
	created := 0
	for _, post := range posts {
		if !post.Claimable() || gofakeit.Number(0, 3) != 0 {
			continue
		}
		claim := models.FoundInteraction{
			PostID:        post.ID,
			FinderName:    gofakeit.Name(),
			FinderContact: strings.ToLower(gofakeit.Email()),
			FinderPhone:   gofakeit.Phone(),
			Message:       gofakeit.Sentence(8),
			Status:        models.ClaimPending,
		}
		if err := s.db.Create(&claim).Error; err != nil {
			return created, fmt.Errorf("failed to create claim for post %d: %w", post.ID, err)
		}
		created++
	}
	log.Printf("✓ %d found-reports filed", created)
	return created, nil
}

// Seed runs the full pipeline with the given options.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("🌱 Seeding %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	s := NewSeeder(db)
	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			log.Println("⚠️  Warning: could not clear all existing data, continuing anyway...")
		}
	}

	users, err := s.SeedUsers(opts.NumUsers)
	if err != nil {
		return err
	}
	posts, err := s.SeedPosts(users, opts.NumPosts)
	if err != nil {
		return err
	}
	if _, err := s.SeedClaims(posts); err != nil {
		return err
	}

	log.Println("🎉 Database seeding completed successfully!")
	return nil
}
