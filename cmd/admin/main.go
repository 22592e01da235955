// Command main provides admin account management utilities for TrackBack.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"trackback/internal/config"
	"trackback/internal/database"
	"trackback/internal/models"

	"gorm.io/gorm"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/admin create-admin <email> <name>  - Create or promote an admin account")
	fmt.Println("  go run ./cmd/admin create-owner <email> <name>  - Create or promote the owner account")
	fmt.Println("  go run ./cmd/admin demote <email>               - Remove the admin role from an account")
	fmt.Println("  go run ./cmd/admin reset-password <email>       - Clear an admin's password for first-login setup")
	fmt.Println("  go run ./cmd/admin list-admins                  - List all admin accounts")
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	switch os.Args[1] {
	case "create-admin":
		if len(os.Args) < 4 {
			usage()
		}
		createWithRole(db, os.Args[2], os.Args[3], models.RoleAdmin)

	case "create-owner":
		if len(os.Args) < 4 {
			usage()
		}
		createWithRole(db, os.Args[2], os.Args[3], models.RoleOwner)

	case "demote":
		if len(os.Args) < 3 {
			usage()
		}
		demote(db, os.Args[2])

	case "reset-password":
		if len(os.Args) < 3 {
			usage()
		}
		resetPassword(db, os.Args[2])

	case "list-admins":
		listAdmins(db)

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}

func findUser(db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	err := db.Where("email = ?", strings.ToLower(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func createWithRole(db *gorm.DB, email, name string, role models.Role) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := findUser(db, email)
	if err != nil {
		log.Fatalf("Database error: %v", err)
	}

	if user == nil {
		roles := models.RoleSet{models.RoleUser, models.RoleAdmin}
		if role == models.RoleOwner {
			roles = roles.Add(models.RoleOwner)
		}
		user = &models.User{
			Email:        email,
			PasswordHash: models.PasswordSentinel,
			FullName:     name,
			Roles:        roles,
		}
		if err := db.Create(user).Error; err != nil {
			log.Fatalf("Failed to create account: %v", err)
		}
		fmt.Printf("✅ Created %s account for %s (ID: %d)\n", role, user.Email, user.ID)
		fmt.Println("   The password is set on first login via /api/auth/admin/login.")
		return
	}

	if user.Roles.Has(role) {
		fmt.Printf("User %s (ID: %d) already holds %s\n", user.Email, user.ID, role)
		return
	}

	user.Roles = user.Roles.Add(models.RoleAdmin)
	if role == models.RoleOwner {
		user.Roles = user.Roles.Add(models.RoleOwner)
	}
	if err := db.Save(user).Error; err != nil {
		log.Fatalf("Failed to promote user: %v", err)
	}
	fmt.Printf("✅ Promoted %s (ID: %d) to %s\n", user.Email, user.ID, role)
}

func demote(db *gorm.DB, email string) {
	user, err := findUser(db, email)
	if err != nil {
		log.Fatalf("Database error: %v", err)
	}
	if user == nil {
		fmt.Printf("User %s not found\n", email)
		os.Exit(1)
	}

	if user.Roles.Has(models.RoleOwner) {
		fmt.Println("The owner account cannot be demoted")
		os.Exit(1)
	}
	if !user.Roles.Has(models.RoleAdmin) {
		fmt.Printf("User %s (ID: %d) is not an admin\n", user.Email, user.ID)
		return
	}

	user.Roles = user.Roles.Remove(models.RoleAdmin)
	if err := db.Save(user).Error; err != nil {
		log.Fatalf("Failed to demote user: %v", err)
	}
	fmt.Printf("✅ Demoted %s (ID: %d) from admin\n", user.Email, user.ID)
}

func resetPassword(db *gorm.DB, email string) {
	user, err := findUser(db, email)
	if err != nil {
		log.Fatalf("Database error: %v", err)
	}
	if user == nil {
		fmt.Printf("User %s not found\n", email)
		os.Exit(1)
	}
	if !user.Roles.Has(models.RoleAdmin) {
		fmt.Printf("User %s (ID: %d) is not an admin\n", user.Email, user.ID)
		os.Exit(1)
	}

	user.PasswordHash = models.PasswordSentinel
	if err := db.Save(user).Error; err != nil {
		log.Fatalf("Failed to reset password: %v", err)
	}
	fmt.Printf("✅ Password cleared for %s; the next login sets a new one\n", user.Email)
}

func listAdmins(db *gorm.DB) {
	var users []models.User
	if err := db.Find(&users).Error; err != nil {
		log.Fatalf("Failed to fetch users: %v", err)
	}

	fmt.Println("\n📋 Current Admins:")
	fmt.Println("─────────────────────────────────────")
	found := false
	for _, u := range users {
		if !u.Roles.Has(models.RoleAdmin) {
			continue
		}
		found = true
		tier := "ADMIN"
		if u.Roles.Has(models.RoleOwner) {
			tier = "OWNER"
		}
		fmt.Printf("ID: %d | %s | %s | %s\n", u.ID, tier, u.Email, u.FullName)
	}
	if !found {
		fmt.Println("No admins found in the system")
	}
	fmt.Println("─────────────────────────────────────")
}
