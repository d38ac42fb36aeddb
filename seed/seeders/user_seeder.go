package seeders

import (
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/quizora-labs/quizora_api/model"
)

// UserSeeder creates demo accounts for local development.
type UserSeeder struct {
	db *gorm.DB
}

func NewUserSeeder(db *gorm.DB) *UserSeeder {
	return &UserSeeder{db: db}
}

func (s *UserSeeder) Seed() error {
	demoUsers := []struct {
		email    string
		username string
		password string
	}{
		{"alice@quizora.dev", "alice", "password123"},
		{"bob@quizora.dev", "bob", "password123"},
	}

	for _, u := range demoUsers {
		var existing model.User
		if err := s.db.Where("username = ?", u.username).First(&existing).Error; err == nil {
			log.Printf("User %s already exists, skipping", u.username)
			continue
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		id, _ := uuid.NewV7()

		user := model.User{
			ID:        id.String(),
			Email:     u.email,
			Username:  u.username,
			Password:  string(hashed),
			IsActive:  true,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}

		if err := s.db.Create(&user).Error; err != nil {
			log.Printf("Error creating user %s: %v", u.username, err)
			return err
		}

		log.Printf("Created user: %s (password: %s)", u.email, u.password)
	}

	return nil
}
