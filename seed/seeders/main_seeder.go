package seeders

import (
	"gorm.io/gorm"
)

// MainSeeder coordinates the individual seeders.
type MainSeeder struct {
	userSeeder *UserSeeder
	quizSeeder *QuizSeeder
}

func NewMainSeeder(db *gorm.DB) *MainSeeder {
	return &MainSeeder{
		userSeeder: NewUserSeeder(db),
		quizSeeder: NewQuizSeeder(db),
	}
}

func (s *MainSeeder) SeedAll() error {
	if err := s.userSeeder.Seed(); err != nil {
		return err
	}
	return s.quizSeeder.Seed()
}

func (s *MainSeeder) SeedUsers() error {
	return s.userSeeder.Seed()
}

func (s *MainSeeder) SeedQuizzes() error {
	return s.quizSeeder.Seed()
}
