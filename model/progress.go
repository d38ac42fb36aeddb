// model/progress.go
package model

import "time"

// UserProgress is the per-user gamification ledger, created lazily on first
// activity and updated exactly once per finalized quiz attempt.
type UserProgress struct {
	ID                    string     `json:"id" gorm:"primaryKey"`
	UserID                string     `json:"user_id" gorm:"not null;uniqueIndex"`
	TotalXP               int        `json:"total_xp" gorm:"default:0"`
	CurrentLevel          int        `json:"current_level" gorm:"default:1"`
	QuizCompleted         int        `json:"quiz_completed" gorm:"default:0"`
	QuizSucceeded         int        `json:"quiz_succeeded" gorm:"default:0"`
	TotalStudyTimeMinutes int        `json:"total_study_time_minutes" gorm:"default:0"`
	AverageSuccessRate    float64    `json:"average_success_rate" gorm:"default:0"`
	CurrentStreak         int        `json:"current_streak" gorm:"default:0"`
	LongestStreak         int        `json:"longest_streak" gorm:"default:0"`
	LastActivityDate      *time.Time `json:"last_activity_date"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// AddXP raises total XP and recomputes the level. Levels are flat 1000 XP
// bands and only ever increase.
func (p *UserProgress) AddXP(xp int) {
	p.TotalXP += xp
	newLevel := (p.TotalXP / 1000) + 1
	if newLevel > p.CurrentLevel {
		p.CurrentLevel = newLevel
	}
}

// UpdateSuccessRate recomputes the running pass percentage.
func (p *UserProgress) UpdateSuccessRate() {
	if p.QuizCompleted > 0 {
		p.AverageSuccessRate = float64(p.QuizSucceeded) * 100.0 / float64(p.QuizCompleted)
	}
}

func (p *UserProgress) XPForNextLevel() int {
	return p.CurrentLevel * 1000
}

func (p *UserProgress) XPProgressInCurrentLevel() int {
	return p.TotalXP % 1000
}

func (p *UserProgress) ProgressPercentage() float64 {
	return float64(p.XPProgressInCurrentLevel()) * 100.0 / 1000
}
