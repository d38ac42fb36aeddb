// model/quiz.go
package model

import "time"

// Quiz is the catalog entry a session is started against.
type Quiz struct {
	ID              string    `json:"id" gorm:"primaryKey"`
	Title           string    `json:"title" gorm:"not null"`
	Description     string    `json:"description" gorm:"type:text"`
	Subject         string    `json:"subject"`
	DurationMinutes *int      `json:"duration_minutes"` // nil means untimed
	XPReward        int       `json:"xp_reward" gorm:"default:100"`
	IsActive        bool      `json:"is_active" gorm:"default:true"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Question struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	QuizID       string    `json:"quiz_id" gorm:"not null;index"`
	QuestionText string    `json:"question_text" gorm:"type:text;not null"`
	Type         string    `json:"type"` // MULTIPLE_CHOICE, TRUE_FALSE, SHORT_ANSWER
	Points       int       `json:"points" gorm:"default:1"`
	OrderNumber  int       `json:"order_number"`
	Explanation  string    `json:"explanation" gorm:"type:text"`
	ImageURL     string    `json:"image_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relationship
	Quiz Quiz `json:"-" gorm:"foreignKey:QuizID"`
}

// AnswerOption doubles as the correct-answer key: for MULTIPLE_CHOICE the
// flagged option is the right choice, for TRUE_FALSE and SHORT_ANSWER the
// flagged options hold the accepted answer strings.
type AnswerOption struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	QuestionID   string    `json:"question_id" gorm:"not null;index"`
	OptionText   string    `json:"option_text" gorm:"type:text;not null"`
	OptionLetter string    `json:"option_letter"` // A, B, C, D
	IsCorrect    bool      `json:"is_correct" gorm:"not null;default:false"`
	OrderNumber  int       `json:"order_number"`
	CreatedAt    time.Time `json:"created_at"`
}
