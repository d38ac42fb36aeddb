// model/session.go
package model

import "time"

// QuizSession is one in-progress or finished attempt at a quiz.
// At most one non-completed session exists per (user, quiz); once
// IsCompleted or IsExpired is set the row is never mutated again.
type QuizSession struct {
	ID                   string     `json:"id" gorm:"primaryKey"`
	UserID               string     `json:"user_id" gorm:"not null;index:idx_session_user_quiz"`
	QuizID               string     `json:"quiz_id" gorm:"not null;index:idx_session_user_quiz"`
	StartedAt            time.Time  `json:"started_at" gorm:"not null"`
	ExpiresAt            *time.Time `json:"expires_at"`
	CompletedAt          *time.Time `json:"completed_at"`
	CurrentQuestionIndex int        `json:"current_question_index" gorm:"default:0"`
	TimeSpentSeconds     int        `json:"time_spent_seconds" gorm:"default:0"`
	CurrentScore         int        `json:"current_score" gorm:"default:0"`
	TotalPointsPossible  int        `json:"total_points_possible" gorm:"default:0"`
	IsCompleted          bool       `json:"is_completed" gorm:"default:false"`
	IsExpired            bool       `json:"is_expired" gorm:"default:false"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// Terminal reports whether the session can still be mutated.
func (s *QuizSession) Terminal() bool {
	return s.IsCompleted || s.IsExpired
}

// PastExpiry reports whether the time limit elapsed. Untimed sessions never
// expire.
func (s *QuizSession) PastExpiry(now time.Time) bool {
	return s.ExpiresAt != nil && now.After(*s.ExpiresAt)
}

// UserAnswer is the single response row per (session, question).
// Resubmission overwrites it in place, it never appends.
type UserAnswer struct {
	ID               string    `json:"id" gorm:"primaryKey"`
	SessionID        string    `json:"session_id" gorm:"not null;uniqueIndex:idx_answer_session_question"`
	QuestionID       string    `json:"question_id" gorm:"not null;uniqueIndex:idx_answer_session_question"`
	UserAnswer       string    `json:"user_answer" gorm:"type:text"`
	IsCorrect        bool      `json:"is_correct"`
	PointsEarned     int       `json:"points_earned" gorm:"default:0"`
	TimeSpentSeconds int       `json:"time_spent_seconds"`
	AttemptCount     int       `json:"attempt_count" gorm:"default:1"`
	AnsweredAt       time.Time `json:"answered_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// QuizResult is the immutable outcome of one finalized session. SessionID is
// unique so re-finalizing returns the existing row instead of inserting a
// duplicate.
type QuizResult struct {
	ID               string    `json:"id" gorm:"primaryKey"`
	SessionID        string    `json:"session_id" gorm:"not null;uniqueIndex"`
	UserID           string    `json:"user_id" gorm:"not null;index"`
	QuizID           string    `json:"quiz_id" gorm:"not null;index"`
	Score            int       `json:"score"` // percentage 0-100
	CorrectAnswers   int       `json:"correct_answers"`
	TotalQuestions   int       `json:"total_questions"`
	EarnedPoints     int       `json:"earned_points"`
	TimeSpentMinutes int       `json:"time_spent_minutes"`
	Passed           bool      `json:"passed"`
	XPEarned         int       `json:"xp_earned"`
	CompletedAt      time.Time `json:"completed_at" gorm:"not null;index"`
	CreatedAt        time.Time `json:"created_at"`
}
