package dto

import "time"

type QuizResponse struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	Subject         string `json:"subject,omitempty"`
	DurationMinutes *int   `json:"duration_minutes,omitempty"`
	XPReward        int    `json:"xp_reward"`
	QuestionCount   int    `json:"question_count"`
}

type QuizListResponse struct {
	Quizzes []QuizResponse `json:"quizzes"`
	Total   int            `json:"total"`
}

// AnswerOptionResponse never carries the correct flag; the key stays
// server-side until feedback time.
type AnswerOptionResponse struct {
	ID           string `json:"id"`
	OptionText   string `json:"option_text"`
	OptionLetter string `json:"option_letter,omitempty"`
}

type QuestionResponse struct {
	ID           string                 `json:"id"`
	QuestionText string                 `json:"question_text"`
	Type         string                 `json:"type"`
	Points       int                    `json:"points"`
	OrderNumber  int                    `json:"order_number"`
	ImageURL     string                 `json:"image_url,omitempty"`
	Options      []AnswerOptionResponse `json:"options,omitempty"`
}

// QuizSessionResponse is returned by both start and resume; SavedAnswers lets
// a client rebuild in-progress state after resume.
type QuizSessionResponse struct {
	SessionID        string             `json:"session_id"`
	QuizID           string             `json:"quiz_id"`
	QuizTitle        string             `json:"quiz_title"`
	TotalQuestions   int                `json:"total_questions"`
	TotalPoints      int                `json:"total_points"`
	DurationMinutes  *int               `json:"duration_minutes,omitempty"`
	StartedAt        time.Time          `json:"started_at"`
	ExpiresAt        *time.Time         `json:"expires_at,omitempty"`
	CurrentScore     int                `json:"current_score"`
	TimeSpentSeconds int                `json:"time_spent_seconds"`
	Questions        []QuestionResponse `json:"questions"`
	SavedAnswers     map[string]string  `json:"saved_answers"`
}

type SubmitAnswerRequest struct {
	QuestionID       string `json:"question_id" validate:"required"`
	Answer           string `json:"answer" validate:"required"`
	TimeSpentSeconds int    `json:"time_spent_seconds" validate:"gte=0"`
}

type AnswerFeedbackResponse struct {
	IsCorrect         bool   `json:"is_correct"`
	CorrectAnswer     string `json:"correct_answer"`
	Explanation       string `json:"explanation,omitempty"`
	PointsEarned      int    `json:"points_earned"`
	AttemptCount      int    `json:"attempt_count"`
	CurrentScore      int    `json:"current_score"`
	QuestionsAnswered int    `json:"questions_answered"`
	TotalQuestions    int    `json:"total_questions"`
}

type QuizResultResponse struct {
	ID               string    `json:"id"`
	SessionID        string    `json:"session_id"`
	QuizID           string    `json:"quiz_id"`
	Score            int       `json:"score"`
	CorrectAnswers   int       `json:"correct_answers"`
	TotalQuestions   int       `json:"total_questions"`
	EarnedPoints     int       `json:"earned_points"`
	TimeSpentMinutes int       `json:"time_spent_minutes"`
	Passed           bool      `json:"passed"`
	XPEarned         int       `json:"xp_earned"`
	Expired          bool      `json:"expired,omitempty"`
	CompletedAt      time.Time `json:"completed_at"`
}

// ExpiredSessionInfo rides on the Expired error so the caller still sees how
// far the attempt got.
type ExpiredSessionInfo struct {
	SessionID    string `json:"session_id"`
	ScorePercent int    `json:"score_percent"`
	EarnedPoints int    `json:"earned_points"`
}
