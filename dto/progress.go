package dto

import "time"

type AddXpRequest struct {
	XPAmount int    `json:"xp_amount" validate:"required,min=1"`
	Reason   string `json:"reason,omitempty"`
	Source   string `json:"source,omitempty"` // QUIZ, ACHIEVEMENT, ...
}

type AddXpResponse struct {
	XPAdded                  int     `json:"xp_added"`
	TotalXP                  int     `json:"total_xp"`
	CurrentLevel             int     `json:"current_level"`
	LevelTitle               string  `json:"level_title"`
	XPForNextLevel           int     `json:"xp_for_next_level"`
	XPProgressInCurrentLevel int     `json:"xp_progress_in_current_level"`
	ProgressPercentage       float64 `json:"progress_percentage"`
	LeveledUp                bool    `json:"leveled_up"`
	NewLevel                 int     `json:"new_level,omitempty"`
	Message                  string  `json:"message,omitempty"`
}

type UserProgressResponse struct {
	UserID                   string     `json:"user_id"`
	TotalXP                  int        `json:"total_xp"`
	CurrentLevel             int        `json:"current_level"`
	LevelTitle               string     `json:"level_title"`
	XPForNextLevel           int        `json:"xp_for_next_level"`
	XPProgressInCurrentLevel int        `json:"xp_progress_in_current_level"`
	ProgressPercentage       float64    `json:"progress_percentage"`
	QuizCompleted            int        `json:"quiz_completed"`
	QuizSucceeded            int        `json:"quiz_succeeded"`
	AverageSuccessRate       float64    `json:"average_success_rate"`
	TotalStudyTimeMinutes    int        `json:"total_study_time_minutes"`
	StudyTimeFormatted       string     `json:"study_time_formatted"`
	CurrentStreak            int        `json:"current_streak"`
	LongestStreak            int        `json:"longest_streak"`
	LastActivityDate         *time.Time `json:"last_activity_date,omitempty"`
}

type LevelInfoResponse struct {
	CurrentLevel             int     `json:"current_level"`
	LevelTitle               string  `json:"level_title"`
	CurrentXP                int     `json:"current_xp"`
	XPForNextLevel           int     `json:"xp_for_next_level"`
	XPProgressInCurrentLevel int     `json:"xp_progress_in_current_level"`
	XPNeeded                 int     `json:"xp_needed"`
	ProgressPercentage       float64 `json:"progress_percentage"`
}

type DailyProgressResponse struct {
	Day              string `json:"day"`
	FullDate         string `json:"full_date"`
	XPEarned         int    `json:"xp_earned"`
	QuizCompleted    int    `json:"quiz_completed"`
	StudyTimeMinutes int    `json:"study_time_minutes"`
	HasActivity      bool   `json:"has_activity"`
}

type WeeklyProgressResponse struct {
	CurrentWeekXP    int                     `json:"current_week_xp"`
	LastWeekXP       int                     `json:"last_week_xp"`
	ChangePercentage float64                 `json:"change_percentage"`
	DailyProgress    []DailyProgressResponse `json:"daily_progress"`
}
