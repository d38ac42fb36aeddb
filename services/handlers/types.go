package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/quizora-labs/quizora_api/dto"
)

type AuthServiceInterface interface {
	Login(req *dto.LoginRequest) (*dto.LoginResponse, error)
	RequiredAuth() fiber.Handler
}

type QuizCatalogServiceInterface interface {
	GetQuizzes() (*dto.QuizListResponse, error)
	GetQuizDetail(quizID string) (*dto.QuizResponse, []dto.QuestionResponse, error)
}

type QuizSessionServiceInterface interface {
	StartQuiz(userID, quizID string) (*dto.QuizSessionResponse, error)
	ResumeQuiz(userID, sessionID string) (*dto.QuizSessionResponse, error)
	SubmitAnswer(userID, sessionID string, req *dto.SubmitAnswerRequest) (*dto.AnswerFeedbackResponse, error)
	CompleteQuiz(userID, sessionID string) (*dto.QuizResultResponse, error)
	AbandonSession(userID, sessionID string) error
}

type ProgressServiceInterface interface {
	AddXp(userID string, req *dto.AddXpRequest) (*dto.AddXpResponse, error)
	GetUserProgress(userID string) (*dto.UserProgressResponse, error)
	GetLevelInfo(userID string) (*dto.LevelInfoResponse, error)
	GetWeeklyProgress(userID string) (*dto.WeeklyProgressResponse, error)
}
