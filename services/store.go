package services

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/quizora-labs/quizora_api/model"
)

// Store wraps a gorm connection with the entity accessors the engine uses.
// Both the Postgres and Sqlite services hand out the same Store, so business
// services and tests run against identical query code.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// StoreProvider is the surface business services need from a database
// service. Both PostgresService and SqliteService implement it.
type StoreProvider interface {
	Store() *Store
}

// databaseBackend returns the service id of the configured database backend.
// DB_DRIVER=sqlite selects the embedded database; Postgres is the default.
func databaseBackend() string {
	if os.Getenv("DB_DRIVER") == "sqlite" {
		return SQLITE_SVC
	}
	return POSTGRES_SVC
}

func (s *Store) Db() *gorm.DB {
	return s.db
}

// WithTx returns a Store view scoped to the given transaction.
func (s *Store) WithTx(tx *gorm.DB) *Store {
	return &Store{db: tx}
}

// Transaction runs fn inside a single database transaction, handing it a
// tx-scoped Store.
func (s *Store) Transaction(fn func(tx *Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(s.WithTx(tx))
	})
}

func (s *Store) HandleError(err error) error {
	if err == nil {
		return nil
	}

	var statusCode int
	var errorType string

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		statusCode = http.StatusNotFound
		errorType = "NOT_FOUND"
	case errors.Is(err, gorm.ErrDuplicatedKey):
		statusCode = http.StatusConflict
		errorType = "CONFLICT"
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		statusCode = http.StatusBadRequest
		errorType = "FOREIGN_KEY_VIOLATION"
	case errors.Is(err, gorm.ErrInvalidTransaction):
		statusCode = http.StatusInternalServerError
		errorType = "TRANSACTION_ERROR"
	default:
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") ||
			strings.Contains(err.Error(), "UNIQUE constraint failed") {
			statusCode = http.StatusConflict
			errorType = "UNIQUE_CONSTRAINT"
		} else if strings.Contains(err.Error(), "connection refused") {
			statusCode = http.StatusServiceUnavailable
			errorType = "DATABASE_CONNECTION_ERROR"
		} else {
			statusCode = http.StatusInternalServerError
			errorType = "INTERNAL_ERROR"
		}
	}

	logEntry := log.WithFields(log.Fields{
		"status_code": statusCode,
		"error_type":  errorType,
		"error":       err.Error(),
	})

	if statusCode >= 500 {
		logEntry.Error("Database error occurred")
	} else {
		logEntry.Warn("Database operation failed")
	}

	return fmt.Errorf("%s: %w", errorType, err)
}

func (s *Store) IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func newRowID() string {
	id, _ := uuid.NewV7()
	return id.String()
}

// ==================== USERS ====================

func (s *Store) GetUser(userID string) (*model.User, error) {
	var user model.User
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) GetUserByEmailOrUsername(emailOrUsername string) (*model.User, error) {
	var user model.User
	if err := s.db.Where("email = ? OR username = ?", emailOrUsername, emailOrUsername).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) CreateUser(user *model.User) (*model.User, error) {
	if user.ID == "" {
		user.ID = newRowID()
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, s.HandleError(err)
	}
	return user, nil
}

// ==================== QUIZ CATALOG ====================

func (s *Store) GetQuiz(quizID string) (*model.Quiz, error) {
	var quiz model.Quiz
	if err := s.db.Where("id = ?", quizID).First(&quiz).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (s *Store) GetActiveQuizzes() ([]model.Quiz, error) {
	var quizzes []model.Quiz
	if err := s.db.Where("is_active = ?", true).Order("created_at DESC").Find(&quizzes).Error; err != nil {
		return nil, s.HandleError(err)
	}
	return quizzes, nil
}

func (s *Store) GetQuizQuestions(quizID string) ([]model.Question, error) {
	var questions []model.Question
	if err := s.db.Where("quiz_id = ?", quizID).Order("order_number ASC").Find(&questions).Error; err != nil {
		return nil, s.HandleError(err)
	}
	return questions, nil
}

func (s *Store) CountQuizQuestions(quizID string) (int64, error) {
	var count int64
	if err := s.db.Model(&model.Question{}).Where("quiz_id = ?", quizID).Count(&count).Error; err != nil {
		return 0, s.HandleError(err)
	}
	return count, nil
}

func (s *Store) GetQuestion(questionID string) (*model.Question, error) {
	var question model.Question
	if err := s.db.Where("id = ?", questionID).First(&question).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (s *Store) GetQuestionOptions(questionID string) ([]model.AnswerOption, error) {
	var options []model.AnswerOption
	if err := s.db.Where("question_id = ?", questionID).Order("order_number ASC").Find(&options).Error; err != nil {
		return nil, s.HandleError(err)
	}
	return options, nil
}

func (s *Store) CreateQuiz(quiz *model.Quiz) (*model.Quiz, error) {
	if quiz.ID == "" {
		quiz.ID = newRowID()
	}
	if err := s.db.Create(quiz).Error; err != nil {
		return nil, s.HandleError(err)
	}
	return quiz, nil
}

func (s *Store) CreateQuestion(question *model.Question) (*model.Question, error) {
	if question.ID == "" {
		question.ID = newRowID()
	}
	if err := s.db.Create(question).Error; err != nil {
		return nil, s.HandleError(err)
	}
	return question, nil
}

func (s *Store) CreateAnswerOption(option *model.AnswerOption) (*model.AnswerOption, error) {
	if option.ID == "" {
		option.ID = newRowID()
	}
	if err := s.db.Create(option).Error; err != nil {
		return nil, s.HandleError(err)
	}
	return option, nil
}

// ==================== QUIZ SESSIONS ====================

// GetActiveSession returns the single non-terminal session for (user, quiz),
// or gorm.ErrRecordNotFound.
func (s *Store) GetActiveSession(userID, quizID string) (*model.QuizSession, error) {
	var session model.QuizSession
	err := s.db.Where("user_id = ? AND quiz_id = ? AND is_completed = ?", userID, quizID, false).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Store) GetSession(sessionID string) (*model.QuizSession, error) {
	var session model.QuizSession
	if err := s.db.Where("id = ?", sessionID).First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Store) CreateSession(session *model.QuizSession) (*model.QuizSession, error) {
	if session.ID == "" {
		session.ID = newRowID()
	}
	if err := s.db.Create(session).Error; err != nil {
		return nil, s.HandleError(err)
	}
	return session, nil
}

func (s *Store) UpdateSession(session *model.QuizSession) error {
	session.UpdatedAt = time.Now()
	if err := s.db.Save(session).Error; err != nil {
		return s.HandleError(err)
	}
	return nil
}

func (s *Store) DeleteSession(sessionID string) error {
	if err := s.db.Delete(&model.QuizSession{}, "id = ?", sessionID).Error; err != nil {
		return s.HandleError(err)
	}
	return nil
}

// ==================== USER ANSWERS ====================

func (s *Store) GetSessionAnswers(sessionID string) ([]model.UserAnswer, error) {
	var answers []model.UserAnswer
	if err := s.db.Where("session_id = ?", sessionID).Find(&answers).Error; err != nil {
		return nil, s.HandleError(err)
	}
	return answers, nil
}

func (s *Store) GetSessionAnswer(sessionID, questionID string) (*model.UserAnswer, error) {
	var answer model.UserAnswer
	err := s.db.Where("session_id = ? AND question_id = ?", sessionID, questionID).First(&answer).Error
	if err != nil {
		return nil, err
	}
	return &answer, nil
}

func (s *Store) CreateAnswer(answer *model.UserAnswer) (*model.UserAnswer, error) {
	if answer.ID == "" {
		answer.ID = newRowID()
	}
	if err := s.db.Create(answer).Error; err != nil {
		return nil, s.HandleError(err)
	}
	return answer, nil
}

func (s *Store) UpdateAnswer(answer *model.UserAnswer) error {
	answer.UpdatedAt = time.Now()
	if err := s.db.Save(answer).Error; err != nil {
		return s.HandleError(err)
	}
	return nil
}

func (s *Store) CountSessionAnswers(sessionID string) (int64, error) {
	var count int64
	if err := s.db.Model(&model.UserAnswer{}).Where("session_id = ?", sessionID).Count(&count).Error; err != nil {
		return 0, s.HandleError(err)
	}
	return count, nil
}

// SumSessionPoints recomputes the session score from the full answer set.
func (s *Store) SumSessionPoints(sessionID string) (int, error) {
	var total int64
	err := s.db.Model(&model.UserAnswer{}).
		Where("session_id = ?", sessionID).
		Select("COALESCE(SUM(points_earned), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, s.HandleError(err)
	}
	return int(total), nil
}

func (s *Store) DeleteSessionAnswers(sessionID string) error {
	if err := s.db.Delete(&model.UserAnswer{}, "session_id = ?", sessionID).Error; err != nil {
		return s.HandleError(err)
	}
	return nil
}

// ==================== QUIZ RESULTS ====================

func (s *Store) CreateQuizResult(result *model.QuizResult) (*model.QuizResult, error) {
	if result.ID == "" {
		result.ID = newRowID()
	}
	if err := s.db.Create(result).Error; err != nil {
		return nil, s.HandleError(err)
	}
	return result, nil
}

func (s *Store) GetResultBySession(sessionID string) (*model.QuizResult, error) {
	var result model.QuizResult
	if err := s.db.Where("session_id = ?", sessionID).First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

// GetResultsByUserAndRange returns attempts completed within [from, to).
func (s *Store) GetResultsByUserAndRange(userID string, from, to time.Time) ([]model.QuizResult, error) {
	var results []model.QuizResult
	err := s.db.Where("user_id = ? AND completed_at >= ? AND completed_at < ?", userID, from, to).
		Order("completed_at ASC").Find(&results).Error
	if err != nil {
		return nil, s.HandleError(err)
	}
	return results, nil
}

func (s *Store) GetRecentResults(userID string, limit int) ([]model.QuizResult, error) {
	var results []model.QuizResult
	err := s.db.Where("user_id = ?", userID).
		Order("completed_at DESC").Limit(limit).Find(&results).Error
	if err != nil {
		return nil, s.HandleError(err)
	}
	return results, nil
}

// ==================== USER PROGRESS ====================

func (s *Store) GetUserProgress(userID string) (*model.UserProgress, error) {
	var progress model.UserProgress
	if err := s.db.Where("user_id = ?", userID).First(&progress).Error; err != nil {
		return nil, err
	}
	return &progress, nil
}

func (s *Store) CreateUserProgress(progress *model.UserProgress) (*model.UserProgress, error) {
	if progress.ID == "" {
		progress.ID = newRowID()
	}
	if err := s.db.Create(progress).Error; err != nil {
		return nil, s.HandleError(err)
	}
	return progress, nil
}

func (s *Store) UpdateUserProgress(progress *model.UserProgress) error {
	progress.UpdatedAt = time.Now()
	if err := s.db.Save(progress).Error; err != nil {
		return s.HandleError(err)
	}
	return nil
}

// Models returns every entity the engine migrates.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Quiz{},
		&model.Question{},
		&model.AnswerOption{},
		&model.QuizSession{},
		&model.UserAnswer{},
		&model.QuizResult{},
		&model.UserProgress{},
	}
}
