package services

import (
	goContext "context"
	"fmt"
	"time"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"

	"github.com/quizora-labs/quizora_api/dto"
	"github.com/quizora-labs/quizora_api/model"
	"github.com/quizora-labs/quizora_api/shared"
)

// QuizCatalogService resolves quiz metadata, question definitions and answer
// keys. Reads go through a short-lived Redis cache; the database stays the
// source of truth.
type QuizCatalogService struct {
	context.DefaultService

	store    *Store
	redisSvc *RedisService
}

const QUIZ_CATALOG_SVC = "quiz_catalog_svc"

const quizBundleCacheTTL = 10 * time.Minute

func (svc QuizCatalogService) Id() string {
	return QUIZ_CATALOG_SVC
}

func (svc *QuizCatalogService) Start() error {
	svc.store = svc.Service(databaseBackend()).(StoreProvider).Store()
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	return nil
}

// QuizBundle is a quiz with its full question set and answer keys, the unit
// the session engine works against.
type QuizBundle struct {
	Quiz      model.Quiz                      `json:"quiz"`
	Questions []model.Question                `json:"questions"`
	Options   map[string][]model.AnswerOption `json:"options"`
}

// TotalPoints sums the obtainable points over all questions.
func (b *QuizBundle) TotalPoints() int {
	total := 0
	for i := range b.Questions {
		total += questionPoints(&b.Questions[i])
	}
	return total
}

func (b *QuizBundle) Question(questionID string) *model.Question {
	for i := range b.Questions {
		if b.Questions[i].ID == questionID {
			return &b.Questions[i]
		}
	}
	return nil
}

func (svc *QuizCatalogService) GetQuizzes() (*dto.QuizListResponse, error) {
	quizzes, err := svc.store.GetActiveQuizzes()
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load quizzes")
	}

	responses := make([]dto.QuizResponse, len(quizzes))
	for i, quiz := range quizzes {
		count, err := svc.store.CountQuizQuestions(quiz.ID)
		if err != nil {
			return nil, shared.NewInternalError(err, "Failed to load quizzes")
		}
		responses[i] = dto.QuizResponse{
			ID:              quiz.ID,
			Title:           quiz.Title,
			Description:     quiz.Description,
			Subject:         quiz.Subject,
			DurationMinutes: quiz.DurationMinutes,
			XPReward:        quiz.XPReward,
			QuestionCount:   int(count),
		}
	}

	return &dto.QuizListResponse{Quizzes: responses, Total: len(responses)}, nil
}

// GetQuizBundle loads a quiz with questions and answer keys regardless of
// active flag (an in-flight session keeps working after a quiz is retired).
func (svc *QuizCatalogService) GetQuizBundle(quizID string) (*QuizBundle, error) {
	cacheKey := fmt.Sprintf("quiz:bundle:%s", quizID)

	if svc.redisSvc != nil {
		var cached QuizBundle
		if err := svc.redisSvc.GetJSON(goContext.Background(), cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	quiz, err := svc.store.GetQuiz(quizID)
	if err != nil {
		if svc.store.IsNotFound(err) {
			return nil, shared.NewNotFoundError(err, "Quiz not found")
		}
		return nil, shared.NewInternalError(svc.store.HandleError(err), "Failed to load quiz")
	}

	questions, err := svc.store.GetQuizQuestions(quizID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load quiz questions")
	}

	options := make(map[string][]model.AnswerOption, len(questions))
	for _, question := range questions {
		opts, err := svc.store.GetQuestionOptions(question.ID)
		if err != nil {
			return nil, shared.NewInternalError(err, "Failed to load answer options")
		}
		options[question.ID] = opts
	}

	bundle := &QuizBundle{Quiz: *quiz, Questions: questions, Options: options}

	if svc.redisSvc != nil {
		if err := svc.redisSvc.Set(goContext.Background(), cacheKey, bundle, quizBundleCacheTTL); err != nil {
			log.WithError(err).WithField("quiz_id", quizID).Warn("Failed to cache quiz bundle")
		}
	}

	return bundle, nil
}

// GetActiveQuizBundle is the start-path lookup: inactive quizzes are treated
// the same as missing ones.
func (svc *QuizCatalogService) GetActiveQuizBundle(quizID string) (*QuizBundle, error) {
	bundle, err := svc.GetQuizBundle(quizID)
	if err != nil {
		return nil, err
	}
	if !bundle.Quiz.IsActive {
		return nil, shared.NewNotFoundError(fmt.Errorf("quiz %s is inactive", quizID), "Quiz not found")
	}
	return bundle, nil
}

func (svc *QuizCatalogService) GetQuizDetail(quizID string) (*dto.QuizResponse, []dto.QuestionResponse, error) {
	bundle, err := svc.GetActiveQuizBundle(quizID)
	if err != nil {
		return nil, nil, err
	}

	quizResp := dto.QuizResponse{
		ID:              bundle.Quiz.ID,
		Title:           bundle.Quiz.Title,
		Description:     bundle.Quiz.Description,
		Subject:         bundle.Quiz.Subject,
		DurationMinutes: bundle.Quiz.DurationMinutes,
		XPReward:        bundle.Quiz.XPReward,
		QuestionCount:   len(bundle.Questions),
	}

	return &quizResp, mapQuestions(bundle), nil
}

// mapQuestions strips answer keys before anything leaves the server.
func mapQuestions(bundle *QuizBundle) []dto.QuestionResponse {
	questions := make([]dto.QuestionResponse, len(bundle.Questions))
	for i, question := range bundle.Questions {
		resp := dto.QuestionResponse{
			ID:           question.ID,
			QuestionText: question.QuestionText,
			Type:         question.Type,
			Points:       questionPoints(&question),
			OrderNumber:  question.OrderNumber,
			ImageURL:     question.ImageURL,
		}

		if question.Type == shared.QuestionTypeMultipleChoice {
			opts := bundle.Options[question.ID]
			resp.Options = make([]dto.AnswerOptionResponse, len(opts))
			for j, opt := range opts {
				resp.Options[j] = dto.AnswerOptionResponse{
					ID:           opt.ID,
					OptionText:   opt.OptionText,
					OptionLetter: opt.OptionLetter,
				}
			}
		}

		questions[i] = resp
	}
	return questions
}
