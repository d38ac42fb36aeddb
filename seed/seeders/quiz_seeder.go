package seeders

import (
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quizora-labs/quizora_api/model"
	"github.com/quizora-labs/quizora_api/shared"
)

// QuizSeeder loads a couple of sample quizzes with every question type.
type QuizSeeder struct {
	db *gorm.DB
}

func NewQuizSeeder(db *gorm.DB) *QuizSeeder {
	return &QuizSeeder{db: db}
}

type seedOption struct {
	text    string
	letter  string
	correct bool
}

type seedQuestion struct {
	text        string
	qType       string
	points      int
	explanation string
	options     []seedOption
}

type seedQuiz struct {
	title           string
	description     string
	subject         string
	durationMinutes *int
	xpReward        int
	questions       []seedQuestion
}

func intPtr(v int) *int { return &v }

func (s *QuizSeeder) Seed() error {
	quizzes := []seedQuiz{
		{
			title:           "World Capitals",
			description:     "A quick tour of capital cities",
			subject:         "Geography",
			durationMinutes: intPtr(10),
			xpReward:        100,
			questions: []seedQuestion{
				{
					text: "What is the capital of France?", qType: shared.QuestionTypeMultipleChoice, points: 25,
					explanation: "Paris has been the French capital since 987.",
					options: []seedOption{
						{"Paris", "A", true},
						{"Lyon", "B", false},
						{"Marseille", "C", false},
						{"Nice", "D", false},
					},
				},
				{
					text: "Canberra is the capital of Australia.", qType: shared.QuestionTypeTrueFalse, points: 25,
					explanation: "Sydney is larger, but Canberra is the capital.",
					options: []seedOption{
						{"True", "", true},
						{"False", "", false},
					},
				},
				{
					text: "Name the capital of Japan.", qType: shared.QuestionTypeShortAnswer, points: 25,
					options: []seedOption{
						{"Tokyo", "", true},
					},
				},
				{
					text: "Which city is the capital of Canada?", qType: shared.QuestionTypeMultipleChoice, points: 25,
					options: []seedOption{
						{"Toronto", "A", false},
						{"Ottawa", "B", true},
						{"Vancouver", "C", false},
						{"Montreal", "D", false},
					},
				},
			},
		},
		{
			title:       "Basic Arithmetic",
			description: "Untimed practice quiz",
			subject:     "Math",
			xpReward:    50,
			questions: []seedQuestion{
				{
					text: "7 x 8 = 56", qType: shared.QuestionTypeTrueFalse, points: 1,
					options: []seedOption{
						{"True", "", true},
						{"False", "", false},
					},
				},
				{
					text: "What is 12 + 30?", qType: shared.QuestionTypeShortAnswer, points: 1,
					options: []seedOption{
						{"42", "", true},
					},
				},
			},
		},
	}

	for _, q := range quizzes {
		var existing model.Quiz
		if err := s.db.Where("title = ?", q.title).First(&existing).Error; err == nil {
			log.Printf("Quiz %q already exists, skipping", q.title)
			continue
		}

		if err := s.createQuiz(q); err != nil {
			return err
		}
		log.Printf("Created quiz: %s", q.title)
	}

	return nil
}

func (s *QuizSeeder) createQuiz(q seedQuiz) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		quizID, _ := uuid.NewV7()
		quiz := model.Quiz{
			ID:              quizID.String(),
			Title:           q.title,
			Description:     q.description,
			Subject:         q.subject,
			DurationMinutes: q.durationMinutes,
			XPReward:        q.xpReward,
			IsActive:        true,
		}
		if err := tx.Create(&quiz).Error; err != nil {
			return err
		}

		for i, sq := range q.questions {
			questionID, _ := uuid.NewV7()
			question := model.Question{
				ID:           questionID.String(),
				QuizID:       quiz.ID,
				QuestionText: sq.text,
				Type:         sq.qType,
				Points:       sq.points,
				OrderNumber:  i + 1,
				Explanation:  sq.explanation,
			}
			if err := tx.Create(&question).Error; err != nil {
				return err
			}

			for j, so := range sq.options {
				optionID, _ := uuid.NewV7()
				option := model.AnswerOption{
					ID:           optionID.String(),
					QuestionID:   question.ID,
					OptionText:   so.text,
					OptionLetter: so.letter,
					IsCorrect:    so.correct,
					OrderNumber:  j + 1,
				}
				if err := tx.Create(&option).Error; err != nil {
					return err
				}
			}
		}

		return nil
	})
}
