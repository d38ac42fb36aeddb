package services

import (
	"strings"

	"github.com/quizora-labs/quizora_api/model"
	"github.com/quizora-labs/quizora_api/shared"
)

// EvaluateAnswer decides correctness of one submitted value against a
// question's answer key and returns the points it earns. Pure; never touches
// session or ledger state. Unrecognized question types evaluate to incorrect
// with zero points.
func EvaluateAnswer(question *model.Question, options []model.AnswerOption, submitted string) (bool, int) {
	correct := false

	switch question.Type {
	case shared.QuestionTypeMultipleChoice:
		if opt := resolveOption(options, submitted); opt != nil {
			correct = opt.IsCorrect
		}

	case shared.QuestionTypeTrueFalse:
		for _, opt := range options {
			if opt.IsCorrect && strings.EqualFold(opt.OptionText, strings.TrimSpace(submitted)) {
				correct = true
				break
			}
		}

	case shared.QuestionTypeShortAnswer:
		trimmed := strings.TrimSpace(submitted)
		for _, opt := range options {
			if opt.IsCorrect && strings.EqualFold(opt.OptionText, trimmed) {
				correct = true
				break
			}
		}
	}

	if !correct {
		return false, 0
	}
	return true, questionPoints(question)
}

// resolveOption matches a submitted value to one of the question's options,
// by option id first, then by letter.
func resolveOption(options []model.AnswerOption, submitted string) *model.AnswerOption {
	submitted = strings.TrimSpace(submitted)
	for i := range options {
		if options[i].ID == submitted {
			return &options[i]
		}
	}
	for i := range options {
		if options[i].OptionLetter != "" && strings.EqualFold(options[i].OptionLetter, submitted) {
			return &options[i]
		}
	}
	return nil
}

// CorrectAnswerText renders the canonical correct answer for feedback,
// "A. Paris" style when a letter exists.
func CorrectAnswerText(options []model.AnswerOption) string {
	for _, opt := range options {
		if opt.IsCorrect {
			if opt.OptionLetter != "" {
				return opt.OptionLetter + ". " + opt.OptionText
			}
			return opt.OptionText
		}
	}
	return ""
}

func questionPoints(question *model.Question) int {
	if question.Points <= 0 {
		return 1
	}
	return question.Points
}
