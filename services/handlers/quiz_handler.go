package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/quizora-labs/quizora_api/dto"
	"github.com/quizora-labs/quizora_api/shared"
)

type QuizHandler struct {
	catalogSvc QuizCatalogServiceInterface
	sessionSvc QuizSessionServiceInterface
}

func NewQuizHandler(catalogSvc QuizCatalogServiceInterface, sessionSvc QuizSessionServiceInterface) *QuizHandler {
	return &QuizHandler{
		catalogSvc: catalogSvc,
		sessionSvc: sessionSvc,
	}
}

func userID(c *fiber.Ctx) string {
	id, _ := c.Locals(shared.UserID).(string)
	return id
}

// @Summary List quizzes
// @Description Get all active quizzes with their question counts
// @Tags quiz
// @Accept json
// @Produce json
// @Success 200 {object} shared.Response{data=dto.QuizListResponse}
// @Router /api/v1/quizzes [get]
func (h *QuizHandler) GetQuizzes(c *fiber.Ctx) error {
	resp, err := h.catalogSvc.GetQuizzes()
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Get quiz details
// @Description Get a quiz with its questions. Correct answers are never included
// @Tags quiz
// @Accept json
// @Produce json
// @Param quizId path string true "Quiz ID"
// @Success 200 {object} shared.Response{data=dto.QuizResponse}
// @Router /api/v1/quizzes/{quizId} [get]
func (h *QuizHandler) GetQuiz(c *fiber.Ctx) error {
	quiz, questions, err := h.catalogSvc.GetQuizDetail(c.Params("quizId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", fiber.Map{
		"quiz":      quiz,
		"questions": questions,
	})
}

// @Summary Start a quiz session
// @Description Start a new attempt, or resume the existing in-progress one
// @Tags quiz
// @Accept json
// @Produce json
// @Param quizId path string true "Quiz ID"
// @Success 201 {object} shared.Response{data=dto.QuizSessionResponse}
// @Router /api/v1/quizzes/{quizId}/start [post]
func (h *QuizHandler) StartQuiz(c *fiber.Ctx) error {
	resp, err := h.sessionSvc.StartQuiz(userID(c), c.Params("quizId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusCreated, "Created", resp)
}

// @Summary Resume a quiz session
// @Description Reload an in-progress session with its saved answers
// @Tags quiz
// @Accept json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 200 {object} shared.Response{data=dto.QuizSessionResponse}
// @Router /api/v1/sessions/{sessionId} [get]
func (h *QuizHandler) ResumeQuiz(c *fiber.Ctx) error {
	resp, err := h.sessionSvc.ResumeQuiz(userID(c), c.Params("sessionId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Submit an answer
// @Description Record an answer and return immediate feedback with the correct answer
// @Tags quiz
// @Accept json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param answerRequest body dto.SubmitAnswerRequest true "Answer submission"
// @Success 200 {object} shared.Response{data=dto.AnswerFeedbackResponse}
// @Router /api/v1/sessions/{sessionId}/answers [post]
func (h *QuizHandler) SubmitAnswer(c *fiber.Ctx) error {
	var req dto.SubmitAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.sessionSvc.SubmitAnswer(userID(c), c.Params("sessionId"), &req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Complete a quiz session
// @Description Finalize the session into its result. Safe to call repeatedly
// @Tags quiz
// @Accept json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 200 {object} shared.Response{data=dto.QuizResultResponse}
// @Router /api/v1/sessions/{sessionId}/complete [post]
func (h *QuizHandler) CompleteQuiz(c *fiber.Ctx) error {
	resp, err := h.sessionSvc.CompleteQuiz(userID(c), c.Params("sessionId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Abandon a quiz session
// @Description Discard an in-progress session without scoring it
// @Tags quiz
// @Accept json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 200 {object} shared.Response
// @Router /api/v1/sessions/{sessionId} [delete]
func (h *QuizHandler) AbandonSession(c *fiber.Ctx) error {
	if err := h.sessionSvc.AbandonSession(userID(c), c.Params("sessionId")); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", nil)
}
