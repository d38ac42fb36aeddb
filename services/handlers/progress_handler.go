package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/quizora-labs/quizora_api/dto"
	"github.com/quizora-labs/quizora_api/shared"
)

type ProgressHandler struct {
	progressSvc ProgressServiceInterface
}

func NewProgressHandler(progressSvc ProgressServiceInterface) *ProgressHandler {
	return &ProgressHandler{
		progressSvc: progressSvc,
	}
}

// @Summary Get user progress
// @Description Get the full progress ledger: XP, level, streaks and quiz stats
// @Tags progress
// @Accept json
// @Produce json
// @Success 200 {object} shared.Response{data=dto.UserProgressResponse}
// @Router /api/v1/progress [get]
func (h *ProgressHandler) GetProgress(c *fiber.Ctx) error {
	resp, err := h.progressSvc.GetUserProgress(userID(c))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Get level info
// @Description Get current level, title and XP needed for the next level
// @Tags progress
// @Accept json
// @Produce json
// @Success 200 {object} shared.Response{data=dto.LevelInfoResponse}
// @Router /api/v1/progress/level [get]
func (h *ProgressHandler) GetLevelInfo(c *fiber.Ctx) error {
	resp, err := h.progressSvc.GetLevelInfo(userID(c))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Get weekly progress
// @Description Get the Monday-to-Sunday activity report with week-over-week change
// @Tags progress
// @Accept json
// @Produce json
// @Success 200 {object} shared.Response{data=dto.WeeklyProgressResponse}
// @Router /api/v1/progress/weekly [get]
func (h *ProgressHandler) GetWeeklyProgress(c *fiber.Ctx) error {
	resp, err := h.progressSvc.GetWeeklyProgress(userID(c))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Add XP
// @Description Grant XP outside the quiz flow, e.g. for achievements
// @Tags progress
// @Accept json
// @Produce json
// @Param addXpRequest body dto.AddXpRequest true "XP grant"
// @Success 200 {object} shared.Response{data=dto.AddXpResponse}
// @Router /api/v1/progress/xp [post]
func (h *ProgressHandler) AddXp(c *fiber.Ctx) error {
	var req dto.AddXpRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.progressSvc.AddXp(userID(c), &req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}
