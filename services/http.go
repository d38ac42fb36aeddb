package services

import (
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"

	"github.com/quizora-labs/quizora_api/middleware"
	"github.com/quizora-labs/quizora_api/services/handlers"
	"github.com/quizora-labs/quizora_api/shared"
)

type HttpService struct {
	context.DefaultService

	authSvc       *AuthService
	catalogSvc    *QuizCatalogService
	sessionSvc    *QuizSessionService
	progressSvc   *ProgressService
	monitoringSvc *MonitoringService
	redisSvc      *RedisService

	port   int
	server *fiber.App
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *context.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	svc.authSvc = svc.Service(AUTH_SVC).(*AuthService)
	svc.catalogSvc = svc.Service(QUIZ_CATALOG_SVC).(*QuizCatalogService)
	svc.sessionSvc = svc.Service(QUIZ_SESSION_SVC).(*QuizSessionService)
	svc.progressSvc = svc.Service(PROGRESS_SVC).(*ProgressService)
	svc.monitoringSvc = svc.Service(MONITORING_SVC).(*MonitoringService)
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)

	app := fiber.New(fiber.Config{
		ErrorHandler: svc.errorHandler,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders: "Content-Length",
	}))
	app.Use(MonitoringMiddleware(svc.monitoringSvc))

	limiter := middleware.NewRateLimiter(svc.redisSvc.GetClient())
	app.Use(limiter.Limit("api_general"))

	authHandler := handlers.NewAuthHandler(svc.authSvc)
	quizHandler := handlers.NewQuizHandler(svc.catalogSvc, svc.sessionSvc)
	progressHandler := handlers.NewProgressHandler(svc.progressSvc)

	app.Get("/ping", svc.ping)

	v1 := app.Group("/api/v1")
	v1.Get("/ping", svc.ping)
	v1.Post("/auth/login", limiter.Limit("auth_login"), authHandler.Login)

	authed := v1.Group("", svc.authSvc.RequiredAuth())
	authed.Get("/quizzes", quizHandler.GetQuizzes)
	authed.Get("/quizzes/:quizId", quizHandler.GetQuiz)
	authed.Post("/quizzes/:quizId/start", quizHandler.StartQuiz)
	authed.Get("/sessions/:sessionId", quizHandler.ResumeQuiz)
	authed.Post("/sessions/:sessionId/answers", limiter.Limit("answer_submit"), quizHandler.SubmitAnswer)
	authed.Post("/sessions/:sessionId/complete", quizHandler.CompleteQuiz)
	authed.Delete("/sessions/:sessionId", quizHandler.AbandonSession)
	authed.Get("/progress", progressHandler.GetProgress)
	authed.Get("/progress/level", progressHandler.GetLevelInfo)
	authed.Get("/progress/weekly", progressHandler.GetWeeklyProgress)
	authed.Post("/progress/xp", progressHandler.AddXp)

	svc.server = app

	log.Info().Int("port", svc.port).Msg("HTTP server started")
	return app.Listen(fmt.Sprintf(":%v", svc.port))
}

func (svc *HttpService) Shutdown() {
	if svc.server != nil {
		_ = svc.server.Shutdown()
	}
}

// @Summary Ping
// @Description This endpoint checks the health of the service
// @Tags health
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=string}
// @Router /ping [get]
func (svc *HttpService) ping(c *fiber.Ctx) error {
	c.Set("Cache-Control", "max-age=10")

	return shared.ResponseJSON(c, http.StatusOK, "Success", "pong")
}

// errorHandler renders AppErrors with their status and payload; anything else
// is an opaque 500.
func (svc *HttpService) errorHandler(c *fiber.Ctx, err error) error {
	if err == nil {
		return nil
	}

	if appErr, ok := shared.GetAppError(err); ok {
		return shared.ResponseJSON(c, appErr.StatusCode, appErr.Message, appErr.Data)
	}

	if fiberErr, ok := err.(*fiber.Error); ok {
		return shared.ResponseJSON(c, fiberErr.Code, fiberErr.Message, nil)
	}

	return shared.ResponseInternalError(c, err)
}
