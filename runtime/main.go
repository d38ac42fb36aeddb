package main

import (
	"github.com/alphabatem/common/context"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/quizora-labs/quizora_api/services"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Warn().Err(err).Msg("No .env file loaded")
	}

	// Both database backends register; DB_DRIVER picks which one starts.
	ctx, err := context.NewCtx(
		&services.PostgresService{},
		&services.SqliteService{},
		&services.RedisService{},
		&services.JWTService{},
		&services.AuthService{},
		&services.QuizCatalogService{},
		&services.ProgressService{},
		&services.QuizSessionService{},
		&services.MonitoringService{},

		&services.HttpService{},
	)
	if err != nil {
		log.Fatal().Err(err)
		return
	}

	err = ctx.Run()
	if err != nil {
		log.Fatal().Err(err)
		return
	}
}
