package services

import (
	"fmt"
	"net/http"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/quizora-labs/quizora_api/dto"
	"github.com/quizora-labs/quizora_api/shared"
)

// AuthService handles credential login and guards the API with a bearer
// token middleware.
type AuthService struct {
	context.DefaultService

	store  *Store
	jwtSvc *JWTService
}

const AUTH_SVC = "auth_svc"

func (svc AuthService) Id() string {
	return AUTH_SVC
}

func (svc *AuthService) Start() error {
	svc.store = svc.Service(databaseBackend()).(StoreProvider).Store()
	svc.jwtSvc = svc.Service(JWT_SVC).(*JWTService)
	return nil
}

func (svc *AuthService) Login(req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := svc.store.GetUserByEmailOrUsername(req.EmailOrUsername)
	if err != nil {
		if svc.store.IsNotFound(err) {
			return nil, shared.NewUnauthorizedError(err, "Invalid credentials")
		}
		return nil, shared.NewInternalError(svc.store.HandleError(err), "Failed to look up user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, shared.NewUnauthorizedError(err, "Invalid credentials")
	}

	if !user.IsActive {
		return nil, shared.NewForbiddenError(fmt.Errorf("user %s is deactivated", user.ID), "Account is deactivated")
	}

	tokens, err := svc.jwtSvc.GenerateTokenPair(user.ID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to issue token")
	}

	now := time.Now()
	user.LastLogin = now
	if err := svc.store.Db().Model(user).Update("last_login", now).Error; err != nil {
		log.WithError(err).WithField("user_id", user.ID).Warn("Failed to record last login")
	}

	return &dto.LoginResponse{
		UserID:      user.ID,
		Username:    user.Username,
		AccessToken: tokens.AccessToken,
		ExpiresIn:   tokens.ExpiresIn,
	}, nil
}

// RequiredAuth verifies the bearer token and stashes the user id in request
// locals for the handlers.
func (svc *AuthService) RequiredAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		token, err := svc.jwtSvc.ExtractTokenFromHeader(authHeader)
		if err != nil {
			return shared.ResponseJSON(c, http.StatusUnauthorized, "Unauthorized", err.Error())
		}

		userID, err := svc.jwtSvc.VerifyJWTToken(token)
		if err != nil {
			return shared.ResponseJSON(c, http.StatusUnauthorized, "Unauthorized", "Invalid JWT token")
		}
		if userID == "" {
			return shared.ResponseJSON(c, http.StatusUnauthorized, "Unauthorized", "Invalid user ID in token")
		}

		c.Locals(shared.UserID, userID)
		return c.Next()
	}
}
