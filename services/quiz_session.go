package services

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"

	"github.com/quizora-labs/quizora_api/dto"
	"github.com/quizora-labs/quizora_api/model"
	"github.com/quizora-labs/quizora_api/shared"
)

// QuizSessionService owns the attempt lifecycle: start/resume, answer
// submission with immediate feedback, completion and expiry finalization.
// Scoring always recomputes from the persisted answer set, so resubmitting
// the same question can never inflate the total.
type QuizSessionService struct {
	context.DefaultService

	store       *Store
	catalogSvc  *QuizCatalogService
	progressSvc *ProgressService
}

const QUIZ_SESSION_SVC = "quiz_session_svc"

func (svc QuizSessionService) Id() string {
	return QUIZ_SESSION_SVC
}

func (svc *QuizSessionService) Start() error {
	svc.store = svc.Service(databaseBackend()).(StoreProvider).Store()
	svc.catalogSvc = svc.Service(QUIZ_CATALOG_SVC).(*QuizCatalogService)
	svc.progressSvc = svc.Service(PROGRESS_SVC).(*ProgressService)
	return nil
}

// StartQuiz opens a session for (user, quiz). If a live session already
// exists it is resumed instead; if that session silently ran out its clock,
// it gets finalized first and a fresh one is created.
func (svc *QuizSessionService) StartQuiz(userID, quizID string) (*dto.QuizSessionResponse, error) {
	bundle, err := svc.catalogSvc.GetActiveQuizBundle(quizID)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	existing, err := svc.store.GetActiveSession(userID, quizID)
	if err == nil {
		if !existing.PastExpiry(now) {
			quizSessionsResumedTotal.Inc()
			return svc.sessionResponse(existing, bundle)
		}
		if _, err := svc.finalizeSession(existing, bundle, true); err != nil {
			return nil, err
		}
	} else if !svc.store.IsNotFound(err) {
		return nil, shared.NewInternalError(svc.store.HandleError(err), "Failed to look up active session")
	}

	session := &model.QuizSession{
		UserID:              userID,
		QuizID:              quizID,
		StartedAt:           now,
		TotalPointsPossible: bundle.TotalPoints(),
	}
	if bundle.Quiz.DurationMinutes != nil && *bundle.Quiz.DurationMinutes > 0 {
		expiresAt := now.Add(time.Duration(*bundle.Quiz.DurationMinutes) * time.Minute)
		session.ExpiresAt = &expiresAt
	}

	if _, err := svc.store.CreateSession(session); err != nil {
		return nil, shared.NewInternalError(err, "Failed to create quiz session")
	}

	quizSessionsStartedTotal.Inc()
	log.WithFields(log.Fields{
		"user_id":    userID,
		"quiz_id":    quizID,
		"session_id": session.ID,
	}).Info("Quiz session started")

	return svc.sessionResponse(session, bundle)
}

// ResumeQuiz reloads an in-flight session with its saved answers.
func (svc *QuizSessionService) ResumeQuiz(userID, sessionID string) (*dto.QuizSessionResponse, error) {
	session, bundle, err := svc.loadLiveSession(userID, sessionID)
	if err != nil {
		return nil, err
	}

	quizSessionsResumedTotal.Inc()
	return svc.sessionResponse(session, bundle)
}

// SubmitAnswer records one answer and returns immediate feedback including
// the correct answer. Resubmission overwrites the previous answer for the
// question and bumps its attempt count.
func (svc *QuizSessionService) SubmitAnswer(userID, sessionID string, req *dto.SubmitAnswerRequest) (*dto.AnswerFeedbackResponse, error) {
	session, bundle, err := svc.loadLiveSession(userID, sessionID)
	if err != nil {
		return nil, err
	}

	question := bundle.Question(req.QuestionID)
	if question == nil {
		return nil, shared.NewNotFoundError(fmt.Errorf("question %s not in quiz %s", req.QuestionID, session.QuizID), "Question not found in this quiz")
	}

	options := bundle.Options[question.ID]
	isCorrect, pointsEarned := EvaluateAnswer(question, options, req.Answer)

	var attemptCount int
	var answeredCount int64

	err = svc.store.Transaction(func(tx *Store) error {
		now := time.Now()

		answer, err := tx.GetSessionAnswer(session.ID, question.ID)
		if err == nil {
			answer.UserAnswer = req.Answer
			answer.IsCorrect = isCorrect
			answer.PointsEarned = pointsEarned
			answer.TimeSpentSeconds += req.TimeSpentSeconds
			answer.AttemptCount++
			answer.AnsweredAt = now
			if err := tx.UpdateAnswer(answer); err != nil {
				return err
			}
			attemptCount = answer.AttemptCount
		} else if tx.IsNotFound(err) {
			answer = &model.UserAnswer{
				SessionID:        session.ID,
				QuestionID:       question.ID,
				UserAnswer:       req.Answer,
				IsCorrect:        isCorrect,
				PointsEarned:     pointsEarned,
				TimeSpentSeconds: req.TimeSpentSeconds,
				AttemptCount:     1,
				AnsweredAt:       now,
			}
			if _, err := tx.CreateAnswer(answer); err != nil {
				return err
			}
			attemptCount = 1
		} else {
			return tx.HandleError(err)
		}

		total, err := tx.SumSessionPoints(session.ID)
		if err != nil {
			return err
		}

		answeredCount, err = tx.CountSessionAnswers(session.ID)
		if err != nil {
			return err
		}

		session.CurrentScore = total
		session.CurrentQuestionIndex = int(answeredCount)
		session.TimeSpentSeconds += req.TimeSpentSeconds
		return tx.UpdateSession(session)
	})
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to record answer")
	}

	answersSubmittedTotal.WithLabelValues(strconv.FormatBool(isCorrect)).Inc()

	return &dto.AnswerFeedbackResponse{
		IsCorrect:         isCorrect,
		CorrectAnswer:     CorrectAnswerText(options),
		Explanation:       question.Explanation,
		PointsEarned:      pointsEarned,
		AttemptCount:      attemptCount,
		CurrentScore:      session.CurrentScore,
		QuestionsAnswered: int(answeredCount),
		TotalQuestions:    len(bundle.Questions),
	}, nil
}

// CompleteQuiz finalizes a session into its immutable result. Calling it
// again returns the existing result unchanged, and calling it on a session
// that already expired returns the record frozen at expiry.
func (svc *QuizSessionService) CompleteQuiz(userID, sessionID string) (*dto.QuizResultResponse, error) {
	session, err := svc.store.GetSession(sessionID)
	if err != nil {
		if svc.store.IsNotFound(err) {
			return nil, shared.NewNotFoundError(err, "Session not found")
		}
		return nil, shared.NewInternalError(svc.store.HandleError(err), "Failed to load session")
	}
	if session.UserID != userID {
		return nil, shared.NewUnauthorizedError(fmt.Errorf("session %s does not belong to user %s", sessionID, userID), "Session does not belong to you")
	}

	bundle, err := svc.catalogSvc.GetQuizBundle(session.QuizID)
	if err != nil {
		return nil, err
	}

	if session.Terminal() {
		result, err := svc.store.GetResultBySession(session.ID)
		if err == nil {
			return resultResponse(result, session.IsExpired), nil
		}
		if !svc.store.IsNotFound(err) {
			return nil, shared.NewInternalError(svc.store.HandleError(err), "Failed to load quiz result")
		}
		// Terminal session without a result row means a finalize was
		// interrupted after the session flag was written. Re-run it.
		result, err = svc.finalizeSession(session, bundle, session.IsExpired)
		if err != nil {
			return nil, err
		}
		return resultResponse(result, session.IsExpired), nil
	}

	expired := session.PastExpiry(time.Now())
	result, err := svc.finalizeSession(session, bundle, expired)
	if err != nil {
		return nil, err
	}
	return resultResponse(result, expired), nil
}

// AbandonSession discards an in-flight session and its answers. Nothing is
// scored and no progress is granted.
func (svc *QuizSessionService) AbandonSession(userID, sessionID string) error {
	session, err := svc.store.GetSession(sessionID)
	if err != nil {
		if svc.store.IsNotFound(err) {
			return shared.NewNotFoundError(err, "Session not found")
		}
		return shared.NewInternalError(svc.store.HandleError(err), "Failed to load session")
	}
	if session.UserID != userID {
		return shared.NewUnauthorizedError(fmt.Errorf("session %s does not belong to user %s", sessionID, userID), "Session does not belong to you")
	}
	if session.Terminal() {
		return shared.NewConflictError(fmt.Errorf("session %s already finalized", sessionID), "Session is already completed")
	}

	err = svc.store.Transaction(func(tx *Store) error {
		if err := tx.DeleteSessionAnswers(session.ID); err != nil {
			return err
		}
		return tx.DeleteSession(session.ID)
	})
	if err != nil {
		return shared.NewInternalError(err, "Failed to abandon session")
	}

	quizSessionsAbandonedTotal.Inc()
	return nil
}

// loadLiveSession fetches a session the caller may still interact with.
// A session whose clock ran out is finalized on the spot and reported as
// gone, carrying the score it had accumulated.
func (svc *QuizSessionService) loadLiveSession(userID, sessionID string) (*model.QuizSession, *QuizBundle, error) {
	session, err := svc.store.GetSession(sessionID)
	if err != nil {
		if svc.store.IsNotFound(err) {
			return nil, nil, shared.NewNotFoundError(err, "Session not found")
		}
		return nil, nil, shared.NewInternalError(svc.store.HandleError(err), "Failed to load session")
	}

	if session.UserID != userID {
		return nil, nil, shared.NewUnauthorizedError(fmt.Errorf("session %s does not belong to user %s", sessionID, userID), "Session does not belong to you")
	}

	if session.Terminal() {
		return nil, nil, shared.NewConflictError(fmt.Errorf("session %s already finalized", sessionID), "Session is already completed")
	}

	bundle, err := svc.catalogSvc.GetQuizBundle(session.QuizID)
	if err != nil {
		return nil, nil, err
	}

	if session.PastExpiry(time.Now()) {
		result, err := svc.finalizeSession(session, bundle, true)
		if err != nil {
			return nil, nil, err
		}
		return nil, nil, shared.NewGoneError(
			fmt.Errorf("session %s expired at %s", sessionID, session.ExpiresAt.Format(time.RFC3339)),
			"Session has expired",
			&dto.ExpiredSessionInfo{
				SessionID:    session.ID,
				ScorePercent: result.Score,
				EarnedPoints: result.EarnedPoints,
			},
		)
	}

	return session, bundle, nil
}

// finalizeSession freezes a session into a QuizResult and applies the
// progress ledger, all in one transaction. It is idempotent per session.
func (svc *QuizSessionService) finalizeSession(session *model.QuizSession, bundle *QuizBundle, expired bool) (*model.QuizResult, error) {
	var result *model.QuizResult
	created := false

	err := svc.store.Transaction(func(tx *Store) error {
		if existing, err := tx.GetResultBySession(session.ID); err == nil {
			result = existing
			return nil
		} else if !tx.IsNotFound(err) {
			return tx.HandleError(err)
		}

		answers, err := tx.GetSessionAnswers(session.ID)
		if err != nil {
			return err
		}

		earnedPoints := 0
		correctAnswers := 0
		for _, answer := range answers {
			earnedPoints += answer.PointsEarned
			if answer.IsCorrect {
				correctAnswers++
			}
		}

		totalPoints := session.TotalPointsPossible
		if totalPoints <= 0 {
			totalPoints = bundle.TotalPoints()
		}

		scorePct := 0
		if totalPoints > 0 {
			scorePct = int(math.Round(float64(earnedPoints) * 100.0 / float64(totalPoints)))
		}
		passed := scorePct >= shared.PassThresholdPercent
		xpEarned := quizXP(bundle.Quiz.XPReward, scorePct, passed)

		now := time.Now()
		session.IsCompleted = true
		session.IsExpired = expired
		session.CompletedAt = &now
		session.CurrentScore = earnedPoints
		if err := tx.UpdateSession(session); err != nil {
			return err
		}

		result = &model.QuizResult{
			SessionID:        session.ID,
			UserID:           session.UserID,
			QuizID:           session.QuizID,
			Score:            scorePct,
			CorrectAnswers:   correctAnswers,
			TotalQuestions:   len(bundle.Questions),
			EarnedPoints:     earnedPoints,
			TimeSpentMinutes: minutesFromSeconds(session.TimeSpentSeconds),
			Passed:           passed,
			XPEarned:         xpEarned,
			CompletedAt:      now,
		}
		if _, err := tx.CreateQuizResult(result); err != nil {
			return err
		}
		created = true

		return svc.progressSvc.applyQuizResult(tx, result)
	})
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to finalize session")
	}

	// Returning an already-frozen result is not a completion.
	if created {
		quizSessionsCompletedTotal.Inc()
		if expired {
			quizSessionsExpiredTotal.Inc()
		}

		log.WithFields(log.Fields{
			"session_id": session.ID,
			"user_id":    session.UserID,
			"score":      result.Score,
			"passed":     result.Passed,
			"expired":    expired,
			"xp_earned":  result.XPEarned,
		}).Info("Quiz session finalized")
	}

	return result, nil
}

// quizXP applies the attempt multipliers to a quiz's base reward: a perfect
// score earns 1.5x, a failed attempt half.
func quizXP(baseXP, scorePct int, passed bool) int {
	switch {
	case scorePct == 100:
		return int(float64(baseXP) * shared.PerfectScoreBonus)
	case !passed:
		return baseXP / 2
	default:
		return baseXP
	}
}

// minutesFromSeconds rounds elapsed time up to whole minutes; any started
// minute counts.
func minutesFromSeconds(seconds int) int {
	if seconds <= 0 {
		return 0
	}
	return (seconds + 59) / 60
}

func (svc *QuizSessionService) sessionResponse(session *model.QuizSession, bundle *QuizBundle) (*dto.QuizSessionResponse, error) {
	answers, err := svc.store.GetSessionAnswers(session.ID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load saved answers")
	}

	saved := make(map[string]string, len(answers))
	for _, answer := range answers {
		saved[answer.QuestionID] = answer.UserAnswer
	}

	return &dto.QuizSessionResponse{
		SessionID:        session.ID,
		QuizID:           session.QuizID,
		QuizTitle:        bundle.Quiz.Title,
		TotalQuestions:   len(bundle.Questions),
		TotalPoints:      session.TotalPointsPossible,
		DurationMinutes:  bundle.Quiz.DurationMinutes,
		StartedAt:        session.StartedAt,
		ExpiresAt:        session.ExpiresAt,
		CurrentScore:     session.CurrentScore,
		TimeSpentSeconds: session.TimeSpentSeconds,
		Questions:        mapQuestions(bundle),
		SavedAnswers:     saved,
	}, nil
}

func resultResponse(result *model.QuizResult, expired bool) *dto.QuizResultResponse {
	return &dto.QuizResultResponse{
		ID:               result.ID,
		SessionID:        result.SessionID,
		QuizID:           result.QuizID,
		Score:            result.Score,
		CorrectAnswers:   result.CorrectAnswers,
		TotalQuestions:   result.TotalQuestions,
		EarnedPoints:     result.EarnedPoints,
		TimeSpentMinutes: result.TimeSpentMinutes,
		Passed:           result.Passed,
		XPEarned:         result.XPEarned,
		Expired:          expired,
		CompletedAt:      result.CompletedAt,
	}
}
