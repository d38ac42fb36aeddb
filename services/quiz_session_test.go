package services

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/quizora-labs/quizora_api/dto"
	"github.com/quizora-labs/quizora_api/model"
	"github.com/quizora-labs/quizora_api/shared"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(Models()...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return NewStore(db)
}

func newTestEngine(t *testing.T) (*QuizSessionService, *ProgressService, *Store) {
	t.Helper()

	store := newTestStore(t)
	catalogSvc := &QuizCatalogService{store: store}
	progressSvc := &ProgressService{store: store}
	sessionSvc := &QuizSessionService{
		store:       store,
		catalogSvc:  catalogSvc,
		progressSvc: progressSvc,
	}
	return sessionSvc, progressSvc, store
}

// seedQuiz creates a four question multiple choice quiz worth 100 points,
// 25 per question, with base XP 100. Option A is always correct.
func seedQuiz(t *testing.T, store *Store, durationMinutes *int) (*model.Quiz, []model.Question) {
	t.Helper()

	quiz, err := store.CreateQuiz(&model.Quiz{
		Title:           "World Capitals",
		Subject:         "Geography",
		DurationMinutes: durationMinutes,
		XPReward:        100,
		IsActive:        true,
	})
	if err != nil {
		t.Fatalf("failed to seed quiz: %v", err)
	}

	questions := make([]model.Question, 4)
	for i := 0; i < 4; i++ {
		question, err := store.CreateQuestion(&model.Question{
			QuizID:       quiz.ID,
			QuestionText: fmt.Sprintf("Question %d", i+1),
			Type:         shared.QuestionTypeMultipleChoice,
			Points:       25,
			OrderNumber:  i + 1,
			Explanation:  "Option A was correct.",
		})
		if err != nil {
			t.Fatalf("failed to seed question: %v", err)
		}
		questions[i] = *question

		for j, letter := range []string{"A", "B"} {
			_, err := store.CreateAnswerOption(&model.AnswerOption{
				QuestionID:   question.ID,
				OptionText:   fmt.Sprintf("Answer %s", letter),
				OptionLetter: letter,
				IsCorrect:    letter == "A",
				OrderNumber:  j + 1,
			})
			if err != nil {
				t.Fatalf("failed to seed option: %v", err)
			}
		}
	}

	return quiz, questions
}

func submit(t *testing.T, svc *QuizSessionService, userID, sessionID, questionID, answer string) *dto.AnswerFeedbackResponse {
	t.Helper()

	feedback, err := svc.SubmitAnswer(userID, sessionID, &dto.SubmitAnswerRequest{
		QuestionID:       questionID,
		Answer:           answer,
		TimeSpentSeconds: 30,
	})
	if err != nil {
		t.Fatalf("SubmitAnswer(%s) failed: %v", questionID, err)
	}
	return feedback
}

func appErrStatus(t *testing.T, err error) int {
	t.Helper()

	if err == nil {
		t.Fatal("expected an error")
	}
	appErr, ok := shared.GetAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	return appErr.StatusCode
}

func TestStartQuizCreatesTimedSession(t *testing.T) {
	svc, _, _ := newTestEngine(t)
	duration := 10
	quiz, questions := seedQuiz(t, svc.store, &duration)

	resp, err := svc.StartQuiz("user-1", quiz.ID)
	if err != nil {
		t.Fatalf("StartQuiz failed: %v", err)
	}

	if resp.SessionID == "" {
		t.Fatal("session id missing")
	}
	if resp.TotalQuestions != 4 || resp.TotalPoints != 100 {
		t.Fatalf("got %d questions / %d points, want 4 / 100", resp.TotalQuestions, resp.TotalPoints)
	}
	if resp.ExpiresAt == nil {
		t.Fatal("timed quiz session must carry an expiry")
	}
	wantExpiry := resp.StartedAt.Add(10 * time.Minute)
	if !resp.ExpiresAt.Equal(wantExpiry) {
		t.Fatalf("expiry = %v, want %v", resp.ExpiresAt, wantExpiry)
	}
	if len(resp.Questions) != len(questions) {
		t.Fatalf("got %d questions in payload, want %d", len(resp.Questions), len(questions))
	}
	if len(resp.Questions[0].Options) != 2 {
		t.Fatalf("got %d options, want 2", len(resp.Questions[0].Options))
	}
}

func TestStartQuizUntimedSessionHasNoExpiry(t *testing.T) {
	svc, _, _ := newTestEngine(t)
	quiz, _ := seedQuiz(t, svc.store, nil)

	resp, err := svc.StartQuiz("user-1", quiz.ID)
	if err != nil {
		t.Fatalf("StartQuiz failed: %v", err)
	}
	if resp.ExpiresAt != nil {
		t.Fatal("untimed session must not expire")
	}
}

func TestStartQuizResumesActiveSession(t *testing.T) {
	svc, _, _ := newTestEngine(t)
	quiz, questions := seedQuiz(t, svc.store, nil)

	first, err := svc.StartQuiz("user-1", quiz.ID)
	if err != nil {
		t.Fatalf("StartQuiz failed: %v", err)
	}
	submit(t, svc, "user-1", first.SessionID, questions[0].ID, "A")

	second, err := svc.StartQuiz("user-1", quiz.ID)
	if err != nil {
		t.Fatalf("second StartQuiz failed: %v", err)
	}

	if second.SessionID != first.SessionID {
		t.Fatalf("expected resume of %s, got new session %s", first.SessionID, second.SessionID)
	}
	if got := second.SavedAnswers[questions[0].ID]; got != "A" {
		t.Fatalf("saved answer = %q, want %q", got, "A")
	}
	if second.CurrentScore != 25 {
		t.Fatalf("resumed score = %d, want 25", second.CurrentScore)
	}
}

func TestStartQuizUnknownOrInactive(t *testing.T) {
	svc, _, _ := newTestEngine(t)
	quiz, _ := seedQuiz(t, svc.store, nil)

	if _, err := svc.StartQuiz("user-1", "no-such-quiz"); appErrStatus(t, err) != http.StatusNotFound {
		t.Fatal("unknown quiz must be 404")
	}

	if err := svc.store.Db().Model(quiz).Update("is_active", false).Error; err != nil {
		t.Fatalf("failed to deactivate quiz: %v", err)
	}
	if _, err := svc.StartQuiz("user-1", quiz.ID); appErrStatus(t, err) != http.StatusNotFound {
		t.Fatal("inactive quiz must be 404")
	}
}

func TestSubmitAnswerFeedback(t *testing.T) {
	svc, _, _ := newTestEngine(t)
	quiz, questions := seedQuiz(t, svc.store, nil)

	session, err := svc.StartQuiz("user-1", quiz.ID)
	if err != nil {
		t.Fatalf("StartQuiz failed: %v", err)
	}

	feedback := submit(t, svc, "user-1", session.SessionID, questions[0].ID, "B")
	if feedback.IsCorrect {
		t.Fatal("wrong answer marked correct")
	}
	if feedback.PointsEarned != 0 {
		t.Fatalf("points = %d, want 0", feedback.PointsEarned)
	}
	if feedback.CorrectAnswer != "A. Answer A" {
		t.Fatalf("correct answer = %q", feedback.CorrectAnswer)
	}
	if feedback.Explanation == "" {
		t.Fatal("explanation missing from feedback")
	}
	if feedback.QuestionsAnswered != 1 || feedback.TotalQuestions != 4 {
		t.Fatalf("progress counters = %d/%d, want 1/4", feedback.QuestionsAnswered, feedback.TotalQuestions)
	}
}

func TestResubmissionOverwritesNotAppends(t *testing.T) {
	svc, _, store := newTestEngine(t)
	quiz, questions := seedQuiz(t, svc.store, nil)

	session, err := svc.StartQuiz("user-1", quiz.ID)
	if err != nil {
		t.Fatalf("StartQuiz failed: %v", err)
	}

	first := submit(t, svc, "user-1", session.SessionID, questions[0].ID, "B")
	if first.CurrentScore != 0 || first.AttemptCount != 1 {
		t.Fatalf("first submit: score=%d attempts=%d", first.CurrentScore, first.AttemptCount)
	}

	second := submit(t, svc, "user-1", session.SessionID, questions[0].ID, "A")
	if !second.IsCorrect || second.AttemptCount != 2 {
		t.Fatalf("second submit: correct=%v attempts=%d", second.IsCorrect, second.AttemptCount)
	}
	if second.CurrentScore != 25 {
		t.Fatalf("score after overwrite = %d, want 25", second.CurrentScore)
	}

	// Downgrading the answer must also downgrade the recomputed score
	third := submit(t, svc, "user-1", session.SessionID, questions[0].ID, "B")
	if third.CurrentScore != 0 {
		t.Fatalf("score after downgrade = %d, want 0", third.CurrentScore)
	}

	count, err := store.CountSessionAnswers(session.SessionID)
	if err != nil {
		t.Fatalf("CountSessionAnswers failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("answer rows = %d, want 1 (overwrite, not append)", count)
	}
}

func TestSubmitAnswerUnknownQuestion(t *testing.T) {
	svc, _, _ := newTestEngine(t)
	quiz, _ := seedQuiz(t, svc.store, nil)

	session, err := svc.StartQuiz("user-1", quiz.ID)
	if err != nil {
		t.Fatalf("StartQuiz failed: %v", err)
	}

	_, err = svc.SubmitAnswer("user-1", session.SessionID, &dto.SubmitAnswerRequest{
		QuestionID: "not-a-question",
		Answer:     "A",
	})
	if appErrStatus(t, err) != http.StatusNotFound {
		t.Fatal("foreign question must be 404")
	}
}

func TestSessionOwnership(t *testing.T) {
	svc, _, _ := newTestEngine(t)
	quiz, questions := seedQuiz(t, svc.store, nil)

	session, err := svc.StartQuiz("user-1", quiz.ID)
	if err != nil {
		t.Fatalf("StartQuiz failed: %v", err)
	}

	if _, err := svc.ResumeQuiz("user-2", session.SessionID); appErrStatus(t, err) != http.StatusUnauthorized {
		t.Fatal("foreign resume must be 401")
	}
	_, err = svc.SubmitAnswer("user-2", session.SessionID, &dto.SubmitAnswerRequest{
		QuestionID: questions[0].ID,
		Answer:     "A",
	})
	if appErrStatus(t, err) != http.StatusUnauthorized {
		t.Fatal("foreign submit must be 401")
	}
	if _, err := svc.CompleteQuiz("user-2", session.SessionID); appErrStatus(t, err) != http.StatusUnauthorized {
		t.Fatal("foreign complete must be 401")
	}
}

func TestCompleteQuizScoring(t *testing.T) {
	tests := []struct {
		name         string
		answers      []string
		wantScore    int
		wantCorrect  int
		wantPassed   bool
		wantXPEarned int
	}{
		{"three of four passes", []string{"A", "A", "A", "B"}, 75, 3, true, 100},
		{"perfect score gets bonus", []string{"A", "A", "A", "A"}, 100, 4, true, 150},
		{"one of four fails", []string{"A", "B", "B", "B"}, 25, 1, false, 50},
		{"exactly half passes", []string{"A", "A", "B", "B"}, 50, 2, true, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, store := newTestEngine(t)
			quiz, questions := seedQuiz(t, svc.store, nil)

			session, err := svc.StartQuiz("user-1", quiz.ID)
			if err != nil {
				t.Fatalf("StartQuiz failed: %v", err)
			}
			for i, answer := range tt.answers {
				submit(t, svc, "user-1", session.SessionID, questions[i].ID, answer)
			}

			result, err := svc.CompleteQuiz("user-1", session.SessionID)
			if err != nil {
				t.Fatalf("CompleteQuiz failed: %v", err)
			}

			if result.Score != tt.wantScore {
				t.Fatalf("score = %d, want %d", result.Score, tt.wantScore)
			}
			if result.CorrectAnswers != tt.wantCorrect {
				t.Fatalf("correct = %d, want %d", result.CorrectAnswers, tt.wantCorrect)
			}
			if result.Passed != tt.wantPassed {
				t.Fatalf("passed = %v, want %v", result.Passed, tt.wantPassed)
			}
			if result.XPEarned != tt.wantXPEarned {
				t.Fatalf("xp = %d, want %d", result.XPEarned, tt.wantXPEarned)
			}
			if result.TotalQuestions != 4 {
				t.Fatalf("total questions = %d, want 4", result.TotalQuestions)
			}

			// 4 submissions x 30s rounds up to 2 minutes
			if result.TimeSpentMinutes != 2 {
				t.Fatalf("minutes = %d, want 2", result.TimeSpentMinutes)
			}

			stored, err := store.GetSession(session.SessionID)
			if err != nil {
				t.Fatalf("GetSession failed: %v", err)
			}
			if !stored.IsCompleted || stored.IsExpired {
				t.Fatalf("session flags = completed:%v expired:%v", stored.IsCompleted, stored.IsExpired)
			}
		})
	}
}

func TestCompleteQuizIdempotent(t *testing.T) {
	svc, _, store := newTestEngine(t)
	quiz, questions := seedQuiz(t, svc.store, nil)

	session, err := svc.StartQuiz("user-1", quiz.ID)
	if err != nil {
		t.Fatalf("StartQuiz failed: %v", err)
	}
	for _, q := range questions {
		submit(t, svc, "user-1", session.SessionID, q.ID, "A")
	}

	completedBefore := testutil.ToFloat64(quizSessionsCompletedTotal)

	first, err := svc.CompleteQuiz("user-1", session.SessionID)
	if err != nil {
		t.Fatalf("first CompleteQuiz failed: %v", err)
	}
	second, err := svc.CompleteQuiz("user-1", session.SessionID)
	if err != nil {
		t.Fatalf("second CompleteQuiz failed: %v", err)
	}

	if delta := testutil.ToFloat64(quizSessionsCompletedTotal) - completedBefore; delta != 1 {
		t.Fatalf("completed counter moved by %v, want 1", delta)
	}

	if first.ID != second.ID {
		t.Fatalf("result ids differ: %s vs %s", first.ID, second.ID)
	}
	if second.Score != first.Score || second.XPEarned != first.XPEarned {
		t.Fatal("repeated completion changed the result")
	}

	// XP must be granted exactly once
	progress, err := store.GetUserProgress("user-1")
	if err != nil {
		t.Fatalf("GetUserProgress failed: %v", err)
	}
	if progress.TotalXP != first.XPEarned {
		t.Fatalf("ledger xp = %d, want %d", progress.TotalXP, first.XPEarned)
	}
	if progress.QuizCompleted != 1 {
		t.Fatalf("quiz completed = %d, want 1", progress.QuizCompleted)
	}
}

func expireSession(t *testing.T, store *Store, sessionID string) {
	t.Helper()

	past := time.Now().Add(-time.Minute)
	if err := store.Db().Model(&model.QuizSession{}).Where("id = ?", sessionID).
		Update("expires_at", past).Error; err != nil {
		t.Fatalf("failed to backdate expiry: %v", err)
	}
}

func TestExpiredSessionFinalizedOnTouch(t *testing.T) {
	svc, _, store := newTestEngine(t)
	duration := 10
	quiz, questions := seedQuiz(t, svc.store, &duration)

	session, err := svc.StartQuiz("user-1", quiz.ID)
	if err != nil {
		t.Fatalf("StartQuiz failed: %v", err)
	}
	submit(t, svc, "user-1", session.SessionID, questions[0].ID, "A")
	submit(t, svc, "user-1", session.SessionID, questions[1].ID, "A")

	expireSession(t, store, session.SessionID)

	_, err = svc.SubmitAnswer("user-1", session.SessionID, &dto.SubmitAnswerRequest{
		QuestionID: questions[2].ID,
		Answer:     "A",
	})
	appErr, ok := shared.GetAppError(err)
	if !ok || appErr.StatusCode != http.StatusGone {
		t.Fatalf("expected 410 on expired submit, got %v", err)
	}

	info, ok := appErr.Data.(*dto.ExpiredSessionInfo)
	if !ok {
		t.Fatalf("expected ExpiredSessionInfo payload, got %T", appErr.Data)
	}
	if info.ScorePercent != 50 || info.EarnedPoints != 50 {
		t.Fatalf("partial score = %d%% / %d points, want 50 / 50", info.ScorePercent, info.EarnedPoints)
	}

	stored, err := store.GetSession(session.SessionID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if !stored.IsCompleted || !stored.IsExpired {
		t.Fatalf("expired session flags = completed:%v expired:%v, want both", stored.IsCompleted, stored.IsExpired)
	}

	// Completing afterwards returns the frozen record, not a new one
	result, err := svc.CompleteQuiz("user-1", session.SessionID)
	if err != nil {
		t.Fatalf("CompleteQuiz after expiry failed: %v", err)
	}
	if result.Score != 50 || !result.Passed || !result.Expired {
		t.Fatalf("frozen record = score:%d passed:%v expired:%v", result.Score, result.Passed, result.Expired)
	}
}

func TestStartQuizAfterExpiryCreatesFreshSession(t *testing.T) {
	svc, _, store := newTestEngine(t)
	duration := 10
	quiz, questions := seedQuiz(t, svc.store, &duration)

	first, err := svc.StartQuiz("user-1", quiz.ID)
	if err != nil {
		t.Fatalf("StartQuiz failed: %v", err)
	}
	submit(t, svc, "user-1", first.SessionID, questions[0].ID, "A")
	expireSession(t, store, first.SessionID)

	second, err := svc.StartQuiz("user-1", quiz.ID)
	if err != nil {
		t.Fatalf("restart after expiry failed: %v", err)
	}
	if second.SessionID == first.SessionID {
		t.Fatal("expected a fresh session after expiry")
	}
	if second.CurrentScore != 0 || len(second.SavedAnswers) != 0 {
		t.Fatal("fresh session carried old state")
	}

	old, err := store.GetSession(first.SessionID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if !old.IsExpired {
		t.Fatal("old session was not finalized as expired")
	}
	if _, err := store.GetResultBySession(first.SessionID); err != nil {
		t.Fatalf("expired session has no result: %v", err)
	}
}

func TestTerminalSessionRejectsMutation(t *testing.T) {
	svc, _, _ := newTestEngine(t)
	quiz, questions := seedQuiz(t, svc.store, nil)

	session, err := svc.StartQuiz("user-1", quiz.ID)
	if err != nil {
		t.Fatalf("StartQuiz failed: %v", err)
	}
	submit(t, svc, "user-1", session.SessionID, questions[0].ID, "A")
	if _, err := svc.CompleteQuiz("user-1", session.SessionID); err != nil {
		t.Fatalf("CompleteQuiz failed: %v", err)
	}

	_, err = svc.SubmitAnswer("user-1", session.SessionID, &dto.SubmitAnswerRequest{
		QuestionID: questions[1].ID,
		Answer:     "A",
	})
	if appErrStatus(t, err) != http.StatusConflict {
		t.Fatal("submit into completed session must be 409")
	}
	if _, err := svc.ResumeQuiz("user-1", session.SessionID); appErrStatus(t, err) != http.StatusConflict {
		t.Fatal("resume of completed session must be 409")
	}
	if err := svc.AbandonSession("user-1", session.SessionID); appErrStatus(t, err) != http.StatusConflict {
		t.Fatal("abandon of completed session must be 409")
	}
}

func TestAbandonSession(t *testing.T) {
	svc, _, store := newTestEngine(t)
	quiz, questions := seedQuiz(t, svc.store, nil)

	session, err := svc.StartQuiz("user-1", quiz.ID)
	if err != nil {
		t.Fatalf("StartQuiz failed: %v", err)
	}
	submit(t, svc, "user-1", session.SessionID, questions[0].ID, "A")

	if err := svc.AbandonSession("user-1", session.SessionID); err != nil {
		t.Fatalf("AbandonSession failed: %v", err)
	}

	if _, err := store.GetSession(session.SessionID); !store.IsNotFound(err) {
		t.Fatalf("session still present after abandon: %v", err)
	}
	count, err := store.CountSessionAnswers(session.SessionID)
	if err != nil {
		t.Fatalf("CountSessionAnswers failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("answers remain after abandon: %d", count)
	}

	// No progress was granted
	if _, err := store.GetUserProgress("user-1"); !store.IsNotFound(err) {
		t.Fatalf("abandon must not touch the ledger: %v", err)
	}
}

func TestCompleteWithNoAnswers(t *testing.T) {
	svc, _, _ := newTestEngine(t)
	quiz, _ := seedQuiz(t, svc.store, nil)

	session, err := svc.StartQuiz("user-1", quiz.ID)
	if err != nil {
		t.Fatalf("StartQuiz failed: %v", err)
	}

	result, err := svc.CompleteQuiz("user-1", session.SessionID)
	if err != nil {
		t.Fatalf("CompleteQuiz failed: %v", err)
	}
	if result.Score != 0 || result.Passed {
		t.Fatalf("empty attempt = score:%d passed:%v, want 0/false", result.Score, result.Passed)
	}
	if result.XPEarned != 50 {
		t.Fatalf("failed attempt xp = %d, want half of base", result.XPEarned)
	}
}
