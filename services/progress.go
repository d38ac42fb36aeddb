package services

import (
	"fmt"
	"math"
	"time"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"

	"github.com/quizora-labs/quizora_api/dto"
	"github.com/quizora-labs/quizora_api/model"
	"github.com/quizora-labs/quizora_api/shared"
)

// ProgressService maintains the per-user gamification ledger: XP and levels,
// quiz counters, study time, daily streaks and the weekly activity report.
// The ledger row is created lazily on first read or first grant.
type ProgressService struct {
	context.DefaultService

	store *Store
}

const PROGRESS_SVC = "progress_svc"

func (svc ProgressService) Id() string {
	return PROGRESS_SVC
}

func (svc *ProgressService) Start() error {
	svc.store = svc.Service(databaseBackend()).(StoreProvider).Store()
	return nil
}

// AddXp grants XP outside the quiz flow, e.g. for achievements or manual
// adjustments.
func (svc *ProgressService) AddXp(userID string, req *dto.AddXpRequest) (*dto.AddXpResponse, error) {
	source := req.Source
	if source == "" {
		source = shared.XPSourceAchievement
	}

	var resp *dto.AddXpResponse
	err := svc.store.Transaction(func(tx *Store) error {
		progress, err := svc.getOrCreateProgress(tx, userID)
		if err != nil {
			return err
		}

		levelBefore := progress.CurrentLevel
		progress.AddXP(req.XPAmount)

		// Any XP grant is activity: it feeds the streak like a quiz does.
		now := time.Now()
		updateStreak(progress, now)
		progress.LastActivityDate = &now

		if err := tx.UpdateUserProgress(progress); err != nil {
			return err
		}

		leveledUp := progress.CurrentLevel > levelBefore
		resp = &dto.AddXpResponse{
			XPAdded:                  req.XPAmount,
			TotalXP:                  progress.TotalXP,
			CurrentLevel:             progress.CurrentLevel,
			LevelTitle:               levelTitle(progress.CurrentLevel),
			XPForNextLevel:           progress.XPForNextLevel(),
			XPProgressInCurrentLevel: progress.XPProgressInCurrentLevel(),
			ProgressPercentage:       progress.ProgressPercentage(),
			LeveledUp:                leveledUp,
		}
		if leveledUp {
			resp.NewLevel = progress.CurrentLevel
			resp.Message = fmt.Sprintf("Level up! You reached level %d (%s)", progress.CurrentLevel, resp.LevelTitle)
		}
		return nil
	})
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to add XP")
	}

	xpGrantedTotal.WithLabelValues(source).Add(float64(req.XPAmount))
	log.WithFields(log.Fields{
		"user_id": userID,
		"xp":      req.XPAmount,
		"reason":  req.Reason,
		"source":  source,
	}).Info("XP granted")

	return resp, nil
}

func (svc *ProgressService) GetUserProgress(userID string) (*dto.UserProgressResponse, error) {
	var progress *model.UserProgress
	err := svc.store.Transaction(func(tx *Store) error {
		var err error
		progress, err = svc.getOrCreateProgress(tx, userID)
		return err
	})
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load progress")
	}

	return &dto.UserProgressResponse{
		UserID:                   progress.UserID,
		TotalXP:                  progress.TotalXP,
		CurrentLevel:             progress.CurrentLevel,
		LevelTitle:               levelTitle(progress.CurrentLevel),
		XPForNextLevel:           progress.XPForNextLevel(),
		XPProgressInCurrentLevel: progress.XPProgressInCurrentLevel(),
		ProgressPercentage:       progress.ProgressPercentage(),
		QuizCompleted:            progress.QuizCompleted,
		QuizSucceeded:            progress.QuizSucceeded,
		AverageSuccessRate:       progress.AverageSuccessRate,
		TotalStudyTimeMinutes:    progress.TotalStudyTimeMinutes,
		StudyTimeFormatted:       formatStudyTime(progress.TotalStudyTimeMinutes),
		CurrentStreak:            progress.CurrentStreak,
		LongestStreak:            progress.LongestStreak,
		LastActivityDate:         progress.LastActivityDate,
	}, nil
}

func (svc *ProgressService) GetLevelInfo(userID string) (*dto.LevelInfoResponse, error) {
	var progress *model.UserProgress
	err := svc.store.Transaction(func(tx *Store) error {
		var err error
		progress, err = svc.getOrCreateProgress(tx, userID)
		return err
	})
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load progress")
	}

	return &dto.LevelInfoResponse{
		CurrentLevel:             progress.CurrentLevel,
		LevelTitle:               levelTitle(progress.CurrentLevel),
		CurrentXP:                progress.TotalXP,
		XPForNextLevel:           progress.XPForNextLevel(),
		XPProgressInCurrentLevel: progress.XPProgressInCurrentLevel(),
		XPNeeded:                 progress.XPForNextLevel() - progress.TotalXP,
		ProgressPercentage:       progress.ProgressPercentage(),
	}, nil
}

// GetWeeklyProgress reports the current Monday-to-Sunday week day by day,
// with the XP change against the previous week.
func (svc *ProgressService) GetWeeklyProgress(userID string) (*dto.WeeklyProgressResponse, error) {
	return svc.weeklyReport(userID, time.Now())
}

func (svc *ProgressService) weeklyReport(userID string, now time.Time) (*dto.WeeklyProgressResponse, error) {
	weekStart := startOfWeek(now)
	weekEnd := weekStart.AddDate(0, 0, 7)
	lastWeekStart := weekStart.AddDate(0, 0, -7)

	currentResults, err := svc.store.GetResultsByUserAndRange(userID, weekStart, weekEnd)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load weekly results")
	}
	lastResults, err := svc.store.GetResultsByUserAndRange(userID, lastWeekStart, weekStart)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load weekly results")
	}

	daily := make([]dto.DailyProgressResponse, 7)
	currentWeekXP := 0
	for i := 0; i < 7; i++ {
		day := weekStart.AddDate(0, 0, i)
		daily[i] = dto.DailyProgressResponse{
			Day:      day.Weekday().String()[:3],
			FullDate: day.Format("2006-01-02"),
		}
	}
	for _, result := range currentResults {
		idx := dayIndex(weekStart, result.CompletedAt)
		if idx < 0 || idx > 6 {
			continue
		}
		daily[idx].XPEarned += result.XPEarned
		daily[idx].QuizCompleted++
		daily[idx].StudyTimeMinutes += result.TimeSpentMinutes
		daily[idx].HasActivity = true
		currentWeekXP += result.XPEarned
	}

	lastWeekXP := 0
	for _, result := range lastResults {
		lastWeekXP += result.XPEarned
	}

	return &dto.WeeklyProgressResponse{
		CurrentWeekXP:    currentWeekXP,
		LastWeekXP:       lastWeekXP,
		ChangePercentage: weekChangePercent(lastWeekXP, currentWeekXP),
		DailyProgress:    daily,
	}, nil
}

// applyQuizResult folds one finalized attempt into the ledger. It runs inside
// the finalize transaction, so a result row and its progress effects commit
// together or not at all.
func (svc *ProgressService) applyQuizResult(tx *Store, result *model.QuizResult) error {
	progress, err := svc.getOrCreateProgress(tx, result.UserID)
	if err != nil {
		return err
	}

	progress.AddXP(result.XPEarned)
	progress.QuizCompleted++
	if result.Passed {
		progress.QuizSucceeded++
	}
	progress.TotalStudyTimeMinutes += result.TimeSpentMinutes
	progress.UpdateSuccessRate()

	// Streak is computed against the previous activity date before the new
	// one is written.
	updateStreak(progress, result.CompletedAt)
	activityDate := result.CompletedAt
	progress.LastActivityDate = &activityDate

	if err := tx.UpdateUserProgress(progress); err != nil {
		return err
	}

	xpGrantedTotal.WithLabelValues(shared.XPSourceQuiz).Add(float64(result.XPEarned))
	return nil
}

func (svc *ProgressService) getOrCreateProgress(tx *Store, userID string) (*model.UserProgress, error) {
	progress, err := tx.GetUserProgress(userID)
	if err == nil {
		return progress, nil
	}
	if !tx.IsNotFound(err) {
		return nil, tx.HandleError(err)
	}

	progress = &model.UserProgress{
		UserID:       userID,
		CurrentLevel: 1,
	}
	return tx.CreateUserProgress(progress)
}

// updateStreak applies the day-difference rules: same day leaves the streak
// alone, the next day extends it, any gap resets it to 1.
func updateStreak(progress *model.UserProgress, now time.Time) {
	if progress.LastActivityDate == nil {
		progress.CurrentStreak = 1
		if progress.LongestStreak < 1 {
			progress.LongestStreak = 1
		}
		return
	}

	days := daysBetween(*progress.LastActivityDate, now)
	switch {
	case days == 0:
		// already counted today
	case days == 1:
		progress.CurrentStreak++
		if progress.CurrentStreak > progress.LongestStreak {
			progress.LongestStreak = progress.CurrentStreak
		}
	default:
		progress.CurrentStreak = 1
		if progress.LongestStreak < 1 {
			progress.LongestStreak = 1
		}
	}
}

// daysBetween counts calendar days from a to b. The dates are re-anchored in
// UTC so DST transitions cannot shrink a day below 24 hours.
func daysBetween(a, b time.Time) int {
	aYear, aMonth, aDay := a.Date()
	bYear, bMonth, bDay := b.Date()
	start := time.Date(aYear, aMonth, aDay, 0, 0, 0, 0, time.UTC)
	end := time.Date(bYear, bMonth, bDay, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start) / (24 * time.Hour))
}

// startOfWeek returns Monday 00:00 of the week containing t.
func startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	day := t.AddDate(0, 0, -offset)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, t.Location())
}

func dayIndex(weekStart time.Time, t time.Time) int {
	return daysBetween(weekStart, t)
}

// weekChangePercent follows the report convention: growth from zero counts
// as 100%, two idle weeks as 0%.
func weekChangePercent(lastWeek, currentWeek int) float64 {
	if lastWeek > 0 {
		change := float64(currentWeek-lastWeek) * 100.0 / float64(lastWeek)
		return math.Round(change*10) / 10
	}
	if currentWeek > 0 {
		return 100.0
	}
	return 0
}

var levelTitles = []struct {
	minLevel int
	title    string
}{
	{20, "Grand Master"},
	{15, "Master"},
	{10, "Expert"},
	{7, "Advanced"},
	{5, "Intermediate"},
	{3, "Beginner"},
	{1, "Novice"},
}

func levelTitle(level int) string {
	for _, tier := range levelTitles {
		if level >= tier.minLevel {
			return tier.title
		}
	}
	return "Novice"
}

// formatStudyTime renders minutes as "2h05min", "45min" or "3h".
func formatStudyTime(minutes int) string {
	if minutes <= 0 {
		return "0min"
	}
	hours := minutes / 60
	rest := minutes % 60
	if hours == 0 {
		return fmt.Sprintf("%dmin", rest)
	}
	if rest == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh%02dmin", hours, rest)
}
