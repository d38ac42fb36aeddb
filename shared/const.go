package shared

const (
	UserID    = "user_id"
	SessionID = "session_id"

	QuestionTypeMultipleChoice = "MULTIPLE_CHOICE"
	QuestionTypeTrueFalse      = "TRUE_FALSE"
	QuestionTypeShortAnswer    = "SHORT_ANSWER"

	XPSourceQuiz        = "QUIZ"
	XPSourceAchievement = "ACHIEVEMENT"

	// Every level spans a flat 1000 XP band.
	XPPerLevel = 1000

	PassThresholdPercent = 50
	PerfectScoreBonus    = 1.5
)
