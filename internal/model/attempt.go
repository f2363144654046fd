package model

const (
	AttemptOpen      = "open"
	AttemptCompleted = "completed"

	SubmissionOpen     = "open"
	SubmissionAnswered = "answered"
)

const (
	ResultPass = "Pass"
	ResultFail = "Fail"
)

// TestResult is one user's single run at a test. The (user_id, test_id)
// unique key makes it the upsert target for finalization.
// swagger:model TestResult
type TestResult struct {
	BaseModel
	UserID         uint    `gorm:"uniqueIndex:idx_user_test;type:bigint unsigned;not null" json:"userId"`
	TestID         uint    `gorm:"uniqueIndex:idx_user_test;type:bigint unsigned;not null" json:"testId"`
	StartTime      int64   `gorm:"not null" json:"startTime"` // unix seconds
	Status         string  `gorm:"size:20;default:'open'" json:"status"`
	TotalQuestions int     `gorm:"default:0" json:"totalQuestions"`
	Attempted      int     `gorm:"default:0" json:"attempted"`
	Correct        int     `gorm:"default:0" json:"correct"`
	Wrong          int     `gorm:"default:0" json:"wrong"`
	FinalScore     float64 `gorm:"type:decimal(5,2);default:0" json:"finalScore"`
	FinalResult    string  `gorm:"size:10" json:"finalResult"`
}

func (TestResult) TableName() string {
	return "test_results"
}

// TestSubmission records one question's answer within an attempt. Rows are
// seeded in bulk as open placeholders when the attempt starts and each one
// transitions to answered at most once.
// swagger:model TestSubmission
type TestSubmission struct {
	BaseModel
	UserID     uint   `gorm:"uniqueIndex:idx_user_test_question;type:bigint unsigned;not null" json:"userId"`
	TestID     uint   `gorm:"uniqueIndex:idx_user_test_question;type:bigint unsigned;not null" json:"testId"`
	QuestionID uint   `gorm:"uniqueIndex:idx_user_test_question;type:bigint unsigned;not null" json:"questionId"`
	OptionID   *uint  `gorm:"type:bigint unsigned" json:"optionId,omitempty"`
	AnswerText string `gorm:"type:text" json:"answerText,omitempty"`
	IsCorrect  *bool  `json:"isCorrect,omitempty"`
	Status     string `gorm:"size:20;default:'open'" json:"status"`
}

func (TestSubmission) TableName() string {
	return "test_submissions"
}
