package model

type QuestionKind string

const (
	SingleChoice QuestionKind = "single_choice"
	MultiChoice  QuestionKind = "multi_choice"
	FreeText     QuestionKind = "free_text"
)

// Test, Question, Option and TestQuestion are authored by the course
// administration subsystem and are read-only inside the exam core.
// swagger:model Test
type Test struct {
	BaseModel
	Name            string `gorm:"size:255;not null" json:"name"`
	DurationMinutes int    `gorm:"not null" json:"durationMinutes"`
	CourseID        uint   `gorm:"index;type:bigint unsigned" json:"courseId"`
	StartAt         int64  `gorm:"not null" json:"startAt"` // unix seconds
	EndAt           int64  `gorm:"not null" json:"endAt"`   // unix seconds
}

func (Test) TableName() string {
	return "tests"
}

// swagger:model Question
type Question struct {
	BaseModel
	Text          string       `gorm:"type:text;not null" json:"text"`
	Kind          QuestionKind `gorm:"type:enum('single_choice','multi_choice','free_text');not null" json:"kind"`
	CourseID      uint         `gorm:"index;type:bigint unsigned" json:"courseId"`
	TotalMarks    int          `gorm:"default:1" json:"totalMarks"`
	NegativeMarks int          `gorm:"default:0" json:"negativeMarks"`
	Image         string       `gorm:"size:255" json:"image,omitempty"`

	Options []Option `gorm:"foreignKey:QuestionID" json:"options,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

// swagger:model Option
type Option struct {
	BaseModel
	QuestionID uint   `gorm:"index;type:bigint unsigned;not null" json:"questionId"`
	Text       string `gorm:"type:text" json:"text"`
	IsCorrect  bool   `gorm:"default:false" json:"isCorrect"`
	Image      string `gorm:"size:255" json:"image,omitempty"`
}

func (Option) TableName() string {
	return "options"
}

// TestQuestion fixes the ordered membership of a test.
type TestQuestion struct {
	BaseModel
	TestID     uint `gorm:"uniqueIndex:idx_test_question;type:bigint unsigned;not null" json:"testId"`
	QuestionID uint `gorm:"uniqueIndex:idx_test_question;type:bigint unsigned;not null" json:"questionId"`
	Position   int  `gorm:"default:0" json:"position"`
}

func (TestQuestion) TableName() string {
	return "test_questions"
}
