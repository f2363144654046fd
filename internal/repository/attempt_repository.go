package repository

import (
	"exam_portal_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AttemptRepository owns the two tables the exam core writes:
// test_results (one row per user+test) and test_submissions (one row per
// user+test+question). Write methods take an explicit transaction handle so
// the services control atomicity; the unique keys on both tables are the
// correctness guard under concurrent calls.
type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) FindAttempt(userID, testID uint) (*model.TestResult, error) {
	var attempt model.TestResult
	err := r.DB.Where("user_id = ? AND test_id = ?", userID, testID).First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

// LockAttempt takes a row lock on the attempt for the duration of tx.
// Concurrent submission calls for the same (user, test) serialize here, so
// only one of them can observe the attempt becoming fully answered.
func (r *AttemptRepository) LockAttempt(tx *gorm.DB, userID, testID uint) (*model.TestResult, error) {
	var attempt model.TestResult
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND test_id = ?", userID, testID).
		First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

// SeedOpenSubmissions bulk-inserts one open placeholder per question.
// Conflicts on the (user_id, test_id, question_id) key are ignored so a
// replayed session start cannot duplicate rows.
func (r *AttemptRepository) SeedOpenSubmissions(tx *gorm.DB, userID, testID uint, questionIDs []uint) error {
	if len(questionIDs) == 0 {
		return nil
	}
	rows := make([]model.TestSubmission, 0, len(questionIDs))
	for _, qid := range questionIDs {
		rows = append(rows, model.TestSubmission{
			UserID:     userID,
			TestID:     testID,
			QuestionID: qid,
			Status:     model.SubmissionOpen,
		})
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "test_id"}, {Name: "question_id"}},
		DoNothing: true,
	}).Create(&rows).Error
}

// UpsertOpenAttempt inserts the attempt row for (user, test), leaving any
// existing row untouched.
func (r *AttemptRepository) UpsertOpenAttempt(tx *gorm.DB, userID, testID uint, totalQuestions int, startTime int64) error {
	attempt := model.TestResult{
		UserID:         userID,
		TestID:         testID,
		StartTime:      startTime,
		Status:         model.AttemptOpen,
		TotalQuestions: totalQuestions,
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "test_id"}},
		DoNothing: true,
	}).Create(&attempt).Error
}

// AnswerSubmission advances one submission row open→answered. The
// status='open' guard makes the transition at-most-once: a zero row count
// means the question was already answered and nothing changed.
func (r *AttemptRepository) AnswerSubmission(tx *gorm.DB, userID, testID, questionID uint, optionID *uint, answerText string, isCorrect bool) (bool, error) {
	res := tx.Model(&model.TestSubmission{}).
		Where("user_id = ? AND test_id = ? AND question_id = ? AND status = ?",
			userID, testID, questionID, model.SubmissionOpen).
		Updates(map[string]interface{}{
			"status":      model.SubmissionAnswered,
			"is_correct":  isCorrect,
			"option_id":   optionID,
			"answer_text": answerText,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *AttemptRepository) CountAnswered(tx *gorm.DB, userID, testID uint) (int64, error) {
	var count int64
	err := tx.Model(&model.TestSubmission{}).
		Where("user_id = ? AND test_id = ? AND status = ?", userID, testID, model.SubmissionAnswered).
		Count(&count).Error
	return count, err
}

func (r *AttemptRepository) CountCorrect(tx *gorm.DB, userID, testID uint) (int64, error) {
	var count int64
	err := tx.Model(&model.TestSubmission{}).
		Where("user_id = ? AND test_id = ? AND status = ? AND is_correct = ?",
			userID, testID, model.SubmissionAnswered, true).
		Count(&count).Error
	return count, err
}

// FinalizeAttempt writes the aggregate fields and flips the attempt to
// completed. The status='open' guard serializes concurrent completing
// calls: exactly one caller gets true.
func (r *AttemptRepository) FinalizeAttempt(tx *gorm.DB, userID, testID uint, attempt *model.TestResult) (bool, error) {
	res := tx.Model(&model.TestResult{}).
		Where("user_id = ? AND test_id = ? AND status = ?", userID, testID, model.AttemptOpen).
		Updates(map[string]interface{}{
			"status":          model.AttemptCompleted,
			"total_questions": attempt.TotalQuestions,
			"attempted":       attempt.Attempted,
			"correct":         attempt.Correct,
			"wrong":           attempt.Wrong,
			"final_score":     attempt.FinalScore,
			"final_result":    attempt.FinalResult,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *AttemptRepository) ListSubmissions(userID, testID uint) ([]model.TestSubmission, error) {
	var subs []model.TestSubmission
	err := r.DB.Where("user_id = ? AND test_id = ?", userID, testID).
		Order("question_id asc").
		Find(&subs).Error
	return subs, err
}

type TestResultRow struct {
	model.TestResult
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
}

func (r *AttemptRepository) ListResultsForTest(testID uint, page, limit int) ([]TestResultRow, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var total int64
	query := r.DB.Table("test_results tr").
		Select("tr.*, u.name as user_name, u.email as user_email").
		Joins("JOIN users u ON tr.user_id = u.id").
		Where("tr.test_id = ? AND tr.deleted_at IS NULL", testID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var results []TestResultRow
	offset := (page - 1) * limit
	err := query.Order("tr.final_score desc, tr.created_at asc").
		Offset(offset).Limit(limit).
		Scan(&results).Error
	return results, total, err
}
