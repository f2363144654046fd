package repository

import (
	"context"
	"encoding/json"
	"exam_portal_backend/internal/model"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// ExamRepository reads the authored Test/Question/Option/TestQuestion
// tables. Nothing here writes them; the question set of a test is immutable
// once attempts exist, which is what makes the redis cache safe without
// invalidation.
type ExamRepository struct {
	DB  *gorm.DB
	RDB *redis.Client
	TTL time.Duration
}

func NewExamRepository(db *gorm.DB, rdb *redis.Client, ttl time.Duration) *ExamRepository {
	return &ExamRepository{DB: db, RDB: rdb, TTL: ttl}
}

// SetCacheTTL takes effect for cache entries written after the call.
func (r *ExamRepository) SetCacheTTL(ttl time.Duration) {
	r.TTL = ttl
}

func (r *ExamRepository) FindTestByID(id uint) (*model.Test, error) {
	var test model.Test
	err := r.DB.First(&test, id).Error
	return &test, err
}

func questionCacheKey(testID uint) string {
	return fmt.Sprintf("exam:questions:%d", testID)
}

// ListTestQuestions returns a test's questions with their options, in the
// order fixed by test_questions.position.
func (r *ExamRepository) ListTestQuestions(ctx context.Context, testID uint) ([]model.Question, error) {
	key := questionCacheKey(testID)
	if r.RDB != nil {
		if raw, err := r.RDB.Get(ctx, key).Bytes(); err == nil {
			var cached []model.Question
			if json.Unmarshal(raw, &cached) == nil {
				return cached, nil
			}
		}
	}

	var qs []model.Question
	err := r.DB.
		Joins("JOIN test_questions tq ON tq.question_id = questions.id AND tq.deleted_at IS NULL").
		Where("tq.test_id = ?", testID).
		Order("tq.position asc, tq.id asc").
		Preload("Options").
		Find(&qs).Error
	if err != nil {
		return nil, err
	}

	if r.RDB != nil && len(qs) > 0 {
		if raw, err := json.Marshal(qs); err == nil {
			r.RDB.Set(ctx, key, raw, r.TTL)
		}
	}

	return qs, nil
}

func (r *ExamRepository) CountTestQuestions(tx *gorm.DB, testID uint) (int64, error) {
	var count int64
	err := tx.Model(&model.TestQuestion{}).Where("test_id = ?", testID).Count(&count).Error
	return count, err
}

// ListActiveTests returns the tests of a course whose [start_at, end_at]
// window contains now.
func (r *ExamRepository) ListActiveTests(courseID uint, now int64) ([]model.Test, error) {
	var tests []model.Test
	query := r.DB.Where("start_at <= ? AND end_at >= ?", now, now)
	if courseID > 0 {
		query = query.Where("course_id = ?", courseID)
	}
	err := query.Order("start_at asc").Find(&tests).Error
	return tests, err
}
