package service

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"exam_portal_backend/internal/model"
	"exam_portal_backend/internal/repository"
	"exam_portal_backend/internal/util"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func openIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()
	if os.Getenv("EXAM_PORTAL_INTEGRATION") != "1" {
		t.Skip("set EXAM_PORTAL_INTEGRATION=1 to run integration tests")
	}

	dsn := os.Getenv("EXAM_PORTAL_TEST_DSN")
	if dsn == "" {
		dsn = "root:@tcp(localhost:3306)/exam_portal_test?charset=utf8mb4&parseTime=true&loc=Local"
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.Test{},
		&model.Question{},
		&model.Option{},
		&model.TestQuestion{},
		&model.TestResult{},
		&model.TestSubmission{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

type integrationEnv struct {
	db      *gorm.DB
	session *ExamSessionService
	grading *GradingService
	result  *ResultService

	userID  uint
	testID  uint
	q1ID    uint
	q2ID    uint
	q1Right uint
	q1Wrong uint
}

// seedExam creates a two-question test whose window is currently open:
// one single-choice question and one free-text question accepting "Paris".
func seedExam(t *testing.T, db *gorm.DB) *integrationEnv {
	t.Helper()
	now := time.Now().Unix()

	test := model.Test{
		Name:            "integration test",
		DurationMinutes: 30,
		StartAt:         now - 60,
		EndAt:           now + 3600,
	}
	if err := db.Create(&test).Error; err != nil {
		t.Fatalf("create test: %v", err)
	}

	q1 := model.Question{Text: "capital of France?", Kind: model.SingleChoice}
	if err := db.Create(&q1).Error; err != nil {
		t.Fatalf("create q1: %v", err)
	}
	q1Opts := []model.Option{
		{QuestionID: q1.ID, Text: "Paris", IsCorrect: true},
		{QuestionID: q1.ID, Text: "Lyon"},
	}
	if err := db.Create(&q1Opts).Error; err != nil {
		t.Fatalf("create q1 options: %v", err)
	}

	q2 := model.Question{Text: "name the capital of France", Kind: model.FreeText}
	if err := db.Create(&q2).Error; err != nil {
		t.Fatalf("create q2: %v", err)
	}
	if err := db.Create(&model.Option{QuestionID: q2.ID, Text: "Paris", IsCorrect: true}).Error; err != nil {
		t.Fatalf("create q2 option: %v", err)
	}

	links := []model.TestQuestion{
		{TestID: test.ID, QuestionID: q1.ID, Position: 1},
		{TestID: test.ID, QuestionID: q2.ID, Position: 2},
	}
	if err := db.Create(&links).Error; err != nil {
		t.Fatalf("create test questions: %v", err)
	}

	examRepo := repository.NewExamRepository(db, nil, 0)
	attemptRepo := repository.NewAttemptRepository(db)
	storage := &StorageService{Provider: &LocalStorageProvider{}}

	return &integrationEnv{
		db:      db,
		session: NewExamSessionService(examRepo, attemptRepo, storage, db),
		grading: NewGradingService(examRepo, attemptRepo, db),
		result:  &ResultService{ExamRepo: examRepo, AttemptRepo: attemptRepo, Storage: storage},
		userID:  uint(time.Now().UnixNano() & 0x7fffffff),
		testID:  test.ID,
		q1ID:    q1.ID,
		q2ID:    q2.ID,
		q1Right: q1Opts[0].ID,
		q1Wrong: q1Opts[1].ID,
	}
}

func (e *integrationEnv) submissionCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	err := e.db.Model(&model.TestSubmission{}).
		Where("user_id = ? AND test_id = ?", e.userID, e.testID).
		Count(&count).Error
	if err != nil {
		t.Fatalf("count submissions: %v", err)
	}
	return count
}

func TestStartAttemptSeeding_DBIntegration(t *testing.T) {
	env := seedExam(t, openIntegrationDB(t))
	ctx := context.Background()

	view, err := env.session.StartAttempt(ctx, env.userID, env.testID)
	if err != nil {
		t.Fatalf("start attempt: %v", err)
	}
	if view.Message != "Test started" || len(view.Questions) != 2 {
		t.Fatalf("unexpected first session: message=%q questions=%d", view.Message, len(view.Questions))
	}
	if got := env.submissionCount(t); got != 2 {
		t.Fatalf("seeded %d submission rows, want 2", got)
	}

	var open int64
	err = env.db.Model(&model.TestSubmission{}).
		Where("user_id = ? AND test_id = ? AND status = ?", env.userID, env.testID, model.SubmissionOpen).
		Count(&open).Error
	if err != nil || open != 2 {
		t.Fatalf("open placeholder rows = %d (err %v), want 2", open, err)
	}

	// duplicate start resumes without duplicating rows
	view, err = env.session.StartAttempt(ctx, env.userID, env.testID)
	if err != nil {
		t.Fatalf("restart attempt: %v", err)
	}
	if view.Message != "Test resumed" {
		t.Fatalf("duplicate start message = %q, want Test resumed", view.Message)
	}
	if got := env.submissionCount(t); got != 2 {
		t.Fatalf("duplicate start left %d submission rows, want 2", got)
	}

	// correctness flags never appear in the session payload
	for _, q := range view.Questions {
		for _, opt := range q.Options {
			if opt.Text == "" {
				t.Errorf("question %d option %d has no text", q.QuestionID, opt.OptionID)
			}
		}
	}
}

func TestSubmitAnswersLifecycle_DBIntegration(t *testing.T) {
	env := seedExam(t, openIntegrationDB(t))
	ctx := context.Background()

	if _, err := env.session.StartAttempt(ctx, env.userID, env.testID); err != nil {
		t.Fatalf("start attempt: %v", err)
	}

	// a question outside the test is reported inline and writes nothing
	out, err := env.grading.SubmitAnswers(ctx, env.userID, env.testID, []AnswerInput{
		{QuestionID: 999999999, OptionID: uintPtr(env.q1Right)},
	})
	if err != nil {
		t.Fatalf("submit unknown question: %v", err)
	}
	if out.Results[0].Error != util.ErrQuestionNotInTest.Error() {
		t.Fatalf("unknown question verdict = %+v", out.Results[0])
	}
	if got := env.submissionCount(t); got != 2 {
		t.Fatalf("unknown question created a row: count=%d", got)
	}

	// first answer grades and persists
	out, err = env.grading.SubmitAnswers(ctx, env.userID, env.testID, []AnswerInput{
		{QuestionID: env.q1ID, OptionID: uintPtr(env.q1Right)},
	})
	if err != nil {
		t.Fatalf("submit q1: %v", err)
	}
	if out.Results[0].IsCorrect == nil || !*out.Results[0].IsCorrect {
		t.Fatalf("q1 verdict = %+v, want correct", out.Results[0])
	}
	if out.FinalSummary != nil {
		t.Fatalf("final summary emitted before all questions answered")
	}

	// replaying the question with a different option changes nothing
	out, err = env.grading.SubmitAnswers(ctx, env.userID, env.testID, []AnswerInput{
		{QuestionID: env.q1ID, OptionID: uintPtr(env.q1Wrong)},
	})
	if err != nil {
		t.Fatalf("replay q1: %v", err)
	}
	if out.Results[0].Message != "already submitted" {
		t.Fatalf("replay verdict = %+v, want already submitted", out.Results[0])
	}
	var sub model.TestSubmission
	err = env.db.Where("user_id = ? AND test_id = ? AND question_id = ?", env.userID, env.testID, env.q1ID).
		First(&sub).Error
	if err != nil {
		t.Fatalf("load q1 submission: %v", err)
	}
	if sub.IsCorrect == nil || !*sub.IsCorrect || sub.OptionID == nil || *sub.OptionID != env.q1Right {
		t.Fatalf("replay mutated stored submission: %+v", sub)
	}

	// the completing call carries the summary; free text is case-insensitive
	out, err = env.grading.SubmitAnswers(ctx, env.userID, env.testID, []AnswerInput{
		{QuestionID: env.q2ID, Text: "paris"},
	})
	if err != nil {
		t.Fatalf("submit q2: %v", err)
	}
	if out.Message != "test completed" || out.FinalSummary == nil {
		t.Fatalf("completing call result = %+v", out)
	}
	fs := out.FinalSummary
	if fs.TotalQuestions != 2 || fs.Attempted != 2 || fs.Correct != 2 || fs.Wrong != 0 ||
		fs.FinalScore != "100.00" || fs.FinalResult != model.ResultPass {
		t.Fatalf("final summary = %+v", fs)
	}

	// replay after completion reports every item and changes no state
	out, err = env.grading.SubmitAnswers(ctx, env.userID, env.testID, []AnswerInput{
		{QuestionID: env.q1ID, OptionID: uintPtr(env.q1Wrong)},
		{QuestionID: env.q2ID, Text: "London"},
	})
	if err != nil {
		t.Fatalf("replay after completion: %v", err)
	}
	if out.FinalSummary != nil {
		t.Fatalf("completion replayed a second final summary")
	}
	for _, v := range out.Results {
		if v.Message != "already submitted" {
			t.Fatalf("post-completion verdict = %+v, want already submitted", v)
		}
	}
	var attempt model.TestResult
	if err := env.db.Where("user_id = ? AND test_id = ?", env.userID, env.testID).First(&attempt).Error; err != nil {
		t.Fatalf("load attempt: %v", err)
	}
	if attempt.Status != model.AttemptCompleted || attempt.Correct != 2 || attempt.FinalScore != 100 {
		t.Fatalf("replay mutated attempt: %+v", attempt)
	}

	// a completed attempt cannot be started again
	if _, err := env.session.StartAttempt(ctx, env.userID, env.testID); !errors.Is(err, util.ErrAttemptCompleted) {
		t.Fatalf("restart of completed attempt: err=%v, want ErrAttemptCompleted", err)
	}
}

func TestConcurrentCompletion_DBIntegration(t *testing.T) {
	env := seedExam(t, openIntegrationDB(t))
	ctx := context.Background()

	if _, err := env.session.StartAttempt(ctx, env.userID, env.testID); err != nil {
		t.Fatalf("start attempt: %v", err)
	}

	// two calls race on the last two unanswered questions; the row lock on
	// the attempt forces one to observe the full answer set
	calls := []AnswerInput{
		{QuestionID: env.q1ID, OptionID: uintPtr(env.q1Right)},
		{QuestionID: env.q2ID, Text: "London"},
	}

	var wg sync.WaitGroup
	outs := make([]*SubmitResult, len(calls))
	errs := make([]error, len(calls))
	for i := range calls {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outs[i], errs[i] = env.grading.SubmitAnswers(ctx, env.userID, env.testID, []AnswerInput{calls[i]})
		}(i)
	}
	wg.Wait()

	summaries := 0
	for i := range calls {
		if errs[i] != nil {
			t.Fatalf("concurrent submit %d: %v", i, errs[i])
		}
		if outs[i].FinalSummary != nil {
			summaries++
		}
	}
	if summaries != 1 {
		t.Fatalf("%d calls emitted a final summary, want exactly 1", summaries)
	}

	var attempt model.TestResult
	if err := env.db.Where("user_id = ? AND test_id = ?", env.userID, env.testID).First(&attempt).Error; err != nil {
		t.Fatalf("load attempt: %v", err)
	}
	if attempt.Status != model.AttemptCompleted || attempt.Attempted != 2 ||
		attempt.Correct != 1 || attempt.FinalScore != 50 || attempt.FinalResult != model.ResultPass {
		t.Fatalf("finalized attempt = %+v", attempt)
	}
}
