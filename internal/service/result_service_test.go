package service

import (
	"context"
	"testing"

	"exam_portal_backend/internal/model"
)

func reviewFixture() ([]model.Question, []model.TestSubmission) {
	q1 := choiceQuestion(model.SingleChoice)
	q2 := model.Question{Text: "capital of Italy?", Kind: model.SingleChoice}
	q2.ID = 11
	q2.Options = []model.Option{
		{QuestionID: 11, Text: "Rome", IsCorrect: true},
		{QuestionID: 11, Text: "Milan"},
	}
	q2.Options[0].ID = 201
	q2.Options[1].ID = 202

	correct := true
	subs := []model.TestSubmission{
		{UserID: 1, TestID: 5, QuestionID: 10, OptionID: uintPtr(101), IsCorrect: &correct, Status: model.SubmissionAnswered},
		{UserID: 1, TestID: 5, QuestionID: 11, Status: model.SubmissionOpen},
	}
	return []model.Question{q1, q2}, subs
}

func newReviewService() *ResultService {
	return &ResultService{Storage: &StorageService{Provider: &LocalStorageProvider{}}}
}

func TestAssembleAnswersWithholdsKeyWhileAttemptOpen(t *testing.T) {
	questions, subs := reviewFixture()
	attempt := &model.TestResult{Status: model.AttemptOpen}

	answers := newReviewService().assembleAnswers(context.Background(), attempt, questions, subs)

	if len(answers) != 2 {
		t.Fatalf("got %d answers, want 2", len(answers))
	}

	// the answered question reveals its ground truth
	for _, opt := range answers[0].Options {
		if opt.IsCorrect == nil {
			t.Errorf("answered question option %d: ground truth withheld", opt.OptionID)
		}
	}
	if answers[0].SubmittedOptionID == nil || *answers[0].SubmittedOptionID != 101 {
		t.Errorf("answered question lost its submitted option: %+v", answers[0])
	}

	// the still-open question must not leak which option is correct
	for _, opt := range answers[1].Options {
		if opt.IsCorrect != nil {
			t.Errorf("open question option %d: ground truth leaked", opt.OptionID)
		}
	}
	if answers[1].SubmittedOptionID != nil || answers[1].IsCorrect != nil {
		t.Errorf("open question carries submission fields: %+v", answers[1])
	}
}

func TestAssembleAnswersRevealsAllOnceCompleted(t *testing.T) {
	questions, subs := reviewFixture()
	attempt := &model.TestResult{Status: model.AttemptCompleted}

	answers := newReviewService().assembleAnswers(context.Background(), attempt, questions, subs)

	for _, ra := range answers {
		for _, opt := range ra.Options {
			if opt.IsCorrect == nil {
				t.Errorf("question %d option %d: ground truth withheld after completion", ra.QuestionID, opt.OptionID)
			}
		}
	}
	if got := answers[1].Options[0]; got.IsCorrect == nil || !*got.IsCorrect {
		t.Errorf("correct option not flagged after completion: %+v", got)
	}
}
