package service

import (
	"context"
	"errors"

	"exam_portal_backend/internal/model"
	"exam_portal_backend/internal/repository"
	"exam_portal_backend/internal/util"

	"gorm.io/gorm"
)

// ResultService is the read side: it assembles a graded attempt with the
// submitted and correct options for post-hoc review. Unlike the session
// view, this one exposes ground-truth correctness.
type ResultService struct {
	ExamRepo    *repository.ExamRepository
	AttemptRepo *repository.AttemptRepository
	Storage     *StorageService
}

func NewResultService(examRepo *repository.ExamRepository, attemptRepo *repository.AttemptRepository, storage *StorageService) *ResultService {
	return &ResultService{
		ExamRepo:    examRepo,
		AttemptRepo: attemptRepo,
		Storage:     storage,
	}
}

type ReviewOption struct {
	OptionID uint   `json:"option_id"`
	Text     string `json:"text"`
	// nil while the question's ground truth is still withheld
	IsCorrect *bool  `json:"isCorrect,omitempty"`
	Image     string `json:"image,omitempty"`
}

type ReviewAnswer struct {
	QuestionID        uint           `json:"question_id"`
	Text              string         `json:"text"`
	Kind              string         `json:"kind"`
	SubmittedOptionID *uint          `json:"submittedOptionId,omitempty"`
	SubmittedText     string         `json:"submittedText,omitempty"`
	IsCorrect         *bool          `json:"isCorrect,omitempty"`
	Options           []ReviewOption `json:"options"`
}

type ResultView struct {
	Result  *model.TestResult `json:"result"`
	Answers []ReviewAnswer    `json:"answers"`
}

func (s *ResultService) GetResult(ctx context.Context, userID, testID uint) (*ResultView, error) {
	attempt, err := s.AttemptRepo.FindAttempt(userID, testID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}

	questions, err := s.ExamRepo.ListTestQuestions(ctx, testID)
	if err != nil {
		return nil, err
	}

	subs, err := s.AttemptRepo.ListSubmissions(userID, testID)
	if err != nil {
		return nil, err
	}
	answers := s.assembleAnswers(ctx, attempt, questions, subs)

	return &ResultView{Result: attempt, Answers: answers}, nil
}

// assembleAnswers merges the question set with the user's submissions.
// Ground-truth correctness is withheld for any question not yet answered
// while the attempt is still open; a test-taker must never be able to read
// the answer key for questions they can still submit.
func (s *ResultService) assembleAnswers(ctx context.Context, attempt *model.TestResult, questions []model.Question, subs []model.TestSubmission) []ReviewAnswer {
	subByQuestion := make(map[uint]model.TestSubmission, len(subs))
	for _, sub := range subs {
		subByQuestion[sub.QuestionID] = sub
	}

	completed := attempt.Status == model.AttemptCompleted

	answers := make([]ReviewAnswer, len(questions))
	for i, q := range questions {
		ra := ReviewAnswer{
			QuestionID: q.ID,
			Text:       q.Text,
			Kind:       string(q.Kind),
			Options:    make([]ReviewOption, len(q.Options)),
		}

		sub, answered := subByQuestion[q.ID]
		answered = answered && sub.Status == model.SubmissionAnswered
		reveal := completed || answered

		for j, opt := range q.Options {
			ro := ReviewOption{
				OptionID: opt.ID,
				Text:     opt.Text,
				Image:    s.Storage.ImageURL(ctx, opt.Image),
			}
			if reveal {
				isCorrect := opt.IsCorrect
				ro.IsCorrect = &isCorrect
			}
			ra.Options[j] = ro
		}
		if answered {
			ra.SubmittedOptionID = sub.OptionID
			ra.SubmittedText = sub.AnswerText
			ra.IsCorrect = sub.IsCorrect
		}
		answers[i] = ra
	}

	return answers
}

// ListTestResults is the monitor view of every attempt at one test.
func (s *ResultService) ListTestResults(testID uint, page, limit int) ([]repository.TestResultRow, int64, error) {
	return s.AttemptRepo.ListResultsForTest(testID, page, limit)
}
