package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"exam_portal_backend/internal/model"
	"exam_portal_backend/internal/repository"
	"exam_portal_backend/internal/util"
	"exam_portal_backend/pkg/monitoring"

	"gorm.io/gorm"
)

// GradingService accepts answer submissions, persists each one exactly once
// and finalizes the attempt when the last question is answered.
type GradingService struct {
	ExamRepo    *repository.ExamRepository
	AttemptRepo *repository.AttemptRepository
	DB          *gorm.DB
}

func NewGradingService(examRepo *repository.ExamRepository, attemptRepo *repository.AttemptRepository, db *gorm.DB) *GradingService {
	return &GradingService{
		ExamRepo:    examRepo,
		AttemptRepo: attemptRepo,
		DB:          db,
	}
}

// AnswerVerdict is the per-item outcome: exactly one of IsCorrect, Message
// or Error is set.
type AnswerVerdict struct {
	QuestionID uint   `json:"question_id"`
	IsCorrect  *bool  `json:"isCorrect,omitempty"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
}

type FinalSummary struct {
	TotalQuestions int    `json:"totalQuestions"`
	Attempted      int    `json:"attempted"`
	Correct        int    `json:"correct"`
	Wrong          int    `json:"wrong"`
	FinalScore     string `json:"finalScore"`
	FinalResult    string `json:"finalResult"`
}

type SubmitResult struct {
	Message      string          `json:"message"`
	Results      []AnswerVerdict `json:"results"`
	FinalSummary *FinalSummary   `json:"finalSummary,omitempty"`
}

// SubmitAnswers grades a batch of answers inside one transaction. Per-item
// problems (unknown question, duplicate submission) are reported inline and
// never abort the batch; only a store failure rolls the call back.
func (s *GradingService) SubmitAnswers(ctx context.Context, userID, testID uint, answers []AnswerInput) (*SubmitResult, error) {
	test, err := s.ExamRepo.FindTestByID(testID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrTestNotFound
		}
		return nil, err
	}

	now := time.Now().Unix()
	if !WithinWindow(now, test.StartAt, test.EndAt) {
		return nil, util.ErrTestWindowClosed
	}

	attempt, err := s.AttemptRepo.FindAttempt(userID, testID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}
	if Expired(now, attempt.StartTime, test.DurationMinutes) {
		return nil, util.ErrTestTimeExpired
	}

	questions, err := s.ExamRepo.ListTestQuestions(ctx, testID)
	if err != nil {
		return nil, err
	}
	graders := make(map[uint]grader, len(questions))
	for _, q := range questions {
		graders[q.ID] = graderFor(q)
	}

	out := &SubmitResult{
		Message: "answers recorded",
		Results: make([]AnswerVerdict, 0, len(answers)),
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		// serialize with other submission calls for this attempt so the
		// counts below cannot race past each other
		if _, err := s.AttemptRepo.LockAttempt(tx, userID, testID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrAttemptNotFound
			}
			return err
		}

		for _, a := range answers {
			g, ok := graders[a.QuestionID]
			if !ok {
				out.Results = append(out.Results, AnswerVerdict{
					QuestionID: a.QuestionID,
					Error:      util.ErrQuestionNotInTest.Error(),
				})
				continue
			}

			isCorrect := g.Grade(a)
			applied, err := s.AttemptRepo.AnswerSubmission(tx, userID, testID, a.QuestionID, a.OptionID, a.Text, isCorrect)
			if err != nil {
				return err
			}
			if !applied {
				// benign replay, the stored verdict stands
				out.Results = append(out.Results, AnswerVerdict{
					QuestionID: a.QuestionID,
					Message:    "already submitted",
				})
				continue
			}

			monitoring.AnswersGraded.Inc()
			verdict := isCorrect
			out.Results = append(out.Results, AnswerVerdict{
				QuestionID: a.QuestionID,
				IsCorrect:  &verdict,
			})
		}

		total, err := s.ExamRepo.CountTestQuestions(tx, testID)
		if err != nil {
			return err
		}
		attempted, err := s.AttemptRepo.CountAnswered(tx, userID, testID)
		if err != nil {
			return err
		}
		if total == 0 || attempted < total {
			return nil
		}

		correct, err := s.AttemptRepo.CountCorrect(tx, userID, testID)
		if err != nil {
			return err
		}

		summary := computeSummary(int(total), int(correct))
		won, err := s.AttemptRepo.FinalizeAttempt(tx, userID, testID, &summary)
		if err != nil {
			return err
		}
		if won {
			// exactly one completing call reaches here
			out.Message = "test completed"
			out.FinalSummary = &FinalSummary{
				TotalQuestions: summary.TotalQuestions,
				Attempted:      summary.Attempted,
				Correct:        summary.Correct,
				Wrong:          summary.Wrong,
				FinalScore:     fmt.Sprintf("%.2f", summary.FinalScore),
				FinalResult:    summary.FinalResult,
			}
			monitoring.AttemptsFinalized.WithLabelValues(summary.FinalResult).Inc()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// computeSummary derives the aggregate fields for a fully answered attempt.
// The score is a percentage rounded to two decimals; the pass threshold is
// inclusive and numeric, so correct=1 of total=2 passes (1 >= 1.0).
func computeSummary(totalQuestions, correct int) model.TestResult {
	wrong := totalQuestions - correct
	score := math.Round(float64(correct)/float64(totalQuestions)*100*100) / 100

	result := model.ResultFail
	if float64(correct) >= float64(totalQuestions)/2 {
		result = model.ResultPass
	}

	return model.TestResult{
		Status:         model.AttemptCompleted,
		TotalQuestions: totalQuestions,
		Attempted:      totalQuestions,
		Correct:        correct,
		Wrong:          wrong,
		FinalScore:     score,
		FinalResult:    result,
	}
}
