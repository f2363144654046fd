package service

import (
	"context"
	"errors"
	"time"

	"exam_portal_backend/internal/model"
	"exam_portal_backend/internal/repository"
	"exam_portal_backend/internal/util"

	"gorm.io/gorm"
)

// ExamSessionService creates test attempts: it materializes the question
// set for display and seeds the per-question submission placeholders the
// grading engine later advances.
type ExamSessionService struct {
	ExamRepo    *repository.ExamRepository
	AttemptRepo *repository.AttemptRepository
	Storage     *StorageService
	DB          *gorm.DB
}

func NewExamSessionService(examRepo *repository.ExamRepository, attemptRepo *repository.AttemptRepository, storage *StorageService, db *gorm.DB) *ExamSessionService {
	return &ExamSessionService{
		ExamRepo:    examRepo,
		AttemptRepo: attemptRepo,
		Storage:     storage,
		DB:          db,
	}
}

type SessionOption struct {
	OptionID uint   `json:"option_id"`
	Text     string `json:"text"`
	Image    string `json:"image,omitempty"`
}

type SessionQuestion struct {
	QuestionID    uint            `json:"question_id"`
	Text          string          `json:"text"`
	Kind          string          `json:"kind"`
	TotalMarks    int             `json:"totalMarks"`
	NegativeMarks int             `json:"negativeMarks"`
	Image         string          `json:"image,omitempty"`
	Options       []SessionOption `json:"options"`
}

// SessionView is what a test-taker sees. It must never carry is_correct.
type SessionView struct {
	Message         string            `json:"message"`
	TestID          uint              `json:"test_id"`
	Name            string            `json:"name"`
	DurationMinutes int               `json:"durationMinutes"`
	EndAt           int64             `json:"endAt"`
	Questions       []SessionQuestion `json:"questions"`
}

// StartAttempt opens (or resumes) the attempt of userID at testID. A second
// call for the same pair is an idempotent no-op that returns the existing
// session: the placeholder insert ignores conflicts on the unique key, so
// no duplicate rows can appear either way.
func (s *ExamSessionService) StartAttempt(ctx context.Context, userID, testID uint) (*SessionView, error) {
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

	questions, err := s.ExamRepo.ListTestQuestions(ctx, testID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, util.ErrNoQuestions
	}

	message := "Test resumed"
	attempt, err := s.AttemptRepo.FindAttempt(userID, testID)
	switch {
	case err == nil:
		if attempt.Status == model.AttemptCompleted {
			return nil, util.ErrAttemptCompleted
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		questionIDs := make([]uint, len(questions))
		for i, q := range questions {
			questionIDs[i] = q.ID
		}

		// attempt row and placeholders persist together or not at all
		err = s.DB.Transaction(func(tx *gorm.DB) error {
			if err := s.AttemptRepo.UpsertOpenAttempt(tx, userID, testID, len(questions), now); err != nil {
				return err
			}
			return s.AttemptRepo.SeedOpenSubmissions(tx, userID, testID, questionIDs)
		})
		if err != nil {
			return nil, err
		}
		message = "Test started"
	default:
		return nil, err
	}

	return s.buildSessionView(ctx, test, questions, message), nil
}

func (s *ExamSessionService) buildSessionView(ctx context.Context, test *model.Test, questions []model.Question, message string) *SessionView {
	view := &SessionView{
		Message:         message,
		TestID:          test.ID,
		Name:            test.Name,
		DurationMinutes: test.DurationMinutes,
		EndAt:           test.EndAt,
		Questions:       make([]SessionQuestion, len(questions)),
	}

	for i, q := range questions {
		sq := SessionQuestion{
			QuestionID:    q.ID,
			Text:          q.Text,
			Kind:          string(q.Kind),
			TotalMarks:    q.TotalMarks,
			NegativeMarks: q.NegativeMarks,
			Image:         s.Storage.ImageURL(ctx, q.Image),
		}
		if q.Kind != model.FreeText {
			sq.Options = make([]SessionOption, len(q.Options))
			for j, opt := range q.Options {
				sq.Options[j] = SessionOption{
					OptionID: opt.ID,
					Text:     opt.Text,
					Image:    s.Storage.ImageURL(ctx, opt.Image),
				}
			}
		}
		view.Questions[i] = sq
	}

	return view
}

type ActiveTest struct {
	TestID          uint   `json:"test_id"`
	Name            string `json:"name"`
	CourseID        uint   `json:"courseId"`
	DurationMinutes int    `json:"durationMinutes"`
	StartAt         int64  `json:"startAt"`
	EndAt           int64  `json:"endAt"`
}

// ListActiveTests returns the tests currently open for taking, optionally
// narrowed to one course.
func (s *ExamSessionService) ListActiveTests(courseID uint) ([]ActiveTest, error) {
	tests, err := s.ExamRepo.ListActiveTests(courseID, time.Now().Unix())
	if err != nil {
		return nil, err
	}

	out := make([]ActiveTest, len(tests))
	for i, t := range tests {
		out[i] = ActiveTest{
			TestID:          t.ID,
			Name:            t.Name,
			CourseID:        t.CourseID,
			DurationMinutes: t.DurationMinutes,
			StartAt:         t.StartAt,
			EndAt:           t.EndAt,
		}
	}
	return out, nil
}
