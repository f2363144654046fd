package service

import (
	"exam_portal_backend/internal/model"
	"strings"
)

// AnswerInput is one submitted answer as it arrives from the client.
type AnswerInput struct {
	QuestionID uint   `json:"question_id" binding:"required"`
	OptionID   *uint  `json:"option_id,omitempty"`
	Text       string `json:"text,omitempty"`
}

// grader decides correctness for one question. The kind dispatch happens
// once per question when the grader is built, not inside the grading loop.
type grader interface {
	Grade(in AnswerInput) bool
}

type choiceGrader struct {
	correct map[uint]bool
}

func (g choiceGrader) Grade(in AnswerInput) bool {
	if in.OptionID == nil {
		return false
	}
	return g.correct[*in.OptionID]
}

type freeTextGrader struct {
	accepted []string
}

func (g freeTextGrader) Grade(in AnswerInput) bool {
	submitted := strings.TrimSpace(in.Text)
	if submitted == "" {
		return false
	}
	for _, want := range g.accepted {
		if strings.EqualFold(submitted, want) {
			return true
		}
	}
	return false
}

// graderFor builds the grader variant for a question from its ground-truth
// options. Choice kinds check membership of the submitted option among the
// options flagged correct; free text compares case-insensitively against
// the accepted option text.
func graderFor(q model.Question) grader {
	switch q.Kind {
	case model.FreeText:
		var accepted []string
		for _, opt := range q.Options {
			if opt.IsCorrect {
				accepted = append(accepted, strings.TrimSpace(opt.Text))
			}
		}
		return freeTextGrader{accepted: accepted}
	default:
		correct := make(map[uint]bool, len(q.Options))
		for _, opt := range q.Options {
			if opt.IsCorrect {
				correct[opt.ID] = true
			}
		}
		return choiceGrader{correct: correct}
	}
}
