package service

import (
	"testing"

	"exam_portal_backend/internal/model"
)

func uintPtr(v uint) *uint { return &v }

func choiceQuestion(kind model.QuestionKind) model.Question {
	q := model.Question{Text: "capital of France?", Kind: kind}
	q.ID = 10
	q.Options = []model.Option{
		{QuestionID: 10, Text: "Paris", IsCorrect: true},
		{QuestionID: 10, Text: "Lyon"},
		{QuestionID: 10, Text: "Marseille"},
	}
	q.Options[0].ID = 101
	q.Options[1].ID = 102
	q.Options[2].ID = 103
	return q
}

func TestChoiceGrader(t *testing.T) {
	g := graderFor(choiceQuestion(model.SingleChoice))

	tests := []struct {
		name string
		in   AnswerInput
		want bool
	}{
		{"correct option", AnswerInput{QuestionID: 10, OptionID: uintPtr(101)}, true},
		{"wrong option", AnswerInput{QuestionID: 10, OptionID: uintPtr(102)}, false},
		{"option from another question", AnswerInput{QuestionID: 10, OptionID: uintPtr(999)}, false},
		{"no option at all", AnswerInput{QuestionID: 10}, false},
		{"text ignored for choice kinds", AnswerInput{QuestionID: 10, Text: "Paris"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.Grade(tt.in); got != tt.want {
				t.Errorf("Grade(%+v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFreeTextGrader(t *testing.T) {
	q := model.Question{Text: "capital of France?", Kind: model.FreeText}
	q.ID = 20
	q.Options = []model.Option{
		{QuestionID: 20, Text: "Paris", IsCorrect: true},
		{QuestionID: 20, Text: "decoy"},
	}
	g := graderFor(q)

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"exact match", "Paris", true},
		{"lowercase match", "paris", true},
		{"uppercase match", "PARIS", true},
		{"surrounding whitespace", "  Paris \n", true},
		{"wrong answer", "London", false},
		{"non-accepted option text", "decoy", false},
		{"empty text", "", false},
		{"whitespace only", "   ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := AnswerInput{QuestionID: 20, Text: tt.text}
			if got := g.Grade(in); got != tt.want {
				t.Errorf("Grade(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestFreeTextGraderNoAcceptedAnswers(t *testing.T) {
	q := model.Question{Text: "unanswerable", Kind: model.FreeText}
	q.ID = 30
	g := graderFor(q)

	if g.Grade(AnswerInput{QuestionID: 30, Text: "anything"}) {
		t.Error("question with no accepted answers graded an answer correct")
	}
}

func TestGraderForMultiChoiceAcceptsAnyCorrectOption(t *testing.T) {
	q := choiceQuestion(model.MultiChoice)
	q.Options[2].IsCorrect = true
	g := graderFor(q)

	if !g.Grade(AnswerInput{QuestionID: 10, OptionID: uintPtr(101)}) {
		t.Error("first correct option rejected")
	}
	if !g.Grade(AnswerInput{QuestionID: 10, OptionID: uintPtr(103)}) {
		t.Error("second correct option rejected")
	}
	if g.Grade(AnswerInput{QuestionID: 10, OptionID: uintPtr(102)}) {
		t.Error("incorrect option accepted")
	}
}
