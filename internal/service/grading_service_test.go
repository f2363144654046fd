package service

import (
	"fmt"
	"testing"

	"exam_portal_backend/internal/model"
)

func TestComputeSummary(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		correct   int
		wantScore string
		wantGrade string
	}{
		{"all correct", 2, 2, "100.00", model.ResultPass},
		{"exactly half passes", 2, 1, "50.00", model.ResultPass},
		{"none correct", 2, 0, "0.00", model.ResultFail},
		{"one of three fails", 3, 1, "33.33", model.ResultFail},
		{"two of three passes", 3, 2, "66.67", model.ResultPass},
		{"half of four passes", 4, 2, "50.00", model.ResultPass},
		{"just below half fails", 5, 2, "40.00", model.ResultFail},
		{"single question correct", 1, 1, "100.00", model.ResultPass},
		{"single question wrong", 1, 0, "0.00", model.ResultFail},
		{"repeating decimal rounds", 7, 5, "71.43", model.ResultPass},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := computeSummary(tt.total, tt.correct)

			if got.Status != model.AttemptCompleted {
				t.Errorf("Status = %q, want %q", got.Status, model.AttemptCompleted)
			}
			if got.TotalQuestions != tt.total || got.Attempted != tt.total {
				t.Errorf("TotalQuestions/Attempted = %d/%d, want %d/%d",
					got.TotalQuestions, got.Attempted, tt.total, tt.total)
			}
			if got.Correct != tt.correct {
				t.Errorf("Correct = %d, want %d", got.Correct, tt.correct)
			}
			if got.Wrong != tt.total-tt.correct {
				t.Errorf("Wrong = %d, want %d", got.Wrong, tt.total-tt.correct)
			}
			if score := fmt.Sprintf("%.2f", got.FinalScore); score != tt.wantScore {
				t.Errorf("FinalScore = %s, want %s", score, tt.wantScore)
			}
			if got.FinalResult != tt.wantGrade {
				t.Errorf("FinalResult = %q, want %q", got.FinalResult, tt.wantGrade)
			}
		})
	}
}
