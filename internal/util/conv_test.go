package util

import "testing"

func TestParseUintOrZero(t *testing.T) {
	tests := []struct {
		in   string
		want uint
	}{
		{"42", 42},
		{"0", 0},
		{"", 0},
		{"-1", 0},
		{"abc", 0},
		{"12.5", 0},
	}

	for _, tt := range tests {
		if got := ParseUintOrZero(tt.in); got != tt.want {
			t.Errorf("ParseUintOrZero(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
