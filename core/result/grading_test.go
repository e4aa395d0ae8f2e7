package result

import "testing"

func TestGradeOf(t *testing.T) {
	tests := []struct {
		name  string
		total float64
		want  string
	}{
		{name: "A lower bound", total: 70.0, want: "A"},
		{name: "just below A", total: 69.9, want: "B"},
		{name: "perfect score", total: 100, want: "A"},
		{name: "B lower bound", total: 60.0, want: "B"},
		{name: "C lower bound", total: 50.0, want: "C"},
		{name: "just below C", total: 49.9, want: "D"},
		{name: "D lower bound", total: 45.0, want: "D"},
		{name: "E lower bound", total: 40.0, want: "E"},
		{name: "just below E", total: 39.9, want: "F"},
		{name: "zero", total: 0, want: "F"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GradeOf(tt.total); got != tt.want {
				t.Errorf("GradeOf(%v) = %q, want %q", tt.total, got, tt.want)
			}
		})
	}
}

func TestGradePoint(t *testing.T) {
	tests := []struct {
		letter string
		want   int
	}{
		{letter: "A", want: 5},
		{letter: "B", want: 4},
		{letter: "C", want: 3},
		{letter: "D", want: 2},
		{letter: "E", want: 1},
		{letter: "F", want: 0},
		{letter: "X", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.letter, func(t *testing.T) {
			if got := GradePoint(tt.letter); got != tt.want {
				t.Errorf("GradePoint(%q) = %d, want %d", tt.letter, got, tt.want)
			}
		})
	}
}
