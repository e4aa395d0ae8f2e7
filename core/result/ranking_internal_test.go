package result

import (
	"testing"

	"github.com/volatiletech/null/v8"
)

func cohortRow(id string, total float64) ExamResult {
	return ExamResult{
		ID:          id,
		StudentID:   id,
		CAScore:     null.Float64From(0),
		TheoryScore: null.Float64From(0),
		ExamScore:   null.Float64From(0),
		TotalScore:  null.Float64From(total),
	}
}

func TestRankCohort(t *testing.T) {
	tests := []struct {
		name          string
		totals        map[string]float64
		wantPositions map[string]int
	}{
		{
			name:          "no ties",
			totals:        map[string]float64{"a": 90, "b": 85, "c": 70},
			wantPositions: map[string]int{"a": 1, "b": 2, "c": 3},
		},
		{
			// standard competition ranking: tied scores share a position
			// and the next distinct score skips ahead
			name:          "two-way tie at the top",
			totals:        map[string]float64{"a": 90, "b": 90, "c": 85},
			wantPositions: map[string]int{"a": 1, "b": 1, "c": 3},
		},
		{
			name:          "three-way tie in the middle",
			totals:        map[string]float64{"a": 95, "b": 80, "c": 80, "d": 80, "e": 60},
			wantPositions: map[string]int{"a": 1, "b": 2, "c": 2, "d": 2, "e": 5},
		},
		{
			name:          "all tied",
			totals:        map[string]float64{"a": 50, "b": 50, "c": 50},
			wantPositions: map[string]int{"a": 1, "b": 1, "c": 1},
		},
		{
			name:          "single row",
			totals:        map[string]float64{"a": 12.5},
			wantPositions: map[string]int{"a": 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cohort := make([]ExamResult, 0, len(tt.totals))
			for id, total := range tt.totals {
				cohort = append(cohort, cohortRow(id, total))
			}

			updates := rankCohort(cohort)
			if len(updates) != len(tt.totals) {
				t.Fatalf("rankCohort() returned %d updates, want %d", len(updates), len(tt.totals))
			}
			for _, upd := range updates {
				if want := tt.wantPositions[upd.ResultID]; upd.Position != want {
					t.Errorf("rankCohort() position[%s] = %d, want %d", upd.ResultID, upd.Position, want)
				}
				if upd.TotalStudents != len(tt.totals) {
					t.Errorf("rankCohort() totalStudents = %d, want %d", upd.TotalStudents, len(tt.totals))
				}
			}
		})
	}
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		max     float64
		want    null.Float64
		wantErr error
	}{
		{name: "blank means absent", raw: "", max: 30, want: null.Float64{}},
		{name: "whitespace means absent", raw: "  ", max: 30, want: null.Float64{}},
		{name: "zero is a value", raw: "0", max: 30, want: null.Float64From(0)},
		{name: "decimal", raw: "25.5", max: 30, want: null.Float64From(25.5)},
		{name: "at cap", raw: "30", max: 30, want: null.Float64From(30)},
		{name: "above cap", raw: "30.1", max: 30, wantErr: ErrInvalidValue},
		{name: "negative", raw: "-1", max: 30, wantErr: ErrInvalidValue},
		{name: "non-numeric", raw: "abc", max: 30, wantErr: ErrInvalidValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseScore(tt.raw, tt.max)
			if err != tt.wantErr {
				t.Fatalf("parseScore() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseScore() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
