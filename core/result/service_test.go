package result_test

import (
	"context"
	"sync"
	"testing"

	"github.com/volatiletech/null/v8"

	"github.com/moh-Adedamola/molek-records/core"
	"github.com/moh-Adedamola/molek-records/core/result"
	testutil "github.com/moh-Adedamola/molek-records/tests"
)

func f64(v float64) null.Float64 { return null.Float64From(v) }

func TestService_Merge(t *testing.T) {
	ctx := context.Background()

	caTheory := result.ScorePatch{CAScore: f64(25), TheoryScore: f64(30)}
	exam := result.ScorePatch{ExamScore: f64(20)}

	// the two batches arrive in any order and must converge on the same record
	orders := []struct {
		name    string
		patches []result.ScorePatch
	}{
		{name: "ca_theory then exam", patches: []result.ScorePatch{caTheory, exam}},
		{name: "exam then ca_theory", patches: []result.ScorePatch{exam, caTheory}},
	}
	for _, tt := range orders {
		t.Run(tt.name, func(t *testing.T) {
			env := testutil.NewEnv(t)
			std := env.AddStudent(t, "Ada Obi", "MOL/001", "JSS1")
			sub := env.AddSubject(t, "Mathematics")
			key := result.ResultKey{StudentID: std.ID, SubjectID: sub.ID, SessionID: env.Session.ID, TermID: env.Term.ID}

			var (
				res     result.ExamResult
				created bool
				err     error
			)
			for i, patch := range tt.patches {
				res, created, err = env.ResultSvc.Merge(ctx, key, patch)
				if err != nil {
					t.Fatalf("Merge() #%d failed: %v", i+1, err)
				}
				if wantCreated := i == 0; created != wantCreated {
					t.Errorf("Merge() #%d created = %v, want %v", i+1, created, wantCreated)
				}
			}

			if !res.IsComplete() {
				t.Fatal("Merge() result incomplete after both batches")
			}
			if res.TotalScore.Float64 != 75 {
				t.Errorf("Merge() total = %v, want 75", res.TotalScore.Float64)
			}
			if res.Grade.String != "A" {
				t.Errorf("Merge() grade = %q, want A", res.Grade.String)
			}
		})
	}
}

func TestService_Merge_concurrent(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	std := env.AddStudent(t, "Ada Obi", "MOL/001", "JSS1")
	sub := env.AddSubject(t, "Mathematics")
	key := result.ResultKey{StudentID: std.ID, SubjectID: sub.ID, SessionID: env.Session.ID, TermID: env.Term.ID}

	// the two feeds land at the same time; merges on one identity are
	// serialised, so neither patch may clobber the other and exactly one
	// call observes the record being created
	patches := []result.ScorePatch{
		{CAScore: f64(25), TheoryScore: f64(30)},
		{ExamScore: f64(20)},
	}
	createdCh := make(chan bool, len(patches))
	var wg sync.WaitGroup
	for _, patch := range patches {
		wg.Add(1)
		go func(patch result.ScorePatch) {
			defer wg.Done()
			_, created, err := env.ResultSvc.Merge(ctx, key, patch)
			if err != nil {
				t.Errorf("Merge() failed: %v", err)
				return
			}
			createdCh <- created
		}(patch)
	}
	wg.Wait()
	close(createdCh)

	var createdCount int
	for created := range createdCh {
		if created {
			createdCount++
		}
	}
	if createdCount != 1 {
		t.Errorf("Merge() created %d records, want exactly 1", createdCount)
	}

	res, err := env.ResultSvc.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if res.CAScore.Float64 != 25 || res.TheoryScore.Float64 != 30 || res.ExamScore.Float64 != 20 {
		t.Errorf("Merge() lost a concurrent patch: %+v", res)
	}
	if !res.IsComplete() || res.TotalScore.Float64 != 75 {
		t.Errorf("Merge() total = %+v, want 75", res.TotalScore)
	}
}

func TestService_Merge_incomplete(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	std := env.AddStudent(t, "Ada Obi", "MOL/001", "JSS1")
	sub := env.AddSubject(t, "Mathematics")
	key := result.ResultKey{StudentID: std.ID, SubjectID: sub.ID, SessionID: env.Session.ID, TermID: env.Term.ID}

	res, _, err := env.ResultSvc.Merge(ctx, key, result.ScorePatch{CAScore: f64(25), TheoryScore: f64(30)})
	if err != nil {
		t.Fatalf("Merge() failed: %v", err)
	}
	if res.TotalScore.Valid || res.Grade.Valid {
		t.Errorf("Merge() derived total/grade with a missing component: total=%+v grade=%+v", res.TotalScore, res.Grade)
	}
}

func TestService_Merge_resubmission(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	std := env.AddStudent(t, "Ada Obi", "MOL/001", "JSS1")
	sub := env.AddSubject(t, "Mathematics")
	key := result.ResultKey{StudentID: std.ID, SubjectID: sub.ID, SessionID: env.Session.ID, TermID: env.Term.ID}
	patch := result.ScorePatch{CAScore: f64(25), TheoryScore: f64(30)}

	first, created, err := env.ResultSvc.Merge(ctx, key, patch)
	if err != nil {
		t.Fatalf("Merge() #1 failed: %v", err)
	}
	if !created {
		t.Error("Merge() #1 created = false, want true")
	}

	// an identical resubmission updates in place and changes nothing
	second, created, err := env.ResultSvc.Merge(ctx, key, patch)
	if err != nil {
		t.Fatalf("Merge() #2 failed: %v", err)
	}
	if created {
		t.Error("Merge() #2 created = true, want false")
	}
	if second.CAScore != first.CAScore || second.TheoryScore != first.TheoryScore || second.TotalScore != first.TotalScore {
		t.Errorf("Merge() #2 changed scores: %+v -> %+v", first, second)
	}
}

func TestService_Merge_correction(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	std := env.AddStudent(t, "Ada Obi", "MOL/001", "JSS1")
	sub := env.AddSubject(t, "Mathematics")
	key := result.ResultKey{StudentID: std.ID, SubjectID: sub.ID, SessionID: env.Session.ID, TermID: env.Term.ID}

	env.SeedResult(t, std.ID, sub.ID, 25, 30, 20)

	// last write wins per field; untouched fields survive
	res, _, err := env.ResultSvc.Merge(ctx, key, result.ScorePatch{ExamScore: f64(10)})
	if err != nil {
		t.Fatalf("Merge() correction failed: %v", err)
	}
	if res.ExamScore.Float64 != 10 {
		t.Errorf("Merge() exam = %v, want 10", res.ExamScore.Float64)
	}
	if res.CAScore.Float64 != 25 || res.TheoryScore.Float64 != 30 {
		t.Errorf("Merge() clobbered untouched fields: %+v", res)
	}
	if res.TotalScore.Float64 != 65 {
		t.Errorf("Merge() total = %v, want 65", res.TotalScore.Float64)
	}
	if res.Grade.String != "B" {
		t.Errorf("Merge() grade = %q, want B", res.Grade.String)
	}
}

func TestService_Merge_ceiling(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	std := env.AddStudent(t, "Ada Obi", "MOL/001", "JSS1")
	sub := env.AddSubject(t, "Mathematics")
	key := result.ResultKey{StudentID: std.ID, SubjectID: sub.ID, SessionID: env.Session.ID, TermID: env.Term.ID}

	before, _, err := env.ResultSvc.Merge(ctx, key, result.ScorePatch{ExamScore: f64(30)})
	if err != nil {
		t.Fatalf("Merge() exam failed: %v", err)
	}

	// the ceiling is checked against the merged state: stored exam 30
	// plus incoming theory 40.5 jointly breach 70
	_, _, err = env.ResultSvc.Merge(ctx, key, result.ScorePatch{TheoryScore: f64(40.5)})
	if err == nil {
		t.Fatal("Merge() accepted a combined score above the ceiling")
	}

	after, err := env.ResultSvc.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	testutil.AssertEqualJSON(t, before, after) // rejected merge writes nothing
}

func TestService_Merge_errors(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	std := env.AddStudent(t, "Ada Obi", "MOL/001", "JSS1")
	sub := env.AddSubject(t, "Mathematics")
	key := result.ResultKey{StudentID: std.ID, SubjectID: sub.ID, SessionID: env.Session.ID, TermID: env.Term.ID}

	tests := []struct {
		name      string
		patch     result.ScorePatch
		wantErr   error
		wantField string
	}{
		{name: "empty patch", patch: result.ScorePatch{}, wantErr: result.ErrEmptyPatch},
		{name: "ca above cap", patch: result.ScorePatch{CAScore: f64(30.5)}, wantErr: result.ErrInvalidScore, wantField: "ca_score"},
		{name: "negative theory", patch: result.ScorePatch{TheoryScore: f64(-1)}, wantErr: result.ErrInvalidScore, wantField: "theory_score"},
		{name: "exam above cap", patch: result.ScorePatch{ExamScore: f64(31)}, wantErr: result.ErrInvalidScore, wantField: "exam_score"},
		{
			name:      "combined ceiling",
			patch:     result.ScorePatch{TheoryScore: f64(40.5), ExamScore: f64(30)},
			wantErr:   result.ErrScoreCeilingExceeded,
			wantField: "theory_score",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := env.ResultSvc.Merge(ctx, key, tt.patch)
			if err == nil {
				t.Fatal("Merge() error = nil")
			}
			if tt.wantField == "" {
				if err != tt.wantErr {
					t.Fatalf("Merge() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			verr, ok := err.(*core.ValidationError)
			if !ok {
				t.Fatalf("Merge() error = %T, want *core.ValidationError", err)
			}
			if verr.Err != tt.wantErr {
				t.Errorf("Merge() error = %v, wantErr %v", verr.Err, tt.wantErr)
			}
			if len(verr.Fields) == 0 || verr.Fields[0].Field != tt.wantField {
				t.Errorf("Merge() fields = %+v, want field %q", verr.Fields, tt.wantField)
			}
		})
	}

	// nothing was ever stored for the key
	if _, err := env.ResultSvc.Get(ctx, key); err != result.ErrNotFound {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	std := env.AddStudent(t, "Ada Obi", "MOL/001", "JSS1")
	sub := env.AddSubject(t, "Mathematics")
	key := result.ResultKey{StudentID: std.ID, SubjectID: sub.ID, SessionID: env.Session.ID, TermID: env.Term.ID}

	if err := env.ResultSvc.Delete(ctx, key); err != result.ErrNotFound {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}

	env.SeedResult(t, std.ID, sub.ID, 25, 30, 20)
	if err := env.ResultSvc.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := env.ResultSvc.Get(ctx, key); err != result.ErrNotFound {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
}
