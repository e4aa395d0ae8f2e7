package testutil

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/volatiletech/null/v8"

	"github.com/moh-Adedamola/molek-records/core/promotion"
	"github.com/moh-Adedamola/molek-records/core/result"
	"github.com/moh-Adedamola/molek-records/core/school"
	inmemdb "github.com/moh-Adedamola/molek-records/storage/database/inmem"
)

// SchoolSeeder is the directory contract plus the in-memory writers used
// to stage test data.
type SchoolSeeder interface {
	school.Repository
	AddStudent(std school.Student) school.Student
	AddSubject(sub school.Subject) school.Subject
	AddSession(ses school.Session) school.Session
	AddTerm(term school.Term) school.Term
}

// Env wires the engine onto the in-memory store with one current
// session and term pre-seeded.
type Env struct {
	Results   result.Repository
	School    SchoolSeeder
	ResultSvc *result.Service
	PromoSvc  *promotion.Service

	Session school.Session
	Term    school.Term
}

func NewEnv(t *testing.T) *Env {
	t.Helper()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}
	resultRepo := inmemdb.NewResultRepository(db)
	schoolRepo := inmemdb.NewSchoolRepository(db)

	env := &Env{
		Results:   resultRepo,
		School:    schoolRepo,
		ResultSvc: result.NewService(resultRepo, schoolRepo, nil),
		PromoSvc:  promotion.NewService(resultRepo, schoolRepo, nil),
	}
	env.Session = schoolRepo.AddSession(school.Session{Name: "2025/2026", IsCurrent: true})
	env.Term = schoolRepo.AddTerm(school.Term{Name: "First Term", IsCurrent: true})
	return env
}

func (env *Env) AddStudent(t *testing.T, name, admNo, classLevel string) school.Student {
	t.Helper()
	return env.School.AddStudent(school.Student{
		AdmissionNumber:   admNo,
		Name:              name,
		ClassLevel:        classLevel,
		EnrollmentSession: env.Session.ID,
		IsActive:          true,
	})
}

func (env *Env) AddSubject(t *testing.T, name string) school.Subject {
	t.Helper()
	return env.School.AddSubject(school.Subject{Name: name})
}

// SeedResult merges a complete set of scores for one student+subject in
// the default term.
func (env *Env) SeedResult(t *testing.T, studentID, subjectID string, ca, theory, exam float64) result.ExamResult {
	t.Helper()
	key := result.ResultKey{
		StudentID: studentID,
		SubjectID: subjectID,
		SessionID: env.Session.ID,
		TermID:    env.Term.ID,
	}
	res, _, err := env.ResultSvc.Merge(context.Background(), key, result.ScorePatch{
		CAScore:     null.Float64From(ca),
		TheoryScore: null.Float64From(theory),
		ExamScore:   null.Float64From(exam),
	})
	if err != nil {
		t.Fatalf("SeedResult() merge failed: %v", err)
	}
	return res
}

// AssertEqualJSON fails with a unified diff when want and got do not
// marshal to the same JSON.
func AssertEqualJSON(t *testing.T, want, got interface{}) {
	t.Helper()
	wantJS, err := json.MarshalIndent(want, "", "  ")
	if err != nil {
		t.Fatalf("marshaling want: %v", err)
	}
	gotJS, err := json.MarshalIndent(got, "", "  ")
	if err != nil {
		t.Fatalf("marshaling got: %v", err)
	}
	if string(wantJS) == string(gotJS) {
		return
	}
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(wantJS)),
		B:        difflib.SplitLines(string(gotJS)),
		FromFile: "want",
		ToFile:   "got",
		Context:  3,
	})
	t.Errorf("unexpected value:\n%s", diff)
}
