package result

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/moh-Adedamola/molek-records/core"
	"github.com/moh-Adedamola/molek-records/core/school"
)

var (
	// errors
	ErrNotFound             = errors.New("exam result not found")
	ErrInvalidScore         = errors.New("score out of range")
	ErrScoreCeilingExceeded = errors.New("combined theory and exam scores exceed 70")
	ErrEmptyPatch           = errors.New("no score fields supplied")
)

type (
	// Repository persists ExamResult rows keyed by their four-part identity.
	Repository interface {
		GetResult(ctx context.Context, key ResultKey) (ExamResult, error)
		CreateResult(ctx context.Context, res ExamResult) (ExamResult, error)
		UpdateResult(ctx context.Context, res ExamResult) (ExamResult, error)
		DeleteResult(ctx context.Context, key ResultKey) error
		// QueryResults returns every row (complete or not) for the given
		// students in one session+term.
		QueryResults(ctx context.Context, sessionID, termID string, studentIDs []string) ([]ExamResult, error)
		// QueryStudentResults returns every row for one student across all
		// terms of a session.
		QueryStudentResults(ctx context.Context, studentID, sessionID string) ([]ExamResult, error)
		// UpdatePositions applies a ranking pass atomically: either every
		// update lands or none does.
		UpdatePositions(ctx context.Context, updates []PositionUpdate) error
	}

	Service struct {
		repo  Repository
		dir   school.Repository
		log   core.Logger
		keyMu keyMutex
	}
)

func NewService(repo Repository, dir school.Repository, log core.Logger) *Service {
	return &Service{
		repo:  repo,
		dir:   dir,
		log:   log,
		keyMu: keyMutex{locks: make(map[ResultKey]*sync.Mutex)},
	}
}

// keyMutex serialises merges that address the same identity tuple, so the
// CA/Theory batch and the Exam batch cannot race on one record.
type keyMutex struct {
	mu    sync.Mutex
	locks map[ResultKey]*sync.Mutex
}

func (km *keyMutex) lock(key ResultKey) *sync.Mutex {
	km.mu.Lock()
	lock, ok := km.locks[key]
	if !ok {
		lock = new(sync.Mutex)
		km.locks[key] = lock
	}
	km.mu.Unlock()
	lock.Lock()
	return lock
}

// Merge applies a field-level patch to the ExamResult identified by key,
// creating the record on first contact. Present fields overwrite stored
// values (last write wins per field, corrections included); absent fields
// are left untouched. The merged state is validated before anything is
// written, so a rejected merge leaves the stored record unchanged.
func (svc *Service) Merge(ctx context.Context, key ResultKey, patch ScorePatch) (ExamResult, bool, error) {
	if patch.IsZero() {
		return ExamResult{}, false, ErrEmptyPatch
	}

	lock := svc.keyMu.lock(key)
	defer lock.Unlock()

	res, err := svc.repo.GetResult(ctx, key)
	var created bool
	if err != nil {
		if err != ErrNotFound {
			return ExamResult{}, false, err
		}
		now := time.Now().UTC()
		res = ExamResult{
			StudentID: key.StudentID,
			SubjectID: key.SubjectID,
			SessionID: key.SessionID,
			TermID:    key.TermID,
			CreatedAt: now,
		}
		created = true
	}

	if patch.CAScore.Valid {
		res.CAScore = patch.CAScore
	}
	if patch.TheoryScore.Valid {
		res.TheoryScore = patch.TheoryScore
	}
	if patch.ExamScore.Valid {
		res.ExamScore = patch.ExamScore
	}

	if err := validateScores(res); err != nil {
		return ExamResult{}, false, err
	}

	recompute(&res)
	res.UpdatedAt = time.Now().UTC()

	if created {
		res, err = svc.repo.CreateResult(ctx, res)
	} else {
		res, err = svc.repo.UpdateResult(ctx, res)
	}
	if err != nil {
		return ExamResult{}, false, err
	}
	return res, created, nil
}

// Get returns the stored ExamResult for key.
func (svc *Service) Get(ctx context.Context, key ResultKey) (ExamResult, error) {
	return svc.repo.GetResult(ctx, key)
}

// Delete removes a result row. This is an explicit administrative action;
// nothing in the normal merge/rank flow deletes rows.
func (svc *Service) Delete(ctx context.Context, key ResultKey) error {
	return svc.repo.DeleteResult(ctx, key)
}

// validateScores checks every populated field of the merged state, not
// just the incoming patch: a stored exam score plus a newly merged theory
// score can jointly breach the combined ceiling.
func validateScores(res ExamResult) error {
	// the combined ceiling is checked first and independently: either
	// component may arrive alone through a path that never saw the other
	if res.TheoryScore.Valid && res.ExamScore.Valid &&
		res.TheoryScore.Float64+res.ExamScore.Float64 > MaxTheoryExamScore {
		return core.NewValidationError(ErrScoreCeilingExceeded,
			core.FieldError{
				Field: "theory_score",
				Error: fmt.Sprintf("student %s, subject %s: theory %g + exam %g exceeds %g",
					res.StudentID, res.SubjectID,
					res.TheoryScore.Float64, res.ExamScore.Float64, MaxTheoryExamScore),
			},
		)
	}

	var flds []core.FieldError
	check := func(field string, score null.Float64, max float64) {
		if score.Valid && (score.Float64 < 0 || score.Float64 > max) {
			flds = append(flds, core.FieldError{
				Field: field,
				Error: fmt.Sprintf("must be between 0 and %g", max),
			})
		}
	}
	check("ca_score", res.CAScore, MaxCAScore)
	check("theory_score", res.TheoryScore, MaxTheoryScore)
	check("exam_score", res.ExamScore, MaxExamScore)
	if len(flds) > 0 {
		return core.NewValidationError(ErrInvalidScore, flds...)
	}
	return nil
}

// recompute derives the total and grade whenever all three components are
// known; otherwise the result stays incomplete with both unset.
func recompute(res *ExamResult) {
	if !res.IsComplete() {
		res.TotalScore = null.Float64{}
		res.Grade = null.String{}
		return
	}
	total := core.Round1(res.CAScore.Float64 + res.TheoryScore.Float64 + res.ExamScore.Float64)
	res.TotalScore = null.Float64From(total)
	res.Grade = null.StringFrom(GradeOf(total))
}
