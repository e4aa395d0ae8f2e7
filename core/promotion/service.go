package promotion

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/moh-Adedamola/molek-records/core"
	"github.com/moh-Adedamola/molek-records/core/result"
	"github.com/moh-Adedamola/molek-records/core/school"
)

var (
	// errors
	ErrNoRuleSet    = errors.New("no promotion rule set provided")
	ErrNotSeqClass  = errors.New("to_class must directly follow from_class")
	ErrNoData       = errors.New("no recorded results")
	ErrUnknownClass = school.ErrUnknownClassLevel
)

type Service struct {
	results result.Repository
	dir     school.Repository
	log     core.Logger
}

func NewService(results result.Repository, dir school.Repository, log core.Logger) *Service {
	return &Service{results: results, dir: dir, log: log}
}

// Evaluate classifies every active student of the class+session against
// the rule set. It is read-only and safe to run concurrently with score
// merges; it reflects whatever is committed at read time.
//
// rules.Mode is deliberately not consulted here: "recommend" only signals
// to the caller that auto-apply is disabled. The computed statuses are
// identical either way, and the authority split must stay with the
// caller's apply step.
func (svc *Service) Evaluate(ctx context.Context, classLevel, sessionID string, rules RuleSet) ([]Decision, error) {
	if rules.Mode == "" && len(rules.CompulsorySubjects) == 0 {
		return nil, ErrNoRuleSet
	}
	if err := rules.Validate(); err != nil {
		return nil, pkgerrors.Wrap(err, "invalid promotion rule set")
	}
	if !school.IsClassLevel(classLevel) {
		return nil, ErrUnknownClass
	}
	if _, err := svc.dir.GetSessionByID(ctx, sessionID); err != nil {
		return nil, pkgerrors.Wrapf(err, "resolving session %q", sessionID)
	}

	subjects, err := svc.dir.QueryAllSubjects(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "querying subjects")
	}
	subjectName := make(map[string]string, len(subjects))
	for _, sub := range subjects {
		subjectName[sub.ID] = sub.Name
	}
	compulsory := make(map[string]bool, len(rules.CompulsorySubjects))
	for _, name := range rules.CompulsorySubjects {
		compulsory[name] = true
	}

	students, err := svc.dir.QueryActiveStudents(ctx, sessionID, classLevel)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "querying students")
	}

	decisions := make([]Decision, 0, len(students))
	for _, std := range students {
		dec, err := svc.evaluateStudent(ctx, std, sessionID, rules, subjectName, compulsory)
		if err != nil {
			// a student with broken data degrades, never breaks the batch
			dec = Decision{
				StudentID:        std.ID,
				AdmissionNumber:  std.AdmissionNumber,
				StudentName:      std.Name,
				SubjectsRequired: rules.TotalMinimum,
				Status:           StatusNoData,
				Remarks:          fmt.Sprintf("evaluation failed: %v", err),
			}
		}
		decisions = append(decisions, dec)
	}
	return decisions, nil
}

// subjectScore is one subject's session outcome for a student: the mean
// of that subject's complete term totals.
type subjectScore struct {
	name  string
	score float64
}

func (svc *Service) evaluateStudent(
	ctx context.Context,
	std school.Student,
	sessionID string,
	rules RuleSet,
	subjectName map[string]string,
	compulsory map[string]bool,
) (Decision, error) {
	dec := Decision{
		StudentID:        std.ID,
		AdmissionNumber:  std.AdmissionNumber,
		StudentName:      std.Name,
		SubjectsRequired: rules.TotalMinimum,
	}

	rows, err := svc.results.QueryStudentResults(ctx, std.ID, sessionID)
	if err != nil {
		return Decision{}, err
	}

	// only complete rows count; an incomplete row is indistinguishable
	// from an administrative gap and must not read as a zero
	var (
		sum   float64
		count int
		bysub = make(map[string][]float64)
	)
	for _, res := range rows {
		if !res.IsComplete() {
			continue
		}
		sum += res.TotalScore.Float64
		count++
		bysub[res.SubjectID] = append(bysub[res.SubjectID], res.TotalScore.Float64)
	}
	if count == 0 {
		dec.Status = StatusNoData
		dec.Remarks = "no recorded results for this session; excluded from auto-apply, listed for manual review"
		return dec, nil
	}
	dec.CumulativeAverage = core.Round1(sum / float64(count))

	var (
		failedCompulsory []string
		passedOthers     int
		failedOthers     []subjectScore
		seenCompulsory   = make(map[string]bool, len(compulsory))
	)
	for subjectID, totals := range bysub {
		var subSum float64
		for _, t := range totals {
			subSum += t
		}
		score := core.Round1(subSum / float64(len(totals)))
		name := subjectName[subjectID]
		passed := score >= rules.PassMark

		if compulsory[name] {
			seenCompulsory[name] = true
			if !passed {
				failedCompulsory = append(failedCompulsory, name)
			}
			continue
		}
		if passed {
			passedOthers++
		} else {
			failedOthers = append(failedOthers, subjectScore{name: name, score: score})
		}
	}
	// a compulsory subject with no result at all cannot have been passed
	for name := range compulsory {
		if !seenCompulsory[name] {
			failedCompulsory = append(failedCompulsory, name)
		}
	}
	sort.Strings(failedCompulsory)
	dec.SubjectsPassed = passedOthers

	if len(failedCompulsory) > 0 {
		dec.Status = StatusNotPromoted
		dec.Remarks = "failed compulsory subject(s): " + strings.Join(failedCompulsory, ", ")
		return dec, nil
	}

	shortfall := rules.MinimumAdditional - passedOthers
	switch {
	case shortfall <= 0:
		dec.Status = StatusPromoted
		dec.Remarks = "met all promotion requirements"
	case rules.AllowCarryover && shortfall <= rules.MaxCarryover:
		dec.Status = StatusPromotedWithCarryover
		dec.CarryoverSubjects = pickCarryovers(failedOthers, shortfall)
		dec.Remarks = "promoted with carryover in: " + strings.Join(dec.CarryoverSubjects, ", ")
	default:
		dec.Status = StatusNotPromoted
		dec.Remarks = fmt.Sprintf("passed %d of %d required additional subjects", passedOthers, rules.MinimumAdditional)
	}
	return dec, nil
}

// pickCarryovers selects the subjects a promoted student must retake: the
// n lowest-scoring failed non-compulsory subjects, name-ordered on ties.
func pickCarryovers(failed []subjectScore, n int) []string {
	sort.Slice(failed, func(i, j int) bool {
		if failed[i].score != failed[j].score {
			return failed[i].score < failed[j].score
		}
		return failed[i].name < failed[j].name
	})
	if n > len(failed) {
		n = len(failed)
	}
	names := make([]string, 0, n)
	for _, sub := range failed[:n] {
		names = append(names, sub.name)
	}
	return names
}

// Apply commits a caller-selected promotion from one class to the next
// rung of the ladder. Students failing pre-validation are reported in
// FailedIDs and skipped; the remaining moves run all-or-nothing. Applying
// twice is idempotent: a student already in ToClass counts as moved.
func (svc *Service) Apply(ctx context.Context, req ApplyRequest) (ApplyReport, error) {
	var report ApplyReport

	if err := req.Validate(); err != nil {
		return report, err
	}
	next, err := school.NextClass(req.FromClass)
	if err != nil {
		return report, err
	}
	if next != req.ToClass {
		return report, core.NewValidationError(ErrNotSeqClass,
			core.FieldError{Field: "to_class", Error: fmt.Sprintf("must be %q", next)})
	}
	session, err := svc.dir.GetSessionByID(ctx, req.SessionID)
	if err != nil {
		return report, pkgerrors.Wrapf(err, "resolving session %q", req.SessionID)
	}

	var moved, settled int
	eligible := make([]string, 0, len(req.StudentIDs))
	for _, id := range req.StudentIDs {
		std, err := svc.dir.GetStudentByID(ctx, id)
		switch {
		case err != nil, !std.IsActive:
			report.FailedIDs = append(report.FailedIDs, id)
		case std.ClassLevel == req.ToClass && std.EnrollmentSession == session.ID:
			settled++ // already applied; idempotent per student
		case std.ClassLevel != req.FromClass:
			report.FailedIDs = append(report.FailedIDs, id)
		default:
			eligible = append(eligible, id)
		}
	}

	if len(eligible) > 0 {
		if err := svc.dir.PromoteStudents(ctx, eligible, req.ToClass, req.SessionID); err != nil {
			// the move is all-or-nothing: none of the eligible landed
			report.FailedIDs = append(report.FailedIDs, eligible...)
			return report, pkgerrors.Wrap(err, "promoting students")
		}
		moved = len(eligible)
	}

	if req.ToClass == school.ClassGraduated {
		report.Graduated = moved + settled
	} else {
		report.Promoted = moved + settled
	}
	if svc.log != nil {
		svc.log.Info("promotion applied",
			map[string]interface{}{
				"from":      req.FromClass,
				"to":        req.ToClass,
				"promoted":  report.Promoted,
				"graduated": report.Graduated,
				"failed":    len(report.FailedIDs),
			},
		)
	}
	return report, nil
}
