package result

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strconv"

	pkgerrors "github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/moh-Adedamola/molek-records/core"
	"github.com/moh-Adedamola/molek-records/core/school"
)

var (
	// row-level errors; collected per row, never abort the batch
	ErrUnknownStudent = errors.New("unknown student")
	ErrUnknownSubject = errors.New("unknown subject")
	ErrInvalidValue   = errors.New("invalid value")

	// batch-level error; aborts before any write
	ErrMalformedFile = errors.New("malformed CSV file")
)

// Column contracts. Header match is case-insensitive; the two batches
// come from different tools and do not share a schema.
var (
	caTheoryColumns = []string{"admission_number", "subject", "ca_score", "theory_score"}
	examColumns     = []string{"admission_number", "subject_name", "exam_score"}
)

// ImportCATheory ingests a CA/Theory batch (admission_number, subject,
// ca_score, theory_score) for one session+term. Each valid row merges
// into its ExamResult; grades are recomputed per row but positions are
// not (ranking is a separate, explicit pass).
func (svc *Service) ImportCATheory(ctx context.Context, r io.Reader, sessionID, termID string) (BatchReport, error) {
	return svc.importScores(ctx, r, sessionID, termID, caTheoryColumns, parseCATheoryRow)
}

// ImportExam ingests an Exam batch (admission_number, subject_name,
// exam_score) for one session+term.
func (svc *Service) ImportExam(ctx context.Context, r io.Reader, sessionID, termID string) (BatchReport, error) {
	return svc.importScores(ctx, r, sessionID, termID, examColumns, parseExamRow)
}

type rowParser func(rec []string, cols map[string]int) (ScorePatch, error)

func (svc *Service) importScores(
	ctx context.Context,
	r io.Reader,
	sessionID, termID string,
	columns []string,
	parse rowParser,
) (BatchReport, error) {
	var report BatchReport

	// batch-level checks: a bad target aborts before any write
	if _, err := svc.dir.GetSessionByID(ctx, sessionID); err != nil {
		return report, pkgerrors.Wrapf(err, "resolving session %q", sessionID)
	}
	if _, err := svc.dir.GetTermByID(ctx, termID); err != nil {
		return report, pkgerrors.Wrapf(err, "resolving term %q", termID)
	}

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return report, pkgerrors.Wrap(ErrMalformedFile, "reading header")
	}
	cols, err := matchColumns(header, columns)
	if err != nil {
		return report, err
	}

	// rows are independent: one bad row never aborts the batch
	for row := 2; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			report.Errors = append(report.Errors, RowError{
				Row:   row,
				Error: ErrInvalidValue.Error(),
			})
			continue
		}

		admNo := core.CleanString(rec[cols["admission_number"]])
		created, err := svc.importRow(ctx, rec, cols, sessionID, termID, parse)
		if err != nil {
			report.Errors = append(report.Errors, RowError{
				Row:             row,
				AdmissionNumber: admNo,
				Error:           err.Error(),
			})
			continue
		}
		if created {
			report.Created++
		} else {
			report.Updated++
		}
	}
	return report, nil
}

func (svc *Service) importRow(
	ctx context.Context,
	rec []string,
	cols map[string]int,
	sessionID, termID string,
	parse rowParser,
) (bool, error) {
	admNo := core.CleanString(rec[cols["admission_number"]])
	if admNo == "" {
		return false, ErrInvalidValue
	}
	student, err := svc.dir.GetStudentByAdmissionNumber(ctx, admNo)
	if err != nil {
		if err == school.ErrStudentNotFound {
			return false, ErrUnknownStudent
		}
		return false, err
	}

	subjectCol := "subject"
	if _, ok := cols[subjectCol]; !ok {
		subjectCol = "subject_name"
	}
	// exact, case-sensitive name match
	subject, err := svc.dir.GetSubjectByName(ctx, core.CleanString(rec[cols[subjectCol]]))
	if err != nil {
		if err == school.ErrSubjectNotFound {
			return false, ErrUnknownSubject
		}
		return false, err
	}

	patch, err := parse(rec, cols)
	if err != nil {
		return false, err
	}
	if patch.IsZero() {
		return false, ErrInvalidValue
	}

	key := ResultKey{
		StudentID: student.ID,
		SubjectID: subject.ID,
		SessionID: sessionID,
		TermID:    termID,
	}
	_, created, err := svc.Merge(ctx, key, patch)
	return created, err
}

func parseCATheoryRow(rec []string, cols map[string]int) (ScorePatch, error) {
	ca, err := parseScore(rec[cols["ca_score"]], MaxCAScore)
	if err != nil {
		return ScorePatch{}, err
	}
	theory, err := parseScore(rec[cols["theory_score"]], MaxTheoryScore)
	if err != nil {
		return ScorePatch{}, err
	}
	return ScorePatch{CAScore: ca, TheoryScore: theory}, nil
}

func parseExamRow(rec []string, cols map[string]int) (ScorePatch, error) {
	exam, err := parseScore(rec[cols["exam_score"]], MaxExamScore)
	if err != nil {
		return ScorePatch{}, err
	}
	return ScorePatch{ExamScore: exam}, nil
}

// parseScore parses one numeric cell. A blank cell means the field is
// absent from this batch, not zero; out-of-range and non-numeric values
// fail the row.
func parseScore(raw string, max float64) (null.Float64, error) {
	raw = core.CleanString(raw)
	if raw == "" {
		return null.Float64{}, nil
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return null.Float64{}, ErrInvalidValue
	}
	if val < 0 || val > max {
		return null.Float64{}, ErrInvalidValue
	}
	return null.Float64From(val), nil
}

// matchColumns maps required column names to their header positions,
// case-insensitively. A missing column fails the whole batch.
func matchColumns(header, required []string) (map[string]int, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		positions[core.CleanString(name, true /* lower */)] = i
	}
	cols := make(map[string]int, len(required))
	for _, name := range required {
		idx, ok := positions[name]
		if !ok {
			return nil, pkgerrors.Wrapf(ErrMalformedFile, "missing column %q", name)
		}
		cols[name] = idx
	}
	return cols, nil
}
