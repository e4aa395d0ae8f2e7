package result

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// Score caps. CA comes from classwork; theory and exam come from the CBT
// tool and share a combined ceiling even though they arrive in separate
// batches.
const (
	MaxCAScore         = 30.0
	MaxTheoryScore     = 40.0
	MaxExamScore       = 30.0
	MaxTheoryExamScore = 70.0
)

// ResultKey identifies one ExamResult: there is exactly one row per
// (student, subject, session, term).
type ResultKey struct {
	StudentID string `db:"student_id" json:"student_id"`
	SubjectID string `db:"subject_id" json:"subject_id"`
	SessionID string `db:"session_id" json:"session_id"`
	TermID    string `db:"term_id" json:"term_id"`
}

// ExamResult is the merged, authoritative record for one student in one
// subject. Score fields stay null until the owning batch supplies them;
// TotalScore and Grade are derived and stay null while any component is
// missing. Position and TotalStudents are only set by a ranking pass.
type ExamResult struct {
	ID        string `db:"id" json:"id"`
	StudentID string `db:"student_id" json:"student_id"`
	SubjectID string `db:"subject_id" json:"subject_id"`
	SessionID string `db:"session_id" json:"session_id"`
	TermID    string `db:"term_id" json:"term_id"`

	CAScore     null.Float64 `db:"ca_score" json:"ca_score"`
	TheoryScore null.Float64 `db:"theory_score" json:"theory_score"`
	ExamScore   null.Float64 `db:"exam_score" json:"exam_score"`

	TotalScore    null.Float64 `db:"total_score" json:"total_score"`
	Grade         null.String  `db:"grade" json:"grade"`
	Position      null.Int     `db:"position" json:"position"`
	TotalStudents int          `db:"total_students" json:"total_students"`

	CreatedAt time.Time `db:"created_at" json:"created_at"` // UTC
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"` // UTC
}

func (res ExamResult) Key() ResultKey {
	return ResultKey{
		StudentID: res.StudentID,
		SubjectID: res.SubjectID,
		SessionID: res.SessionID,
		TermID:    res.TermID,
	}
}

// IsComplete reports whether all three score components have arrived.
// Incomplete results carry no total or grade and are excluded from
// ranking and promotion evaluation.
func (res ExamResult) IsComplete() bool {
	return res.CAScore.Valid && res.TheoryScore.Valid && res.ExamScore.Valid
}

// ScorePatch is a field-level partial update of an ExamResult. A field
// with Valid=false is absent and leaves the stored value untouched; a
// field with Valid=true overwrites it, 0 included. This is what lets the
// CA/Theory batch and the Exam batch converge on one record without
// either knowing the other's schedule.
type ScorePatch struct {
	CAScore     null.Float64 `json:"ca_score"`
	TheoryScore null.Float64 `json:"theory_score"`
	ExamScore   null.Float64 `json:"exam_score"`
}

// IsZero reports whether the patch carries no fields at all.
func (p ScorePatch) IsZero() bool {
	return !p.CAScore.Valid && !p.TheoryScore.Valid && !p.ExamScore.Valid
}

// RowError describes a single rejected CSV row; the rest of the batch
// proceeds regardless.
type RowError struct {
	Row             int    `json:"row"`
	AdmissionNumber string `json:"admission_number"`
	Error           string `json:"error"`
}

// BatchReport summarises one CSV import.
type BatchReport struct {
	Created int        `json:"created"`
	Updated int        `json:"updated"`
	Errors  []RowError `json:"errors"`
}

// RankingReport summarises one position recompute.
type RankingReport struct {
	SubjectsProcessed int `json:"subjects_processed"`
}

// PositionUpdate is one row's new rank within its cohort.
type PositionUpdate struct {
	ResultID      string
	Position      int
	TotalStudents int
}
