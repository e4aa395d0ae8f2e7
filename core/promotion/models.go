package promotion

import (
	"github.com/moh-Adedamola/molek-records/core"
)

// Evaluation modes. The mode never changes a computed status: it only
// tells the caller whether auto-apply is allowed ("auto") or the run is
// advisory ("recommend"). Enforcing that split is deliberately the
// caller's job; see Service.Evaluate.
const (
	ModeAuto      = "auto"
	ModeRecommend = "recommend"
)

// RuleSet is the promotion policy for one evaluation run. It is an
// explicit immutable value passed into every call; there is no
// process-wide default, so runs are reproducible per rule set.
// CompulsorySubjects may be empty: a school with no compulsory
// subjects is a valid policy.
type RuleSet struct {
	PassMark           float64  `json:"pass_mark" validate:"gte=0,lte=100"`
	CompulsorySubjects []string `json:"compulsory_subjects" validate:"dive,required"`
	MinimumAdditional  int      `json:"minimum_additional" validate:"gte=0"`
	TotalMinimum       int      `json:"total_minimum" validate:"gte=0"`
	AllowCarryover     bool     `json:"allow_carryover"`
	MaxCarryover       int      `json:"max_carryover" validate:"gte=0"`
	Mode               string   `json:"mode" validate:"required,oneof=auto recommend"`
}

func (rules RuleSet) Validate() error {
	return core.Validate.Struct(rules)
}

type Status string

const (
	StatusPromoted              Status = "Promoted"
	StatusPromotedWithCarryover Status = "PromotedWithCarryover"
	StatusNotPromoted           Status = "NotPromoted"
	StatusNoData                Status = "NoData"
)

// Decision is the computed outcome for one student. It is derived, never
// stored: committing a promotion is a separate, explicit Apply call.
type Decision struct {
	StudentID         string   `json:"student_id"`
	AdmissionNumber   string   `json:"admission_number"`
	StudentName       string   `json:"student_name"`
	CumulativeAverage float64  `json:"cumulative_average"`
	SubjectsPassed    int      `json:"subjects_passed"`
	SubjectsRequired  int      `json:"subjects_required"`
	Status            Status   `json:"status"`
	CarryoverSubjects []string `json:"carryover_subjects"`
	Remarks           string   `json:"remarks"`
}

// ApplyRequest commits a caller-selected promotion. The selection is NOT
// re-derived from evaluator output: a caller may promote a NotPromoted
// student manually and the engine never re-validates the override.
type ApplyRequest struct {
	StudentIDs []string `json:"student_ids" validate:"required,min=1,dive,required"`
	FromClass  string   `json:"from_class" validate:"required,classlevel"`
	ToClass    string   `json:"to_class" validate:"required,classlevel"`
	SessionID  string   `json:"session_id" validate:"required"`
}

func (req ApplyRequest) Validate() error {
	return core.Validate.Struct(req)
}

// ApplyReport summarises one promotion application. FailedIDs holds
// exactly the students that were not moved, so a caller can retry only
// the remainder.
type ApplyReport struct {
	Promoted  int      `json:"promoted"`
	Graduated int      `json:"graduated"`
	FailedIDs []string `json:"failed_ids"`
}
