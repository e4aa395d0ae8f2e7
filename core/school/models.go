package school

import "time"

// Class levels, in promotion order.
const (
	ClassJSS1      = "JSS1"
	ClassJSS2      = "JSS2"
	ClassJSS3      = "JSS3"
	ClassSS1       = "SS1"
	ClassSS2       = "SS2"
	ClassSS3       = "SS3"
	ClassGraduated = "Graduated"
)

// ClassLadder lists every class level in promotion order; a student moves
// one rung up per promotion and leaves the ladder at ClassGraduated.
var ClassLadder = []string{
	ClassJSS1,
	ClassJSS2,
	ClassJSS3,
	ClassSS1,
	ClassSS2,
	ClassSS3,
	ClassGraduated,
}

var ladderIndex = getLadderIndex()

func getLadderIndex() map[string]int {
	idx := make(map[string]int, len(ClassLadder))
	for i, level := range ClassLadder {
		idx[level] = i
	}
	return idx
}

// IsClassLevel reports whether `level` is a known class level.
func IsClassLevel(level string) bool {
	_, ok := ladderIndex[level]
	return ok
}

// NextClass returns the class level a student in `level` is promoted into.
func NextClass(level string) (string, error) {
	idx, ok := ladderIndex[level]
	if !ok {
		return "", ErrUnknownClassLevel
	}
	if level == ClassGraduated {
		return "", ErrFinalClass
	}
	return ClassLadder[idx+1], nil
}

type Student struct {
	ID                string    `db:"id" json:"id"`
	AdmissionNumber   string    `db:"admission_number" json:"admission_number"`
	Name              string    `db:"name" json:"name"`
	ClassLevel        string    `db:"class_level" json:"class_level"`
	EnrollmentSession string    `db:"enrollment_session" json:"enrollment_session"`
	IsActive          bool      `db:"is_active" json:"is_active"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"` // UTC
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"` // UTC
}

type Subject struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

type Session struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"` // e.g. "2025/2026"
	IsCurrent bool   `db:"is_current" json:"is_current"`
}

type Term struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"` // e.g. "First Term"
	IsCurrent bool   `db:"is_current" json:"is_current"`
}
