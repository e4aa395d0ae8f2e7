package school

import (
	"context"
	"errors"
)

var (
	// errors
	ErrStudentNotFound   = errors.New("student not found")
	ErrSubjectNotFound   = errors.New("subject not found")
	ErrSessionNotFound   = errors.New("session not found")
	ErrTermNotFound      = errors.New("term not found")
	ErrUnknownClassLevel = errors.New("unknown class level")
	ErrFinalClass        = errors.New("student has graduated and cannot be promoted further")
)

// Repository is the directory contract the engine consumes. The
// surrounding console owns this data; the engine only reads it, except
// for PromoteStudents which moves students up the ladder.
type Repository interface {
	GetStudentByAdmissionNumber(ctx context.Context, admNo string) (Student, error)
	GetStudentByID(ctx context.Context, id string) (Student, error)
	// QueryActiveStudents returns active students enrolled in the session;
	// classLevel narrows to one class when non-empty.
	QueryActiveStudents(ctx context.Context, sessionID, classLevel string) ([]Student, error)
	// PromoteStudents sets each student's class level and enrollment
	// session, all-or-nothing per invocation.
	PromoteStudents(ctx context.Context, studentIDs []string, toClass, sessionID string) error

	// GetSubjectByName does an exact, case-sensitive name match.
	GetSubjectByName(ctx context.Context, name string) (Subject, error)
	QueryAllSubjects(ctx context.Context) ([]Subject, error)

	GetSessionByID(ctx context.Context, id string) (Session, error)
	GetTermByID(ctx context.Context, id string) (Term, error)
	QueryTerms(ctx context.Context) ([]Term, error)
}
