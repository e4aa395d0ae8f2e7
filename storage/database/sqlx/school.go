package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/moh-Adedamola/molek-records/core/school"
)

type schoolRepository struct {
	db *sqlx.DB
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *sqlx.DB) *schoolRepository {
	return &schoolRepository{db: db}
}

func (repo schoolRepository) trapNoRowsErr(err, notFound error, msg string) error {
	if err == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

func (repo schoolRepository) GetStudentByAdmissionNumber(ctx context.Context, admNo string) (school.Student, error) {
	var std school.Student
	err := repo.db.GetContext(ctx, &std,
		`SELECT * FROM student WHERE admission_number = $1`, admNo)
	if err != nil {
		return school.Student{}, repo.trapNoRowsErr(err, school.ErrStudentNotFound, "getting student")
	}
	return std, nil
}

func (repo schoolRepository) GetStudentByID(ctx context.Context, id string) (school.Student, error) {
	var std school.Student
	err := repo.db.GetContext(ctx, &std, `SELECT * FROM student WHERE id = $1`, id)
	if err != nil {
		return school.Student{}, repo.trapNoRowsErr(err, school.ErrStudentNotFound, "getting student")
	}
	return std, nil
}

func (repo schoolRepository) QueryActiveStudents(ctx context.Context, sessionID, classLevel string) ([]school.Student, error) {
	query := `SELECT * FROM student WHERE is_active AND enrollment_session = $1`
	args := []interface{}{sessionID}
	if classLevel != "" {
		query += ` AND class_level = $2`
		args = append(args, classLevel)
	}
	query += ` ORDER BY name ASC`

	students := make([]school.Student, 0)
	if err := repo.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return students, nil
}

func (repo schoolRepository) PromoteStudents(ctx context.Context, studentIDs []string, toClass, sessionID string) error {
	query, args, err := sqlx.In(
		`UPDATE student SET class_level = ?, enrollment_session = ?, updated_at = ? WHERE id IN (?)`,
		toClass, sessionID, time.Now().UTC(), studentIDs,
	)
	if err != nil {
		return errors.Wrap(err, "building promotion query")
	}

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	r, err := tx.ExecContext(ctx, repo.db.Rebind(query), args...)
	if err != nil {
		_ = tx.Rollback()
		return errors.Wrap(err, "promoting students")
	}
	// all-or-nothing: a missing student voids the whole move
	if n, _ := r.RowsAffected(); n != int64(len(studentIDs)) {
		_ = tx.Rollback()
		return school.ErrStudentNotFound
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing promotion")
	}
	return nil
}

func (repo schoolRepository) GetSubjectByName(ctx context.Context, name string) (school.Subject, error) {
	var sub school.Subject
	// exact, case-sensitive match
	err := repo.db.GetContext(ctx, &sub, `SELECT * FROM subject WHERE name = $1`, name)
	if err != nil {
		return school.Subject{}, repo.trapNoRowsErr(err, school.ErrSubjectNotFound, "getting subject")
	}
	return sub, nil
}

func (repo schoolRepository) QueryAllSubjects(ctx context.Context) ([]school.Subject, error) {
	subjects := make([]school.Subject, 0)
	if err := repo.db.SelectContext(ctx, &subjects, `SELECT * FROM subject ORDER BY name ASC`); err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	return subjects, nil
}

func (repo schoolRepository) GetSessionByID(ctx context.Context, id string) (school.Session, error) {
	var ses school.Session
	err := repo.db.GetContext(ctx, &ses, `SELECT * FROM "session" WHERE id = $1`, id)
	if err != nil {
		return school.Session{}, repo.trapNoRowsErr(err, school.ErrSessionNotFound, "getting session")
	}
	return ses, nil
}

func (repo schoolRepository) GetTermByID(ctx context.Context, id string) (school.Term, error) {
	var term school.Term
	err := repo.db.GetContext(ctx, &term, `SELECT * FROM term WHERE id = $1`, id)
	if err != nil {
		return school.Term{}, repo.trapNoRowsErr(err, school.ErrTermNotFound, "getting term")
	}
	return term, nil
}

func (repo schoolRepository) QueryTerms(ctx context.Context) ([]school.Term, error) {
	terms := make([]school.Term, 0)
	if err := repo.db.SelectContext(ctx, &terms, `SELECT * FROM term ORDER BY name ASC`); err != nil {
		return nil, errors.Wrap(err, "querying terms")
	}
	return terms, nil
}
