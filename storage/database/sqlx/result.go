package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/moh-Adedamola/molek-records/core"
	"github.com/moh-Adedamola/molek-records/core/result"
)

type resultRepository struct {
	db *sqlx.DB
}

var _ result.Repository = (*resultRepository)(nil) // interface compliance check

func NewResultRepository(db *sqlx.DB) *resultRepository {
	return &resultRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to result.ErrNotFound
func (repo resultRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return result.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

const resultColumns = `id, student_id, subject_id, session_id, term_id,
ca_score, theory_score, exam_score, total_score, grade, "position", total_students,
created_at, updated_at`

func (repo resultRepository) GetResult(ctx context.Context, key result.ResultKey) (result.ExamResult, error) {
	var res result.ExamResult
	err := repo.db.GetContext(ctx, &res,
		`SELECT `+resultColumns+` FROM exam_result
		 WHERE student_id = $1 AND subject_id = $2 AND session_id = $3 AND term_id = $4`,
		key.StudentID, key.SubjectID, key.SessionID, key.TermID,
	)
	if err != nil {
		return result.ExamResult{}, repo.trapNoRowsErr(err, "getting result")
	}
	return res, nil
}

func (repo resultRepository) CreateResult(ctx context.Context, res result.ExamResult) (result.ExamResult, error) {
	res.ID = uuid.New().String()
	_, err := repo.db.NamedExecContext(ctx,
		`INSERT INTO exam_result (`+resultColumns+`)
		 VALUES (:id, :student_id, :subject_id, :session_id, :term_id,
		 :ca_score, :theory_score, :exam_score, :total_score, :grade, :position, :total_students,
		 :created_at, :updated_at)`,
		res,
	)
	if err != nil {
		return result.ExamResult{}, errors.Wrap(err, "inserting result")
	}
	return res, nil
}

func (repo resultRepository) UpdateResult(ctx context.Context, res result.ExamResult) (result.ExamResult, error) {
	err := repo.db.GetContext(ctx, &res.ID,
		`UPDATE exam_result
		 SET ca_score = $1, theory_score = $2, exam_score = $3,
		     total_score = $4, grade = $5, updated_at = $6
		 WHERE student_id = $7 AND subject_id = $8 AND session_id = $9 AND term_id = $10
		 RETURNING id`,
		res.CAScore, res.TheoryScore, res.ExamScore,
		res.TotalScore, res.Grade, res.UpdatedAt,
		res.StudentID, res.SubjectID, res.SessionID, res.TermID,
	)
	if err != nil {
		return result.ExamResult{}, repo.trapNoRowsErr(err, "updating result")
	}
	return res, nil
}

func (repo resultRepository) DeleteResult(ctx context.Context, key result.ResultKey) error {
	r, err := repo.db.ExecContext(ctx,
		`DELETE FROM exam_result
		 WHERE student_id = $1 AND subject_id = $2 AND session_id = $3 AND term_id = $4`,
		key.StudentID, key.SubjectID, key.SessionID, key.TermID,
	)
	if err != nil {
		return errors.Wrap(err, "deleting result")
	}
	if n, _ := r.RowsAffected(); n == 0 {
		return result.ErrNotFound
	}
	return nil
}

func (repo resultRepository) QueryResults(ctx context.Context, sessionID, termID string, studentIDs []string) ([]result.ExamResult, error) {
	if len(studentIDs) == 0 {
		return []result.ExamResult{}, nil
	}
	ord := core.DBOrdering{Field: "total_score"} // descending
	query, args, err := sqlx.In(
		`SELECT `+resultColumns+` FROM exam_result
		 WHERE session_id = ? AND term_id = ? AND student_id IN (?)
		 ORDER BY `+ord.String(),
		sessionID, termID, studentIDs,
	)
	if err != nil {
		return nil, errors.Wrap(err, "building results query")
	}
	rows := make([]result.ExamResult, 0)
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying results")
	}
	return rows, nil
}

func (repo resultRepository) QueryStudentResults(ctx context.Context, studentID, sessionID string) ([]result.ExamResult, error) {
	rows := make([]result.ExamResult, 0)
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT `+resultColumns+` FROM exam_result
		 WHERE student_id = $1 AND session_id = $2`,
		studentID, sessionID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying student results")
	}
	return rows, nil
}

func (repo resultRepository) UpdatePositions(ctx context.Context, updates []result.PositionUpdate) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	for _, upd := range updates {
		_, err := tx.ExecContext(ctx,
			`UPDATE exam_result SET "position" = $1, total_students = $2 WHERE id = $3`,
			upd.Position, upd.TotalStudents, upd.ResultID,
		)
		if err != nil {
			_ = tx.Rollback()
			return errors.Wrap(err, "updating positions")
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing positions")
	}
	return nil
}
