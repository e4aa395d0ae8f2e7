package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/moh-Adedamola/molek-records/core/result"
)

type resultRepository struct {
	db *resultTable
}

var _ result.Repository = (*resultRepository)(nil) // interface compliance check

func NewResultRepository(db *DB) *resultRepository {
	return &resultRepository{db: db.result}
}

func (repo *resultRepository) GetResult(_ context.Context, key result.ResultKey) (result.ExamResult, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if res, ok := repo.db.table[key]; ok {
		return *res, nil
	}
	return result.ExamResult{}, result.ErrNotFound
}

func (repo *resultRepository) CreateResult(_ context.Context, res result.ExamResult) (result.ExamResult, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	res.ID = uuid.New().String()
	repo.db.table[res.Key()] = &res
	return res, nil
}

func (repo *resultRepository) UpdateResult(_ context.Context, res result.ExamResult) (result.ExamResult, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	stored, ok := repo.db.table[res.Key()]
	if !ok {
		return result.ExamResult{}, result.ErrNotFound
	}
	res.ID = stored.ID
	res.CreatedAt = stored.CreatedAt
	repo.db.table[res.Key()] = &res
	return res, nil
}

func (repo *resultRepository) DeleteResult(_ context.Context, key result.ResultKey) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[key]; !ok {
		return result.ErrNotFound
	}
	delete(repo.db.table, key)
	return nil
}

func (repo *resultRepository) QueryResults(_ context.Context, sessionID, termID string, studentIDs []string) ([]result.ExamResult, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	wanted := make(map[string]bool, len(studentIDs))
	for _, id := range studentIDs {
		wanted[id] = true
	}

	rows := make([]result.ExamResult, 0)
	for _, res := range repo.db.table {
		if res.SessionID == sessionID && res.TermID == termID && wanted[res.StudentID] {
			rows = append(rows, *res)
		}
	}
	return rows, nil
}

func (repo *resultRepository) QueryStudentResults(_ context.Context, studentID, sessionID string) ([]result.ExamResult, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	rows := make([]result.ExamResult, 0)
	for _, res := range repo.db.table {
		if res.StudentID == studentID && res.SessionID == sessionID {
			rows = append(rows, *res)
		}
	}
	return rows, nil
}

func (repo *resultRepository) UpdatePositions(_ context.Context, updates []result.PositionUpdate) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	// map by ID first so a bad update fails before anything is written
	byID := make(map[string]*result.ExamResult, len(repo.db.table))
	for _, res := range repo.db.table {
		byID[res.ID] = res
	}
	for _, upd := range updates {
		if _, ok := byID[upd.ResultID]; !ok {
			return result.ErrNotFound
		}
	}
	for _, upd := range updates {
		res := byID[upd.ResultID]
		res.Position.SetValid(upd.Position)
		res.TotalStudents = upd.TotalStudents
	}
	return nil
}
