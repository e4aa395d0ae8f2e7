package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/moh-Adedamola/molek-records/core/school"
)

type schoolRepository struct {
	db *schoolTables
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *DB) *schoolRepository {
	return &schoolRepository{db: db.school}
}

// Seeding helpers; the directory data is owned by the surrounding console
// in production, so only the in-memory store exposes writers for it.

func (repo *schoolRepository) AddStudent(std school.Student) school.Student {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if std.ID == "" {
		std.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	std.CreatedAt, std.UpdatedAt = now, now
	repo.db.students[std.ID] = &std
	return std
}

func (repo *schoolRepository) AddSubject(sub school.Subject) school.Subject {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	repo.db.subjects[sub.ID] = &sub
	return sub
}

func (repo *schoolRepository) AddSession(ses school.Session) school.Session {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if ses.ID == "" {
		ses.ID = uuid.New().String()
	}
	repo.db.sessions[ses.ID] = &ses
	return ses
}

func (repo *schoolRepository) AddTerm(term school.Term) school.Term {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if term.ID == "" {
		term.ID = uuid.New().String()
	}
	repo.db.terms[term.ID] = &term
	return term
}

func (repo *schoolRepository) GetStudentByAdmissionNumber(_ context.Context, admNo string) (school.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, std := range repo.db.students {
		if std.AdmissionNumber == admNo {
			return *std, nil
		}
	}
	return school.Student{}, school.ErrStudentNotFound
}

func (repo *schoolRepository) GetStudentByID(_ context.Context, id string) (school.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if std, ok := repo.db.students[id]; ok {
		return *std, nil
	}
	return school.Student{}, school.ErrStudentNotFound
}

func (repo *schoolRepository) QueryActiveStudents(_ context.Context, sessionID, classLevel string) ([]school.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	students := make([]school.Student, 0)
	for _, std := range repo.db.students {
		if !std.IsActive {
			continue
		}
		if std.EnrollmentSession != sessionID {
			continue
		}
		if classLevel != "" && std.ClassLevel != classLevel {
			continue
		}
		students = append(students, *std)
	}
	sort.Slice(students, func(i, j int) bool { return students[i].Name < students[j].Name })
	return students, nil
}

func (repo *schoolRepository) PromoteStudents(_ context.Context, studentIDs []string, toClass, sessionID string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	// all-or-nothing: verify every student before touching any
	for _, id := range studentIDs {
		if _, ok := repo.db.students[id]; !ok {
			return school.ErrStudentNotFound
		}
	}
	now := time.Now().UTC()
	for _, id := range studentIDs {
		std := repo.db.students[id]
		std.ClassLevel = toClass
		std.EnrollmentSession = sessionID
		std.UpdatedAt = now
	}
	return nil
}

func (repo *schoolRepository) GetSubjectByName(_ context.Context, name string) (school.Subject, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, sub := range repo.db.subjects {
		if sub.Name == name { // exact, case-sensitive
			return *sub, nil
		}
	}
	return school.Subject{}, school.ErrSubjectNotFound
}

func (repo *schoolRepository) QueryAllSubjects(_ context.Context) ([]school.Subject, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	subjects := make([]school.Subject, 0, len(repo.db.subjects))
	for _, sub := range repo.db.subjects {
		subjects = append(subjects, *sub)
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].Name < subjects[j].Name })
	return subjects, nil
}

func (repo *schoolRepository) GetSessionByID(_ context.Context, id string) (school.Session, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if ses, ok := repo.db.sessions[id]; ok {
		return *ses, nil
	}
	return school.Session{}, school.ErrSessionNotFound
}

func (repo *schoolRepository) GetTermByID(_ context.Context, id string) (school.Term, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if term, ok := repo.db.terms[id]; ok {
		return *term, nil
	}
	return school.Term{}, school.ErrTermNotFound
}

func (repo *schoolRepository) QueryTerms(_ context.Context) ([]school.Term, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	terms := make([]school.Term, 0, len(repo.db.terms))
	for _, term := range repo.db.terms {
		terms = append(terms, *term)
	}
	sort.Slice(terms, func(i, j int) bool { return terms[i].Name < terms[j].Name })
	return terms, nil
}
