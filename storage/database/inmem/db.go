package inmemdb

import (
	"sync"

	"github.com/moh-Adedamola/molek-records/core/result"
	"github.com/moh-Adedamola/molek-records/core/school"
)

type (
	// DB is the in-memory storage used by tests and local development.
	DB struct {
		result *resultTable
		school *schoolTables
	}

	resultTable struct {
		mutex sync.RWMutex
		table map[result.ResultKey]*result.ExamResult
	}

	schoolTables struct {
		mutex    sync.RWMutex
		students map[string]*school.Student
		subjects map[string]*school.Subject
		sessions map[string]*school.Session
		terms    map[string]*school.Term
	}
)

func Open() (*DB, error) {
	db := &DB{
		result: &resultTable{table: make(map[result.ResultKey]*result.ExamResult)},
		school: &schoolTables{
			students: make(map[string]*school.Student),
			subjects: make(map[string]*school.Subject),
			sessions: make(map[string]*school.Session),
			terms:    make(map[string]*school.Term),
		},
	}
	return db, nil
}
