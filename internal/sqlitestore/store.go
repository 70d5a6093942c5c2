// Package sqlitestore implements every repository on an embedded SQLite database through gorm.
// It backs DB_DRIVER=sqlite and the store integration tests.
package sqlitestore

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/survey-app/backend/pkg/database"
)

// Store groups the SQLite repositories sharing one database.
type Store struct {
	db *gorm.DB
}

// New wraps an open gorm database.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the schema.
func (s *Store) Migrate() error {
	err := s.db.AutoMigrate(
		&userRow{},
		&profileRow{},
		&categoryRow{},
		&surveyRow{},
		&questionRow{},
		&optionRow{},
		&responseRow{},
		&answerRow{},
		&exportRow{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Users returns the user repository.
func (s *Store) Users() *Users { return &Users{db: s.db} }

// Categories returns the category repository.
func (s *Store) Categories() *Categories { return &Categories{db: s.db} }

// Surveys returns the survey repository.
func (s *Store) Surveys() *Surveys { return &Surveys{db: s.db} }

// Responses returns the response repository.
func (s *Store) Responses() *Responses { return &Responses{db: s.db} }

// Stats returns the aggregate repository.
func (s *Store) Stats() *Stats { return &Stats{db: s.db} }

// Exports returns the export repository.
func (s *Store) Exports() *Exports { return &Exports{db: s.db} }

func translate(err error) error {
	return database.Translate(err)
}
