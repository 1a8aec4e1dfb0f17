// CLAUDE:SUMMARY SQLite database handle for evaluation runs — opens DB with standard pragmas and applies schema.
// Package store provides the SQLite persistence layer for evaluation runs.
package store

import (
	"database/sql"

	"github.com/hazyhaar/domgrade/dbopen"
)

// Store is the evaluation-run database handle.
type Store struct {
	DB *sql.DB
}

// Open opens (or creates) the run database at path, applies the standard
// pragmas and the runs schema.
func Open(path string, opts ...dbopen.Option) (*Store, error) {
	allOpts := append([]dbopen.Option{
		dbopen.WithMkdirAll(),
		dbopen.WithSchema(Schema),
	}, opts...)

	db, err := dbopen.Open(path, allOpts...)
	if err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.DB.Close()
}
