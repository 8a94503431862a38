package mockserver

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/studiowebux/studentcrud/internal/migrations"
	"github.com/studiowebux/studentcrud/internal/types"
)

// ErrNotFound is returned for an id that has no row
var ErrNotFound = errors.New("student not found")

// Store persists the mock collection in SQLite. Records are listed in
// creation order.
type Store struct {
	db *sql.DB
}

// OpenStore opens (or creates) the database at dbPath and applies the
// students migrations
func OpenStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection keeps :memory: databases shared across calls
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := migrations.Run(db, migrations.Students); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// List returns every student in creation order
func (s *Store) List() ([]types.Student, error) {
	rows, err := s.db.Query(`
		SELECT id, fname, lname, birthdate, address, phone_number
		FROM students
		ORDER BY seq ASC, rowid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query students: %w", err)
	}
	defer rows.Close()

	students := []types.Student{}
	for rows.Next() {
		var st types.Student
		if err := rows.Scan(&st.ID, &st.FirstName, &st.LastName, &st.Birthdate, &st.Address, &st.PhoneNumber); err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		students = append(students, st)
	}

	return students, rows.Err()
}

// Get returns the student with id
func (s *Store) Get(id string) (types.Student, error) {
	st := types.Student{ID: id}
	err := s.db.QueryRow(`
		SELECT fname, lname, birthdate, address, phone_number
		FROM students WHERE id = ?
	`, id).Scan(&st.FirstName, &st.LastName, &st.Birthdate, &st.Address, &st.PhoneNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Student{}, ErrNotFound
	}
	if err != nil {
		return types.Student{}, fmt.Errorf("failed to get student %s: %w", id, err)
	}
	return st, nil
}

// Create inserts draft under a new random id
func (s *Store) Create(draft types.Draft) (types.Student, error) {
	st := types.Student{ID: uuid.New().String(), Draft: draft}

	_, err := s.db.Exec(`
		INSERT INTO students (id, fname, lname, birthdate, address, phone_number, seq)
		VALUES (?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM students))
	`, st.ID, st.FirstName, st.LastName, st.Birthdate, st.Address, st.PhoneNumber)
	if err != nil {
		return types.Student{}, fmt.Errorf("failed to insert student: %w", err)
	}

	return st, nil
}

// Update merges patch over the stored record. The id never changes.
func (s *Store) Update(id string, patch types.Patch) (types.Student, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return types.Student{}, fmt.Errorf("failed to begin update: %w", err)
	}
	defer tx.Rollback()

	current := types.Student{ID: id}
	err = tx.QueryRow(`
		SELECT fname, lname, birthdate, address, phone_number
		FROM students WHERE id = ?
	`, id).Scan(&current.FirstName, &current.LastName, &current.Birthdate, &current.Address, &current.PhoneNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Student{}, ErrNotFound
	}
	if err != nil {
		return types.Student{}, fmt.Errorf("failed to get student %s: %w", id, err)
	}

	updated := patch.Apply(current)
	_, err = tx.Exec(`
		UPDATE students
		SET fname = ?, lname = ?, birthdate = ?, address = ?, phone_number = ?
		WHERE id = ?
	`, updated.FirstName, updated.LastName, updated.Birthdate, updated.Address, updated.PhoneNumber, id)
	if err != nil {
		return types.Student{}, fmt.Errorf("failed to update student %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return types.Student{}, fmt.Errorf("failed to commit update: %w", err)
	}

	return updated, nil
}

// Delete removes the record with id and returns it
func (s *Store) Delete(id string) (types.Student, error) {
	st, err := s.Get(id)
	if err != nil {
		return types.Student{}, err
	}

	if _, err := s.db.Exec("DELETE FROM students WHERE id = ?", id); err != nil {
		return types.Student{}, fmt.Errorf("failed to delete student %s: %w", id, err)
	}

	return st, nil
}

// Count returns the number of stored students
func (s *Store) Count() (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM students").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count students: %w", err)
	}
	return count, nil
}
