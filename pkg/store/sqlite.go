package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kmehta/loantrack/pkg/models"

	_ "github.com/mattn/go-sqlite3"
)

// namespace keys the snapshot row. Fixed: one collection per database file.
const namespace = "loantrack.loans.v1"

// SQLiteStore persists the loan collection as one opaque JSON payload in a
// SQLite file. The payload is deliberately schemaless on the SQL side so the
// record shape can evolve without migrations.
type SQLiteStore struct {
	db  *sql.DB
	log *logrus.Logger
}

// NewSQLiteStore opens (or creates) the database file and initializes the
// snapshot table.
func NewSQLiteStore(dataSourceName string, log *logrus.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}

	s := &SQLiteStore{db: db, log: log}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("could not initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS snapshots (
		namespace TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// LoadLoans reads the current snapshot. A missing row or a payload that no
// longer decodes degrades to an empty collection: old or damaged snapshots
// must not take the tracker down with them. Only genuine database failures
// surface as errors.
func (s *SQLiteStore) LoadLoans() ([]models.Loan, error) {
	var payload []byte
	err := s.db.QueryRow(`SELECT payload FROM snapshots WHERE namespace = ?`, namespace).Scan(&payload)
	if err == sql.ErrNoRows {
		return []models.Loan{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var loans []models.Loan
	if err := json.Unmarshal(payload, &loans); err != nil {
		s.log.WithError(err).Warn("discarding unreadable loan snapshot")
		return []models.Loan{}, nil
	}
	if loans == nil {
		loans = []models.Loan{}
	}
	return loans, nil
}

// SaveLoans replaces the snapshot in a single statement, preserving the
// collection order as given.
func (s *SQLiteStore) SaveLoans(loans []models.Loan) error {
	payload, err := json.Marshal(loans)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO snapshots (namespace, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(namespace) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		namespace, payload, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
