package history

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pixapprox/pixapprox/vm"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps snapshots in a SQLite file. Programs are stored as their
// msgpack encoding next to the postfix text.
type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) Record(ctx context.Context, snap Snapshot) error {
	if err := snap.validate(); err != nil {
		return err
	}
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := snap.Program.Encode()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO snapshots (run_id, generation, error, code_size, program, text, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, generation) DO UPDATE SET
			error = excluded.error,
			code_size = excluded.code_size,
			program = excluded.program,
			text = excluded.text,
			created_at = excluded.created_at
	`, snap.RunID, snap.Generation, snap.Error, snap.CodeSize, payload, snap.Text, snap.CreatedAt.UnixNano())
	return err
}

const snapshotColumns = `run_id, generation, error, code_size, program, text, created_at`

func (s *SQLiteStore) Best(ctx context.Context, runID string) (Snapshot, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return Snapshot{}, false, err
	}

	row := db.QueryRowContext(ctx, `SELECT `+snapshotColumns+` FROM snapshots
		WHERE run_id = ? ORDER BY error ASC, generation ASC LIMIT 1`, runID)
	snap, err := scanSnapshot(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, err
	}
	return snap, true, nil
}

func (s *SQLiteStore) List(ctx context.Context, runID string) ([]Snapshot, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT `+snapshotColumns+` FROM snapshots
		WHERE run_id = ? ORDER BY generation ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Snapshot{}
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Runs(ctx context.Context) ([]string, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT run_id FROM snapshots
		GROUP BY run_id ORDER BY MIN(rowid) ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, ErrNotInitialized
	}
	return s.db, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (Snapshot, error) {
	var (
		snap    Snapshot
		payload []byte
		created int64
	)
	if err := row.Scan(&snap.RunID, &snap.Generation, &snap.Error, &snap.CodeSize, &payload, &snap.Text, &created); err != nil {
		return Snapshot{}, err
	}
	snap.Program = &vm.Program{}
	if err := snap.Program.Deserialize(bytes.NewReader(payload)); err != nil {
		return Snapshot{}, fmt.Errorf("decode program %s/%d: %w", snap.RunID, snap.Generation, err)
	}
	snap.CreatedAt = time.Unix(0, created).UTC()
	return snap, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS snapshots (
			run_id TEXT NOT NULL,
			generation INTEGER NOT NULL,
			error REAL NOT NULL,
			code_size INTEGER NOT NULL,
			program BLOB NOT NULL,
			text TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			PRIMARY KEY (run_id, generation)
		);
	`)
	return err
}
