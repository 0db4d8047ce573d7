package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"crawshaw.io/sqlite"

	"github.com/example/go-nmt-prep/internal/vectorizer"
)

// ErrSnapshotNotFound is returned by Get when no snapshot carries the
// requested name. Match with errors.Is.
var ErrSnapshotNotFound = errors.New("store: snapshot not found")

// SQLiteStore keeps named vectorizer snapshots in a SQLite database.
// Token lists are stored as JSON text columns. The store holds a single
// connection and is not safe for concurrent use.
type SQLiteStore struct {
	conn *sqlite.Conn
}

// Open opens (creating if needed) the snapshot database at path.
func Open(path string) (*SQLiteStore, error) {
	conn, err := sqlite.OpenConn(path, sqlite.SQLITE_OPEN_CREATE|sqlite.SQLITE_OPEN_READWRITE)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}

	s := &SQLiteStore{conn: conn}

	if err := s.createTable(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("create snapshot table: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) createTable() error {
	const createTableSQL = `
	CREATE TABLE IF NOT EXISTS vectorizer_snapshots (
		name TEXT PRIMARY KEY,
		source_tokens TEXT NOT NULL,
		target_tokens TEXT NOT NULL,
		max_words INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);`

	stmt, err := s.conn.Prepare(createTableSQL)
	if err != nil {
		return err
	}
	defer stmt.Reset()

	_, err = stmt.Step()

	return err
}

// Close closes the underlying connection.
func (s *SQLiteStore) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}

	return nil
}

// Put inserts or replaces the snapshot stored under name.
func (s *SQLiteStore) Put(name string, snap vectorizer.Snapshot) error {
	if name == "" {
		return errors.New("store: snapshot name is empty")
	}

	sourceJSON, err := json.Marshal(snap.SourceTokens)
	if err != nil {
		return fmt.Errorf("encode source tokens: %w", err)
	}

	targetJSON, err := json.Marshal(snap.TargetTokens)
	if err != nil {
		return fmt.Errorf("encode target tokens: %w", err)
	}

	const insertSQL = `
	INSERT OR REPLACE INTO vectorizer_snapshots (name, source_tokens, target_tokens, max_words, created_at)
	VALUES (?, ?, ?, ?, ?);`

	stmt, err := s.conn.Prepare(insertSQL)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Reset()

	stmt.BindText(1, name)
	stmt.BindText(2, string(sourceJSON))
	stmt.BindText(3, string(targetJSON))
	stmt.BindInt64(4, int64(snap.MaxWords))
	stmt.BindInt64(5, time.Now().Unix())

	if _, err := stmt.Step(); err != nil {
		return fmt.Errorf("insert snapshot %q: %w", name, err)
	}

	return nil
}

// Get returns the snapshot stored under name, or ErrSnapshotNotFound.
func (s *SQLiteStore) Get(name string) (vectorizer.Snapshot, error) {
	const selectSQL = `
	SELECT source_tokens, target_tokens, max_words FROM vectorizer_snapshots
	WHERE name = ?;`

	stmt, err := s.conn.Prepare(selectSQL)
	if err != nil {
		return vectorizer.Snapshot{}, fmt.Errorf("prepare select: %w", err)
	}
	defer stmt.Reset()

	stmt.BindText(1, name)

	hasRow, err := stmt.Step()
	if err != nil {
		return vectorizer.Snapshot{}, fmt.Errorf("query snapshot %q: %w", name, err)
	}

	if !hasRow {
		return vectorizer.Snapshot{}, fmt.Errorf("%w: %q", ErrSnapshotNotFound, name)
	}

	var snap vectorizer.Snapshot

	if err := json.Unmarshal([]byte(stmt.ColumnText(0)), &snap.SourceTokens); err != nil {
		return vectorizer.Snapshot{}, fmt.Errorf("decode source tokens for %q: %w", name, err)
	}

	if err := json.Unmarshal([]byte(stmt.ColumnText(1)), &snap.TargetTokens); err != nil {
		return vectorizer.Snapshot{}, fmt.Errorf("decode target tokens for %q: %w", name, err)
	}

	snap.MaxWords = int(stmt.ColumnInt64(2))

	return snap, nil
}

// Names returns the stored snapshot names in lexical order.
func (s *SQLiteStore) Names() ([]string, error) {
	const selectSQL = `SELECT name FROM vectorizer_snapshots ORDER BY name;`

	stmt, err := s.conn.Prepare(selectSQL)
	if err != nil {
		return nil, fmt.Errorf("prepare select: %w", err)
	}
	defer stmt.Reset()

	var names []string

	for {
		hasRow, err := stmt.Step()
		if err != nil {
			return nil, fmt.Errorf("list snapshots: %w", err)
		}

		if !hasRow {
			break
		}

		names = append(names, stmt.ColumnText(0))
	}

	return names, nil
}
