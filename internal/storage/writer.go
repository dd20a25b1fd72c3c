package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/mvp-joe/pydecl/internal/extraction"
)

// Writer records scan results in the declaration database.
type Writer struct {
	db *sql.DB
}

// NewWriter creates a Writer. DB must have schema already created via
// CreateSchema() or Open().
func NewWriter(db *sql.DB) *Writer {
	return &Writer{db: db}
}

// WriteScan stores one scan and its file results in a single transaction.
// Each file replaces any earlier rows for the same path. When prune is set,
// files not written by this scan are removed, making the database an exact
// mirror of the scanned tree.
func (w *Writer) WriteScan(rootDir string, startedAt time.Time, files []FileRecord, prune bool) (*Scan, error) {
	scan := &Scan{
		ID:         uuid.New().String(),
		RootDir:    rootDir,
		StartedAt:  startedAt.UTC(),
		FinishedAt: time.Now().UTC(),
		FileCount:  len(files),
	}
	for _, f := range files {
		if f.Summary == nil {
			scan.FailedCount++
		}
	}

	tx, err := w.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	_, err = sq.Insert("scans").
		Columns("scan_id", "root_dir", "started_at", "finished_at", "file_count", "failed_count").
		Values(scan.ID, scan.RootDir, scan.StartedAt.Format(time.RFC3339), scan.FinishedAt.Format(time.RFC3339), scan.FileCount, scan.FailedCount).
		RunWith(tx).
		Exec()
	if err != nil {
		return nil, fmt.Errorf("failed to insert scan: %w", err)
	}

	stmts, err := prepareStatements(tx)
	if err != nil {
		return nil, err
	}
	defer stmts.close()

	indexedAt := scan.FinishedAt.Format(time.RFC3339)
	for _, f := range files {
		if err := stmts.writeFile(scan.ID, indexedAt, f); err != nil {
			return nil, err
		}
	}

	if prune {
		_, err := sq.Delete("files").
			Where(sq.NotEq{"scan_id": scan.ID}).
			RunWith(tx).
			Exec()
		if err != nil {
			return nil, fmt.Errorf("failed to prune stale files: %w", err)
		}
	}

	if err := setMetadata(tx, "last_scan_id", scan.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit scan: %w", err)
	}

	return scan, nil
}

// DeleteFiles removes files and everything declared in them. It returns the
// number of files that were stored.
func (w *Writer) DeleteFiles(paths []string) (int64, error) {
	if len(paths) == 0 {
		return 0, nil
	}

	result, err := sq.Delete("files").
		Where(sq.Eq{"file_path": paths}).
		RunWith(w.db).
		Exec()
	if err != nil {
		return 0, fmt.Errorf("failed to delete files: %w", err)
	}
	return result.RowsAffected()
}

// DeleteUnder removes every stored file below dir (a slash-separated stored
// path) along with its declarations.
func (w *Writer) DeleteUnder(dir string) (int64, error) {
	dir = strings.TrimSuffix(dir, "/")
	if dir == "" || dir == "." {
		return 0, fmt.Errorf("refusing to delete under %q", dir)
	}

	// '0' follows '/' in byte order, so the range holds exactly the paths
	// that start with dir + "/". LIKE would treat '_' in names as a wildcard.
	result, err := sq.Delete("files").
		Where(sq.And{
			sq.Gt{"file_path": dir + "/"},
			sq.Lt{"file_path": dir + "0"},
		}).
		RunWith(w.db).
		Exec()
	if err != nil {
		return 0, fmt.Errorf("failed to delete files under %s: %w", dir, err)
	}
	return result.RowsAffected()
}

// fileStatements holds the prepared inserts used for every file of a scan.
type fileStatements struct {
	tx        *sql.Tx
	file      *sql.Stmt
	class     *sql.Stmt
	method    *sql.Stmt
	function  *sql.Stmt
	deleteOld *sql.Stmt
}

func prepareStatements(tx *sql.Tx) (*fileStatements, error) {
	s := &fileStatements{tx: tx}

	queries := []struct {
		name  string
		dest  **sql.Stmt
		build func() (string, []interface{}, error)
	}{
		{"delete", &s.deleteOld, sq.Delete("files").Where(sq.Eq{"file_path": ""}).ToSql},
		{"file", &s.file, sq.Insert("files").
			Columns("file_path", "scan_id", "file_hash", "error", "indexed_at").
			Values("", "", "", nil, "").
			ToSql},
		{"class", &s.class, sq.Insert("classes").
			Columns("class_id", "file_path", "name", "line", "position", "bases", "decorators").
			Values("", "", "", 0, 0, "", "").
			ToSql},
		{"method", &s.method, sq.Insert("methods").
			Columns(
				"method_id", "class_id", "name", "line", "position", "parameters", "decorators",
				"is_async", "is_staticmethod", "is_classmethod", "is_property",
			).
			Values("", "", "", 0, 0, "", "", false, false, false, false).
			ToSql},
		{"function", &s.function, sq.Insert("functions").
			Columns("function_id", "file_path", "name", "line", "position", "parameters", "decorators", "is_async").
			Values("", "", "", 0, 0, "", "", false).
			ToSql},
	}

	for _, q := range queries {
		query, _, err := q.build()
		if err != nil {
			s.close()
			return nil, fmt.Errorf("failed to build %s SQL: %w", q.name, err)
		}
		stmt, err := tx.Prepare(query)
		if err != nil {
			s.close()
			return nil, fmt.Errorf("failed to prepare %s statement: %w", q.name, err)
		}
		*q.dest = stmt
	}

	return s, nil
}

func (s *fileStatements) close() {
	for _, stmt := range []*sql.Stmt{s.file, s.class, s.method, s.function, s.deleteOld} {
		if stmt != nil {
			stmt.Close()
		}
	}
}

func (s *fileStatements) writeFile(scanID, indexedAt string, f FileRecord) error {
	// Cascades remove the previous classes, methods, and functions
	if _, err := s.deleteOld.Exec(f.Path); err != nil {
		return fmt.Errorf("failed to clear %s: %w", f.Path, err)
	}

	if _, err := s.file.Exec(f.Path, scanID, f.Hash, nullableString(f.Error), indexedAt); err != nil {
		return fmt.Errorf("failed to insert file %s: %w", f.Path, err)
	}

	if f.Summary == nil {
		return nil
	}

	for i, c := range f.Summary.Classes {
		classID := uuid.New().String()
		if _, err := s.class.Exec(
			classID, f.Path, c.Class.Name, c.Class.Line, i,
			encodeList(c.Class.Bases), encodeList(c.Class.Decorators),
		); err != nil {
			return fmt.Errorf("failed to insert class %s: %w", c.Class.Name, err)
		}

		for j, m := range c.Methods {
			if err := s.writeMethod(classID, j, m); err != nil {
				return fmt.Errorf("failed to insert method %s.%s: %w", c.Class.Name, m.Name, err)
			}
		}
	}

	for i, fn := range f.Summary.Functions {
		if _, err := s.function.Exec(
			uuid.New().String(), f.Path, fn.Name, fn.Line, i,
			encodeList(fn.Parameters), encodeList(fn.Decorators), fn.IsAsync,
		); err != nil {
			return fmt.Errorf("failed to insert function %s: %w", fn.Name, err)
		}
	}

	return nil
}

func (s *fileStatements) writeMethod(classID string, position int, m extraction.MethodRecord) error {
	_, err := s.method.Exec(
		uuid.New().String(), classID, m.Name, m.Line, position,
		encodeList(m.Parameters), encodeList(m.Decorators),
		m.IsAsync, m.IsStaticMethod, m.IsClassMethod, m.IsProperty,
	)
	return err
}

func setMetadata(tx *sql.Tx, key, value string) error {
	_, err := sq.Insert("metadata").
		Columns("key", "value", "updated_at").
		Values(key, value, time.Now().UTC().Format(time.RFC3339)).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at").
		RunWith(tx).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to update metadata %s: %w", key, err)
	}
	return nil
}

// encodeList stores string lists as JSON arrays; nil encodes as [].
func encodeList(values []string) string {
	if values == nil {
		return "[]"
	}
	data, _ := json.Marshal(values)
	return string(data)
}

func decodeList(data string) ([]string, error) {
	values := []string{}
	if data == "" {
		return values, nil
	}
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil, fmt.Errorf("failed to decode list %q: %w", data, err)
	}
	return values, nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
