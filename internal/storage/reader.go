package storage

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/mvp-joe/pydecl/internal/extraction"
)

// Reader queries the declaration database.
type Reader struct {
	db *sql.DB
}

// NewReader creates a Reader over an open database.
func NewReader(db *sql.DB) *Reader {
	return &Reader{db: db}
}

// Stats counts the rows of each declaration table.
func (r *Reader) Stats() (*IndexStats, error) {
	stats := &IndexStats{}

	counts := []struct {
		dest  *int
		query sq.SelectBuilder
	}{
		{&stats.Files, sq.Select("COUNT(*)").From("files")},
		{&stats.Failed, sq.Select("COUNT(*)").From("files").Where(sq.NotEq{"error": nil})},
		{&stats.Classes, sq.Select("COUNT(*)").From("classes")},
		{&stats.Methods, sq.Select("COUNT(*)").From("methods")},
		{&stats.Functions, sq.Select("COUNT(*)").From("functions")},
	}

	for _, c := range counts {
		if err := c.query.RunWith(r.db).QueryRow().Scan(c.dest); err != nil {
			return nil, fmt.Errorf("failed to count rows: %w", err)
		}
	}

	return stats, nil
}

// LatestScan returns the most recent scan, or (nil, nil) if none exists.
func (r *Reader) LatestScan() (*Scan, error) {
	scan := &Scan{}
	var startedAt, finishedAt string

	err := sq.Select("scan_id", "root_dir", "started_at", "finished_at", "file_count", "failed_count").
		From("scans").
		Join("metadata ON metadata.value = scans.scan_id AND metadata.key = 'last_scan_id'").
		RunWith(r.db).
		QueryRow().
		Scan(&scan.ID, &scan.RootDir, &startedAt, &finishedAt, &scan.FileCount, &scan.FailedCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest scan: %w", err)
	}

	scan.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
	scan.FinishedAt, _ = time.Parse(time.RFC3339, finishedAt)
	return scan, nil
}

// Files lists every indexed file ordered by path.
func (r *Reader) Files() ([]StoredFile, error) {
	rows, err := sq.Select("file_path", "scan_id", "file_hash", "error", "indexed_at").
		From("files").
		OrderBy("file_path").
		RunWith(r.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	files := []StoredFile{}
	for rows.Next() {
		var f StoredFile
		var errText sql.NullString
		var indexedAt string
		if err := rows.Scan(&f.Path, &f.ScanID, &f.Hash, &errText, &indexedAt); err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		f.Error = errText.String
		f.IndexedAt, _ = time.Parse(time.RFC3339, indexedAt)
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating files: %w", err)
	}

	return files, nil
}

// FileHash returns the stored content hash for path, or "" if the file is
// not indexed.
func (r *Reader) FileHash(path string) (string, error) {
	var hash string
	err := sq.Select("file_hash").
		From("files").
		Where(sq.Eq{"file_path": path}).
		RunWith(r.db).
		QueryRow().
		Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get hash for %s: %w", path, err)
	}
	return hash, nil
}

// FindClasses returns classes named name across all files. An empty name
// returns every class. Results are ordered by file then source position.
func (r *Reader) FindClasses(name string) ([]StoredClass, error) {
	query := sq.Select("class_id", "file_path", "name", "line", "bases", "decorators").
		From("classes").
		OrderBy("file_path", "position")
	if name != "" {
		query = query.Where(sq.Eq{"name": name})
	}

	rows, err := query.RunWith(r.db).Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query classes: %w", err)
	}
	defer rows.Close()

	classes := []StoredClass{}
	for rows.Next() {
		var c StoredClass
		var bases, decorators string
		if err := rows.Scan(&c.ID, &c.FilePath, &c.Name, &c.Line, &bases, &decorators); err != nil {
			return nil, fmt.Errorf("failed to scan class: %w", err)
		}
		if c.Bases, err = decodeList(bases); err != nil {
			return nil, err
		}
		if c.Decorators, err = decodeList(decorators); err != nil {
			return nil, err
		}
		classes = append(classes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating classes: %w", err)
	}

	return classes, nil
}

// Methods returns the direct methods of every class named className in
// filePath, in source order. It fails with *extraction.ClassNotFoundError
// when the file holds no such class.
func (r *Reader) Methods(filePath, className string) ([]extraction.MethodRecord, error) {
	var classCount int
	err := sq.Select("COUNT(*)").
		From("classes").
		Where(sq.Eq{"file_path": filePath, "name": className}).
		RunWith(r.db).
		QueryRow().
		Scan(&classCount)
	if err != nil {
		return nil, fmt.Errorf("failed to look up class %s: %w", className, err)
	}
	if classCount == 0 {
		return nil, &extraction.ClassNotFoundError{ClassName: className, Origin: filePath}
	}

	return r.queryMethods(sq.Eq{"c.file_path": filePath, "c.name": className})
}

// ClassMethods returns the direct methods of a single stored class.
func (r *Reader) ClassMethods(classID string) ([]extraction.MethodRecord, error) {
	return r.queryMethods(sq.Eq{"c.class_id": classID})
}

func (r *Reader) queryMethods(where sq.Eq) ([]extraction.MethodRecord, error) {
	rows, err := sq.Select(
		"m.name", "m.line", "m.parameters", "m.decorators",
		"m.is_async", "m.is_staticmethod", "m.is_classmethod", "m.is_property",
	).
		From("methods m").
		Join("classes c ON c.class_id = m.class_id").
		Where(where).
		OrderBy("c.position", "m.position").
		RunWith(r.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query methods: %w", err)
	}
	defer rows.Close()

	methods := []extraction.MethodRecord{}
	for rows.Next() {
		var m extraction.MethodRecord
		var params, decorators string
		if err := rows.Scan(
			&m.Name, &m.Line, &params, &decorators,
			&m.IsAsync, &m.IsStaticMethod, &m.IsClassMethod, &m.IsProperty,
		); err != nil {
			return nil, fmt.Errorf("failed to scan method: %w", err)
		}
		if m.Parameters, err = decodeList(params); err != nil {
			return nil, err
		}
		if m.Decorators, err = decodeList(decorators); err != nil {
			return nil, err
		}
		methods = append(methods, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating methods: %w", err)
	}

	return methods, nil
}

// Functions returns module-level functions. An empty filePath returns the
// functions of every file.
func (r *Reader) Functions(filePath string) ([]StoredFunction, error) {
	query := sq.Select("file_path", "name", "line", "parameters", "decorators", "is_async").
		From("functions").
		OrderBy("file_path", "position")
	if filePath != "" {
		query = query.Where(sq.Eq{"file_path": filePath})
	}

	rows, err := query.RunWith(r.db).Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query functions: %w", err)
	}
	defer rows.Close()

	functions := []StoredFunction{}
	for rows.Next() {
		var f StoredFunction
		var params, decorators string
		if err := rows.Scan(&f.FilePath, &f.Name, &f.Line, &params, &decorators, &f.IsAsync); err != nil {
			return nil, fmt.Errorf("failed to scan function: %w", err)
		}
		if f.Parameters, err = decodeList(params); err != nil {
			return nil, err
		}
		if f.Decorators, err = decodeList(decorators); err != nil {
			return nil, err
		}
		functions = append(functions, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating functions: %w", err)
	}

	return functions, nil
}
