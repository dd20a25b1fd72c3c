package storage

import (
	"time"

	"github.com/mvp-joe/pydecl/internal/extraction"
)

// Domain models that mirror SQL tables in schema.go.
// These are lightweight data transfer structs, NOT ORM models.

// Scan represents one indexing run. Maps to the scans table.
type Scan struct {
	ID          string    // scan_id: UUID
	RootDir     string    // root_dir: project root the scan ran against
	StartedAt   time.Time // started_at
	FinishedAt  time.Time // finished_at
	FileCount   int       // file_count: files written by this scan
	FailedCount int       // failed_count: files whose analysis failed
}

// FileRecord is the input for one analyzed file. Summary is nil when Error
// is set.
type FileRecord struct {
	Path    string
	Hash    string
	Summary *extraction.ModuleSummary
	Error   string
}

// StoredFile represents a row of the files table.
type StoredFile struct {
	Path      string    // file_path
	ScanID    string    // scan_id: FK to scans
	Hash      string    // file_hash
	Error     string    // error: empty when analysis succeeded
	IndexedAt time.Time // indexed_at
}

// StoredClass is a class together with the file it was found in.
type StoredClass struct {
	ID       string // class_id: UUID
	FilePath string // file_path: FK to files
	extraction.ClassRecord
}

// StoredFunction is a module-level function together with its file.
type StoredFunction struct {
	FilePath string
	extraction.FunctionRecord
}

// IndexStats summarizes the database contents.
type IndexStats struct {
	Files     int `json:"files"`
	Failed    int `json:"failed"`
	Classes   int `json:"classes"`
	Methods   int `json:"methods"`
	Functions int `json:"functions"`
}
