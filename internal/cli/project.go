package cli

import (
	"database/sql"
	"fmt"

	"github.com/mvp-joe/pydecl/internal/discovery"
	"github.com/mvp-joe/pydecl/internal/indexer"
	"github.com/mvp-joe/pydecl/internal/scanner"
	"github.com/mvp-joe/pydecl/internal/storage"
)

// indexSession bundles the open database and indexer of one command run.
type indexSession struct {
	db        *sql.DB
	discovery *discovery.FileDiscovery
	scanner   *scanner.Scanner
	indexer   *indexer.Indexer
}

// openIndex opens the project's declaration database and wires an indexer to it.
func (p *project) openIndex(progress scanner.ProgressReporter) (*indexSession, error) {
	fd, err := discovery.NewFileDiscovery(p.rootDir, p.cfg.Paths.Include, p.cfg.Paths.Ignore)
	if err != nil {
		return nil, err
	}

	sc, err := scanner.New(scanner.Options{
		Workers:   p.cfg.Scan.Workers,
		CacheSize: p.cfg.Scan.CacheSize,
		Progress:  progress,
	})
	if err != nil {
		return nil, err
	}

	db, err := storage.Open(p.cfg.DatabasePath(p.rootDir))
	if err != nil {
		sc.Close()
		return nil, fmt.Errorf("failed to open index database: %w", err)
	}

	return &indexSession{
		db:        db,
		discovery: fd,
		scanner:   sc,
		indexer:   indexer.New(p.rootDir, fd, sc, db),
	}, nil
}

func (s *indexSession) Close() {
	s.scanner.Close()
	s.db.Close()
}
