package search

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"
)

// Index wraps a Bleve index of titles.
//
// All methods are safe for concurrent use. Rebuild takes the write lock and
// blocks other operations until the fresh index is in place.
type Index struct {
	index  bleve.Index
	path   string
	logger *slog.Logger
	mu     sync.RWMutex

	// created is true when the index was created rather than opened.
	created bool
}

// Options configures the search index.
type Options struct {
	// Path is the index directory. Empty keeps the index in memory.
	Path   string
	Logger *slog.Logger
}

// mappingVersion is bumped whenever buildIndexMapping changes, which forces
// a rebuild on the next start.
const mappingVersion = "1"

// batchSize bounds the documents committed per Bleve batch.
const batchSize = 500

// Open creates or opens the title index. An existing index with a missing or
// outdated version file, or one that fails to open, is removed and recreated.
func Open(opts Options) (*Index, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if opts.Path == "" {
		index, err := bleve.NewMemOnly(buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create memory index: %w", err)
		}
		return &Index{index: index, logger: logger, created: true}, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}

	versionPath := opts.Path + ".version"
	needsRebuild := false

	_, statErr := os.Stat(opts.Path)
	indexExists := statErr == nil

	if indexExists {
		existingVersion, readErr := os.ReadFile(versionPath)
		switch {
		case readErr != nil:
			logger.Info("search index has no version file, rebuilding", "new_version", mappingVersion)
			needsRebuild = true
		case string(existingVersion) != mappingVersion:
			logger.Info("search index mapping version changed, rebuilding",
				"old_version", string(existingVersion),
				"new_version", mappingVersion,
			)
			needsRebuild = true
		}
	}

	var index bleve.Index
	if indexExists && !needsRebuild {
		var err error
		index, err = bleve.Open(opts.Path)
		if err != nil {
			logger.Warn("failed to open search index, recreating", "path", opts.Path, "error", err)
			needsRebuild = true
		}
	}

	if needsRebuild {
		if err := os.RemoveAll(opts.Path); err != nil {
			return nil, fmt.Errorf("remove old index: %w", err)
		}
	}

	created := false
	if index == nil {
		var err error
		index, err = bleve.New(opts.Path, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
		if err := os.WriteFile(versionPath, []byte(mappingVersion), 0o644); err != nil {
			logger.Warn("failed to write search version file", "error", err)
		}
		created = true
		logger.Info("created search index", "path", opts.Path, "mapping_version", mappingVersion)
	} else {
		logger.Debug("opened search index", "path", opts.Path)
	}

	return &Index{index: index, path: opts.Path, logger: logger, created: created}, nil
}

// Created reports whether Open started from an empty index.
func (s *Index) Created() bool {
	return s.created
}

// Close closes the index.
func (s *Index) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// Shutdown implements do.Shutdowner.
func (s *Index) Shutdown() error {
	return s.Close()
}

// IndexTitle adds or replaces one document.
func (s *Index) IndexTitle(doc *TitleDocument) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Index(doc.ID, doc.ToMap())
}

// IndexTitles indexes documents in batches.
func (s *Index) IndexTitles(docs []*TitleDocument) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := 0; i < len(docs); i += batchSize {
		end := min(i+batchSize, len(docs))

		batch := s.index.NewBatch()
		for _, doc := range docs[i:end] {
			if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
		}
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

// DeleteTitle removes a title from the index. Unknown ids are not an error.
func (s *Index) DeleteTitle(titleID int64) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(DocumentID(titleID))
}

// DocumentCount returns the number of indexed titles.
func (s *Index) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild drops every document by replacing the index with an empty one.
func (s *Index) Rebuild() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}

	var (
		index bleve.Index
		err   error
	)
	if s.path == "" {
		index, err = bleve.NewMemOnly(buildIndexMapping())
	} else {
		if err := os.RemoveAll(s.path); err != nil {
			return fmt.Errorf("remove index: %w", err)
		}
		index, err = bleve.New(s.path, buildIndexMapping())
	}
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	s.index = index
	s.logger.Info("rebuilt search index", "path", s.path)
	return nil
}
