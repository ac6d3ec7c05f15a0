// Package store provides the durable, append-only landing log.
//
// The log is persisted as a single JSON document with a top-level "landings"
// array. Writes replace the whole document atomically; a corrupt or missing
// file degrades to an empty log and is rewritten on the next mutation.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/book-expert/logger"
	"github.com/craigybabyj/landing-judge/internal/fsutil"
)

// Landing is one recorded vote: a clamped score plus its UTC timestamp.
// Records are immutable once written and ordered by insertion.
type Landing struct {
	Score int    `json:"score"`
	TS    string `json:"ts"`
}

type document struct {
	Landings []Landing `json:"landings"`
}

// Store is the durable landing log. All mutations are serialized by a single
// lock, and every mutation re-reads the file first so concurrent callers
// cannot lose each other's appends.
type Store struct {
	path string
	mu   sync.Mutex
	log  *logger.Logger
}

// New creates a Store backed by the given file path. A missing or corrupt
// file is replaced with a fresh empty log rather than reported as an error.
func New(path string, log *logger.Logger) (*Store, error) {
	s := &Store{
		path: path,
		mu:   sync.Mutex{},
		log:  log,
	}

	err := s.ensureFile()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize landing log at '%s': %w", path, err)
	}

	return s, nil
}

// Append adds one landing record and durably persists the full log. The
// record is not considered accepted unless the write succeeds.
func (s *Store) Append(score int, ts string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.read()
	doc.Landings = append(doc.Landings, Landing{Score: score, TS: ts})

	err := s.write(doc)
	if err != nil {
		return fmt.Errorf("failed to persist landing log: %w", err)
	}

	return nil
}

// GetAll returns the current ordered sequence of landing records. The
// returned slice is a snapshot owned by the caller.
func (s *Store) GetAll() []Landing {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.read()

	return doc.Landings
}

// Reset clears the landing log.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.write(document{Landings: []Landing{}})
	if err != nil {
		return fmt.Errorf("failed to reset landing log: %w", err)
	}

	return nil
}

// ensureFile guarantees the backing file exists and holds a well-formed
// document, self-healing to an empty log otherwise.
func (s *Store) ensureFile() error {
	data, err := os.ReadFile(s.path)
	if err == nil {
		var doc document

		parseErr := json.Unmarshal(data, &doc)
		if parseErr == nil && doc.Landings != nil {
			return nil
		}

		s.log.Warn("Landing log at '%s' is corrupt, rewriting as empty", s.path)
	}

	return s.write(document{Landings: []Landing{}})
}

// read loads the current document, degrading to an empty log on any read or
// parse failure. Callers must hold the lock.
func (s *Store) read() document {
	empty := document{Landings: []Landing{}}

	data, err := os.ReadFile(s.path)
	if err != nil {
		s.log.Warn("Failed to read landing log '%s', treating as empty: %v", s.path, err)

		return empty
	}

	var doc document

	err = json.Unmarshal(data, &doc)
	if err != nil {
		s.log.Warn("Failed to parse landing log '%s', treating as empty: %v", s.path, err)

		return empty
	}

	if doc.Landings == nil {
		doc.Landings = []Landing{}
	}

	return doc
}

func (s *Store) write(doc document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal landing log: %w", err)
	}

	err = fsutil.WriteFileAtomic(s.path, data)
	if err != nil {
		return fmt.Errorf("failed to write landing log '%s': %w", s.path, err)
	}

	return nil
}
