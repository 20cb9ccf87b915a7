// Package drafts persists submitted editor payloads as JSON lines.
package drafts

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gravitrone/mentionly/internal/mention"
)

// Draft is one submitted payload.
type Draft struct {
	ID        string                `json:"id"`
	CreatedAt time.Time             `json:"created_at"`
	Content   []mention.ContentPart `json:"content"`
	Data      []mention.DataPart    `json:"data"`
}

// PlainText renders the draft content.
func (d Draft) PlainText() string {
	return mention.PlainText(d.Content)
}

// Store appends drafts to a single file. It is safe for concurrent use.
type Store struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// DefaultPath returns ~/.mentionly/drafts.jsonl.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".mentionly", "drafts.jsonl")
}

// Open returns a store backed by path. The file is created on first append.
func Open(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Append stamps and writes a new draft.
func (s *Store) Append(content []mention.ContentPart, data []mention.DataPart) (Draft, error) {
	d := Draft{
		ID:        uuid.NewString(),
		CreatedAt: s.now().UTC(),
		Content:   content,
		Data:      data,
	}
	line, err := json.Marshal(d)
	if err != nil {
		return Draft{}, fmt.Errorf("marshal draft: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return Draft{}, fmt.Errorf("create drafts dir: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return Draft{}, fmt.Errorf("open drafts: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return Draft{}, fmt.Errorf("write draft: %w", err)
	}
	return d, nil
}

// List returns every stored draft, oldest first. A missing file is an empty list.
func (s *Store) List() ([]Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open drafts: %w", err)
	}
	defer f.Close()

	var out []Draft
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var d Draft
		if err := json.Unmarshal(scanner.Bytes(), &d); err != nil {
			return nil, fmt.Errorf("parse draft line %d: %w", lineNo, err)
		}
		out = append(out, d)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read drafts: %w", err)
	}
	return out, nil
}

// Last returns the most recent draft.
func (s *Store) Last() (Draft, bool, error) {
	all, err := s.List()
	if err != nil || len(all) == 0 {
		return Draft{}, false, err
	}
	return all[len(all)-1], true, nil
}
