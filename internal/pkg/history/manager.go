// Package history keeps a log of accepted commit messages in the config directory.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// FileName is the history file created inside the config directory.
	FileName = "history.json"
	// DefaultMaxEntries caps the log; older entries are dropped first.
	DefaultMaxEntries = 200
	// DefaultRecent is how many entries --history prints.
	DefaultRecent = 10
)

// Entry is one accepted message.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	Revisions int       `json:"revisions"`
	Committed bool      `json:"committed"`
	Pushed    bool      `json:"pushed"`
}

// Header returns the first line of the message.
func (e *Entry) Header() string {
	header, _, _ := strings.Cut(strings.TrimSpace(e.Message), "\n")
	return header
}

// Manager records and lists accepted messages.
type Manager interface {
	Save(entry *Entry) error
	Recent(limit int) ([]*Entry, error)
}

// FileManager implements Manager using a JSON file for storage.
type FileManager struct {
	filePath   string
	maxEntries int
	mu         sync.Mutex
}

// NewFileManager creates a FileManager for filePath keeping at most maxEntries.
func NewFileManager(filePath string, maxEntries int) *FileManager {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &FileManager{
		filePath:   filePath,
		maxEntries: maxEntries,
	}
}

// NewDirManager creates a FileManager storing FileName inside dir.
func NewDirManager(dir string) *FileManager {
	return NewFileManager(filepath.Join(dir, FileName), DefaultMaxEntries)
}

// Path returns the history file location.
func (m *FileManager) Path() string {
	return m.filePath
}

// Save appends entry, assigning an ID and timestamp when they are unset.
func (m *FileManager) Save(entry *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	entries, err := m.load()
	if err != nil {
		return err
	}

	entries = append(entries, entry)
	if len(entries) > m.maxEntries {
		entries = entries[len(entries)-m.maxEntries:]
	}

	return m.write(entries)
}

// Recent returns up to limit entries, newest first.
// A limit of 0 or less returns every entry.
func (m *FileManager) Recent(limit int) ([]*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := m.load()
	if err != nil {
		return nil, err
	}

	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}

	recent := make([]*Entry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		recent = append(recent, entries[i])
	}
	return recent, nil
}

// load reads the file in append order. A missing file is an empty log.
func (m *FileManager) load() ([]*Entry, error) {
	data, err := os.ReadFile(m.filePath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}

	var entries []*Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse history file %s: %w", m.filePath, err)
	}
	return entries, nil
}

func (m *FileManager) write(entries []*Entry) error {
	if err := os.MkdirAll(filepath.Dir(m.filePath), 0700); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	if err := os.WriteFile(m.filePath, data, 0600); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	// WriteFile keeps the mode of an existing file.
	return os.Chmod(m.filePath, 0600)
}
