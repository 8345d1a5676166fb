package builder

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// ErrNoRecord is returned by Medium.Read when nothing is stored
var ErrNoRecord = errors.New("builder: no draft record")

// Medium holds the single draft record. Writes must be durable when they return.
type Medium interface {
	Read() ([]byte, error)
	Write(data []byte) error
	Remove() error
}

// FileMedium keeps the record in one file
type FileMedium struct {
	Path string
}

func NewFileMedium(path string) *FileMedium {
	return &FileMedium{Path: path}
}

func (m *FileMedium) Read() ([]byte, error) {
	data, err := os.ReadFile(m.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoRecord
	}
	return data, err
}

// Write replaces the file through a synced temp file and rename, so a crash
// leaves either the old or the new record.
func (m *FileMedium) Write(data []byte) error {
	dir := filepath.Dir(m.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("draft file: ensure dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".builder_state-*")
	if err != nil {
		return fmt.Errorf("draft file: create temp: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("draft file: write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("draft file: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("draft file: close: %w", err)
	}
	if err := os.Rename(tmpPath, m.Path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("draft file: rename: %w", err)
	}
	return nil
}

func (m *FileMedium) Remove() error {
	err := os.Remove(m.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// MemoryMedium keeps the record in process memory
type MemoryMedium struct {
	mu   sync.Mutex
	data []byte
}

func NewMemoryMedium() *MemoryMedium {
	return &MemoryMedium{}
}

func (m *MemoryMedium) Read() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, ErrNoRecord
	}
	return append([]byte(nil), m.data...), nil
}

func (m *MemoryMedium) Write(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte{}, data...)
	return nil
}

func (m *MemoryMedium) Remove() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = nil
	return nil
}
