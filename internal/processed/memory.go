// Package processed records which post files have already been announced.
package processed

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/darshanbajgain/darshan-blog-temp/pkg/interfaces"
)

var _ interfaces.ProcessedStore = (*Memory)(nil)

// Memory keeps processed markers for the lifetime of the process.
type Memory struct {
	mu    sync.RWMutex
	files map[string]time.Time
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{files: make(map[string]time.Time)}
}

// Has reports whether filename was marked.
func (m *Memory) Has(_ context.Context, filename string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.files[filename]
	return ok, nil
}

// Mark records filename as processed at the given time.
func (m *Memory) Mark(_ context.Context, filename string, at time.Time) error {
	if strings.TrimSpace(filename) == "" {
		return ErrEmptyFilename
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[filename] = at.UTC()
	return nil
}

// Forget removes the marker for filename. Missing markers are ignored.
func (m *Memory) Forget(_ context.Context, filename string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, filename)
	return nil
}

// List returns every marker ordered by filename.
func (m *Memory) List(context.Context) ([]interfaces.ProcessedFile, error) {
	m.mu.RLock()
	out := make([]interfaces.ProcessedFile, 0, len(m.files))
	for name, at := range m.files {
		out = append(out, interfaces.ProcessedFile{Filename: name, ProcessedAt: at})
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Filename < out[j].Filename })
	return out, nil
}
