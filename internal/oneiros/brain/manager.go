package brain

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/oneiros/oneiros/internal/oneiros/projection"
	"github.com/oneiros/oneiros/internal/oneiros/store"
)

// Manager opens and caches the system database and per-brain databases
// under a data directory, matching spec §6's persisted layout: a single
// system database plus `<data-dir>/brains/<brain-name>.db` per brain.
// Grounded on the teacher's single shared *SQLiteStore handle
// (cmd/wasm/main.go), generalized from one store to "one system store
// plus N brain stores opened lazily."
type Manager struct {
	dataDir string

	mu       sync.Mutex
	system   *store.Store
	sysProjs []projection.Projection
	brains   map[string]*Context
}

// NewManager creates a Manager rooted at dataDir, creating the
// directory tree if needed.
func NewManager(dataDir string) (*Manager, error) {
	if err := os.MkdirAll(filepath.Join(dataDir, "brains"), 0o755); err != nil {
		return nil, fmt.Errorf("brain: create data dir: %w", err)
	}
	return &Manager{
		dataDir:  dataDir,
		sysProjs: projection.SystemProjections(),
		brains:   make(map[string]*Context),
	}, nil
}

// System opens (if needed) and returns the system-level store plus its
// fixed projection list.
func (m *Manager) System() (*store.Store, []projection.Projection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.system != nil {
		return m.system, m.sysProjs, nil
	}
	s, err := store.Open(filepath.Join(m.dataDir, "system.db"))
	if err != nil {
		return nil, nil, err
	}
	if err := s.EnsureSchema(projection.SystemSchema()); err != nil {
		s.Close()
		return nil, nil, err
	}
	m.system = s
	return m.system, m.sysProjs, nil
}

// Brain opens (if needed) and returns the named brain's Context.
func (m *Manager) Brain(name string) (*Context, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ctx, ok := m.brains[name]; ok {
		return ctx, nil
	}
	path := filepath.Join(m.dataDir, "brains", name+".db")
	s, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	ctx, err := Open(name, s)
	if err != nil {
		s.Close()
		return nil, err
	}
	m.brains[name] = ctx
	return ctx, nil
}

// BrainPath returns the on-disk path a brain named name would live at,
// without opening it.
func (m *Manager) BrainPath(name string) string {
	return filepath.Join(m.dataDir, "brains", name+".db")
}

// Close closes every opened store.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var firstErr error
	if m.system != nil {
		if err := m.system.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, ctx := range m.brains {
		if err := ctx.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
