package dataset

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vinodismyname/mcpeda/config"
	"github.com/xuri/excelize/v2"
)

// Handle pairs a loaded Frame with metadata for TTL eviction. Frames are
// immutable after load, so handles need no per-frame locking.
type Handle struct {
	ID        string
	Path      string
	Frame     *Frame
	Meta      LoadMeta
	LoadedAt  time.Time
	ExpiresAt time.Time
}

// DatasetGate coordinates capacity for open dataset handles (backed by runtime.Controller).
type DatasetGate interface {
	AcquireDataset(ctx context.Context) error
	ReleaseDataset()
}

// PathValidator abstracts filesystem path validation. Implementations should
// return a canonical absolute path if allowed, or an error when denied.
type PathValidator interface {
	ValidateOpenPath(path string) (string, error)
}

// Manager owns dataset lifecycle: loading worksheets into frames, caching the
// resulting handles with an idle TTL, and enforcing open-dataset capacity.
type Manager struct {
	mu           sync.RWMutex
	handles      map[string]*Handle
	ttl          time.Duration
	cleanupEvery time.Duration
	clock        func() time.Time
	gate         DatasetGate
	stopCh       chan struct{}
	cleanupWG    sync.WaitGroup
	validator    PathValidator
	maxCells     int
}

// NewManager constructs a lifecycle manager with a TTL-bearing handle cache.
// Pass ttl or cleanupEvery <= 0 to use defaults from config.
// Gate and validator can be nil for tests; clock defaults to time.Now when nil.
func NewManager(ttl, cleanupEvery time.Duration, gate DatasetGate, clock func() time.Time) *Manager {
	if ttl <= 0 {
		ttl = config.DefaultDatasetIdleTTL
	}
	if cleanupEvery <= 0 {
		cleanupEvery = config.DefaultDatasetCleanupPeriod
	}
	if clock == nil {
		clock = time.Now
	}
	return &Manager{
		handles:      make(map[string]*Handle),
		ttl:          ttl,
		cleanupEvery: cleanupEvery,
		clock:        clock,
		gate:         gate,
		stopCh:       make(chan struct{}),
		maxCells:     config.DefaultMaxCellsPerOp,
	}
}

// WithValidator attaches a path validator used by Open.
func (m *Manager) WithValidator(v PathValidator) *Manager {
	m.validator = v
	return m
}

// WithMaxCells overrides the loader cell bound.
func (m *Manager) WithMaxCells(n int) *Manager {
	if n > 0 {
		m.maxCells = n
	}
	return m
}

// Start launches periodic eviction of expired handles.
func (m *Manager) Start() {
	m.cleanupWG.Add(1)
	ticker := time.NewTicker(m.cleanupEvery)
	go func() {
		defer m.cleanupWG.Done()
		defer ticker.Stop()
		for {
			select {
			case <-m.stopCh:
				return
			case <-ticker.C:
				m.EvictExpired()
			}
		}
	}()
}

// Close stops background cleanup and drops all handles.
func (m *Manager) Close(ctx context.Context) error {
	close(m.stopCh)
	done := make(chan struct{})
	go func() { m.cleanupWG.Wait(); close(done) }()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for id := range m.handles {
		delete(m.handles, id)
		m.release()
	}
	return nil
}

// ErrHandleNotFound indicates an unknown or expired handle ID.
var ErrHandleNotFound = errors.New("dataset: handle not found")

// Open validates the path, loads the named sheet (or the active sheet when
// empty) into a Frame, and registers a TTL-bearing handle. The workbook file
// is closed before Open returns; only the frame stays in memory.
func (m *Manager) Open(ctx context.Context, path, sheet string) (string, string, error) {
	if err := m.acquire(ctx); err != nil {
		return "", "", err
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		// allowed workbook formats
	default:
		m.release()
		return "", "", fmt.Errorf("dataset: unsupported format: %s", ext)
	}

	if m.validator != nil {
		canonical, err := m.validator.ValidateOpenPath(path)
		if err != nil {
			m.release()
			return "", "", err
		}
		path = canonical
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		m.release()
		return "", "", err
	}
	defer func() { _ = f.Close() }()

	if strings.TrimSpace(sheet) == "" {
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
	}
	frame, meta, err := LoadSheet(f, sheet, m.maxCells)
	if err != nil {
		m.release()
		return "", "", err
	}

	id := uuid.NewString()
	loadedAt := m.clock()
	h := &Handle{
		ID:        id,
		Path:      path,
		Frame:     frame,
		Meta:      meta,
		LoadedAt:  loadedAt,
		ExpiresAt: loadedAt.Add(m.ttl),
	}

	m.mu.Lock()
	m.handles[id] = h
	m.mu.Unlock()

	return id, path, nil
}

// Adopt registers an existing frame as a managed handle. Intended for tests.
func (m *Manager) Adopt(ctx context.Context, frame *Frame) (string, error) {
	if frame == nil {
		return "", fmt.Errorf("dataset: nil frame")
	}
	if err := m.acquire(ctx); err != nil {
		return "", err
	}
	id := uuid.NewString()
	loadedAt := m.clock()
	m.mu.Lock()
	m.handles[id] = &Handle{ID: id, Frame: frame, LoadedAt: loadedAt, ExpiresAt: loadedAt.Add(m.ttl)}
	m.mu.Unlock()
	return id, nil
}

// Get returns the handle when present and refreshes its TTL.
func (m *Manager) Get(id string) (*Handle, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.handles[id]
	if !ok {
		return nil, false
	}
	// Refresh TTL on access (idle timeout semantics)
	h.ExpiresAt = m.clock().Add(m.ttl)
	return h, true
}

// WithFrame resolves the handle and executes fn against its frame.
func (m *Manager) WithFrame(id string, fn func(*Frame) error) error {
	h, ok := m.Get(id)
	if !ok {
		return ErrHandleNotFound
	}
	return fn(h.Frame)
}

// CloseHandle removes a handle by ID, releasing capacity via the gate.
func (m *Manager) CloseHandle(ctx context.Context, id string) error {
	m.mu.Lock()
	_, ok := m.handles[id]
	if ok {
		delete(m.handles, id)
	}
	m.mu.Unlock()
	if !ok {
		return ErrHandleNotFound
	}
	m.release()
	return nil
}

// EvictExpired scans for expired handles and drops them.
func (m *Manager) EvictExpired() {
	now := m.clock()
	m.mu.Lock()
	var expired []string
	for id, h := range m.handles {
		if now.After(h.ExpiresAt) {
			expired = append(expired, id)
		}
	}
	for _, id := range expired {
		delete(m.handles, id)
	}
	m.mu.Unlock()
	for range expired {
		m.release()
	}
}

// Count returns the current number of cached handles.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.handles)
}

func (m *Manager) acquire(ctx context.Context) error {
	if m.gate == nil {
		return nil
	}
	return m.gate.AcquireDataset(ctx)
}

func (m *Manager) release() {
	if m.gate == nil {
		return
	}
	m.gate.ReleaseDataset()
}
