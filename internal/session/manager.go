package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quorumdev/quorum/internal/workflow"
)

// ErrNoSession is returned by operations that require an active session
var ErrNoSession = errors.New("no active session")

// Manager owns session lifecycle: creation, iteration records, the finalize
// latch, temp-folder housekeeping and uploaded files. It implements the
// store surface the workflow engine writes through.
type Manager struct {
	mu         sync.Mutex
	current    *State
	history    map[string]*State
	iterations map[string][]*workflow.IterationState
}

var _ workflow.Store = (*Manager)(nil)

// NewManager creates an empty session manager
func NewManager() *Manager {
	return &Manager{
		history:    make(map[string]*State),
		iterations: make(map[string][]*workflow.IterationState),
	}
}

// CreateSession starts a new session and provisions its temp folder.
// The new session becomes the current one.
func (m *Manager) CreateSession(name, requirements string, roles []string, modelsConfig map[string]string) (*State, error) {
	id := uuid.NewString()

	tempFolder, err := createTempFolder(id)
	if err != nil {
		return nil, fmt.Errorf("failed to create session folder: %w", err)
	}

	state := &State{
		ID:            id,
		Name:          name,
		Requirements:  requirements,
		SelectedRoles: roles,
		ModelsConfig:  modelsConfig,
		TempFolder:    tempFolder,
		CreatedAt:     time.Now(),
	}

	m.mu.Lock()
	m.current = state
	m.history[id] = state
	m.mu.Unlock()

	return state, nil
}

// CurrentSession returns the active session, or nil
func (m *Manager) CurrentSession() *State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// FinalizeSession marks the current session complete so reports can be
// generated. It does not release any resources; reports still need the
// session's records. Returns false without an active session.
func (m *Manager) FinalizeSession() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return false
	}
	m.current.Finalized = true
	return true
}

// IsFinalized reports the current session's finalize latch
func (m *Manager) IsFinalized() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current != nil && m.current.Finalized
}

// EndSession tears down the current session and removes its temp folder.
// Cleanup is best effort; ending with no active session is not an error.
func (m *Manager) EndSession() error {
	m.mu.Lock()
	current := m.current
	m.current = nil
	m.mu.Unlock()

	if current == nil || current.TempFolder == "" {
		return nil
	}
	if err := os.RemoveAll(current.TempFolder); err != nil {
		return fmt.Errorf("failed to cleanup temp folder %s: %w", current.TempFolder, err)
	}
	return nil
}

// IncrementIterationCounter advances the session's iteration counter and
// returns the new value. Without an active session it returns 0.
func (m *Manager) IncrementIterationCounter() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return 0
	}
	m.current.Iteration++
	return m.current.Iteration
}

// Iteration returns the current session's iteration counter
func (m *Manager) Iteration() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return 0
	}
	return m.current.Iteration
}

// RecordIteration stores a completed round against the current session.
// Records arriving with no active session are dropped.
func (m *Manager) RecordIteration(state *workflow.IterationState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return
	}
	id := m.current.ID
	m.iterations[id] = append(m.iterations[id], state)
}

// GetLastIteration returns the most recent recorded round, or nil
func (m *Manager) GetLastIteration() *workflow.IterationState {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	states := m.iterations[m.current.ID]
	if len(states) == 0 {
		return nil
	}
	return states[len(states)-1]
}

// AllIterations returns every recorded round for the current session
func (m *Manager) AllIterations() []*workflow.IterationState {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	states := m.iterations[m.current.ID]
	out := make([]*workflow.IterationState, len(states))
	copy(out, states)
	return out
}

// IterationRecordCount returns how many rounds have been recorded for the
// current session, including failed attempts
func (m *Manager) IterationRecordCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return 0
	}
	return len(m.iterations[m.current.ID])
}

// LatestPresenterOutput returns the last recorded round's artifact, or ""
func (m *Manager) LatestPresenterOutput() string {
	last := m.GetLastIteration()
	if last == nil {
		return ""
	}
	return last.PresenterOutput
}

// SaveUploadedFile writes an uploaded file into the session temp folder and
// tracks it on the session. The filename is stripped to its base name.
func (m *Manager) SaveUploadedFile(filename string, content []byte) (string, error) {
	m.mu.Lock()
	current := m.current
	m.mu.Unlock()

	if current == nil {
		return "", ErrNoSession
	}

	path := filepath.Join(current.TempFolder, filepath.Base(filename))
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("failed to save uploaded file: %w", err)
	}

	m.mu.Lock()
	tracked := false
	for _, existing := range current.UploadedFiles {
		if existing == path {
			tracked = true
			break
		}
	}
	if !tracked {
		current.UploadedFiles = append(current.UploadedFiles, path)
	}
	m.mu.Unlock()

	return path, nil
}

// ReadUploadedFile returns the content of a previously saved file
func (m *Manager) ReadUploadedFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read uploaded file: %w", err)
	}
	return string(data), nil
}

func createTempFolder(sessionID string) (string, error) {
	folder := filepath.Join(os.TempDir(), "quorum_session_"+sessionID)
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", err
	}
	return folder, nil
}
