package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorumdev/quorum/internal/workflow"
)

func newSession(t *testing.T, m *Manager) *State {
	t.Helper()
	state, err := m.CreateSession("board review", "Build a login page",
		[]string{"Technical Reviewer", "Security Reviewer"},
		map[string]string{"provider": "mock"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.EndSession() })
	return state
}

func TestManager_CreateSession(t *testing.T) {
	m := NewManager()
	state := newSession(t, m)

	_, err := uuid.Parse(state.ID)
	assert.NoError(t, err, "session ID should be a uuid")
	assert.Equal(t, "board review", state.Name)
	assert.Equal(t, "Build a login page", state.Requirements)
	assert.Len(t, state.SelectedRoles, 2)
	assert.Equal(t, "mock", state.Provider())
	assert.False(t, state.Finalized)
	assert.Zero(t, state.Iteration)
	assert.False(t, state.CreatedAt.IsZero())

	assert.DirExists(t, state.TempFolder)
	assert.Same(t, state, m.CurrentSession())
}

func TestManager_FinalizeLatch(t *testing.T) {
	m := NewManager()

	assert.False(t, m.FinalizeSession(), "finalize without a session should fail")
	assert.False(t, m.IsFinalized())

	newSession(t, m)
	assert.False(t, m.IsFinalized())
	assert.True(t, m.FinalizeSession())
	assert.True(t, m.IsFinalized())
}

func TestManager_EndSessionCleansUp(t *testing.T) {
	m := NewManager()
	state := newSession(t, m)
	folder := state.TempFolder

	require.NoError(t, m.EndSession())
	assert.Nil(t, m.CurrentSession())
	assert.NoDirExists(t, folder)

	assert.NoError(t, m.EndSession(), "ending twice should be harmless")
}

func TestManager_IterationCounter(t *testing.T) {
	m := NewManager()
	assert.Zero(t, m.IncrementIterationCounter(), "no session means no counter")

	newSession(t, m)
	assert.Equal(t, 1, m.IncrementIterationCounter())
	assert.Equal(t, 2, m.IncrementIterationCounter())
	assert.Equal(t, 2, m.Iteration())
}

func TestManager_IterationRecords(t *testing.T) {
	m := NewManager()
	newSession(t, m)

	assert.Nil(t, m.GetLastIteration())
	assert.Empty(t, m.AllIterations())

	first := &workflow.IterationState{Iteration: 1, PresenterOutput: "draft one"}
	second := &workflow.IterationState{Iteration: 2, PresenterOutput: "draft two"}
	m.RecordIteration(first)
	m.RecordIteration(second)

	assert.Same(t, second, m.GetLastIteration())
	assert.Equal(t, 2, m.IterationRecordCount())
	assert.Equal(t, "draft two", m.LatestPresenterOutput())

	all := m.AllIterations()
	require.Len(t, all, 2)
	assert.Same(t, first, all[0])
}

func TestManager_RecordsAreDroppedWithoutSession(t *testing.T) {
	m := NewManager()
	m.RecordIteration(&workflow.IterationState{Iteration: 1})

	assert.Nil(t, m.GetLastIteration())
	assert.Zero(t, m.IterationRecordCount())
}

func TestManager_SaveUploadedFile(t *testing.T) {
	m := NewManager()

	_, err := m.SaveUploadedFile("notes.md", []byte("x"))
	assert.ErrorIs(t, err, ErrNoSession)

	state := newSession(t, m)

	path, err := m.SaveUploadedFile("../escape/notes.md", []byte("# Notes"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(state.TempFolder, "notes.md"), path,
		"filenames are stripped to their base name")

	content, err := m.ReadUploadedFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Notes", content)

	// Saving the same name again overwrites but tracks once
	_, err = m.SaveUploadedFile("notes.md", []byte("updated"))
	require.NoError(t, err)
	assert.Len(t, state.UploadedFiles, 1)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "updated", string(data))
}

func TestState_EventHooks(t *testing.T) {
	state := &State{}
	state.SetStatus("in_review")
	state.SetConfidence(0.88)

	assert.Equal(t, "in_review", state.Status)
	assert.Equal(t, 0.88, state.Confidence)
	assert.NoError(t, state.Persist())
}
