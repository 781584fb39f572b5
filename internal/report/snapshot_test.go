package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_RoundTrip(t *testing.T) {
	state := sampleSession()
	history := sampleHistory()
	path := filepath.Join(t.TempDir(), "session.snapshot.json")

	require.NoError(t, SaveSnapshot(path, state, history))

	snap, err := LoadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, state.ID, snap.Session.ID)
	assert.Equal(t, state.Requirements, snap.Session.Requirements)
	require.Len(t, snap.Iterations, len(history))
	assert.Equal(t, history[1].Confidence, snap.Iterations[1].Confidence)
	assert.Equal(t, history[1].ReviewerFeedback, snap.Iterations[1].ReviewerFeedback)

	// A reloaded snapshot renders the same report
	assert.Equal(t, Markdown(state, history), Markdown(snap.Session, snap.Iterations))
}

func TestLoadSnapshot_MissingFile(t *testing.T) {
	_, err := LoadSnapshot(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read snapshot")
}

func TestLoadSnapshot_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := LoadSnapshot(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode snapshot")
}

func TestLoadSnapshot_NoSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"iterations": []}`), 0644))

	_, err := LoadSnapshot(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no session")
}
