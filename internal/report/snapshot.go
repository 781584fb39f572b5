package report

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/quorumdev/quorum/internal/session"
	"github.com/quorumdev/quorum/internal/workflow"
)

// Snapshot is the on-disk record of a finished session: enough to re-render
// the report in any format after the process exits.
type Snapshot struct {
	Session    *session.State             `json:"session"`
	Iterations []*workflow.IterationState `json:"iterations"`
}

// SaveSnapshot writes the session and its iteration history as JSON.
func SaveSnapshot(path string, state *session.State, history []*workflow.IterationState) error {
	snap := Snapshot{Session: state, Iterations: history}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads a snapshot written by SaveSnapshot.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Session == nil {
		return nil, fmt.Errorf("snapshot %s has no session", path)
	}
	return &snap, nil
}
