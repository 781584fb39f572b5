package session

import "time"

// State holds everything known about one review session. Sessions are
// in-memory only; the temp folder is the single on-disk footprint and is
// removed when the session ends.
type State struct {
	ID            string            `json:"session_id"`
	Name          string            `json:"session_name"`
	Requirements  string            `json:"requirements"`
	SelectedRoles []string          `json:"selected_roles"`
	ModelsConfig  map[string]string `json:"models_config"`
	Iteration     int               `json:"iteration"`
	UploadedFiles []string          `json:"uploaded_files"`
	TempFolder    string            `json:"temp_folder,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	Finalized     bool              `json:"is_finalized"`

	// Status and Confidence mirror the latest lifecycle events for display
	Status     string  `json:"status,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

// SetStatus updates the display status
func (s *State) SetStatus(status string) { s.Status = status }

// SetConfidence updates the last observed confidence score
func (s *State) SetConfidence(score float64) { s.Confidence = score }

// Persist is a no-op: session state lives in memory only. It exists so the
// state can sit behind the event-driven persistence handler.
func (s *State) Persist() error { return nil }

// Provider returns the configured backend name, or "Unknown"
func (s *State) Provider() string {
	if p, ok := s.ModelsConfig["provider"]; ok {
		return p
	}
	return "Unknown"
}
