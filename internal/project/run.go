package project

import (
	"time"

	"github.com/KaramelBytes/enrich-cli/internal/pipeline"
)

// RunRecord summarizes one batch run stored in the study history.
type RunRecord struct {
	ID         string    `json:"id"`
	Root       string    `json:"root"`
	Manifest   string    `json:"manifest,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Units      int       `json:"units"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
}

// RecordRun appends a summary of m to the run history. manifestPath is where
// the full manifest was written, if anywhere.
func (s *Study) RecordRun(m *pipeline.Manifest, manifestPath string) *RunRecord {
	r := &RunRecord{
		ID:         m.RunID,
		Root:       m.Root,
		Manifest:   manifestPath,
		StartedAt:  m.StartedAt,
		FinishedAt: m.FinishedAt,
		Units:      len(m.Units),
		Succeeded:  m.Succeeded,
		Failed:     m.Failed,
	}
	s.Runs = append(s.Runs, r)
	s.UpdatedAt = time.Now()
	return r
}

// LastRun returns the most recent run, or nil when the study has none.
func (s *Study) LastRun() *RunRecord {
	if len(s.Runs) == 0 {
		return nil
	}
	return s.Runs[len(s.Runs)-1]
}
