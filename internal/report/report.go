package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/local/topicsplitter/internal/segment"
)

// RunReport is the persisted summary of one pipeline run.
type RunReport struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Documents int            `json:"documents"`
	Units     int            `json:"units"`
	ByStatus  map[string]int `json:"by_status"`
	ByFormat  map[string]int `json:"by_format"`
	Failures  map[string]int `json:"failures_by_reason"`

	Results []segment.Result `json:"results"`
}

// Aggregator collects per-document results from concurrent workers.
type Aggregator struct {
	mu      sync.Mutex
	runID   string
	started time.Time
	results []segment.Result
}

func NewAggregator() *Aggregator {
	return &Aggregator{runID: uuid.NewString(), started: time.Now()}
}

func (a *Aggregator) RunID() string { return a.runID }

func (a *Aggregator) Add(res segment.Result) {
	a.mu.Lock()
	a.results = append(a.results, res)
	a.mu.Unlock()
}

// Finalize rolls the collected results into a RunReport. The aggregator can
// keep accepting results afterwards; each call snapshots the current state.
func (a *Aggregator) Finalize() RunReport {
	a.mu.Lock()
	defer a.mu.Unlock()

	rep := RunReport{
		RunID:      a.runID,
		StartedAt:  a.started,
		FinishedAt: time.Now(),
		Documents:  len(a.results),
		ByStatus:   map[string]int{},
		ByFormat:   map[string]int{},
		Failures:   map[string]int{},
		Results:    append([]segment.Result(nil), a.results...),
	}
	for _, r := range a.results {
		rep.ByStatus[r.Status]++
		rep.ByFormat[string(r.Format)]++
		rep.Units += len(r.Units)
		if r.FailureReason != "" {
			rep.Failures[r.FailureReason]++
		}
	}
	return rep
}

// WriteFile finalizes and writes the report as JSON under dir. Returns the
// written path.
func (a *Aggregator) WriteFile(dir string) (string, error) {
	rep := a.Finalize()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("run_%s.json", rep.RunID))
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	log.Info().Str("path", path).Int("documents", rep.Documents).Int("units", rep.Units).Msg("run report written")
	return path, nil
}

// ReadFile loads a previously written run report.
func ReadFile(path string) (RunReport, error) {
	var rep RunReport
	data, err := os.ReadFile(path)
	if err != nil {
		return rep, fmt.Errorf("read report: %w", err)
	}
	if err := json.Unmarshal(data, &rep); err != nil {
		return rep, fmt.Errorf("parse report: %w", err)
	}
	return rep, nil
}
