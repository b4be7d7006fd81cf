// Package store persists simulation runs as flat files: a metadata.json
// describing the run and a trajectory.csv with the sampled solution.
package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"bactsim/internal/model"
	"bactsim/internal/sim"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string       `json:"id"`
	Timestamp  time.Time    `json:"timestamp"`
	Params     model.Params `json:"params"`
	Horizon    float64      `json:"horizon"`
	Samples    int          `json:"samples"`
	Integrator string       `json:"integrator"`
	CrashAt    *float64     `json:"crash_at,omitempty"`
}

// Save writes one run to its own directory and returns the run ID.
// A crash that was never observed is stored as an absent field, not a
// sentinel value.
func (s *Store) Save(integrator string, p model.Params, cfg sim.Config, tr *sim.Trajectory) (string, error) {
	runID := fmt.Sprintf("run_%d", time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Timestamp:  time.Now(),
		Params:     p,
		Horizon:    cfg.Horizon,
		Samples:    cfg.Samples,
		Integrator: integrator,
	}
	if at, ok := sim.CrashTime(tr, p.T); ok {
		meta.CrashAt = &at
	}

	metaPath := filepath.Join(runDir, "metadata.json")
	metaFile, err := os.Create(metaPath)
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvPath := filepath.Join(runDir, "trajectory.csv")
	if err := WriteCSV(csvPath, tr); err != nil {
		return "", err
	}

	return runID, nil
}

// List returns metadata for all saved runs, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		meta, err := s.Load(e.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadTrajectory reads back a saved trajectory.
func (s *Store) LoadTrajectory(runID string) (*sim.Trajectory, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "trajectory.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("trajectory for %s is empty", runID)
	}

	tr := &sim.Trajectory{}
	for _, rec := range records[1:] { // skip header
		if len(rec) != 3 {
			return nil, fmt.Errorf("malformed trajectory row: %v", rec)
		}
		t, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			return nil, err
		}
		y, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, err
		}
		x, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, err
		}
		tr.Times = append(tr.Times, t)
		tr.Damage = append(tr.Damage, y)
		tr.Density = append(tr.Density, x)
	}

	return tr, nil
}
