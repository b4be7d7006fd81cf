package store

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strconv"

	"bactsim/internal/model"
	"bactsim/internal/sim"
)

type ExportData struct {
	Params  model.Params `json:"params"`
	Horizon float64      `json:"horizon"`
	Samples int          `json:"samples"`
	Times   []float64    `json:"times"`
	Damage  []float64    `json:"damage"`
	Density []float64    `json:"density"`
	CrashAt *float64     `json:"crash_at,omitempty"`
}

// ExportJSON writes one trajectory with its parameters to w.
func ExportJSON(w io.Writer, p model.Params, cfg sim.Config, tr *sim.Trajectory) error {
	data := ExportData{
		Params:  p,
		Horizon: cfg.Horizon,
		Samples: cfg.Samples,
		Times:   tr.Times,
		Damage:  tr.Damage,
		Density: tr.Density,
	}
	if at, ok := sim.CrashTime(tr, p.T); ok {
		data.CrashAt = &at
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// ExportJSONFile writes the JSON export to a file.
func ExportJSONFile(path string, p model.Params, cfg sim.Config, tr *sim.Trajectory) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return ExportJSON(f, p, cfg, tr)
}

// WriteCSV writes a trajectory as time,damage,density rows with a header.
func WriteCSV(path string, tr *sim.Trajectory) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"time", "damage", "density"}); err != nil {
		return err
	}
	for i := range tr.Times {
		row := []string{
			strconv.FormatFloat(tr.Times[i], 'g', -1, 64),
			strconv.FormatFloat(tr.Damage[i], 'g', -1, 64),
			strconv.FormatFloat(tr.Density[i], 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}
