// Package store persists simulation runs as one directory per run holding
// metadata.json and fields.csv. Floats are written with full round-trip
// precision so a reloaded run compares bit-equal.
package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ultrafast-lab/demag/internal/demag"
	"github.com/ultrafast-lab/demag/internal/solver"
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
	ID        string        `json:"id"`
	Material  string        `json:"material"`
	Timestamp time.Time     `json:"timestamp"`
	Params    solver.Params `json:"params"`

	TStart     float64 `json:"t_start"`
	TEnd       float64 `json:"t_end"`
	OutputStep float64 `json:"output_step"`

	Positions []float64   `json:"positions"`
	Stats     demag.Stats `json:"stats"`

	// Units documents the conventions of the stored numbers.
	Units map[string]string `json:"units"`
}

func defaultUnits() map[string]string {
	return map[string]string{
		"time":        "s",
		"position":    "m",
		"temperature": "K",
		"fluence":     "mJ/cm^2",
		"pulse":       "ps",
		"wavelength":  "nm",
	}
}

func (s *Store) Save(p solver.Params, cfg demag.RunConfig, res *demag.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", p.Material, time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Material:   p.Material,
		Timestamp:  time.Now(),
		Params:     p,
		TStart:     cfg.TStart,
		TEnd:       cfg.TEnd,
		OutputStep: cfg.OutputStep,
		Positions:  res.Positions,
		Stats:      res.Stats,
		Units:      defaultUnits(),
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "fields.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	n := len(res.Positions)
	header := []string{"time"}
	for i := 0; i < n; i++ {
		header = append(header, fmt.Sprintf("te%d", i))
	}
	for i := 0; i < n; i++ {
		header = append(header, fmt.Sprintf("tp%d", i))
	}
	for i := 0; i < n; i++ {
		header = append(header, fmt.Sprintf("m%d", i))
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	for k := range res.Times {
		row := make([]string, 0, 1+3*n)
		row = append(row, formatFloat(res.Times[k]))
		for _, field := range [][][]float64{res.Electrons, res.Phonons, res.Magnetization} {
			for _, v := range field[k] {
				row = append(row, formatFloat(v))
			}
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()

	return runID, w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

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

// LoadFields rebuilds the full Result of a stored run.
func (s *Store) LoadFields(runID string) (*demag.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, "fields.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("run %s: empty fields file", runID)
	}

	n := len(meta.Positions)
	res := &demag.Result{
		Positions: meta.Positions,
		Stats:     meta.Stats,
	}

	for _, record := range records[1:] {
		if len(record) != 1+3*n {
			return nil, fmt.Errorf("run %s: row has %d columns, want %d", runID, len(record), 1+3*n)
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, err
		}
		res.Times = append(res.Times, t)

		row := make([]float64, 3*n)
		for j := range row {
			row[j], err = strconv.ParseFloat(record[1+j], 64)
			if err != nil {
				return nil, err
			}
		}
		res.Electrons = append(res.Electrons, row[:n:n])
		res.Phonons = append(res.Phonons, row[n:2*n:2*n])
		res.Magnetization = append(res.Magnetization, row[2*n:])
	}

	return res, nil
}
