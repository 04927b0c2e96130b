package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/san-kum/pendsim/internal/physics"
	"github.com/san-kum/pendsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
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

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID          string             `json:"id"`
	Model       string             `json:"model"`
	Integrator  string             `json:"integrator"`
	Timestamp   time.Time          `json:"timestamp"`
	Dt          float64            `json:"dt"`
	Duration    float64            `json:"duration"`
	Steps       int                `json:"steps"`
	Params      ParamsMetadata     `json:"params"`
	Initial     []float64          `json:"initial"`
	EnergyDrift float64            `json:"energy_drift"`
	Metrics     map[string]float64 `json:"metrics"`
	// Error is set when the run stopped early on a step failure.
	Error string `json:"error,omitempty"`
}

type ParamsMetadata struct {
	OriginX float64 `json:"origin_x"`
	OriginY float64 `json:"origin_y"`
	L1      float64 `json:"l1"`
	L2      float64 `json:"l2,omitempty"`
	M1      float64 `json:"m1"`
	M2      float64 `json:"m2,omitempty"`
	G       float64 `json:"g"`
}

// NewMetadata describes a run of cfg that produced result. runErr may be
// nil.
func NewMetadata(cfg sim.Config, result *sim.Result, runErr error) RunMetadata {
	p := cfg.Params
	meta := RunMetadata{
		Model:      cfg.Variant.String(),
		Integrator: cfg.Integrator.String(),
		Timestamp:  time.Now(),
		Dt:         cfg.Dt,
		Params: ParamsMetadata{
			OriginX: p.Origin.X, OriginY: p.Origin.Y,
			L1: p.L1, M1: p.M1, G: p.G,
		},
		Initial: cfg.Initial,
	}
	if cfg.Variant == physics.Double {
		meta.Params.L2 = p.L2
		meta.Params.M2 = p.M2
	}
	if result != nil {
		meta.Steps = result.StepsTaken
		meta.Duration = float64(result.StepsTaken) * cfg.Dt
		meta.EnergyDrift = result.EnergyDrift
		meta.Metrics = result.Metrics
	}
	if runErr != nil {
		meta.Error = runErr.Error()
	}
	return meta
}

// Save writes meta and result into a new run directory and returns its ID.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", meta.Model, time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	meta.ID = runID

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, statesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, result); err != nil {
		return "", err
	}
	return runID, nil
}

// List returns every readable run, oldest first.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadResult reads back the trajectory of a saved run.
func (s *Store) LoadResult(runID string) (*sim.Result, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadCSV(file)
}

// LoadStates returns the states and times of a saved run.
func (s *Store) LoadStates(runID string) ([][]float64, []float64, error) {
	res, err := s.LoadResult(runID)
	if err != nil {
		return nil, nil, err
	}
	states := make([][]float64, len(res.States))
	for i, x := range res.States {
		states[i] = x
	}
	return states, res.Times, nil
}
