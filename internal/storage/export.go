package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/pendsim/internal/physics"
	"github.com/san-kum/pendsim/internal/sim"
)

type ExportData struct {
	RunMetadata
	Times     []float64         `json:"times"`
	States    [][]float64       `json:"states"`
	Energies  []physics.Energy  `json:"energies"`
	Positions [][]physics.Point `json:"positions"`
}

// ExportJSON writes the metadata and full trajectory as one JSON document.
func ExportJSON(w io.Writer, meta RunMetadata, result *sim.Result) error {
	data := ExportData{
		RunMetadata: meta,
		Times:       result.Times,
		States:      make([][]float64, len(result.States)),
		Energies:    result.Energies,
		Positions:   result.Positions,
	}
	for i, s := range result.States {
		data.States[i] = s
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
