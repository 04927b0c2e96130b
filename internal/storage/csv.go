package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/san-kum/pendsim/internal/dynamo"
	"github.com/san-kum/pendsim/internal/physics"
	"github.com/san-kum/pendsim/internal/sim"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Header returns the CSV column names for a pendulum with links links.
func Header(links int) []string {
	header := []string{"time"}
	for i := 1; i <= links; i++ {
		header = append(header, fmt.Sprintf("theta%d", i))
	}
	for i := 1; i <= links; i++ {
		header = append(header, fmt.Sprintf("omega%d", i))
	}
	header = append(header, "kinetic", "potential", "total")
	for i := 1; i <= links; i++ {
		header = append(header, fmt.Sprintf("x%d", i), fmt.Sprintf("y%d", i))
	}
	return header
}

// WriteCSV writes one row per recorded sample.
func WriteCSV(w io.Writer, result *sim.Result) error {
	cw := csv.NewWriter(w)
	if result == nil || len(result.States) == 0 {
		cw.Flush()
		return cw.Error()
	}

	links := len(result.States[0]) / 2
	if err := cw.Write(Header(links)); err != nil {
		return err
	}

	for i, x := range result.States {
		row := []string{formatFloat(result.Times[i])}
		for _, v := range x {
			row = append(row, formatFloat(v))
		}
		e := result.Energies[i]
		row = append(row, formatFloat(e.Kinetic), formatFloat(e.Potential), formatFloat(e.Total))
		for _, p := range result.Positions[i] {
			row = append(row, formatFloat(p.X), formatFloat(p.Y))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses what WriteCSV wrote. Rows that do not parse are skipped.
func ReadCSV(r io.Reader) (*sim.Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	result := &sim.Result{Metrics: map[string]float64{}}
	if len(records) < 2 {
		return result, nil
	}

	links := 0
	for _, name := range records[0] {
		if strings.HasPrefix(name, "theta") {
			links++
		}
	}
	if links == 0 || len(records[0]) != len(Header(links)) {
		return nil, fmt.Errorf("storage: unexpected header %v", records[0])
	}

	for _, record := range records[1:] {
		vals := make([]float64, len(record))
		ok := len(record) == len(records[0])
		for j := 0; ok && j < len(record); j++ {
			vals[j], err = strconv.ParseFloat(record[j], 64)
			ok = err == nil
		}
		if !ok {
			continue
		}

		n := 2 * links
		result.Times = append(result.Times, vals[0])
		result.States = append(result.States, dynamo.State(vals[1:1+n]))
		result.Energies = append(result.Energies, physics.Energy{
			Kinetic: vals[1+n], Potential: vals[2+n], Total: vals[3+n],
		})
		pos := make([]physics.Point, links)
		for b := range pos {
			pos[b] = physics.Point{X: vals[4+n+2*b], Y: vals[5+n+2*b]}
		}
		result.Positions = append(result.Positions, pos)
	}
	if len(result.States) > 0 {
		result.StepsTaken = len(result.States) - 1
	}
	return result, nil
}
