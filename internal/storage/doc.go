// Package storage persists pendulum runs as a directory holding
// metadata.json and states.csv, and exports trajectories as JSON or CSV.
package storage
