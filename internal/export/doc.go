// Package export writes pendulum trails and canvas snapshots as SVG.
package export
