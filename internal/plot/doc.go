// Package plot renders pendulum runs to PNG files with gonum/plot.
package plot
