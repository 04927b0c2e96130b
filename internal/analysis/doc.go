// Package analysis turns recorded pendulum runs into numbers and pictures.
//
//   - [Period] and [ZeroCrossings]: oscillation period from a time series
//   - [PowerSpectrum] and [DominantFrequency]: spectral content via FFT
//   - [ChaosStudy], [DivergenceSeries], [LyapunovEstimate]: sensitivity to
//     initial conditions
//   - [PhasePortrait] and [PoincareSection]: phase-space projections
//   - [AmplitudeSweep]: period against release amplitude
//
// A positive Lyapunov estimate indicates chaotic motion:
//
//	report, err := analysis.ChaosStudy{Base: cfg, Steps: 3000}.Run(ctx)
//	if err == nil && report.Lyapunov > 0 {
//	    // nearby starts separate exponentially
//	}
package analysis
