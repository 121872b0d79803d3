// Package funnel computes funnel plot control limits and classifies records
// against them.
//
// Ratio and rate limits invert the cumulative Poisson distribution by bisection
// (PoissonFunnel). Proportion limits solve the Wilson quadratic in closed form
// (SigmaAdjustment). Limits builds the 100 point reference curve drawn behind
// the data points, Significance labels each record and Points derives the
// chart coordinates of rate records.
package funnel
