// Package confidence implements the closed-form confidence interval methods
// used for public health indicators: Wilson score intervals for proportions,
// exact (chi-squared) and Byar's intervals for Poisson counts, Dobson's
// adjustment for directly standardised rates, and Student's t for means.
//
// Every function takes the confidence level (0.95 for a 95% interval). Alpha is
// derived internally and is never part of the API.
package confidence
