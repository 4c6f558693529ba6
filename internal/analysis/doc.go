// Package analysis computes the graph-theoretic and geometric statistics of
// a built kolam pattern and assigns it a coarse regional style label.
//
// Everything here is a pure function of the pattern it is given: analysing
// the same unmodified pattern twice yields identical results.
package analysis
