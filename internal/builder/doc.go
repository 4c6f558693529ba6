// Package builder connects detected dots into the kolam graph.
//
// Three independent strategies propose edges into one graph, where a
// duplicate proposal is a no-op:
//
//   - traced: sampled foreground pixels of the binary map vote for the pair
//     of dots nearest to them, provided the pixel lies in the corridor of the
//     segment between the two dots. A pair needs at least two votes.
//   - proximity: every pair closer than an adaptive threshold, derived from
//     the mean pairwise distance and tightened as the dot count grows.
//   - layout: lattice neighbours when the dots fit a grid, or angular
//     neighbours on each ring when they form concentric rings.
//
// An optimization pass then prunes hub nodes, whose degree exceeds twice the
// mean degree, down to their closest connections. Every edge change goes
// through kolam.Pattern so the line list always mirrors the graph.
package builder
