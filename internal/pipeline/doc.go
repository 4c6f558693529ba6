// Package pipeline runs the full kolam extraction: preprocessing, dot
// detection, graph construction, analysis and region classification.
//
// A Pipeline holds only immutable parameters. Every Run builds its own
// working set and Pattern, so one Pipeline may serve concurrent callers.
package pipeline
