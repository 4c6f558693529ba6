// Package kolam defines the data model shared by every stage of the kolam
// extraction pipeline.
//
// A Pattern aggregates the detected dots, the lines joining them, the graph
// built over the dots, and the analysis computed from that graph. A Pattern is
// owned by the single pipeline invocation that created it; nothing in this
// package is safe for concurrent mutation.
//
// # Graph Layout
//
// The Graph is an arena: node i is dot i, positions never change once
// assigned, and edges are an adjacency set keyed by integer node index with a
// side table holding per-edge metadata. Removing an edge never invalidates
// other node or edge identifiers.
//
// # Coordinate System
//
// Coordinates are image pixels with (0,0) at the top-left corner, X increasing
// rightward and Y increasing downward.
package kolam
