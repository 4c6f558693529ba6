// Package layout classifies how the dots of a kolam are arranged.
//
// GridPattern is the strict classifier used for the reported grid_pattern:
// it only recognizes lattices whose unique coordinates are exactly evenly
// spaced. FitGrid is the tolerant variant for hand-drawn and photographed
// input: it clusters each axis, scores the clustering with the silhouette
// coefficient, and penalizes uneven spacing with the coefficient of variation.
// DetectRadial recognizes concentric rings of dots around the centroid.
package layout
