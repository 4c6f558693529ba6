// Package detection locates the dots (pulli) of a kolam drawing.
//
// Detection is a cascade of independent strategies behind the Strategy
// interface. Each strategy sees the preprocessed Scene and the candidates
// accepted so far, and decides from the accepted count whether to engage:
//
//  1. hough: gradient-directed circular voting over the Canny edge map,
//     verified against local intensity statistics
//  2. contour: flood-filled components of the binary map, filtered by area,
//     circularity and aspect ratio (only if fewer than 5 candidates)
//  3. blob: thresholded components of a stroke-suppressed intensity map at
//     several scales (only if fewer than 5 candidates)
//  4. template: normalized cross-correlation with filled-disc templates
//     (only if fewer than 3 candidates)
//  5. cluster: density-based regrouping that keeps one representative per
//     cluster (only if more than 10 candidates)
//
// New candidates are merged into the accepted set unless they duplicate an
// existing one: two candidates are the same dot when their centres are closer
// than a radius-scaled threshold and their radii differ by less than half the
// larger radius. The cluster strategy replaces the set instead of merging.
//
// # Validation
//
// The union of accepted candidates is validated before it becomes a dot list.
// A candidate is rejected when its centre lies within its own radius of the
// image border, when its centre is brighter than the surrounding 11x11 mean,
// when its radius falls outside [2,25], or when the foreground inside its disc
// deviates from the expected circular area by more than 50%. At most 200 dots
// are returned, ordered top-to-bottom then left-to-right.
//
// # Coordinate System
//
// All coordinates are pixels of the zero-origin intensity map, with (0,0) at
// the top-left corner.
package detection
