// Package imaging provides the raster plumbing for kolam extraction.
//
// This package loads images, normalizes them to a zero-origin NRGBA raster,
// converts them to single-channel intensity, and produces the binary and edge
// representations the dot detector and graph builder consume. It also renders
// detected dots and lines back over an image for inspection.
//
// # Coordinate System
//
// All rasters produced here have bounds starting at (0,0):
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - Regions use inclusive (x1,y1) and exclusive (x2,y2)
//
// # Binary Maps
//
// Binary maps are *image.Gray values holding only 0 (background) and 255
// (foreground ink). Foreground is always the drawn line work, regardless of
// whether the source photograph has dark ink on light ground.
//
// # Preprocessing Variants
//
//   - Preprocess: intensity, Gaussian smoothing, inverted adaptive threshold
//   - PreprocessAdvanced: adds histogram equalization, a Canny edge map, a
//     global Otsu threshold ORed with the adaptive one, and a 3x3
//     open-then-close pass
//
// Both return nil for a nil or zero-size raster and never fail otherwise.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Every other function is a pure
// function of its inputs and may run concurrently on different images.
package imaging
