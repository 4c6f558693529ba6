package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"
)

// ImageCache provides thread-safe caching of decoded images keyed by path.
//
// Once an image is loaded, subsequent Load() calls for the same path return
// the cached raster without disk I/O. Cached rasters are shared and must be
// treated as read-only; the pipeline never mutates its input.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates an empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load retrieves an image from the cache or decodes it from disk.
//
// Supported formats are PNG, JPEG, and GIF. The cache key is the exact path
// string, so relative and absolute paths to one file are cached separately.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// LoadRegion loads an image and crops it to the rectangle (x1,y1)-(x2,y2).
// A nil region returns the whole image. The result always has a zero origin.
func (c *ImageCache) LoadRegion(path string, region *Region) (image.Image, error) {
	img, err := c.Load(path)
	if err != nil {
		return nil, err
	}
	if region != nil {
		return Crop(img, *region)
	}
	if n := Normalize(img); n != nil {
		return n, nil
	}
	return img, nil
}

// Cached reports whether path is held in the cache.
func (c *ImageCache) Cached(path string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.images[path]
	return ok
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Evict removes a specific image from the cache by its path.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Region is a rectangle with inclusive (X1,Y1) and exclusive (X2,Y2) corners.
type Region struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Crop extracts a region from img as a zero-origin NRGBA raster.
func Crop(img image.Image, r Region) (*image.NRGBA, error) {
	bounds := img.Bounds()
	if r.X1 < bounds.Min.X || r.Y1 < bounds.Min.Y || r.X2 > bounds.Max.X || r.Y2 > bounds.Max.Y {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			r.X1, r.Y1, r.X2, r.Y2, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}
	if r.X1 >= r.X2 || r.Y1 >= r.Y2 {
		return nil, fmt.Errorf("invalid crop region: x1 must be < x2, y1 must be < y2")
	}
	return imaging.Crop(img, image.Rect(r.X1, r.Y1, r.X2, r.Y2)), nil
}

// Normalize returns img as a zero-origin NRGBA raster. A nil or empty image
// yields nil.
func Normalize(img image.Image) *image.NRGBA {
	if IsEmpty(img) {
		return nil
	}
	if n, ok := img.(*image.NRGBA); ok && n.Bounds().Min == (image.Point{}) {
		return n
	}
	return imaging.Clone(img)
}

// IsEmpty reports whether img is nil or has no pixels.
func IsEmpty(img image.Image) bool {
	return img == nil || img.Bounds().Empty()
}

// ImageInfo contains metadata about a loaded image file.
type ImageInfo struct {
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	Format        string `json:"format"`
	HasAlpha      bool   `json:"has_alpha"`
	FileSizeBytes int64  `json:"file_size_bytes"`
}

// LoadImageInfo loads an image into the cache and reports its metadata.
// The format is derived from the file extension.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := "unknown"
	switch filepath.Ext(path) {
	case ".png":
		format = "png"
	case ".jpg", ".jpeg":
		format = "jpeg"
	case ".gif":
		format = "gif"
	}

	hasAlpha := false
	switch img.(type) {
	case *image.RGBA, *image.NRGBA, *image.RGBA64, *image.NRGBA64:
		hasAlpha = true
	}

	bounds := img.Bounds()
	return &ImageInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        format,
		HasAlpha:      hasAlpha,
		FileSizeBytes: stat.Size(),
	}, nil
}

// DimensionsResult contains the width and height of an image.
type DimensionsResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GetDimensions returns the dimensions of an image file.
func GetDimensions(cache *ImageCache, path string) (*DimensionsResult, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	return &DimensionsResult{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}
