// Package media compresses uploaded subject photos.
package media

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chai2010/webp"
)

// ErrUnsupported is returned for photos that are not JPEG or PNG.
var ErrUnsupported = errors.New("media: unsupported image type")

// DefaultQuality is the WebP quality used when none is configured.
const DefaultQuality = 75

// Supported reports whether path has a photo extension the compressor accepts.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

// Compressor re-encodes photos as lossy WebP next to the original file.
type Compressor struct {
	Quality float32
}

func NewCompressor(quality float32) *Compressor {
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	return &Compressor{Quality: quality}
}

// Compress writes path's image as <name>.webp in the same directory and
// returns the new path. The original file is left in place.
func (c *Compressor) Compress(path string) (string, error) {
	if !Supported(path) {
		return "", fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
	}
	start := time.Now()
	in, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open photo: %w", err)
	}
	defer in.Close()

	img, _, err := image.Decode(in)
	if err != nil {
		return "", fmt.Errorf("decode photo: %w", err)
	}

	outPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".webp"
	out, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("create webp file: %w", err)
	}
	if err := webp.Encode(out, img, &webp.Options{Quality: c.Quality}); err != nil {
		out.Close()
		os.Remove(outPath)
		return "", fmt.Errorf("encode webp: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close webp file: %w", err)
	}
	b := img.Bounds()
	slog.Info("media: photo compressed", "path", outPath, "width", b.Dx(), "height", b.Dy(), "duration", time.Since(start))
	return outPath, nil
}
