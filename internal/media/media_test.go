package media

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/chai2010/webp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 8), B: 120, A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("a/b/cat.jpg"))
	assert.True(t, Supported("cat.JPEG"))
	assert.True(t, Supported("cat.png"))
	assert.False(t, Supported("cat.gif"))
	assert.False(t, Supported("cat"))
}

func TestCompressWritesWebP(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "photo.png")
	writePNG(t, src, 32, 16)

	out, err := NewCompressor(60).Compress(src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "photo.webp"), out)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := webp.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dx())
	assert.Equal(t, 16, img.Bounds().Dy())

	_, err = os.Stat(src)
	assert.NoError(t, err, "original must be kept")
}

func TestCompressRejectsUnsupported(t *testing.T) {
	_, err := NewCompressor(0).Compress(filepath.Join(t.TempDir(), "anim.gif"))
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestCompressCorruptImage(t *testing.T) {
	src := filepath.Join(t.TempDir(), "broken.jpg")
	require.NoError(t, os.WriteFile(src, []byte("not an image"), 0o644))
	_, err := NewCompressor(0).Compress(src)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnsupported)
}

func TestNewCompressorClampsQuality(t *testing.T) {
	assert.Equal(t, float32(DefaultQuality), NewCompressor(0).Quality)
	assert.Equal(t, float32(DefaultQuality), NewCompressor(250).Quality)
	assert.Equal(t, float32(40), NewCompressor(40).Quality)
}
