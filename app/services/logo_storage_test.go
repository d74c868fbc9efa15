package services

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 30, B: 30, A: 255})
		}
	}
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func TestResizeImageKeepsAspectRatio(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1000, 500))
	out := resizeImage(src, 200)
	assert.Equal(t, 200, out.Bounds().Dx())
	assert.Equal(t, 100, out.Bounds().Dy())

	small := image.NewRGBA(image.Rect(0, 0, 50, 80))
	assert.Same(t, small, resizeImage(small, 200))
}

func TestDiskLogoStorage(t *testing.T) {
	dir := t.TempDir()
	storage := NewDiskLogoStorage(dir, "/static/logos/", 0, 64)
	owner := uuid.New()

	url, err := storage.StoreLogo(context.Background(), owner, bytes.NewReader(pngBytes(t, 300, 150)))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/static/logos/"+owner.String()+"-"))
	assert.True(t, strings.HasSuffix(url, ".jpg"))

	written, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(url, "/static/logos/")))
	require.NoError(t, err)
	img, format, err := image.Decode(bytes.NewReader(written))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 32, img.Bounds().Dy())
}

func TestDiskLogoStorageRejects(t *testing.T) {
	dir := t.TempDir()

	t.Run("not an image", func(t *testing.T) {
		storage := NewDiskLogoStorage(dir, "/logos", 0, 0)
		_, err := storage.StoreLogo(context.Background(), uuid.New(), strings.NewReader("hello, this is text"))
		assert.ErrorIs(t, err, ErrInvalidImage)
	})

	t.Run("too large", func(t *testing.T) {
		storage := NewDiskLogoStorage(dir, "/logos", 16, 0)
		_, err := storage.StoreLogo(context.Background(), uuid.New(), bytes.NewReader(pngBytes(t, 20, 20)))
		assert.ErrorIs(t, err, ErrImageTooLarge)
	})
}
