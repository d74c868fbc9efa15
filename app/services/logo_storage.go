package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

var (
	ErrInvalidImage  = errors.New("file is not a supported image")
	ErrImageTooLarge = errors.New("image exceeds the upload limit")
)

const (
	defaultLogoMaxBytes = 5 << 20
	defaultLogoMaxDim   = 512
)

// LogoStorage persists company logos and returns their public URL
type LogoStorage interface {
	StoreLogo(ctx context.Context, ownerID uuid.UUID, r io.Reader) (string, error)
}

// DiskLogoStorage writes normalized JPEG logos under a directory served at publicPrefix
type DiskLogoStorage struct {
	dir          string
	publicPrefix string
	maxBytes     int64
	maxDim       int
}

func NewDiskLogoStorage(dir, publicPrefix string, maxBytes int64, maxDim int) *DiskLogoStorage {
	if maxBytes <= 0 {
		maxBytes = defaultLogoMaxBytes
	}
	if maxDim <= 0 {
		maxDim = defaultLogoMaxDim
	}
	return &DiskLogoStorage{
		dir:          dir,
		publicPrefix: strings.TrimRight(publicPrefix, "/"),
		maxBytes:     maxBytes,
		maxDim:       maxDim,
	}
}

func (s *DiskLogoStorage) StoreLogo(ctx context.Context, ownerID uuid.UUID, r io.Reader) (string, error) {
	raw, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", err
	}
	if int64(len(raw)) > s.maxBytes {
		return "", ErrImageTooLarge
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// webp is sniffed as octet-stream by some runtimes, the decoder decides
	detected := http.DetectContentType(raw)
	if detected != "application/octet-stream" && !strings.HasPrefix(detected, "image/") {
		return "", ErrInvalidImage
	}

	encoded, err := NormalizeLogo(bytes.NewReader(raw), s.maxDim)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}
	filename := fmt.Sprintf("%s-%s.jpg", ownerID.String(), uuid.New().String())
	if err := os.WriteFile(filepath.Join(s.dir, filename), encoded, 0o644); err != nil {
		return "", err
	}

	return s.publicPrefix + "/" + filename, nil
}

// NormalizeLogo decodes any supported image, downsizes it to maxDim and re-encodes it as JPEG
func NormalizeLogo(r io.Reader, maxDim int) ([]byte, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, ErrInvalidImage
	}

	out := flatten(resizeImage(img, maxDim))
	buf := &bytes.Buffer{}
	if err := jpeg.Encode(buf, out, &jpeg.Options{Quality: 85}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func resizeImage(src image.Image, maxDim int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return src
	}

	var nw, nh int
	if w >= h {
		nw = maxDim
		nh = int(float64(h) * float64(maxDim) / float64(w))
	} else {
		nh = maxDim
		nw = int(float64(w) * float64(maxDim) / float64(h))
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	imagedraw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, imagedraw.Src)
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)
	return dst
}

// flatten paints transparent logos onto white since JPEG has no alpha
func flatten(src image.Image) image.Image {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	imagedraw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, imagedraw.Src)
	imagedraw.Draw(dst, dst.Bounds(), src, b.Min, imagedraw.Over)
	return dst
}
