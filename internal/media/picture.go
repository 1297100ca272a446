package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/disintegration/imaging"
)

// Default picture bounds and JPEG quality
const (
	DefaultMaxSize = 800
	DefaultQuality = 85
)

// ErrInvalidImage is returned when an upload cannot be decoded as an image
var ErrInvalidImage = errors.New("upload a valid image")

// Upload is a picture submitted with a dish
type Upload struct {
	Name    string
	Content io.Reader
}

// Normalizer turns an uploaded picture into the stored encoding
type Normalizer interface {
	Normalize(src io.Reader) ([]byte, error)
}

// JPEGNormalizer fits pictures inside a MaxSize square, keeping the aspect
// ratio, and re-encodes them as JPEG. Transparent areas become white.
type JPEGNormalizer struct {
	MaxSize int
	Quality int
}

// NewJPEGNormalizer falls back to the defaults for non-positive values
func NewJPEGNormalizer(maxSize, quality int) JPEGNormalizer {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	return JPEGNormalizer{MaxSize: maxSize, Quality: quality}
}

func (n JPEGNormalizer) Normalize(src io.Reader) ([]byte, error) {
	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	fitted := imaging.Fit(img, n.MaxSize, n.MaxSize, imaging.Lanczos)
	bounds := fitted.Bounds()
	rgb := imaging.Overlay(imaging.New(bounds.Dx(), bounds.Dy(), color.White), fitted, image.Pt(0, 0), 1.0)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, rgb, imaging.JPEG, imaging.JPEGQuality(n.Quality)); err != nil {
		return nil, fmt.Errorf("encoding picture: %w", err)
	}

	log.WithFields(map[string]interface{}{
		"width":   bounds.Dx(),
		"height":  bounds.Dy(),
		"quality": n.Quality,
		"bytes":   buf.Len(),
	}).Debug("Picture normalized")
	return buf.Bytes(), nil
}
