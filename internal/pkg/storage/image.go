package storage

import (
	"bytes"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
)

// ImageProcessor re-encodes uploaded pictures into a bounded JPEG.
type ImageProcessor struct {
	MaxWidth  int
	MaxHeight int
	Quality   int
}

func NewImageProcessor() *ImageProcessor {
	return &ImageProcessor{MaxWidth: 1000, MaxHeight: 1000, Quality: 85}
}

// Normalize decodes any format imaging understands, applies EXIF orientation,
// shrinks the picture to fit the bounding box and encodes it as JPEG.
// Pictures already inside the box are not enlarged.
func (p *ImageProcessor) Normalize(content io.Reader) (*bytes.Buffer, error) {
	img, err := imaging.Decode(content, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	b := img.Bounds()
	if b.Dx() > p.MaxWidth || b.Dy() > p.MaxHeight {
		img = imaging.Fit(img, p.MaxWidth, p.MaxHeight, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(p.Quality)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf, nil
}
