package images

import (
	"fmt"
	"io"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // register the WebP decoder with image.Decode
)

// Compressor shrinks an encoded image so it fits within maxWidth x maxHeight.
// ext selects the output encoding (".jpg" or ".png").
type Compressor interface {
	Compress(src io.Reader, dst io.Writer, ext string, maxWidth, maxHeight int) error
}

// ImagingCompressor is the Compressor used in production.
// Images already within bounds are re-encoded but never enlarged.
type ImagingCompressor struct {
	JPEGQuality int
}

func NewImagingCompressor() *ImagingCompressor {
	return &ImagingCompressor{JPEGQuality: 80}
}

func (c *ImagingCompressor) Compress(src io.Reader, dst io.Writer, ext string, maxWidth, maxHeight int) error {
	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}

	format, err := imaging.FormatFromExtension(ext)
	if err != nil {
		return fmt.Errorf("unsupported output format %q: %w", ext, err)
	}

	img = imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)

	err = imaging.Encode(dst, img, format, imaging.JPEGQuality(c.JPEGQuality))
	if err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}

	return nil
}
