package validation

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

// FileConstraints restricts an upload by sniffed content type, extension and size
type FileConstraints struct {
	AllowedMimeTypes  map[string]bool
	AllowedExtensions map[string]bool
	MaxSize           int64
}

// ImageConstraints admits the formats the image compressor can decode
var ImageConstraints = FileConstraints{
	AllowedMimeTypes: map[string]bool{
		"image/jpeg": true,
		"image/png":  true,
		"image/gif":  true,
		"image/webp": true,
	},
	AllowedExtensions: map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".gif":  true,
		".webp": true,
	},
	MaxSize: 5 << 20,
}

// ValidateFile checks an uploaded file against c.
// The content type is sniffed from the first 512 bytes, so a renamed text file fails even with an image extension.
func ValidateFile(header *multipart.FileHeader, c FileConstraints) error {
	if header.Size > c.MaxSize {
		return fmt.Errorf("file too large: maximum size is %d MB", c.MaxSize>>20)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !c.AllowedExtensions[ext] {
		return fmt.Errorf("invalid file extension %q", ext)
	}

	detected, err := sniff(header)
	if err != nil {
		return err
	}
	if !c.AllowedMimeTypes[detected] {
		return fmt.Errorf("invalid file type (detected: %s)", detected)
	}

	return nil
}

func sniff(header *multipart.FileHeader) (string, error) {
	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	buf := make([]byte, 512)
	n, err := io.ReadFull(file, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	return http.DetectContentType(buf[:n]), nil
}
