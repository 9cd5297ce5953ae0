// Package images manages the image files owned by tourist destinations.
//
// Writes follow stage-then-commit: uploads are stored and compressed before any
// database row references them, and a failed batch removes every file it produced.
// Old images are removed one by one, leaving the caller to decide which failures matter.
package images

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime/multipart"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/tripdiary/tripadmin/internal/storage"
	"golang.org/x/sync/errgroup"
)

const (
	OriginalsDir  = "originals"
	CompressedDir = "compressed"
)

// urlMarker locates the filename inside a public image URL
const urlMarker = "/" + CompressedDir + "/"

var ErrNotImageURL = errors.New("url does not reference a compressed image")

// Upload is one incoming image file
type Upload struct {
	Filename string
	Open     func() (io.ReadCloser, error)
}

// FromFileHeaders adapts multipart form files
func FromFileHeaders(headers []*multipart.FileHeader) []Upload {
	uploads := make([]Upload, 0, len(headers))
	for _, header := range headers {
		uploads = append(uploads, Upload{
			Filename: header.Filename,
			Open: func() (io.ReadCloser, error) {
				return header.Open()
			},
		})
	}
	return uploads
}

// Batch is a set of staged images: stored and compressed, but not yet referenced by a row
type Batch struct {
	URLs  []string
	files []stagedFile
}

type stagedFile struct {
	original   string
	compressed string
}

type Manager struct {
	storage    storage.Storage
	compressor Compressor
	maxWidth   int
	maxHeight  int
}

func NewManager(storage storage.Storage, compressor Compressor, maxWidth, maxHeight int) *Manager {
	return &Manager{
		storage:    storage,
		compressor: compressor,
		maxWidth:   maxWidth,
		maxHeight:  maxHeight,
	}
}

// Stage stores and compresses every upload concurrently and waits for all of them.
// URLs are returned in upload order. If any upload fails, all files of the
// batch are removed before the error is returned.
func (m *Manager) Stage(uploads []Upload) (*Batch, error) {
	batch := &Batch{
		URLs:  make([]string, len(uploads)),
		files: make([]stagedFile, len(uploads)),
	}

	var g errgroup.Group
	for i, upload := range uploads {
		batch.files[i] = newStagedFile(upload.Filename)

		g.Go(func() error {
			url, err := m.stageOne(upload, batch.files[i])
			if err != nil {
				return fmt.Errorf("failed to stage %q: %w", upload.Filename, err)
			}
			batch.URLs[i] = url
			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		m.Discard(batch)
		return nil, err
	}

	return batch, nil
}

// Discard removes every file of a staged batch. Failures are logged, never returned,
// so cleanup can't mask the error that triggered it.
func (m *Manager) Discard(batch *Batch) {
	if batch == nil {
		return
	}

	var g errgroup.Group
	for _, f := range batch.files {
		for _, p := range []string{f.original, f.compressed} {
			g.Go(func() error {
				err := m.storage.Delete(p)
				if err != nil && !errors.Is(err, fs.ErrNotExist) {
					slog.Warn("failed to remove staged image", "path", p, "error", err)
				}
				return nil
			})
		}
	}
	_ = g.Wait()
}

// Remove deletes a compressed image by filename
func (m *Manager) Remove(filename string) error {
	return m.storage.Delete(path.Join(CompressedDir, filename))
}

// RemoveURLs deletes the compressed files behind public image URLs, concurrently.
// A URL that does not reference a compressed image is logged and skipped.
// Every deletion is attempted; the first deletion failure is returned.
func (m *Manager) RemoveURLs(urls []string) error {
	var g errgroup.Group
	for _, u := range urls {
		name, err := FilenameFromURL(u)
		if err != nil {
			slog.Warn("skipping image with unrecognized url", "url", u, "error", err)
			continue
		}

		g.Go(func() error {
			err := m.Remove(name)
			if err != nil {
				return fmt.Errorf("failed to remove image %q: %w", name, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// FilenameFromURL extracts the compressed image filename from a public image URL
func FilenameFromURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotImageURL, err)
	}

	// u.Path is already percent-decoded
	start := strings.LastIndex(u.Path, urlMarker)
	if start == -1 {
		return "", fmt.Errorf("%w: %q", ErrNotImageURL, raw)
	}

	name := u.Path[start+len(urlMarker):]
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrNotImageURL, raw)
	}

	return name, nil
}

func (m *Manager) stageOne(upload Upload, f stagedFile) (string, error) {
	src, err := upload.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	err = m.storage.Save(f.original, src)
	_ = src.Close()
	if err != nil {
		return "", fmt.Errorf("failed to save original: %w", err)
	}

	original, err := m.storage.Open(f.original)
	if err != nil {
		return "", fmt.Errorf("failed to read original: %w", err)
	}
	var buf bytes.Buffer
	err = m.compressor.Compress(original, &buf, path.Ext(f.compressed), m.maxWidth, m.maxHeight)
	_ = original.Close()
	if err != nil {
		return "", fmt.Errorf("failed to compress: %w", err)
	}

	err = m.storage.Save(f.compressed, bytes.NewReader(buf.Bytes()))
	if err != nil {
		return "", fmt.Errorf("failed to save compressed image: %w", err)
	}

	err = m.storage.Delete(f.original)
	if err != nil {
		return "", fmt.Errorf("failed to remove original: %w", err)
	}

	return m.storage.URL(f.compressed), nil
}

func newStagedFile(filename string) stagedFile {
	base := uuid.New().String()
	ext := strings.ToLower(filepath.Ext(filename))

	// PNG keeps transparency, everything else is served as JPEG
	outExt := ".jpg"
	if ext == ".png" {
		outExt = ".png"
	}

	return stagedFile{
		original:   path.Join(OriginalsDir, base+ext),
		compressed: path.Join(CompressedDir, base+outExt),
	}
}
