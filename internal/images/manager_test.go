package images

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tripdiary/tripadmin/internal/storage"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func upload(name string, data []byte) Upload {
	return Upload{
		Filename: name,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()
	root := t.TempDir()
	s, err := storage.NewLocalStorage(root, "http://localhost:8090/images")
	if err != nil {
		t.Fatal(err)
	}
	return NewManager(s, NewImagingCompressor(), 600, 600), root
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return 0
	}
	if err != nil {
		t.Fatal(err)
	}
	return len(entries)
}

func TestStageCompressesAndKeepsOrder(t *testing.T) {
	m, root := newTestManager(t)

	batch, err := m.Stage([]Upload{
		upload("wide.png", pngBytes(t, 1200, 800)),
		upload("small.png", pngBytes(t, 100, 50)),
	})
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if len(batch.URLs) != 2 {
		t.Fatalf("got %d urls, want 2", len(batch.URLs))
	}

	wantSizes := []image.Point{{600, 400}, {100, 50}}
	for i, u := range batch.URLs {
		if !strings.HasPrefix(u, "http://localhost:8090/images/compressed/") || !strings.HasSuffix(u, ".png") {
			t.Fatalf("unexpected url %q", u)
		}

		name, err := FilenameFromURL(u)
		if err != nil {
			t.Fatalf("FilenameFromURL(%q): %v", u, err)
		}
		f, err := os.Open(filepath.Join(root, CompressedDir, name))
		if err != nil {
			t.Fatalf("compressed file missing: %v", err)
		}
		cfg, err := png.DecodeConfig(f)
		f.Close()
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Width != wantSizes[i].X || cfg.Height != wantSizes[i].Y {
			t.Errorf("image %d is %dx%d, want %v", i, cfg.Width, cfg.Height, wantSizes[i])
		}
	}

	if n := countFiles(t, filepath.Join(root, OriginalsDir)); n != 0 {
		t.Errorf("%d originals left behind", n)
	}
}

func TestStageFailureRemovesEveryFile(t *testing.T) {
	m, root := newTestManager(t)

	_, err := m.Stage([]Upload{
		upload("good.png", pngBytes(t, 50, 50)),
		upload("broken.jpg", []byte("definitely not an image")),
	})
	if err == nil {
		t.Fatal("expected an error for the undecodable upload")
	}

	if n := countFiles(t, filepath.Join(root, CompressedDir)); n != 0 {
		t.Errorf("%d compressed files left behind", n)
	}
	if n := countFiles(t, filepath.Join(root, OriginalsDir)); n != 0 {
		t.Errorf("%d originals left behind", n)
	}
}

func TestDiscardRemovesBatch(t *testing.T) {
	m, root := newTestManager(t)

	batch, err := m.Stage([]Upload{upload("a.png", pngBytes(t, 10, 10))})
	if err != nil {
		t.Fatal(err)
	}
	m.Discard(batch)

	if n := countFiles(t, filepath.Join(root, CompressedDir)); n != 0 {
		t.Errorf("%d compressed files left behind", n)
	}
}

func TestRemove(t *testing.T) {
	m, _ := newTestManager(t)

	batch, err := m.Stage([]Upload{upload("a.png", pngBytes(t, 10, 10))})
	if err != nil {
		t.Fatal(err)
	}
	name, _ := FilenameFromURL(batch.URLs[0])

	if err := m.Remove(name); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := m.Remove(name); err == nil {
		t.Fatal("removing a missing file should fail")
	}
}

func TestFilenameFromURL(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{url: "http://localhost:8090/images/compressed/a.jpg", want: "a.jpg"},
		{url: "http://localhost:8090/images/compressed/seoul%20tower.jpg", want: "seoul tower.jpg"},
		{url: "https://cdn.example.com/bucket/compressed/b.png?v=2", want: "b.png"},
		{url: "/images/compressed/c.jpg", want: "c.jpg"},
		{url: "http://localhost:8090/images/originals/a.jpg", wantErr: true},
		{url: "http://localhost:8090/images/compressed/", wantErr: true},
		{url: "http://localhost:8090/images/compressed/..%2Fsecret", wantErr: true},
		{url: "not a url at all", wantErr: true},
		{url: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := FilenameFromURL(tt.url)
			if tt.wantErr {
				if !errors.Is(err, ErrNotImageURL) {
					t.Fatalf("err = %v, want ErrNotImageURL", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRemoveURLsSkipsUnrecognized(t *testing.T) {
	m, root := newTestManager(t)

	batch, err := m.Stage([]Upload{
		upload("a.png", pngBytes(t, 10, 10)),
		upload("b.png", pngBytes(t, 10, 10)),
	})
	if err != nil {
		t.Fatal(err)
	}

	urls := []string{batch.URLs[0], "http://elsewhere.example.com/photo.jpg", batch.URLs[1]}
	if err := m.RemoveURLs(urls); err != nil {
		t.Fatalf("RemoveURLs: %v", err)
	}
	if n := countFiles(t, filepath.Join(root, CompressedDir)); n != 0 {
		t.Errorf("%d compressed files left behind", n)
	}
}

func TestRemoveURLsReportsMissingFile(t *testing.T) {
	m, _ := newTestManager(t)

	err := m.RemoveURLs([]string{"http://localhost:8090/images/compressed/gone.jpg"})
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
