package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/tripdiary/tripadmin/internal/apperror"
	"github.com/tripdiary/tripadmin/internal/images"
	"github.com/tripdiary/tripadmin/internal/markdown"
	"github.com/tripdiary/tripadmin/internal/model"
	"github.com/tripdiary/tripadmin/internal/repository"
)

var gyeongbokgung = DestinationInput{
	NameEn:       "Gyeongbokgung Palace",
	NameKo:       "경복궁",
	Introduction: "The **main** royal palace of the Joseon dynasty.",
	Latitude:     37.5796,
	Longitude:    126.9770,
}

func (e *testEnv) addDestination(t *testing.T, uploads ...images.Upload) *model.Destination {
	t.Helper()
	destination, err := e.destService.Add(gyeongbokgung, uploads)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	return destination
}

func TestDestinationAddStoresEveryImage(t *testing.T) {
	env := newTestEnv(t)

	destination := env.addDestination(t, pngUpload(t, "front.png", 800, 600), pngUpload(t, "gate.png", 20, 20))
	if len(destination.Images) != 2 {
		t.Fatalf("got %d images, want 2", len(destination.Images))
	}

	stored, err := env.destinations.ByID(destination.ID)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(stored.Images, " ") != strings.Join(destination.Images, " ") {
		t.Errorf("stored images %v, want %v", stored.Images, destination.Images)
	}
	for _, url := range stored.Images {
		if !env.fileExists(t, url) {
			t.Errorf("missing file for %s", url)
		}
	}
	if n := env.countFiles(t, images.OriginalsDir); n != 0 {
		t.Errorf("%d originals left behind", n)
	}
}

func TestDestinationAddFailureLeavesNothing(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.destService.Add(gyeongbokgung, []images.Upload{
		pngUpload(t, "front.png", 50, 50),
		rawUpload("broken.jpg", []byte("not a jpeg")),
	})
	assertKind(t, err, apperror.KindUnexpected)

	all, err := env.destService.Destinations()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 0 {
		t.Errorf("%d destinations persisted, want 0", len(all))
	}
	if n := env.countFiles(t, images.CompressedDir); n != 0 {
		t.Errorf("%d compressed files left behind", n)
	}
	if n := env.countFiles(t, images.OriginalsDir); n != 0 {
		t.Errorf("%d originals left behind", n)
	}
}

func TestDestinationAddValidation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.destService.Add(gyeongbokgung, nil)
	assertKind(t, err, apperror.KindInvalidInput)

	noName := gyeongbokgung
	noName.NameKo = " "
	_, err = env.destService.Add(noName, []images.Upload{pngUpload(t, "a.png", 5, 5)})
	assertKind(t, err, apperror.KindInvalidInput)

	if n := env.countFiles(t, images.CompressedDir); n != 0 {
		t.Errorf("%d files written for rejected input", n)
	}
}

func TestDestinationUpdateReplacesImages(t *testing.T) {
	env := newTestEnv(t)
	destination := env.addDestination(t, pngUpload(t, "a.png", 30, 30), pngUpload(t, "b.png", 30, 30))

	input := gyeongbokgung
	input.NameEn = "Gyeongbok Palace"
	input.Latitude = 37.58
	updated, err := env.destService.Update(destination.ID, input, []images.Upload{pngUpload(t, "c.png", 30, 30)})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	for _, url := range destination.Images {
		if env.fileExists(t, url) {
			t.Errorf("old image %s was not removed", url)
		}
	}
	if len(updated.Images) != 1 || !env.fileExists(t, updated.Images[0]) {
		t.Fatalf("updated images = %v", updated.Images)
	}
	if updated.NameEn != "Gyeongbok Palace" || updated.Latitude != 37.58 {
		t.Errorf("fields not updated: %+v", updated)
	}
}

func TestDestinationUpdateReadsLegacyImageValues(t *testing.T) {
	tests := []struct {
		name   string
		encode func(urls []string) string
	}{
		{"comma joined", func(urls []string) string { return strings.Join(urls, ",") }},
		{"bare url", func(urls []string) string { return urls[0] }},
		{"json array", func(urls []string) string { return model.ImageList(urls).Encode() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			destination := env.addDestination(t, pngUpload(t, "a.png", 10, 10), pngUpload(t, "b.png", 10, 10))

			urls := destination.Images
			if tt.name == "bare url" {
				urls = urls[:1]
			}
			_, err := env.db.Exec(`UPDATE travel_destination SET image = $1 WHERE id = $2`, tt.encode(urls), destination.ID)
			if err != nil {
				t.Fatal(err)
			}

			_, err = env.destService.Update(destination.ID, gyeongbokgung, []images.Upload{pngUpload(t, "c.png", 10, 10)})
			if err != nil {
				t.Fatalf("Update: %v", err)
			}
			for _, url := range urls {
				if env.fileExists(t, url) {
					t.Errorf("old image %s was not removed", url)
				}
			}
		})
	}
}

func TestDestinationUpdateSkipsUnparseableURL(t *testing.T) {
	env := newTestEnv(t)
	destination := env.addDestination(t, pngUpload(t, "a.png", 10, 10))

	mixed := model.ImageList{"https://elsewhere.example.com/photo.jpg", destination.Images[0]}
	_, err := env.db.Exec(`UPDATE travel_destination SET image = $1 WHERE id = $2`, mixed, destination.ID)
	if err != nil {
		t.Fatal(err)
	}

	_, err = env.destService.Update(destination.ID, gyeongbokgung, []images.Upload{pngUpload(t, "b.png", 10, 10)})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if env.fileExists(t, destination.Images[0]) {
		t.Error("the recognizable image was not removed")
	}
}

func TestDestinationUpdateFailsWhenOldImageCannotBeDeleted(t *testing.T) {
	env := newTestEnv(t)
	destination := env.addDestination(t, pngUpload(t, "a.png", 10, 10))

	missing := model.ImageList{"http://localhost:8090/images/compressed/already-gone.jpg"}
	_, err := env.db.Exec(`UPDATE travel_destination SET image = $1 WHERE id = $2`, missing, destination.ID)
	if err != nil {
		t.Fatal(err)
	}

	_, err = env.destService.Update(destination.ID, gyeongbokgung, []images.Upload{pngUpload(t, "b.png", 10, 10)})
	assertKind(t, err, apperror.KindUnexpected)

	stored, err := env.destinations.ByID(destination.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored.Images) != 1 || stored.Images[0] != missing[0] {
		t.Errorf("row changed after failed update: %v", stored.Images)
	}
	// Only the file from Add remains; nothing new was staged
	if n := env.countFiles(t, images.CompressedDir); n != 1 {
		t.Errorf("%d compressed files, want 1", n)
	}
}

func TestDestinationUpdateRequiresImagesBeforeDeleting(t *testing.T) {
	env := newTestEnv(t)
	destination := env.addDestination(t, pngUpload(t, "a.png", 10, 10))

	_, err := env.destService.Update(destination.ID, gyeongbokgung, nil)
	assertKind(t, err, apperror.KindInvalidInput)

	if !env.fileExists(t, destination.Images[0]) {
		t.Error("existing image was removed by a rejected update")
	}

	_, err = env.destService.Update(destination.ID+100, gyeongbokgung, []images.Upload{pngUpload(t, "b.png", 10, 10)})
	assertKind(t, err, apperror.KindNotFound)
}

// failingDestinationRepository rejects every write after the images are staged
type failingDestinationRepository struct {
	repository.DestinationRepository
}

var errWriteRejected = apperror.Unexpected("write rejected", nil)

func (failingDestinationRepository) Create(*model.Destination) error { return errWriteRejected }
func (failingDestinationRepository) Update(*model.Destination) error { return errWriteRejected }

func (e *testEnv) assertNoStagedFiles(t *testing.T) {
	t.Helper()
	if n := e.countFiles(t, images.CompressedDir); n != 0 {
		t.Errorf("%d compressed files left behind", n)
	}
	if n := e.countFiles(t, images.OriginalsDir); n != 0 {
		t.Errorf("%d originals left behind", n)
	}
}

func TestDestinationUpdateStagingFailureLeavesNoNewFiles(t *testing.T) {
	env := newTestEnv(t)
	destination := env.addDestination(t, pngUpload(t, "a.png", 10, 10))

	_, err := env.destService.Update(destination.ID, gyeongbokgung, []images.Upload{
		pngUpload(t, "b.png", 40, 40),
		rawUpload("broken.jpg", []byte("not a jpeg")),
	})
	assertKind(t, err, apperror.KindUnexpected)

	// The old image was removed before staging; the new valid one was discarded
	if env.fileExists(t, destination.Images[0]) {
		t.Error("old image still present")
	}
	env.assertNoStagedFiles(t)
}

func TestDestinationWriteFailureDiscardsBatch(t *testing.T) {
	env := newTestEnv(t)
	destination := env.addDestination(t, pngUpload(t, "a.png", 10, 10))

	failing := NewDestinationService(failingDestinationRepository{env.destinations}, env.images, markdown.NewParser())

	_, err := failing.Update(destination.ID, gyeongbokgung, []images.Upload{
		pngUpload(t, "b.png", 40, 40),
		pngUpload(t, "c.png", 20, 20),
	})
	if !errors.Is(err, errWriteRejected) {
		t.Fatalf("Update = %v, want the repository error", err)
	}
	env.assertNoStagedFiles(t)

	_, err = failing.Add(gyeongbokgung, []images.Upload{pngUpload(t, "d.png", 40, 40)})
	if !errors.Is(err, errWriteRejected) {
		t.Fatalf("Add = %v, want the repository error", err)
	}
	env.assertNoStagedFiles(t)

	all, err := env.destinations.Destinations()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Errorf("%d destinations stored, want 1", len(all))
	}
}

func TestDestinationDelete(t *testing.T) {
	env := newTestEnv(t)
	destination := env.addDestination(t, pngUpload(t, "a.png", 10, 10), pngUpload(t, "b.png", 10, 10))

	deleted, err := env.destService.Delete(destination.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if deleted["nameEn"] != gyeongbokgung.NameEn {
		t.Errorf("deleted row = %v", deleted)
	}
	if imgs, ok := deleted["image"].(model.ImageList); !ok || len(imgs) != 2 {
		t.Errorf("deleted image value = %#v", deleted["image"])
	}
	if n := env.countFiles(t, images.CompressedDir); n != 0 {
		t.Errorf("%d compressed files left behind", n)
	}

	_, err = env.destService.Delete(destination.ID)
	assertKind(t, err, apperror.KindNotFound)

	_, err = env.destService.Delete(0)
	assertKind(t, err, apperror.KindNotFound)
}

func TestDestinationDeleteToleratesMissingFiles(t *testing.T) {
	env := newTestEnv(t)
	destination := env.addDestination(t, pngUpload(t, "a.png", 10, 10))

	name, _ := images.FilenameFromURL(destination.Images[0])
	if err := env.destService.images.Remove(name); err != nil {
		t.Fatal(err)
	}

	if _, err := env.destService.Delete(destination.ID); err != nil {
		t.Fatalf("Delete with a missing file: %v", err)
	}
}

func TestDestinationRendersIntroduction(t *testing.T) {
	env := newTestEnv(t)
	destination := env.addDestination(t, pngUpload(t, "a.png", 10, 10))

	loaded, err := env.destService.Destination(destination.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(loaded.IntroductionHTML, "<strong>main</strong>") {
		t.Errorf("IntroductionHTML = %q", loaded.IntroductionHTML)
	}

	_, err = env.destService.Destination(destination.ID + 100)
	assertKind(t, err, apperror.KindNotFound)
}
