package service

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/tripdiary/tripadmin/internal/apperror"
	"github.com/tripdiary/tripadmin/internal/db"
	"github.com/tripdiary/tripadmin/internal/images"
	"github.com/tripdiary/tripadmin/internal/markdown"
	"github.com/tripdiary/tripadmin/internal/model"
	"github.com/tripdiary/tripadmin/internal/repository"
	"github.com/tripdiary/tripadmin/internal/storage"
)

type testEnv struct {
	db          *sqlx.DB
	storageRoot string
	images      *images.Manager

	users        repository.UserRepository
	plans        repository.PlanRepository
	diaries      repository.DiaryRepository
	comments     repository.CommentRepository
	destinations repository.DestinationRepository

	auth           *AuthService
	userService    *UserService
	planService    *PlanService
	diaryService   *DiaryService
	commentService *CommentService
	destService    *DestinationService
}

// newTestEnv migrates a fresh SQLite file database and wires every service against it
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	conn, err := db.Init("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("db.Init: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	err = db.RunMigrations(conn.DB, "sqlite")
	if err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}

	root := t.TempDir()
	store, err := storage.NewLocalStorage(root, "http://localhost:8090/images")
	if err != nil {
		t.Fatal(err)
	}

	env := &testEnv{
		db:           conn,
		storageRoot:  root,
		users:        repository.NewUserRepository(conn),
		plans:        repository.NewPlanRepository(conn),
		diaries:      repository.NewDiaryRepository(conn),
		comments:     repository.NewCommentRepository(conn),
		destinations: repository.NewDestinationRepository(conn),
	}

	env.images = images.NewManager(store, images.NewImagingCompressor(), 600, 600)

	env.auth = NewAuthService(env.users, "test-secret-that-is-long-enough-for-hs256", time.Hour)
	env.userService = NewUserService(env.users, env.auth)
	env.planService = NewPlanService(env.plans)
	env.diaryService = NewDiaryService(env.diaries, env.plans)
	env.commentService = NewCommentService(env.comments, env.diaries)
	env.destService = NewDestinationService(env.destinations, env.images, markdown.NewParser())

	return env
}

func (e *testEnv) createPlan(t *testing.T, username, destination string) *model.TravelPlan {
	t.Helper()
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	plan, err := e.planService.CreatePlan(&model.TravelPlan{
		Username:    username,
		StartDate:   start,
		EndDate:     start.AddDate(0, 0, 3),
		Destination: destination,
	})
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	return plan
}

func (e *testEnv) createDiary(t *testing.T, username string, planID int64) *model.Diary {
	t.Helper()
	diary, err := e.diaryService.Create(&model.Diary{Title: "Day one", Content: "Arrived."}, username, planID)
	if err != nil {
		t.Fatalf("Create diary: %v", err)
	}
	return diary
}

func (e *testEnv) countFiles(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(e.storageRoot, dir))
	if errors.Is(err, os.ErrNotExist) {
		return 0
	}
	if err != nil {
		t.Fatal(err)
	}
	return len(entries)
}

func (e *testEnv) fileExists(t *testing.T, url string) bool {
	t.Helper()
	name, err := images.FilenameFromURL(url)
	if err != nil {
		t.Fatalf("FilenameFromURL(%q): %v", url, err)
	}
	_, err = os.Stat(filepath.Join(e.storageRoot, images.CompressedDir, name))
	return err == nil
}

func pngUpload(t *testing.T, name string, w, h int) images.Upload {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{G: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return rawUpload(name, buf.Bytes())
}

func rawUpload(name string, data []byte) images.Upload {
	return images.Upload{
		Filename: name,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

func assertKind(t *testing.T, err error, kind apperror.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if got := apperror.KindOf(err); got != kind {
		t.Fatalf("error kind = %s, want %s (err: %v)", got, kind, err)
	}
}
