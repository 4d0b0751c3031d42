package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xeerfiles/filetools/internal/config"
	"github.com/xeerfiles/filetools/internal/domain"
	"github.com/xeerfiles/filetools/internal/processor"
	"github.com/xeerfiles/filetools/internal/repository"
	"github.com/xeerfiles/filetools/internal/storage"
)

type testEnv struct {
	svc   *JobService
	repo  *repository.JobRepository
	store *storage.MemoryStorage
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	// A temp file rather than :memory:; with pooling every new pool
	// connection would otherwise see its own empty in-memory database.
	db, err := repository.InitDB(&config.DatabaseConfig{
		Driver:      "sqlite",
		Path:        filepath.Join(t.TempDir(), "jobs.db"),
		AutoMigrate: true,
	})
	if err != nil {
		t.Fatalf("failed to init test database: %v", err)
	}
	repo := repository.NewJobRepository(db)

	store := storage.NewMemoryStorage()
	ctx := context.Background()
	for _, bucket := range []string{"uploads", "results"} {
		if err := store.EnsureBucket(ctx, bucket); err != nil {
			t.Fatalf("failed to create bucket: %v", err)
		}
	}

	svc := NewJobService(JobServiceConfig{
		Repo:          repo,
		Store:         store,
		UploadsBucket: "uploads",
		ResultsBucket: "results",
		SignedURLTTL:  time.Hour,
	})

	return &testEnv{svc: svc, repo: repo, store: store}
}

func textInput(name, content string) FileInput {
	return FileInput{
		Name:        name,
		Size:        int64(len(content)),
		ContentType: "text/plain",
		Reader:      strings.NewReader(content),
	}
}

func TestSubmit_UnknownTool(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Submit(context.Background(), "frobnicate", []FileInput{textInput("a.txt", "x")}, nil)
	if !errors.Is(err, ErrUnknownTool) {
		t.Fatalf("expected ErrUnknownTool, got %v", err)
	}

	// A rejected submission must leave no trace.
	if n, _ := env.repo.Count(context.Background()); n != 0 {
		t.Errorf("job count = %d, want 0", n)
	}
	if n := env.store.ObjectCount("uploads"); n != 0 {
		t.Errorf("uploads count = %d, want 0", n)
	}
}

func TestSubmit_NoFiles(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Submit(context.Background(), "word-counter", nil, nil)
	if !errors.Is(err, ErrNoFiles) {
		t.Fatalf("expected ErrNoFiles, got %v", err)
	}
}

func TestSubmit_GeneratorNeedsNoFiles(t *testing.T) {
	env := newTestEnv(t)

	job, err := env.svc.Submit(context.Background(), "uuid-generator", nil, map[string]interface{}{"count": 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.Status != domain.JobStatusQueued {
		t.Errorf("status = %q, want queued", job.Status)
	}
}

func TestSubmit_TooManyFiles(t *testing.T) {
	env := newTestEnv(t)

	// word-counter takes a single file.
	files := []FileInput{textInput("a.txt", "x"), textInput("b.txt", "y")}
	_, err := env.svc.Submit(context.Background(), "word-counter", files, nil)
	if !errors.Is(err, ErrTooManyFiles) {
		t.Fatalf("expected ErrTooManyFiles, got %v", err)
	}
}

func TestSubmit_FileTooLarge_NothingUploaded(t *testing.T) {
	env := newTestEnv(t)

	// word-counter allows 10MB per file; the declared size is checked before
	// any byte is uploaded.
	huge := FileInput{
		Name:        "huge.txt",
		Size:        11 * 1024 * 1024,
		ContentType: "text/plain",
		Reader:      strings.NewReader("small body, big declared size"),
	}
	_, err := env.svc.Submit(context.Background(), "word-counter", []FileInput{huge}, nil)
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
	if n := env.store.ObjectCount("uploads"); n != 0 {
		t.Errorf("uploads count = %d, want 0", n)
	}
	if n, _ := env.repo.Count(context.Background()); n != 0 {
		t.Errorf("job count = %d, want 0", n)
	}
}

func TestSubmit_UploadsInputsAndCreatesQueuedJob(t *testing.T) {
	env := newTestEnv(t)

	job, err := env.svc.Submit(context.Background(), "word-counter", []FileInput{textInput("essay.txt", "one two three")}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if job.Status != domain.JobStatusQueued || job.Progress != 0 {
		t.Errorf("unexpected initial state: %s %d", job.Status, job.Progress)
	}
	if len(job.InputFiles) != 1 {
		t.Fatalf("expected 1 input ref, got %d", len(job.InputFiles))
	}
	ref := job.InputFiles[0]
	if ref.Name != "essay.txt" || !strings.HasPrefix(ref.Path, "jobs/") || !strings.HasSuffix(ref.Path, "-essay.txt") {
		t.Errorf("unexpected input ref: %+v", ref)
	}
	if n := env.store.ObjectCount("uploads"); n != 1 {
		t.Errorf("uploads count = %d, want 1", n)
	}
}

func TestRunJob_FullLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	content := "hash this content"
	job, err := env.svc.Submit(ctx, "hash-generator", []FileInput{textInput("doc.txt", content)},
		map[string]interface{}{"algorithm": "sha256"})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	// Drive the job synchronously so the test can observe the terminal state.
	env.svc.runJob(ctx, job.ID)

	view, err := env.svc.GetStatus(ctx, job.ID)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if view.Status != domain.JobStatusSucceeded {
		t.Fatalf("status = %q (%s), want succeeded", view.Status, view.ErrorMessage)
	}
	if view.Progress != 100 {
		t.Errorf("progress = %d, want 100", view.Progress)
	}
	if len(view.OutputFiles) != 1 {
		t.Fatalf("expected 1 output, got %d", len(view.OutputFiles))
	}

	out := view.OutputFiles[0]
	if out.Path != job.ID+"/"+out.Name {
		t.Errorf("output stored at %q, want job-scoped key", out.Path)
	}
	if out.URL == "" {
		t.Error("output is missing a signed URL")
	}

	// The stored result must contain the real digest.
	reader, _, err := env.store.Download(ctx, "results", out.Path)
	if err != nil {
		t.Fatalf("failed to read result: %v", err)
	}
	defer reader.Close()
	data, _ := io.ReadAll(reader)

	sum := sha256.Sum256([]byte(content))
	if !bytes.Contains(data, []byte(hex.EncodeToString(sum[:]))) {
		t.Errorf("result does not contain expected digest:\n%s", data)
	}
}

func TestRunJob_ProcessingFailureIsRecorded(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	job, err := env.svc.Submit(ctx, "resize-image", []FileInput{textInput("broken.png", "not an image")},
		map[string]interface{}{"width": 10, "height": 10})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	env.svc.runJob(ctx, job.ID)

	view, err := env.svc.GetStatus(ctx, job.ID)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if view.Status != domain.JobStatusFailed {
		t.Fatalf("status = %q, want failed", view.Status)
	}
	if view.ErrorMessage == "" {
		t.Error("failed job is missing an error message")
	}
	if len(view.OutputFiles) != 0 {
		t.Errorf("failed job carries outputs: %v", view.OutputFiles)
	}
}

func TestRunJob_SecondTriggerIsIgnored(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	job, err := env.svc.Submit(ctx, "uuid-generator", nil, nil)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	env.svc.runJob(ctx, job.ID)

	first, err := env.svc.GetStatus(ctx, job.ID)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if first.Status != domain.JobStatusSucceeded {
		t.Fatalf("status = %q, want succeeded", first.Status)
	}
	resultCount := env.store.ObjectCount("results")

	// Replaying the trigger on a finished job must change nothing.
	env.svc.runJob(ctx, job.ID)

	second, _ := env.svc.GetStatus(ctx, job.ID)
	if second.Status != domain.JobStatusSucceeded || second.UpdatedAt.Before(first.UpdatedAt) {
		t.Errorf("replay altered the job: %+v", second)
	}
	if n := env.store.ObjectCount("results"); n != resultCount {
		t.Errorf("replay wrote %d extra results", n-resultCount)
	}
}

func TestRunJob_UnknownToolFailsJob(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Insert a record that bypasses submission validation.
	job := &domain.Job{
		ID:       "manual-job",
		ToolName: "frobnicate",
		Status:   domain.JobStatusQueued,
	}
	if err := env.repo.Create(ctx, job); err != nil {
		t.Fatalf("failed to create job: %v", err)
	}

	env.svc.runJob(ctx, job.ID)

	view, _ := env.svc.GetStatus(ctx, job.ID)
	if view.Status != domain.JobStatusFailed {
		t.Fatalf("status = %q, want failed", view.Status)
	}
	if !strings.Contains(view.ErrorMessage, "tool unavailable") {
		t.Errorf("unexpected error message %q", view.ErrorMessage)
	}
}

func TestGetStatus_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.GetStatus(context.Background(), "missing")
	if !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
}

func TestGetStatus_SignsFreshURLs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	job, err := env.svc.Submit(ctx, "uuid-generator", nil, nil)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	env.svc.runJob(ctx, job.ID)

	first, err := env.svc.GetStatus(ctx, job.ID)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	second, err := env.svc.GetStatus(ctx, job.ID)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}

	if first.OutputFiles[0].URL == second.OutputFiles[0].URL {
		t.Error("expected a fresh signed URL per status read")
	}
}

func TestDispatchInjection(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	called := false
	env.svc.dispatch = func(ctx context.Context, toolName string, files []processor.File, options processor.Options, onProgress processor.ProgressFunc) (*processor.Result, error) {
		called = true
		onProgress(55)
		return &processor.Result{Outputs: []processor.Output{{
			Name: "stub.txt", Data: []byte("stub"), MimeType: "text/plain",
		}}}, nil
	}

	job, err := env.svc.Submit(ctx, "word-counter", []FileInput{textInput("a.txt", "words")}, nil)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	env.svc.runJob(ctx, job.ID)

	if !called {
		t.Fatal("injected dispatcher was not used")
	}
	view, _ := env.svc.GetStatus(ctx, job.ID)
	if view.Status != domain.JobStatusSucceeded || view.OutputFiles[0].Name != "stub.txt" {
		t.Errorf("unexpected result: %+v", view)
	}
}
