package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/xeerfiles/filetools/internal/config"
	"github.com/xeerfiles/filetools/internal/domain"
)

func testRepo(t *testing.T) *JobRepository {
	t.Helper()
	// A temp file rather than :memory:; with pooling every new pool
	// connection would otherwise see its own empty in-memory database.
	db, err := InitDB(&config.DatabaseConfig{
		Driver:      "sqlite",
		Path:        filepath.Join(t.TempDir(), "jobs.db"),
		AutoMigrate: true,
	})
	if err != nil {
		t.Fatalf("failed to init test database: %v", err)
	}
	return NewJobRepository(db)
}

func queuedJob(t *testing.T, repo *JobRepository) *domain.Job {
	t.Helper()
	job := &domain.Job{
		ID:       uuid.New().String(),
		ToolName: "merge-pdf",
		Status:   domain.JobStatusQueued,
		InputFiles: domain.FileRefList{
			{Name: "a.pdf", Path: "jobs/1-ab-a.pdf", Size: 100},
		},
	}
	if err := repo.Create(context.Background(), job); err != nil {
		t.Fatalf("failed to create job: %v", err)
	}
	return job
}

func TestGetByID_NotFound(t *testing.T) {
	repo := testRepo(t)

	_, err := repo.GetByID(context.Background(), "does-not-exist")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMarkRunning_AdmitsOnlyOnce(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	job := queuedJob(t, repo)

	admitted, err := repo.MarkRunning(ctx, job.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !admitted {
		t.Fatal("first trigger should be admitted")
	}

	// A second trigger loses the queued-to-running transition.
	admitted, err = repo.MarkRunning(ctx, job.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if admitted {
		t.Fatal("second trigger must not be admitted")
	}

	got, err := repo.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != domain.JobStatusRunning {
		t.Errorf("status = %q, want running", got.Status)
	}
	if got.Progress != 10 {
		t.Errorf("progress = %d, want 10", got.Progress)
	}
}

func TestMarkRunning_UnknownJob(t *testing.T) {
	repo := testRepo(t)

	admitted, err := repo.MarkRunning(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if admitted {
		t.Fatal("missing job must not be admitted")
	}
}

func TestUpdateProgress_OnlyWhileRunning(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	job := queuedJob(t, repo)

	// Queued jobs do not take progress updates.
	if err := repo.UpdateProgress(ctx, job.ID, 50); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := repo.GetByID(ctx, job.ID)
	if got.Progress != 0 {
		t.Errorf("queued progress = %d, want 0", got.Progress)
	}

	repo.MarkRunning(ctx, job.ID)
	if err := repo.UpdateProgress(ctx, job.ID, 50); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ = repo.GetByID(ctx, job.ID)
	if got.Progress != 50 {
		t.Errorf("running progress = %d, want 50", got.Progress)
	}
}

func TestMarkSucceeded_SetsTerminalState(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	job := queuedJob(t, repo)
	repo.MarkRunning(ctx, job.ID)

	outputs := domain.FileRefList{{Name: "merged.pdf", Path: job.ID + "/merged.pdf", Size: 42}}
	if err := repo.MarkSucceeded(ctx, job.ID, outputs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := repo.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != domain.JobStatusSucceeded {
		t.Errorf("status = %q, want succeeded", got.Status)
	}
	if got.Progress != 100 {
		t.Errorf("progress = %d, want 100", got.Progress)
	}
	if len(got.OutputFiles) != 1 || got.OutputFiles[0].Name != "merged.pdf" {
		t.Errorf("unexpected outputs: %v", got.OutputFiles)
	}
	if got.ErrorMessage != "" {
		t.Errorf("succeeded job carries error message %q", got.ErrorMessage)
	}
}

func TestMarkFailed_FromQueuedAndRunning(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	// Failing a queued job is allowed (panics before admission).
	job := queuedJob(t, repo)
	if err := repo.MarkFailed(ctx, job.ID, "boom"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := repo.GetByID(ctx, job.ID)
	if got.Status != domain.JobStatusFailed || got.ErrorMessage != "boom" {
		t.Errorf("unexpected state: %s %q", got.Status, got.ErrorMessage)
	}

	// Terminal states are immutable.
	if err := repo.MarkFailed(ctx, job.ID, "again"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ = repo.GetByID(ctx, job.ID)
	if got.ErrorMessage != "boom" {
		t.Errorf("terminal job was overwritten: %q", got.ErrorMessage)
	}

	succeeded := queuedJob(t, repo)
	repo.MarkRunning(ctx, succeeded.ID)
	repo.MarkSucceeded(ctx, succeeded.ID, nil)
	if err := repo.MarkFailed(ctx, succeeded.ID, "late failure"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ = repo.GetByID(ctx, succeeded.ID)
	if got.Status != domain.JobStatusSucceeded {
		t.Errorf("succeeded job was demoted to %q", got.Status)
	}
}

func TestCount(t *testing.T) {
	repo := testRepo(t)

	n, err := repo.Count(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Errorf("count = %d, want 0", n)
	}

	queuedJob(t, repo)
	queuedJob(t, repo)
	n, _ = repo.Count(context.Background())
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
}
