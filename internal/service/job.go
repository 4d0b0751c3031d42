package service

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/xeerfiles/filetools/internal/domain"
	"github.com/xeerfiles/filetools/internal/logger"
	"github.com/xeerfiles/filetools/internal/metrics"
	"github.com/xeerfiles/filetools/internal/processor"
	"github.com/xeerfiles/filetools/internal/repository"
	"github.com/xeerfiles/filetools/internal/storage"
	"github.com/xeerfiles/filetools/internal/tools"
)

// Submission validation errors. Handlers map these to HTTP status codes.
var (
	ErrUnknownTool  = errors.New("unknown tool")
	ErrNoFiles      = errors.New("at least one file is required")
	ErrTooManyFiles = errors.New("too many files for this tool")
	ErrFileTooLarge = errors.New("file exceeds the size limit for this tool")
	ErrJobNotFound  = repository.ErrNotFound
)

// failedGenericMessage is stored when a job dies inside the execution
// boundary without a usable error.
const failedGenericMessage = "processing failed unexpectedly"

// FileInput is one uploaded file as received from the transport layer.
type FileInput struct {
	Name        string
	Size        int64
	ContentType string
	Reader      io.Reader
}

// DispatchFunc routes a job to its category handler. It must not panic.
type DispatchFunc func(ctx context.Context, toolName string, files []processor.File, options processor.Options, onProgress processor.ProgressFunc) (*processor.Result, error)

// JobService owns the job lifecycle: submission, asynchronous execution,
// and status reads.
type JobService struct {
	repo          *repository.JobRepository
	store         storage.ObjectStorage
	dispatch      DispatchFunc
	uploadsBucket string
	resultsBucket string
	signTTL       time.Duration
}

// JobServiceConfig carries the collaborators for NewJobService.
type JobServiceConfig struct {
	Repo          *repository.JobRepository
	Store         storage.ObjectStorage
	Dispatch      DispatchFunc
	UploadsBucket string
	ResultsBucket string
	SignedURLTTL  time.Duration
}

func NewJobService(cfg JobServiceConfig) *JobService {
	if cfg.Dispatch == nil {
		cfg.Dispatch = processor.Dispatch
	}
	if cfg.SignedURLTTL <= 0 {
		cfg.SignedURLTTL = time.Hour
	}
	return &JobService{
		repo:          cfg.Repo,
		store:         cfg.Store,
		dispatch:      cfg.Dispatch,
		uploadsBucket: cfg.UploadsBucket,
		resultsBucket: cfg.ResultsBucket,
		signTTL:       cfg.SignedURLTTL,
	}
}

// Submit validates the submission, uploads the input files, and creates the
// job record in the queued state. Validation runs before any upload, so a
// rejected submission leaves no trace in storage or the database.
func (s *JobService) Submit(ctx context.Context, toolID string, files []FileInput, options map[string]interface{}) (*domain.Job, error) {
	tool, ok := tools.ByID(toolID)
	if !ok {
		metrics.SubmissionRejectedTotal.WithLabelValues("unknown_tool").Inc()
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, toolID)
	}

	if tool.MaxFiles > 0 && len(files) > tool.MaxFiles {
		metrics.SubmissionRejectedTotal.WithLabelValues("too_many_files").Inc()
		return nil, fmt.Errorf("%w: %s accepts at most %d", ErrTooManyFiles, tool.ID, tool.MaxFiles)
	}
	if tool.MaxFiles > 0 && len(files) == 0 {
		metrics.SubmissionRejectedTotal.WithLabelValues("no_files").Inc()
		return nil, ErrNoFiles
	}

	maxSize := tool.MaxFileSizeBytes()
	for _, f := range files {
		if f.Size > maxSize {
			metrics.SubmissionRejectedTotal.WithLabelValues("file_too_large").Inc()
			return nil, fmt.Errorf("%w: %s is %d bytes, limit is %dMB", ErrFileTooLarge, f.Name, f.Size, tool.MaxFileSizeMB)
		}
	}

	inputs := make(domain.FileRefList, 0, len(files))
	for _, f := range files {
		key := uploadKey(f.Name)
		if err := s.store.Upload(ctx, s.uploadsBucket, key, f.Reader, f.Size, f.ContentType); err != nil {
			logger.With(logger.Fields{
				logger.FieldComponent: "job_service",
				logger.FieldTool:      tool.ID,
			}).Error(ctx, "input upload failed for %s: %v", f.Name, err)
			return nil, fmt.Errorf("failed to upload %s: %w", f.Name, err)
		}
		inputs = append(inputs, domain.FileRef{Name: f.Name, Path: key, Size: f.Size})
	}

	job := &domain.Job{
		ID:         uuid.New().String(),
		ToolName:   tool.ID,
		Status:     domain.JobStatusQueued,
		Progress:   0,
		InputFiles: inputs,
		Options:    domain.JSONMap(options),
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	metrics.JobsCreatedTotal.WithLabelValues(tool.ID).Inc()
	logger.With(logger.Fields{
		logger.FieldComponent: "job_service",
		logger.FieldJobID:     job.ID,
		logger.FieldTool:      tool.ID,
	}).WithCount(len(inputs)).Info(ctx, "job submitted")

	return job, nil
}

// uploadKey builds the storage key for an input file. The timestamp/token
// prefix keeps same-named uploads from colliding.
func uploadKey(name string) string {
	token := make([]byte, 4)
	rand.Read(token)
	return fmt.Sprintf("jobs/%d-%s-%s", time.Now().UnixMilli(), hex.EncodeToString(token), name)
}

// Execute triggers asynchronous processing of a queued job and returns
// immediately. The trigger is idempotent: only the caller that wins the
// queued-to-running transition actually runs the job; later triggers are
// no-ops. Failures never propagate to the caller; they end up on the job
// record instead.
func (s *JobService) Execute(id string) {
	go func() {
		ctx := logger.SetJobID(context.Background(), id)
		defer func() {
			if r := recover(); r != nil {
				logger.CtxError(ctx, "job execution panic: %v", r)
				if err := s.repo.MarkFailed(context.Background(), id, failedGenericMessage); err != nil {
					logger.CtxError(ctx, "failed to record panic failure: %v", err)
				}
			}
		}()
		s.runJob(ctx, id)
	}()
}

// runJob drives a single job from admission to a terminal state.
func (s *JobService) runJob(ctx context.Context, id string) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		logger.CtxWarn(ctx, "execution trigger for unknown job: %v", err)
		return
	}

	ctx = logger.SetTool(ctx, job.ToolName)
	log := logger.With(logger.Fields{logger.FieldComponent: "job_service"})

	admitted, err := s.repo.MarkRunning(ctx, id)
	if err != nil {
		log.Error(ctx, "admission update failed: %v", err)
		return
	}
	if !admitted {
		log.Debug(ctx, "job already admitted or finished, ignoring trigger")
		return
	}

	started := time.Now()
	status := string(domain.JobStatusFailed)
	defer func() {
		metrics.JobsCompletedTotal.WithLabelValues(job.ToolName, status).Inc()
		metrics.JobDurationSeconds.WithLabelValues(job.ToolName, status).Observe(time.Since(started).Seconds())
	}()

	files, err := s.downloadInputs(ctx, job)
	if err != nil {
		log.Error(ctx, "input download failed: %v", err)
		s.fail(ctx, id, fmt.Sprintf("failed to read input files: %v", err))
		return
	}
	s.progress(ctx, id, 20)

	result, err := s.dispatch(ctx, job.ToolName, files, processor.Options(job.Options), func(p int) {
		if p < 10 {
			p = 10
		}
		if p > 100 {
			p = 100
		}
		s.progress(ctx, id, p)
	})
	if err != nil {
		log.WithDuration(time.Since(started).Milliseconds()).Warn(ctx, "processing failed: %v", err)
		s.fail(ctx, id, err.Error())
		return
	}
	s.progress(ctx, id, 90)

	outputs := make(domain.FileRefList, 0, len(result.Outputs))
	for _, out := range result.Outputs {
		key := fmt.Sprintf("%s/%s", job.ID, out.Name)
		if err := s.store.Upload(ctx, s.resultsBucket, key, bytes.NewReader(out.Data), int64(len(out.Data)), out.MimeType); err != nil {
			log.Error(ctx, "result upload failed for %s: %v", out.Name, err)
			s.fail(ctx, id, fmt.Sprintf("failed to store result %s: %v", out.Name, err))
			return
		}
		outputs = append(outputs, domain.FileRef{Name: out.Name, Path: key, Size: int64(len(out.Data))})
	}

	if err := s.repo.MarkSucceeded(ctx, id, outputs); err != nil {
		log.Error(ctx, "failed to record success: %v", err)
		return
	}
	status = string(domain.JobStatusSucceeded)
	log.WithDuration(time.Since(started).Milliseconds()).WithCount(len(outputs)).Info(ctx, "job completed")
}

// downloadInputs materializes the job's input files from object storage.
func (s *JobService) downloadInputs(ctx context.Context, job *domain.Job) ([]processor.File, error) {
	files := make([]processor.File, 0, len(job.InputFiles))
	for _, ref := range job.InputFiles {
		reader, contentType, err := s.store.Download(ctx, s.uploadsBucket, ref.Path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ref.Name, err)
		}
		data, err := io.ReadAll(reader)
		reader.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ref.Name, err)
		}
		files = append(files, processor.File{Name: ref.Name, Data: data, MimeType: contentType})
	}
	return files, nil
}

func (s *JobService) progress(ctx context.Context, id string, p int) {
	if err := s.repo.UpdateProgress(ctx, id, p); err != nil {
		logger.CtxWarn(ctx, "progress update failed: %v", err)
	}
}

func (s *JobService) fail(ctx context.Context, id, message string) {
	if err := s.repo.MarkFailed(ctx, id, message); err != nil {
		logger.CtxError(ctx, "failed to record failure: %v", err)
	}
}

// GetStatus returns the job's current state with freshly signed download
// URLs for any outputs. URLs are minted per call and are never persisted.
func (s *JobService) GetStatus(ctx context.Context, id string) (*domain.JobView, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	view := &domain.JobView{
		ID:           job.ID,
		ToolName:     job.ToolName,
		Status:       job.Status,
		Progress:     job.Progress,
		InputFiles:   job.InputFiles,
		ErrorMessage: job.ErrorMessage,
		CreatedAt:    job.CreatedAt,
		UpdatedAt:    job.UpdatedAt,
	}

	for _, out := range job.OutputFiles {
		url, err := s.store.SignURL(ctx, s.resultsBucket, out.Path, s.signTTL)
		if err != nil {
			logger.With(logger.Fields{
				logger.FieldComponent: "job_service",
				logger.FieldJobID:     job.ID,
			}).Warn(ctx, "failed to sign URL for %s: %v", out.Path, err)
		}
		view.OutputFiles = append(view.OutputFiles, domain.OutputView{
			Name: out.Name,
			Path: out.Path,
			URL:  url,
		})
	}

	return view, nil
}
