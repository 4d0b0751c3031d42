package repository

import (
	"context"
	"errors"

	"github.com/xeerfiles/filetools/internal/domain"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a job id has no record.
var ErrNotFound = errors.New("job not found")

// JobRepository handles job record operations.
type JobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new JobRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *JobRepository: repository instance bound to db.
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create inserts a new job record.
func (r *JobRepository) Create(ctx context.Context, job *domain.Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// GetByID retrieves a job by its ID.
// Returns ErrNotFound when no record exists for the id.
func (r *JobRepository) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	var job domain.Job
	if err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

// MarkRunning transitions a job from queued to running with progress 10.
// The update is conditional on the current status, so it doubles as the
// admission gate: the second of two concurrent Execute triggers sees false.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: job ID.
// Returns:
//   - bool: true if this caller won the transition.
//   - error: non-nil if the update fails.
func (r *JobRepository) MarkRunning(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Job{}).
		Where("id = ? AND status = ?", id, domain.JobStatusQueued).
		Updates(map[string]interface{}{
			"status":   domain.JobStatusRunning,
			"progress": 10,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// UpdateProgress persists a progress percentage for a running job.
// Terminal rows are left untouched.
func (r *JobRepository) UpdateProgress(ctx context.Context, id string, progress int) error {
	return r.db.WithContext(ctx).
		Model(&domain.Job{}).
		Where("id = ? AND status = ?", id, domain.JobStatusRunning).
		Update("progress", progress).Error
}

// MarkSucceeded finalizes a job with its output files and progress 100.
// Guarded on status=running so a terminal state is never overwritten.
func (r *JobRepository) MarkSucceeded(ctx context.Context, id string, outputs domain.FileRefList) error {
	return r.db.WithContext(ctx).
		Model(&domain.Job{}).
		Where("id = ? AND status = ?", id, domain.JobStatusRunning).
		Updates(map[string]interface{}{
			"status":       domain.JobStatusSucceeded,
			"progress":     100,
			"output_files": outputs,
		}).Error
}

// MarkFailed finalizes a job with a human-readable error message.
// Accepts both queued and running rows: a job that fails before admission
// (record store errors during startup) must still converge to failed.
func (r *JobRepository) MarkFailed(ctx context.Context, id string, message string) error {
	return r.db.WithContext(ctx).
		Model(&domain.Job{}).
		Where("id = ? AND status IN ?", id, []domain.JobStatus{domain.JobStatusQueued, domain.JobStatusRunning}).
		Updates(map[string]interface{}{
			"status":        domain.JobStatusFailed,
			"error_message": message,
		}).Error
}

// Count reports the total number of job records. Used by tests and the
// health endpoint's record-store probe.
func (r *JobRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Job{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
