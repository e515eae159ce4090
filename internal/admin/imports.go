package admin

import (
	"context"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Shimizu-Technology/hafaloha-go/internal/domain"
)

// DefaultPollInterval is how often a watched import job's status is checked.
const DefaultPollInterval = 3 * time.Second

// ImportAPI is the slice of the remote client the import editor needs.
type ImportAPI interface {
	UploadImport(ctx context.Context, filename string, file io.Reader) (*domain.ImportJob, error)
	GetImport(ctx context.Context, id string) (*domain.ImportJob, error)
	ListImports(ctx context.Context) ([]domain.ImportJob, error)
}

// ImportEditor uploads CSV import jobs and tracks them until they finish.
type ImportEditor struct {
	api      ImportAPI
	log      *zap.Logger
	interval time.Duration

	mu   sync.Mutex
	jobs []domain.ImportJob
}

func NewImportEditor(api ImportAPI, log *zap.Logger) *ImportEditor {
	if log == nil {
		log = zap.NewNop()
	}
	return &ImportEditor{api: api, log: log, interval: DefaultPollInterval}
}

// SetPollInterval overrides the fixed poll interval. Tests shrink it.
func (e *ImportEditor) SetPollInterval(d time.Duration) {
	if d > 0 {
		e.interval = d
	}
}

func (e *ImportEditor) Jobs() []domain.ImportJob {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.ImportJob, len(e.jobs))
	copy(out, e.jobs)
	return out
}

func (e *ImportEditor) LoadJobs(ctx context.Context) error {
	jobs, err := e.api.ListImports(ctx)
	if err != nil {
		e.log.Error("import list failed", zap.Error(err))
		return err
	}
	e.mu.Lock()
	e.jobs = jobs
	e.mu.Unlock()
	return nil
}

// Upload starts a server-side import and prepends the pending job.
func (e *ImportEditor) Upload(ctx context.Context, filename string, file io.Reader) (*domain.ImportJob, error) {
	job, err := e.api.UploadImport(ctx, filename, file)
	if err != nil {
		e.log.Error("import upload failed", zap.String("file", filename), zap.Error(err))
		return nil, err
	}
	e.mu.Lock()
	e.jobs = append([]domain.ImportJob{*job}, e.jobs...)
	e.mu.Unlock()
	return job, nil
}

// Watch polls the job's status on the fixed interval until it reaches a
// terminal state, then refreshes the job list exactly once and returns the
// final job. Cancelling ctx tears the poller down immediately, so a watch is
// bound to the lifetime of the view that started it. A failed status fetch
// also ends the watch; nothing is retried.
func (e *ImportEditor) Watch(ctx context.Context, jobID string) (*domain.ImportJob, error) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			job, err := e.api.GetImport(ctx, jobID)
			if err != nil {
				e.log.Error("import status poll failed", zap.String("job_id", jobID), zap.Error(err))
				return nil, err
			}
			if !job.Status.IsTerminal() {
				continue
			}
			if err := e.LoadJobs(ctx); err != nil {
				// The watch itself succeeded; the stale list is reported but
				// does not mask the terminal job.
				e.log.Warn("job list refresh after completion failed", zap.Error(err))
			}
			return job, nil
		}
	}
}
