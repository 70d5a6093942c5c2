package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/survey-app/backend/pkg/queue"
)

// Exporter renders and records export jobs.
type Exporter interface {
	Process(ctx context.Context, id uuid.UUID) error
	Fail(ctx context.Context, id uuid.UUID, cause error) error
}

// JobSource is the queue the processor consumes.
type JobSource interface {
	Dequeue(ctx context.Context) (*queue.Job, string, error)
	Retry(ctx context.Context, job *queue.Job) error
}

// ExportProcessor processes response export jobs: render CSV, upload to S3, update DB.
type ExportProcessor struct {
	exporter Exporter
	queue    JobSource
	logger   *zap.Logger
	backoff  time.Duration
}

// NewExportProcessor creates an export processor.
func NewExportProcessor(exporter Exporter, q JobSource, logger *zap.Logger) *ExportProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportProcessor{exporter: exporter, queue: q, logger: logger, backoff: queue.RetryBackoff}
}

// Process executes one export job.
func (p *ExportProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeResponseExport {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.ExportPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if err := p.exporter.Process(ctx, payload.ExportID); err != nil {
		if job.LastAttempt() {
			if ferr := p.exporter.Fail(ctx, payload.ExportID, err); ferr != nil {
				p.logger.Error("mark export failed", zap.String("export_id", payload.ExportID.String()), zap.Error(ferr))
			}
		}
		return err
	}
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *ExportProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("export worker stopping")
			return
		default:
		}

		job, _, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			p.sleep(ctx)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			p.sleep(ctx)
		}
	}
}

func (p *ExportProcessor) sleep(ctx context.Context) {
	t := time.NewTimer(p.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
