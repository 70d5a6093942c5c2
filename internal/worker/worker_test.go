package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/survey-app/backend/pkg/queue"
)

type fakeExporter struct {
	mu        sync.Mutex
	err       error
	processed []uuid.UUID
	failed    []uuid.UUID
}

func (f *fakeExporter) Process(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.processed = append(f.processed, id)
	return f.err
}

func (f *fakeExporter) Fail(_ context.Context, id uuid.UUID, _ error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed = append(f.failed, id)
	return nil
}

type chanQueue struct {
	jobs    chan *queue.Job
	retried chan *queue.Job
}

func (q *chanQueue) Dequeue(ctx context.Context) (*queue.Job, string, error) {
	select {
	case j := <-q.jobs:
		return j, queue.QueueExports, nil
	case <-ctx.Done():
		return nil, "", ctx.Err()
	}
}

func (q *chanQueue) Retry(_ context.Context, job *queue.Job) error {
	job.Attempt++
	q.retried <- job
	return nil
}

func exportJob(t *testing.T, id uuid.UUID, attempt int) *queue.Job {
	t.Helper()
	body, err := json.Marshal(queue.ExportPayload{ExportID: id, SurveyID: 1})
	require.NoError(t, err)
	return &queue.Job{ID: "j", Type: queue.JobTypeResponseExport, Payload: body, Attempt: attempt}
}

func TestProcessMarksFailedOnLastAttempt(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	exp := &fakeExporter{err: errors.New("s3 down")}
	p := NewExportProcessor(exp, nil, zap.NewNop())

	require.Error(t, p.Process(ctx, exportJob(t, id, 0)))
	assert.Empty(t, exp.failed)

	require.Error(t, p.Process(ctx, exportJob(t, id, queue.MaxRetries-1)))
	assert.Equal(t, []uuid.UUID{id}, exp.failed)
}

func TestProcessRejectsUnknownType(t *testing.T) {
	p := NewExportProcessor(&fakeExporter{}, nil, zap.NewNop())
	assert.Error(t, p.Process(context.Background(), &queue.Job{Type: "email"}))
}

func TestRunRetriesFailedJobs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	exp := &fakeExporter{err: errors.New("boom")}
	q := &chanQueue{jobs: make(chan *queue.Job, 1), retried: make(chan *queue.Job, 1)}
	p := NewExportProcessor(exp, q, zap.NewNop())
	p.backoff = time.Millisecond

	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	q.jobs <- exportJob(t, uuid.New(), 0)
	select {
	case j := <-q.retried:
		assert.Equal(t, 1, j.Attempt)
	case <-time.After(2 * time.Second):
		t.Fatal("job was not retried")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}
