package async

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/applytrack/resume-parser/constants"
	"github.com/applytrack/resume-parser/internal/entity"
)

type countingRunner struct {
	mu   sync.Mutex
	seen map[uuid.UUID]int
	done chan uuid.UUID
}

func newCountingRunner(buffer int) *countingRunner {
	return &countingRunner{seen: map[uuid.UUID]int{}, done: make(chan uuid.UUID, buffer)}
}

func (r *countingRunner) Run(_ context.Context, jobID uuid.UUID) error {
	r.mu.Lock()
	r.seen[jobID]++
	r.mu.Unlock()
	r.done <- jobID
	return nil
}

func (r *countingRunner) waitFor(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-r.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for job %d of %d", i+1, n)
		}
	}
}

func TestQueueProcessesEveryJob(t *testing.T) {
	runner := newCountingRunner(16)
	q := NewProcessorQueue(runner, nil, WithWorkers(2), WithQueueSize(16))
	defer q.Shutdown(context.Background())

	ids := make([]uuid.UUID, 8)
	for i := range ids {
		ids[i] = uuid.New()
		if err := q.Enqueue(context.Background(), Job{JobID: ids[i], SubmittedAt: time.Now()}); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}
	runner.waitFor(t, len(ids))

	runner.mu.Lock()
	defer runner.mu.Unlock()
	for _, id := range ids {
		if runner.seen[id] != 1 {
			t.Errorf("job %s ran %d times, want 1", id, runner.seen[id])
		}
	}
}

func TestShutdownDrainsThenRejects(t *testing.T) {
	runner := newCountingRunner(4)
	q := NewProcessorQueue(runner, nil, WithWorkers(1), WithQueueSize(4))

	id := uuid.New()
	if err := q.Enqueue(context.Background(), Job{JobID: id, SubmittedAt: time.Now()}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	q.Shutdown(context.Background())

	runner.mu.Lock()
	ran := runner.seen[id]
	runner.mu.Unlock()
	if ran != 1 {
		t.Fatalf("queued job ran %d times before shutdown returned, want 1", ran)
	}

	// enqueue after shutdown is a logged no-op, not a panic
	if err := q.Enqueue(context.Background(), Job{JobID: uuid.New(), SubmittedAt: time.Now()}); err != nil {
		t.Fatalf("enqueue after shutdown: %v", err)
	}
}

type recordQueue struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

func (r *recordQueue) Enqueue(_ context.Context, job Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, job.JobID)
	return nil
}

func (r *recordQueue) Shutdown(context.Context) {}

type resumableStub struct {
	jobs []*entity.ParsingJob
	err  error
}

func (s *resumableStub) ListResumable(context.Context, time.Duration) ([]*entity.ParsingJob, error) {
	return s.jobs, s.err
}

func (s *resumableStub) CreateIfIdle(context.Context, uuid.UUID, string) (*entity.ParsingJob, error) {
	return nil, errors.New("not used")
}
func (s *resumableStub) GetByID(context.Context, uuid.UUID) (*entity.ParsingJob, error) {
	return nil, errors.New("not used")
}
func (s *resumableStub) MarkProcessing(context.Context, uuid.UUID) (*entity.ParsingJob, error) {
	return nil, errors.New("not used")
}
func (s *resumableStub) MarkCompleted(context.Context, uuid.UUID) error {
	return errors.New("not used")
}
func (s *resumableStub) MarkFailed(context.Context, uuid.UUID, string) error {
	return errors.New("not used")
}
func (s *resumableStub) ListByOwner(context.Context, uuid.UUID, *time.Time, *time.Time) ([]*entity.ParsingJob, error) {
	return nil, nil
}

func TestRecoverJobsEnqueuesResumableRows(t *testing.T) {
	stale := &entity.ParsingJob{ID: uuid.New(), Status: constants.JobStatusProcessing}
	pending := &entity.ParsingJob{ID: uuid.New(), Status: constants.JobStatusPending}
	q := &recordQueue{}

	err := RecoverJobs(context.Background(), &resumableStub{jobs: []*entity.ParsingJob{pending, stale}}, q, 10*time.Minute, nil)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if len(q.ids) != 2 || q.ids[0] != pending.ID || q.ids[1] != stale.ID {
		t.Errorf("enqueued = %v, want both rows in order", q.ids)
	}
}

func TestRecoverLoopSweepsRepeatedly(t *testing.T) {
	stale := &entity.ParsingJob{ID: uuid.New(), Status: constants.JobStatusProcessing}
	stub := &resumableStub{jobs: []*entity.ParsingJob{stale}}
	q := &recordQueue{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		RecoverLoop(ctx, stub, q, time.Minute, time.Millisecond, nil)
	}()

	deadline := time.After(2 * time.Second)
	for {
		q.mu.Lock()
		n := len(q.ids)
		q.mu.Unlock()
		if n >= 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for a second sweep")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop on cancellation")
	}
}

func TestRecoverJobsPropagatesScanError(t *testing.T) {
	scanErr := errors.New("connection reset")
	err := RecoverJobs(context.Background(), &resumableStub{err: scanErr}, &recordQueue{}, time.Minute, nil)
	if !errors.Is(err, scanErr) {
		t.Fatalf("err = %v, want scan error", err)
	}
}
