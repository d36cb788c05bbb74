package pipeline

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/johnquangdev/talk-tracer/pkg/jobcontext"
)

// Runner executes one pipeline run
type Runner interface {
	Run(ctx context.Context, meetingID string) RunReport
}

// WorkerPool runs queued meetings on a fixed number of workers.
// Independent meetings are processed concurrently; the queue is bounded.
type WorkerPool struct {
	runner   Runner
	workers  int
	queue    chan string
	logger   *zap.Logger
	onReport func(RunReport)

	mu       sync.Mutex
	running  bool
	stopped  bool
	cancel   context.CancelFunc
	workerWg sync.WaitGroup
}

// NewWorkerPool creates a pool with workers goroutines and room for
// queueSize pending meetings
func NewWorkerPool(runner Runner, workers, queueSize int, logger *zap.Logger) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkerPool{
		runner:  runner,
		workers: workers,
		queue:   make(chan string, queueSize),
		logger:  logger,
	}
}

// OnReport registers a callback invoked with every finished run
func (p *WorkerPool) OnReport(fn func(RunReport)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onReport = fn
}

// Start launches the workers. Runs inherit ctx.
func (p *WorkerPool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return fmt.Errorf("worker pool already running")
	}
	if p.stopped {
		return fmt.Errorf("worker pool stopped")
	}

	ctx, p.cancel = context.WithCancel(ctx)
	p.running = true

	p.logger.Info("🚀 Starting pipeline worker pool",
		zap.Int("worker_count", p.workers),
		zap.Int("queue_size", cap(p.queue)),
	)

	for i := 0; i < p.workers; i++ {
		p.workerWg.Add(1)
		go p.worker(ctx, i)
	}
	return nil
}

// Enqueue schedules a run for meetingID. It returns false when the queue is
// full or the pool has been stopped.
func (p *WorkerPool) Enqueue(meetingID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return false
	}
	select {
	case p.queue <- meetingID:
		return true
	default:
		return false
	}
}

// Pending returns the number of queued meetings
func (p *WorkerPool) Pending() int {
	return len(p.queue)
}

// Stop stops accepting work, lets workers drain the queue and waits for them
func (p *WorkerPool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.queue)
	p.mu.Unlock()

	p.logger.Info("🛑 Stopping pipeline worker pool...")
	p.workerWg.Wait()

	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.running = false
	p.mu.Unlock()

	p.logger.Info("✅ Pipeline worker pool stopped")
}

func (p *WorkerPool) worker(ctx context.Context, workerID int) {
	defer p.workerWg.Done()

	p.logger.Info("👷 Worker started", zap.Int("worker_id", workerID))
	for meetingID := range p.queue {
		report := p.runner.Run(jobcontext.WithWorker(ctx, workerID), meetingID)

		p.mu.Lock()
		fn := p.onReport
		p.mu.Unlock()
		if fn != nil {
			fn(report)
		}
	}
	p.logger.Info("👷 Worker stopping", zap.Int("worker_id", workerID))
}
