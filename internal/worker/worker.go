package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/akolanti/PDFChat/internal/appErrors"
	"github.com/akolanti/PDFChat/internal/config"
	"github.com/akolanti/PDFChat/internal/domain/jobModel"
	"github.com/akolanti/PDFChat/internal/job"
	"github.com/akolanti/PDFChat/internal/metrics"
	"github.com/akolanti/PDFChat/internal/rag"
	"github.com/akolanti/PDFChat/pkg/logger_i"
)

var ErrPoolStopped = errors.New("worker pool stopped")

type PoolConfig struct {
	MinWorkers           int64
	MaxWorkers           int64
	RequestsPerNewWorker int64
	IdleTimeout          time.Duration
	JobTimeout           time.Duration
	QueueSize            int
}

func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MinWorkers:           config.MinWorkerCount,
		MaxWorkers:           config.MaxWorkerCount,
		RequestsPerNewWorker: config.RequestsPerNewWorkerCount,
		IdleTimeout:          config.IdleWorkerTimeout,
		JobTimeout:           config.JobTimeout,
		QueueSize:            config.BufferLimit,
	}
}

type outcome struct {
	job jobModel.Job
	err error
}

type envelope struct {
	ctx    context.Context
	job    jobModel.Job
	result chan outcome
}

// Pool runs RAG jobs on a bounded set of workers that grows with load and
// shrinks back to MinWorkers when idle.
type Pool struct {
	cfg               PoolConfig
	jobService        *job.Service
	ragService        rag.Service
	jobChannel        chan envelope
	dispatcherChannel chan bool
	stopChannel       chan struct{}
	workerWaitGroup   sync.WaitGroup
	stopOnce          sync.Once
	startOnce         sync.Once

	currentWorkerCount int64
	requestCount       int64
	logger             *logger_i.Logger
}

func NewPool(cfg PoolConfig, jobService *job.Service, ragService rag.Service) *Pool {
	if cfg.MinWorkers < 1 {
		cfg.MinWorkers = 1
	}
	if cfg.MaxWorkers < cfg.MinWorkers {
		cfg.MaxWorkers = cfg.MinWorkers
	}
	if cfg.RequestsPerNewWorker < 1 {
		cfg.RequestsPerNewWorker = 1
	}
	return &Pool{
		cfg:               cfg,
		jobService:        jobService,
		ragService:        ragService,
		jobChannel:        make(chan envelope, cfg.QueueSize),
		dispatcherChannel: make(chan bool, cfg.MaxWorkers),
		stopChannel:       make(chan struct{}),
		logger:            logger_i.NewLogger("WorkerPool"),
	}
}

func (p *Pool) Start() {
	p.startOnce.Do(func() {
		p.logger.Info("Initializing worker pool", "min", p.cfg.MinWorkers, "max", p.cfg.MaxWorkers)
		p.workerWaitGroup.Add(1)
		go p.dispatcher()
	})
}

// Stop signals every worker and waits for in-flight jobs to finish.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.logger.Info("Stopping worker pool")
		close(p.stopChannel)
	})
	p.workerWaitGroup.Wait()
	p.logger.Info("Worker pool stopped")
}

func (p *Pool) WorkerCount() int64 {
	return atomic.LoadInt64(&p.currentWorkerCount)
}

// Submit queues j and blocks until a worker finishes it or ctx ends. The
// returned error is the typed failure of the job, if any.
func (p *Pool) Submit(ctx context.Context, j jobModel.Job) (jobModel.Job, error) {
	select {
	case <-p.stopChannel:
		return j, appErrors.Internal("worker.Submit", ErrPoolStopped)
	default:
	}

	j = p.jobService.SaveState(ctx, j, jobModel.JobStatusQueued)
	env := envelope{ctx: ctx, job: j, result: make(chan outcome, 1)}

	count := atomic.AddInt64(&p.requestCount, 1)
	if j.JobType == jobModel.JobTypeIngest || count%p.cfg.RequestsPerNewWorker == 0 {
		p.signalDispatcher()
	}

	select {
	case p.jobChannel <- env:
		metrics.IncrementJobsInQueue()
	case <-ctx.Done():
		return j, appErrors.Upstream("worker.Submit", ctx.Err())
	case <-p.stopChannel:
		return j, appErrors.Internal("worker.Submit", ErrPoolStopped)
	}

	select {
	case out := <-env.result:
		return out.job, out.err
	case <-ctx.Done():
		return j, appErrors.Upstream("worker.Submit", ctx.Err())
	case <-p.stopChannel:
		return j, appErrors.Internal("worker.Submit", ErrPoolStopped)
	}
}

func (p *Pool) signalDispatcher() {
	select {
	case p.dispatcherChannel <- true:
		metrics.StartDispatcherSignalCount()
	default:
		// dispatcher already has pending signals
	}
}

func (p *Pool) dispatcher() {
	defer p.workerWaitGroup.Done()
	for i := int64(0); i < p.cfg.MinWorkers; i++ {
		p.createWorker()
	}
	p.logger.Info("Dispatcher started")
	for {
		select {
		case <-p.dispatcherChannel:
			if atomic.LoadInt64(&p.currentWorkerCount) < p.cfg.MaxWorkers {
				p.logger.Info("Creating new worker", "workerCount", p.WorkerCount())
				p.createWorker()
			}
		case <-p.stopChannel:
			return
		}
	}
}

func (p *Pool) createWorker() {
	p.workerWaitGroup.Add(1)
	atomic.AddInt64(&p.currentWorkerCount, 1)
	metrics.IncrementActiveWorkerCount()
	go p.worker()
}

func (p *Pool) worker() {
	idle := time.NewTimer(p.cfg.IdleTimeout)
	defer idle.Stop()
	for {
		select {
		case env := <-p.jobChannel:
			metrics.DecrementJobsInQueue()
			p.executeJob(env)
			idle.Reset(p.cfg.IdleTimeout)

		case <-p.stopChannel:
			atomic.AddInt64(&p.currentWorkerCount, -1)
			p.removeWorker("Stop worker signal received")
			return

		case <-idle.C:
			if p.tryRetire() {
				p.removeWorker("Idle worker timeout")
				return
			}
			idle.Reset(p.cfg.IdleTimeout)
		}
	}
}

// tryRetire claims a slot above MinWorkers.
func (p *Pool) tryRetire() bool {
	for {
		current := atomic.LoadInt64(&p.currentWorkerCount)
		if current <= p.cfg.MinWorkers {
			return false
		}
		if atomic.CompareAndSwapInt64(&p.currentWorkerCount, current, current-1) {
			return true
		}
	}
}

// removeWorker expects the caller to have already decremented the worker count.
func (p *Pool) removeWorker(reason string) {
	metrics.DecrementActiveWorkerCount()
	p.logger.Info("Removed worker", "reason", reason, "workerCount", p.WorkerCount())
	p.workerWaitGroup.Done()
}
