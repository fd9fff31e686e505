package worker

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/local/topicsplitter/internal/config"
	"github.com/local/topicsplitter/internal/scan"
	"github.com/local/topicsplitter/internal/segment"
)

// Job pairs one scanned source with its document identity.
type Job struct {
	Source   scan.Source
	Document segment.Document
}

// Processor handles one job; implementations report their own outcomes.
type Processor interface {
	Process(ctx context.Context, job Job)
}

// Pool fans jobs out over a fixed set of goroutines.
type Pool struct {
	cfg  config.WorkerConfig
	proc Processor
	jobs chan Job
	stop chan struct{}
	wg   sync.WaitGroup
}

func New(cfg config.WorkerConfig, proc Processor) *Pool {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &Pool{cfg: cfg, proc: proc, jobs: make(chan Job), stop: make(chan struct{})}
}

func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.cfg.Concurrency; i++ {
		p.wg.Add(1)
		go p.loop(ctx, i)
	}
}

// Submit hands one job to the pool, blocking until a worker takes it, the
// pool stops, or ctx is cancelled. Workers exit on cancellation without
// closing the stop channel, so Submit must watch ctx itself.
func (p *Pool) Submit(ctx context.Context, job Job) {
	select {
	case p.jobs <- job:
	case <-p.stop:
	case <-ctx.Done():
	}
}

// Drain closes the job channel and waits for in-flight work to finish.
func (p *Pool) Drain() {
	close(p.jobs)
	p.wg.Wait()
}

// Stop aborts the pool without waiting for queued jobs.
func (p *Pool) Stop() {
	close(p.stop)
	p.wg.Wait()
}

func (p *Pool) loop(ctx context.Context, id int) {
	defer p.wg.Done()
	log.Debug().Int("worker", id).Msg("worker started")
	for {
		select {
		case <-p.stop:
			log.Debug().Int("worker", id).Msg("worker stopped")
			return
		case <-ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			p.proc.Process(ctx, job)
		}
	}
}
