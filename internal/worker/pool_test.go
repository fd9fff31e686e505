package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/local/topicsplitter/internal/config"
	"github.com/local/topicsplitter/internal/segment"
)

type countingProcessor struct {
	n    atomic.Int64
	mu   sync.Mutex
	seen map[string]bool
}

func (c *countingProcessor) Process(_ context.Context, job Job) {
	c.n.Add(1)
	c.mu.Lock()
	if c.seen == nil {
		c.seen = map[string]bool{}
	}
	c.seen[job.Document.ID] = true
	c.mu.Unlock()
}

func TestPoolProcessesAllJobs(t *testing.T) {
	proc := &countingProcessor{}
	p := New(config.WorkerConfig{Concurrency: 4}, proc)
	p.Start(context.Background())

	for i := 0; i < 32; i++ {
		p.Submit(context.Background(), Job{Document: segment.Document{ID: fmt.Sprintf("doc-%d", i)}})
	}
	p.Drain()

	assert.EqualValues(t, 32, proc.n.Load())
	assert.Len(t, proc.seen, 32)
}

func TestPoolStopUnblocksSubmit(t *testing.T) {
	proc := &countingProcessor{}
	p := New(config.WorkerConfig{Concurrency: 1}, proc)
	// no Start: workers never drain the channel
	done := make(chan struct{})
	go func() {
		p.Submit(context.Background(), Job{})
		close(done)
	}()
	p.Stop()
	<-done
}

func TestPoolCancelledContextUnblocksSubmit(t *testing.T) {
	proc := &countingProcessor{}
	p := New(config.WorkerConfig{Concurrency: 1}, proc)
	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	cancel()
	p.wg.Wait() // workers are gone, nothing reads the job channel

	done := make(chan struct{})
	go func() {
		p.Submit(ctx, Job{})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Submit blocked after context cancellation")
	}
}

func TestPoolDefaultsConcurrency(t *testing.T) {
	p := New(config.WorkerConfig{}, &countingProcessor{})
	assert.Equal(t, 4, p.cfg.Concurrency)
}
