package runner

import (
	"context"
	"fmt"
	"sync"

	"github.com/signalnine/querymatrix/internal/matrix"
)

// Pool runs jobs on a fixed number of workers.
type Pool struct {
	Workers  int
	Executor Executor
	// OnStart and OnFinish are called from worker goroutines and must be
	// safe for concurrent use.
	OnStart  func(Ticket)
	OnFinish func(Outcome)
}

// Run starts the workers and returns a channel carrying exactly one Outcome
// per job, in completion order. The channel is closed after the last job.
// No job is started when the worker count is invalid.
func (p *Pool) Run(ctx context.Context, jobs []matrix.Job) (<-chan Outcome, error) {
	if p.Workers < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWorkers, p.Workers)
	}

	total := len(jobs)
	queue := make(chan Ticket, total)
	for i, j := range jobs {
		queue <- Ticket{Index: i + 1, Total: total, Job: j}
	}
	close(queue)

	out := make(chan Outcome)
	var wg sync.WaitGroup
	for w := 0; w < min(p.Workers, total); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range queue {
				out <- p.runOne(ctx, t)
			}
		}()
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out, nil
}

func (p *Pool) runOne(ctx context.Context, t Ticket) Outcome {
	var o Outcome
	if err := ctx.Err(); err != nil {
		o = Outcome{Status: Failed, Err: fmt.Errorf("not started: %w", err)}
	} else {
		if p.OnStart != nil {
			p.OnStart(t)
		}
		o = p.execute(ctx, t.Job)
		o.Started = true
	}
	o.Ticket = t
	if p.OnFinish != nil {
		p.OnFinish(o)
	}
	return o
}

func (p *Pool) execute(ctx context.Context, job matrix.Job) (o Outcome) {
	defer func() {
		if r := recover(); r != nil {
			o = Outcome{Status: Failed, Err: fmt.Errorf("%w: %v", ErrPanic, r)}
		}
	}()
	return p.Executor.Execute(ctx, job)
}

// Drain collects every outcome from ch.
func Drain(ch <-chan Outcome) []Outcome {
	var all []Outcome
	for o := range ch {
		all = append(all, o)
	}
	return all
}
