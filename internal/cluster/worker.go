package cluster

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Outcome is the single terminal result of a submitted request.
type Outcome struct {
	Result *Result
	Err    error
}

// Response is the wire shape of an Outcome: exactly one of Result or Error is set.
type Response struct {
	OK     bool    `json:"ok" yaml:"ok"`
	State  State   `json:"state" yaml:"state"`
	Result *Result `json:"result,omitempty" yaml:"result,omitempty"`
	Error  string  `json:"error,omitempty" yaml:"error,omitempty"`
}

// Response converts the outcome into its structured form.
func (o Outcome) Response() Response {
	if o.Err != nil {
		return Response{State: Failed, Error: o.Err.Error()}
	}
	return Response{OK: true, State: o.Result.State, Result: o.Result}
}

type job struct {
	ctx context.Context
	req Request
	out chan Outcome
}

// RunFunc executes a request; Run is used unless overridden.
type RunFunc func(context.Context, Request) (*Result, error)

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

// WithRunFunc replaces the pipeline the worker executes.
func WithRunFunc(fn RunFunc) WorkerOption {
	return func(w *Worker) { w.run = fn }
}

// Worker runs clustering requests on its own goroutine, one at a time.
// It holds no queue: Submit fails with ErrBusy while a request is outstanding.
type Worker struct {
	run  RunFunc
	jobs chan job
	done chan struct{}

	mu      sync.Mutex
	pending *job
	closed  bool
}

// NewWorker starts a worker goroutine. Call Close to release it.
func NewWorker(opts ...WorkerOption) *Worker {
	w := &Worker{
		run:  Run,
		jobs: make(chan job),
		done: make(chan struct{}),
	}
	for _, o := range opts {
		o(w)
	}
	go w.loop()
	return w
}

// Submit hands req to the worker and returns the channel its Outcome will arrive on.
// It does not wait for the run.
func (w *Worker) Submit(ctx context.Context, req Request) (<-chan Outcome, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil, ErrClosed
	}
	if w.pending != nil {
		return nil, ErrBusy
	}
	j := &job{ctx: ctx, req: req, out: make(chan Outcome, 1)}
	w.pending = j
	// loop is idle whenever pending was nil, so this hand-off does not block for long.
	w.jobs <- *j
	return j.out, nil
}

// Do submits req and waits for its outcome or for ctx to end.
func (w *Worker) Do(ctx context.Context, req Request) (*Result, error) {
	ch, err := w.Submit(ctx, req)
	if err != nil {
		return nil, err
	}
	select {
	case o := <-ch:
		return o.Result, o.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close terminates the worker without waiting for an in-flight run.
// An outstanding request receives ErrClosed and its run is cancelled;
// run state is local and is simply dropped.
func (w *Worker) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	if w.pending != nil {
		w.pending.out <- Outcome{Err: ErrClosed}
		w.pending = nil
	}
	close(w.done)
	w.mu.Unlock()
}

func (w *Worker) loop() {
	for {
		select {
		case <-w.done:
			return
		case j := <-w.jobs:
			res, err := w.execute(j)
			if res == nil && err == nil {
				err = errors.New("cluster run returned no result")
			}
			w.finish(j, Outcome{Result: res, Err: err})
		}
	}
}

func (w *Worker) execute(j job) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("cluster run panicked: %v", r)
		}
	}()
	ctx := j.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	// Close cancels the run cooperatively between iterations.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-w.done:
			cancel()
		case <-ctx.Done():
		}
	}()
	return w.run(ctx, j.req)
}

func (w *Worker) finish(j job, o Outcome) {
	w.mu.Lock()
	defer w.mu.Unlock()
	// After Close the request has already received ErrClosed.
	if w.pending == nil || w.pending.out != j.out {
		return
	}
	w.pending = nil
	j.out <- o
}
