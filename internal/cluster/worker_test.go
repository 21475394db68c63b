package cluster

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRequest() Request {
	return Request{Rows: line("x", 0, 1, 2, 10, 11, 12), Features: []string{"x", "zero"}, K: 2}
}

func TestWorker_DoReturnsResult(t *testing.T) {
	w := NewWorker()
	defer w.Close()

	res, err := w.Do(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0, 1, 1, 1}, res.Labels)

	// the worker is reusable once the previous request finished
	res2, err := w.Do(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, res.Labels, res2.Labels)
}

func TestWorker_FailureIsStructured(t *testing.T) {
	w := NewWorker()
	defer w.Close()

	req := sampleRequest()
	req.K = 4
	ch, err := w.Submit(context.Background(), req)
	require.NoError(t, err)
	o := <-ch
	require.Error(t, o.Err)
	assert.Nil(t, o.Result)

	resp := o.Response()
	assert.False(t, resp.OK)
	assert.Equal(t, Failed, resp.State)
	assert.Contains(t, resp.Error, "not enough valid numeric rows")
}

func TestWorker_BusyWhileOutstanding(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	w := NewWorker(WithRunFunc(func(ctx context.Context, req Request) (*Result, error) {
		close(started)
		<-release
		return &Result{Iterations: 1}, nil
	}))
	defer w.Close()

	ch, err := w.Submit(context.Background(), sampleRequest())
	require.NoError(t, err)
	<-started

	_, err = w.Submit(context.Background(), sampleRequest())
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	o := <-ch
	require.NoError(t, o.Err)
	assert.Equal(t, 1, o.Result.Iterations)
	assert.True(t, o.Response().OK)
}

func TestWorker_NilResultIsFailure(t *testing.T) {
	w := NewWorker(WithRunFunc(func(context.Context, Request) (*Result, error) {
		return nil, nil
	}))
	defer w.Close()

	ch, err := w.Submit(context.Background(), sampleRequest())
	require.NoError(t, err)
	o := <-ch
	require.Error(t, o.Err)

	var resp Response
	require.NotPanics(t, func() { resp = o.Response() })
	assert.False(t, resp.OK)
	assert.Equal(t, Failed, resp.State)
	assert.Contains(t, resp.Error, "no result")
}

func TestWorker_OutcomesFollowSubmissionOrder(t *testing.T) {
	w := NewWorker(WithRunFunc(func(_ context.Context, req Request) (*Result, error) {
		// echo the request through the result so order is observable
		return &Result{Iterations: req.K, Features: req.Features}, nil
	}))
	defer w.Close()

	var got []int
	for k := 2; k <= 6; k++ {
		req := sampleRequest()
		req.K = k
		ch, err := w.Submit(context.Background(), req)
		require.NoError(t, err)
		o := <-ch
		require.NoError(t, o.Err)
		got = append(got, o.Result.Iterations)
	}
	assert.Equal(t, []int{2, 3, 4, 5, 6}, got)
}

func TestWorker_PanicIsRecovered(t *testing.T) {
	w := NewWorker(WithRunFunc(func(context.Context, Request) (*Result, error) {
		panic("boom")
	}))
	defer w.Close()

	_, err := w.Do(context.Background(), sampleRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestWorker_CloseDeliversClosed(t *testing.T) {
	started := make(chan struct{})
	w := NewWorker(WithRunFunc(func(ctx context.Context, req Request) (*Result, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}))

	ch, err := w.Submit(context.Background(), sampleRequest())
	require.NoError(t, err)
	<-started
	w.Close()

	select {
	case o := <-ch:
		assert.ErrorIs(t, o.Err, ErrClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("no outcome after Close")
	}
	// exactly one outcome
	select {
	case o := <-ch:
		t.Fatalf("unexpected second outcome: %+v", o)
	case <-time.After(50 * time.Millisecond):
	}

	_, err = w.Submit(context.Background(), sampleRequest())
	assert.ErrorIs(t, err, ErrClosed)
	w.Close()
}

func TestWorker_DoHonoursContext(t *testing.T) {
	w := NewWorker(WithRunFunc(func(ctx context.Context, req Request) (*Result, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}))
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := w.Do(ctx, sampleRequest())
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
