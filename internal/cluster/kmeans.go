package cluster

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

const (
	// Sentinel labels rows excluded from the matrix.
	Sentinel = -1
	// Epsilon is the displacement threshold, in raw feature units.
	Epsilon = 1e-9

	DefaultMaxIterations = 30
	MinFeatures          = 2
	MaxFeatures          = 8
	MinK                 = 2
	MaxK                 = 10
)

// State is the convergence controller state.
type State int

const (
	Running State = iota
	Converged
	MaxIterReached
	Failed
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Converged:
		return "converged"
	case MaxIterReached:
		return "max_iterations"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Request is one clustering job.
type Request struct {
	Rows     RowSource
	Features []string
	K        int
	// MaxIterations caps assignment+update passes; 0 means DefaultMaxIterations.
	MaxIterations int
}

// Validate checks the request shape before any data is touched.
func (r Request) Validate() error {
	if r.Rows == nil {
		return &ValidationError{Field: "rows", Reason: "no row source"}
	}
	if n := len(r.Features); n < MinFeatures || n > MaxFeatures {
		return &ValidationError{Field: "features", Reason: fmt.Sprintf("need %d-%d features, got %d", MinFeatures, MaxFeatures, n)}
	}
	seen := make(map[string]struct{}, len(r.Features))
	for _, f := range r.Features {
		if _, dup := seen[f]; dup {
			return &ValidationError{Field: "features", Reason: fmt.Sprintf("duplicate feature %q", f)}
		}
		seen[f] = struct{}{}
	}
	if r.K < MinK || r.K > MaxK {
		return &ValidationError{Field: "k", Reason: fmt.Sprintf("must be in [%d,%d], got %d", MinK, MaxK, r.K)}
	}
	if r.MaxIterations < 0 {
		return &ValidationError{Field: "max_iterations", Reason: fmt.Sprintf("must be >= 1, got %d", r.MaxIterations)}
	}
	return nil
}

func (r Request) withDefaults() Request {
	if r.MaxIterations == 0 {
		r.MaxIterations = DefaultMaxIterations
	}
	return r
}

// Result is the immutable snapshot of a completed run.
type Result struct {
	RunID    string   `json:"run_id" yaml:"run_id"`
	Features []string `json:"features" yaml:"features"`
	// Labels has one entry per source row; Sentinel marks excluded rows.
	Labels     []int       `json:"labels" yaml:"labels"`
	Centroids  [][]float64 `json:"centroids" yaml:"centroids"`
	Iterations int         `json:"iterations" yaml:"iterations"`
	Inertia    float64     `json:"inertia" yaml:"inertia"`
	Counts     []int       `json:"counts" yaml:"counts"`
	State      State       `json:"state" yaml:"state"`
	Excluded   int         `json:"excluded" yaml:"excluded"`
	// History is the inertia after each update step.
	History []float64 `json:"history,omitempty" yaml:"history,omitempty"`
}

// Run executes the full pipeline synchronously: build, seed, iterate, report.
// ctx is checked between iterations.
func Run(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req = req.withDefaults()

	m, err := BuildMatrix(req.Rows, req.Features, req.K)
	if err != nil {
		return nil, err
	}

	centroids := InitCentroids(m.Points, req.K)
	labels := make([]int, len(m.Points))
	state := Running
	var history []float64
	iterations := 0

	for state == Running {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("cluster run abandoned after %d iterations: %w", iterations, err)
		}
		changed := Assign(m.Points, centroids, labels)
		next := Update(m.Points, labels, centroids)
		shift := Displacement(centroids, next)
		centroids = next
		iterations++
		history = append(history, Inertia(m.Points, labels, centroids))

		switch {
		case !changed || shift < Epsilon:
			state = Converged
		case iterations >= req.MaxIterations:
			state = MaxIterReached
		}
	}

	return &Result{
		RunID:      uuid.NewString(),
		Features:   m.Features,
		Labels:     ExpandLabels(labels, m.Index, m.Total),
		Centroids:  centroids,
		Iterations: iterations,
		Inertia:    history[len(history)-1],
		Counts:     Counts(labels, req.K),
		State:      state,
		Excluded:   m.Excluded(),
		History:    history,
	}, nil
}
