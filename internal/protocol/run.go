package protocol

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/alexiusacademia/gohyst/internal/imk"
)

// Material is the uniaxial material driven by Run
type Material interface {
	SetTrialStrain(u float64) error
	CommitState()
	Strain() float64
	Stress() float64
	Tangent() float64
	Energy() float64
	Failed() bool
	Branch() imk.Branch
}

// Record is the committed response at one step
type Record struct {
	Step    int        `json:"step"`
	Strain  float64    `json:"strain"`
	Stress  float64    `json:"stress"`
	Tangent float64    `json:"tangent"`
	Energy  float64    `json:"energy"`
	Branch  imk.Branch `json:"branch"`
	Failed  bool       `json:"failed"`
}

// Result holds the response history of one run
type Result struct {
	Name     string   `json:"name,omitempty"`
	Records  []Record `json:"records"`
	Energy   float64  `json:"energy"`    // dissipated energy at the end of the run
	Failed   bool     `json:"failed"`    // whether the material failed
	FailedAt int      `json:"failed_at"` // first failed step, -1 if none
	MaxForce float64  `json:"max_force"`
	MinForce float64  `json:"min_force"`
}

// Options control Run
type Options struct {
	// Iterations is the number of intermediate trial strains evaluated before
	// the converged one at every step, as a host solver would do
	Iterations int

	// StopOnFailure ends the run at the first failed step
	StopOnFailure bool
}

// Run drives m through history, committing every step. The history
// continues from the current deformation of m.
func Run(ctx context.Context, m Material, history []float64, opts Options) (*Result, error) {
	res := &Result{FailedAt: -1, Records: make([]Record, 0, len(history))}
	u1 := m.Strain()
	for i, u := range history {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}
		for k := 1; k <= opts.Iterations; k++ {
			trial := u1 + (u-u1)*float64(k)/float64(opts.Iterations+1)
			if err := m.SetTrialStrain(trial); err != nil {
				return res, fmt.Errorf("step %d: %w", i, err)
			}
		}
		if err := m.SetTrialStrain(u); err != nil {
			return res, fmt.Errorf("step %d: %w", i, err)
		}
		m.CommitState()
		u1 = u

		rec := Record{
			Step:    i,
			Strain:  u,
			Stress:  m.Stress(),
			Tangent: m.Tangent(),
			Energy:  m.Energy(),
			Branch:  m.Branch(),
			Failed:  m.Failed(),
		}
		res.Records = append(res.Records, rec)
		if i == 0 || rec.Stress > res.MaxForce {
			res.MaxForce = rec.Stress
		}
		if i == 0 || rec.Stress < res.MinForce {
			res.MinForce = rec.Stress
		}
		if rec.Failed && !res.Failed {
			res.Failed = true
			res.FailedAt = i
			slog.Warn("[DRIVER] material failed", "step", i, "strain", u)
			if opts.StopOnFailure {
				break
			}
		}
	}
	if n := len(res.Records); n > 0 {
		res.Energy = res.Records[n-1].Energy
	}
	slog.Info("[DRIVER] run complete", "steps", len(res.Records), "energy", res.Energy, "failed", res.Failed)
	return res, nil
}

// Job is one material and history run by RunBatch
type Job struct {
	Name     string
	Material Material
	History  []float64
	Options  Options
}

// RunBatch runs independent jobs concurrently. Results keep the order of
// jobs; a failed job leaves a nil result and its error is joined to the
// returned error.
func RunBatch(ctx context.Context, jobs []Job) ([]*Result, error) {
	results := make([]*Result, len(jobs))
	errs := make([]error, len(jobs))
	sem := make(chan struct{}, runtime.NumCPU())
	var wg sync.WaitGroup
	for i := range jobs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			res, err := Run(ctx, jobs[i].Material, jobs[i].History, jobs[i].Options)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", jobs[i].Name, err)
				return
			}
			res.Name = jobs[i].Name
			results[i] = res
		}(i)
	}
	wg.Wait()
	return results, errors.Join(errs...)
}
