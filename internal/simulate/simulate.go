// Package simulate checks analytic power by sampling the alternative.
package simulate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/verte-zerg/hypoviz/internal/curve"
	"github.com/verte-zerg/hypoviz/internal/model"
)

const (
	checkpoints   = 200
	ctxCheckEvery = 1024
	// MinTrials is the smallest run with a defined sample standard deviation.
	MinTrials = 2
)

var (
	// ErrNoTrials is returned when there are fewer than MinTrials trials.
	ErrNoTrials = errors.New("at least 2 trials are required")
	// ErrDegenerate is returned when alpha leaves no rejection region to test.
	ErrDegenerate = errors.New("alpha must lie strictly between 0 and 1")
)

// Simulator draws observations from the alternative and counts how often they
// fall beyond the reference markers.
type Simulator struct {
	rnd *rand.Rand
}

// New returns a Simulator. A zero seed uses the current time.
func New(seed int64) *Simulator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulator{rnd: rand.New(rand.NewSource(seed))}
}

// Run performs cfg.Trials draws. It returns the summary and the running
// rejection rate sampled at up to a few hundred checkpoints.
func (s *Simulator) Run(ctx context.Context, cfg model.SimConfig) (model.SimResult, []float64, error) {
	if cfg.Trials < MinTrials {
		return model.SimResult{}, nil, ErrNoTrials
	}
	c := curve.New(curve.Region{Width: 1, Height: 1}, true)
	if err := c.SetStdDevValue(cfg.StdDev); err != nil {
		return model.SimResult{}, nil, err
	}
	if err := c.SetAlphaValue(cfg.Alpha); err != nil {
		return model.SimResult{}, nil, err
	}
	if c.Degenerate() {
		return model.SimResult{}, nil, ErrDegenerate
	}
	if err := c.SetMean(cfg.AltMean); err != nil {
		return model.SimResult{}, nil, fmt.Errorf("alternative mean: %w", err)
	}

	// The reference is centred at zero, so its markers sit at ±offset·stddev.
	limit := c.BoundaryOffset() * cfg.StdDev
	every := cfg.Trials / checkpoints
	if every < 1 {
		every = 1
	}

	samples := make([]float64, cfg.Trials)
	running := make([]float64, 0, cfg.Trials/every+1)
	rejections := 0
	for i := 0; i < cfg.Trials; i++ {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return model.SimResult{}, nil, err
			}
		}
		x := s.rnd.NormFloat64()*cfg.StdDev + cfg.AltMean
		samples[i] = x
		if math.Abs(x) > limit {
			rejections++
		}
		if (i+1)%every == 0 || i == cfg.Trials-1 {
			running = append(running, float64(rejections)/float64(i+1))
		}
	}

	mean, err := stats.Mean(samples)
	if err != nil {
		return model.SimResult{}, nil, err
	}
	sd, err := stats.StandardDeviationSample(samples)
	if err != nil {
		return model.SimResult{}, nil, err
	}
	median, err := stats.Median(samples)
	if err != nil {
		return model.SimResult{}, nil, err
	}

	return model.SimResult{
		Trials:         cfg.Trials,
		Rejections:     rejections,
		EmpiricalPower: float64(rejections) / float64(cfg.Trials),
		AnalyticPower:  c.Power(),
		SampleMean:     mean,
		SampleStdDev:   sd,
		SampleMedian:   median,
	}, running, nil
}
