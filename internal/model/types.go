// Package model defines shared data structures.
package model

import "time"

// Params is the user-facing state of the two curves.
type Params struct {
	StdDev     float64
	Alpha      float64
	NullMean   float64
	AltMean    float64
	ShowAlt    bool
	ShowTypeI  bool
	ShowTypeII bool
	ShowPower  bool
	ShowLabels bool
}

// DefaultParams mirrors the initial page state: both curves standard normal,
// the alternative hidden and only the reference axis labelled.
func DefaultParams() Params {
	return Params{
		StdDev:     1,
		Alpha:      0.05,
		ShowLabels: true,
	}
}

// Metrics holds the derived error rates of the current scenario.
type Metrics struct {
	BoundaryOffset float64
	TypeI          float64
	TypeII         float64
	Power          float64
	Degenerate     bool
}

// Snapshot is a saved scenario.
type Snapshot struct {
	ID        int64
	CreatedAt time.Time
	StdDev    float64
	Alpha     float64
	NullMean  float64
	AltMean   float64
	TypeI     float64
	TypeII    float64
	Power     float64
	Note      string
}

// PowerPoint is one row of a power analysis across mean shifts.
type PowerPoint struct {
	Shift  float64
	TypeII float64
	Power  float64
}

// SimConfig defines a Monte Carlo power check.
type SimConfig struct {
	StdDev  float64
	Alpha   float64
	AltMean float64
	Trials  int
	Seed    int64
}

// SimResult summarises a Monte Carlo power check.
type SimResult struct {
	Trials         int
	Rejections     int
	EmpiricalPower float64
	AnalyticPower  float64
	SampleMean     float64
	SampleStdDev   float64
	SampleMedian   float64
}
