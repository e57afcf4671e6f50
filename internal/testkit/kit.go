package testkit

import (
	"fmt"
	randv2 "math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"gostat/domain/core"
	"gostat/domain/model"
)

// The generators here exist for tests and demos. They never touch global
// random state: every one takes an explicit seed and derives a private PCG
// stream from it, so a config reproduces its dataset exactly.

// LinearConfig describes a synthetic regression dataset.
type LinearConfig struct {
	Rows      int
	Seed      uint64
	Intercept float64
	Slopes    []float64 // one per generated predictor
	NoiseSD   float64
}

// DefaultLinearConfig returns a small, well-conditioned design.
func DefaultLinearConfig() LinearConfig {
	return LinearConfig{
		Rows:      200,
		Seed:      42,
		Intercept: 1.5,
		Slopes:    []float64{2.0, -0.75},
		NoiseSD:   1.0,
	}
}

// GenerateLinear samples standard-normal predictors and a Gaussian-noise
// response around the configured linear signal. The returned design carries
// an intercept column.
func GenerateLinear(cfg LinearConfig) (*model.Design, []float64, error) {
	if cfg.Rows < len(cfg.Slopes)+2 {
		return nil, nil, fmt.Errorf("testkit: %d rows cannot support %d predictors", cfg.Rows, len(cfg.Slopes))
	}
	src := randv2.NewPCG(cfg.Seed, 0)
	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: src}

	terms := make([]core.Term, len(cfg.Slopes))
	for j := range terms {
		terms[j] = core.Term(fmt.Sprintf("x%d", j+1))
	}

	rows := make([][]float64, cfg.Rows)
	y := make([]float64, cfg.Rows)
	for i := range rows {
		rows[i] = make([]float64, len(cfg.Slopes))
		yi := cfg.Intercept
		for j, slope := range cfg.Slopes {
			x := normal.Rand()
			rows[i][j] = x
			yi += slope * x
		}
		y[i] = yi + cfg.NoiseSD*normal.Rand()
	}

	design, err := model.NewDesignWithIntercept(terms, rows)
	if err != nil {
		return nil, nil, err
	}
	return design, y, nil
}

// PairedConfig describes paired categorical observations with a tunable
// association between the two variables.
type PairedConfig struct {
	Rows          int
	Seed          uint64
	RowCategories []string
	ColCategories []string
	// Association is the probability mass moved onto the matching
	// category index; 0 leaves the variables independent.
	Association float64
}

// GeneratePaired samples co-indexed categorical label sequences.
func GeneratePaired(cfg PairedConfig) (rowObs, colObs []string, err error) {
	if cfg.Rows < 1 || len(cfg.RowCategories) < 2 || len(cfg.ColCategories) < 2 {
		return nil, nil, fmt.Errorf("testkit: need rows and at least 2x2 categories")
	}
	if cfg.Association < 0 || cfg.Association > 1 {
		return nil, nil, fmt.Errorf("testkit: association must be in [0,1]")
	}
	rng := randv2.New(randv2.NewPCG(cfg.Seed, 1))

	rowObs = make([]string, cfg.Rows)
	colObs = make([]string, cfg.Rows)
	for i := 0; i < cfg.Rows; i++ {
		ri := rng.IntN(len(cfg.RowCategories))
		rowObs[i] = cfg.RowCategories[ri]
		if rng.Float64() < cfg.Association {
			colObs[i] = cfg.ColCategories[ri%len(cfg.ColCategories)]
		} else {
			colObs[i] = cfg.ColCategories[rng.IntN(len(cfg.ColCategories))]
		}
	}
	return rowObs, colObs, nil
}
