package engine

import (
	"context"

	"golang.org/x/sync/errgroup"

	"gostat/adapters/stats/bayes"
	"gostat/adapters/stats/contingency"
	"gostat/adapters/stats/regression"
	"gostat/domain/core"
	"gostat/domain/model"
	"gostat/internal"
	"gostat/internal/config"
)

// StatsEngine bundles the inference components behind one entry point and
// adds batch execution on top: many model fits or drop-one-term screens run
// concurrently, with results slotted by index so output order never depends
// on goroutine scheduling. Every numeric result is bit-identical to the
// sequential computation; only the RunManifest (provenance, not data)
// carries a fresh ID and wall-clock times.
type StatsEngine struct {
	regression  *regression.Engine
	contingency *contingency.Engine
	bayes       *bayes.Test
	log         *internal.Logger
}

// New creates a stats engine with default tolerances.
func New() *StatsEngine {
	return NewWithConfig(config.Default())
}

// NewWithConfig creates a stats engine with explicit tolerances.
func NewWithConfig(cfg *config.Config) *StatsEngine {
	return &StatsEngine{
		regression:  regression.NewEngineWithConfig(cfg),
		contingency: contingency.NewEngineWithConfig(cfg),
		bayes:       bayes.NewTestWithConfig(cfg),
		log:         internal.DefaultLogger,
	}
}

// Regression exposes the regression component.
func (e *StatsEngine) Regression() *regression.Engine { return e.regression }

// Contingency exposes the contingency component.
func (e *StatsEngine) Contingency() *contingency.Engine { return e.contingency }

// Bayes exposes the Bayes-factor component.
func (e *StatsEngine) Bayes() *bayes.Test { return e.bayes }

// ModelSpec names one fit in a batch.
type ModelSpec struct {
	Name     string
	Design   *model.Design
	Response []float64
}

// FitOutcome pairs a spec name with its model or its error. A failed fit is
// fatal to that analysis only, never to the batch.
type FitOutcome struct {
	Name  string
	Model *model.FittedModel
	Err   error
}

// RunManifest is the audit record of one batch run.
type RunManifest struct {
	RunID       core.RunID     `json:"run_id"`
	StartedAt   core.Timestamp `json:"started_at"`
	CompletedAt core.Timestamp `json:"completed_at"`
	Requested   int            `json:"requested"`
	Succeeded   int            `json:"succeeded"`
	Failed      int            `json:"failed"`
}

// BatchFit fits every spec concurrently. Outcomes are returned in spec
// order; the only error returned directly is context cancellation.
func (e *StatsEngine) BatchFit(ctx context.Context, specs []ModelSpec) ([]FitOutcome, *RunManifest, error) {
	manifest := &RunManifest{
		RunID:     core.RunID(core.NewID()),
		StartedAt: core.Now(),
		Requested: len(specs),
	}

	outcomes := make([]FitOutcome, len(specs))
	g, ctx := errgroup.WithContext(ctx)
	for i, spec := range specs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := e.regression.Fit(spec.Design, spec.Response)
			outcomes[i] = FitOutcome{Name: spec.Name, Model: m, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	for _, o := range outcomes {
		if o.Err == nil {
			manifest.Succeeded++
		} else {
			manifest.Failed++
		}
	}
	manifest.CompletedAt = core.Now()
	e.log.Debug("batch fit %s: %d requested, %d succeeded, %d failed",
		manifest.RunID, manifest.Requested, manifest.Succeeded, manifest.Failed)
	return outcomes, manifest, nil
}

// TermScreenEntry reports the nested-model F-test for dropping one term.
type TermScreenEntry struct {
	Term       core.Term
	Comparison *model.ModelComparison
	Err        error
}

// ScreenTerms fits the full model, then concurrently refits with each
// non-intercept term dropped and compares against the full fit. Entries
// come back in design-column order.
func (e *StatsEngine) ScreenTerms(ctx context.Context, d *model.Design, y []float64) ([]TermScreenEntry, error) {
	full, err := e.regression.Fit(d, y)
	if err != nil {
		return nil, err
	}

	interceptIdx := d.InterceptIndex()
	var terms []core.Term
	for j, t := range d.Terms {
		if j == interceptIdx {
			continue
		}
		terms = append(terms, t)
	}

	entries := make([]TermScreenEntry, len(terms))
	g, ctx := errgroup.WithContext(ctx)
	for i, term := range terms {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			entries[i] = e.screenOne(d, y, full, term)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (e *StatsEngine) screenOne(d *model.Design, y []float64, full *model.FittedModel, term core.Term) TermScreenEntry {
	reducedDesign, err := d.Drop(term)
	if err != nil {
		return TermScreenEntry{Term: term, Err: err}
	}
	reduced, err := e.regression.Fit(reducedDesign, y)
	if err != nil {
		return TermScreenEntry{Term: term, Err: err}
	}
	cmp, err := e.regression.Compare(full, reduced)
	return TermScreenEntry{Term: term, Comparison: cmp, Err: err}
}
