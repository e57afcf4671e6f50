package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gostat/domain/core"
	"gostat/domain/model"
	"gostat/internal/testkit"
)

func interactionDataset(t *testing.T) (*model.Design, []float64) {
	t.Helper()
	x1 := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	x2 := []float64{0, 0, 0, 0, 1, 1, 1, 1}
	noise := []float64{0.2, -0.2, -0.2, 0.2, 0.2, -0.2, -0.2, 0.2}

	rows := make([][]float64, 8)
	y := make([]float64, 8)
	for i := range rows {
		rows[i] = []float64{x1[i], x2[i]}
		y[i] = 1 + 2*x1[i] + 3*x1[i]*x2[i] + noise[i]
	}
	d, err := model.NewDesignWithIntercept([]core.Term{"x1", "x2"}, rows)
	require.NoError(t, err)
	full, err := d.WithInteraction("x1", "x2")
	require.NoError(t, err)
	return full, y
}

func TestBatchFit_MixedOutcomes(t *testing.T) {
	e := New()

	good, y, err := testkit.GenerateLinear(testkit.DefaultLinearConfig())
	require.NoError(t, err)

	// Duplicate predictor column makes this design singular.
	singular, err := model.NewDesign(
		[]core.Term{"(intercept)", "x", "x_copy"},
		[][]float64{{1, 1, 1}, {1, 2, 2}, {1, 3, 3}, {1, 4, 4}, {1, 5, 5}},
	)
	require.NoError(t, err)

	outcomes, manifest, err := e.BatchFit(context.Background(), []ModelSpec{
		{Name: "good", Design: good, Response: y},
		{Name: "singular", Design: singular, Response: []float64{1, 2, 3, 4, 5}},
	})
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	// Outcomes hold spec order regardless of which goroutine finished first.
	assert.Equal(t, "good", outcomes[0].Name)
	assert.Equal(t, "singular", outcomes[1].Name)

	require.NoError(t, outcomes[0].Err)
	require.NotNil(t, outcomes[0].Model)
	assert.ErrorIs(t, outcomes[1].Err, core.ErrSingularDesign)
	assert.Nil(t, outcomes[1].Model)

	assert.Equal(t, 2, manifest.Requested)
	assert.Equal(t, 1, manifest.Succeeded)
	assert.Equal(t, 1, manifest.Failed)
	assert.NotEmpty(t, string(manifest.RunID))
	assert.False(t, manifest.StartedAt.IsZero())
	assert.False(t, manifest.CompletedAt.IsZero())
}

func TestBatchFit_MatchesSequentialFit(t *testing.T) {
	e := New()
	d, y, err := testkit.GenerateLinear(testkit.DefaultLinearConfig())
	require.NoError(t, err)

	sequential, err := e.Regression().Fit(d, y)
	require.NoError(t, err)

	outcomes, _, err := e.BatchFit(context.Background(), []ModelSpec{
		{Name: "only", Design: d, Response: y},
	})
	require.NoError(t, err)
	require.NoError(t, outcomes[0].Err)

	// Concurrency must not perturb a single numeric bit.
	assert.Equal(t, sequential.Coefficients, outcomes[0].Model.Coefficients)
	assert.Equal(t, sequential.PValues, outcomes[0].Model.PValues)
	assert.Equal(t, sequential.Residuals, outcomes[0].Model.Residuals)
}

func TestBatchFit_CancelledContext(t *testing.T) {
	e := New()
	d, y, err := testkit.GenerateLinear(testkit.DefaultLinearConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err = e.BatchFit(ctx, []ModelSpec{{Name: "only", Design: d, Response: y}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScreenTerms_FlagsInteraction(t *testing.T) {
	e := New()
	full, y := interactionDataset(t)

	entries, err := e.ScreenTerms(context.Background(), full, y)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Design-column order, intercept excluded.
	assert.Equal(t, core.Term("x1"), entries[0].Term)
	assert.Equal(t, core.Term("x2"), entries[1].Term)
	assert.Equal(t, core.Term("x1:x2"), entries[2].Term)

	for _, entry := range entries {
		require.NoErrorf(t, entry.Err, "term %s", entry.Term)
		require.NotNil(t, entry.Comparison)
		assert.Equal(t, 1, entry.Comparison.DF1)
		assert.Equal(t, []core.Term{entry.Term}, entry.Comparison.DroppedTerms)
	}

	// The interaction carries the signal, so dropping it hurts the most.
	assert.Less(t, entries[2].Comparison.PValue, 1e-3)
	assert.Greater(t, entries[2].Comparison.FStatistic, entries[1].Comparison.FStatistic)
}
