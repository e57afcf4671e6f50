package bayes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gostat/domain/core"
	"gostat/domain/model"
	"gostat/internal/config"
	interrors "gostat/internal/errors"
)

func table(t *testing.T, counts [][]int) *model.ContingencyTable {
	t.Helper()
	rows := make([]string, len(counts))
	cols := make([]string, len(counts[0]))
	for i := range rows {
		rows[i] = string(rune('A' + i))
	}
	for j := range cols {
		cols[j] = string(rune('a' + j))
	}
	tab, err := model.NewContingencyTable(rows, cols, counts)
	require.NoError(t, err)
	return tab
}

func TestBayesFactor_AllOnesExactValues(t *testing.T) {
	// For [[1,1],[1,1]] with a = 1 the Beta ratios reduce to small
	// rationals: K = 15/14 under the joint plan and 5/6 under the
	// fixed-margin plan.
	bt := NewTest()
	tab := table(t, [][]int{{1, 1}, {1, 1}})

	joint, err := bt.BayesFactor(tab, model.PlanJointMultinomial)
	require.NoError(t, err)
	assert.InDelta(t, 15.0/14.0, joint.K, 1e-10)

	indep, err := bt.BayesFactor(tab, model.PlanIndependentMultinomialFixedMargin)
	require.NoError(t, err)
	assert.InDelta(t, 5.0/6.0, indep.K, 1e-10)

	// Same table, different plans, different numbers.
	assert.NotEqual(t, joint.K, indep.K)
	assert.False(t, joint.ComparableWith(*indep))
}

func TestBayesFactor_MonotoneInAssociation(t *testing.T) {
	bt := NewTest()

	tables := [][][]int{
		{{50, 50}, {50, 50}},
		{{60, 40}, {40, 60}},
		{{75, 25}, {25, 75}},
		{{90, 10}, {10, 90}},
	}

	for _, plan := range []model.SamplingPlan{
		model.PlanJointMultinomial,
		model.PlanIndependentMultinomialFixedMargin,
	} {
		var prev float64
		for i, counts := range tables {
			res, err := bt.BayesFactor(table(t, counts), plan)
			require.NoError(t, err)
			if i > 0 {
				assert.Greaterf(t, res.LogK, prev, "plan %s, table %d", plan, i)
			}
			prev = res.LogK
		}
	}
}

func TestBayesFactor_BalancedTableFavorsIndependence(t *testing.T) {
	bt := NewTest()
	tab := table(t, [][]int{{50, 50}, {50, 50}})

	for _, plan := range []model.SamplingPlan{
		model.PlanJointMultinomial,
		model.PlanIndependentMultinomialFixedMargin,
	} {
		res, err := bt.BayesFactor(tab, plan)
		require.NoError(t, err)
		assert.Lessf(t, res.K, 1.0, "plan %s", plan)
		assert.Equal(t, "favors_independence", res.Evidence())
		assert.Equal(t, plan, res.Plan)
		assert.Equal(t, 1.0, res.PriorConcentration)
	}
}

func TestBayesFactor_StrongAssociation(t *testing.T) {
	bt := NewTest()
	res, err := bt.BayesFactor(table(t, [][]int{{90, 10}, {10, 90}}), model.PlanJointMultinomial)
	require.NoError(t, err)

	assert.Greater(t, res.K, 150.0)
	assert.Equal(t, "very_strong", res.Evidence())
}

func TestBayesFactor_JeffreysPrior(t *testing.T) {
	cfg := config.Default()
	cfg.PriorConcentration = 0.5
	bt := NewTestWithConfig(cfg)

	res, err := bt.BayesFactor(table(t, [][]int{{60, 40}, {40, 60}}), model.PlanJointMultinomial)
	require.NoError(t, err)
	assert.Equal(t, 0.5, res.PriorConcentration)

	// A different prior is a different analysis: not comparable with the
	// default-prior run of the same table and plan.
	def, err := NewTest().BayesFactor(table(t, [][]int{{60, 40}, {40, 60}}), model.PlanJointMultinomial)
	require.NoError(t, err)
	assert.False(t, res.ComparableWith(*def))
	assert.NotEqual(t, res.K, def.K)
}

func TestBayesFactor_FixedMarginViaTranspose(t *testing.T) {
	bt := NewTest()
	tab := table(t, [][]int{{30, 10}, {20, 40}})

	rowFixed, err := bt.BayesFactor(tab, model.PlanIndependentMultinomialFixedMargin)
	require.NoError(t, err)
	colFixed, err := bt.BayesFactor(tab.Transpose(), model.PlanIndependentMultinomialFixedMargin)
	require.NoError(t, err)

	// Conditioning on a different margin is a different model.
	assert.NotEqual(t, rowFixed.LogK, colFixed.LogK)
}

func TestBayesFactor_Errors(t *testing.T) {
	bt := NewTest()
	tab := table(t, [][]int{{1, 1}, {1, 1}})

	_, err := bt.BayesFactor(tab, model.SamplingPlan("poisson"))
	require.Error(t, err)
	assert.Equal(t, interrors.CodeInvalidInput, interrors.GetCode(err))

	oneRow, err := model.NewContingencyTable(
		[]string{"only"}, []string{"a", "b"}, [][]int{{3, 4}},
	)
	require.NoError(t, err)
	_, err = bt.BayesFactor(oneRow, model.PlanJointMultinomial)
	assert.ErrorIs(t, err, core.ErrDimensionMismatch)

	empty := table(t, [][]int{{0, 0}, {0, 0}})
	_, err = bt.BayesFactor(empty, model.PlanJointMultinomial)
	assert.ErrorIs(t, err, core.ErrDegenerateMargin)
}

func TestBayesFactor_Deterministic(t *testing.T) {
	bt := NewTest()
	tab := table(t, [][]int{{1219, 36244}, {3108, 239241}})

	first, err := bt.BayesFactor(tab, model.PlanJointMultinomial)
	require.NoError(t, err)
	second, err := bt.BayesFactor(tab, model.PlanJointMultinomial)
	require.NoError(t, err)

	// Bit-for-bit equal, not merely close.
	assert.Equal(t, first.K, second.K)
	assert.Equal(t, first.LogK, second.LogK)
}
