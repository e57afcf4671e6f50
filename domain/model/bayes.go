package model

// SamplingPlan declares how a contingency table's data were collected. The
// plan selects which marginal-likelihood formula produced a Bayes factor;
// results computed under different plans are not comparable.
type SamplingPlan string

const (
	// PlanIndependentMultinomialFixedMargin: row margins fixed by design
	// (e.g. group sizes chosen by the experimenter); only the per-row
	// conditional response probabilities are integrated over.
	PlanIndependentMultinomialFixedMargin SamplingPlan = "independent-multinomial-fixed-margin"

	// PlanJointMultinomial: nothing fixed but the grand total; integrates
	// jointly over the full cell-probability simplex.
	PlanJointMultinomial SamplingPlan = "joint-multinomial"
)

// Valid reports whether the plan is one of the supported tags.
func (p SamplingPlan) Valid() bool {
	return p == PlanIndependentMultinomialFixedMargin || p == PlanJointMultinomial
}

// BayesFactorResult carries K, the marginal-likelihood ratio of association
// over independence, tagged with the sampling plan and prior that produced
// it. K > 1 favors association. Immutable once constructed.
type BayesFactorResult struct {
	K                  float64      `json:"k"`
	LogK               float64      `json:"log_k"`
	Plan               SamplingPlan `json:"plan"`
	PriorConcentration float64      `json:"prior_concentration"`
}

// ComparableWith reports whether two results were produced under the same
// sampling plan and prior, which is the precondition for comparing K values.
func (r BayesFactorResult) ComparableWith(o BayesFactorResult) bool {
	return r.Plan == o.Plan && r.PriorConcentration == o.PriorConcentration
}

// Evidence maps K onto the conventional verbal bins. Interpretive label
// only; nothing in the engine reads it back.
func (r BayesFactorResult) Evidence() string {
	switch {
	case r.K >= 150:
		return "very_strong"
	case r.K >= 20:
		return "strong"
	case r.K >= 3:
		return "positive"
	case r.K > 1:
		return "negligible"
	default:
		return "favors_independence"
	}
}
