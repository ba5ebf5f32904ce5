package agent

import (
	"context"

	"github.com/BaSui01/contentpipe/state"
)

// QualityAssurance scores the assembled content. The "overall" score is the
// routing artifact: once it is present the workflow advances to human review.
type QualityAssurance struct {
	threshold float64
}

// QualityOption configures a QualityAssurance agent.
type QualityOption func(*QualityAssurance)

// WithQualityThreshold sets the pass/fail cutoff for the verdict field.
func WithQualityThreshold(t float64) QualityOption {
	return func(q *QualityAssurance) {
		q.threshold = t
	}
}

// NewQualityAssurance creates the scoring agent.
func NewQualityAssurance(opts ...QualityOption) *QualityAssurance {
	q := &QualityAssurance{threshold: 0.7}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

func (q *QualityAssurance) Name() string {
	return NameQualityAssurance
}

func (q *QualityAssurance) Execute(ctx context.Context, st *state.WorkflowState) (*state.WorkflowState, error) {
	completeness := q.scoreCompleteness(st)
	compliance := 1.0
	if score, ok := st.BrandCompliance["score"].(float64); ok {
		compliance = score
	}

	overall := (completeness + compliance) / 2

	st.QualityScores["completeness"] = completeness
	st.QualityScores["brand_compliance"] = compliance
	st.QualityScores["overall"] = overall

	verdict := "pass"
	if overall < q.threshold {
		verdict = "needs_review"
	}
	st.QualityScores["threshold"] = q.threshold
	st.FinalContent["quality_verdict"] = verdict
	return st, nil
}

// scoreCompleteness is the fraction of expected artifacts present on the
// state. Audio in fallback mode still counts: the phase completed, the
// artifact is just degraded.
func (q *QualityAssurance) scoreCompleteness(st *state.WorkflowState) float64 {
	present := 0
	checks := []bool{
		len(st.InputAnalysis) > 0,
		len(st.PlatformContent["plan"]) > 0,
		len(st.TextContent) > 0,
		len(st.ImageContent) > 0,
		len(st.AudioContent) > 0,
		len(st.BrandCompliance) > 0,
		len(st.PlatformContent["optimized"]) > 0,
	}
	for _, ok := range checks {
		if ok {
			present++
		}
	}
	return float64(present) / float64(len(checks))
}
