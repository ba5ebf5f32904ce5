package agent

import (
	"context"
	"time"

	"github.com/BaSui01/contentpipe/state"
)

// ContentPlanner turns the input analysis into a platform-aware content
// plan stored under platform_content["plan"]. The plan is the routing
// artifact every generation agent reads.
type ContentPlanner struct{}

// NewContentPlanner creates the planning agent.
func NewContentPlanner() *ContentPlanner {
	return &ContentPlanner{}
}

func (p *ContentPlanner) Name() string {
	return NameContentPlanner
}

func (p *ContentPlanner) Execute(ctx context.Context, st *state.WorkflowState) (*state.WorkflowState, error) {
	if len(st.InputAnalysis) == 0 {
		return nil, NewExecutionError(p.Name(), "input analysis missing, cannot plan content")
	}

	platform, _ := st.OriginalInput["platform"].(string)
	if platform == "" {
		platform = "blog"
	}

	tone := "informative"
	if sentiment, _ := st.InputAnalysis["sentiment"].(string); sentiment == "positive" {
		tone = "enthusiastic"
	}

	st.PlatformContent["plan"] = map[string]any{
		"platform":   platform,
		"tone":       tone,
		"sections":   []any{"introduction", "body", "conclusion"},
		"keywords":   st.InputAnalysis["keywords"],
		"planned_at": time.Now().UTC().Format(time.RFC3339),
	}
	return st, nil
}
