package workflow

import (
	"github.com/BaSui01/contentpipe/agent"
	"github.com/BaSui01/contentpipe/state"
)

// End is the router verdict that terminates the run.
const End = "__end__"

// Router decides which agent runs next given the current state, or End to
// terminate. Implementations must be pure functions of the state: same
// status and same content-key presence always yields the same verdict.
type Router interface {
	Route(st *state.WorkflowState) string
}

// RouteFunc adapts a plain function to the Router interface.
type RouteFunc func(st *state.WorkflowState) string

func (f RouteFunc) Route(st *state.WorkflowState) string {
	return f(st)
}

// ContentRouter is the data-presence state machine of the content pipeline.
// There is no step pointer: progress is inferred from which output keys the
// agents have written, so a resumed or hand-assembled state routes correctly
// no matter where it left off. Agents must always write their output key,
// even in degraded mode, or the engine's step ceiling is the only thing
// stopping an infinite reroute.
type ContentRouter struct {
	parallel bool
}

// ContentRouterOption configures a ContentRouter.
type ContentRouterOption func(*ContentRouter)

// WithParallelGeneration replaces the sequential text, image, and audio
// phases with a single fan-out node that runs all three concurrently.
func WithParallelGeneration(enabled bool) ContentRouterOption {
	return func(r *ContentRouter) {
		r.parallel = enabled
	}
}

// NewContentRouter creates the default pipeline router.
func NewContentRouter(opts ...ContentRouterOption) *ContentRouter {
	r := &ContentRouter{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Route applies the pipeline rules in priority order, first match wins.
func (r *ContentRouter) Route(st *state.WorkflowState) string {
	if st.Status.Terminal() {
		return End
	}
	if len(st.InputAnalysis) == 0 {
		return agent.NameInputAnalyzer
	}
	if len(st.PlatformContent["plan"]) == 0 {
		return agent.NameContentPlanner
	}
	if r.parallel {
		// The fan-out node covers all three generation phases; advance only
		// once every expected key is populated.
		if len(st.TextContent) == 0 || len(st.ImageContent) == 0 || len(st.AudioContent) == 0 {
			return agent.NameParallelGeneration
		}
	} else {
		if len(st.TextContent) == 0 {
			return agent.NameTextGenerator
		}
		if len(st.ImageContent) == 0 {
			return agent.NameImageGenerator
		}
		if len(st.AudioContent) == 0 {
			return agent.NameAudioProcessor
		}
	}
	if len(st.BrandCompliance) == 0 {
		return agent.NameBrandVoice
	}
	if len(st.PlatformContent["optimized"]) == 0 {
		return agent.NameCrossPlatform
	}
	if _, ok := st.QualityScores["overall"]; !ok {
		return agent.NameQualityAssurance
	}
	if len(st.HumanFeedback) == 0 {
		return agent.NameHumanReview
	}
	return End
}
