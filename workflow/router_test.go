package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/BaSui01/contentpipe/agent"
	"github.com/BaSui01/contentpipe/state"
)

// buildState populates the artifact keys up to (but excluding) the named
// phase, mirroring a run that has progressed that far.
func buildState(through string) *state.WorkflowState {
	st := state.New(map[string]any{"text": "hello"})
	st.Status = state.StatusInProgress

	phases := []struct {
		name string
		fill func()
	}{
		{agent.NameInputAnalyzer, func() { st.InputAnalysis["keywords"] = []string{"hello"} }},
		{agent.NameContentPlanner, func() { st.PlatformContent["plan"] = map[string]any{"platform": "blog"} }},
		{agent.NameTextGenerator, func() { st.TextContent["body"] = "text" }},
		{agent.NameImageGenerator, func() { st.ImageContent["main_images"] = []any{"img"} }},
		{agent.NameAudioProcessor, func() { st.AudioContent["status"] = "fallback_mode" }},
		{agent.NameBrandVoice, func() { st.BrandCompliance["status"] = "compliant" }},
		{agent.NameCrossPlatform, func() { st.PlatformContent["optimized"] = map[string]any{"platform": "blog"} }},
		{agent.NameQualityAssurance, func() { st.QualityScores["overall"] = 0.9 }},
		{agent.NameHumanReview, func() { st.HumanFeedback = append(st.HumanFeedback, map[string]any{"approved": true}) }},
	}
	for _, p := range phases {
		if p.name == through {
			break
		}
		p.fill()
	}
	return st
}

func TestContentRouterPhaseOrder(t *testing.T) {
	r := NewContentRouter()

	order := []string{
		agent.NameInputAnalyzer,
		agent.NameContentPlanner,
		agent.NameTextGenerator,
		agent.NameImageGenerator,
		agent.NameAudioProcessor,
		agent.NameBrandVoice,
		agent.NameCrossPlatform,
		agent.NameQualityAssurance,
		agent.NameHumanReview,
	}
	for _, phase := range order {
		t.Run(phase, func(t *testing.T) {
			assert.Equal(t, phase, r.Route(buildState(phase)))
		})
	}
}

func TestContentRouterCompleteStateEnds(t *testing.T) {
	r := NewContentRouter()
	st := buildState("")
	assert.Equal(t, End, r.Route(st))
}

func TestContentRouterTerminalStatus(t *testing.T) {
	r := NewContentRouter()
	for _, status := range []state.Status{state.StatusFailed, state.StatusCancelled, state.StatusCompleted} {
		t.Run(string(status), func(t *testing.T) {
			st := state.New(map[string]any{"text": "hello"})
			st.Status = status
			assert.Equal(t, End, r.Route(st))
		})
	}
}

func TestContentRouterFallbackOutputAdvances(t *testing.T) {
	// An agent that degraded but still wrote its key must not be re-routed.
	r := NewContentRouter()
	st := buildState(agent.NameBrandVoice)
	assert.Equal(t, agent.NameBrandVoice, r.Route(st))
	assert.NotEqual(t, agent.NameAudioProcessor, r.Route(st))
}

func TestContentRouterParallelFanOut(t *testing.T) {
	r := NewContentRouter(WithParallelGeneration(true))

	st := buildState(agent.NameTextGenerator)
	assert.Equal(t, agent.NameParallelGeneration, r.Route(st))

	// Partially populated fan-out stays on the fan-out node.
	st.TextContent["body"] = "text"
	assert.Equal(t, agent.NameParallelGeneration, r.Route(st))

	st.ImageContent["main_images"] = []any{"img"}
	st.AudioContent["status"] = "fallback_mode"
	assert.Equal(t, agent.NameBrandVoice, r.Route(st))
}

// Routing must be a pure function of status plus key presence: two states
// agreeing on those route identically, and repeated calls never disagree.
func TestContentRouterDeterminism(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := NewContentRouter()

		build := func() *state.WorkflowState {
			st := state.New(map[string]any{"text": rapid.String().Draw(t, "text")})
			st.Status = state.StatusInProgress
			if rapid.Bool().Draw(t, "analysis") {
				st.InputAnalysis["k"] = "v"
			}
			if rapid.Bool().Draw(t, "plan") {
				st.PlatformContent["plan"] = map[string]any{"platform": "blog"}
			}
			if rapid.Bool().Draw(t, "textc") {
				st.TextContent["body"] = rapid.String().Draw(t, "body")
			}
			if rapid.Bool().Draw(t, "image") {
				st.ImageContent["main_images"] = []any{"img"}
			}
			if rapid.Bool().Draw(t, "audio") {
				st.AudioContent["status"] = "ok"
			}
			if rapid.Bool().Draw(t, "brand") {
				st.BrandCompliance["status"] = "compliant"
			}
			if rapid.Bool().Draw(t, "optimized") {
				st.PlatformContent["optimized"] = map[string]any{"platform": "blog"}
			}
			if rapid.Bool().Draw(t, "quality") {
				st.QualityScores["overall"] = rapid.Float64Range(0, 1).Draw(t, "score")
			}
			if rapid.Bool().Draw(t, "feedback") {
				st.HumanFeedback = append(st.HumanFeedback, map[string]any{"approved": true})
			}
			return st
		}

		st := build()
		first := r.Route(st)
		for i := 0; i < 3; i++ {
			if got := r.Route(st); got != first {
				t.Fatalf("routing not deterministic: %q then %q", first, got)
			}
		}

		// A state with the same key presence but different values routes the
		// same way.
		twin, err := st.Clone()
		if err != nil {
			t.Fatalf("clone: %v", err)
		}
		if len(twin.TextContent) > 0 {
			twin.TextContent["body"] = "different body"
		}
		if got := r.Route(twin); got != first {
			t.Fatalf("presence-equal states routed differently: %q vs %q", first, got)
		}
	})
}
