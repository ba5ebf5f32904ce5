package workflow

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/contentpipe/agent"
	"github.com/BaSui01/contentpipe/state"
)

// ParallelGeneration fans the text, image, and audio generators out over
// clones of the state and merges their disjoint output keys back into the
// parent. The whole fan-out counts as one engine step. Any branch error
// fails the node as a unit; the surviving branches' output is discarded so
// the router re-dispatches the full fan-out on retry.
type ParallelGeneration struct {
	text  agent.Agent
	image agent.Agent
	audio agent.Agent
}

// NewParallelGeneration creates the fan-out node over the three generation
// agents.
func NewParallelGeneration(text, image, audio agent.Agent) *ParallelGeneration {
	return &ParallelGeneration{text: text, image: image, audio: audio}
}

func (p *ParallelGeneration) Name() string {
	return agent.NameParallelGeneration
}

func (p *ParallelGeneration) Execute(ctx context.Context, st *state.WorkflowState) (*state.WorkflowState, error) {
	g, gctx := errgroup.WithContext(ctx)

	results := make([]*state.WorkflowState, 3)
	for i, a := range []agent.Agent{p.text, p.image, p.audio} {
		clone, err := st.Clone()
		if err != nil {
			return nil, agent.NewExecutionError(p.Name(), "state clone failed").WithCause(err)
		}
		i, a := i, a
		g.Go(func() error {
			out, err := a.Execute(gctx, clone)
			if err != nil {
				return err
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Each branch owns exactly one output mapping; merging is a straight
	// copy of that mapping from the branch clone.
	st.TextContent = results[0].TextContent
	st.ImageContent = results[1].ImageContent
	st.AudioContent = results[2].AudioContent
	return st, nil
}
