package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/BaSui01/contentpipe/state"
)

// defaultProviderLimiter throttles simulated provider calls shared by all
// generation agents, mirroring the per-provider rate limits real LLM and
// media backends impose.
var defaultProviderLimiter = rate.NewLimiter(rate.Limit(50), 10)

// TextGenerator produces the main text artifact from the content plan.
type TextGenerator struct {
	limiter *rate.Limiter
}

// NewTextGenerator creates the text generation agent.
func NewTextGenerator() *TextGenerator {
	return &TextGenerator{limiter: defaultProviderLimiter}
}

func (g *TextGenerator) Name() string {
	return NameTextGenerator
}

func (g *TextGenerator) Execute(ctx context.Context, st *state.WorkflowState) (*state.WorkflowState, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, NewExternalError(g.Name(), "rate limit wait aborted").WithCause(err)
	}

	plan, ok := st.PlatformContent["plan"]
	if !ok {
		return nil, NewExecutionError(g.Name(), "content plan missing")
	}

	topic, _ := st.OriginalInput["text"].(string)
	tone, _ := plan["tone"].(string)

	title := fmt.Sprintf("%s: an overview", strings.TrimSpace(topic))
	body := fmt.Sprintf("This %s piece covers %s across %d sections.",
		tone, topic, planSectionCount(plan))

	st.TextContent["title"] = title
	st.TextContent["body"] = body
	st.TextContent["word_count"] = len(strings.Fields(body))
	st.TextContent["generated_at"] = time.Now().UTC().Format(time.RFC3339)
	return st, nil
}

func planSectionCount(plan map[string]any) int {
	if sections, ok := plan["sections"].([]any); ok {
		return len(sections)
	}
	return 1
}

// ImageGenerator produces image artifacts for the planned content.
type ImageGenerator struct {
	limiter *rate.Limiter
}

// NewImageGenerator creates the image generation agent.
func NewImageGenerator() *ImageGenerator {
	return &ImageGenerator{limiter: defaultProviderLimiter}
}

func (g *ImageGenerator) Name() string {
	return NameImageGenerator
}

func (g *ImageGenerator) Execute(ctx context.Context, st *state.WorkflowState) (*state.WorkflowState, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, NewExternalError(g.Name(), "rate limit wait aborted").WithCause(err)
	}

	topic, _ := st.OriginalInput["text"].(string)
	slug := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(topic)), " ", "-")

	st.ImageContent["main_images"] = []any{
		fmt.Sprintf("generated://images/%s/cover.png", slug),
	}
	st.ImageContent["alt_text"] = fmt.Sprintf("Illustration for %s", topic)
	st.ImageContent["generated_at"] = time.Now().UTC().Format(time.RFC3339)
	return st, nil
}

// Synthesizer is the narrow contract for an audio backend. When no backend
// is configured the AudioProcessor degrades to fallback mode.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (string, error)
}

// AudioProcessor produces an audio artifact from the generated text, or a
// fallback artifact when no synthesizer is available. The fallback still
// writes the audio_content key: the router treats any non-empty mapping as
// phase complete, so a degraded run advances instead of looping.
type AudioProcessor struct {
	limiter     *rate.Limiter
	synthesizer Synthesizer
}

// AudioOption configures an AudioProcessor.
type AudioOption func(*AudioProcessor)

// WithSynthesizer attaches a real audio backend.
func WithSynthesizer(s Synthesizer) AudioOption {
	return func(a *AudioProcessor) {
		a.synthesizer = s
	}
}

// NewAudioProcessor creates the audio agent.
func NewAudioProcessor(opts ...AudioOption) *AudioProcessor {
	a := &AudioProcessor{limiter: defaultProviderLimiter}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *AudioProcessor) Name() string {
	return NameAudioProcessor
}

func (a *AudioProcessor) Execute(ctx context.Context, st *state.WorkflowState) (*state.WorkflowState, error) {
	body, _ := st.TextContent["body"].(string)

	if a.synthesizer == nil || body == "" {
		st.AudioContent["status"] = "fallback_mode"
		st.AudioContent["generated"] = false
		return st, nil
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return nil, NewExternalError(a.Name(), "rate limit wait aborted").WithCause(err)
	}

	uri, err := a.synthesizer.Synthesize(ctx, body)
	if err != nil {
		return nil, NewExternalError(a.Name(), "audio synthesis failed").WithCause(err)
	}

	st.AudioContent["main_audio"] = uri
	st.AudioContent["generated"] = true
	st.AudioContent["generated_at"] = time.Now().UTC().Format(time.RFC3339)
	return st, nil
}
