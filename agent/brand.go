package agent

import (
	"context"
	"strings"
	"time"

	"github.com/BaSui01/contentpipe/state"
)

// BrandVoice checks the generated text against a banned-phrase list and
// records a compliance score. Real brand-tone scoring is a swappable
// backend; this deterministic check keeps the phase honest in the router.
type BrandVoice struct {
	bannedPhrases []string
}

// NewBrandVoice creates the compliance agent.
func NewBrandVoice(bannedPhrases ...string) *BrandVoice {
	if len(bannedPhrases) == 0 {
		bannedPhrases = []string{"guaranteed results", "act now", "limited offer"}
	}
	return &BrandVoice{bannedPhrases: bannedPhrases}
}

func (b *BrandVoice) Name() string {
	return NameBrandVoice
}

func (b *BrandVoice) Execute(ctx context.Context, st *state.WorkflowState) (*state.WorkflowState, error) {
	body, _ := st.TextContent["body"].(string)
	lower := strings.ToLower(body)

	violations := make([]any, 0)
	for _, phrase := range b.bannedPhrases {
		if strings.Contains(lower, phrase) {
			violations = append(violations, phrase)
		}
	}

	score := 1.0 - 0.2*float64(len(violations))
	if score < 0 {
		score = 0
	}
	status := "compliant"
	if len(violations) > 0 {
		status = "violations_found"
	}

	st.BrandCompliance = map[string]any{
		"status":     status,
		"score":      score,
		"violations": violations,
		"checked_at": time.Now().UTC().Format(time.RFC3339),
	}
	return st, nil
}

// platformLimits is the per-platform length budget applied by CrossPlatform.
var platformLimits = map[string]int{
	"twitter":  280,
	"linkedin": 3000,
	"blog":     20000,
}

// CrossPlatform adapts the content to the target platform and marks the
// optimization artifact under platform_content["optimized"].
type CrossPlatform struct{}

// NewCrossPlatform creates the platform-optimization agent.
func NewCrossPlatform() *CrossPlatform {
	return &CrossPlatform{}
}

func (c *CrossPlatform) Name() string {
	return NameCrossPlatform
}

func (c *CrossPlatform) Execute(ctx context.Context, st *state.WorkflowState) (*state.WorkflowState, error) {
	platform := "blog"
	if plan, ok := st.PlatformContent["plan"]; ok {
		if p, _ := plan["platform"].(string); p != "" {
			platform = p
		}
	}

	limit, ok := platformLimits[platform]
	if !ok {
		limit = platformLimits["blog"]
	}

	body, _ := st.TextContent["body"].(string)
	truncated := false
	if len(body) > limit {
		st.TextContent["body"] = body[:limit]
		truncated = true
	}

	st.PlatformContent["optimized"] = map[string]any{
		"platform":     platform,
		"max_length":   limit,
		"truncated":    truncated,
		"optimized_at": time.Now().UTC().Format(time.RFC3339),
	}
	return st, nil
}
