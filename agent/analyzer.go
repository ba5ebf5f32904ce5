package agent

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/BaSui01/contentpipe/state"
)

// Routing names of the built-in content agents.
const (
	NameInputAnalyzer      = "InputAnalyzer"
	NameContentPlanner     = "ContentPlanner"
	NameTextGenerator      = "TextGenerator"
	NameImageGenerator     = "ImageGenerator"
	NameAudioProcessor     = "AudioProcessor"
	NameBrandVoice         = "BrandVoice"
	NameCrossPlatform      = "CrossPlatform"
	NameQualityAssurance   = "QualityAssurance"
	NameHumanReview        = "HumanReview"
	NameParallelGeneration = "ParallelGeneration"
)

// InputAnalyzer extracts themes, keywords, and basic characteristics from
// the original input. Analysis is keyword-based and deterministic.
type InputAnalyzer struct{}

// NewInputAnalyzer creates the analysis agent.
func NewInputAnalyzer() *InputAnalyzer {
	return &InputAnalyzer{}
}

func (a *InputAnalyzer) Name() string {
	return NameInputAnalyzer
}

func (a *InputAnalyzer) Execute(ctx context.Context, st *state.WorkflowState) (*state.WorkflowState, error) {
	text, _ := st.OriginalInput["text"].(string)
	if text == "" {
		return nil, NewValidationError(a.Name(), "no input text provided for analysis")
	}

	contentType, _ := st.OriginalInput["content_type"].(string)
	if contentType == "" {
		contentType = "blog_post"
	}

	st.InputAnalysis = map[string]any{
		"keywords":     extractKeywords(text, 8),
		"word_count":   len(strings.Fields(text)),
		"sentiment":    scoreSentiment(text),
		"content_type": contentType,
		"analyzed_at":  time.Now().UTC().Format(time.RFC3339),
	}
	return st, nil
}

// extractKeywords returns up to max distinct lower-cased words longer than
// three characters, ordered by frequency then alphabetically for stable
// output.
func extractKeywords(text string, max int) []string {
	counts := make(map[string]int)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,;:!?\"'()[]")
		if len(w) > 3 {
			counts[w]++
		}
	}

	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})

	if len(words) > max {
		words = words[:max]
	}
	return words
}

var positiveWords = map[string]bool{
	"good": true, "great": true, "excellent": true, "improve": true,
	"benefit": true, "success": true, "innovative": true, "growth": true,
}

var negativeWords = map[string]bool{
	"bad": true, "poor": true, "risk": true, "problem": true,
	"failure": true, "decline": true, "threat": true, "crisis": true,
}

// scoreSentiment is a naive wordlist classifier. Real sentiment analysis is
// a swappable backend behind the same agent contract.
func scoreSentiment(text string) string {
	score := 0
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,;:!?\"'()[]")
		if positiveWords[w] {
			score++
		}
		if negativeWords[w] {
			score--
		}
	}
	switch {
	case score > 0:
		return "positive"
	case score < 0:
		return "negative"
	default:
		return "neutral"
	}
}
