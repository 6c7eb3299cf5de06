package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"sanctuary/internal/models"
)

const analysisPrompt = `Analyze the following journal entry. Determine the primary sentiment (positive, negative, or neutral) and extract up to 3 relevant tags that summarize the main topics. Return this as a JSON object with the keys 'sentiment' and 'tags'.

Journal entry: "%s"

Please respond with only a valid JSON object in this exact format:
{
  "sentiment": "positive|negative|neutral",
  "tags": ["tag1", "tag2", "tag3"]
}`

const maxTags = 3

// TextGenerator is the single-prompt side of the AI gateway.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// JournalAnalyzer asks the model for a sentiment and up to three tags.
type JournalAnalyzer struct {
	ai     TextGenerator
	logger *zap.Logger
}

func NewJournalAnalyzer(ai TextGenerator, logger *zap.Logger) *JournalAnalyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JournalAnalyzer{ai: ai, logger: logger}
}

// FallbackAnalysis is returned whenever the model cannot be used.
func FallbackAnalysis() models.JournalAnalysis {
	return models.JournalAnalysis{Sentiment: models.SentimentNeutral, Tags: []string{"journal", "entry"}}
}

// Analyze never fails; any problem yields FallbackAnalysis.
func (a *JournalAnalyzer) Analyze(ctx context.Context, content string) models.JournalAnalysis {
	response, err := a.ai.GenerateText(ctx, fmt.Sprintf(analysisPrompt, content))
	if err != nil {
		a.logger.Warn("journal analysis request failed", zap.Error(err))
		return FallbackAnalysis()
	}

	analysis, err := parseAnalysis(response)
	if err != nil {
		a.logger.Warn("journal analysis response rejected", zap.Error(err), zap.String("response", response))
		return FallbackAnalysis()
	}
	return analysis
}

var errAnalysisFormat = errors.New("invalid analysis response format")

type rawAnalysis struct {
	Sentiment any `json:"sentiment"`
	Tags      any `json:"tags"`
}

func parseAnalysis(response string) (models.JournalAnalysis, error) {
	var raw *rawAnalysis
	if err := json.Unmarshal([]byte(stripCodeFence(response)), &raw); err != nil {
		return models.JournalAnalysis{}, fmt.Errorf("decode analysis: %w", err)
	}
	if raw == nil || !truthy(raw.Sentiment) {
		return models.JournalAnalysis{}, errAnalysisFormat
	}
	tags, ok := raw.Tags.([]any)
	if !ok {
		return models.JournalAnalysis{}, errAnalysisFormat
	}

	sentiment := models.SentimentNeutral
	if s, ok := raw.Sentiment.(string); ok && models.Sentiment(s).Valid() {
		sentiment = models.Sentiment(s)
	}

	clean := make([]string, 0, maxTags)
	for _, t := range tags {
		s, ok := t.(string)
		if !ok || strings.TrimSpace(s) == "" {
			continue
		}
		clean = append(clean, strings.ToLower(strings.TrimSpace(s)))
		if len(clean) == maxTags {
			break
		}
	}
	return models.JournalAnalysis{Sentiment: sentiment, Tags: clean}, nil
}

// stripCodeFence removes a surrounding ``` or ```json fence.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case bool:
		return x
	case float64:
		return x != 0
	}
	return true
}
