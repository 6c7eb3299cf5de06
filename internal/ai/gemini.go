package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GenerationConfig holds the sampling settings sent with every request.
type GenerationConfig struct {
	Model           string
	Temperature     float32
	TopK            int32
	TopP            float32
	MaxOutputTokens int32
}

func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Model:           "gemini-2.5-flash",
		Temperature:     0.8,
		TopK:            40,
		TopP:            0.95,
		MaxOutputTokens: 2048,
	}
}

// GeminiBackend talks to the Gemini API through the generative-ai-go client.
type GeminiBackend struct {
	client *genai.Client
	cfg    GenerationConfig
}

func NewGeminiBackend(ctx context.Context, apiKey string, cfg GenerationConfig) (*GeminiBackend, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("ai.NewGeminiBackend: %w", err)
	}
	return &GeminiBackend{client: client, cfg: cfg}, nil
}

func (b *GeminiBackend) Close() error {
	return b.client.Close()
}

func (b *GeminiBackend) model() *genai.GenerativeModel {
	m := b.client.GenerativeModel(b.cfg.Model)
	m.SetTemperature(b.cfg.Temperature)
	m.SetTopK(b.cfg.TopK)
	m.SetTopP(b.cfg.TopP)
	m.SetMaxOutputTokens(b.cfg.MaxOutputTokens)
	return m
}

func (b *GeminiBackend) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := b.model().GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	return responseText(resp), nil
}

func (b *GeminiBackend) GenerateStream(ctx context.Context, prompt string, onChunk func(string) error) error {
	iter := b.model().GenerateContentStream(ctx, genai.Text(prompt))
	for {
		resp, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return err
		}
		if text := responseText(resp); text != "" {
			if err := onChunk(text); err != nil {
				return err
			}
		}
	}
}

func (b *GeminiBackend) Chat(ctx context.Context, history []ChatTurn, message string) (string, error) {
	session := b.model().StartChat()
	session.History = make([]*genai.Content, 0, len(history))
	for _, turn := range history {
		content := &genai.Content{Role: turn.Role}
		for _, p := range turn.Parts {
			content.Parts = append(content.Parts, genai.Text(p))
		}
		session.History = append(session.History, content)
	}

	resp, err := session.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return "", err
	}
	return responseText(resp), nil
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}
