// Package ai is the gateway to the generative model: key checks, a
// connectivity pre-flight for chat, retries with backoff, and classification
// of failures into the Error taxonomy.
package ai

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// placeholderKey is what the shipped config contains until the user sets a key.
const placeholderKey = "YOUR_API_KEY_HERE"

const (
	RoleUser  = "user"
	RoleModel = "model"
)

// ChatTurn is one prior message in a conversation.
type ChatTurn struct {
	Role  string
	Parts []string
}

// Backend is the model transport.
type Backend interface {
	Generate(ctx context.Context, prompt string) (string, error)
	GenerateStream(ctx context.Context, prompt string, onChunk func(chunk string) error) error
	// Chat seeds a fresh session with history and sends message.
	Chat(ctx context.Context, history []ChatTurn, message string) (string, error)
}

type Gateway struct {
	apiKey       string
	backend      Backend
	connectivity ConnectivityChecker
	retry        RetryPolicy
	logger       *zap.Logger
}

type GatewayOption func(*Gateway)

func WithConnectivity(c ConnectivityChecker) GatewayOption {
	return func(g *Gateway) { g.connectivity = c }
}

func WithRetryPolicy(p RetryPolicy) GatewayOption {
	return func(g *Gateway) { g.retry = p }
}

// NewGateway builds a gateway. backend may be nil when no key is configured;
// every call then fails with ErrConfiguration.
func NewGateway(apiKey string, backend Backend, logger *zap.Logger, opts ...GatewayOption) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Gateway{
		apiKey:       apiKey,
		backend:      backend,
		connectivity: AlwaysOnline{},
		retry:        DefaultRetryPolicy(),
		logger:       logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Configured reports whether a real API key is set.
func (g *Gateway) Configured() bool {
	return KeyConfigured(g.apiKey) && g.backend != nil
}

func KeyConfigured(key string) bool {
	return key != "" && key != placeholderKey
}

// GenerateText sends a single prompt, without retries.
func (g *Gateway) GenerateText(ctx context.Context, prompt string) (string, error) {
	if !g.Configured() {
		return "", ErrConfiguration
	}

	text, err := g.backend.Generate(ctx, prompt)
	if err != nil {
		err = classify(err)
		g.logger.Warn("generate text", zap.String("kind", string(KindOf(err))), zap.Error(err))
		return "", err
	}
	return text, nil
}

// GenerateTextStream delivers the reply in chunks. An error from onChunk
// stops the stream and is returned as is.
func (g *Gateway) GenerateTextStream(ctx context.Context, prompt string, onChunk func(chunk string) error) error {
	if !g.Configured() {
		return ErrConfiguration
	}

	var chunkErr error
	err := g.backend.GenerateStream(ctx, prompt, func(chunk string) error {
		if err := onChunk(chunk); err != nil {
			chunkErr = err
			return err
		}
		return nil
	})
	if err == nil {
		return nil
	}
	if chunkErr != nil && errors.Is(err, chunkErr) {
		return chunkErr
	}
	err = classify(err)
	g.logger.Warn("generate text stream", zap.String("kind", string(KindOf(err))), zap.Error(err))
	return err
}

// ChatWithHistory sends message in a conversation seeded with history. The
// network is checked first; network failures are retried while it stays
// reachable. Other failures are returned at once.
func (g *Gateway) ChatWithHistory(ctx context.Context, history []ChatTurn, message string) (string, error) {
	if !g.Configured() {
		return "", ErrConfiguration
	}
	if !g.connectivity.Online(ctx) {
		return "", newError(KindNetwork, msgOffline, nil)
	}

	var reply string
	attempt := 0
	err := g.retry.Retry(ctx,
		func(ctx context.Context) error {
			attempt++
			text, err := g.backend.Chat(ctx, history, message)
			if err != nil {
				return classify(err)
			}
			reply = text
			return nil
		},
		func(ctx context.Context, err error) error {
			if !errors.Is(err, ErrNetwork) {
				return err
			}
			g.logger.Warn("chat attempt failed",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", g.retry.MaxAttempts),
				zap.Error(err))
			if !g.connectivity.Online(ctx) {
				return newError(KindNetwork, msgOffline, err)
			}
			return nil
		},
	)
	if err != nil {
		return "", fmt.Errorf("chat after %d attempt(s): %w", attempt, err)
	}
	return reply, nil
}
