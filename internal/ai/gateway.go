// Package ai turns natural-language project descriptions into wiring
// diagrams, firmware, bills of materials and component guides by calling an
// OpenAI-compatible chat completions API in JSON mode.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/isdelr/circuitgen-be/internal/config"
	"github.com/isdelr/circuitgen-be/internal/metrics"
	"github.com/isdelr/circuitgen-be/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker/v2"
)

var (
	// ErrUpstreamFormat means the model answered with something that is not
	// the requested JSON object. Retrying may succeed.
	ErrUpstreamFormat = errors.New("AI returned invalid output")
	// ErrUpstreamTransport covers network failures and non-2xx responses.
	ErrUpstreamTransport = errors.New("AI service request failed")
	// ErrUpstreamUnavailable is returned without calling upstream while the
	// breaker is open.
	ErrUpstreamUnavailable = errors.New("AI service temporarily unavailable")
)

// Completer is the subset of the OpenAI client the gateway needs.
type Completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Generator defines the generation operations exposed to the API layer.
type Generator interface {
	GenerateDiagram(ctx context.Context, query string) (models.Diagram, error)
	GenerateCode(ctx context.Context, query string) (models.CodeResult, error)
	GenerateBOM(ctx context.Context, query string) (models.BOM, error)
	GenerateComponentDetails(ctx context.Context, name, category string) (models.ComponentDetails, error)
}

// Gateway implements Generator. Each operation makes exactly one upstream
// call and never retries.
type Gateway struct {
	client  Completer
	model   string
	breaker *gobreaker.CircuitBreaker[openai.ChatCompletionResponse]
}

// New creates a Gateway backed by the OpenAI client.
func New(cfg config.AIConfig) *Gateway {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return NewWithClient(openai.NewClientWithConfig(clientCfg), cfg.Model, DefaultBreakerSettings)
}

// NewWithClient creates a Gateway over an arbitrary Completer.
func NewWithClient(client Completer, model string, breaker BreakerSettings) *Gateway {
	return &Gateway{client: client, model: model, breaker: newBreaker(breaker)}
}

// GenerateDiagram synthesizes a wiring diagram for query.
func (g *Gateway) GenerateDiagram(ctx context.Context, query string) (models.Diagram, error) {
	var d models.Diagram
	if err := g.complete(ctx, "diagram", []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: diagramSystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: diagramInstruction(query)},
	}, &d); err != nil {
		return models.Diagram{}, err
	}
	d.Normalize()
	return d, nil
}

// GenerateCode synthesizes firmware for the circuit described by query.
func (g *Gateway) GenerateCode(ctx context.Context, query string) (models.CodeResult, error) {
	var c models.CodeResult
	if err := g.complete(ctx, "code", []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: codeSystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: codeInstruction(query)},
	}, &c); err != nil {
		return models.CodeResult{}, err
	}
	return c, nil
}

// GenerateBOM estimates a bill of materials for query.
func (g *Gateway) GenerateBOM(ctx context.Context, query string) (models.BOM, error) {
	var b models.BOM
	if err := g.complete(ctx, "bom", []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: bomSystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: bomInstruction(query)},
	}, &b); err != nil {
		return models.BOM{}, err
	}
	b.Normalize()
	return b, nil
}

// GenerateComponentDetails writes a beginner guide for a catalog component.
func (g *Gateway) GenerateComponentDetails(ctx context.Context, name, category string) (models.ComponentDetails, error) {
	var d models.ComponentDetails
	if err := g.complete(ctx, "component_details", []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: componentDetailsPrompt(name, category)},
	}, &d); err != nil {
		return models.ComponentDetails{}, err
	}
	return d, nil
}

// complete performs one JSON-mode call and decodes the first choice into out.
func (g *Gateway) complete(ctx context.Context, kind string, messages []openai.ChatCompletionMessage, out any) error {
	start := time.Now()
	err := g.do(ctx, messages, out)
	metrics.GenerationDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	metrics.Generations.WithLabelValues(kind, outcome(err)).Inc()
	if err != nil {
		log.Error().Err(err).Str("kind", kind).Str("model", g.model).Msg("Generation failed")
	}
	return err
}

func (g *Gateway) do(ctx context.Context, messages []openai.ChatCompletionMessage, out any) error {
	resp, err := g.breaker.Execute(func() (openai.ChatCompletionResponse, error) {
		return g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    g.model,
			Messages: messages,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		})
	})
	if err != nil {
		if isBreakerRejection(err) {
			return fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
		}
		return fmt.Errorf("%w: %w", ErrUpstreamTransport, err)
	}

	if len(resp.Choices) == 0 {
		return fmt.Errorf("%w: response has no choices", ErrUpstreamFormat)
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return fmt.Errorf("%w: empty message content", ErrUpstreamFormat)
	}
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("%w: %w", ErrUpstreamFormat, err)
	}
	return nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrUpstreamUnavailable):
		return "rejected"
	case errors.Is(err, ErrUpstreamFormat):
		return "format_error"
	default:
		return "transport_error"
	}
}
