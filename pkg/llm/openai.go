package llm

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"github.com/harshbansal7/dealsense/credentials"
	dserrors "github.com/harshbansal7/dealsense/pkg/errors"
	"github.com/harshbansal7/dealsense/pkg/logging"
)

const openaiMaxOutputTokens = 2000

// OpenAIProvider implements Provider using the OpenAI Responses API. It does
// not satisfy GroundingProvider: the Responses API exposes no web-source
// offset metadata, so grounded summaries are unavailable on this backend.
type OpenAIProvider struct {
	model  string
	log    logging.Logger
	client *openai.Client
	calls  atomic.Int64
}

// NewOpenAIProvider creates an OpenAI-backed provider for the given model.
func NewOpenAIProvider(model string, log logging.Logger) *OpenAIProvider {
	if log == nil {
		log = logging.NewNopLogger()
	}

	p := &OpenAIProvider{
		model: model,
		log:   log.With(logging.F("provider", "openai"), logging.F("model", model)),
	}
	if apiKey := credentials.APIKey("openai"); apiKey != "" {
		client := openai.NewClient(option.WithAPIKey(apiKey))
		p.client = &client
	}
	return p
}

// CallCount returns the number of API calls made by this provider.
func (p *OpenAIProvider) CallCount() int64 {
	return p.calls.Load()
}

// IsAvailable reports whether an OpenAI API key was configured at construction.
func (p *OpenAIProvider) IsAvailable() bool {
	return p.client != nil
}

// Call submits a completion request via the Responses API.
func (p *OpenAIProvider) Call(ctx context.Context, prompt string) (string, error) {
	if p.client == nil {
		return "", fmt.Errorf("openai: %w: no OpenAI API key configured", dserrors.ErrUnavailable)
	}

	callNumber := p.calls.Add(1)
	start := time.Now()

	resp, err := p.client.Responses.New(ctx, responses.ResponseNewParams{
		Model:           p.model,
		MaxOutputTokens: openai.Int(openaiMaxOutputTokens),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: openai.String(prompt),
		},
	})
	if err != nil {
		p.log.Warn("openai request failed",
			logging.F("call_number", callNumber),
			logging.Err(err),
			logging.F("duration", time.Since(start)))
		return "", fmt.Errorf("openai: request failed: %w", err)
	}

	text := resp.OutputText()
	if text == "" {
		return "", fmt.Errorf("openai: %w", dserrors.ErrEmptyResponse)
	}

	p.log.Debug("openai response",
		logging.F("call_number", callNumber),
		logging.F("response_chars", len(text)),
		logging.F("duration", time.Since(start)))
	return text, nil
}
