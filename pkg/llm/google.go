package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/harshbansal7/dealsense/credentials"
	dserrors "github.com/harshbansal7/dealsense/pkg/errors"
	"github.com/harshbansal7/dealsense/pkg/logging"
)

const (
	geminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent"

	// geminiTimeout bounds a single completion call. There is no retry:
	// a timed-out call drops the task for the current cycle.
	geminiTimeout = 60 * time.Second

	geminiMaxOutputTokens = 2000
	geminiTemperature     = 0.5
)

// GoogleProvider implements GroundingProvider against the Gemini REST API.
// Grounded calls enable the google_search tool and surface the returned
// grounding metadata.
type GoogleProvider struct {
	model  string
	log    logging.Logger
	client *http.Client
	calls  atomic.Int64
}

// NewGoogleProvider creates a Gemini-backed provider for the given model.
func NewGoogleProvider(model string, log logging.Logger) *GoogleProvider {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &GoogleProvider{
		model:  model,
		log:    log.With(logging.F("provider", "google"), logging.F("model", model)),
		client: &http.Client{Timeout: geminiTimeout},
	}
}

// CallCount returns the number of API calls made by this provider.
func (p *GoogleProvider) CallCount() int64 {
	return p.calls.Load()
}

// IsAvailable reports whether Google API credentials are configured.
func (p *GoogleProvider) IsAvailable() bool {
	return credentials.APIKey("google") != ""
}

// geminiRequest is the generateContent request payload.
type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
	Tools            []geminiTool           `json:"tools,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens"`
	Temperature     float64 `json:"temperature"`
}

type geminiTool struct {
	GoogleSearch struct{} `json:"google_search"`
}

// geminiResponse is the subset of the generateContent response the pipeline
// consumes.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
		GroundingMetadata *struct {
			WebSearchQueries []string `json:"webSearchQueries"`
			GroundingChunks  []struct {
				Web struct {
					URI   string `json:"uri"`
					Title string `json:"title"`
				} `json:"web"`
			} `json:"groundingChunks"`
			GroundingSupports []struct {
				Segment struct {
					StartIndex int    `json:"startIndex"`
					EndIndex   int    `json:"endIndex"`
					Text       string `json:"text"`
				} `json:"segment"`
				GroundingChunkIndices []int `json:"groundingChunkIndices"`
			} `json:"groundingSupports"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
}

// Call submits a plain completion request.
func (p *GoogleProvider) Call(ctx context.Context, prompt string) (string, error) {
	body, err := p.generate(ctx, prompt, false)
	if err != nil {
		return "", err
	}

	text := body.text()
	if text == "" {
		return "", fmt.Errorf("gemini: %w", dserrors.ErrEmptyResponse)
	}
	return text, nil
}

// CallWithGrounding submits a completion request with the google_search tool
// enabled and extracts the grounding metadata from the reply.
func (p *GoogleProvider) CallWithGrounding(ctx context.Context, prompt string) (*GroundedResponse, error) {
	body, err := p.generate(ctx, prompt, true)
	if err != nil {
		return nil, err
	}

	text := body.text()
	if text == "" {
		return nil, fmt.Errorf("gemini grounded: %w", dserrors.ErrEmptyResponse)
	}

	resp := &GroundedResponse{Text: text}
	if md := body.groundingMetadata(); md != nil {
		resp.GroundingMetadata = md
		p.log.Debug("extracted grounding metadata",
			logging.F("search_queries", len(md.WebSearchQueries)),
			logging.F("chunks", len(md.GroundingChunks)),
			logging.F("supports", len(md.GroundingSupports)))
	}
	return resp, nil
}

// generate performs one generateContent call and decodes the response.
func (p *GoogleProvider) generate(ctx context.Context, prompt string, grounded bool) (*geminiResponse, error) {
	apiKey := credentials.APIKey("google")
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: %w: no Google API key configured", dserrors.ErrUnavailable)
	}

	callNumber := p.calls.Add(1)
	start := time.Now()

	reqBody := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenerationConfig{
			MaxOutputTokens: geminiMaxOutputTokens,
			Temperature:     geminiTemperature,
		},
	}
	if grounded {
		reqBody.Tools = []geminiTool{{}}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to marshal request: %w", err)
	}

	url := fmt.Sprintf(geminiEndpoint, p.model) + "?key=" + apiKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	p.log.Debug("gemini request",
		logging.F("call_number", callNumber),
		logging.F("grounded", grounded),
		logging.F("prompt_chars", len(prompt)))

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		p.log.Warn("gemini request failed",
			logging.F("call_number", callNumber),
			logging.F("status", resp.StatusCode),
			logging.F("duration", time.Since(start)))
		return nil, fmt.Errorf("gemini: request failed with status %d: %s", resp.StatusCode, truncate(string(raw), 500))
	}

	var body geminiResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("gemini: failed to parse response: %w", err)
	}

	p.log.Debug("gemini response",
		logging.F("call_number", callNumber),
		logging.F("grounded", grounded),
		logging.F("duration", time.Since(start)))
	return &body, nil
}

// text returns the first candidate's first text part, or "".
func (r *geminiResponse) text() string {
	if len(r.Candidates) == 0 || len(r.Candidates[0].Content.Parts) == 0 {
		return ""
	}
	return r.Candidates[0].Content.Parts[0].Text
}

// groundingMetadata flattens the wire metadata into the pipeline shape.
func (r *geminiResponse) groundingMetadata() *GroundingMetadata {
	if len(r.Candidates) == 0 || r.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	wire := r.Candidates[0].GroundingMetadata

	md := &GroundingMetadata{WebSearchQueries: wire.WebSearchQueries}
	for _, c := range wire.GroundingChunks {
		md.GroundingChunks = append(md.GroundingChunks, GroundingChunk{
			URI:   c.Web.URI,
			Title: c.Web.Title,
		})
	}
	for _, s := range wire.GroundingSupports {
		md.GroundingSupports = append(md.GroundingSupports, GroundingSupport{
			Segment: Segment{
				StartIndex: s.Segment.StartIndex,
				EndIndex:   s.Segment.EndIndex,
				Text:       s.Segment.Text,
			},
			ChunkIndices: s.GroundingChunkIndices,
		})
	}
	return md
}

// truncate shortens a string for log and error messages.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
