// File: internal/advisor/gemini.go
package advisor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/emelas-tomoro/llm-linter/api/schemas"
	"github.com/emelas-tomoro/llm-linter/internal/config"
	"github.com/emelas-tomoro/llm-linter/internal/snippet"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const systemInstruction = "You generate concise, actionable recommendations for the provided lint issues.\n" +
	"Return ONLY JSON with 'recommendations': [{path, line_start, rule, text, code_suggestion?}].\n" +
	"Keep each text concise; include code_suggestion only if short and necessary."

// GeminiAdvisor implements schemas.Advisor against the Gemini REST API. All
// calls are retried with exponential backoff and throttled by a client-side
// rate limiter so a large finding set cannot trip API quotas.
type GeminiAdvisor struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
	config     config.AdvisorConfig

	// snippets, when set, lets the advisor ground its recommendations in the
	// actual code around each finding.
	snippets *snippet.Reader
}

// maxSnippetFindings bounds how many findings get a code excerpt attached to
// the prompt.
const maxSnippetFindings = 20

// -- Gemini API Request/Response Structures (Internal to this file) --

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiSystemInstruction struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMimeType string  `json:"response_mime_type,omitempty"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
}

type geminiRequestPayload struct {
	Contents          []geminiContent          `json:"contents"`
	SystemInstruction *geminiSystemInstruction `json:"system_instruction,omitempty"`
	GenerationConfig  geminiGenerationConfig   `json:"generationConfig,omitempty"`
}

type geminiResponsePayload struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

type recommendationEnvelope struct {
	Recommendations []schemas.Recommendation `json:"recommendations"`
}

// NewGeminiAdvisor initializes the advisor client.
func NewGeminiAdvisor(cfg config.AdvisorConfig, logger *zap.Logger) (*GeminiAdvisor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Gemini API Key is required")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent", cfg.Model)
	}

	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &GeminiAdvisor{
		apiKey:   cfg.APIKey,
		endpoint: endpoint,
		config:   cfg,
		httpClient: &http.Client{
			Timeout: cfg.APITimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), burst),
		logger:  logger.Named("advisor.gemini"),
	}, nil
}

// WithSnippets attaches a snippet reader so prompts carry code excerpts for
// the most severe findings. Returns the advisor for chaining.
func (a *GeminiAdvisor) WithSnippets(r *snippet.Reader) *GeminiAdvisor {
	a.snippets = r
	return a
}

// Recommend sends the finding digests to the model and parses the returned
// recommendation tuples. The digests travel as a single JSON user message;
// rulesText, when present, is appended to the system instruction.
func (a *GeminiAdvisor) Recommend(ctx context.Context, findings []schemas.FindingDigest, rulesText string) ([]schemas.Recommendation, error) {
	if len(findings) == 0 {
		return nil, nil
	}

	body := map[string]any{"issues": findings}
	if excerpts := a.collectSnippets(findings); len(excerpts) > 0 {
		body["snippets"] = excerpts
	}
	userPrompt, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal findings: %w", err)
	}

	raw, err := a.generate(ctx, systemPrompt(rulesText), string(userPrompt))
	if err != nil {
		return nil, err
	}

	var envelope recommendationEnvelope
	if err := json.Unmarshal([]byte(stripFences(raw)), &envelope); err != nil {
		return nil, fmt.Errorf("advisor returned unparseable JSON: %w", err)
	}

	recs := envelope.Recommendations[:0]
	for _, r := range envelope.Recommendations {
		if r.Text == "" {
			continue
		}
		recs = append(recs, r)
	}
	return recs, nil
}

// collectSnippets reads the code around the first few line-anchored findings,
// keyed by "path:line". Findings without a line anchor are skipped.
func (a *GeminiAdvisor) collectSnippets(findings []schemas.FindingDigest) map[string]string {
	if a.snippets == nil {
		return nil
	}
	excerpts := make(map[string]string)
	for _, f := range findings {
		if len(excerpts) >= maxSnippetFindings {
			break
		}
		if f.LineStart == 0 {
			continue
		}
		key := fmt.Sprintf("%s:%d", f.Path, f.LineStart)
		if _, dup := excerpts[key]; dup {
			continue
		}
		if text := a.snippets.Read(f.Path, f.LineStart, f.LineEnd); text != "" {
			excerpts[key] = text
		}
	}
	return excerpts
}

func systemPrompt(rulesText string) string {
	if strings.TrimSpace(rulesText) == "" {
		return systemInstruction
	}
	return systemInstruction + "\nBest-practice guidelines to adhere to:\n" + rulesText
}

// generate performs the rate-limited, retried HTTP exchange and returns the
// first candidate's text.
func (a *GeminiAdvisor) generate(ctx context.Context, systemText, userText string) (string, error) {
	payload := geminiRequestPayload{
		Contents: []geminiContent{
			{
				Role:  "user",
				Parts: []geminiPart{{Text: userText}},
			},
		},
		SystemInstruction: &geminiSystemInstruction{
			Parts: []geminiPart{{Text: systemText}},
		},
		GenerationConfig: geminiGenerationConfig{
			Temperature:      a.config.Temperature,
			ResponseMimeType: "application/json",
			MaxOutputTokens:  a.config.MaxTokens,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request payload: %w", err)
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return "", err
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 2 * time.Minute
	b.MaxInterval = 30 * time.Second

	var responseContent string

	operation := func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewBuffer(body))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create HTTP request: %w", err))
		}

		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("x-goog-api-key", a.apiKey)

		startTime := time.Now()
		resp, err := a.httpClient.Do(httpReq)
		duration := time.Since(startTime)

		if err != nil {
			a.logger.Warn("Network error during advisor request, retrying...", zap.Error(err))
			return fmt.Errorf("failed to execute HTTP request: %w", err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			return a.handleAPIError(resp.StatusCode, respBody)
		}

		var responsePayload geminiResponsePayload
		if err := json.Unmarshal(respBody, &responsePayload); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode response payload: %w", err))
		}

		if len(responsePayload.Candidates) == 0 {
			return backoff.Permanent(fmt.Errorf("gemini API returned no candidates"))
		}

		candidate := responsePayload.Candidates[0]
		if len(candidate.Content.Parts) == 0 {
			if candidate.FinishReason == "SAFETY" || candidate.FinishReason == "BLOCKLIST" {
				return backoff.Permanent(fmt.Errorf("gemini API blocked the request (Reason: %s)", candidate.FinishReason))
			}
			return fmt.Errorf("gemini API returned empty content parts (Reason: %s)", candidate.FinishReason)
		}

		a.logger.Info("Advisor generation complete",
			zap.Duration("duration", duration),
			zap.Int("prompt_tokens", responsePayload.UsageMetadata.PromptTokenCount),
			zap.Int("completion_tokens", responsePayload.UsageMetadata.CandidatesTokenCount),
			zap.Int("total_tokens", responsePayload.UsageMetadata.TotalTokenCount),
		)

		responseContent = candidate.Content.Parts[0].Text
		return nil
	}

	if err = backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return "", err
	}

	return responseContent, nil
}

func (a *GeminiAdvisor) handleAPIError(statusCode int, body []byte) error {
	a.logger.Error("Gemini API returned error status", zap.Int("status", statusCode), zap.String("response", string(body)))
	err := fmt.Errorf("gemini API error: status %d, body: %s", statusCode, string(body))

	switch statusCode {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusInternalServerError:
		return err // Transient errors, retry.
	default:
		return backoff.Permanent(err) // Permanent errors.
	}
}

// stripFences removes a surrounding markdown code fence if the model wrapped
// its JSON despite the response mime type.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
