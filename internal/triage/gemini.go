package triage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/IshaanBansal2006/p5-sub000/internal/types"
)

// ErrEmptyResponse is returned when the model produced no usable candidate.
var ErrEmptyResponse = errors.New("classifier returned no content")

const classifyPrompt = `You are an error triage assistant for a build verification pipeline.
Cluster near-duplicate errors that share intent, assign each cluster a severity,
and optionally propose a one-line fix.

Severity rules (apply them exactly):
- build, typecheck, and test failures, and website runtime/console errors: "high"
- lint (static analysis) errors: "medium"
- warnings and stylistic issues: "low"

Respond with a JSON array only, no markdown. Each element:
{
  "taskName": "...",
  "errorKind": "lint|typecheck|build|test|website|unknown",
  "severity": "high|medium|low",
  "message": "representative message for the cluster",
  "file": "optional file path",
  "line": 0,
  "category": "optional short category",
  "suggestedFix": "optional one-line fix",
  "count": 1
}`

// GeminiClassifier clusters errors with the Gemini API. Every call is
// bounded by its own timeout; any failure selects the rule-based fallback at
// the call site.
type GeminiClassifier struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiClassifier creates the AI-assisted classifier.
func NewGeminiClassifier(ctx context.Context, apiKey, model string, timeout time.Duration) (*GeminiClassifier, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiClassifier{client: client, model: model, timeout: timeout}, nil
}

// Classify asks the model for severity-ranked clusters.
func (g *GeminiClassifier) Classify(ctx context.Context, errs []types.DetailedError) ([]ClassifiedError, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	input, err := json.MarshalIndent(errs, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode errors: %w", err)
	}
	full := classifyPrompt + "\n\n[INPUT JSON]\n" + string(input)

	resp, err := g.client.Models.GenerateContent(callCtx, g.model,
		[]*genai.Content{genai.NewContentFromText(full, genai.RoleUser)},
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		return nil, fmt.Errorf("GenAI classify failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, ErrEmptyResponse
	}

	return parseClassification(resp.Candidates[0].Content.Parts[0].Text)
}

// parseClassification decodes the model's JSON, tolerating markdown code
// fences around the payload.
func parseClassification(response string) ([]ClassifiedError, error) {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)

	var raw []struct {
		TaskName     string `json:"taskName"`
		ErrorKind    string `json:"errorKind"`
		Severity     string `json:"severity"`
		Message      string `json:"message"`
		File         string `json:"file"`
		Line         int    `json:"line"`
		Category     string `json:"category"`
		SuggestedFix string `json:"suggestedFix"`
		Count        int    `json:"count"`
	}
	if err := json.Unmarshal([]byte(response), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse classification JSON: %w", err)
	}
	if len(raw) == 0 {
		return nil, ErrEmptyResponse
	}

	out := make([]ClassifiedError, 0, len(raw))
	for _, r := range raw {
		if r.Message == "" {
			continue
		}
		kind := types.ErrorKind(r.ErrorKind)
		severity := types.Priority(r.Severity)
		switch severity {
		case types.PriorityHigh, types.PriorityMedium, types.PriorityLow:
		default:
			// The model wandered off the rules; re-derive deterministically.
			severity = SeverityFor(kind, types.SeverityError)
		}
		count := r.Count
		if count < 1 {
			count = 1
		}
		ce := ClassifiedError{
			TaskName:     r.TaskName,
			Kind:         kind,
			Severity:     severity,
			Message:      r.Message,
			Category:     r.Category,
			SuggestedFix: r.SuggestedFix,
			Count:        count,
		}
		if r.File != "" {
			ce.Location = &types.Location{File: r.File, Line: r.Line}
		}
		out = append(out, ce)
	}
	if len(out) == 0 {
		return nil, ErrEmptyResponse
	}
	return out, nil
}
