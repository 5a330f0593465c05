package nlquery

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/nonsonwune/scopequery/models"
	"github.com/nonsonwune/scopequery/nlquery/prompts"
)

// DefaultGeminiModel is used when no model name is configured.
const DefaultGeminiModel = "gemini-1.5-flash"

// GeminiTranslator asks a Gemini model for the filter object.
type GeminiTranslator struct {
	keys      *KeyManager
	modelName string
	prompts   *prompts.PromptBuilder
	backoff   []time.Duration

	mu      sync.Mutex
	clients map[string]*genai.Client
}

// NewGeminiTranslator creates a translator that rotates over the keys in km.
func NewGeminiTranslator(km *KeyManager, modelName string) (*GeminiTranslator, error) {
	if km == nil || km.Len() == 0 {
		return nil, errors.New("no Gemini API key configured")
	}
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	return &GeminiTranslator{
		keys:      km,
		modelName: modelName,
		prompts:   prompts.NewPromptBuilder(),
		// Implement exponential backoff for retries
		backoff: []time.Duration{
			1 * time.Second,
			2 * time.Second,
			4 * time.Second,
		},
		clients: make(map[string]*genai.Client),
	}, nil
}

func (g *GeminiTranslator) client(ctx context.Context, key string) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if c, ok := g.clients[key]; ok {
		return c, nil
	}
	c, err := genai.NewClient(ctx, option.WithAPIKey(key))
	if err != nil {
		return nil, fmt.Errorf("error initializing Gemini client: %w", err)
	}
	g.clients[key] = c
	return c, nil
}

func (g *GeminiTranslator) model(c *genai.Client) *genai.GenerativeModel {
	model := c.GenerativeModel(g.modelName)
	model.SetTemperature(0)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = responseSchema()
	model.SafetySettings = []*genai.SafetySetting{
		{
			Category:  genai.HarmCategoryHarassment,
			Threshold: genai.HarmBlockNone,
		},
		{
			Category:  genai.HarmCategoryHateSpeech,
			Threshold: genai.HarmBlockNone,
		},
	}
	return model
}

// responseSchema describes the filter object. Filter values are strings so one schema
// covers every field kind; the interpreter coerces them.
func responseSchema() *genai.Schema {
	operators := make([]string, len(models.Operators))
	for i, op := range models.Operators {
		operators[i] = string(op)
	}
	str := &genai.Schema{Type: genai.TypeString}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"filters": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"field":    str,
						"operator": {Type: genai.TypeString, Enum: operators},
						"values":   {Type: genai.TypeArray, Items: str},
					},
					Required: []string{"field", "operator", "values"},
				},
			},
			"sort_by":       {Type: genai.TypeString, Nullable: true},
			"sort_order":    {Type: genai.TypeString, Enum: []string{"asc", "desc"}, Nullable: true},
			"limit":         {Type: genai.TypeInteger, Nullable: true},
			"aggregate":     {Type: genai.TypeString, Enum: []string{"none", "count", "topN"}},
			"select":        {Type: genai.TypeArray, Items: str},
			"date_filter":   {Type: genai.TypeString, Nullable: true},
			"specific_date": {Type: genai.TypeString, Nullable: true},
		},
		Required: []string{"filters", "aggregate"},
	}
}

// Translate implements Translator.
func (g *GeminiTranslator) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	builder := g.prompts
	if req.Examples != nil {
		builder = prompts.NewPromptBuilder().WithExamples(req.Examples)
	}
	prompt := builder.BuildQueryPrompt(req.Question, req.Fields, req.Summary)

	return retry(ctx, g.backoff, func(attempt int) (string, error) {
		key := g.keys.GetNextKey()
		c, err := g.client(ctx, key)
		if err != nil {
			return "", err
		}

		resp, err := g.model(c).GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			if isRateLimitError(err) {
				g.keys.MarkKeyFailed(key)
			} else {
				log.Printf("Gemini attempt %d failed: %v", attempt+1, err)
			}
			return "", err
		}
		return extractText(resp)
	})
}

// retry runs attempt once per backoff entry, waiting between failures. There is no wait
// after the last attempt.
func retry(ctx context.Context, backoff []time.Duration, attempt func(i int) (string, error)) (string, error) {
	var lastErr error
	for i, wait := range backoff {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := attempt(i)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if i == len(backoff)-1 {
			break
		}
		if !sleep(ctx, wait) {
			return "", ctx.Err()
		}
	}
	return "", fmt.Errorf("all attempts failed, last error: %w", lastErr)
}

// Close releases every client created by the translator.
func (g *GeminiTranslator) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for key, c := range g.clients {
		c.Close()
		delete(g.clients, key)
	}
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Helper function to check for rate limit errors
func isRateLimitError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "quota exceeded") ||
		strings.Contains(msg, "resource exhausted") ||
		strings.Contains(msg, "429")
}

func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("no response candidates")
	}
	cand := resp.Candidates[0]
	if cand.Content == nil || len(cand.Content.Parts) == 0 {
		return "", errors.New("empty response candidate")
	}
	var b strings.Builder
	for _, part := range cand.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", fmt.Errorf("unexpected response type: %T", cand.Content.Parts[0])
	}
	return b.String(), nil
}
