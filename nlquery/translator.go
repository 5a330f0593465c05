package nlquery

import (
	"context"

	"github.com/nonsonwune/scopequery/models"
	"github.com/nonsonwune/scopequery/nlquery/prompts"
)

// TranslateRequest is everything a translator may see: the question, the field list and
// a summary of distinct values. Never raw records.
type TranslateRequest struct {
	Question string
	Fields   []models.Field
	Summary  *models.DataSummary
	Examples []prompts.Example
}

// Translator turns a question into the raw JSON filter object described by
// prompts.ResponseContract. Implementations must honour ctx cancellation.
type Translator interface {
	Translate(ctx context.Context, req TranslateRequest) (string, error)
}

// TranslatorFunc adapts a function to Translator.
type TranslatorFunc func(ctx context.Context, req TranslateRequest) (string, error)

func (f TranslatorFunc) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	return f(ctx, req)
}
