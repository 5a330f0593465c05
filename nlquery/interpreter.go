package nlquery

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/nonsonwune/scopequery/models"
	"github.com/nonsonwune/scopequery/nlquery/prompts"
)

// DefaultTimeout bounds one translator round-trip.
const DefaultTimeout = 30 * time.Second

// Interpreter turns questions into validated QuerySpecs. Given the same translator
// response and clock it always produces the same spec.
type Interpreter struct {
	translator Translator
	timeout    time.Duration
	now        func() time.Time
	examples   []prompts.Example
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithTimeout sets the bound on the translator call.
func WithTimeout(d time.Duration) Option {
	return func(i *Interpreter) {
		if d > 0 {
			i.timeout = d
		}
	}
}

// WithClock sets the clock used to resolve relative date hints.
func WithClock(now func() time.Time) Option {
	return func(i *Interpreter) { i.now = now }
}

// WithExamples replaces the few-shot examples sent with each request.
func WithExamples(examples []prompts.Example) Option {
	return func(i *Interpreter) { i.examples = examples }
}

func NewInterpreter(t Translator, opts ...Option) *Interpreter {
	i := &Interpreter{
		translator: t,
		timeout:    DefaultTimeout,
		now:        time.Now,
		examples:   prompts.QueryExamples,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Parse interprets question against the available fields.
func (i *Interpreter) Parse(ctx context.Context, question string, fields []models.Field) (*models.QuerySpec, error) {
	return i.ParseWithSummary(ctx, question, fields, nil)
}

// ParseWithSummary is Parse with a summary of distinct values passed to the translator.
//
// It fails with a *models.QueryParseError only when the translator is unreachable, times
// out, or returns something that is not a JSON object. Predicates that fail validation
// are dropped and listed in QuerySpec.Dropped.
func (i *Interpreter) ParseWithSummary(ctx context.Context, question string, fields []models.Field, summary *models.DataSummary) (*models.QuerySpec, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, &models.QueryParseError{Question: question, Err: errors.New("empty question")}
	}

	raw, err := i.translate(ctx, TranslateRequest{
		Question: question,
		Fields:   fields,
		Summary:  summary,
		Examples: i.examples,
	})
	if err != nil {
		log.Printf("Translator failed for %q: %v", truncate(question, 80), err)
		return nil, &models.QueryParseError{Question: question, Err: err}
	}

	resp, err := decodeResponse(raw)
	if err != nil {
		log.Printf("Unparseable translator response for %q: %v", truncate(question, 80), err)
		return nil, &models.QueryParseError{Question: question, Err: err}
	}

	spec := newValidator(fields, models.DateOf(i.now())).validate(resp)
	for _, d := range spec.Dropped {
		log.Printf("Warning: dropped predicate on %q: %s", d.Field, d.Reason)
	}
	return spec, nil
}

// translate calls the translator with a bounded wait. A translator that ignores ctx
// cannot hold the query past the deadline.
func (i *Interpreter) translate(ctx context.Context, req TranslateRequest) (string, error) {
	if i.translator == nil {
		return "", errors.New("no translator configured")
	}
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	type result struct {
		raw string
		err error
	}
	done := make(chan result, 1)
	go func() {
		raw, err := i.translator.Translate(ctx, req)
		done <- result{raw, err}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("translator timed out after %s: %w", i.timeout, ctx.Err())
	case r := <-done:
		if r.err != nil {
			return "", r.err
		}
		if ctx.Err() != nil {
			return "", fmt.Errorf("translator timed out after %s: %w", i.timeout, ctx.Err())
		}
		return r.raw, nil
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
