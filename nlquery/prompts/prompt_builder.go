package prompts

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nonsonwune/scopequery/models"
)

// PromptBuilder handles the construction of prompts for the LLM
type PromptBuilder struct {
	baseContext string
	examples    []Example
	now         func() time.Time
}

// NewPromptBuilder creates a PromptBuilder with the default context and examples
func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{
		baseContext: SchemaContext,
		examples:    QueryExamples,
		now:         time.Now,
	}
}

// WithExamples replaces the few-shot examples.
func (pb *PromptBuilder) WithExamples(examples []Example) *PromptBuilder {
	pb.examples = examples
	return pb
}

// WithClock sets the clock used for the CURRENT DATE line.
func (pb *PromptBuilder) WithClock(now func() time.Time) *PromptBuilder {
	pb.now = now
	return pb
}

// BuildQueryPrompt creates the prompt for one question.
func (pb *PromptBuilder) BuildQueryPrompt(question string, fields []models.Field, summary *models.DataSummary) string {
	var b strings.Builder

	b.WriteString(pb.baseContext)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "CURRENT DATE: %s\n\n", pb.now().Format(models.DateLayout))

	b.WriteString("FIELDS:\n")
	b.WriteString(DescribeFields(fields))
	b.WriteString("\n")

	if summary != nil {
		summaryJSON, _ := json.MarshalIndent(summary, "", "  ")
		fmt.Fprintf(&b, "DATA SUMMARY (distinct values, not records):\n%s\n\n", summaryJSON)
	}

	b.WriteString(ResponseContract)
	b.WriteString("\n\n")
	b.WriteString(Rules)
	b.WriteString("\n\n")

	if len(pb.examples) > 0 {
		b.WriteString("Examples:\n")
		for _, ex := range pb.examples {
			fmt.Fprintf(&b, "%q\n-> %s\n\n", ex.Question, ex.Response)
		}
	}

	fmt.Fprintf(&b, "Now translate this question: %s", question)
	return b.String()
}

// DescribeFields lists fields one per line with their types.
func DescribeFields(fields []models.Field) string {
	var b strings.Builder
	for _, f := range fields {
		fmt.Fprintf(&b, "- %s (%s)", f.Name, f.Kind)
		if f.Description != "" {
			fmt.Fprintf(&b, ": %s", f.Description)
		}
		if len(f.Values) > 0 {
			fmt.Fprintf(&b, " values: [%s]", strings.Join(f.Values, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}
