package nlquery

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/nonsonwune/scopequery/models"
)

var testSummary = &models.DataSummary{
	RecordCount: 4,
	Values: map[string][]string{
		models.FieldRegion: {"North", "South"},
		models.FieldGrade:  {"7", "8"},
		models.FieldClass:  {"A", "B"},
	},
}

func intFilter(field string, op models.Operator, values ...int) models.Filter {
	f := models.Filter{Field: field, Kind: models.KindInt, Operator: op}
	for _, v := range values {
		f.Operands = append(f.Operands, models.Operand{Int: v})
	}
	return f
}

func textFilter(field string, kind models.FieldKind, op models.Operator, values ...string) models.Filter {
	f := models.Filter{Field: field, Kind: kind, Operator: op}
	for _, v := range values {
		f.Operands = append(f.Operands, models.Operand{Text: v})
	}
	return f
}

func TestRuleTranslator(t *testing.T) {
	lastWeek := models.Filter{Field: models.FieldDate, Kind: models.KindDate, Operator: models.OpGte,
		Operands: []models.Operand{{Date: models.DateOf(fixedNow).AddDays(-7)}}}

	testCases := []struct {
		name          string
		question      string
		wantFilters   []models.Filter
		wantAggregate models.Aggregate
		wantSortBy    string
		wantLimit     int
	}{
		{
			name:          "pending homework",
			question:      "Which students haven't submitted homework?",
			wantFilters:   []models.Filter{textFilter(models.FieldHomeworkStatus, models.KindEnum, models.OpEq, "pending")},
			wantAggregate: models.AggregateNone,
		},
		{
			name:     "grade and score",
			question: "Show me Grade 8 students who scored above 80",
			wantFilters: []models.Filter{
				intFilter(models.FieldGrade, models.OpEq, 8),
				intFilter(models.FieldQuizScore, models.OpGt, 80),
			},
			wantAggregate: models.AggregateNone,
		},
		{
			name:          "count between",
			question:      "How many students scored between 70 and 90?",
			wantFilters:   []models.Filter{intFilter(models.FieldQuizScore, models.OpBetween, 70, 90)},
			wantAggregate: models.AggregateCount,
		},
		{
			name:          "top n",
			question:      "Show top 5 performers",
			wantFilters:   []models.Filter{},
			wantAggregate: models.AggregateTopN,
			wantSortBy:    models.FieldQuizScore,
			wantLimit:     5,
		},
		{
			name:          "topper",
			question:      "Who is the topper?",
			wantFilters:   []models.Filter{},
			wantAggregate: models.AggregateTopN,
			wantSortBy:    models.FieldQuizScore,
			wantLimit:     1,
		},
		{
			name:     "class and region from the data",
			question: "Students in class A from north",
			wantFilters: []models.Filter{
				textFilter(models.FieldClass, models.KindText, models.OpEq, "A"),
				textFilter(models.FieldRegion, models.KindText, models.OpEq, "North"),
			},
			wantAggregate: models.AggregateNone,
		},
		{
			name:     "several classes",
			question: "List students in classes A and B",
			wantFilters: []models.Filter{
				textFilter(models.FieldClass, models.KindText, models.OpIn, "A", "B"),
			},
			wantAggregate: models.AggregateNone,
		},
		{
			name:     "relative date",
			question: "List submitted homework from last week",
			wantFilters: []models.Filter{
				textFilter(models.FieldHomeworkStatus, models.KindEnum, models.OpEq, "submitted"),
				lastWeek,
			},
			wantAggregate: models.AggregateNone,
		},
		{
			name:          "grade list",
			question:      "List students in grades 7 and 8",
			wantFilters:   []models.Filter{intFilter(models.FieldGrade, models.OpIn, 7, 8)},
			wantAggregate: models.AggregateNone,
		},
		{
			name:          "exact score",
			question:      "Which students scored 85?",
			wantFilters:   []models.Filter{intFilter(models.FieldQuizScore, models.OpEq, 85)},
			wantAggregate: models.AggregateNone,
		},
		{
			name:          "zero score",
			question:      "students who scored 0",
			wantFilters:   []models.Filter{intFilter(models.FieldQuizScore, models.OpEq, 0)},
			wantAggregate: models.AggregateNone,
		},
		{
			name:          "score or more",
			question:      "students with a score of 70 or more",
			wantFilters:   []models.Filter{intFilter(models.FieldQuizScore, models.OpGte, 70)},
			wantAggregate: models.AggregateNone,
		},
		{
			name:     "grade with score and below",
			question: "grade 7 students who scored 50 and below",
			wantFilters: []models.Filter{
				intFilter(models.FieldGrade, models.OpEq, 7),
				intFilter(models.FieldQuizScore, models.OpLte, 50),
			},
			wantAggregate: models.AggregateNone,
		},
	}

	interp := newTestInterpreter(NewRuleTranslator())
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			spec, err := interp.ParseWithSummary(context.Background(), tc.question, models.StudentFields, testSummary)
			if err != nil {
				t.Fatalf("ParseWithSummary() error = %v", err)
			}
			if !reflect.DeepEqual(spec.Filters, tc.wantFilters) {
				t.Errorf("Filters = %+v, want %+v", spec.Filters, tc.wantFilters)
			}
			if spec.Aggregate != tc.wantAggregate {
				t.Errorf("Aggregate = %q, want %q", spec.Aggregate, tc.wantAggregate)
			}
			if spec.SortBy != tc.wantSortBy || spec.Limit != tc.wantLimit {
				t.Errorf("sort/limit = %q/%d, want %q/%d", spec.SortBy, spec.Limit, tc.wantSortBy, tc.wantLimit)
			}
			if len(spec.Dropped) != 0 {
				t.Errorf("Dropped = %+v, want none", spec.Dropped)
			}
		})
	}
}

func TestRuleTranslatorUnrecognized(t *testing.T) {
	_, err := newTestInterpreter(NewRuleTranslator()).Parse(context.Background(), "What's the weather like?", models.StudentFields)
	var parseErr *models.QueryParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Parse() error = %v, want *models.QueryParseError", err)
	}
}
