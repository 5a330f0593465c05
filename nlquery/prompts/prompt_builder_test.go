package prompts

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/nonsonwune/scopequery/models"
)

var testSummary = &models.DataSummary{
	RecordCount: 3,
	Values: map[string][]string{
		models.FieldRegion: {"North", "South", "West Coast"},
		models.FieldClass:  {"A", "B"},
	},
}

func TestBuildQueryPrompt(t *testing.T) {
	now := func() time.Time { return time.Date(2024, 10, 15, 12, 0, 0, 0, time.UTC) }
	prompt := NewPromptBuilder().WithClock(now).BuildQueryPrompt("Show top 5 performers", models.StudentFields, testSummary)

	for _, want := range []string{
		"CURRENT DATE: 2024-10-15",
		"- quiz_score (integer)",
		"- homework_status (enum)",
		"values: [submitted, pending]",
		`"West Coast"`,
		`"aggregate": "none" | "count" | "topN"`,
		"Show me Grade 8 students who scored above 80",
		"Now translate this question: Show top 5 performers",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt is missing %q", want)
		}
	}
}

func TestBuildQueryPromptWithoutSummaryOrExamples(t *testing.T) {
	prompt := NewPromptBuilder().WithExamples(nil).BuildQueryPrompt("q", models.StudentFields, nil)
	if strings.Contains(prompt, "DATA SUMMARY") {
		t.Error("prompt has a data summary section without a summary")
	}
	if strings.Contains(prompt, "Examples:") {
		t.Error("prompt has an examples section without examples")
	}
}

func TestValueMatcher(t *testing.T) {
	vm := NewValueMatcher(testSummary)

	testCases := []struct {
		name        string
		question    string
		wantRegions []string
		wantClasses []string
	}{
		{name: "regions in mention order", question: "Compare south and North", wantRegions: []string{"South", "North"}},
		{name: "multi-word region", question: "students on the west coast", wantRegions: []string{"West Coast"}},
		{name: "region needs a word boundary", question: "northern students"},
		{name: "class list", question: "class a and b students", wantClasses: []string{"A", "B"}},
		{name: "section", question: "section B toppers", wantClasses: []string{"B"}},
		{name: "unknown class ignored", question: "class Z", wantClasses: nil},
		{name: "article is not a class", question: "show me a student"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := vm.FindRegions(tc.question); !sameStrings(got, tc.wantRegions) {
				t.Errorf("FindRegions() = %v, want %v", got, tc.wantRegions)
			}
			if got := vm.FindClasses(tc.question); !sameStrings(got, tc.wantClasses) {
				t.Errorf("FindClasses() = %v, want %v", got, tc.wantClasses)
			}
		})
	}
}

func TestValueMatcherWithoutSummary(t *testing.T) {
	got := NewValueMatcher(nil).FindClasses("class c")
	if !reflect.DeepEqual(got, []string{"C"}) {
		t.Errorf("FindClasses() = %v, want [C]", got)
	}
}

func sameStrings(a, b []string) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}
