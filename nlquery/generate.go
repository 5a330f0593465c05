package nlquery

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/nonsonwune/scopequery/models"
	"github.com/nonsonwune/scopequery/nlquery/prompts"
)

// RuleTranslator answers from keyword patterns without calling a model. It emits the same
// JSON object a model would, so its output goes through the same validation.
type RuleTranslator struct{}

// NewRuleTranslator creates an offline translator.
func NewRuleTranslator() *RuleTranslator {
	return &RuleTranslator{}
}

type ruleFilter struct {
	Field    string      `json:"field"`
	Operator string      `json:"operator"`
	Value    interface{} `json:"value"`
}

type ruleResponse struct {
	Filters      []ruleFilter `json:"filters"`
	SortBy       string       `json:"sort_by,omitempty"`
	SortOrder    string       `json:"sort_order,omitempty"`
	Limit        int          `json:"limit,omitempty"`
	Aggregate    string       `json:"aggregate"`
	DateFilter   string       `json:"date_filter,omitempty"`
	SpecificDate string       `json:"specific_date,omitempty"`
}

var (
	pendingPattern   = regexp.MustCompile(`\b(pending|incomplete|not submitted|(?:haven'?t|hasn'?t|didn'?t|did not|have not|has not|not) (?:yet )?submit(?:ted)?|missing homework)\b`)
	submittedPattern = regexp.MustCompile(`\b(submitted|completed|turned in|handed in)\b`)
	gradePattern     = regexp.MustCompile(`\bgrades?\s+(\d+)((?:\s*(?:,|and|or)\s*\d+)*)`)
	betweenPattern   = regexp.MustCompile(`\bbetween\s+(\d+)\s*(?:and|-|to)\s*(\d+)`)
	abovePattern     = regexp.MustCompile(`\b(?:above|over|more than|greater than|higher than)\s+(\d+)`)
	belowPattern     = regexp.MustCompile(`\b(?:below|under|less than|lower than)\s+(\d+)`)
	atLeastPattern   = regexp.MustCompile(`\b(?:at least|minimum of)\s+(\d+)`)
	atMostPattern    = regexp.MustCompile(`\b(?:at most|maximum of)\s+(\d+)`)
	topPattern       = regexp.MustCompile(`\b(?:top|best)\s+(\d+)`)
	bottomPattern    = regexp.MustCompile(`\b(?:bottom|worst|lowest)\s+(\d+)`)
	isoDatePattern   = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
	listPattern      = regexp.MustCompile(`\b(all|everyone|every|list|show|students?|records?)\b`)
	numberPattern    = regexp.MustCompile(`\d+`)
	countPattern     = regexp.MustCompile(`\bcount\b`)
)

// exactScorePattern reads "scored 85" or "score of 85", optionally followed by "or more"
// or "and below".
var exactScorePattern = regexp.MustCompile(`\b(?:scored|scoring|score of|got)\s+(?:exactly\s+)?(\d+)\b(?:\s*(?:%|percent|marks|points))?(?:\s*(?:or|and)\s*(more|above|higher|over|better|less|below|lower|under|fewer))?`)

var dateHints = []struct {
	phrase string
	hint   string
}{
	{"yesterday", "yesterday"},
	{"today", "today"},
	{"last week", "last_week"},
	{"past week", "last_week"},
	{"this week", "last_week"},
	{"last month", "last_month"},
	{"past month", "last_month"},
	{"next week", "next_week"},
}

// Translate implements Translator.
func (RuleTranslator) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	q := strings.ToLower(strings.TrimSpace(req.Question))
	vm := prompts.NewValueMatcher(req.Summary)
	resp := ruleResponse{Filters: []ruleFilter{}, Aggregate: string(models.AggregateNone)}
	recognized := false

	add := func(field string, values []interface{}) {
		recognized = true
		if len(values) == 1 {
			resp.Filters = append(resp.Filters, ruleFilter{Field: field, Operator: string(models.OpEq), Value: values[0]})
			return
		}
		resp.Filters = append(resp.Filters, ruleFilter{Field: field, Operator: string(models.OpIn), Value: values})
	}
	scored := false
	score := func(op models.Operator, value interface{}) {
		recognized, scored = true, true
		resp.Filters = append(resp.Filters, ruleFilter{Field: models.FieldQuizScore, Operator: string(op), Value: value})
	}

	if strings.Contains(q, "homework") || pendingPattern.MatchString(q) || submittedPattern.MatchString(q) {
		switch {
		case pendingPattern.MatchString(q):
			add(models.FieldHomeworkStatus, []interface{}{string(models.HomeworkPending)})
		case submittedPattern.MatchString(q):
			add(models.FieldHomeworkStatus, []interface{}{string(models.HomeworkSubmitted)})
		}
	}

	if m := gradePattern.FindStringSubmatch(q); m != nil {
		var grades []interface{}
		for _, s := range append([]string{m[1]}, numberPattern.FindAllString(m[2], -1)...) {
			n, _ := strconv.Atoi(s)
			grades = append(grades, n)
		}
		add(models.FieldGrade, grades)
	}

	// class labels are matched on the original casing so "class A" keeps its label
	if classes := vm.FindClasses(req.Question); len(classes) > 0 {
		add(models.FieldClass, anySlice(classes))
	}
	if regions := vm.FindRegions(req.Question); len(regions) > 0 {
		add(models.FieldRegion, anySlice(regions))
	}

	// strip grade mentions so "grade 8 students above 80" only reads 80 as a score
	scoreText := gradePattern.ReplaceAllString(q, "")
	if m := betweenPattern.FindStringSubmatch(scoreText); m != nil {
		lo, _ := strconv.Atoi(m[1])
		hi, _ := strconv.Atoi(m[2])
		score(models.OpBetween, []int{lo, hi})
	}
	if m := abovePattern.FindStringSubmatch(scoreText); m != nil {
		n, _ := strconv.Atoi(m[1])
		score(models.OpGt, n)
	}
	if m := belowPattern.FindStringSubmatch(scoreText); m != nil {
		n, _ := strconv.Atoi(m[1])
		score(models.OpLt, n)
	}
	if m := atLeastPattern.FindStringSubmatch(scoreText); m != nil {
		n, _ := strconv.Atoi(m[1])
		score(models.OpGte, n)
	}
	if m := atMostPattern.FindStringSubmatch(scoreText); m != nil {
		n, _ := strconv.Atoi(m[1])
		score(models.OpLte, n)
	}
	if m := exactScorePattern.FindStringSubmatch(scoreText); m != nil && !scored {
		n, _ := strconv.Atoi(m[1])
		switch m[2] {
		case "":
			score(models.OpEq, n)
		case "less", "below", "lower", "under", "fewer":
			score(models.OpLte, n)
		default:
			score(models.OpGte, n)
		}
	}

	switch {
	case strings.Contains(q, "how many") || strings.Contains(q, "number of") || countPattern.MatchString(q):
		recognized = true
		resp.Aggregate = string(models.AggregateCount)
	case topPattern.MatchString(q):
		recognized = true
		n, _ := strconv.Atoi(topPattern.FindStringSubmatch(q)[1])
		resp.Aggregate = string(models.AggregateTopN)
		resp.SortBy, resp.SortOrder, resp.Limit = models.FieldQuizScore, string(models.SortDesc), n
	case bottomPattern.MatchString(q):
		recognized = true
		n, _ := strconv.Atoi(bottomPattern.FindStringSubmatch(q)[1])
		resp.SortBy, resp.SortOrder, resp.Limit = models.FieldQuizScore, string(models.SortAsc), n
	case strings.Contains(q, "topper") || strings.Contains(q, "highest scor") || strings.Contains(q, "best student"):
		recognized = true
		resp.Aggregate = string(models.AggregateTopN)
		resp.SortBy, resp.SortOrder, resp.Limit = models.FieldQuizScore, string(models.SortDesc), 1
	case strings.Contains(q, "top performer") || strings.Contains(q, "top student") || strings.Contains(q, "best performer"):
		recognized = true
		resp.Aggregate = string(models.AggregateTopN)
	case strings.Contains(q, "lowest scor") || strings.Contains(q, "worst"):
		recognized = true
		resp.SortBy, resp.SortOrder = models.FieldQuizScore, string(models.SortAsc)
	}

	for _, h := range dateHints {
		if strings.Contains(q, h.phrase) {
			recognized = true
			resp.DateFilter = h.hint
			break
		}
	}
	if m := isoDatePattern.FindStringSubmatch(q); m != nil {
		recognized = true
		resp.SpecificDate = m[1]
	}

	if !recognized && !listPattern.MatchString(q) {
		return "", fmt.Errorf("no recognizable filter terms in %q", truncate(req.Question, 80))
	}

	out, err := json.Marshal(resp)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func anySlice(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
