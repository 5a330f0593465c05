package prompts

import (
	"regexp"
	"strings"

	"github.com/nonsonwune/scopequery/models"
)

// ValueMatcher finds known data values mentioned in a question
type ValueMatcher struct {
	values map[string]map[string]string // field -> lowercase value -> exact value
	words  map[string][]wordMatcher
}

type wordMatcher struct {
	re    *regexp.Regexp
	value string
}

// NewValueMatcher indexes the distinct values of a data summary.
func NewValueMatcher(summary *models.DataSummary) *ValueMatcher {
	vm := &ValueMatcher{values: make(map[string]map[string]string), words: make(map[string][]wordMatcher)}
	if summary == nil {
		return vm
	}
	for field, vals := range summary.Values {
		set := make(map[string]string, len(vals))
		for _, v := range vals {
			if v = strings.TrimSpace(v); v != "" {
				set[strings.ToLower(v)] = v
			}
		}
		vm.values[field] = set
		for key, exact := range set {
			vm.words[field] = append(vm.words[field], wordMatcher{
				re:    regexp.MustCompile(`\b` + regexp.QuoteMeta(key) + `\b`),
				value: exact,
			})
		}
	}
	return vm
}

var classPattern = regexp.MustCompile(`(?i)\b(?:classes|class|sections|section)\s+([a-z0-9]+(?:\s*(?:,|and|or)\s*[a-z0-9]+)*)\b`)

// FindRegions returns the known regions named in the question, in first-mention order.
func (vm *ValueMatcher) FindRegions(question string) []string {
	return vm.findWords(models.FieldRegion, question)
}

// FindClasses returns class labels that follow "class" or "section". A bare "a" in a
// sentence is not a class.
func (vm *ValueMatcher) FindClasses(question string) []string {
	known := vm.values[models.FieldClass]
	var found []string
	seen := make(map[string]bool)
	for _, m := range classPattern.FindAllStringSubmatch(question, -1) {
		for _, label := range splitList(m[1]) {
			key := strings.ToLower(label)
			exact, ok := known[key]
			if !ok {
				if len(known) > 0 {
					continue
				}
				exact = strings.ToUpper(label)
			}
			if !seen[exact] {
				seen[exact] = true
				found = append(found, exact)
			}
		}
	}
	return found
}

func (vm *ValueMatcher) findWords(field, question string) []string {
	type hit struct {
		pos   int
		value string
	}
	lower := strings.ToLower(question)
	var hits []hit
	for _, w := range vm.words[field] {
		if loc := w.re.FindStringIndex(lower); loc != nil {
			hits = append(hits, hit{pos: loc[0], value: w.value})
		}
	}
	// order by position so results don't depend on map iteration
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && (hits[j].pos < hits[j-1].pos ||
			(hits[j].pos == hits[j-1].pos && hits[j].value < hits[j-1].value)); j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.value
	}
	return out
}

func splitList(s string) []string {
	s = strings.NewReplacer(",", " ", " and ", " ", " or ", " ").Replace(" " + strings.ToLower(s) + " ")
	return strings.Fields(s)
}
