package nlquery

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/nonsonwune/scopequery/models"
)

// operatorAliases maps the spellings translators use onto the supported operators.
var operatorAliases = map[string]models.Operator{
	"eq": models.OpEq, "=": models.OpEq, "==": models.OpEq, "equal": models.OpEq, "equals": models.OpEq, "is": models.OpEq,
	"gt": models.OpGt, ">": models.OpGt, "greater than": models.OpGt,
	"lt": models.OpLt, "<": models.OpLt, "less than": models.OpLt,
	"gte": models.OpGte, ">=": models.OpGte, "greater than or equal": models.OpGte,
	"lte": models.OpLte, "<=": models.OpLte, "less than or equal": models.OpLte,
	"between": models.OpBetween, "range": models.OpBetween,
	"in": models.OpIn, "one of": models.OpIn,
}

// specValidator converts a rawResponse into a QuerySpec, dropping what it cannot use.
type specValidator struct {
	fields []models.Field
	today  models.Date
	spec   *models.QuerySpec
}

func newValidator(fields []models.Field, today models.Date) *specValidator {
	return &specValidator{
		fields: fields,
		today:  today,
		spec:   &models.QuerySpec{Filters: []models.Filter{}, Aggregate: models.AggregateNone},
	}
}

func (v *specValidator) drop(field, format string, args ...interface{}) {
	v.spec.Dropped = append(v.spec.Dropped, models.DroppedPredicate{Field: field, Reason: fmt.Sprintf(format, args...)})
}

func (v *specValidator) validate(resp *rawResponse) *models.QuerySpec {
	v.filters(resp.Filters)
	v.dateHints(resp.DateFilter, resp.SpecificDate)
	v.sort(resp.SortBy, resp.SortOrder)
	v.limit(resp.Limit)
	v.aggregate(resp.Aggregate, resp.Intent)
	v.selection(resp.Select)
	return v.spec
}

// filters accepts the list form [{field, operator, value}] and the older map form
// {"grade": 8, "quiz_score": {"operator": ">", "value": 80}}.
func (v *specValidator) filters(raw json.RawMessage) {
	if isNull(raw) {
		return
	}
	trimmed := bytes.TrimSpace(raw)
	switch trimmed[0] {
	case '[':
		var items []map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			v.drop("", "filters is not a list of objects: %v", err)
			return
		}
		for _, item := range items {
			field, _ := rawString(item["field"])
			op, _ := rawString(firstPresent(item, "operator", "op"))
			v.addFilter(field, op, firstPresent(item, "value", "values"))
		}
	case '{':
		var byField map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &byField); err != nil {
			v.drop("", "filters object is malformed: %v", err)
			return
		}
		// map order is random; sort so the spec is deterministic
		names := make([]string, 0, len(byField))
		for name := range byField {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			val := bytes.TrimSpace(byField[name])
			if len(val) > 0 && val[0] == '{' {
				var cond map[string]json.RawMessage
				if err := json.Unmarshal(val, &cond); err == nil {
					op, _ := rawString(firstPresent(cond, "operator", "op"))
					v.addFilter(name, op, firstPresent(cond, "value", "values"))
					continue
				}
			}
			op := string(models.OpEq)
			if len(val) > 0 && val[0] == '[' {
				op = string(models.OpIn)
			}
			v.addFilter(name, op, val)
		}
	default:
		v.drop("", "filters must be a list")
	}
}

func firstPresent(m map[string]json.RawMessage, keys ...string) json.RawMessage {
	for _, k := range keys {
		if raw, ok := m[k]; ok && !isNull(raw) {
			return raw
		}
	}
	return nil
}

func (v *specValidator) addFilter(name, opName string, value json.RawMessage) {
	field, ok := models.LookupField(v.fields, name)
	if !ok {
		v.drop(name, "unknown field")
		return
	}
	op, ok := operatorAliases[strings.ToLower(strings.TrimSpace(opName))]
	if !ok {
		v.drop(field.Name, "unsupported operator %q", opName)
		return
	}
	if (field.Kind == models.KindText || field.Kind == models.KindEnum) && op != models.OpEq && op != models.OpIn {
		v.drop(field.Name, "operator %s is not supported on %s fields", op, field.Kind)
		return
	}

	values := splitValues(value)
	switch {
	case op == models.OpBetween && len(values) != 2:
		v.drop(field.Name, "between needs exactly two values, got %d", len(values))
		return
	case op == models.OpIn && len(values) == 0:
		v.drop(field.Name, "in needs at least one value")
		return
	case op != models.OpBetween && op != models.OpIn && len(values) != 1:
		v.drop(field.Name, "%s needs exactly one value, got %d", op, len(values))
		return
	}

	operands := make([]models.Operand, 0, len(values))
	for _, raw := range values {
		operand, err := coerce(field, raw)
		if err != nil {
			v.drop(field.Name, "bad value %s: %v", bytes.TrimSpace(raw), err)
			return
		}
		operands = append(operands, operand)
	}

	if op == models.OpBetween && compareOperands(field.Kind, operands[0], operands[1]) > 0 {
		operands[0], operands[1] = operands[1], operands[0]
	}
	v.spec.Filters = append(v.spec.Filters, models.Filter{
		Field:    field.Name,
		Kind:     field.Kind,
		Operator: op,
		Operands: operands,
	})
}

// splitValues turns a scalar, a list or a {min,max} object into individual values.
func splitValues(raw json.RawMessage) []json.RawMessage {
	if isNull(raw) {
		return nil
	}
	trimmed := bytes.TrimSpace(raw)
	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil
		}
		out := items[:0]
		for _, it := range items {
			if !isNull(it) {
				out = append(out, it)
			}
		}
		return out
	case '{':
		var bounds map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &bounds); err != nil {
			return nil
		}
		for _, pair := range [][2]string{{"min", "max"}, {"low", "high"}, {"from", "to"}, {"start", "end"}} {
			lo, hi := bounds[pair[0]], bounds[pair[1]]
			if !isNull(lo) && !isNull(hi) {
				return []json.RawMessage{lo, hi}
			}
		}
		return nil
	}
	return []json.RawMessage{trimmed}
}

// coerce converts a raw value to an operand of the field's kind.
func coerce(field models.Field, raw json.RawMessage) (models.Operand, error) {
	switch field.Kind {
	case models.KindInt:
		n, err := rawInt(raw)
		if err != nil {
			return models.Operand{}, err
		}
		return models.Operand{Int: n}, nil
	case models.KindDate:
		s, ok := rawString(raw)
		if !ok {
			return models.Operand{}, fmt.Errorf("expected a date string")
		}
		d, err := models.ParseDate(s)
		if err != nil {
			return models.Operand{}, err
		}
		return models.Operand{Date: d}, nil
	case models.KindEnum:
		s, ok := rawString(raw)
		if !ok {
			return models.Operand{}, fmt.Errorf("expected a string")
		}
		if field.Name == models.FieldHomeworkStatus {
			status, err := models.ParseHomeworkStatus(s)
			if err != nil {
				return models.Operand{}, err
			}
			return models.Operand{Text: string(status)}, nil
		}
		for _, allowed := range field.Values {
			if strings.EqualFold(allowed, s) {
				return models.Operand{Text: allowed}, nil
			}
		}
		return models.Operand{}, fmt.Errorf("%q is not one of %v", s, field.Values)
	}

	if s, ok := rawString(raw); ok {
		return models.Operand{Text: s}, nil
	}
	// numbers are fine as text labels, e.g. class 4
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return models.Operand{Text: n.String()}, nil
	}
	return models.Operand{}, fmt.Errorf("expected a string")
}

func compareOperands(kind models.FieldKind, a, b models.Operand) int {
	switch kind {
	case models.KindInt:
		switch {
		case a.Int < b.Int:
			return -1
		case a.Int > b.Int:
			return 1
		}
		return 0
	case models.KindDate:
		return a.Date.Compare(b.Date)
	}
	return strings.Compare(strings.ToLower(a.Text), strings.ToLower(b.Text))
}

// dateHints compiles relative date keywords and a specific date into date filters.
func (v *specValidator) dateHints(dateFilter, specificDate json.RawMessage) {
	field, ok := models.LookupField(v.fields, models.FieldDate)
	if !ok {
		return
	}
	add := func(op models.Operator, dates ...models.Date) {
		operands := make([]models.Operand, len(dates))
		for i, d := range dates {
			operands[i] = models.Operand{Date: d}
		}
		v.spec.Filters = append(v.spec.Filters, models.Filter{Field: field.Name, Kind: field.Kind, Operator: op, Operands: operands})
	}

	if hint, ok := rawString(dateFilter); ok {
		switch strings.ToLower(strings.ReplaceAll(hint, " ", "_")) {
		case "today":
			add(models.OpEq, v.today)
		case "yesterday":
			add(models.OpEq, v.today.AddDays(-1))
		case "last_week", "past_week", "this_week":
			add(models.OpGte, v.today.AddDays(-7))
		case "last_month", "past_month", "this_month":
			add(models.OpGte, v.today.AddDays(-30))
		case "next_week":
			add(models.OpBetween, v.today, v.today.AddDays(7))
		default:
			v.drop(field.Name, "unknown date_filter %q", hint)
		}
	}

	if s, ok := rawString(specificDate); ok {
		d, err := models.ParseDate(s)
		if err != nil {
			v.drop(field.Name, "bad specific_date: %v", err)
			return
		}
		add(models.OpEq, d)
	}
}

func (v *specValidator) sort(sortBy, sortOrder json.RawMessage) {
	name, ok := rawString(sortBy)
	if !ok {
		return
	}
	field, ok := models.LookupField(v.fields, name)
	if !ok {
		v.drop(name, "unknown sort field")
		return
	}
	v.spec.SortBy = field.Name
	v.spec.SortOrder = models.SortDesc
	if order, ok := rawString(sortOrder); ok {
		switch strings.ToLower(order) {
		case "asc", "ascending":
			v.spec.SortOrder = models.SortAsc
		case "desc", "descending":
		default:
			v.drop(field.Name, "unknown sort_order %q, using desc", order)
		}
	}
}

func (v *specValidator) limit(raw json.RawMessage) {
	if isNull(raw) {
		return
	}
	n, err := rawInt(raw)
	if err != nil {
		v.drop("", "bad limit: %v", err)
		return
	}
	if n > 0 {
		v.spec.Limit = n
	}
}

func (v *specValidator) aggregate(aggregate, intent json.RawMessage) {
	name, ok := rawString(aggregate)
	if !ok {
		// older responses carry the aggregation as "intent"
		if in, ok := rawString(intent); ok && strings.EqualFold(in, "count") {
			v.spec.Aggregate = models.AggregateCount
		}
		return
	}
	switch strings.ToLower(strings.ReplaceAll(strings.ReplaceAll(name, "_", ""), "-", "")) {
	case "count":
		v.spec.Aggregate = models.AggregateCount
	case "topn", "top":
		v.spec.Aggregate = models.AggregateTopN
	case "none", "list", "show", "filter":
	default:
		v.drop("", "unknown aggregate %q", name)
	}
}

func (v *specValidator) selection(raw json.RawMessage) {
	if isNull(raw) {
		return
	}
	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		if s, ok := rawString(raw); ok {
			names = []string{s}
		} else {
			v.drop("", "select must be a list of field names")
			return
		}
	}
	for _, name := range names {
		field, ok := models.LookupField(v.fields, name)
		if !ok {
			v.drop(name, "unknown select field")
			continue
		}
		v.spec.Select = append(v.spec.Select, field.Name)
	}
}
