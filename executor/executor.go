// Package executor applies a QuerySpec to an already scoped record set.
package executor

import (
	"log"
	"sort"
	"strings"

	"github.com/nonsonwune/scopequery/models"
)

// DefaultTopN is the row count for a topN aggregate that names no limit.
const DefaultTopN = 10

// Execute runs spec against records. The order of operations is fixed:
//
//  1. filters, AND-combined
//  2. count short-circuits, ignoring sort and limit
//  3. stable sort (topN without a sort key sorts by quiz_score descending)
//  4. limit
//
// records is never modified.
func Execute(spec models.QuerySpec, records []models.StudentRecord) *models.ResultSet {
	filtered := ApplyFilters(records, spec.Filters)

	if spec.Aggregate == models.AggregateCount {
		rs := &models.ResultSet{
			Aggregate: models.AggregateCount,
			Count:     len(filtered),
			Columns:   []string{"count"},
		}
		if len(filtered) == 0 {
			rs.Empty = &models.EmptyResultWarning{Stage: models.StageFilter}
		}
		return rs
	}

	sortBy, order := spec.SortBy, spec.SortOrder
	if spec.Aggregate == models.AggregateTopN && sortBy == "" {
		sortBy, order = models.FieldQuizScore, models.SortDesc
	}
	if sortBy != "" {
		filtered = SortRecords(filtered, sortBy, order)
	}

	limit := spec.Limit
	if spec.Aggregate == models.AggregateTopN && limit <= 0 {
		limit = DefaultTopN
	}
	if limit > 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}

	aggregate := spec.Aggregate
	if aggregate == "" {
		aggregate = models.AggregateNone
	}
	rs := &models.ResultSet{
		Aggregate: aggregate,
		Count:     len(filtered),
		Columns:   Columns(spec.Select),
		Records:   filtered,
	}
	if len(filtered) == 0 {
		rs.Empty = &models.EmptyResultWarning{Stage: models.StageFilter}
	}
	log.Printf("Executed query: %d filter(s), sort=%s %s, limit=%d -> %d record(s) of %d",
		len(spec.Filters), sortBy, order, limit, rs.Count, len(records))
	return rs
}

// ApplyFilters returns the records that satisfy every filter, in input order.
// The result never aliases records.
func ApplyFilters(records []models.StudentRecord, filters []models.Filter) []models.StudentRecord {
	out := make([]models.StudentRecord, 0, len(records))
	for _, r := range records {
		if matchesAll(r, filters) {
			out = append(out, r)
		}
	}
	return out
}

func matchesAll(r models.StudentRecord, filters []models.Filter) bool {
	for _, f := range filters {
		if !Matches(r, f) {
			return false
		}
	}
	return true
}

// Matches evaluates one filter against a record. between is inclusive on both bounds;
// text comparisons ignore case.
func Matches(r models.StudentRecord, f models.Filter) bool {
	if len(f.Operands) == 0 {
		return false
	}
	switch f.Operator {
	case models.OpEq:
		return compare(r, f, f.Operands[0]) == 0
	case models.OpGt:
		return compare(r, f, f.Operands[0]) > 0
	case models.OpLt:
		return compare(r, f, f.Operands[0]) < 0
	case models.OpGte:
		return compare(r, f, f.Operands[0]) >= 0
	case models.OpLte:
		return compare(r, f, f.Operands[0]) <= 0
	case models.OpBetween:
		if len(f.Operands) != 2 {
			return false
		}
		return compare(r, f, f.Operands[0]) >= 0 && compare(r, f, f.Operands[1]) <= 0
	case models.OpIn:
		for _, op := range f.Operands {
			if compare(r, f, op) == 0 {
				return true
			}
		}
	}
	return false
}

// compare orders the record's field value against an operand.
func compare(r models.StudentRecord, f models.Filter, op models.Operand) int {
	switch f.Kind {
	case models.KindInt:
		v, _ := r.Int(f.Field)
		return compareInts(v, op.Int)
	case models.KindDate:
		return r.Date.Compare(op.Date)
	}
	return strings.Compare(strings.ToLower(r.Text(f.Field)), strings.ToLower(op.Text))
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// SortRecords returns a stably sorted copy of records. Ties keep their input order.
func SortRecords(records []models.StudentRecord, field string, order models.SortOrder) []models.StudentRecord {
	kind := models.KindText
	if f, ok := models.LookupField(models.StudentFields, field); ok {
		kind = f.Kind
	}
	key := models.Filter{Field: field, Kind: kind}

	sorted := make([]models.StudentRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		c := compare(sorted[i], key, operandOf(sorted[j], key))
		if order == models.SortAsc {
			return c < 0
		}
		return c > 0
	})
	return sorted
}

// operandOf lifts a record's field value into an Operand for comparison.
func operandOf(r models.StudentRecord, f models.Filter) models.Operand {
	switch f.Kind {
	case models.KindInt:
		v, _ := r.Int(f.Field)
		return models.Operand{Int: v}
	case models.KindDate:
		return models.Operand{Date: r.Date}
	}
	return models.Operand{Text: r.Text(f.Field)}
}

// Columns returns the output columns: the selected fields in record field order, or all
// fields when nothing usable is selected.
func Columns(selected []string) []string {
	all := models.FieldNames(models.StudentFields)
	if len(selected) == 0 {
		return all
	}
	want := make(map[string]bool, len(selected))
	for _, s := range selected {
		want[strings.ToLower(strings.TrimSpace(s))] = true
	}
	cols := make([]string, 0, len(selected))
	for _, name := range all {
		if want[name] {
			cols = append(cols, name)
		}
	}
	if len(cols) == 0 {
		return all
	}
	return cols
}
