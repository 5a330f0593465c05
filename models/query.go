package models

// Operator is a filter comparison
type Operator string

const (
	OpEq      Operator = "eq"
	OpGt      Operator = "gt"
	OpLt      Operator = "lt"
	OpGte     Operator = "gte"
	OpLte     Operator = "lte"
	OpBetween Operator = "between"
	OpIn      Operator = "in"
)

// Operators lists the operators a translator may emit.
var Operators = []Operator{OpEq, OpGt, OpLt, OpGte, OpLte, OpBetween, OpIn}

// SortOrder is the direction of a sort
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Aggregate selects what the executor returns
type Aggregate string

const (
	AggregateNone  Aggregate = "none"
	AggregateCount Aggregate = "count"
	AggregateTopN  Aggregate = "topN"
)

// Operand is one coerced filter value. Only the member matching the field kind is set.
type Operand struct {
	Text string `json:"text,omitempty"`
	Int  int    `json:"int,omitempty"`
	Date Date   `json:"date,omitempty"`
}

// Filter is a validated predicate over one record field.
type Filter struct {
	Field    string    `json:"field"`
	Kind     FieldKind `json:"kind"`
	Operator Operator  `json:"operator"`
	Operands []Operand `json:"operands"`
}

// DroppedPredicate records a part of the translator output that failed validation.
type DroppedPredicate struct {
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason"`
}

// QuerySpec is the structured form of a question, consumed by the executor.
type QuerySpec struct {
	Filters   []Filter           `json:"filters"`
	SortBy    string             `json:"sort_by,omitempty"`
	SortOrder SortOrder          `json:"sort_order,omitempty"`
	Limit     int                `json:"limit,omitempty"` // 0 = no limit
	Aggregate Aggregate          `json:"aggregate"`
	Select    []string           `json:"select,omitempty"`
	Dropped   []DroppedPredicate `json:"dropped,omitempty"`
}

// FiltersOnly reports whether the spec has no sort, limit, selection or aggregation.
func (q QuerySpec) FiltersOnly() bool {
	return q.SortBy == "" && q.Limit == 0 && len(q.Select) == 0 &&
		(q.Aggregate == "" || q.Aggregate == AggregateNone)
}
