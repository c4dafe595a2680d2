package query

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ssargent/blmreader/pkg/blm"
)

// Operators accepted by FieldQuery, longest first so ParseQuery prefers ">=" to ">"
var operators = []string{">=", "<=", "!=", "=", ">", "<", "~"}

// FieldQuery represents a single field-based query condition
type FieldQuery struct {
	Field    string // Column name from DEFINITION, e.g. "PRICE"
	Operator string // One of "=", "!=", ">", "<", ">=", "<=", "~" (contains)
	Value    string // Value to compare against
}

// Validate checks if the query is properly formed
func (q *FieldQuery) Validate() error {
	if q.Field == "" {
		return fmt.Errorf("field name cannot be empty")
	}
	if q.Operator == "" {
		return fmt.Errorf("operator cannot be empty")
	}
	for _, op := range operators {
		if q.Operator == op {
			return nil
		}
	}
	return fmt.Errorf("invalid operator: %s", q.Operator)
}

// Match reports whether value satisfies the condition. Ordering operators compare
// numerically when both sides parse as numbers and lexically otherwise.
func (q *FieldQuery) Match(value string) bool {
	switch q.Operator {
	case "=":
		return compare(value, q.Value) == 0
	case "!=":
		return compare(value, q.Value) != 0
	case ">":
		return compare(value, q.Value) > 0
	case "<":
		return compare(value, q.Value) < 0
	case ">=":
		return compare(value, q.Value) >= 0
	case "<=":
		return compare(value, q.Value) <= 0
	case "~":
		return strings.Contains(value, q.Value)
	default:
		return false
	}
}

func (q FieldQuery) String() string {
	return q.Field + q.Operator + q.Value
}

// ParseQuery parses an expression such as "PRICE>=250000" or "ADDRESS_1~Cottage"
func ParseQuery(expr string) (FieldQuery, error) {
	best, at := "", -1
	for _, op := range operators {
		i := strings.Index(expr, op)
		if i < 0 {
			continue
		}
		// The earliest operator wins; at equal positions the longer one does
		if at < 0 || i < at || (i == at && len(op) > len(best)) {
			best, at = op, i
		}
	}
	if at < 0 {
		return FieldQuery{}, fmt.Errorf("no operator in query %q", expr)
	}

	q := FieldQuery{
		Field:    strings.TrimSpace(expr[:at]),
		Operator: best,
		Value:    strings.TrimSpace(expr[at+len(best):]),
	}
	if err := q.Validate(); err != nil {
		return FieldQuery{}, err
	}
	return q, nil
}

func compare(a, b string) int {
	fa, errA := strconv.ParseFloat(strings.TrimSpace(a), 64)
	fb, errB := strconv.ParseFloat(strings.TrimSpace(b), 64)
	if errA == nil && errB == nil {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}

// QueryResult represents a single matching record
type QueryResult struct {
	Index int               // Record position in the file
	Row   map[string]string // Record fields keyed by column name
}

// QueryIterator provides streaming access to query results
type QueryIterator interface {
	Next() bool
	Result() QueryResult
	Err() error
	Close() error
}

// QueryEngine handles query execution
type QueryEngine interface {
	Execute(ctx context.Context, parser *blm.Parser, query FieldQuery) (QueryIterator, error)
	ExecuteRange(ctx context.Context, parser *blm.Parser, startQuery, endQuery FieldQuery) (QueryIterator, error)
}
