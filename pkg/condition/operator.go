package condition

import (
	"strings"

	"github.com/pkg/errors"
)

// Operator identifies how a field is compared with a value.
type Operator string

const (
	OpEqual          Operator = "="
	OpNotEqual       Operator = "!="
	OpGreater        Operator = ">"
	OpGreaterOrEqual Operator = ">="
	OpLess           Operator = "<"
	OpLessOrEqual    Operator = "<="
	OpIn             Operator = "in"
	OpNotIn          Operator = "not in"
	OpStarts         Operator = "starts"
	OpEnds           Operator = "ends"
	OpContains       Operator = "contains"
)

var operatorAliases = map[string]Operator{
	"=":        OpEqual,
	"==":       OpEqual,
	"eq":       OpEqual,
	"!=":       OpNotEqual,
	"<>":       OpNotEqual,
	"ne":       OpNotEqual,
	">":        OpGreater,
	"gt":       OpGreater,
	">=":       OpGreaterOrEqual,
	"gte":      OpGreaterOrEqual,
	"<":        OpLess,
	"lt":       OpLess,
	"<=":       OpLessOrEqual,
	"lte":      OpLessOrEqual,
	"in":       OpIn,
	"not in":   OpNotIn,
	"nin":      OpNotIn,
	"starts":   OpStarts,
	"ends":     OpEnds,
	"contains": OpContains,
}

// ParseOperator converts a textual operator, ignoring case and surrounding space.
func ParseOperator(s string) (Operator, error) {
	key := strings.Join(strings.Fields(strings.ToLower(s)), " ")
	if op, ok := operatorAliases[key]; ok {
		return op, nil
	}
	return "", errors.Wrapf(ErrUnknownOperator, "%q", s)
}

func (o Operator) String() string { return string(o) }

// IsComparison reports whether o is one of the four ordering operators.
func (o Operator) IsComparison() bool {
	switch o {
	case OpGreater, OpGreaterOrEqual, OpLess, OpLessOrEqual:
		return true
	}
	return false
}

// IsPattern reports whether o is a wildcard pattern operator.
func (o Operator) IsPattern() bool {
	switch o {
	case OpStarts, OpEnds, OpContains:
		return true
	}
	return false
}

// Boundary selects which ends of a two-sided range are inclusive.
type Boundary uint8

const (
	// BoundaryBoth includes both ends.
	BoundaryBoth Boundary = iota
	// BoundaryLeft includes the lower end and excludes the upper end.
	BoundaryLeft
	// BoundaryRight excludes the lower end and includes the upper end.
	BoundaryRight
)

func (b Boundary) String() string {
	switch b {
	case BoundaryLeft:
		return "left"
	case BoundaryRight:
		return "right"
	default:
		return "both"
	}
}

func (b Boundary) lowerInclusive() bool { return b == BoundaryLeft || b == BoundaryBoth }

func (b Boundary) upperInclusive() bool { return b == BoundaryRight || b == BoundaryBoth }
