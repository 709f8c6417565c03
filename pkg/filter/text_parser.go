// Package filter parses SQL-like where-expressions into conditions.
//
//	age BETWEEN 18 AND 30 AND status IN ('active', 'pending') AND name STARTS 'Jo'
//
// Predicates are field comparisons (= != <> > >= < <=), BETWEEN, [NOT] IN,
// [NOT] LIKE with % and _ wildcards, [NOT] STARTS, ENDS or CONTAINS, and
// IS [NOT] NULL. They combine with AND, OR, NOT and parentheses. Quoted
// strings that look like RFC 3339 timestamps or YYYY-MM-DD dates compare as
// times.
package filter

import (
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"

	"github.com/robert-malhotra/go-esquery/pkg/condition"
	"github.com/robert-malhotra/go-esquery/pkg/field"
	"github.com/robert-malhotra/go-esquery/query"
)

// ErrNullComparison is returned when NULL is used with an ordering operator.
var ErrNullComparison = errors.New("filter: NULL only compares with = and !=")

// TextParser parses where-expressions. It is safe for concurrent use.
type TextParser struct {
	parser *participle.Parser[orExpr]
}

// NewTextParser builds the grammar.
func NewTextParser() (*TextParser, error) {
	textLexer := lexer.MustSimple([]lexer.SimpleRule{
		{Name: "whitespace", Pattern: `\s+`},
		{Name: "String", Pattern: `'(?:\\.|[^'])*'|"(?:\\.|[^"])*"`},
		{Name: "Number", Pattern: `[-+]?\d+(?:\.\d+)?(?:[eE][-+]?\d+)?`},
		{Name: "CompOp", Pattern: `<>|!=|==|>=|<=|[=<>]`},
		{Name: "Keyword", Pattern: `(?i)\b(?:AND|OR|NOT|BETWEEN|IN|LIKE|STARTS|ENDS|CONTAINS|IS|NULL)\b`},
		{Name: "Boolean", Pattern: `(?i)\b(?:true|false)\b`},
		{Name: "Ident", Pattern: `@?[a-zA-Z_][a-zA-Z0-9_]*(?:\.[a-zA-Z_][a-zA-Z0-9_]*)*`},
		{Name: "Punct", Pattern: `[(),]`},
	})

	parser, err := participle.Build[orExpr](
		participle.Lexer(textLexer),
		participle.Unquote("String"),
		participle.CaseInsensitive("Keyword"),
		participle.UseLookahead(2),
	)
	if err != nil {
		return nil, errors.Wrap(err, "filter: build parser")
	}
	return &TextParser{parser: parser}, nil
}

var defaultParser *TextParser

func init() {
	p, err := NewTextParser()
	if err != nil {
		panic(err)
	}
	defaultParser = p
}

// Parse compiles input with the default parser.
func Parse(input string) (condition.Condition, error) {
	return defaultParser.Parse(input)
}

// ParseAll compiles every expression and conjoins the results.
func ParseAll(inputs ...string) (condition.Condition, error) {
	conds := make([]condition.Condition, 0, len(inputs))
	for _, in := range inputs {
		c, err := Parse(in)
		if err != nil {
			return nil, err
		}
		conds = append(conds, c)
	}
	return condition.All(conds...), nil
}

// Parse compiles input into a condition. Blank input matches everything.
func (p *TextParser) Parse(input string) (condition.Condition, error) {
	if strings.TrimSpace(input) == "" {
		return condition.Null, nil
	}
	ast, err := p.parser.ParseString("", input)
	if err != nil {
		return nil, errors.Wrap(err, "filter: parse error")
	}
	return ast.compile()
}

type orExpr struct {
	And []*andExpr `@@ ( "OR" @@ )*`
}

type andExpr struct {
	Terms []*unaryExpr `@@ ( "AND" @@ )*`
}

type unaryExpr struct {
	Not   *unaryExpr `  "NOT" @@`
	Group *orExpr    `| "(" @@ ")"`
	Pred  *predicate `| @@`
}

type predicate struct {
	Field   string     `@Ident`
	Compare *compare   `( @@`
	Between *between   `| @@`
	In      *inList    `| @@`
	Pattern *pattern   `| @@`
	Null    *nullCheck `| @@ )`
}

type compare struct {
	Op    string   `@CompOp`
	Value *literal `@@`
}

type between struct {
	Lower *literal `"BETWEEN" @@`
	Upper *literal `"AND" @@`
}

type inList struct {
	Not    bool       `@"NOT"?`
	In     string     `@"IN"`
	Values []*literal `"(" ( @@ ( "," @@ )* )? ")"`
}

type pattern struct {
	Not   bool   `@"NOT"?`
	Op    string `@( "LIKE" | "STARTS" | "ENDS" | "CONTAINS" )`
	Value string `@String`
}

type nullCheck struct {
	Is  string `@"IS"`
	Not bool   `@"NOT"? "NULL"`
}

type literal struct {
	String *string `  @String`
	Number *string `| @Number`
	Bool   *string `| @Boolean`
	Null   bool    `| @"NULL"`
}

func (e *orExpr) compile() (condition.Condition, error) {
	conds := make([]condition.Condition, 0, len(e.And))
	for _, a := range e.And {
		c, err := a.compile()
		if err != nil {
			return nil, err
		}
		conds = append(conds, c)
	}
	return condition.Any(conds...), nil
}

func (e *andExpr) compile() (condition.Condition, error) {
	conds := make([]condition.Condition, 0, len(e.Terms))
	for _, t := range e.Terms {
		c, err := t.compile()
		if err != nil {
			return nil, err
		}
		conds = append(conds, c)
	}
	return condition.All(conds...), nil
}

func (e *unaryExpr) compile() (condition.Condition, error) {
	switch {
	case e.Not != nil:
		c, err := e.Not.compile()
		if err != nil {
			return nil, err
		}
		return condition.Not(c), nil
	case e.Group != nil:
		return e.Group.compile()
	case e.Pred != nil:
		return e.Pred.compile()
	}
	return nil, errors.New("filter: empty expression")
}

func (p *predicate) compile() (condition.Condition, error) {
	ref, err := field.Parse(p.Field)
	if err != nil {
		return nil, err
	}
	switch {
	case p.Compare != nil:
		return p.Compare.compile(ref)
	case p.Between != nil:
		return condition.Between(ref, p.Between.Lower.value(), p.Between.Upper.value())
	case p.In != nil:
		values := make([]any, 0, len(p.In.Values))
		for _, v := range p.In.Values {
			values = append(values, v.value())
		}
		op := condition.OpIn
		if p.In.Not {
			op = condition.OpNotIn
		}
		return condition.Create(ref, values, op)
	case p.Pattern != nil:
		return p.Pattern.compile(ref)
	case p.Null != nil:
		if p.Null.Not {
			return condition.Exists(ref), nil
		}
		return condition.Missing(ref), nil
	}
	return nil, errors.Errorf("filter: incomplete predicate on %q", p.Field)
}

func (c *compare) compile(ref field.Ref) (condition.Condition, error) {
	op, err := condition.ParseOperator(c.Op)
	if err != nil {
		return nil, err
	}
	if c.Value.Null {
		switch op {
		case condition.OpEqual:
			return condition.Missing(ref), nil
		case condition.OpNotEqual:
			return condition.Exists(ref), nil
		}
		return nil, errors.Wrapf(ErrNullComparison, "%s %s NULL", ref, op)
	}
	return condition.Create(ref, c.Value.value(), op)
}

func (p *pattern) compile(ref field.Ref) (condition.Condition, error) {
	var (
		c   condition.Condition
		err error
	)
	op := strings.ToLower(p.Op)
	if op == "like" {
		c = condition.Wildcard(ref, query.LikeToWildcard(p.Value))
	} else {
		c, err = condition.Pattern(ref, p.Value, condition.Operator(op))
		if err != nil {
			return nil, err
		}
	}
	if p.Not {
		return condition.Not(c), nil
	}
	return c, nil
}

func (l *literal) value() any {
	switch {
	case l == nil || l.Null:
		return nil
	case l.String != nil:
		if t, ok := parseTime(*l.String); ok {
			return t
		}
		return *l.String
	case l.Number != nil:
		return parseNumber(*l.Number)
	case l.Bool != nil:
		return strings.EqualFold(*l.Bool, "true")
	}
	return nil
}

func parseNumber(s string) any {
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	return f
}

func parseTime(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
