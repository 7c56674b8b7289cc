package sql

import "fmt"

type AggregateFunc int

const (
	NoFunction AggregateFunc = iota
	MinFunction
	MaxFunction
	SumFunction
	AvgFunction
	CountFunction
)

func (f AggregateFunc) String() string {
	switch f {
	case NoFunction:
		return ""
	case MinFunction:
		return "MIN"
	case MaxFunction:
		return "MAX"
	case SumFunction:
		return "SUM"
	case AvgFunction:
		return "AVG"
	case CountFunction:
		return "COUNT"
	default:
		return fmt.Sprintf("AggregateFunc(%d)", int(f))
	}
}

var aggregateTokens = map[TokenType]AggregateFunc{
	Min:   MinFunction,
	Max:   MaxFunction,
	Sum:   SumFunction,
	Avg:   AvgFunction,
	Count: CountFunction,
}

type Operator int

const (
	LessThanOperator Operator = iota + 1
	LessThanOrEqualOperator
	GreaterThanOperator
	GreaterThanOrEqualOperator
	EqualOperator
	NotEqualOperator
	LikeOperator
)

func (op Operator) String() string {
	switch op {
	case LessThanOperator:
		return "<"
	case LessThanOrEqualOperator:
		return "<="
	case GreaterThanOperator:
		return ">"
	case GreaterThanOrEqualOperator:
		return ">="
	case EqualOperator:
		return "="
	case NotEqualOperator:
		return "<>"
	case LikeOperator:
		return "like"
	default:
		return fmt.Sprintf("Operator(%d)", int(op))
	}
}

var operatorTokens = map[TokenType]Operator{
	LessThan:           LessThanOperator,
	LessThanOrEqual:    LessThanOrEqualOperator,
	GreaterThan:        GreaterThanOperator,
	GreaterThanOrEqual: GreaterThanOrEqualOperator,
	Equal:              EqualOperator,
	NotEqual:           NotEqualOperator,
	Like:               LikeOperator,
}

type LiteralType int

const (
	IntLiteralType LiteralType = iota + 1
	RealLiteralType
	StringLiteralType
)

func (t LiteralType) String() string {
	switch t {
	case IntLiteralType:
		return "int"
	case RealLiteralType:
		return "real"
	case StringLiteralType:
		return "string"
	default:
		return fmt.Sprintf("LiteralType(%d)", int(t))
	}
}

// ColumnRef names a column, optionally qualified by its table.
type ColumnRef struct {
	Table string
	Name  string
}

func (ref ColumnRef) String() string {
	if ref.Table == "" {
		return ref.Name
	}
	return ref.Table + "." + ref.Name
}

// Column is one projected column, optionally wrapped in an aggregate.
type Column struct {
	ColumnRef
	Function AggregateFunc
}

func (column Column) String() string {
	if column.Function == NoFunction {
		return column.ColumnRef.String()
	}
	return column.Function.String() + "(" + column.ColumnRef.String() + ")"
}

type JoinClause struct {
	Table string
	Left  ColumnRef
	Right ColumnRef
}

// Expr is the single comparison of a WHERE clause.
type Expr struct {
	Column      ColumnRef
	Operator    Operator
	Value       string
	LiteralType LiteralType
}

type OrderByClause struct {
	Column     Column
	Descending bool
}

type LimitClause struct {
	N int
}

type IntoClause struct {
	Table string
}

// SelectStatement is the parsed form of one statement. Optional clauses are
// nil when absent. Star is set for SELECT * and leaves Columns empty.
type SelectStatement struct {
	Table   string
	Star    bool
	Columns []Column
	Join    *JoinClause
	Where   *Expr
	OrderBy *OrderByClause
	Limit   *LimitClause
	Into    *IntoClause
}
