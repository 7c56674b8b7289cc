package analyzer

import "fmt"

// Rule identifies the check a statement failed.
type Rule int

const (
	RuleUnknownTable Rule = iota + 1
	RuleUnknownColumn
	RuleAggregateType
	RuleLiteralType
	RuleJoinColumn
)

func (r Rule) String() string {
	switch r {
	case RuleUnknownTable:
		return "unknown table"
	case RuleUnknownColumn:
		return "unknown column"
	case RuleAggregateType:
		return "aggregate type"
	case RuleLiteralType:
		return "literal type"
	case RuleJoinColumn:
		return "join column"
	default:
		return fmt.Sprintf("Rule(%d)", int(r))
	}
}

// SemanticError reports a statement that parsed but does not fit the
// catalog.
type SemanticError struct {
	Rule Rule
	Msg  string
}

func (e *SemanticError) Error() string {
	return fmt.Sprintf("semantic error (%s): %s", e.Rule, e.Msg)
}

func semanticError(rule Rule, format string, args ...any) *SemanticError {
	return &SemanticError{Rule: rule, Msg: fmt.Sprintf(format, args...)}
}
