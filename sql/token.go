package sql

import (
	"fmt"
	"strings"
)

type TokenType int

const (
	Unknown TokenType = iota
	Identifier

	// Keywords
	Asc
	Avg
	By
	Count
	Delete
	Desc
	From
	Inner
	Insert
	Intersect
	Into
	Join
	Like
	Limit
	Max
	Min
	On
	Order
	Select
	Set
	Sum
	Union
	Update
	Values
	Where

	// Literals
	IntLiteral
	RealLiteral
	StringLiteral

	// Punctuation
	LeftParen
	RightParen
	Asterisk
	Dot
	Hash
	Comma
	Equal
	NotEqual
	LessThan
	LessThanOrEqual
	GreaterThan
	GreaterThanOrEqual
	SemiColon

	EOS
)

var tokenNames = map[TokenType]string{
	Unknown:            "Unknown",
	Identifier:         "Identifier",
	Asc:                "Asc",
	Avg:                "Avg",
	By:                 "By",
	Count:              "Count",
	Delete:             "Delete",
	Desc:               "Desc",
	From:               "From",
	Inner:              "Inner",
	Insert:             "Insert",
	Intersect:          "Intersect",
	Into:               "Into",
	Join:               "Join",
	Like:               "Like",
	Limit:              "Limit",
	Max:                "Max",
	Min:                "Min",
	On:                 "On",
	Order:              "Order",
	Select:             "Select",
	Set:                "Set",
	Sum:                "Sum",
	Union:              "Union",
	Update:             "Update",
	Values:             "Values",
	Where:              "Where",
	IntLiteral:         "IntLiteral",
	RealLiteral:        "RealLiteral",
	StringLiteral:      "StringLiteral",
	LeftParen:          "LeftParen",
	RightParen:         "RightParen",
	Asterisk:           "Asterisk",
	Dot:                "Dot",
	Hash:               "Hash",
	Comma:              "Comma",
	Equal:              "Equal",
	NotEqual:           "NotEqual",
	LessThan:           "LessThan",
	LessThanOrEqual:    "LessThanOrEqual",
	GreaterThan:        "GreaterThan",
	GreaterThanOrEqual: "GreaterThanOrEqual",
	SemiColon:          "SemiColon",
	EOS:                "EOS",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// keywords maps the upper-cased keyword text to its token type. It is built
// once and never mutated.
var keywords = map[string]TokenType{
	"ASC":       Asc,
	"AVG":       Avg,
	"BY":        By,
	"COUNT":     Count,
	"DELETE":    Delete,
	"DESC":      Desc,
	"FROM":      From,
	"INNER":     Inner,
	"INSERT":    Insert,
	"INTERSECT": Intersect,
	"INTO":      Into,
	"JOIN":      Join,
	"LIKE":      Like,
	"LIMIT":     Limit,
	"MAX":       Max,
	"MIN":       Min,
	"ON":        On,
	"ORDER":     Order,
	"SELECT":    Select,
	"SET":       Set,
	"SUM":       Sum,
	"UNION":     Union,
	"UPDATE":    Update,
	"VALUES":    Values,
	"WHERE":     Where,
}

func lookupIdentifier(id string) TokenType {
	if tokenType, ok := keywords[strings.ToUpper(id)]; ok {
		return tokenType
	}
	return Identifier
}

// IsKeyword reports whether the token type is one of the reserved words.
func (t TokenType) IsKeyword() bool {
	return t >= Asc && t <= Where
}

type Token struct {
	Type  TokenType
	Line  int
	Col   int
	Value string
}

func (token Token) String() string {
	switch token.Type {
	case Identifier, IntLiteral, RealLiteral, StringLiteral, Unknown:
		return token.Type.String() + "(" + token.Value + ")"
	default:
		return token.Type.String()
	}
}
