package db

import (
	"github.com/nickyhof/FlatDB/analyzer"
	"github.com/nickyhof/FlatDB/core"
	"github.com/nickyhof/FlatDB/sql"
)

// filter deletes the rows that fail the condition, walking from the last
// row to the first so that deletions never shift a row still to be tested.
func filter(rs *ResultSet, condition analyzer.Condition) error {
	col, ok := locate(rs, condition.Column)
	if !ok {
		return fatalError(nil, "where column %s.%s not loaded", condition.Column.Table, condition.Column.Name)
	}

	for row := rs.RowCount(); row >= 1; row-- {
		value, err := rs.Get(row, col)
		if err != nil {
			return fatalError(err, "where")
		}
		if matches(value, condition) {
			continue
		}
		if err := rs.DeleteRow(row); err != nil {
			return fatalError(err, "where")
		}
	}
	return nil
}

func matches(value core.Value, condition analyzer.Condition) bool {
	switch condition.Operator {
	case sql.EqualOperator:
		return core.Equal(value, condition.Value)
	case sql.NotEqualOperator:
		return !core.Equal(value, condition.Value)
	case sql.LessThanOperator:
		return core.Compare(value, condition.Value) < 0
	case sql.LessThanOrEqualOperator:
		return core.Compare(value, condition.Value) <= 0
	case sql.GreaterThanOperator:
		return core.Compare(value, condition.Value) > 0
	case sql.GreaterThanOrEqualOperator:
		return core.Compare(value, condition.Value) >= 0
	case sql.LikeOperator:
		return matchLike(value.String(), condition.Pattern)
	default:
		return false
	}
}

// matchLike matches value against a LIKE pattern, case-insensitively.
// '%' matches any run of characters, '_' exactly one.
func matchLike(value, pattern string) bool {
	v := []rune(core.Fold(value))
	p := []rune(core.Fold(pattern))

	// Greedy match with backtracking to the last '%'.
	vi, pi := 0, 0
	star, mark := -1, 0
	for vi < len(v) {
		switch {
		case pi < len(p) && (p[pi] == '_' || p[pi] == v[vi]):
			vi++
			pi++
		case pi < len(p) && p[pi] == '%':
			star = pi
			mark = vi
			pi++
		case star >= 0:
			pi = star + 1
			mark++
			vi = mark
		default:
			return false
		}
	}
	for pi < len(p) && p[pi] == '%' {
		pi++
	}
	return pi == len(p)
}
