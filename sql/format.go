package sql

import (
	"fmt"
	"io"
	"strings"
)

// Print writes the **QUERY AST** block for the statement. Absent clauses are
// shown as (NULL).
func (stmt *SelectStatement) Print(w io.Writer) {
	fmt.Fprintln(w, "**QUERY AST**")
	fmt.Fprintf(w, "Table: %s\n", stmt.Table)

	if stmt.Star {
		fmt.Fprintln(w, "Select column: *")
	}
	for _, column := range stmt.Columns {
		fmt.Fprintf(w, "Select column: %s\n", column)
	}

	if stmt.Join == nil {
		fmt.Fprintln(w, "Join (NULL)")
	} else {
		fmt.Fprintf(w, "Join %s On %s = %s\n", stmt.Join.Table, stmt.Join.Left, stmt.Join.Right)
	}

	if stmt.Where == nil {
		fmt.Fprintln(w, "Where (NULL)")
	} else {
		fmt.Fprintf(w, "Where %s %s %s\n", stmt.Where.Column, stmt.Where.Operator, stmt.Where.literal())
	}

	if stmt.OrderBy == nil {
		fmt.Fprintln(w, "Order By (NULL)")
	} else {
		direction := "ASC"
		if stmt.OrderBy.Descending {
			direction = "DESC"
		}
		fmt.Fprintf(w, "Order By %s %s\n", stmt.OrderBy.Column, direction)
	}

	if stmt.Limit == nil {
		fmt.Fprintln(w, "Limit (NULL)")
	} else {
		fmt.Fprintf(w, "Limit %d\n", stmt.Limit.N)
	}

	if stmt.Into == nil {
		fmt.Fprintln(w, "Into (NULL)")
	} else {
		fmt.Fprintf(w, "Into %s\n", stmt.Into.Table)
	}

	fmt.Fprintln(w, "**END OF QUERY AST**")
}

// literal renders the value as written; strings are quoted with ' unless
// they contain one.
func (expr *Expr) literal() string {
	if expr.LiteralType != StringLiteralType {
		return expr.Value
	}
	if strings.Contains(expr.Value, "'") {
		return `"` + expr.Value + `"`
	}
	return "'" + expr.Value + "'"
}

func (stmt *SelectStatement) String() string {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	if stmt.Star {
		sb.WriteString("*")
	}
	for i, column := range stmt.Columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(column.String())
	}
	sb.WriteString(" FROM " + stmt.Table)
	if stmt.Join != nil {
		fmt.Fprintf(&sb, " JOIN %s ON %s = %s", stmt.Join.Table, stmt.Join.Left, stmt.Join.Right)
	}
	if stmt.Where != nil {
		fmt.Fprintf(&sb, " WHERE %s %s %s", stmt.Where.Column, stmt.Where.Operator, stmt.Where.literal())
	}
	if stmt.OrderBy != nil {
		sb.WriteString(" ORDER BY " + stmt.OrderBy.Column.String())
		if stmt.OrderBy.Descending {
			sb.WriteString(" DESC")
		}
	}
	if stmt.Limit != nil {
		fmt.Fprintf(&sb, " LIMIT %d", stmt.Limit.N)
	}
	if stmt.Into != nil {
		sb.WriteString(" INTO " + stmt.Into.Table)
	}
	sb.WriteString(";")
	return sb.String()
}
