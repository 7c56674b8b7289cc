package analyzer

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/nickyhof/FlatDB/core"
	"github.com/nickyhof/FlatDB/sql"
)

// Analyze parses the statement in queue and binds it against database.
// Parse failures come back as *sql.SyntaxError, binding failures as
// *SemanticError.
func Analyze(database *core.Database, queue *sql.TokenQueue) (*Query, error) {
	stmt, err := sql.ParseSelect(queue)
	if err != nil {
		return nil, err
	}
	return Bind(database, stmt)
}

type binder struct {
	database  *core.Database
	table     *core.TableMeta
	joinTable *core.TableMeta
}

// scope is a table a column reference may resolve against.
type scope struct {
	table  *core.TableMeta
	joined bool
}

// Bind validates stmt against database and produces a Query. The catalog is
// only read.
func Bind(database *core.Database, stmt *sql.SelectStatement) (*Query, error) {
	b := &binder{database: database}

	table, ok := database.FindTable(stmt.Table)
	if !ok {
		return nil, semanticError(RuleUnknownTable, "table '%s' does not exist in database '%s'", stmt.Table, database.Name)
	}
	b.table = table

	if stmt.Join != nil {
		joinTable, ok := database.FindTable(stmt.Join.Table)
		if !ok {
			return nil, semanticError(RuleUnknownTable, "join table '%s' does not exist in database '%s'", stmt.Join.Table, database.Name)
		}
		b.joinTable = joinTable
	}

	query := &Query{
		id:       uuid.New(),
		database: database.Name,
		table:    cloneTable(*b.table),
		source:   *cloneStatement(stmt),
	}
	if b.joinTable != nil {
		joinTable := cloneTable(*b.joinTable)
		query.joinTable = &joinTable
	}
	bound := sql.SelectStatement{Table: b.table.Name}

	columns, err := b.bindProjection(stmt)
	if err != nil {
		return nil, err
	}
	query.columns = columns
	for _, column := range columns {
		bound.Columns = append(bound.Columns, sql.Column{ColumnRef: column.Ref(), Function: column.Function})
	}

	if stmt.Join != nil {
		join, err := b.bindJoin(stmt.Join)
		if err != nil {
			return nil, err
		}
		query.join = join
		bound.Join = &sql.JoinClause{Table: b.joinTable.Name, Left: join.Left.Ref(), Right: join.Right.Ref()}
	}

	if stmt.Where != nil {
		where, err := b.bindWhere(stmt.Where)
		if err != nil {
			return nil, err
		}
		query.where = where
		expr := *stmt.Where
		expr.Column = where.Column.Ref()
		bound.Where = &expr
	}

	if stmt.OrderBy != nil {
		column, err := b.bindColumn(stmt.OrderBy.Column)
		if err != nil {
			return nil, err
		}
		query.orderBy = &Ordering{Column: column, Descending: stmt.OrderBy.Descending}
		bound.OrderBy = &sql.OrderByClause{
			Column:     sql.Column{ColumnRef: column.Ref(), Function: column.Function},
			Descending: stmt.OrderBy.Descending,
		}
	}

	if stmt.Limit != nil {
		n := stmt.Limit.N
		query.limit = &n
		bound.Limit = &sql.LimitClause{N: n}
	}

	if stmt.Into != nil {
		query.into = stmt.Into.Table
		bound.Into = &sql.IntoClause{Table: stmt.Into.Table}
	}

	query.stmt = bound
	return query, nil
}

func (b *binder) bindProjection(stmt *sql.SelectStatement) ([]BoundColumn, error) {
	var columns []BoundColumn

	if stmt.Star {
		for _, s := range b.tables() {
			for _, column := range s.table.Columns {
				columns = append(columns, BoundColumn{Table: s.table.Name, Name: column.Name, Type: column.Type, Joined: s.joined})
			}
		}
		return columns, nil
	}

	for _, column := range stmt.Columns {
		bound, err := b.bindColumn(column)
		if err != nil {
			return nil, err
		}
		columns = append(columns, bound)
	}
	return columns, nil
}

// bindColumn resolves a projected or ordering column and checks its
// aggregate.
func (b *binder) bindColumn(column sql.Column) (BoundColumn, error) {
	bound, err := b.resolve(column.ColumnRef, b.tables())
	if err != nil {
		return BoundColumn{}, err
	}
	bound.Function = column.Function

	switch column.Function {
	case sql.MinFunction, sql.MaxFunction, sql.SumFunction, sql.AvgFunction:
		if !bound.Type.IsNumeric() {
			return BoundColumn{}, semanticError(RuleAggregateType, "%s requires a numeric column but '%s.%s' is %s",
				column.Function, bound.Table, bound.Name, bound.Type)
		}
	case sql.CountFunction, sql.NoFunction:
	}
	return bound, nil
}

func (b *binder) bindJoin(join *sql.JoinClause) (*JoinCondition, error) {
	left, err := b.resolve(join.Left, b.tables())
	if err != nil {
		return nil, err
	}
	right, err := b.resolve(join.Right, []scope{{b.joinTable, true}, {b.table, false}})
	if err != nil {
		return nil, err
	}

	if left.Joined && !right.Joined {
		left, right = right, left
	}
	if left.Joined || !right.Joined {
		return nil, semanticError(RuleJoinColumn, "join must compare a column of '%s' with a column of '%s'", b.table.Name, b.joinTable.Name)
	}

	if left.Type.IsNumeric() != right.Type.IsNumeric() {
		return nil, semanticError(RuleJoinColumn, "cannot join %s column '%s.%s' with %s column '%s.%s'",
			left.Type, left.Table, left.Name, right.Type, right.Table, right.Name)
	}
	return &JoinCondition{Left: left, Right: right}, nil
}

func (b *binder) bindWhere(expr *sql.Expr) (*Condition, error) {
	column, err := b.resolve(expr.Column, b.tables())
	if err != nil {
		return nil, err
	}
	condition := &Condition{Column: column, Operator: expr.Operator}

	if expr.Operator == sql.LikeOperator {
		if column.Type != core.StringType || expr.LiteralType != sql.StringLiteralType {
			return nil, semanticError(RuleLiteralType, "LIKE requires a string column and a string pattern")
		}
		condition.Pattern = expr.Value
		condition.Value = core.StringValue(expr.Value)
		return condition, nil
	}

	switch expr.LiteralType {
	case sql.IntLiteralType:
		if !column.Type.IsNumeric() {
			return nil, literalMismatch(column, expr)
		}
		n, err := strconv.ParseInt(expr.Value, 10, 64)
		if err != nil {
			return nil, semanticError(RuleLiteralType, "integer literal %s is out of range", expr.Value)
		}
		condition.Value = core.IntValue(n)
	case sql.RealLiteralType:
		if !column.Type.IsNumeric() {
			return nil, literalMismatch(column, expr)
		}
		f, err := strconv.ParseFloat(expr.Value, 64)
		if err != nil {
			return nil, semanticError(RuleLiteralType, "real literal %s is out of range", expr.Value)
		}
		condition.Value = core.RealValue(f)
	case sql.StringLiteralType:
		if column.Type != core.StringType {
			return nil, literalMismatch(column, expr)
		}
		condition.Value = core.StringValue(expr.Value)
	default:
		return nil, semanticError(RuleLiteralType, "unsupported literal %q", expr.Value)
	}
	return condition, nil
}

func literalMismatch(column BoundColumn, expr *sql.Expr) *SemanticError {
	return semanticError(RuleLiteralType, "cannot compare %s column '%s.%s' with %s literal %s",
		column.Type, column.Table, column.Name, expr.LiteralType, expr.Value)
}

// tables lists the tables in scope, FROM first.
func (b *binder) tables() []scope {
	if b.joinTable == nil {
		return []scope{{b.table, false}}
	}
	return []scope{{b.table, false}, {b.joinTable, true}}
}

// resolve finds ref in the first of the candidate tables that has it. A
// qualified ref must name one of the candidates; in a self-join that is the
// first of the two.
func (b *binder) resolve(ref sql.ColumnRef, candidates []scope) (BoundColumn, error) {
	if ref.Table != "" {
		var found *scope
		for i := range candidates {
			if core.EqualFold(candidates[i].table.Name, ref.Table) {
				found = &candidates[i]
				break
			}
		}
		if found == nil {
			return BoundColumn{}, semanticError(RuleUnknownColumn, "column '%s': table '%s' is not part of the query", ref, ref.Table)
		}
		column, _, ok := found.table.FindColumn(ref.Name)
		if !ok {
			return BoundColumn{}, semanticError(RuleUnknownColumn, "column '%s' does not exist in table '%s'", ref.Name, found.table.Name)
		}
		return BoundColumn{Table: found.table.Name, Name: column.Name, Type: column.Type, Joined: found.joined}, nil
	}

	for _, s := range candidates {
		if column, _, ok := s.table.FindColumn(ref.Name); ok {
			return BoundColumn{Table: s.table.Name, Name: column.Name, Type: column.Type, Joined: s.joined}, nil
		}
	}
	return BoundColumn{}, semanticError(RuleUnknownColumn, "column '%s' does not exist in table '%s'", ref.Name, b.table.Name)
}
