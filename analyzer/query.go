package analyzer

import (
	"github.com/google/uuid"

	"github.com/nickyhof/FlatDB/core"
	"github.com/nickyhof/FlatDB/sql"
)

// BoundColumn is a column reference resolved against the catalog. Table and
// Name carry catalog casing. Joined marks a column of the JOIN table, which
// tells the two sides of a self-join apart.
type BoundColumn struct {
	Table    string
	Name     string
	Type     core.ColumnType
	Function sql.AggregateFunc
	Joined   bool
}

// ResultType is the type of the values the column holds once its aggregate,
// if any, has been applied.
func (c BoundColumn) ResultType() core.ColumnType {
	switch c.Function {
	case sql.CountFunction:
		return core.IntType
	case sql.AvgFunction:
		return core.RealType
	default:
		return c.Type
	}
}

// Ref drops the aggregate.
func (c BoundColumn) Ref() sql.ColumnRef {
	return sql.ColumnRef{Table: c.Table, Name: c.Name}
}

// Condition is a bound WHERE comparison. Value holds the literal typed by
// its literal kind; LIKE patterns stay in Pattern.
type Condition struct {
	Column   BoundColumn
	Operator sql.Operator
	Value    core.Value
	Pattern  string
}

// JoinCondition pairs a FROM table column with a JOIN table column.
type JoinCondition struct {
	Left  BoundColumn
	Right BoundColumn
}

type Ordering struct {
	Column     BoundColumn
	Descending bool
}

// Query is a statement bound to one catalog snapshot. It cannot be changed
// once built; accessors return copies.
type Query struct {
	id        uuid.UUID
	database  string
	table     core.TableMeta
	joinTable *core.TableMeta
	columns   []BoundColumn
	join      *JoinCondition
	where     *Condition
	orderBy   *Ordering
	limit     *int
	into      string
	stmt      sql.SelectStatement
	source    sql.SelectStatement
}

func (q *Query) ID() uuid.UUID {
	return q.id
}

func (q *Query) Database() string {
	return q.database
}

// Table returns the FROM table's metadata.
func (q *Query) Table() core.TableMeta {
	return cloneTable(q.table)
}

func (q *Query) JoinTable() (core.TableMeta, bool) {
	if q.joinTable == nil {
		return core.TableMeta{}, false
	}
	return cloneTable(*q.joinTable), true
}

// Columns returns the projection in query order.
func (q *Query) Columns() []BoundColumn {
	columns := make([]BoundColumn, len(q.columns))
	copy(columns, q.columns)
	return columns
}

func (q *Query) Join() (JoinCondition, bool) {
	if q.join == nil {
		return JoinCondition{}, false
	}
	return *q.join, true
}

func (q *Query) Where() (Condition, bool) {
	if q.where == nil {
		return Condition{}, false
	}
	return *q.where, true
}

func (q *Query) OrderBy() (Ordering, bool) {
	if q.orderBy == nil {
		return Ordering{}, false
	}
	return *q.orderBy, true
}

func (q *Query) Limit() (int, bool) {
	if q.limit == nil {
		return 0, false
	}
	return *q.limit, true
}

// Into returns the INTO target. It is parsed and bound but never executed.
func (q *Query) Into() (string, bool) {
	return q.into, q.into != ""
}

// HasAggregate reports whether any projected column carries an aggregate.
func (q *Query) HasAggregate() bool {
	for _, column := range q.columns {
		if column.Function != sql.NoFunction {
			return true
		}
	}
	return false
}

// Select returns the statement with every name qualified and in catalog
// casing, suitable for printing.
func (q *Query) Select() *sql.SelectStatement {
	return cloneStatement(&q.stmt)
}

// Statement returns the statement as it was written.
func (q *Query) Statement() *sql.SelectStatement {
	return cloneStatement(&q.source)
}

func cloneStatement(src *sql.SelectStatement) *sql.SelectStatement {
	stmt := *src
	stmt.Columns = make([]sql.Column, len(src.Columns))
	copy(stmt.Columns, src.Columns)
	if src.Join != nil {
		join := *src.Join
		stmt.Join = &join
	}
	if src.Where != nil {
		where := *src.Where
		stmt.Where = &where
	}
	if src.OrderBy != nil {
		orderBy := *src.OrderBy
		stmt.OrderBy = &orderBy
	}
	if src.Limit != nil {
		limit := *src.Limit
		stmt.Limit = &limit
	}
	if src.Into != nil {
		into := *src.Into
		stmt.Into = &into
	}
	return &stmt
}

func cloneTable(table core.TableMeta) core.TableMeta {
	columns := make([]core.ColumnMeta, len(table.Columns))
	copy(columns, table.Columns)
	table.Columns = columns
	return table
}
