package db

import (
	"errors"
	"os"
	"time"

	"github.com/nickyhof/FlatDB/analyzer"
	"github.com/nickyhof/FlatDB/core"
	"github.com/nickyhof/FlatDB/op"
	"github.com/nickyhof/FlatDB/ps"
	"github.com/nickyhof/FlatDB/sql"
)

type Engine struct {
	*ps.Persistence
	Identity core.Identity

	// Warn receives tokenizer warnings for statements read by Query and
	// sessions. Nil keeps the lexer's default of logging them.
	Warn sql.WarnFunc
}

func NewEngine(persistence *ps.Persistence, identity core.Identity) *Engine {
	return &Engine{
		Persistence: persistence,
		Identity:    identity,
	}
}

// Execute runs a bound query and returns its rows. The steps run in a fixed
// order: load (and join), filter, sort, project, aggregate, limit.
func (engine *Engine) Execute(query *analyzer.Query) (*ResultSet, error) {
	rs, _, err := engine.execute(query)
	return rs, err
}

// ExecuteQuery runs a bound query and packages the rows for display.
func (engine *Engine) ExecuteQuery(query *analyzer.Query) (QueryResult, error) {
	startTime := time.Now()

	rs, scanned, err := engine.execute(query)
	if err != nil {
		return QueryResult{}, err
	}

	_, joined := query.JoinTable()
	columns := rs.Columns()
	labels := make([]string, len(columns))
	for i, column := range columns {
		labels[i] = column.Label(joined)
	}

	return QueryResult{
		QueryID:          query.ID(),
		Transaction:      engine.Persistence.LatestTransaction(),
		Columns:          labels,
		Data:             rs.Strings(),
		RecordsRead:      rs.RowCount(),
		ExecutionTimeSec: time.Since(startTime).Seconds(),
		ExecutionOps:     scanned,
	}, nil
}

func (engine *Engine) execute(query *analyzer.Query) (*ResultSet, int, error) {
	rs := NewResultSet()

	table := query.Table()
	tables := []core.TableMeta{table}
	if joinTable, ok := query.JoinTable(); ok {
		tables = append(tables, joinTable)
	}
	for side, meta := range tables {
		for _, column := range meta.Columns {
			info := ColumnInfo{Table: meta.Name, Name: column.Name, Type: column.Type, Joined: side == 1}
			if _, err := rs.AddColumn(info); err != nil {
				return nil, 0, fatalError(err, "cannot seed result columns")
			}
		}
	}

	scanned, err := engine.load(rs, query)
	if err != nil {
		return nil, scanned, err
	}

	if where, ok := query.Where(); ok {
		if err := filter(rs, where); err != nil {
			return nil, scanned, err
		}
	}

	if orderBy, ok := query.OrderBy(); ok {
		col, found := locate(rs, orderBy.Column)
		if !found {
			return nil, scanned, fatalError(nil, "order by column %s.%s not loaded", orderBy.Column.Table, orderBy.Column.Name)
		}
		if err := rs.SortBy(col, orderBy.Descending); err != nil {
			return nil, scanned, fatalError(err, "cannot sort")
		}
	}

	if err := project(rs, query.Columns()); err != nil {
		return nil, scanned, err
	}

	if query.HasAggregate() {
		if err := aggregate(rs, query.Columns()); err != nil {
			return nil, scanned, err
		}
	}

	if limit, ok := query.Limit(); ok {
		rs.Truncate(limit)
	}

	return rs, scanned, nil
}

// locate finds the loaded column a bound column refers to.
func locate(rs *ResultSet, column analyzer.BoundColumn) (int, bool) {
	return rs.findKey(columnKey(column.Table, column.Name, column.Joined))
}

// project drops every column the query does not select, then orders the
// survivors as selected. A column selected more than once is copied into
// each of its later positions.
func project(rs *ResultSet, columns []analyzer.BoundColumn) error {
	selected := make(map[string]bool, len(columns))
	for _, column := range columns {
		selected[columnKey(column.Table, column.Name, column.Joined)] = true
	}
	for col := rs.ColumnCount(); col >= 1; col-- {
		info, _ := rs.Column(col)
		if selected[info.key()] {
			continue
		}
		if err := rs.DeleteColumn(col); err != nil {
			return fatalError(err, "cannot drop column %s", info.Label(true))
		}
	}

	for i, column := range columns {
		slot := i + 1
		col, ok := locate(rs, column)
		if !ok {
			return fatalError(nil, "selected column %s.%s not loaded", column.Table, column.Name)
		}
		if col < slot {
			if err := rs.CopyColumn(col, slot); err != nil {
				return fatalError(err, "cannot repeat column %s.%s", column.Table, column.Name)
			}
			continue
		}
		if err := rs.MoveColumn(col, slot); err != nil {
			return fatalError(err, "cannot reorder column %s.%s", column.Table, column.Name)
		}
	}
	return nil
}

// dataError turns a table read failure into a FatalError.
func dataError(tableOp *op.TableOp, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return fatalError(err, "file not found: %s", tableOp.DataPath())
	}
	return fatalError(err, "cannot read table %s", tableOp.Table.Name)
}

// Fatal reports whether err aborts the whole statement stream.
func Fatal(err error) bool {
	return errors.Is(err, ErrFatal)
}

// Recoverable reports whether err only rejects the statement that caused it.
func Recoverable(err error) bool {
	var syntaxErr *sql.SyntaxError
	var semanticErr *analyzer.SemanticError
	return errors.As(err, &syntaxErr) || errors.As(err, &semanticErr)
}
