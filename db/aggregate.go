package db

import (
	"github.com/nickyhof/FlatDB/analyzer"
	"github.com/nickyhof/FlatDB/core"
	"github.com/nickyhof/FlatDB/sql"
)

// aggregate collapses rs to a single row. rs holds the projected columns,
// one per entry of columns. Aggregate columns hold their scalar; the other
// columns keep the first row's value, or the zero value when no row
// survived filtering.
func aggregate(rs *ResultSet, columns []analyzer.BoundColumn) error {
	if rs.ColumnCount() != len(columns) {
		return fatalError(nil, "aggregate over %d columns, %d projected", rs.ColumnCount(), len(columns))
	}

	scalars := make(map[int]core.Value)
	for i, column := range columns {
		if column.Function == sql.NoFunction {
			continue
		}
		col := i + 1
		values := make([]core.Value, rs.RowCount())
		for row := 1; row <= rs.RowCount(); row++ {
			values[row-1], _ = rs.Get(row, col)
		}
		scalars[col] = calculateAggregate(column.Function, column.Type, values)
	}

	if rs.RowCount() == 0 {
		rs.AppendRow()
	}
	rs.Truncate(1)

	for i, column := range columns {
		if column.Function == sql.NoFunction {
			continue
		}
		col := i + 1
		if err := rs.setAggregate(col, column.Function, column.ResultType()); err != nil {
			return fatalError(err, "aggregate")
		}
		if err := rs.Put(1, col, scalars[col]); err != nil {
			return fatalError(err, "aggregate %s", column.Function)
		}
	}
	return nil
}

// calculateAggregate computes one aggregate over the values of a column of
// type typ. MIN, MAX and SUM keep the column type, AVG is real and COUNT is
// int. Over no values every aggregate is zero.
func calculateAggregate(function sql.AggregateFunc, typ core.ColumnType, values []core.Value) core.Value {
	switch function {
	case sql.CountFunction:
		return core.IntValue(int64(len(values)))

	case sql.SumFunction:
		if typ == core.IntType {
			var sum int64
			for _, value := range values {
				sum += value.Int
			}
			return core.IntValue(sum)
		}
		var sum float64
		for _, value := range values {
			sum += value.Float()
		}
		return core.RealValue(sum)

	case sql.AvgFunction:
		if len(values) == 0 {
			return core.RealValue(0)
		}
		var sum float64
		for _, value := range values {
			sum += value.Float()
		}
		return core.RealValue(sum / float64(len(values)))

	case sql.MinFunction, sql.MaxFunction:
		if len(values) == 0 {
			return core.ZeroValue(typ)
		}
		best := values[0]
		for _, value := range values[1:] {
			cmp := core.Compare(value, best)
			if (function == sql.MinFunction && cmp < 0) || (function == sql.MaxFunction && cmp > 0) {
				best = value
			}
		}
		return best

	default:
		return core.ZeroValue(typ)
	}
}
