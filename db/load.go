package db

import (
	"github.com/nickyhof/FlatDB/analyzer"
	"github.com/nickyhof/FlatDB/core"
	"github.com/nickyhof/FlatDB/op"
)

// load fills rs with the FROM table's records, or with the inner join of
// the FROM and JOIN tables. It returns the number of records read.
func (engine *Engine) load(rs *ResultSet, query *analyzer.Query) (int, error) {
	left := &op.TableOp{Database: query.Database(), Table: query.Table(), Persistence: engine.Persistence}

	joinTable, joined := query.JoinTable()
	if !joined {
		scanned := 0
		for record, err := range left.Scan() {
			if err != nil {
				return scanned, dataError(left, err)
			}
			scanned++
			if _, err := rs.AppendValues(record); err != nil {
				return scanned, fatalError(err, "record %d of %s", scanned, left.Table.Name)
			}
		}
		return scanned, nil
	}

	right := &op.TableOp{Database: query.Database(), Table: joinTable, Persistence: engine.Persistence}
	condition, _ := query.Join()

	leftCol, rightCol, err := joinColumns(left.Table, right.Table, condition)
	if err != nil {
		return 0, err
	}

	rightRecords, err := right.Records()
	if err != nil {
		return 0, dataError(right, err)
	}
	scanned := len(rightRecords)

	row := make([]core.Value, 0, len(left.Table.Columns)+len(right.Table.Columns))
	for leftRecord, err := range left.Scan() {
		if err != nil {
			return scanned, dataError(left, err)
		}
		scanned++

		for _, rightRecord := range rightRecords {
			if !core.Equal(leftRecord[leftCol], rightRecord[rightCol]) {
				continue
			}
			row = append(append(row[:0], leftRecord...), rightRecord...)
			if _, err := rs.AppendValues(row); err != nil {
				return scanned, fatalError(err, "joining %s and %s", left.Table.Name, right.Table.Name)
			}
		}
	}
	return scanned, nil
}

// joinColumns returns the 0-based positions of the ON columns in their
// records.
func joinColumns(left, right core.TableMeta, condition analyzer.JoinCondition) (int, int, error) {
	_, leftCol, ok := left.FindColumn(condition.Left.Name)
	if !ok {
		return 0, 0, fatalError(nil, "join column %s.%s not found", left.Name, condition.Left.Name)
	}
	_, rightCol, ok := right.FindColumn(condition.Right.Name)
	if !ok {
		return 0, 0, fatalError(nil, "join column %s.%s not found", right.Name, condition.Right.Name)
	}
	return leftCol, rightCol, nil
}
