package db

import (
	"fmt"
	"slices"
	"sort"

	"github.com/nickyhof/FlatDB/core"
	"github.com/nickyhof/FlatDB/sql"
)

// ColumnInfo describes one result column. Joined is set for columns loaded
// from the JOIN table.
type ColumnInfo struct {
	Table    string
	Name     string
	Function sql.AggregateFunc
	Type     core.ColumnType
	Joined   bool
}

// Label is the column's display name: the column name, qualified with its
// table when qualified is set, wrapped in the aggregate if there is one.
func (c ColumnInfo) Label(qualified bool) string {
	label := c.Name
	if qualified {
		label = c.Table + "." + c.Name
	}
	if c.Function != sql.NoFunction {
		label = c.Function.String() + "(" + label + ")"
	}
	return label
}

func columnKey(table, name string, joined bool) string {
	key := core.Fold(table) + "." + core.Fold(name)
	if joined {
		key += "#join"
	}
	return key
}

func (c ColumnInfo) key() string {
	return columnKey(c.Table, c.Name, c.Joined)
}

// ResultSet is a table of typed values built up by the engine. Rows and
// columns are addressed from 1. Columns are added before any row; after
// that they can only be deleted, moved or copied. Every stored value has
// its column's type.
type ResultSet struct {
	columns []ColumnInfo
	index   map[string]int
	rows    [][]core.Value
}

func NewResultSet() *ResultSet {
	return &ResultSet{index: make(map[string]int)}
}

func (rs *ResultSet) ColumnCount() int {
	return len(rs.columns)
}

func (rs *ResultSet) RowCount() int {
	return len(rs.rows)
}

// AddColumn appends a column and returns its position.
func (rs *ResultSet) AddColumn(info ColumnInfo) (int, error) {
	if len(rs.rows) > 0 {
		return 0, ErrColumnsFrozen
	}
	key := info.key()
	if _, ok := rs.index[key]; ok {
		return 0, fmt.Errorf("%s.%s: %w", info.Table, info.Name, ErrDuplicate)
	}
	rs.columns = append(rs.columns, info)
	rs.index[key] = len(rs.columns) - 1
	return len(rs.columns), nil
}

func (rs *ResultSet) Column(col int) (ColumnInfo, error) {
	if err := rs.checkColumn(col); err != nil {
		return ColumnInfo{}, err
	}
	return rs.columns[col-1], nil
}

func (rs *ResultSet) Columns() []ColumnInfo {
	columns := make([]ColumnInfo, len(rs.columns))
	copy(columns, rs.columns)
	return columns
}

// FindColumn returns the position of the column with the given source
// table and name, matched case-insensitively. In a self-join the FROM side
// is found. A copied column is found at its first position.
func (rs *ResultSet) FindColumn(table, name string) (int, bool) {
	if col, ok := rs.findKey(columnKey(table, name, false)); ok {
		return col, true
	}
	return rs.findKey(columnKey(table, name, true))
}

func (rs *ResultSet) findKey(key string) (int, bool) {
	i, ok := rs.index[key]
	if !ok {
		return 0, false
	}
	return i + 1, true
}

// AppendRow adds a row of zero values and returns its position.
func (rs *ResultSet) AppendRow() int {
	row := make([]core.Value, len(rs.columns))
	for i, column := range rs.columns {
		row[i] = core.ZeroValue(column.Type)
	}
	rs.rows = append(rs.rows, row)
	return len(rs.rows)
}

// AppendValues adds a row holding values, one per column.
func (rs *ResultSet) AppendValues(values []core.Value) (int, error) {
	if len(values) != len(rs.columns) {
		return 0, fmt.Errorf("%d values for %d columns: %w", len(values), len(rs.columns), ErrOutOfRange)
	}
	for i, value := range values {
		if value.Type != rs.columns[i].Type {
			return 0, rs.typeError(i+1, value)
		}
	}
	row := make([]core.Value, len(values))
	copy(row, values)
	rs.rows = append(rs.rows, row)
	return len(rs.rows), nil
}

func (rs *ResultSet) Put(row, col int, value core.Value) error {
	if err := rs.checkCell(row, col); err != nil {
		return err
	}
	if value.Type != rs.columns[col-1].Type {
		return rs.typeError(col, value)
	}
	rs.rows[row-1][col-1] = value
	return nil
}

func (rs *ResultSet) Get(row, col int) (core.Value, error) {
	if err := rs.checkCell(row, col); err != nil {
		return core.Value{}, err
	}
	return rs.rows[row-1][col-1], nil
}

// Row returns a copy of one row.
func (rs *ResultSet) Row(row int) ([]core.Value, error) {
	if row < 1 || row > len(rs.rows) {
		return nil, fmt.Errorf("row %d of %d: %w", row, len(rs.rows), ErrOutOfRange)
	}
	values := make([]core.Value, len(rs.columns))
	copy(values, rs.rows[row-1])
	return values, nil
}

// DeleteRow removes a row; the rows after it move up by one.
func (rs *ResultSet) DeleteRow(row int) error {
	if row < 1 || row > len(rs.rows) {
		return fmt.Errorf("row %d of %d: %w", row, len(rs.rows), ErrOutOfRange)
	}
	rs.rows = append(rs.rows[:row-1], rs.rows[row:]...)
	return nil
}

// DeleteColumn removes a column and its values from every row.
func (rs *ResultSet) DeleteColumn(col int) error {
	if err := rs.checkColumn(col); err != nil {
		return err
	}
	rs.columns = append(rs.columns[:col-1], rs.columns[col:]...)
	for i, row := range rs.rows {
		rs.rows[i] = append(row[:col-1], row[col:]...)
	}
	rs.reindex()
	return nil
}

// MoveColumn moves the column at from to position to, shifting the columns
// in between.
func (rs *ResultSet) MoveColumn(from, to int) error {
	if err := rs.checkColumn(from); err != nil {
		return err
	}
	if err := rs.checkColumn(to); err != nil {
		return err
	}
	if from == to {
		return nil
	}
	move(rs.columns, from-1, to-1)
	for _, row := range rs.rows {
		move(row, from-1, to-1)
	}
	rs.reindex()
	return nil
}

// CopyColumn inserts a copy of the column at from, values included, at
// position to. The columns from to onwards shift right by one.
func (rs *ResultSet) CopyColumn(from, to int) error {
	if err := rs.checkColumn(from); err != nil {
		return err
	}
	if to < 1 || to > len(rs.columns)+1 {
		return fmt.Errorf("column %d of %d: %w", to, len(rs.columns)+1, ErrOutOfRange)
	}
	rs.columns = slices.Insert(rs.columns, to-1, rs.columns[from-1])
	for i, row := range rs.rows {
		rs.rows[i] = slices.Insert(row, to-1, row[from-1])
	}
	rs.reindex()
	return nil
}

func move[T any](s []T, from, to int) {
	v := s[from]
	if from < to {
		copy(s[from:to], s[from+1:to+1])
	} else {
		copy(s[to+1:from+1], s[to:from])
	}
	s[to] = v
}

// Truncate keeps the first n rows. Asking for n or more rows than exist is
// a no-op.
func (rs *ResultSet) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	if n < len(rs.rows) {
		rs.rows = rs.rows[:n]
	}
}

// SortBy orders the rows on one column. Equal rows keep their order.
func (rs *ResultSet) SortBy(col int, descending bool) error {
	if err := rs.checkColumn(col); err != nil {
		return err
	}
	sort.SliceStable(rs.rows, func(i, j int) bool {
		cmp := core.Compare(rs.rows[i][col-1], rs.rows[j][col-1])
		if descending {
			return cmp > 0
		}
		return cmp < 0
	})
	return nil
}

// setAggregate marks a column as holding an aggregate of its source column.
// Its values are reset to the zero value of the new type.
func (rs *ResultSet) setAggregate(col int, function sql.AggregateFunc, typ core.ColumnType) error {
	if err := rs.checkColumn(col); err != nil {
		return err
	}
	rs.columns[col-1].Function = function
	rs.columns[col-1].Type = typ
	for _, row := range rs.rows {
		row[col-1] = core.ZeroValue(typ)
	}
	return nil
}

// Strings renders every value.
func (rs *ResultSet) Strings() [][]string {
	data := make([][]string, len(rs.rows))
	for i, row := range rs.rows {
		data[i] = make([]string, len(row))
		for j, value := range row {
			data[i][j] = value.String()
		}
	}
	return data
}

func (rs *ResultSet) reindex() {
	clear(rs.index)
	for i, column := range rs.columns {
		if _, ok := rs.index[column.key()]; !ok {
			rs.index[column.key()] = i
		}
	}
}

func (rs *ResultSet) checkColumn(col int) error {
	if col < 1 || col > len(rs.columns) {
		return fmt.Errorf("column %d of %d: %w", col, len(rs.columns), ErrOutOfRange)
	}
	return nil
}

func (rs *ResultSet) checkCell(row, col int) error {
	if row < 1 || row > len(rs.rows) {
		return fmt.Errorf("row %d of %d: %w", row, len(rs.rows), ErrOutOfRange)
	}
	return rs.checkColumn(col)
}

func (rs *ResultSet) typeError(col int, value core.Value) error {
	column := rs.columns[col-1]
	return fmt.Errorf("%s value %q in %s column %s: %w", value.Type, value.String(), column.Type, column.Label(true), ErrColumnType)
}
