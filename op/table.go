package op

import (
	"bufio"
	"errors"
	"fmt"
	"iter"
	"os"
	"strings"

	"github.com/nickyhof/FlatDB/core"
	"github.com/nickyhof/FlatDB/ps"
)

// minLineBuffer is the initial scanner buffer for tables without a
// RecordSize.
const minLineBuffer = 256

type TableOp struct {
	Database    string
	Table       core.TableMeta
	Persistence *ps.Persistence
}

// GetTable loads the database's schema and returns an op for one of its
// tables.
func GetTable(database string, tableName string, persistence *ps.Persistence) (*TableOp, error) {
	dbOp, err := GetDatabase(database, persistence)
	if err != nil {
		return nil, err
	}
	return dbOp.Table(tableName)
}

func (op *TableOp) DataPath() string {
	return ps.DataPath(op.Database, op.Table.Name)
}

func (op *TableOp) Exists() bool {
	return op.Persistence.Exists(op.DataPath())
}

// Scan streams the table's records in file order. Blank lines are skipped.
// Iteration stops after the first error, which is yielded with the line
// number it occurred on.
func (op *TableOp) Scan() iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		reader, err := op.Persistence.OpenTable(op.Database, op.Table.Name)
		if err != nil {
			yield(nil, err)
			return
		}
		defer reader.Close()

		// One record plus its separator, newline and terminator.
		size := max(op.Table.RecordSize+3, minLineBuffer)
		scanner := bufio.NewScanner(reader)
		scanner.Buffer(make([]byte, 0, size), bufio.MaxScanTokenSize*16)

		line := 0
		for scanner.Scan() {
			line++
			text := scanner.Text()
			if strings.TrimSpace(text) == "" {
				continue
			}

			record, err := ParseRecord(op.Table, text)
			if err != nil {
				yield(nil, fmt.Errorf("%s line %d: %w", op.DataPath(), line, err))
				return
			}
			if !yield(record, nil) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield(nil, fmt.Errorf("failed to read %s: %w", op.DataPath(), err))
		}
	}
}

// Records reads the whole table.
func (op *TableOp) Records() ([]Record, error) {
	var records []Record
	for record, err := range op.Scan() {
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// PutAll replaces the table's data file with records.
func (op *TableOp) PutAll(records []Record, identity core.Identity) (txn ps.Transaction, err error) {
	var sb strings.Builder
	for i, record := range records {
		if len(record) != len(op.Table.Columns) {
			return ps.Transaction{}, fmt.Errorf("%w: record %d has %d values, %s has %d columns",
				ErrMalformedRecord, i+1, len(record), op.Table.Name, len(op.Table.Columns))
		}
		values := make([]core.Value, len(record))
		for j, value := range record {
			values[j], err = value.Convert(op.Table.Columns[j].Type)
			if err != nil {
				return ps.Transaction{}, fmt.Errorf("record %d: %w", i+1, err)
			}
		}

		line, err := FormatRecord(values)
		if err != nil {
			return ps.Transaction{}, fmt.Errorf("record %d: %w", i+1, err)
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}

	return op.Persistence.SaveTable(op.Database, op.Table.Name, []byte(sb.String()), identity)
}

// Append adds records after the existing ones. A missing data file is
// treated as an empty table.
func (op *TableOp) Append(records []Record, identity core.Identity) (txn ps.Transaction, err error) {
	existing, err := op.Records()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return ps.Transaction{}, err
	}
	return op.PutAll(append(existing, records...), identity)
}
