package op

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nickyhof/FlatDB/core"
)

var ErrMalformedRecord = errors.New("malformed record")

// Record is one line of a table's data file converted to the table's
// column types, in catalog column order.
type Record []core.Value

// SplitFields splits a record line on blanks. A field that starts with ' or
// " runs to the matching quote, blanks included, and is returned with its
// quotes.
func SplitFields(line string) ([]string, error) {
	var fields []string
	for i := 0; i < len(line); {
		ch := line[i]
		if ch == ' ' || ch == '\t' || ch == '\r' {
			i++
			continue
		}

		start := i
		if ch == '\'' || ch == '"' {
			end := strings.IndexByte(line[i+1:], ch)
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated quote at offset %d", ErrMalformedRecord, start)
			}
			i += end + 2
		} else {
			for i < len(line) && line[i] != ' ' && line[i] != '\t' && line[i] != '\r' {
				i++
			}
		}
		fields = append(fields, line[start:i])
	}
	return fields, nil
}

func isQuoted(raw string) bool {
	return len(raw) >= 2 && (raw[0] == '\'' || raw[0] == '"') && raw[len(raw)-1] == raw[0]
}

func unquote(raw string) string {
	if isQuoted(raw) {
		return raw[1 : len(raw)-1]
	}
	return raw
}

// ParseField classifies a raw field: quoted text is a string, a number with
// a decimal point is a real, anything else must be an int.
func ParseField(raw string) (core.Value, error) {
	if isQuoted(raw) {
		return core.StringValue(unquote(raw)), nil
	}
	if strings.Contains(raw, ".") {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return core.Value{}, fmt.Errorf("%w: invalid real %q", ErrMalformedRecord, raw)
		}
		return core.RealValue(f), nil
	}
	i, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return core.Value{}, fmt.Errorf("%w: invalid int %q", ErrMalformedRecord, raw)
	}
	return core.IntValue(i), nil
}

// ParseRecord converts one line into a Record for the given table. String
// columns keep the field text as is, without quotes.
func ParseRecord(table core.TableMeta, line string) (Record, error) {
	fields, err := SplitFields(line)
	if err != nil {
		return nil, err
	}
	if len(fields) != len(table.Columns) {
		return nil, fmt.Errorf("%w: %s expects %d fields, got %d", ErrMalformedRecord, table.Name, len(table.Columns), len(fields))
	}

	record := make(Record, len(fields))
	for i, column := range table.Columns {
		if column.Type == core.StringType {
			record[i] = core.StringValue(unquote(fields[i]))
			continue
		}

		value, err := ParseField(fields[i])
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", table.Name, column.Name, err)
		}
		record[i], err = value.Convert(column.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: %s.%s: %v", ErrMalformedRecord, table.Name, column.Name, err)
		}
	}
	return record, nil
}

// FormatRecord renders values as one record line. Strings are quoted with '
// unless they contain one, in which case " is used.
func FormatRecord(values []core.Value) (string, error) {
	var sb strings.Builder
	for i, value := range values {
		if i > 0 {
			sb.WriteByte(' ')
		}
		switch value.Type {
		case core.StringType:
			if strings.ContainsAny(value.Str, "\n\r") {
				return "", fmt.Errorf("%w: string %q spans lines", ErrMalformedRecord, value.Str)
			}
			quote := byte('\'')
			if strings.IndexByte(value.Str, '\'') >= 0 {
				if strings.IndexByte(value.Str, '"') >= 0 {
					return "", fmt.Errorf("%w: string %q contains both quote characters", ErrMalformedRecord, value.Str)
				}
				quote = '"'
			}
			sb.WriteByte(quote)
			sb.WriteString(value.Str)
			sb.WriteByte(quote)
		case core.IntType, core.RealType:
			sb.WriteString(value.String())
		default:
			return "", fmt.Errorf("%w: untyped value", ErrMalformedRecord)
		}
	}
	return sb.String(), nil
}
