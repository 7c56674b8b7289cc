package db

import (
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

// SimpleTable renders rows as a boxed text table. Columns whose cells are
// all numbers are right-aligned.
type SimpleTable struct {
	writer  io.Writer
	headers []string
	rows    [][]string
}

func NewTable(w io.Writer) *SimpleTable {
	return &SimpleTable{writer: w}
}

func (t *SimpleTable) Header(headers []string) {
	t.headers = headers
}

func (t *SimpleTable) Row(row []string) {
	t.rows = append(t.rows, row)
}

func (t *SimpleTable) Bulk(rows [][]string) {
	t.rows = append(t.rows, rows...)
}

func (t *SimpleTable) Render() {
	if len(t.headers) == 0 && len(t.rows) == 0 {
		return
	}

	widths := t.widths()
	numeric := t.numericColumns(len(widths))
	separator := separatorLine(widths)

	var sb strings.Builder
	sb.WriteString(separator)
	if len(t.headers) > 0 {
		writeRow(&sb, t.headers, widths, nil)
		sb.WriteString(separator)
	}
	for _, row := range t.rows {
		writeRow(&sb, row, widths, numeric)
	}
	sb.WriteString(separator)

	io.WriteString(t.writer, sb.String())
}

func (t *SimpleTable) widths() []int {
	numCols := len(t.headers)
	for _, row := range t.rows {
		numCols = max(numCols, len(row))
	}

	widths := make([]int, numCols)
	for i := range widths {
		widths[i] = 1
	}
	for i, header := range t.headers {
		widths[i] = max(widths[i], utf8.RuneCountInString(header))
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], utf8.RuneCountInString(cell))
		}
	}
	return widths
}

func (t *SimpleTable) numericColumns(numCols int) []bool {
	numeric := make([]bool, numCols)
	for i := range numeric {
		numeric[i] = len(t.rows) > 0
	}
	for _, row := range t.rows {
		for i := range numeric {
			if i >= len(row) {
				numeric[i] = false
				continue
			}
			if _, err := strconv.ParseFloat(row[i], 64); err != nil {
				numeric[i] = false
			}
		}
	}
	return numeric
}

func separatorLine(widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat("-", w+2)
	}
	return "+" + strings.Join(parts, "+") + "+\n"
}

func writeRow(sb *strings.Builder, row []string, widths []int, rightAlign []bool) {
	sb.WriteByte('|')
	for i, w := range widths {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		pad := strings.Repeat(" ", w-utf8.RuneCountInString(cell))
		sb.WriteByte(' ')
		if rightAlign != nil && rightAlign[i] {
			sb.WriteString(pad + cell)
		} else {
			sb.WriteString(cell + pad)
		}
		sb.WriteString(" |")
	}
	sb.WriteByte('\n')
}
