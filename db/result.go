package db

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/nickyhof/FlatDB/ps"
)

// QueryResult is a finished query in display form.
type QueryResult struct {
	QueryID          uuid.UUID
	Transaction      ps.Transaction
	Columns          []string
	Data             [][]string
	RecordsRead      int
	ExecutionTimeSec float64
	ExecutionOps     int
}

// formatDuration formats a duration in human-readable form
func formatDuration(secs float64) string {
	switch {
	case secs < 0.001:
		return "<1ms"
	case secs < 1:
		return fmt.Sprintf("%dms", int(secs*1000))
	case secs < 10:
		return fmt.Sprintf("%.1fs", secs)
	case secs < 60:
		return fmt.Sprintf("%ds", int(secs))
	}
	mins := int(secs / 60)
	remainSecs := int(secs) % 60
	if remainSecs == 0 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%dm%ds", mins, remainSecs)
}

func (result QueryResult) ExecutionTime() string {
	return formatDuration(result.ExecutionTimeSec)
}

// throughput reports records read per second, or "" when too fast to
// measure.
func (result QueryResult) throughput() string {
	if result.ExecutionTimeSec <= 0 || result.ExecutionOps <= 0 {
		return ""
	}
	ops := float64(result.ExecutionOps) / result.ExecutionTimeSec
	switch {
	case ops >= 1000000:
		return fmt.Sprintf(", %.1fM records/s", ops/1000000)
	case ops >= 1000:
		return fmt.Sprintf(", %.1fK records/s", ops/1000)
	default:
		return fmt.Sprintf(", %.0f records/s", ops)
	}
}

func (result QueryResult) Display() {
	result.Render(os.Stdout)
}

// Render writes the rows as a table followed by a one-line summary. A
// result without rows prints the summary only.
func (result QueryResult) Render(w io.Writer) {
	if len(result.Data) > 0 {
		data := NewTable(w)
		data.Header(result.Columns)
		data.Bulk(result.Data)
		data.Render()
	}

	rows := "rows"
	if result.RecordsRead == 1 {
		rows = "row"
	}
	fmt.Fprintf(w, "%d %s (%s%s)\n", result.RecordsRead, rows, result.ExecutionTime(), result.throughput())
}
