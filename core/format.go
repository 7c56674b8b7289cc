package core

import (
	"fmt"
	"io"
)

// Print writes the human-readable schema block shown when a database is opened.
func (d *Database) Print(w io.Writer) {
	fmt.Fprintln(w, "**DATABASE SCHEMA**")
	fmt.Fprintf(w, "Database: %s\n", d.Name)
	for _, table := range d.Tables {
		fmt.Fprintf(w, "Table: %s\n", table.Name)
		fmt.Fprintf(w, "  Record Size: %d\n", table.RecordSize)
		for _, column := range table.Columns {
			fmt.Fprintf(w, "  Column: %s, %s, %s\n", column.Name, column.Type, column.Index)
		}
	}
	fmt.Fprintln(w, "**END OF DATABASE SCHEMA**")
}
