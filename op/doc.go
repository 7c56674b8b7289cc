// Package op provides catalog operations on top of the persistence layer.
//
// The op package sits between the execution engine (db/) and the
// persistence layer (ps/). It loads schemas and turns data files into typed
// records.
//
// # DatabaseOp
//
//	dbOp, err := op.GetDatabase("school", persistence)
//	tables := dbOp.TableNames()          // schema order
//	tableOp, err := dbOp.Table("students")
//
// # TableOp
//
// A table's data file holds one record per line, fields in column order
// separated by blanks. Strings may be wrapped in ' or ":
//
//	1 'Alice Smith' 3.9
//	2 "O'Brien" 3.1
//
// Scan streams the records converted to the column types:
//
//	for record, err := range tableOp.Scan() {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(record[0].Int)
//	}
//
// PutAll writes a complete data file, Append adds to it.
//
// # Architecture
//
//	SQL Parser (sql/)
//	     ↓
//	Analyzer (analyzer/)
//	     ↓
//	Execution Engine (db/)
//	     ↓
//	Operations (op/)     ← This package
//	     ↓
//	Persistence (ps/)
//	     ↓
//	Git / directory / HTTP / S3
package op
