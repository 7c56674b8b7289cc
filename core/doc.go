// Package core provides core types used throughout FlatDB.
//
// The package defines the catalog model (Database, TableMeta, ColumnMeta),
// the typed cell Value, and the Identity used to author catalog commits.
//
// # Column Types
//
// Supported column types:
//   - IntType: 64-bit integers
//   - RealType: floating point numbers
//   - StringType: text
//
// # Schema Files
//
// A database is described by a YAML document stored as <db>/schema.yaml:
//
//	name: school
//	tables:
//	  - name: Students
//	    recordSize: 64
//	    columns:
//	      - {name: id, type: int, index: unique}
//	      - {name: name, type: string}
//	      - {name: gpa, type: real}
//
// Each table's records live next to it in <db>/<table>.data.
//
// # Names
//
// Table and column names are matched case-insensitively through Fold.
package core
