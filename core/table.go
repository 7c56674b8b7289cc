package core

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

type ColumnType int

const (
	IntType ColumnType = iota + 1
	RealType
	StringType
)

func (t ColumnType) String() string {
	switch t {
	case IntType:
		return "int"
	case RealType:
		return "real"
	case StringType:
		return "string"
	default:
		return fmt.Sprintf("ColumnType(%d)", int(t))
	}
}

// IsNumeric reports whether values of this type support MIN/MAX/SUM/AVG.
func (t ColumnType) IsNumeric() bool {
	return t == IntType || t == RealType
}

func ParseColumnType(name string) (ColumnType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "int", "integer":
		return IntType, nil
	case "real", "float", "double":
		return RealType, nil
	case "string", "text", "varchar":
		return StringType, nil
	default:
		return 0, fmt.Errorf("unknown column type %q", name)
	}
}

func (t ColumnType) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}

func (t *ColumnType) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseColumnType(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*t = parsed
	return nil
}

// IndexType is descriptive catalog metadata; execution never consults it.
type IndexType int

const (
	NonIndexed IndexType = iota
	Indexed
	UniqueIndexed
)

func (t IndexType) String() string {
	switch t {
	case NonIndexed:
		return "non-indexed"
	case Indexed:
		return "indexed"
	case UniqueIndexed:
		return "unique indexed"
	default:
		return fmt.Sprintf("IndexType(%d)", int(t))
	}
}

func (t IndexType) MarshalYAML() (interface{}, error) {
	switch t {
	case Indexed:
		return "indexed", nil
	case UniqueIndexed:
		return "unique", nil
	default:
		return "none", nil
	}
}

func (t *IndexType) UnmarshalYAML(node *yaml.Node) error {
	switch strings.ToLower(strings.TrimSpace(node.Value)) {
	case "", "none", "non-indexed":
		*t = NonIndexed
	case "indexed", "index":
		*t = Indexed
	case "unique", "unique indexed":
		*t = UniqueIndexed
	default:
		return fmt.Errorf("line %d: unknown index type %q", node.Line, node.Value)
	}
	return nil
}

type ColumnMeta struct {
	Name  string     `yaml:"name"`
	Type  ColumnType `yaml:"type"`
	Index IndexType  `yaml:"index,omitempty"`
}

type TableMeta struct {
	Name string `yaml:"name"`
	// RecordSize is the per-record byte budget; the record reader sizes its
	// initial line buffer from it.
	RecordSize int          `yaml:"recordSize"`
	Columns    []ColumnMeta `yaml:"columns"`
}

type Database struct {
	Name   string      `yaml:"name"`
	Tables []TableMeta `yaml:"tables"`
}

// Identity identifies the author of catalog commits.
type Identity struct {
	Name  string
	Email string
}

// FindTable returns the table with the given name, matched case-insensitively.
func (d *Database) FindTable(name string) (*TableMeta, bool) {
	if d == nil {
		return nil, false
	}
	for i := range d.Tables {
		if EqualFold(d.Tables[i].Name, name) {
			return &d.Tables[i], true
		}
	}
	return nil, false
}

// FindColumn returns the column with the given name and its 0-based position.
func (t *TableMeta) FindColumn(name string) (*ColumnMeta, int, bool) {
	if t == nil {
		return nil, -1, false
	}
	for i := range t.Columns {
		if EqualFold(t.Columns[i].Name, name) {
			return &t.Columns[i], i, true
		}
	}
	return nil, -1, false
}

// ParseSchema decodes a YAML schema document.
func ParseSchema(data []byte) (*Database, error) {
	var database Database
	if err := yaml.Unmarshal(data, &database); err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	if err := database.Validate(); err != nil {
		return nil, err
	}
	return &database, nil
}

// MarshalSchema encodes the database as a YAML schema document.
func MarshalSchema(database Database) ([]byte, error) {
	return yaml.Marshal(database)
}

// Validate checks the structural rules the engine relies on: unique table
// names, unique column names per table, and known column types.
func (d *Database) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("schema is missing a database name")
	}
	seenTables := make(map[string]bool, len(d.Tables))
	for _, table := range d.Tables {
		if table.Name == "" {
			return fmt.Errorf("database %s: table without a name", d.Name)
		}
		key := Fold(table.Name)
		if seenTables[key] {
			return fmt.Errorf("database %s: duplicate table %s", d.Name, table.Name)
		}
		seenTables[key] = true

		if len(table.Columns) == 0 {
			return fmt.Errorf("table %s has no columns", table.Name)
		}
		seenColumns := make(map[string]bool, len(table.Columns))
		for _, column := range table.Columns {
			if column.Type == 0 {
				return fmt.Errorf("table %s: column %s has no type", table.Name, column.Name)
			}
			key := Fold(column.Name)
			if seenColumns[key] {
				return fmt.Errorf("table %s: duplicate column %s", table.Name, column.Name)
			}
			seenColumns[key] = true
		}
	}
	return nil
}
