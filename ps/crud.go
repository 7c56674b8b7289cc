package ps

import (
	"fmt"
	"io"
	"path"

	"github.com/nickyhof/FlatDB/core"
)

// SchemaPath returns the location of a database's schema file.
func SchemaPath(database string) string {
	return path.Join(database, SchemaFile)
}

// DataPath returns the location of a table's record file.
func DataPath(database, table string) string {
	return path.Join(database, table+".data")
}

func (persistence *Persistence) CreateDatabase(database core.Database, identity core.Identity) (txn Transaction, err error) {
	if err := database.Validate(); err != nil {
		return Transaction{}, err
	}

	dataBytes, err := core.MarshalSchema(database)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to marshal database: %w", err)
	}

	return persistence.WriteFile(SchemaPath(database.Name), dataBytes, identity, "Creating database "+database.Name)
}

// GetDatabase loads and validates the schema of the named database.
func (persistence *Persistence) GetDatabase(name string) (*core.Database, error) {
	data, err := persistence.ReadFile(SchemaPath(name))
	if err != nil {
		return nil, fmt.Errorf("database %s does not exist: %w", name, err)
	}

	database, err := core.ParseSchema(data)
	if err != nil {
		return nil, fmt.Errorf("database %s: %w", name, err)
	}
	return database, nil
}

// OpenTable opens a table's record file for reading.
func (persistence *Persistence) OpenTable(database, table string) (io.ReadCloser, error) {
	return persistence.Open(DataPath(database, table))
}

func (persistence *Persistence) SaveTable(database, table string, data []byte, identity core.Identity) (txn Transaction, err error) {
	return persistence.WriteFile(DataPath(database, table), data, identity, fmt.Sprintf("Saving %s.%s", database, table))
}
