package op

import (
	"fmt"

	"github.com/nickyhof/FlatDB/core"
	"github.com/nickyhof/FlatDB/ps"
)

type DatabaseOp struct {
	Database    core.Database
	Persistence *ps.Persistence
}

func CreateDatabase(database core.Database, persistence *ps.Persistence, identity core.Identity) (*ps.Transaction, *DatabaseOp, error) {
	txn, err := persistence.CreateDatabase(database, identity)
	if err != nil {
		return nil, nil, err
	}

	return &txn, &DatabaseOp{
		Database:    database,
		Persistence: persistence,
	}, nil
}

func GetDatabase(name string, persistence *ps.Persistence) (*DatabaseOp, error) {
	d, err := persistence.GetDatabase(name)
	if err != nil {
		return nil, err
	}
	return &DatabaseOp{
		Database:    *d,
		Persistence: persistence,
	}, nil
}

// TableNames lists the catalog's tables in schema order.
func (op *DatabaseOp) TableNames() []string {
	names := make([]string, len(op.Database.Tables))
	for i, table := range op.Database.Tables {
		names[i] = table.Name
	}
	return names
}

// Table returns an op for the named table, matched case-insensitively.
func (op *DatabaseOp) Table(name string) (*TableOp, error) {
	table, ok := op.Database.FindTable(name)
	if !ok {
		return nil, fmt.Errorf("table %s does not exist in %s", name, op.Database.Name)
	}
	return &TableOp{
		Database:    op.Database.Name,
		Table:       *table,
		Persistence: op.Persistence,
	}, nil
}
