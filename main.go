package FlatDB

import (
	"context"

	"github.com/nickyhof/FlatDB/core"
	"github.com/nickyhof/FlatDB/db"
	"github.com/nickyhof/FlatDB/op"
	"github.com/nickyhof/FlatDB/ps"
)

type Instance struct {
	Persistence *ps.Persistence
}

func Open(persistence *ps.Persistence) *Instance {
	return &Instance{
		Persistence: persistence,
	}
}

// OpenPath opens the catalog at path: an HTTP(S) or S3 URL, a git
// repository, or a plain directory of databases. gitUrl, when set, is cloned
// into an empty local path.
func OpenPath(ctx context.Context, path string, gitUrl *string, s3 *ps.S3Config) (*Instance, error) {
	var persistence *ps.Persistence
	var err error
	if ps.IsRemoteURL(path) {
		persistence, err = ps.NewRemotePersistence(ctx, path, s3)
	} else {
		persistence, err = ps.NewFilePersistence(path, gitUrl)
	}
	if err != nil {
		return nil, err
	}
	return Open(persistence), nil
}

func (instance *Instance) Engine(identity core.Identity) *db.Engine {
	return db.NewEngine(instance.Persistence, identity)
}

// Database loads the named database's schema.
func (instance *Instance) Database(name string) (*core.Database, error) {
	dbOp, err := op.GetDatabase(name, instance.Persistence)
	if err != nil {
		return nil, err
	}
	return &dbOp.Database, nil
}

func (instance *Instance) Databases() ([]string, error) {
	return instance.Persistence.ListDatabases()
}
