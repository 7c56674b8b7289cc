// Package ps provides the persistence layer for FlatDB catalogs.
//
// A catalog is a tree with one directory per database. Each directory holds
// the database's schema.yaml and one <table>.data record file per table.
// The tree can live in several places:
//
// # Memory Persistence
//
// A git repository held in memory, for tests and scratch catalogs:
//
//	persistence, err := ps.NewMemoryPersistence()
//
// # File Persistence
//
// A directory on disk. When it contains a .git directory, or gitUrl is
// given and the repository is cloned into it, reads are served from the
// committed tree and every write is a commit:
//
//	persistence, err := ps.NewFilePersistence("/path/to/catalog", nil)
//
// Any other directory is read as-is, through go-billy.
//
// # Remote Persistence
//
// Catalogs published over HTTP or stored in S3:
//
//	persistence, err := ps.NewRemotePersistence(ctx, "s3://bucket/catalogs", &ps.S3Config{Region: "eu-west-1"})
//
// # History
//
// Git-backed catalogs expose their commits as Transactions. Checkout pins
// reads to an earlier transaction; Pull brings in changes from a remote.
package ps
