// Package FlatDB provides a small relational query engine over flat files.
//
// A FlatDB catalog holds one directory per database. Each directory has a
// schema.yaml describing the tables and one <table>.data file per table
// with one record per line. Catalogs can be plain directories, git
// repositories (every write is a commit and reads can be pinned to an
// earlier one), or remote HTTP and S3 locations.
//
// # Quick Start
//
//	instance, _ := FlatDB.OpenPath(ctx, "/var/lib/flatdb", nil, nil)
//	database, _ := instance.Database("school")
//	engine := instance.Engine(core.Identity{Name: "App", Email: "app@example.com"})
//
//	result, _ := engine.Query(database, "SELECT name FROM Students ORDER BY gpa DESC LIMIT 1;")
//	result.Display()
//
// # Supported SQL
//
// FlatDB runs one statement form:
//
//	SELECT col | FUNC(col) [, ...] | *
//	FROM table
//	[[INNER] JOIN table ON col = col]
//	[WHERE col op literal]
//	[ORDER BY col [ASC|DESC]]
//	[LIMIT n]
//	[INTO table];
//
// with FUNC one of MIN, MAX, SUM, AVG, COUNT and op one of
// <, <=, >, >=, =, <>, LIKE. Names match case-insensitively.
package FlatDB
