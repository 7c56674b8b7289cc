// Package db executes bound queries against a FlatDB catalog.
//
// The Engine loads a query's tables through the op package into a
// ResultSet, then filters, sorts, projects, aggregates and truncates it.
//
// # Engine Usage
//
//	engine := db.NewEngine(persistence, identity)
//	result, err := engine.Query(database, "SELECT name, gpa FROM Students WHERE gpa > 3.0;")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result.Display()
//
// Streams of statements run through Run or a Session:
//
//	err := engine.Run(database, os.Stdin, func(r db.StatementResult) {
//	    if r.Err != nil {
//	        fmt.Println(r.Err)
//	        return
//	    }
//	    r.Result.Display()
//	})
//
// # Errors
//
// Syntax (*sql.SyntaxError) and semantic (*analyzer.SemanticError) errors
// reject one statement. A *FatalError means the stored data could not serve
// a valid query, such as a missing data file or a malformed record; it
// matches ErrFatal and stops Run.
package db
