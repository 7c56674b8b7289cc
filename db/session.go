package db

import (
	"errors"
	"io"
	"strings"

	"github.com/nickyhof/FlatDB/analyzer"
	"github.com/nickyhof/FlatDB/core"
	"github.com/nickyhof/FlatDB/sql"
)

// Session reads statements one at a time from a stream and binds them to a
// database. Syntax and semantic errors reject only the statement they occur
// in; the next call continues after it.
type Session struct {
	engine   *Engine
	database *core.Database
	parser   *sql.Parser
}

func (engine *Engine) NewSession(database *core.Database, r io.Reader) *Session {
	parser := sql.NewParser(r)
	if engine.Warn != nil {
		parser.Lexer().Warn = engine.Warn
	}
	return &Session{
		engine:   engine,
		database: database,
		parser:   parser,
	}
}

func (session *Session) Database() *core.Database {
	return session.database
}

// Next reads and binds the next statement. It returns io.EOF when the
// stream is exhausted.
func (session *Session) Next() (*analyzer.Query, error) {
	queue, err := session.parser.Next()
	if err != nil {
		return nil, err
	}
	return analyzer.Analyze(session.database, queue)
}

func (session *Session) Execute(query *analyzer.Query) (QueryResult, error) {
	return session.engine.ExecuteQuery(query)
}

// StatementResult is the outcome of one statement of a Run. Query is nil
// when the statement failed to parse or bind.
type StatementResult struct {
	Query  *analyzer.Query
	Result QueryResult
	Err    error
}

// Run executes every statement read from r against database and hands each
// outcome to fn. Syntax and semantic errors are passed to fn and the loop
// goes on. A fatal error is passed to fn, ends the loop and is returned.
// Run returns nil once r is exhausted.
func (engine *Engine) Run(database *core.Database, r io.Reader, fn func(StatementResult)) error {
	session := engine.NewSession(database, r)
	for {
		query, err := session.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if !Recoverable(err) {
				return err
			}
			fn(StatementResult{Err: err})
			continue
		}

		result, err := session.Execute(query)
		fn(StatementResult{Query: query, Result: result, Err: err})
		if err != nil {
			return err
		}
	}
}

// Query runs a single statement. The terminating ';' may be left out.
func (engine *Engine) Query(database *core.Database, text string) (QueryResult, error) {
	if !strings.HasSuffix(strings.TrimSpace(text), ";") {
		text += ";"
	}

	query, err := engine.NewSession(database, strings.NewReader(text)).Next()
	if err != nil {
		return QueryResult{}, err
	}
	return engine.ExecuteQuery(query)
}
