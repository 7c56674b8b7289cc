// Package sql provides lexing and parsing for the FlatDB query language.
//
// The lexer reads a character stream and produces tokens carrying their
// line and column. The parser collects the tokens of one statement into a
// TokenQueue and descends over it to build a SelectStatement AST.
//
// # Lexer Usage
//
//	lexer := sql.NewStringLexer("SELECT name FROM Students;")
//	for {
//	    token := lexer.NextToken()
//	    if token.Type == sql.EOS {
//	        break
//	    }
//	    fmt.Printf("Token: %s = %s\n", token.Type, token.Value)
//	}
//
// # Parser Usage
//
//	parser := sql.NewParser(os.Stdin)
//	for {
//	    stmt, err := parser.Parse()
//	    if err == io.EOF {
//	        break
//	    }
//	    ...
//	}
//
// # Grammar
//
//	SELECT colSpec (, colSpec)* | *
//	FROM table
//	[[INNER] JOIN table ON colRef = colRef]
//	[WHERE colRef op literal]
//	[ORDER BY colSpec [ASC|DESC]]
//	[LIMIT integer]
//	[INTO table]
//	;
//
// colSpec is colRef or FUNC(colRef) with FUNC one of MIN, MAX, SUM, AVG and
// COUNT. colRef is [table.]column. '--' starts a comment running to the end
// of the line and '$' ends the input.
package sql
