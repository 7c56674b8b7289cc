package sql

import "fmt"

// SyntaxError reports a statement that does not match the grammar. The
// statement is discarded; the stream can still be read for the next one.
type SyntaxError struct {
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error @ (%d, %d): %s", e.Line, e.Col, e.Msg)
}

func syntaxError(token Token, format string, args ...any) *SyntaxError {
	return &SyntaxError{Line: token.Line, Col: token.Col, Msg: fmt.Sprintf(format, args...)}
}

func describe(token Token) string {
	if token.Type == EOS {
		return "end of input"
	}
	return "'" + token.Value + "'"
}
