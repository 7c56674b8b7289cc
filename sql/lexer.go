package sql

import (
	"bufio"
	"errors"
	"io"
	"log"
	"strings"
)

// WarnFunc receives diagnostics the lexer recovers from.
type WarnFunc func(format string, args ...any)

// Lexer turns a character stream into tokens. Line and column counters carry
// over between calls so one Lexer serves every statement of a stream.
type Lexer struct {
	reader *bufio.Reader
	line   int
	col    int

	// position before the last readChar, restored by unreadChar
	prevLine int
	prevCol  int

	err  error
	Warn WarnFunc
}

func NewLexer(r io.Reader) *Lexer {
	return &Lexer{
		reader: bufio.NewReader(r),
		line:   1,
		Warn:   log.Printf,
	}
}

// NewStringLexer is a convenience for lexing an in-memory statement.
func NewStringLexer(text string) *Lexer {
	return NewLexer(strings.NewReader(text))
}

// Err returns the first read error other than io.EOF.
func (lexer *Lexer) Err() error {
	return lexer.err
}

func (lexer *Lexer) readChar() (byte, bool) {
	ch, err := lexer.reader.ReadByte()
	if err != nil {
		if !errors.Is(err, io.EOF) && lexer.err == nil {
			lexer.err = err
		}
		return 0, false
	}

	lexer.prevLine, lexer.prevCol = lexer.line, lexer.col
	if ch == '\n' {
		lexer.line++
		lexer.col = 0
	} else {
		lexer.col++
	}
	return ch, true
}

func (lexer *Lexer) unreadChar() {
	if lexer.reader.UnreadByte() == nil {
		lexer.line, lexer.col = lexer.prevLine, lexer.prevCol
	}
}

func (lexer *Lexer) token(tokenType TokenType, value string) Token {
	return Token{Type: tokenType, Line: lexer.line, Col: lexer.col, Value: value}
}

// NextToken returns the next token of the stream. End of input and '$' both
// yield EOS.
func (lexer *Lexer) NextToken() Token {
	for {
		ch, ok := lexer.readChar()
		if !ok {
			return Token{Type: EOS, Line: lexer.line, Col: lexer.col + 1, Value: "$"}
		}

		switch {
		case ch == '\n' || isSpace(ch):
			continue
		case ch == '\'' || ch == '"':
			return lexer.readString(ch)
		case isDigit(ch):
			return lexer.readNumber(ch, lexer.line, lexer.col)
		case ch == '+' || ch == '-':
			line, col := lexer.line, lexer.col
			next, ok := lexer.readChar()
			if ok && isDigit(next) {
				lexer.unreadChar()
				return lexer.readNumber(ch, line, col)
			}
			if ok && ch == '-' && next == '-' {
				lexer.skipComment()
				continue
			}
			if ok {
				lexer.unreadChar()
			}
			return Token{Type: Unknown, Line: line, Col: col, Value: string(ch)}
		case isLetter(ch):
			return lexer.readIdentifier(ch)
		}

		switch ch {
		case '(':
			return lexer.token(LeftParen, "(")
		case ')':
			return lexer.token(RightParen, ")")
		case '*':
			return lexer.token(Asterisk, "*")
		case '.':
			return lexer.token(Dot, ".")
		case '#':
			return lexer.token(Hash, "#")
		case ',':
			return lexer.token(Comma, ",")
		case '=':
			return lexer.token(Equal, "=")
		case ';':
			return lexer.token(SemiColon, ";")
		case '$':
			return lexer.token(EOS, "$")
		case '<':
			return lexer.readOperator('<')
		case '>':
			return lexer.readOperator('>')
		default:
			return lexer.token(Unknown, string(ch))
		}
	}
}

func (lexer *Lexer) readOperator(first byte) Token {
	line, col := lexer.line, lexer.col
	next, ok := lexer.readChar()
	if ok {
		switch {
		case first == '<' && next == '=':
			return Token{Type: LessThanOrEqual, Line: line, Col: col, Value: "<="}
		case first == '<' && next == '>':
			return Token{Type: NotEqual, Line: line, Col: col, Value: "<>"}
		case first == '>' && next == '=':
			return Token{Type: GreaterThanOrEqual, Line: line, Col: col, Value: ">="}
		}
		lexer.unreadChar()
	}

	if first == '<' {
		return Token{Type: LessThan, Line: line, Col: col, Value: "<"}
	}
	return Token{Type: GreaterThan, Line: line, Col: col, Value: ">"}
}

// readNumber scans digits after first (a digit or sign). A second decimal
// point ends the literal and is left for the next token.
func (lexer *Lexer) readNumber(first byte, line, col int) Token {
	var sb strings.Builder
	sb.WriteByte(first)
	hasDecimal := false

	for {
		ch, ok := lexer.readChar()
		if !ok {
			break
		}
		if ch == '.' && !hasDecimal {
			hasDecimal = true
		} else if !isDigit(ch) {
			lexer.unreadChar()
			break
		}
		sb.WriteByte(ch)
	}

	tokenType := IntLiteral
	if hasDecimal {
		tokenType = RealLiteral
	}
	return Token{Type: tokenType, Line: line, Col: col, Value: sb.String()}
}

func (lexer *Lexer) readIdentifier(first byte) Token {
	line, col := lexer.line, lexer.col
	var sb strings.Builder
	sb.WriteByte(first)

	for {
		ch, ok := lexer.readChar()
		if !ok {
			break
		}
		if !isLetter(ch) && !isDigit(ch) && ch != '_' {
			lexer.unreadChar()
			break
		}
		sb.WriteByte(ch)
	}

	literal := sb.String()
	return Token{Type: lookupIdentifier(literal), Line: line, Col: col, Value: literal}
}

// readString copies everything up to the closing quote. A newline or end of
// input first produces a warning and the partial content.
func (lexer *Lexer) readString(quote byte) Token {
	line, col := lexer.line, lexer.col
	var sb strings.Builder

	for {
		ch, ok := lexer.readChar()
		if !ok || ch == '\n' {
			warnLine, warnCol := lexer.line, lexer.col
			if ok {
				warnLine, warnCol = lexer.prevLine, lexer.prevCol+1
			}
			if lexer.Warn != nil {
				lexer.Warn("**WARNING: string literal @ (%d, %d) not terminated properly.", warnLine, warnCol)
			}
			break
		}
		if ch == quote {
			break
		}
		sb.WriteByte(ch)
	}

	return Token{Type: StringLiteral, Line: line, Col: col, Value: sb.String()}
}

func (lexer *Lexer) skipComment() {
	for {
		ch, ok := lexer.readChar()
		if !ok || ch == '\n' {
			return
		}
	}
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\v' || ch == '\f'
}

func isLetter(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
