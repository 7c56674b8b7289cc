package sql

import (
	"io"
	"strconv"
	"strings"
)

type Parser struct {
	lexer *Lexer
}

func NewParser(r io.Reader) *Parser {
	return &Parser{lexer: NewLexer(r)}
}

func NewStringParser(text string) *Parser {
	return &Parser{lexer: NewStringLexer(text)}
}

// Lexer exposes the underlying lexer, e.g. to replace its warning hook.
func (parser *Parser) Lexer() *Lexer {
	return parser.lexer
}

// Next drains the tokens of one statement, up to and including ';' or EOS.
// It returns io.EOF when the stream holds no further statements.
func (parser *Parser) Next() (*TokenQueue, error) {
	token := parser.lexer.NextToken()
	if token.Type == EOS {
		if err := parser.lexer.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}

	queue := NewTokenQueue()
	for {
		queue.Push(token)
		if token.Type == SemiColon || token.Type == EOS {
			return queue, nil
		}
		token = parser.lexer.NextToken()
	}
}

// Parse reads and parses the next statement.
func (parser *Parser) Parse() (*SelectStatement, error) {
	queue, err := parser.Next()
	if err != nil {
		return nil, err
	}
	return ParseSelect(queue)
}

// Parse parses a single statement held in text.
func Parse(text string) (*SelectStatement, error) {
	return NewStringParser(text).Parse()
}

type selectParser struct {
	queue *TokenQueue
}

func (p *selectParser) expect(tokenType TokenType, what string) (Token, error) {
	token := p.queue.Pop()
	if token.Type != tokenType {
		return token, syntaxError(token, "expected %s but found %s", what, describe(token))
	}
	return token, nil
}

func (p *selectParser) accept(tokenType TokenType) bool {
	if p.queue.Peek().Type == tokenType {
		p.queue.Pop()
		return true
	}
	return false
}

// ParseSelect builds the AST for the statement in queue. Any mismatch
// returns a *SyntaxError and no AST.
func ParseSelect(queue *TokenQueue) (*SelectStatement, error) {
	p := &selectParser{queue: queue}
	var stmt SelectStatement

	if _, err := p.expect(Select, "SELECT"); err != nil {
		return nil, err
	}

	if p.accept(Asterisk) {
		stmt.Star = true
	} else {
		for {
			column, err := p.parseColumn()
			if err != nil {
				return nil, err
			}
			stmt.Columns = append(stmt.Columns, column)
			if !p.accept(Comma) {
				break
			}
		}
	}

	if _, err := p.expect(From, "FROM"); err != nil {
		return nil, err
	}
	table, err := p.expect(Identifier, "table name")
	if err != nil {
		return nil, err
	}
	stmt.Table = table.Value

	if p.queue.Peek().Type == Inner || p.queue.Peek().Type == Join {
		join, err := p.parseJoin()
		if err != nil {
			return nil, err
		}
		stmt.Join = join
	}

	if p.accept(Where) {
		where, err := p.parseWhere()
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}

	if p.accept(Order) {
		if _, err := p.expect(By, "BY"); err != nil {
			return nil, err
		}
		column, err := p.parseColumn()
		if err != nil {
			return nil, err
		}
		orderBy := &OrderByClause{Column: column}
		if p.accept(Desc) {
			orderBy.Descending = true
		} else {
			p.accept(Asc)
		}
		stmt.OrderBy = orderBy
	}

	if p.accept(Limit) {
		limit, err := p.parseLimit()
		if err != nil {
			return nil, err
		}
		stmt.Limit = limit
	}

	if p.accept(Into) {
		target, err := p.expect(Identifier, "table name")
		if err != nil {
			return nil, err
		}
		stmt.Into = &IntoClause{Table: target.Value}
	}

	if _, err := p.expect(SemiColon, "';'"); err != nil {
		return nil, err
	}
	return &stmt, nil
}

// parseColumn parses colRef or FUNC(colRef).
func (p *selectParser) parseColumn() (Column, error) {
	token := p.queue.Peek()
	function, isAggregate := aggregateTokens[token.Type]
	if !isAggregate {
		ref, err := p.parseColumnRef()
		return Column{ColumnRef: ref}, err
	}

	p.queue.Pop()
	if _, err := p.expect(LeftParen, "'('"); err != nil {
		return Column{}, err
	}
	ref, err := p.parseColumnRef()
	if err != nil {
		return Column{}, err
	}
	if _, err := p.expect(RightParen, "')'"); err != nil {
		return Column{}, err
	}
	return Column{ColumnRef: ref, Function: function}, nil
}

// parseColumnRef parses [table.]column.
func (p *selectParser) parseColumnRef() (ColumnRef, error) {
	first, err := p.expect(Identifier, "column name")
	if err != nil {
		return ColumnRef{}, err
	}
	if !p.accept(Dot) {
		return ColumnRef{Name: first.Value}, nil
	}
	column, err := p.expect(Identifier, "column name")
	if err != nil {
		return ColumnRef{}, err
	}
	return ColumnRef{Table: first.Value, Name: column.Value}, nil
}

func (p *selectParser) parseJoin() (*JoinClause, error) {
	p.accept(Inner)
	if _, err := p.expect(Join, "JOIN"); err != nil {
		return nil, err
	}
	table, err := p.expect(Identifier, "table name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(On, "ON"); err != nil {
		return nil, err
	}
	left, err := p.parseColumnRef()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(Equal, "'='"); err != nil {
		return nil, err
	}
	right, err := p.parseColumnRef()
	if err != nil {
		return nil, err
	}
	return &JoinClause{Table: table.Value, Left: left, Right: right}, nil
}

func (p *selectParser) parseWhere() (*Expr, error) {
	ref, err := p.parseColumnRef()
	if err != nil {
		return nil, err
	}

	token := p.queue.Pop()
	operator, ok := operatorTokens[token.Type]
	if !ok {
		return nil, syntaxError(token, "expected comparison operator but found %s", describe(token))
	}

	literal := p.queue.Pop()
	expr := &Expr{Column: ref, Operator: operator, Value: literal.Value}
	switch literal.Type {
	case IntLiteral:
		expr.LiteralType = IntLiteralType
	case RealLiteral:
		expr.LiteralType = RealLiteralType
	case StringLiteral:
		expr.LiteralType = StringLiteralType
	default:
		return nil, syntaxError(literal, "expected literal but found %s", describe(literal))
	}
	return expr, nil
}

func (p *selectParser) parseLimit() (*LimitClause, error) {
	token, err := p.expect(IntLiteral, "row count")
	if err != nil {
		return nil, err
	}
	if strings.HasPrefix(token.Value, "-") {
		return nil, syntaxError(token, "LIMIT must not be negative")
	}
	n, err := strconv.Atoi(token.Value)
	if err != nil {
		return nil, syntaxError(token, "invalid row count %s", describe(token))
	}
	return &LimitClause{N: n}, nil
}
