package sql

// TokenQueue holds the tokens of one statement. Tokens are consumed front to
// back and never reordered.
type TokenQueue struct {
	tokens []Token
	pos    int
}

func NewTokenQueue(tokens ...Token) *TokenQueue {
	return &TokenQueue{tokens: tokens}
}

func (queue *TokenQueue) Push(token Token) {
	queue.tokens = append(queue.tokens, token)
}

// Peek returns the next token without consuming it. An exhausted queue keeps
// returning an EOS positioned after its last token.
func (queue *TokenQueue) Peek() Token {
	if queue.pos < len(queue.tokens) {
		return queue.tokens[queue.pos]
	}
	eos := Token{Type: EOS, Value: "$"}
	if n := len(queue.tokens); n > 0 {
		last := queue.tokens[n-1]
		eos.Line, eos.Col = last.Line, last.Col+len(last.Value)
	}
	return eos
}

func (queue *TokenQueue) Pop() Token {
	token := queue.Peek()
	if queue.pos < len(queue.tokens) {
		queue.pos++
	}
	return token
}

// Len returns the number of tokens not yet consumed.
func (queue *TokenQueue) Len() int {
	return len(queue.tokens) - queue.pos
}

// Tokens returns a copy of every token in the queue, consumed or not.
func (queue *TokenQueue) Tokens() []Token {
	tokens := make([]Token, len(queue.tokens))
	copy(tokens, queue.tokens)
	return tokens
}

// Rewind makes every token available again.
func (queue *TokenQueue) Rewind() {
	queue.pos = 0
}
