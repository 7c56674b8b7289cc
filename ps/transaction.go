package ps

import (
	"fmt"
	"time"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/object"
)

// Transaction identifies one commit of a git-backed catalog.
type Transaction struct {
	Id      string
	When    time.Time
	Author  string // "Name <email>" format
	Message string
}

func (transaction Transaction) String() string {
	return fmt.Sprintf("Transaction{Id: %s, When: %s, Author: %s}", transaction.Id, transaction.When, transaction.Author)
}

func (transaction Transaction) IsZero() bool {
	return transaction.Id == ""
}

func newTransaction(c *object.Commit) Transaction {
	author := ""
	if c.Author.Name != "" || c.Author.Email != "" {
		author = fmt.Sprintf("%s <%s>", c.Author.Name, c.Author.Email)
	}
	return Transaction{
		Id:      c.Hash.String(),
		When:    c.Committer.When,
		Author:  author,
		Message: c.Message,
	}
}

// LatestTransaction returns the HEAD commit, or the zero Transaction when
// there is none or the catalog is not versioned.
func (persistence *Persistence) LatestTransaction() Transaction {
	if !persistence.IsVersioned() {
		return Transaction{}
	}

	headRef, err := persistence.repo.Head()
	if err != nil || headRef == nil {
		return Transaction{}
	}

	commit, err := persistence.repo.CommitObject(headRef.Hash())
	if err != nil {
		return Transaction{}
	}

	return newTransaction(commit)
}

// TransactionsSince lists commits reachable from HEAD made at or after asof,
// newest first.
func (persistence *Persistence) TransactionsSince(asof time.Time) []Transaction {
	if !persistence.IsVersioned() {
		return nil
	}

	cIter, err := persistence.repo.Log(&git.LogOptions{
		Since: &asof,
	})
	if err != nil {
		return nil
	}

	var transactions []Transaction
	cIter.ForEach(func(c *object.Commit) error {
		transactions = append(transactions, newTransaction(c))
		return nil
	})

	return transactions
}

// Checkout pins every read to the commit txnID, which may be abbreviated.
// An empty txnID returns to HEAD.
func (persistence *Persistence) Checkout(txnID string) (Transaction, error) {
	if !persistence.IsVersioned() {
		return Transaction{}, ErrNotVersioned
	}

	persistence.mu.Lock()
	defer persistence.mu.Unlock()

	if txnID == "" {
		persistence.pinned = plumbing.ZeroHash
		return Transaction{}, nil
	}

	hash, err := persistence.repo.ResolveRevision(plumbing.Revision(txnID))
	if err != nil {
		return Transaction{}, fmt.Errorf("unknown transaction %s: %w", txnID, err)
	}

	commit, err := persistence.repo.CommitObject(*hash)
	if err != nil {
		return Transaction{}, fmt.Errorf("unknown transaction %s: %w", txnID, err)
	}

	persistence.pinned = *hash
	return newTransaction(commit), nil
}

// CheckedOut returns the pinned commit id, or "" when reads follow HEAD.
func (persistence *Persistence) CheckedOut() string {
	persistence.mu.RLock()
	defer persistence.mu.RUnlock()

	if persistence.pinned == plumbing.ZeroHash {
		return ""
	}
	return persistence.pinned.String()
}
