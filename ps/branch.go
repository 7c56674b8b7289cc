package ps

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-git/go-git/v6/plumbing"
)

var ErrBranchExists = errors.New("branch already exists")

// Branch names a catalog state so it can be read back with Checkout. at is
// a transaction id, abbreviated or not, or another branch; "" means the
// latest transaction.
func (p *Persistence) Branch(name, at string) (Transaction, error) {
	if err := p.ensureRepository(); err != nil {
		return Transaction{}, err
	}

	refName := plumbing.NewBranchReferenceName(name)
	if _, err := p.repo.Reference(refName, false); err == nil {
		return Transaction{}, fmt.Errorf("branch %s: %w", name, ErrBranchExists)
	}

	if at == "" {
		at = plumbing.HEAD.String()
	}
	hash, err := p.repo.ResolveRevision(plumbing.Revision(at))
	if err != nil {
		return Transaction{}, fmt.Errorf("branch %s: unknown transaction %s: %w", name, at, err)
	}
	commit, err := p.repo.CommitObject(*hash)
	if err != nil {
		return Transaction{}, fmt.Errorf("branch %s: %w", name, err)
	}

	if err := p.repo.Storer.SetReference(plumbing.NewHashReference(refName, *hash)); err != nil {
		return Transaction{}, fmt.Errorf("branch %s: %w", name, err)
	}
	return newTransaction(commit), nil
}

// ListBranches returns the catalog's branch names, sorted.
func (p *Persistence) ListBranches() ([]string, error) {
	if err := p.ensureRepository(); err != nil {
		return nil, err
	}

	refs, err := p.repo.Branches()
	if err != nil {
		return nil, fmt.Errorf("listing branches: %w", err)
	}

	branches := []string{}
	refs.ForEach(func(ref *plumbing.Reference) error {
		branches = append(branches, ref.Name().Short())
		return nil
	})
	sort.Strings(branches)
	return branches, nil
}

// CurrentBranch returns the branch new catalog commits go to.
func (p *Persistence) CurrentBranch() (string, error) {
	if err := p.ensureRepository(); err != nil {
		return "", err
	}

	head, err := p.repo.Storer.Reference(plumbing.HEAD)
	if err != nil {
		return "", fmt.Errorf("reading HEAD: %w", err)
	}
	if head.Type() == plumbing.SymbolicReference {
		return head.Target().Short(), nil
	}
	return "", fmt.Errorf("HEAD is detached at %s", head.Hash().String()[:7])
}
