package ps

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/filemode"
	"github.com/go-git/go-git/v6/plumbing/object"

	"github.com/nickyhof/FlatDB/core"
)

// A catalog write never goes through the worktree. The record file is
// stored as a blob, the trees from its database directory up to the root
// are rewritten and the new root is committed on the current branch.

// catalogEntry is one name in a catalog directory: a database at the root,
// a schema or record file below it.
type catalogEntry struct {
	Name  string
	IsDir bool
}

// commitFile replaces the file at filePath with data in a new commit and
// returns it as a Transaction. An empty message is replaced by one naming
// the file.
func (p *Persistence) commitFile(filePath string, data []byte, identity core.Identity, message string) (Transaction, error) {
	if message == "" {
		message = "Updating " + filePath
	}

	parent, err := p.headCommit()
	if err != nil {
		return Transaction{}, err
	}
	root := plumbing.ZeroHash
	if parent != nil {
		root = parent.TreeHash
	}

	records, err := p.storeRecords(data)
	if err != nil {
		return Transaction{}, fmt.Errorf("storing %s: %w", filePath, err)
	}
	root, err = p.replaceFile(root, strings.Split(filePath, "/"), records)
	if err != nil {
		return Transaction{}, fmt.Errorf("storing %s: %w", filePath, err)
	}

	commit, err := p.commitTree(root, parent, identity, message)
	if err != nil {
		return Transaction{}, fmt.Errorf("committing %s: %w", filePath, err)
	}
	if err := p.refreshWorktree(commit.Hash); err != nil {
		return Transaction{}, fmt.Errorf("checking out %s: %w", shortHash(commit.Hash), err)
	}
	return newTransaction(commit), nil
}

// headCommit returns the commit at the tip of the current branch, or nil
// before the first write.
func (p *Persistence) headCommit() (*object.Commit, error) {
	head, err := p.repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading HEAD: %w", err)
	}

	commit, err := p.repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("reading transaction %s: %w", shortHash(head.Hash()), err)
	}
	return commit, nil
}

func (p *Persistence) storeRecords(data []byte) (plumbing.Hash, error) {
	obj := p.repo.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	obj.SetSize(int64(len(data)))

	w, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroHash, err
	}
	_, err = w.Write(data)
	if closeErr := w.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return plumbing.ZeroHash, err
	}
	return p.repo.Storer.SetEncodedObject(obj)
}

// replaceFile points the path below dir at blob, creating the directories
// it needs, and returns the hash of the rewritten dir.
func (p *Persistence) replaceFile(dir plumbing.Hash, parts []string, blob plumbing.Hash) (plumbing.Hash, error) {
	var entries []object.TreeEntry
	if dir != plumbing.ZeroHash {
		tree, err := object.GetTree(p.repo.Storer, dir)
		if err != nil {
			return plumbing.ZeroHash, fmt.Errorf("reading directory %s: %w", parts[0], err)
		}
		entries = slices.Clone(tree.Entries)
	}

	name := parts[0]
	i := slices.IndexFunc(entries, func(e object.TreeEntry) bool { return e.Name == name })

	entry := object.TreeEntry{Name: name, Mode: filemode.Regular, Hash: blob}
	if len(parts) > 1 {
		sub := plumbing.ZeroHash
		if i >= 0 && entries[i].Mode == filemode.Dir {
			sub = entries[i].Hash
		}
		hash, err := p.replaceFile(sub, parts[1:], blob)
		if err != nil {
			return plumbing.ZeroHash, err
		}
		entry = object.TreeEntry{Name: name, Mode: filemode.Dir, Hash: hash}
	}

	if i >= 0 {
		entries[i] = entry
	} else {
		entries = append(entries, entry)
	}
	// Git sorts a directory as if its name ended in a slash.
	slices.SortFunc(entries, func(a, b object.TreeEntry) int {
		return strings.Compare(sortName(a), sortName(b))
	})

	obj := p.repo.Storer.NewEncodedObject()
	if err := (&object.Tree{Entries: entries}).Encode(obj); err != nil {
		return plumbing.ZeroHash, err
	}
	return p.repo.Storer.SetEncodedObject(obj)
}

func sortName(e object.TreeEntry) string {
	if e.Mode == filemode.Dir {
		return e.Name + "/"
	}
	return e.Name
}

// commitTree commits root on top of parent and moves the current branch to
// the new commit.
func (p *Persistence) commitTree(root plumbing.Hash, parent *object.Commit, identity core.Identity, message string) (*object.Commit, error) {
	sig := object.Signature{Name: identity.Name, Email: identity.Email, When: time.Now()}
	commit := &object.Commit{
		Author:    sig,
		Committer: sig,
		Message:   message,
		TreeHash:  root,
	}
	if parent != nil {
		commit.ParentHashes = []plumbing.Hash{parent.Hash}
	}

	obj := p.repo.Storer.NewEncodedObject()
	if err := commit.Encode(obj); err != nil {
		return nil, err
	}
	hash, err := p.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return nil, err
	}
	commit.Hash = hash

	branch := plumbing.Master
	if head, err := p.repo.Storer.Reference(plumbing.HEAD); err == nil && head.Type() == plumbing.SymbolicReference {
		branch = head.Target()
	}
	if err := p.repo.Storer.SetReference(plumbing.NewHashReference(branch, hash)); err != nil {
		return nil, fmt.Errorf("moving %s: %w", branch.Short(), err)
	}
	return commit, nil
}

// refreshWorktree resets an on-disk catalog's files to the new commit.
// Memory catalogs have no worktree worth keeping; reads use the tree.
func (p *Persistence) refreshWorktree(hash plumbing.Hash) error {
	if p.isMemoryMode {
		return nil
	}

	wt, err := p.repo.Worktree()
	if err != nil {
		return err
	}
	return wt.Reset(&git.ResetOptions{Mode: git.HardReset, Commit: hash})
}

// snapshot returns the tree reads are served from: the pinned commit when
// one is checked out, HEAD otherwise. A catalog without commits has none.
func (p *Persistence) snapshot() (*object.Tree, error) {
	hash := p.pinned
	if hash == plumbing.ZeroHash {
		head, err := p.repo.Head()
		if err != nil {
			return nil, nil
		}
		hash = head.Hash()
	}

	commit, err := p.repo.CommitObject(hash)
	if err != nil {
		return nil, fmt.Errorf("reading transaction %s: %w", shortHash(hash), err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("reading transaction %s: %w", shortHash(hash), err)
	}
	return tree, nil
}

// openCommitted streams a file out of the snapshot. Missing files satisfy
// errors.Is(err, os.ErrNotExist).
func (p *Persistence) openCommitted(filePath string) (io.ReadCloser, error) {
	tree, err := p.snapshot()
	if err != nil {
		return nil, err
	}
	if tree == nil {
		return nil, fmt.Errorf("%s: %w", filePath, os.ErrNotExist)
	}

	file, err := tree.File(filePath)
	if errors.Is(err, object.ErrFileNotFound) || errors.Is(err, object.ErrDirectoryNotFound) {
		return nil, fmt.Errorf("%s: %w", filePath, os.ErrNotExist)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", filePath, err)
	}

	reader, err := file.Reader()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", filePath, err)
	}
	return reader, nil
}

// listCommitted returns the entries of a snapshot directory, "" being the
// catalog root. A missing directory has no entries.
func (p *Persistence) listCommitted(dir string) ([]catalogEntry, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	tree, err := p.snapshot()
	if err != nil || tree == nil {
		return nil, err
	}
	if dir != "" && dir != "." {
		if tree, err = tree.Tree(dir); err != nil {
			return nil, nil
		}
	}

	entries := make([]catalogEntry, 0, len(tree.Entries))
	for _, e := range tree.Entries {
		entries = append(entries, catalogEntry{Name: e.Name, IsDir: e.Mode == filemode.Dir})
	}
	return entries, nil
}

func shortHash(hash plumbing.Hash) string {
	return hash.String()[:7]
}
