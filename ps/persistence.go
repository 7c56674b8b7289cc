package ps

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/go-git/go-billy/v6"
	"github.com/go-git/go-billy/v6/memfs"
	"github.com/go-git/go-billy/v6/osfs"
	"github.com/go-git/go-billy/v6/util"
	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/cache"
	"github.com/go-git/go-git/v6/storage/filesystem"
	"github.com/go-git/go-git/v6/storage/memory"

	"github.com/nickyhof/FlatDB/core"
)

// SchemaFile is the name of the catalog file inside each database directory.
const SchemaFile = "schema.yaml"

var (
	ErrNotInitialized = errors.New("persistence layer not initialized")
	ErrReadOnly       = errors.New("persistence layer is read-only")
	ErrNotVersioned   = errors.New("persistence layer has no history")
	ErrNotSupported   = errors.New("operation not supported by this persistence layer")
)

type backend int

const (
	gitBackend backend = iota + 1
	directoryBackend
	remoteBackend
)

// Persistence gives access to a catalog tree: one directory per database
// holding schema.yaml and one <table>.data file per table. The tree lives in
// a git repository, a plain directory, or behind an HTTP/S3 URL.
type Persistence struct {
	backend      backend
	repo         *git.Repository
	isMemoryMode bool
	fs           billy.Filesystem
	store        objectStore
	pinned       plumbing.Hash
	mu           sync.RWMutex
}

// IsInitialized returns true if the persistence layer has a backing store
func (p *Persistence) IsInitialized() bool {
	if p == nil {
		return false
	}
	switch p.backend {
	case gitBackend:
		return p.repo != nil
	case directoryBackend:
		return p.fs != nil
	case remoteBackend:
		return p.store != nil
	default:
		return false
	}
}

func (p *Persistence) ensureInitialized() error {
	if !p.IsInitialized() {
		return ErrNotInitialized
	}
	return nil
}

// IsVersioned reports whether the catalog has commit history.
func (p *Persistence) IsVersioned() bool {
	return p.IsInitialized() && p.backend == gitBackend
}

func (p *Persistence) String() string {
	switch {
	case !p.IsInitialized():
		return "uninitialized"
	case p.backend == gitBackend && p.isMemoryMode:
		return "git (memory)"
	case p.backend == gitBackend:
		return "git"
	case p.backend == directoryBackend:
		return "directory " + p.fs.Root()
	default:
		return "remote " + p.store.String()
	}
}

func NewMemoryPersistence() (*Persistence, error) {
	wt := memfs.New()
	storer := memory.NewStorage()

	repo, err := git.Init(storer, git.WithWorkTree(wt))
	if err != nil {
		return nil, err
	}

	return &Persistence{
		backend:      gitBackend,
		repo:         repo,
		isMemoryMode: true,
	}, nil
}

// NewFilePersistence opens the catalog rooted at baseDir. When gitUrl is
// set the repository is cloned there first; an existing .git directory is
// opened as a repository; anything else is read as a plain directory.
func NewFilePersistence(baseDir string, gitUrl *string) (*Persistence, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	_, statErr := os.Stat(filepath.Join(baseDir, ".git"))
	if gitUrl == nil && statErr != nil {
		return NewDirectoryPersistence(osfs.New(baseDir)), nil
	}

	wt := osfs.New(baseDir)
	fs, err := wt.Chroot(".git")
	if err != nil {
		return nil, err
	}

	storer := filesystem.NewStorageWithOptions(
		fs,
		cache.NewObjectLRUDefault(),
		filesystem.Options{ExclusiveAccess: true})

	var repo *git.Repository
	if gitUrl != nil && statErr != nil {
		repo, err = git.Clone(storer, wt, &git.CloneOptions{
			URL: *gitUrl,
		})
	} else {
		repo, err = git.Open(storer, wt)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open repository in %s: %w", baseDir, err)
	}

	return &Persistence{
		backend: gitBackend,
		repo:    repo,
	}, nil
}

// NewGitPersistence opens the repository in baseDir, initializing one if
// none exists yet.
func NewGitPersistence(baseDir string) (*Persistence, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	wt := osfs.New(baseDir)
	fs, err := wt.Chroot(".git")
	if err != nil {
		return nil, err
	}

	storer := filesystem.NewStorageWithOptions(
		fs,
		cache.NewObjectLRUDefault(),
		filesystem.Options{ExclusiveAccess: true})

	var repo *git.Repository
	if _, statErr := os.Stat(fs.Root()); statErr != nil {
		repo, err = git.Init(storer, git.WithWorkTree(wt))
	} else {
		repo, err = git.Open(storer, wt)
	}
	if err != nil {
		return nil, err
	}

	return &Persistence{
		backend: gitBackend,
		repo:    repo,
	}, nil
}

// NewDirectoryPersistence serves the catalog straight from fs.
func NewDirectoryPersistence(fs billy.Filesystem) *Persistence {
	return &Persistence{
		backend: directoryBackend,
		fs:      fs,
	}
}

// Open returns a reader for the file at filePath, relative to the catalog
// root. Missing files satisfy errors.Is(err, os.ErrNotExist).
func (p *Persistence) Open(filePath string) (io.ReadCloser, error) {
	if err := p.ensureInitialized(); err != nil {
		return nil, err
	}
	filePath = cleanPath(filePath)

	p.mu.RLock()
	defer p.mu.RUnlock()

	switch p.backend {
	case gitBackend:
		return p.openCommitted(filePath)
	case directoryBackend:
		file, err := p.fs.Open(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", filePath, err)
		}
		return file, nil
	default:
		return p.store.open(context.Background(), filePath)
	}
}

func (p *Persistence) ReadFile(filePath string) ([]byte, error) {
	reader, err := p.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return io.ReadAll(reader)
}

func (p *Persistence) Exists(filePath string) bool {
	if !p.IsInitialized() {
		return false
	}
	filePath = cleanPath(filePath)

	p.mu.RLock()
	defer p.mu.RUnlock()

	switch p.backend {
	case gitBackend:
		tree, err := p.snapshot()
		if err != nil || tree == nil {
			return false
		}
		_, err = tree.File(filePath)
		return err == nil
	case directoryBackend:
		info, err := p.fs.Stat(filePath)
		return err == nil && !info.IsDir()
	default:
		return p.store.exists(context.Background(), filePath)
	}
}

// ListDatabases returns the names of the directories that hold a schema
// file, sorted.
func (p *Persistence) ListDatabases() ([]string, error) {
	if err := p.ensureInitialized(); err != nil {
		return nil, err
	}

	var dirs []string
	switch p.backend {
	case gitBackend:
		entries, err := p.listCommitted("")
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir {
				dirs = append(dirs, entry.Name)
			}
		}
	case directoryBackend:
		infos, err := p.fs.ReadDir("/")
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, nil
			}
			return nil, err
		}
		for _, info := range infos {
			if info.IsDir() {
				dirs = append(dirs, info.Name())
			}
		}
	default:
		names, err := p.store.list(context.Background())
		if err != nil {
			return nil, err
		}
		dirs = names
	}

	var databases []string
	for _, dir := range dirs {
		if p.Exists(path.Join(dir, SchemaFile)) {
			databases = append(databases, dir)
		}
	}
	sort.Strings(databases)
	return databases, nil
}

// WriteFile stores data at filePath. Git catalogs commit the change as
// identity; pinned checkouts and HTTP catalogs are read-only.
func (p *Persistence) WriteFile(filePath string, data []byte, identity core.Identity, message string) (Transaction, error) {
	if err := p.ensureInitialized(); err != nil {
		return Transaction{}, err
	}
	filePath = cleanPath(filePath)

	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.backend {
	case gitBackend:
		if p.pinned != plumbing.ZeroHash {
			return Transaction{}, fmt.Errorf("checked out at %s: %w", p.pinned, ErrReadOnly)
		}
		return p.commitFile(filePath, data, identity, message)
	case directoryBackend:
		if dir := path.Dir(filePath); dir != "." {
			if err := p.fs.MkdirAll(dir, 0755); err != nil {
				return Transaction{}, err
			}
		}
		if err := util.WriteFile(p.fs, filePath, data, 0644); err != nil {
			return Transaction{}, fmt.Errorf("failed to write %s: %w", filePath, err)
		}
		return Transaction{}, nil
	default:
		return Transaction{}, p.store.put(context.Background(), filePath, data)
	}
}

func cleanPath(filePath string) string {
	return strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(filePath)), "/")
}
