package ps

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/config"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/transport"
	"github.com/go-git/go-git/v6/plumbing/transport/http"
	"github.com/go-git/go-git/v6/plumbing/transport/ssh"
)

// DefaultRemote is the remote Pull uses when none is named.
const DefaultRemote = "origin"

type AuthType string

const (
	AuthTypeNone  AuthType = "none"
	AuthTypeToken AuthType = "token"
	AuthTypeSSH   AuthType = "ssh"
	AuthTypeBasic AuthType = "basic"
)

// RemoteAuth holds the credentials a catalog uses to pull from its
// upstream. Token is sent as the password of the "git" user; SSH falls
// back to ~/.ssh/id_rsa when KeyPath is empty.
type RemoteAuth struct {
	Type       AuthType
	Token      string
	KeyPath    string
	Passphrase string
	Username   string
	Password   string
}

// Remote is an upstream catalog repository.
type Remote struct {
	Name string
	URLs []string
}

// method returns the transport credentials for auth. A nil RemoteAuth
// pulls anonymously.
func (auth *RemoteAuth) method() (transport.AuthMethod, error) {
	if auth == nil {
		return nil, nil
	}

	switch auth.Type {
	case AuthTypeNone, "":
		return nil, nil
	case AuthTypeToken:
		return &http.BasicAuth{Username: "git", Password: auth.Token}, nil
	case AuthTypeBasic:
		return &http.BasicAuth{Username: auth.Username, Password: auth.Password}, nil
	case AuthTypeSSH:
		key := auth.KeyPath
		if key == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("locating ssh key: %w", err)
			}
			key = filepath.Join(home, ".ssh", "id_rsa")
		}
		return ssh.NewPublicKeysFromFile("git", key, auth.Passphrase)
	}
	return nil, fmt.Errorf("unsupported auth type %q", auth.Type)
}

// ensureRepository fails with ErrNotVersioned unless the catalog is a git
// repository.
func (p *Persistence) ensureRepository() error {
	if err := p.ensureInitialized(); err != nil {
		return err
	}
	if p.backend != gitBackend {
		return ErrNotVersioned
	}
	return nil
}

func (p *Persistence) AddRemote(name, url string) error {
	if err := p.ensureRepository(); err != nil {
		return err
	}

	if _, err := p.repo.CreateRemote(&config.RemoteConfig{Name: name, URLs: []string{url}}); err != nil {
		return fmt.Errorf("remote %s: %w", name, err)
	}
	return nil
}

// ListRemotes returns the catalog's upstreams in configuration order.
func (p *Persistence) ListRemotes() ([]Remote, error) {
	if err := p.ensureRepository(); err != nil {
		return nil, err
	}

	remotes, err := p.repo.Remotes()
	if err != nil {
		return nil, fmt.Errorf("listing remotes: %w", err)
	}

	var list []Remote
	for _, remote := range remotes {
		cfg := remote.Config()
		list = append(list, Remote{Name: cfg.Name, URLs: cfg.URLs})
	}
	return list, nil
}

// Pull fetches branch from remote, DefaultRemote when empty, and
// fast-forwards the catalog to it. A catalog that is already up to date is
// not an error.
func (p *Persistence) Pull(remote, branch string, auth *RemoteAuth) error {
	if err := p.ensureRepository(); err != nil {
		return err
	}
	if remote == "" {
		remote = DefaultRemote
	}

	method, err := auth.method()
	if err != nil {
		return fmt.Errorf("pulling %s: %w", remote, err)
	}
	opts := &git.PullOptions{RemoteName: remote, Auth: method}
	if branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(branch)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	wt, err := p.repo.Worktree()
	if err != nil {
		return fmt.Errorf("pulling %s: %w", remote, err)
	}
	if err := wt.Pull(opts); err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("pulling %s: %w", remote, err)
	}
	return nil
}
