// Package git reads repository coordinates from a local checkout.
package git

import (
	"fmt"
	"path/filepath"

	"github.com/go-git/go-git/v5"
)

// RepositoryMetadata describes the checkout a report is generated in.
type RepositoryMetadata struct {
	RootFolder string
	Subfolder  string // slash separated, empty at the root
	Branch     string
	CommitHash string
	RemoteURL  string
	Host       string
	Owner      string
	Repository string
}

// CollectRepositoryMetadata opens the repository containing sourceFolder and
// reads its HEAD and origin remote. A missing origin is not an error.
func CollectRepositoryMetadata(sourceFolder string) (*RepositoryMetadata, error) {
	if sourceFolder == "" {
		return nil, fmt.Errorf("source folder is not set")
	}

	if absSource, err := filepath.Abs(sourceFolder); err == nil {
		sourceFolder = absSource
	}

	rootFolder, err := findGitRepositoryPath(sourceFolder)
	if err != nil {
		return nil, err
	}
	md := &RepositoryMetadata{RootFolder: filepath.Clean(rootFolder)}

	repo, err := git.PlainOpen(rootFolder)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	if rel, err := filepath.Rel(rootFolder, sourceFolder); err == nil && rel != "." {
		md.Subfolder = filepath.ToSlash(rel)
	}

	if head, err := repo.Head(); err == nil {
		if head.Name().IsBranch() {
			md.Branch = head.Name().Short()
		}
		md.CommitHash = head.Hash().String()
	}

	if remote, err := repo.Remote("origin"); err == nil {
		if cfg := remote.Config(); cfg != nil && len(cfg.URLs) > 0 {
			md.RemoteURL = cfg.URLs[0]
			if coords, err := parseRemote(md.RemoteURL); err == nil {
				md.Host, md.Owner, md.Repository = coords.host, coords.owner, coords.repository
			}
		}
	}

	return md, nil
}
