package git

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/gitsight/go-vcsurl"
	"github.com/go-git/go-git/v5"
)

// findGitRepositoryPath function finds a git repository path for a given source folder
func findGitRepositoryPath(sourceFolder string) (string, error) {
	if sourceFolder == "" {
		return "", fmt.Errorf("source folder is not set")
	}

	// check if source folder is a subfolder of a git repository
	for {
		_, err := git.PlainOpen(sourceFolder)
		if err == nil {
			return sourceFolder, nil
		}

		// move up one level
		parent := filepath.Dir(sourceFolder)
		if parent == sourceFolder {
			break
		}
		sourceFolder = parent
	}

	return "", fmt.Errorf("source folder is not a git repository")
}

type remoteCoordinates struct {
	host       string
	owner      string
	repository string
}

// parseRemote extracts host, owner and repository from a clone URL.
// Two-segment paths on the public hosts go through go-vcsurl. Self-hosted
// servers and nested GitLab groups are split on the last path segment.
func parseRemote(remote string) (remoteCoordinates, error) {
	host, repoPath, err := splitRemote(remote)
	if err != nil {
		return remoteCoordinates{}, err
	}
	repoPath = strings.TrimSuffix(strings.Trim(repoPath, "/"), ".git")

	if publicHosts[host] && strings.Count(repoPath, "/") == 1 {
		if info, err := vcsurl.Parse(remote); err == nil && info.Username != "" && info.Name != "" {
			return remoteCoordinates{host: string(info.Host), owner: info.Username, repository: info.Name}, nil
		}
	}

	i := strings.LastIndex(repoPath, "/")
	if i <= 0 {
		return remoteCoordinates{}, fmt.Errorf("remote %q has no owner", remote)
	}
	return remoteCoordinates{host: host, owner: repoPath[:i], repository: repoPath[i+1:]}, nil
}

var publicHosts = map[string]bool{
	"github.com":    true,
	"gitlab.com":    true,
	"bitbucket.org": true,
}

func splitRemote(remote string) (string, string, error) {
	if strings.Contains(remote, "://") {
		u, err := url.Parse(remote)
		if err != nil {
			return "", "", fmt.Errorf("invalid remote %q: %w", remote, err)
		}
		return u.Hostname(), u.Path, nil
	}

	// scp-like syntax: git@host:owner/repo.git
	at := strings.Index(remote, "@")
	colon := strings.Index(remote, ":")
	if colon < 0 || colon < at {
		return "", "", fmt.Errorf("unsupported remote %q", remote)
	}
	return remote[at+1 : colon], remote[colon+1:], nil
}
