package ci

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"
)

var defaultServerURLs = map[CIKind]string{
	CIUnknown:   "https://github.com",
	CIGitHub:    "https://github.com",
	CIGitLab:    "https://gitlab.com",
	CIBitbucket: "https://bitbucket.org",
}

// RepositoryContext identifies the repository and change a report is published for.
// It is passed explicitly to the renderers and publishers that need it.
type RepositoryContext struct {
	Kind       CIKind
	ServerURL  string
	Owner      string
	Repository string
	// CommitSHA is the revision source links point to. In a pull request
	// this is the head of the source branch.
	CommitSHA string
	// EventSHA is the commit that receives commit comments.
	EventSHA          string
	PullRequestNumber int
	InPullRequest     bool
	RootDirectory     string
}

// BlobURL returns the web URL of a repository-rooted path at CommitSHA.
func (c RepositoryContext) BlobURL(path string) string {
	server := strings.TrimRight(c.ServerURL, "/")
	if server == "" {
		server = defaultServerURLs[c.Kind]
	}

	switch c.Kind {
	case CIGitLab:
		return fmt.Sprintf("%s/%s/%s/-/blob/%s%s", server, c.Owner, c.Repository, c.CommitSHA, path)
	case CIBitbucket:
		return fmt.Sprintf("%s/%s/%s/src/%s%s", server, c.Owner, c.Repository, c.CommitSHA, path)
	default:
		return fmt.Sprintf("%s/%s/%s/blob/%s%s", server, c.Owner, c.Repository, c.CommitSHA, path)
	}
}

// Validate checks that the context has enough data for publishing.
func (c RepositoryContext) Validate() error {
	var missing []string
	if c.Owner == "" {
		missing = append(missing, "owner")
	}
	if c.Repository == "" {
		missing = append(missing, "repository")
	}
	if c.InPullRequest && c.PullRequestNumber <= 0 {
		missing = append(missing, "pull request number")
	}
	if !c.InPullRequest && c.EventSHA == "" {
		missing = append(missing, "commit sha")
	}
	if len(missing) > 0 {
		return fmt.Errorf("repository context is incomplete, missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// Overrides are explicit values that take precedence over the CI environment.
type Overrides struct {
	VCS           string
	ServerURL     string
	Owner         string
	Repository    string
	CommitSHA     string
	PullRequestID int
	RootDirectory string
}

// githubEvent is the subset of the GitHub event payload used for pull requests.
type githubEvent struct {
	PullRequest *struct {
		Number int `json:"number"`
		Head   struct {
			SHA string `json:"sha"`
		} `json:"head"`
	} `json:"pull_request"`
}

// ResolveRepositoryContext merges overrides with the CI environment.
// A VCS override that conflicts with the detected CI is logged and the
// override wins. An unknown environment yields a context built from
// overrides only.
func ResolveRepositoryContext(log hclog.Logger, o Overrides, lookup LookupFunc) (RepositoryContext, error) {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	if lookup == nil {
		lookup = os.Getenv
	}

	detected := DetectCIKind(lookup)
	kind := detected
	if vcs := strings.TrimSpace(o.VCS); vcs != "" {
		provided, err := ParseCIKind(vcs)
		if err != nil {
			return RepositoryContext{}, err
		}
		if detected != CIUnknown && detected != provided {
			log.Warn("provided vcs differs from detected CI environment",
				"detected", detected.String(), "provided", provided.String())
		}
		kind = provided
	}

	rc := RepositoryContext{Kind: kind}
	if detected != CIUnknown {
		env, err := ReadEnvironment(detected, lookup)
		if err != nil {
			return RepositoryContext{}, err
		}
		rc.hydrate(log, env)
	} else {
		log.Debug("no CI environment detected, relying on explicit values")
	}

	rc.apply(o)

	if !rc.InPullRequest && rc.PullRequestNumber > 0 {
		rc.InPullRequest = true
	}
	if rc.CommitSHA == "" {
		rc.CommitSHA = rc.EventSHA
	}

	return rc, nil
}

func (c *RepositoryContext) hydrate(log hclog.Logger, env CIEnvironment) {
	c.ServerURL = env.ServerURL
	c.Owner = env.Namespace
	c.Repository = env.Repository
	c.CommitSHA = env.CommitSHA
	c.EventSHA = env.CommitSHA
	c.RootDirectory = env.Workspace

	if n, err := strconv.Atoi(env.PullRequestID); err == nil && n > 0 {
		c.PullRequestNumber = n
		c.InPullRequest = true
	}

	if env.Kind == CIGitHub && strings.HasPrefix(env.EventName, "pull_request") {
		c.InPullRequest = true
		event, err := readGitHubEvent(env.EventPath)
		if err != nil {
			log.Debug("unable to read github event payload", "path", env.EventPath, "error", err)
		} else if event.PullRequest != nil {
			c.PullRequestNumber = event.PullRequest.Number
			if event.PullRequest.Head.SHA != "" {
				c.CommitSHA = event.PullRequest.Head.SHA
			}
		}
	}

	log.Debug("hydrated repository context from CI environment",
		"kind", env.Kind.String(), "owner", c.Owner, "repository", c.Repository,
		"pull_request", c.PullRequestNumber, "sha", c.EventSHA)
}

func (c *RepositoryContext) apply(o Overrides) {
	if o.ServerURL != "" {
		c.ServerURL = o.ServerURL
	}
	if o.Owner != "" {
		c.Owner = o.Owner
	}
	if o.Repository != "" {
		c.Repository = o.Repository
	}
	if o.CommitSHA != "" {
		c.CommitSHA = o.CommitSHA
		c.EventSHA = o.CommitSHA
	}
	if o.PullRequestID > 0 {
		c.PullRequestNumber = o.PullRequestID
		c.InPullRequest = true
	}
	if o.RootDirectory != "" {
		c.RootDirectory = o.RootDirectory
	}
}

func readGitHubEvent(path string) (*githubEvent, error) {
	if path == "" {
		return nil, fmt.Errorf("event path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var event githubEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("decode event payload: %w", err)
	}
	return &event, nil
}
