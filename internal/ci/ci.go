// Package ci discovers where a report is being published from: the CI
// provider, the repository coordinates and the change under review.
package ci

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

// CIKind represents the type of CI.
type CIKind int

const (
	// CIUnknown indicates the CI provider could not be identified.
	CIUnknown CIKind = iota
	// CIGitHub identifies GitHub Actions.
	CIGitHub
	// CIGitLab identifies GitLab CI.
	CIGitLab
	// CIBitbucket identifies Bitbucket Pipelines.
	CIBitbucket
)

// LookupFunc fetches environment variables and defaults to os.Getenv.
type LookupFunc func(string) string

// CIEnvironment holds the raw CI variables relevant for report publishing.
type CIEnvironment struct {
	Kind          CIKind
	ServerURL     string // scheme and host only
	Namespace     string // owner, group or workspace
	Repository    string // slug without namespace
	CommitSHA     string // commit the job runs on
	Reference     string // fully qualified ref, e.g. refs/pull/42/merge
	PullRequestID string
	EventName     string // GitHub only
	EventPath     string // GitHub only
	Workspace     string // checkout directory
}

// String returns the human-readable string representation of a CIKind.
func (c CIKind) String() string {
	switch c {
	case CIGitHub:
		return "github"
	case CIGitLab:
		return "gitlab"
	case CIBitbucket:
		return "bitbucket"
	default:
		return "unknown"
	}
}

// ParseCIKind converts a string identifier into a CIKind value.
func ParseCIKind(raw string) (CIKind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "github":
		return CIGitHub, nil
	case "gitlab":
		return CIGitLab, nil
	case "bitbucket":
		return CIBitbucket, nil
	default:
		return CIUnknown, fmt.Errorf("unsupported ci kind %q", raw)
	}
}

// DetectCIKind attempts to infer the CI provider from well-known environment variables.
func DetectCIKind(lookup LookupFunc) CIKind {
	if lookup == nil {
		lookup = os.Getenv
	}

	if lookup("GITHUB_REPOSITORY") != "" || lookup("GITHUB_SHA") != "" {
		return CIGitHub
	}
	if strings.EqualFold(lookup("GITLAB_CI"), "true") || lookup("CI_PROJECT_PATH") != "" {
		return CIGitLab
	}
	if lookup("BITBUCKET_WORKSPACE") != "" || lookup("BITBUCKET_REPO_SLUG") != "" {
		return CIBitbucket
	}

	return CIUnknown
}

// ReadEnvironment returns the CI variables of the given provider.
func ReadEnvironment(kind CIKind, lookup LookupFunc) (CIEnvironment, error) {
	if lookup == nil {
		lookup = os.Getenv
	}

	switch kind {
	case CIGitHub:
		return readGitHub(lookup), nil
	case CIGitLab:
		return readGitLab(lookup), nil
	case CIBitbucket:
		return readBitbucket(lookup), nil
	default:
		return CIEnvironment{}, fmt.Errorf("unsupported ci kind: %s", kind)
	}
}

// See https://docs.github.com/en/actions/reference/workflows-and-actions/variables.
func readGitHub(lookup LookupFunc) CIEnvironment {
	namespace, repo := splitFullName(lookup("GITHUB_REPOSITORY"))
	if owner := lookup("GITHUB_REPOSITORY_OWNER"); owner != "" {
		namespace = owner
	}

	ref := lookup("GITHUB_REF")
	return CIEnvironment{
		Kind:          CIGitHub,
		ServerURL:     lookup("GITHUB_SERVER_URL"),
		Namespace:     namespace,
		Repository:    repo,
		CommitSHA:     lookup("GITHUB_SHA"),
		Reference:     ref,
		PullRequestID: pullRequestFromRef(ref),
		EventName:     lookup("GITHUB_EVENT_NAME"),
		EventPath:     lookup("GITHUB_EVENT_PATH"),
		Workspace:     lookup("GITHUB_WORKSPACE"),
	}
}

// See https://docs.gitlab.com/ci/variables/predefined_variables/.
func readGitLab(lookup LookupFunc) CIEnvironment {
	ref := lookup("CI_MERGE_REQUEST_REF_PATH")
	if ref == "" {
		if tag := lookup("CI_COMMIT_TAG"); tag != "" {
			ref = "refs/tags/" + tag
		} else if branch := lookup("CI_COMMIT_REF_NAME"); branch != "" {
			ref = "refs/heads/" + branch
		}
	}

	return CIEnvironment{
		Kind:          CIGitLab,
		ServerURL:     lookup("CI_SERVER_URL"),
		Namespace:     lookup("CI_PROJECT_NAMESPACE"),
		Repository:    lookup("CI_PROJECT_NAME"),
		CommitSHA:     lookup("CI_COMMIT_SHA"),
		Reference:     ref,
		PullRequestID: lookup("CI_MERGE_REQUEST_IID"),
		Workspace:     lookup("CI_PROJECT_DIR"),
	}
}

// See https://support.atlassian.com/bitbucket-cloud/docs/variables-and-secrets/.
func readBitbucket(lookup LookupFunc) CIEnvironment {
	var ref string
	pr := lookup("BITBUCKET_PR_ID")
	switch {
	case pr != "":
		ref = "refs/pull/" + pr
	case lookup("BITBUCKET_TAG") != "":
		ref = "refs/tags/" + lookup("BITBUCKET_TAG")
	case lookup("BITBUCKET_BRANCH") != "":
		ref = "refs/heads/" + lookup("BITBUCKET_BRANCH")
	}

	var serverURL string
	if u, err := url.Parse(lookup("BITBUCKET_GIT_HTTP_ORIGIN")); err == nil && u.Scheme != "" && u.Host != "" {
		serverURL = u.Scheme + "://" + u.Host
	}

	return CIEnvironment{
		Kind:          CIBitbucket,
		ServerURL:     serverURL,
		Namespace:     lookup("BITBUCKET_WORKSPACE"),
		Repository:    lookup("BITBUCKET_REPO_SLUG"),
		CommitSHA:     lookup("BITBUCKET_COMMIT"),
		Reference:     ref,
		PullRequestID: pr,
		Workspace:     lookup("BITBUCKET_CLONE_DIR"),
	}
}

func splitFullName(fullName string) (string, string) {
	i := strings.LastIndex(fullName, "/")
	if i <= 0 || i == len(fullName)-1 {
		return "", fullName
	}
	return fullName[:i], fullName[i+1:]
}

func pullRequestFromRef(ref string) string {
	parts := strings.Split(ref, "/")
	for i := 0; i+1 < len(parts); i++ {
		if (parts[i] == "pull" || parts[i] == "merge-requests") && allDigits(parts[i+1]) {
			return parts[i+1]
		}
	}
	return ""
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
