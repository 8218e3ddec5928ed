package ci

import (
	"testing"
)

func TestCIKindString(t *testing.T) {
	testCases := []struct {
		name string
		kind CIKind
		want string
	}{
		{name: "GitHub", kind: CIGitHub, want: "github"},
		{name: "GitLab", kind: CIGitLab, want: "gitlab"},
		{name: "Bitbucket", kind: CIBitbucket, want: "bitbucket"},
		{name: "Unknown", kind: CIUnknown, want: "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.kind.String(); got != tc.want {
				t.Fatalf("CIKind.String() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParseCIKind(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		want    CIKind
		wantErr bool
	}{
		{name: "GitHub", input: "github", want: CIGitHub},
		{name: "GitLab", input: " GitLab ", want: CIGitLab},
		{name: "Bitbucket", input: "BITBUCKET", want: CIBitbucket},
		{name: "Unsupported", input: "ado", want: CIUnknown, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseCIKind(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseCIKind(%q) expected error", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCIKind(%q) unexpected error: %v", tc.input, err)
			}
			if got != tc.want {
				t.Fatalf("ParseCIKind(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestDetectCIKind(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
		want CIKind
	}{
		{name: "GitHub", env: map[string]string{"GITHUB_SHA": "abc"}, want: CIGitHub},
		{name: "GitLab", env: map[string]string{"GITLAB_CI": "true"}, want: CIGitLab},
		{name: "Bitbucket", env: map[string]string{"BITBUCKET_REPO_SLUG": "repo"}, want: CIBitbucket},
		{name: "Local", env: nil, want: CIUnknown},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetectCIKind(mapLookup(tc.env)); got != tc.want {
				t.Fatalf("DetectCIKind() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestReadEnvironment(t *testing.T) {
	t.Run("GitHubPullRequest", func(t *testing.T) {
		got, err := ReadEnvironment(CIGitHub, mapLookup(map[string]string{
			"GITHUB_REPOSITORY":       "octocat/hello-world",
			"GITHUB_REPOSITORY_OWNER": "octocat",
			"GITHUB_SERVER_URL":       "https://github.example.com",
			"GITHUB_SHA":              "abcdef123456",
			"GITHUB_REF":              "refs/pull/42/merge",
			"GITHUB_EVENT_NAME":       "pull_request",
			"GITHUB_EVENT_PATH":       "/tmp/event.json",
			"GITHUB_WORKSPACE":        "/work",
		}))
		if err != nil {
			t.Fatalf("ReadEnvironment() error = %v", err)
		}

		want := CIEnvironment{
			Kind:          CIGitHub,
			ServerURL:     "https://github.example.com",
			Namespace:     "octocat",
			Repository:    "hello-world",
			CommitSHA:     "abcdef123456",
			Reference:     "refs/pull/42/merge",
			PullRequestID: "42",
			EventName:     "pull_request",
			EventPath:     "/tmp/event.json",
			Workspace:     "/work",
		}
		if got != want {
			t.Fatalf("GitHub env = %+v, want %+v", got, want)
		}
	})

	t.Run("GitLabMergeRequest", func(t *testing.T) {
		got, err := ReadEnvironment(CIGitLab, mapLookup(map[string]string{
			"CI_COMMIT_SHA":             "deadbeef",
			"CI_SERVER_URL":             "https://gitlab.example.com",
			"CI_MERGE_REQUEST_REF_PATH": "refs/merge-requests/42/head",
			"CI_MERGE_REQUEST_IID":      "42",
			"CI_PROJECT_NAME":           "demo",
			"CI_PROJECT_NAMESPACE":      "group/sub",
			"CI_PROJECT_DIR":            "/builds/group/sub/demo",
		}))
		if err != nil {
			t.Fatalf("ReadEnvironment() error = %v", err)
		}

		want := CIEnvironment{
			Kind:          CIGitLab,
			ServerURL:     "https://gitlab.example.com",
			Namespace:     "group/sub",
			Repository:    "demo",
			CommitSHA:     "deadbeef",
			Reference:     "refs/merge-requests/42/head",
			PullRequestID: "42",
			Workspace:     "/builds/group/sub/demo",
		}
		if got != want {
			t.Fatalf("GitLab env = %+v, want %+v", got, want)
		}
	})

	t.Run("BitbucketBranch", func(t *testing.T) {
		got, err := ReadEnvironment(CIBitbucket, mapLookup(map[string]string{
			"BITBUCKET_COMMIT":          "1234567",
			"BITBUCKET_GIT_HTTP_ORIGIN": "https://bitbucket.org/workspace/repo",
			"BITBUCKET_BRANCH":          "main",
			"BITBUCKET_REPO_SLUG":       "repo",
			"BITBUCKET_WORKSPACE":       "workspace",
		}))
		if err != nil {
			t.Fatalf("ReadEnvironment() error = %v", err)
		}

		want := CIEnvironment{
			Kind:       CIBitbucket,
			ServerURL:  "https://bitbucket.org",
			Namespace:  "workspace",
			Repository: "repo",
			CommitSHA:  "1234567",
			Reference:  "refs/heads/main",
		}
		if got != want {
			t.Fatalf("Bitbucket env = %+v, want %+v", got, want)
		}
	})

	t.Run("UnknownKind", func(t *testing.T) {
		if _, err := ReadEnvironment(CIUnknown, mapLookup(nil)); err == nil {
			t.Fatalf("expected error when kind is CIUnknown")
		}
	})
}

func mapLookup(values map[string]string) LookupFunc {
	return func(key string) string {
		if values == nil {
			return ""
		}
		return values[key]
	}
}
