package publisher

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sfl-io/sflreport/internal/ci"
	"github.com/sfl-io/sflreport/pkg/shared/config"
	serrors "github.com/sfl-io/sflreport/pkg/shared/errors"
	"github.com/sfl-io/sflreport/pkg/shared/httpclient"
)

type recordedRequest struct {
	Method string
	Path   string
	Auth   string
	Body   map[string]interface{}
}

func newRecordingServer(t *testing.T, status int, response string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		rec := recordedRequest{Method: r.Method, Path: r.URL.EscapedPath(), Auth: r.Header.Get("Authorization")}
		if len(raw) > 0 {
			require.NoError(t, json.Unmarshal(raw, &rec.Body))
		}
		requests = append(requests, rec)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)
	return server, &requests
}

func TestGitHubPullRequestComment(t *testing.T) {
	server, requests := newRecordingServer(t, http.StatusCreated, `{"id": 1}`)

	pub, err := NewGitHub(nil, server.URL, "secret", hclog.NewNullLogger())
	require.NoError(t, err)

	require.NoError(t, pub.CreatePullRequestComment(context.Background(), "octo", "demo", 7, "report body"))
	require.Len(t, *requests, 1)

	got := (*requests)[0]
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/api/v3/repos/octo/demo/issues/7/comments", got.Path)
	assert.Equal(t, "Bearer secret", got.Auth)
	assert.Equal(t, "report body", got.Body["body"])
}

func TestGitHubCommitComment(t *testing.T) {
	server, requests := newRecordingServer(t, http.StatusCreated, `{"id": 2}`)

	pub, err := NewGitHub(nil, server.URL, "", hclog.NewNullLogger())
	require.NoError(t, err)

	err = pub.CreateCommitComment(context.Background(), "octo", "demo", "abc123", CommitComment{
		Body:     "report body",
		Path:     "/src/A.java",
		Position: 3,
		Line:     12,
	})
	require.NoError(t, err)
	require.Len(t, *requests, 1)

	got := (*requests)[0]
	assert.Equal(t, "/api/v3/repos/octo/demo/commits/abc123/comments", got.Path)
	assert.Empty(t, got.Auth)
	assert.Equal(t, "report body", got.Body["body"])
	assert.Equal(t, "src/A.java", got.Body["path"])
	assert.EqualValues(t, 3, got.Body["position"])
	assert.NotContains(t, got.Body, "line")
}

func TestGitHubCommentFailure(t *testing.T) {
	server, _ := newRecordingServer(t, http.StatusForbidden, `{"message": "Resource not accessible by integration"}`)

	pub, err := NewGitHub(nil, server.URL, "secret", hclog.NewNullLogger())
	require.NoError(t, err)

	err = pub.CreatePullRequestComment(context.Background(), "octo", "demo", 7, "body")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to comment on pull request octo/demo#7")
}

func TestIsPublicGitHub(t *testing.T) {
	testCases := []struct {
		baseURL string
		want    bool
	}{
		{baseURL: "", want: true},
		{baseURL: "https://github.com", want: true},
		{baseURL: "https://api.github.com/", want: true},
		{baseURL: "https://ghe.example.com", want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.baseURL, func(t *testing.T) {
			assert.Equal(t, tc.want, isPublicGitHub(tc.baseURL))
		})
	}
}

func TestGitLabMergeRequestNote(t *testing.T) {
	server, requests := newRecordingServer(t, http.StatusCreated, `{"id": 1, "body": "report body"}`)

	pub, err := NewGitLab(nil, server.URL, "secret", 0, hclog.NewNullLogger())
	require.NoError(t, err)

	require.NoError(t, pub.CreatePullRequestComment(context.Background(), "group/sub", "demo", 5, "report body"))
	require.Len(t, *requests, 1)

	got := (*requests)[0]
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/api/v4/projects/group%2Fsub%2Fdemo/merge_requests/5/notes", got.Path)
	assert.Equal(t, "report body", got.Body["body"])
}

func TestGitLabCommitComment(t *testing.T) {
	server, requests := newRecordingServer(t, http.StatusCreated, `{"note": "report body"}`)

	pub, err := NewGitLab(nil, server.URL, "secret", 0, hclog.NewNullLogger())
	require.NoError(t, err)

	err = pub.CreateCommitComment(context.Background(), "group", "demo", "abc123", CommitComment{
		Body: "report body",
		Path: "/src/A.java",
		Line: 12,
	})
	require.NoError(t, err)
	require.Len(t, *requests, 1)

	got := (*requests)[0]
	assert.Equal(t, "/api/v4/projects/group%2Fdemo/repository/commits/abc123/comments", got.Path)
	assert.Equal(t, "report body", got.Body["note"])
	assert.Equal(t, "src/A.java", got.Body["path"])
	assert.EqualValues(t, 12, got.Body["line"])
	assert.Equal(t, "new", got.Body["line_type"])
}

func TestGitLabCommitCommentWithoutAnchor(t *testing.T) {
	server, requests := newRecordingServer(t, http.StatusCreated, `{"note": "report body"}`)

	pub, err := NewGitLab(nil, server.URL, "secret", 0, hclog.NewNullLogger())
	require.NoError(t, err)

	require.NoError(t, pub.CreateCommitComment(context.Background(), "group", "demo", "abc123", CommitComment{Body: "report body", Position: 4}))
	require.Len(t, *requests, 1)
	assert.NotContains(t, (*requests)[0].Body, "path")
	assert.NotContains(t, (*requests)[0].Body, "line")
}

func TestBitbucketPullRequestComment(t *testing.T) {
	server, requests := newRecordingServer(t, http.StatusCreated, `{"id": 1}`)

	pub, err := NewBitbucket(httpclient.InitializeRestyClient(nil, nil), server.URL+"/", "secret", hclog.NewNullLogger())
	require.NoError(t, err)

	require.NoError(t, pub.CreatePullRequestComment(context.Background(), "PROJ", "demo", 9, "report body"))
	require.Len(t, *requests, 1)

	got := (*requests)[0]
	assert.Equal(t, "/rest/api/1.0/projects/PROJ/repos/demo/pull-requests/9/comments", got.Path)
	assert.Equal(t, "Bearer secret", got.Auth)
	assert.Equal(t, "report body", got.Body["text"])
	assert.NotContains(t, got.Body, "anchor")
}

func TestBitbucketCommitComment(t *testing.T) {
	server, requests := newRecordingServer(t, http.StatusOK, `{"id": 1}`)

	pub, err := NewBitbucket(httpclient.InitializeRestyClient(nil, nil), server.URL+"/rest/api/1.0", "", hclog.NewNullLogger())
	require.NoError(t, err)

	err = pub.CreateCommitComment(context.Background(), "PROJ", "demo", "abc123", CommitComment{
		Body: "report body",
		Path: "/src/A.java",
		Line: 12,
	})
	require.NoError(t, err)
	require.Len(t, *requests, 1)

	got := (*requests)[0]
	assert.Equal(t, "/rest/api/1.0/projects/PROJ/repos/demo/commits/abc123/comments", got.Path)
	assert.Empty(t, got.Auth)
	anchor, ok := got.Body["anchor"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "src/A.java", anchor["path"])
	assert.EqualValues(t, 12, anchor["line"])
	assert.Equal(t, "TO", anchor["fileType"])
}

func TestBitbucketAPIErrors(t *testing.T) {
	server, _ := newRecordingServer(t, http.StatusNotFound,
		`{"errors": [{"message": "Repository PROJ/demo does not exist."}]}`)

	pub, err := NewBitbucket(httpclient.InitializeRestyClient(nil, nil), server.URL, "secret", hclog.NewNullLogger())
	require.NoError(t, err)

	err = pub.CreatePullRequestComment(context.Background(), "PROJ", "demo", 9, "body")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status code 404")
	assert.Contains(t, err.Error(), "Repository PROJ/demo does not exist.")
}

func TestBitbucketRequiresBaseURL(t *testing.T) {
	_, err := NewBitbucket(httpclient.InitializeRestyClient(nil, nil), "", "secret", hclog.NewNullLogger())
	assert.True(t, serrors.IsKind(err, serrors.KindValidation))
}

func TestNewSelectsPublisher(t *testing.T) {
	cfg := &config.Config{}
	logger := hclog.NewNullLogger()

	testCases := []struct {
		name string
		kind ci.CIKind
		opts Options
		want interface{}
	}{
		{name: "github", kind: ci.CIGitHub, want: &GitHub{}},
		{name: "unknown defaults to github", kind: ci.CIUnknown, want: &GitHub{}},
		{name: "gitlab", kind: ci.CIGitLab, opts: Options{BaseURL: "https://gitlab.example.com"}, want: &GitLab{}},
		{name: "bitbucket", kind: ci.CIBitbucket, opts: Options{BaseURL: "https://bitbucket.example.com"}, want: &Bitbucket{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pub, err := New(tc.kind, cfg, tc.opts, logger)
			require.NoError(t, err)
			assert.IsType(t, tc.want, pub)
		})
	}
}

func TestProjectID(t *testing.T) {
	assert.Equal(t, "group/sub/demo", projectID("/group/sub/", "demo"))
	assert.False(t, strings.HasSuffix(projectID("group", "demo/"), "/"))
}
