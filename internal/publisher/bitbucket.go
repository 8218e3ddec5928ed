package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"

	serrors "github.com/sfl-io/sflreport/pkg/shared/errors"
)

const bitbucketAPIPath = "/rest/api/1.0"

// Bitbucket publishes comments through the Bitbucket Server REST API.
// The owner of a repository is its project key.
type Bitbucket struct {
	client  *resty.Client
	baseURL string
	logger  hclog.Logger
}

type bitbucketAnchor struct {
	Path     string `json:"path"`
	Line     int    `json:"line,omitempty"`
	LineType string `json:"lineType,omitempty"`
	FileType string `json:"fileType,omitempty"`
}

type bitbucketComment struct {
	Text   string           `json:"text"`
	Anchor *bitbucketAnchor `json:"anchor,omitempty"`
}

type bitbucketErrorList struct {
	Errors []struct {
		Context       string `json:"context"`
		Message       string `json:"message"`
		ExceptionName string `json:"exceptionName"`
	} `json:"errors"`
}

// NewBitbucket creates a Bitbucket Server publisher using an HTTP access token.
func NewBitbucket(client *resty.Client, baseURL, token string, logger hclog.Logger) (*Bitbucket, error) {
	if baseURL == "" {
		return nil, serrors.Validation("bitbucket publisher requires a server base_url")
	}
	if token != "" {
		client.SetAuthToken(token)
	}

	apiURL := strings.TrimRight(baseURL, "/")
	if !strings.HasSuffix(apiURL, bitbucketAPIPath) {
		apiURL += bitbucketAPIPath
	}

	return &Bitbucket{client: client, baseURL: apiURL, logger: logger}, nil
}

func (b *Bitbucket) post(ctx context.Context, path string, body interface{}) error {
	resp, err := b.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetBody(body).
		Post(b.baseURL + path)
	if err != nil {
		return err
	}
	return checkResponse(resp)
}

// checkResponse turns an error status into an error carrying the API messages.
func checkResponse(resp *resty.Response) error {
	if resp.StatusCode() < 400 {
		return nil
	}

	var errorList bitbucketErrorList
	if err := json.Unmarshal(resp.Body(), &errorList); err == nil && len(errorList.Errors) > 0 {
		messages := make([]string, 0, len(errorList.Errors))
		for _, e := range errorList.Errors {
			messages = append(messages, e.Message)
		}
		return fmt.Errorf("API error(s) occurred with status code %d: %s", resp.StatusCode(), strings.Join(messages, "; "))
	}
	return fmt.Errorf("API request failed with status code %d and response: %s", resp.StatusCode(), resp.String())
}

// CreatePullRequestComment adds a general comment to a pull request.
func (b *Bitbucket) CreatePullRequestComment(ctx context.Context, owner, repo string, number int, body string) error {
	b.logger.Debug("leaving a comment on a pull request", "project", owner, "repository", repo, "id", number)

	path := fmt.Sprintf("/projects/%s/repos/%s/pull-requests/%d/comments",
		url.PathEscape(owner), url.PathEscape(repo), number)
	if err := b.post(ctx, path, bitbucketComment{Text: body}); err != nil {
		return fmt.Errorf("error leaving a comment on pull request %s/%s#%d: %w", owner, repo, number, err)
	}
	return nil
}

// CreateCommitComment adds a comment to a commit, anchored to a file line when both are given.
func (b *Bitbucket) CreateCommitComment(ctx context.Context, owner, repo, sha string, comment CommitComment) error {
	b.logger.Debug("leaving a comment on a commit", "project", owner, "repository", repo, "sha", sha)

	payload := bitbucketComment{Text: comment.Body}
	if comment.Path != "" {
		payload.Anchor = &bitbucketAnchor{Path: strings.TrimPrefix(comment.Path, "/")}
		if comment.Line > 0 {
			payload.Anchor.Line = comment.Line
			payload.Anchor.LineType = "CONTEXT"
			payload.Anchor.FileType = "TO"
		}
	}

	path := fmt.Sprintf("/projects/%s/repos/%s/commits/%s/comments",
		url.PathEscape(owner), url.PathEscape(repo), url.PathEscape(sha))
	if err := b.post(ctx, path, payload); err != nil {
		return fmt.Errorf("error leaving a comment on commit %s/%s@%s: %w", owner, repo, sha, err)
	}
	return nil
}
