package source

import (
	"context"
	"encoding/base64"
	neturl "net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/samber/oops"
	"resty.dev/v3"
)

const (
	githubAPIBaseURL  = "https://api.github.com"
	userAgent         = "apidox"
	githubRetries     = 3
	githubRetryMaxSec = 5
	lowQuotaThreshold = 10
)

// githubAPI covers the handful of repository endpoints a github source uses.
// Every response is checked against the rate limit headers.
type githubAPI struct {
	repo     string
	owner    string
	name     string
	client   *resty.Client
	lowQuota atomic.Bool
}

type gitTree struct {
	SHA       string         `json:"sha"`
	Truncated bool           `json:"truncated"`
	Entries   []gitTreeEntry `json:"tree"`
}

type gitTreeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"`
	SHA  string `json:"sha"`
}

func newGitHubAPI(repo string, client *resty.Client) (*githubAPI, error) {
	owner, name, err := parseRepo(repo)
	if err != nil {
		return nil, err
	}

	return &githubAPI{
		repo:   repo,
		owner:  owner,
		name:   name,
		client: client,
	}, nil
}

func newGitHubClient(token string) *resty.Client {
	client := resty.New().
		SetBaseURL(githubAPIBaseURL).
		SetHeader("Accept", "application/vnd.github.v3+json").
		SetHeader("User-Agent", userAgent).
		SetRetryCount(githubRetries).
		SetRetryWaitTime(time.Second).
		SetRetryMaxWaitTime(githubRetryMaxSec * time.Second)

	if token != "" {
		client.SetAuthToken(token)
	}
	return client
}

func (a *githubAPI) endpoint(parts ...string) string {
	return "/repos/" + a.owner + "/" + a.name + strings.Join(parts, "")
}

// get decodes a JSON response into out. what names the resource in errors.
func (a *githubAPI) get(ctx context.Context, endpoint string, query map[string]string, out any, what string) error {
	response, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(query).
		SetResult(out).
		Get(endpoint)
	if err != nil {
		return oops.
			Code("GITHUB_API_ERROR").
			With("repo", a.repo).
			With("endpoint", endpoint).
			Wrapf(err, "fetching %s", what)
	}

	if !response.IsSuccess() {
		return oops.
			Code("GITHUB_API_ERROR").
			With("repo", a.repo).
			With("status", response.StatusCode()).
			Hint("Check repo, path and ref of the source").
			Errorf("github API returned status %d for %s", response.StatusCode(), what)
	}

	return a.observeQuota(response)
}

func (a *githubAPI) observeQuota(response *resty.Response) error {
	remaining, err := strconv.Atoi(response.Header().Get("X-Ratelimit-Remaining"))
	if err != nil {
		return nil //nolint:nilerr // header absent or malformed
	}

	if remaining == 0 {
		return oops.
			Code("GITHUB_RATE_LIMIT").
			With("repo", a.repo).
			With("reset", response.Header().Get("X-Ratelimit-Reset")).
			Hint("Set github_token, GITHUB_TOKEN or GH_TOKEN for a higher limit").
			Errorf("github API rate limit exhausted")
	}

	if remaining <= lowQuotaThreshold {
		a.lowQuota.Store(true)
	}
	return nil
}

func (a *githubAPI) defaultBranch(ctx context.Context) (string, error) {
	var repo struct {
		DefaultBranch string `json:"default_branch"`
	}
	if err := a.get(ctx, a.endpoint(), nil, &repo, "repository metadata"); err != nil {
		return "", err
	}

	if repo.DefaultBranch == "" {
		return "", oops.
			Code("GITHUB_API_ERROR").
			With("repo", a.repo).
			Errorf("repository metadata for %q has no default branch", a.repo)
	}
	return repo.DefaultBranch, nil
}

// tree lists the whole repository at ref. Truncated listings are rejected.
func (a *githubAPI) tree(ctx context.Context, ref string) (*gitTree, error) {
	tree := &gitTree{}
	query := map[string]string{"recursive": "1"}
	if err := a.get(ctx, a.endpoint("/git/trees/", neturl.PathEscape(ref)), query, tree, "tree"); err != nil {
		return nil, err
	}

	if tree.Truncated {
		return nil, oops.
			Code("GITHUB_API_ERROR").
			With("repo", a.repo).
			With("ref", ref).
			Hint("Point path at a smaller directory").
			Errorf("github returned a truncated tree for %q", a.repo)
	}
	return tree, nil
}

// fileSHA returns the blob SHA of a single file at ref.
func (a *githubAPI) fileSHA(ctx context.Context, ref, repoPath string) (string, error) {
	var content struct {
		Type string `json:"type"`
		SHA  string `json:"sha"`
	}
	query := map[string]string{"ref": ref}
	if err := a.get(ctx, a.endpoint("/contents/", escapeRepoPath(repoPath)), query, &content, "file metadata"); err != nil {
		return "", err
	}

	if content.Type != "file" || content.SHA == "" {
		return "", oops.
			Code("GITHUB_API_ERROR").
			With("repo", a.repo).
			With("path", repoPath).
			Errorf("%q is not a file in %q", repoPath, a.repo)
	}
	return content.SHA, nil
}

func (a *githubAPI) blob(ctx context.Context, sha string) ([]byte, error) {
	var blob struct {
		Content  string `json:"content"`
		Encoding string `json:"encoding"`
	}
	if err := a.get(ctx, a.endpoint("/git/blobs/", sha), nil, &blob, "blob "+sha); err != nil {
		return nil, err
	}

	if blob.Encoding != "base64" {
		return nil, oops.
			Code("DOWNLOAD_FAILED").
			With("repo", a.repo).
			With("sha", sha).
			Errorf("unsupported blob encoding %q", blob.Encoding)
	}

	content, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(blob.Content, "\n", ""))
	if err != nil {
		return nil, oops.
			Code("DOWNLOAD_FAILED").
			With("repo", a.repo).
			With("sha", sha).
			Wrapf(err, "decoding blob")
	}
	return content, nil
}

func parseRepo(repo string) (string, string, error) {
	owner, name, found := strings.Cut(repo, "/")
	if !found || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", oops.
			Code("CONFIG_INVALID").
			With("repo", repo).
			Hint("Expected owner/repo").
			Errorf("invalid github repo %q", repo)
	}
	return owner, name, nil
}

func escapeRepoPath(repoPath string) string {
	parts := strings.Split(normalizeRepoPath(repoPath), "/")
	for i, part := range parts {
		parts[i] = neturl.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
