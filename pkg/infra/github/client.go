package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/oauth2"

	"github.com/actionutils/gh-release-notes/pkg/domain/interfaces"
	"github.com/actionutils/gh-release-notes/pkg/domain/types"
)

const graphqlEndpoint = "https://api.github.com/graphql"

type client struct {
	githubClient *github.Client
	// probeClient issues unauthenticated sponsors-page probes; it must
	// not carry the API transport to avoid leaking credentials to HTML
	// endpoints.
	probeClient *http.Client
}

// NewClient creates a GitHub client authenticated with a personal access token
func NewClient(ctx context.Context, token string) (interfaces.GitHubClient, error) {
	if token == "" {
		return nil, goerr.New("no GitHub credential resolvable", goerr.Tag(types.ErrTagAuth))
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	githubClient := github.NewClient(oauth2.NewClient(ctx, ts))
	githubClient.UserAgent = types.UserAgent

	return &client{
		githubClient: githubClient,
		probeClient:  http.DefaultClient,
	}, nil
}

// NewAppClient creates a GitHub client with App installation authentication
func NewAppClient(appID, installationID int64, privateKey []byte) (interfaces.GitHubClient, error) {
	itr, err := ghinstallation.New(http.DefaultTransport, appID, installationID, privateKey)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GitHub App transport", goerr.Tag(types.ErrTagAuth))
	}

	githubClient := github.NewClient(&http.Client{Transport: itr})
	githubClient.UserAgent = types.UserAgent

	return &client{
		githubClient: githubClient,
		probeClient:  http.DefaultClient,
	}, nil
}

// GetRepository fetches repository metadata
func (c *client) GetRepository(ctx context.Context, owner, repo string) (*github.Repository, error) {
	r, _, err := c.githubClient.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch repository metadata",
			goerr.V("owner", owner), goerr.V("repo", repo), goerr.Tag(types.ErrTagRemote))
	}
	return r, nil
}

// GetReleaseByTag fetches a single release by tag name
func (c *client) GetReleaseByTag(ctx context.Context, owner, repo, tag string) (*github.RepositoryRelease, error) {
	rel, _, err := c.githubClient.Repositories.GetReleaseByTag(ctx, owner, repo, tag)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch release by tag",
			goerr.V("tag", tag), goerr.Tag(types.ErrTagRemote))
	}
	return rel, nil
}

// ListReleases lists releases, newest first
func (c *client) ListReleases(ctx context.Context, owner, repo string, opts *github.ListOptions) ([]*github.RepositoryRelease, *github.Response, error) {
	releases, resp, err := c.githubClient.Repositories.ListReleases(ctx, owner, repo, opts)
	if err != nil {
		return nil, resp, goerr.Wrap(err, "failed to list releases", goerr.Tag(types.ErrTagRemote))
	}
	return releases, resp, nil
}

// ListMatchingRefs lists git refs matching a prefix (e.g. "tags/v1")
func (c *client) ListMatchingRefs(ctx context.Context, owner, repo, ref string) ([]*github.Reference, error) {
	refs, _, err := c.githubClient.Git.ListMatchingRefs(ctx, owner, repo, &github.ReferenceListOptions{
		Ref: ref,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list matching refs",
			goerr.V("ref", ref), goerr.Tag(types.ErrTagRemote))
	}
	return refs, nil
}

// GetTag fetches an annotated tag object
func (c *client) GetTag(ctx context.Context, owner, repo, sha string) (*github.Tag, error) {
	tag, _, err := c.githubClient.Git.GetTag(ctx, owner, repo, sha)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch tag object",
			goerr.V("sha", sha), goerr.Tag(types.ErrTagRemote))
	}
	return tag, nil
}

// GetCommit fetches a git commit object
func (c *client) GetCommit(ctx context.Context, owner, repo, sha string) (*github.Commit, error) {
	commit, _, err := c.githubClient.Git.GetCommit(ctx, owner, repo, sha)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch commit",
			goerr.V("sha", sha), goerr.Tag(types.ErrTagRemote))
	}
	return commit, nil
}

// GraphQL executes a query against the GraphQL endpoint and decodes the
// `data` payload into out. Error payloads are mapped to a remote error.
func (c *client) GraphQL(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return goerr.Wrap(err, "failed to marshal GraphQL request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, graphqlEndpoint, bytes.NewReader(body))
	if err != nil {
		return goerr.Wrap(err, "failed to create GraphQL request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", types.UserAgent)

	// Reuse the REST client transport so the same credential applies
	httpClient := &http.Client{Transport: c.githubClient.Client().Transport}
	resp, err := httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "failed to execute GraphQL request", goerr.Tag(types.ErrTagRemote))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return goerr.New(fmt.Sprintf("GraphQL request failed with status %d", resp.StatusCode),
			goerr.V("body", string(data)), goerr.Tag(types.ErrTagRemote))
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return goerr.Wrap(err, "failed to decode GraphQL response", goerr.Tag(types.ErrTagRemote))
	}
	if len(envelope.Errors) > 0 {
		return goerr.New("GraphQL query returned errors",
			goerr.V("message", envelope.Errors[0].Message),
			goerr.V("type", envelope.Errors[0].Type),
			goerr.Tag(types.ErrTagRemote))
	}

	if out != nil && envelope.Data != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return goerr.Wrap(err, "failed to decode GraphQL data payload")
		}
	}
	return nil
}

// SponsorsPageExists probes https://github.com/sponsors/<login> without
// authentication. 200 means a listing exists, 404 means none.
func (c *client) SponsorsPageExists(ctx context.Context, login string) (bool, error) {
	url := "https://github.com/sponsors/" + login
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false, goerr.Wrap(err, "failed to create sponsors probe request")
	}
	req.Header.Set("User-Agent", types.UserAgent)

	resp, err := c.probeClient.Do(req)
	if err != nil {
		return false, goerr.Wrap(err, "sponsors probe failed", goerr.V("login", login))
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, goerr.New("unexpected sponsors probe status",
			goerr.V("login", login), goerr.V("status", resp.StatusCode))
	}
}
