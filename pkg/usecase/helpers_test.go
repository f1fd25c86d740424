package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/gt"

	"github.com/actionutils/gh-release-notes/pkg/domain/model"
)

// mockGitHubClient is a mock implementation of GitHubClient
type mockGitHubClient struct {
	getRepositoryFunc      func(ctx context.Context, owner, repo string) (*github.Repository, error)
	getReleaseByTagFunc    func(ctx context.Context, owner, repo, tag string) (*github.RepositoryRelease, error)
	listReleasesFunc       func(ctx context.Context, owner, repo string, opts *github.ListOptions) ([]*github.RepositoryRelease, *github.Response, error)
	listMatchingRefsFunc   func(ctx context.Context, owner, repo, ref string) ([]*github.Reference, error)
	getTagFunc             func(ctx context.Context, owner, repo, sha string) (*github.Tag, error)
	getCommitFunc          func(ctx context.Context, owner, repo, sha string) (*github.Commit, error)
	graphQLFunc            func(ctx context.Context, query string, variables map[string]any, out any) error
	sponsorsPageExistsFunc func(ctx context.Context, login string) (bool, error)

	graphQLQueries []string
	probedLogins   []string
}

func (m *mockGitHubClient) GetRepository(ctx context.Context, owner, repo string) (*github.Repository, error) {
	if m.getRepositoryFunc != nil {
		return m.getRepositoryFunc(ctx, owner, repo)
	}
	return &github.Repository{DefaultBranch: github.Ptr("main")}, nil
}

func (m *mockGitHubClient) GetReleaseByTag(ctx context.Context, owner, repo, tag string) (*github.RepositoryRelease, error) {
	if m.getReleaseByTagFunc != nil {
		return m.getReleaseByTagFunc(ctx, owner, repo, tag)
	}
	return nil, errors.New("mock not configured")
}

func (m *mockGitHubClient) ListReleases(ctx context.Context, owner, repo string, opts *github.ListOptions) ([]*github.RepositoryRelease, *github.Response, error) {
	if m.listReleasesFunc != nil {
		return m.listReleasesFunc(ctx, owner, repo, opts)
	}
	return nil, nil, nil
}

func (m *mockGitHubClient) ListMatchingRefs(ctx context.Context, owner, repo, ref string) ([]*github.Reference, error) {
	if m.listMatchingRefsFunc != nil {
		return m.listMatchingRefsFunc(ctx, owner, repo, ref)
	}
	return nil, nil
}

func (m *mockGitHubClient) GetTag(ctx context.Context, owner, repo, sha string) (*github.Tag, error) {
	if m.getTagFunc != nil {
		return m.getTagFunc(ctx, owner, repo, sha)
	}
	return nil, errors.New("mock not configured")
}

func (m *mockGitHubClient) GetCommit(ctx context.Context, owner, repo, sha string) (*github.Commit, error) {
	if m.getCommitFunc != nil {
		return m.getCommitFunc(ctx, owner, repo, sha)
	}
	return nil, errors.New("mock not configured")
}

func (m *mockGitHubClient) GraphQL(ctx context.Context, query string, variables map[string]any, out any) error {
	m.graphQLQueries = append(m.graphQLQueries, query)
	if m.graphQLFunc != nil {
		return m.graphQLFunc(ctx, query, variables, out)
	}
	return errors.New("mock not configured")
}

func (m *mockGitHubClient) SponsorsPageExists(ctx context.Context, login string) (bool, error) {
	m.probedLogins = append(m.probedLogins, login)
	if m.sponsorsPageExistsFunc != nil {
		return m.sponsorsPageExistsFunc(ctx, login)
	}
	return false, nil
}

// decodeInto fills a GraphQL out parameter from canned JSON
func decodeInto(t *testing.T, out any, data string) {
	t.Helper()
	gt.NoError(t, json.Unmarshal([]byte(data), out))
}

func mergedAt(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	gt.NoError(t, err)
	return ts
}

func testPR(number int, title, login string, merged time.Time, labels ...string) model.PullRequest {
	return model.PullRequest{
		Number:   number,
		Title:    title,
		MergedAt: merged,
		URL:      "https://github.com/acme/widget/pull/" + strconv.Itoa(number),
		Labels:   labels,
		Author: model.Author{
			Login: login,
			Type:  model.AuthorTypeUser,
			URL:   "https://github.com/" + login,
		},
	}
}
