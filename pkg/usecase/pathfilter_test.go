package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/actionutils/gh-release-notes/pkg/domain/model"
	"github.com/actionutils/gh-release-notes/pkg/usecase"
)

func TestFilterByChangedFiles_NoPathsIsNoOp(t *testing.T) {
	mock := &mockGitHubClient{}
	merged := mergedAt(t, "2024-05-01T00:00:00Z")
	original := []model.PullRequest{
		testPR(1, "One", "alice", merged),
		testPR(2, "Two", "bob", merged),
	}

	out, err := usecase.FilterByChangedFiles(context.Background(), mock, "acme", "widget", original, nil)

	gt.NoError(t, err)
	gt.Number(t, len(out)).Equal(2)
	gt.Number(t, len(mock.graphQLQueries)).Equal(0)
}

func TestFilterByChangedFiles_PrefixSemantics(t *testing.T) {
	merged := mergedAt(t, "2024-05-01T00:00:00Z")
	prs := []model.PullRequest{
		testPR(10, "Keep", "alice", merged),
		testPR(11, "Drop", "bob", merged),
	}

	mock := &mockGitHubClient{
		graphQLFunc: func(ctx context.Context, query string, variables map[string]any, out any) error {
			decodeInto(t, out, `{
				"pr_10": {"pullRequest": {"files": {
					"pageInfo": {"hasNextPage": false, "endCursor": ""},
					"nodes": [{"path": "src/keep/file.ts"}]
				}}},
				"pr_11": {"pullRequest": {"files": {
					"pageInfo": {"hasNextPage": false, "endCursor": ""},
					"nodes": [{"path": "docs/readme.md"}]
				}}}
			}`)
			return nil
		},
	}

	out, err := usecase.FilterByChangedFiles(context.Background(), mock, "acme", "widget", prs, []string{"src/keep"})

	gt.NoError(t, err)
	gt.Number(t, len(out)).Equal(1)
	gt.Value(t, out[0].Number).Equal(10)
	gt.Number(t, len(mock.graphQLQueries)).Equal(1)
	gt.String(t, mock.graphQLQueries[0]).Contains("pullRequest(number: 10)")
	gt.String(t, mock.graphQLQueries[0]).Contains("pullRequest(number: 11)")
}

func TestFilterByChangedFiles_RenamedFileMatchesOldPath(t *testing.T) {
	merged := mergedAt(t, "2024-05-01T00:00:00Z")
	prs := []model.PullRequest{testPR(20, "Move", "alice", merged)}

	mock := &mockGitHubClient{
		graphQLFunc: func(ctx context.Context, query string, variables map[string]any, out any) error {
			gt.String(t, query).Contains("previousFilePath")
			decodeInto(t, out, `{
				"pr_20": {"pullRequest": {"files": {
					"pageInfo": {"hasNextPage": false, "endCursor": ""},
					"nodes": [{"path": "docs/moved.ts", "previousFilePath": "src/keep/file.ts"}]
				}}}
			}`)
			return nil
		},
	}

	out, err := usecase.FilterByChangedFiles(context.Background(), mock, "acme", "widget", prs, []string{"src/keep"})

	gt.NoError(t, err)
	gt.Number(t, len(out)).Equal(1)
	gt.Value(t, out[0].Number).Equal(20)
}

func TestFilterByChangedFiles_CursorContinuation(t *testing.T) {
	merged := mergedAt(t, "2024-05-01T00:00:00Z")
	prs := []model.PullRequest{testPR(7, "Deep", "alice", merged)}

	mock := &mockGitHubClient{}
	mock.graphQLFunc = func(ctx context.Context, query string, variables map[string]any, out any) error {
		switch len(mock.graphQLQueries) {
		case 1:
			// First page has no match but more pages remain
			decodeInto(t, out, `{
				"pr_7": {"pullRequest": {"files": {
					"pageInfo": {"hasNextPage": true, "endCursor": "PAGE2"},
					"nodes": [{"path": "vendor/dep.go"}]
				}}}
			}`)
		default:
			gt.String(t, query).Contains(`after: "PAGE2"`)
			decodeInto(t, out, `{
				"pr_7": {"pullRequest": {"files": {
					"pageInfo": {"hasNextPage": false, "endCursor": ""},
					"nodes": [{"path": "src/core/engine.go"}]
				}}}
			}`)
		}
		return nil
	}

	out, err := usecase.FilterByChangedFiles(context.Background(), mock, "acme", "widget", prs, []string{"src/"})

	gt.NoError(t, err)
	gt.Number(t, len(out)).Equal(1)
	gt.Number(t, len(mock.graphQLQueries)).Equal(2)
	gt.String(t, mock.graphQLQueries[0]).Contains("after: null")
}

func TestFilterByChangedFiles_PreservesInputOrder(t *testing.T) {
	merged := mergedAt(t, "2024-05-01T00:00:00Z")
	prs := []model.PullRequest{
		testPR(3, "Third", "alice", merged),
		testPR(1, "First", "bob", merged),
		testPR(2, "Second", "carol", merged),
	}

	mock := &mockGitHubClient{
		graphQLFunc: func(ctx context.Context, query string, variables map[string]any, out any) error {
			decodeInto(t, out, `{
				"pr_3": {"pullRequest": {"files": {
					"pageInfo": {"hasNextPage": false, "endCursor": ""},
					"nodes": [{"path": "src/a.go"}]
				}}},
				"pr_1": {"pullRequest": {"files": {
					"pageInfo": {"hasNextPage": false, "endCursor": ""},
					"nodes": [{"path": "src/b.go"}]
				}}},
				"pr_2": {"pullRequest": {"files": {
					"pageInfo": {"hasNextPage": false, "endCursor": ""},
					"nodes": [{"path": "src/c.go"}]
				}}}
			}`)
			return nil
		},
	}

	out, err := usecase.FilterByChangedFiles(context.Background(), mock, "acme", "widget", prs, []string{"src"})

	gt.NoError(t, err)
	gt.Value(t, numbers(out)).Equal([]int{3, 1, 2})
}

func TestFilterByChangedFiles_MissingAliasDropsPR(t *testing.T) {
	merged := mergedAt(t, "2024-05-01T00:00:00Z")
	prs := []model.PullRequest{
		testPR(5, "Gone", "alice", merged),
		testPR(6, "Here", "bob", merged),
	}

	mock := &mockGitHubClient{
		graphQLFunc: func(ctx context.Context, query string, variables map[string]any, out any) error {
			decodeInto(t, out, `{
				"pr_6": {"pullRequest": {"files": {
					"pageInfo": {"hasNextPage": false, "endCursor": ""},
					"nodes": [{"path": "src/b.go"}]
				}}}
			}`)
			return nil
		},
	}

	out, err := usecase.FilterByChangedFiles(context.Background(), mock, "acme", "widget", prs, []string{"src"})

	gt.NoError(t, err)
	gt.Number(t, len(out)).Equal(1)
	gt.Value(t, out[0].Number).Equal(6)
}
