package usecase_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/actionutils/gh-release-notes/pkg/domain/model"
	"github.com/actionutils/gh-release-notes/pkg/usecase"
)

func TestFindNewContributors_Cutoff(t *testing.T) {
	boundary := mergedAt(t, "2023-12-01T00:00:00Z")
	prs := []model.PullRequest{
		testPR(10, "later by newuser", "newuser", mergedAt(t, "2024-01-05T00:00:00Z")),
		testPR(11, "by olduser", "olduser", mergedAt(t, "2024-01-02T00:00:00Z")),
		testPR(12, "first by newuser", "newuser", mergedAt(t, "2024-01-01T00:00:00Z")),
	}

	mock := &mockGitHubClient{
		graphQLFunc: func(ctx context.Context, query string, variables map[string]any, out any) error {
			// olduser has exactly one merged PR before the boundary
			decodeInto(t, out, `{"newuser":{"issueCount":0},"olduser":{"issueCount":1}}`)
			return nil
		},
	}

	report, err := usecase.FindNewContributors(context.Background(), mock, usecase.FindNewContributorsInput{
		Owner:           "acme",
		Repo:            "widget",
		PullRequests:    prs,
		PrevReleaseDate: boundary,
	})

	gt.NoError(t, err)
	gt.Number(t, report.TotalContributors).Equal(2)
	gt.Number(t, len(report.NewContributors)).Equal(1)
	gt.Value(t, report.NewContributors[0].Login).Equal("newuser")
	// Earliest merged PR in the current batch, not the first encountered
	gt.Value(t, report.NewContributors[0].FirstPullRequest.Number).Equal(12)

	// One fetch attribution (3 PRs) plus one batched existence query
	gt.Number(t, report.APICallsUsed).Equal(2)

	query := mock.graphQLQueries[0]
	gt.String(t, query).Contains(`author:newuser`)
	gt.String(t, query).Contains("merged:<2023-12-01T00:00:00Z")
	gt.String(t, query).Contains("repo:acme/widget")
}

func TestFindNewContributors_Batching(t *testing.T) {
	boundary := mergedAt(t, "2023-12-01T00:00:00Z")
	var prs []model.PullRequest
	var parts []string
	for i := 0; i < 25; i++ {
		login := fmt.Sprintf("user%02d", i)
		prs = append(prs, testPR(100+i, "change", login, mergedAt(t, "2024-01-01T00:00:00Z")))
		parts = append(parts, fmt.Sprintf("%q:{\"issueCount\":1}", login))
	}

	mock := &mockGitHubClient{
		graphQLFunc: func(ctx context.Context, query string, variables map[string]any, out any) error {
			decodeInto(t, out, "{"+strings.Join(parts, ",")+"}")
			return nil
		},
	}

	report, err := usecase.FindNewContributors(context.Background(), mock, usecase.FindNewContributorsInput{
		Owner:           "acme",
		Repo:            "widget",
		PullRequests:    prs,
		PrevReleaseDate: boundary,
	})

	gt.NoError(t, err)
	// 25 logins in groups of 10 means 3 batched queries
	gt.Number(t, len(mock.graphQLQueries)).Equal(3)
	gt.Number(t, report.TotalContributors).Equal(25)
	gt.Number(t, len(report.NewContributors)).Equal(0)
	// ceil(25/50) + ceil(25/10)
	gt.Number(t, report.APICallsUsed).Equal(4)
}

func TestFindNewContributors_AliasSanitization(t *testing.T) {
	boundary := mergedAt(t, "2023-12-01T00:00:00Z")
	prs := []model.PullRequest{
		testPR(1, "digit login", "1andonly", mergedAt(t, "2024-01-01T00:00:00Z")),
		testPR(2, "hyphen login", "a-user", mergedAt(t, "2024-01-01T00:00:00Z")),
	}

	mock := &mockGitHubClient{
		graphQLFunc: func(ctx context.Context, query string, variables map[string]any, out any) error {
			decodeInto(t, out, `{"u_1andonly":{"issueCount":0},"a_user":{"issueCount":0}}`)
			return nil
		},
	}

	report, err := usecase.FindNewContributors(context.Background(), mock, usecase.FindNewContributorsInput{
		Owner:           "acme",
		Repo:            "widget",
		PullRequests:    prs,
		PrevReleaseDate: boundary,
	})

	gt.NoError(t, err)
	query := mock.graphQLQueries[0]
	gt.String(t, query).Contains("u_1andonly: search(")
	gt.String(t, query).Contains("a_user: search(")
	// The search terms keep the raw logins
	gt.String(t, query).Contains("author:1andonly")
	gt.String(t, query).Contains("author:a-user")

	// Output sorted by login ascending
	gt.Number(t, len(report.NewContributors)).Equal(2)
	gt.Value(t, report.NewContributors[0].Login).Equal("1andonly")
	gt.Value(t, report.NewContributors[1].Login).Equal("a-user")
}

func TestFindNewContributors_BotSuffix(t *testing.T) {
	boundary := mergedAt(t, "2023-12-01T00:00:00Z")
	pr := testPR(1, "bump deps", "renovate", mergedAt(t, "2024-01-01T00:00:00Z"))
	pr.Author.Type = model.AuthorTypeBot

	mock := &mockGitHubClient{
		graphQLFunc: func(ctx context.Context, query string, variables map[string]any, out any) error {
			decodeInto(t, out, `{"renovate":{"issueCount":5}}`)
			return nil
		},
	}

	_, err := usecase.FindNewContributors(context.Background(), mock, usecase.FindNewContributorsInput{
		Owner:           "acme",
		Repo:            "widget",
		PullRequests:    []model.PullRequest{pr},
		PrevReleaseDate: boundary,
	})

	gt.NoError(t, err)
	gt.String(t, mock.graphQLQueries[0]).Contains("author:renovate[bot]")
}
