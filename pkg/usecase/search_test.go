package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/actionutils/gh-release-notes/pkg/domain/model"
	"github.com/actionutils/gh-release-notes/pkg/usecase"
)

func TestBuildSearchQuery_Basic(t *testing.T) {
	query := usecase.BuildSearchQuery(usecase.SearchParams{
		Owner: "acme",
		Repo:  "widget",
	})
	gt.Value(t, query).Equal("repo:acme/widget is:pr is:merged")
}

func TestBuildSearchQuery_DateRange(t *testing.T) {
	since, err := time.Parse(time.RFC3339, "2024-01-01T00:00:00Z")
	gt.NoError(t, err)

	tests := []struct {
		name   string
		params usecase.SearchParams
		want   string
	}{
		{
			name: "Open upper bound",
			params: usecase.SearchParams{
				Owner: "acme", Repo: "widget", Since: since,
			},
			want: "repo:acme/widget is:pr is:merged merged:2024-01-01T00:00:00Z..*",
		},
		{
			name: "Open lower bound",
			params: usecase.SearchParams{
				Owner: "acme", Repo: "widget", Until: since,
			},
			want: "repo:acme/widget is:pr is:merged merged:*..2024-01-01T00:00:00Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, usecase.BuildSearchQuery(tt.params)).Equal(tt.want)
		})
	}
}

func TestBuildSearchQuery_Labels(t *testing.T) {
	query := usecase.BuildSearchQuery(usecase.SearchParams{
		Owner:         "acme",
		Repo:          "widget",
		BaseBranch:    "main",
		IncludeLabels: []string{"feature", "bug fix"},
		ExcludeLabels: []string{"skip-changelog", "wip"},
	})

	gt.Value(t, query).Equal(
		`repo:acme/widget is:pr is:merged base:main -label:"skip-changelog" -label:"wip" label:"feature","bug fix"`)
}

func TestFetchMergedPullRequests_Pagination(t *testing.T) {
	pages := []string{
		`{"search":{"pageInfo":{"hasNextPage":true,"endCursor":"CUR1"},"nodes":[
			{"number":1,"title":"First","url":"https://github.com/acme/widget/pull/1",
			 "mergedAt":"2024-01-01T00:00:00Z",
			 "labels":{"nodes":[{"name":"feature"}]},
			 "author":{"login":"alice","url":"https://github.com/alice",
			           "avatarUrl":"https://avatars.example/alice","__typename":"User"}}]}}`,
		`{"search":{"pageInfo":{"hasNextPage":false,"endCursor":""},"nodes":[
			{"number":2,"title":"Second","url":"https://github.com/acme/widget/pull/2",
			 "mergedAt":"2024-01-02T00:00:00Z",
			 "labels":{"nodes":[]},
			 "author":{"login":"renovate","__typename":"Bot"}}]}}`,
	}

	var cursors []any
	mock := &mockGitHubClient{
		graphQLFunc: func(ctx context.Context, query string, variables map[string]any, out any) error {
			cursors = append(cursors, variables["cursor"])
			page := pages[0]
			pages = pages[1:]
			decodeInto(t, out, page)
			return nil
		},
	}

	prs, err := usecase.FetchMergedPullRequests(context.Background(), mock, usecase.SearchParams{
		Owner: "acme", Repo: "widget",
	})

	gt.NoError(t, err)
	gt.Number(t, len(prs)).Equal(2)
	gt.Number(t, len(cursors)).Equal(2)
	gt.Value(t, cursors[0]).Nil()
	gt.Value(t, cursors[1]).Equal(any("CUR1"))

	gt.Value(t, prs[0].Number).Equal(1)
	gt.Value(t, prs[0].Labels).Equal([]string{"feature"})
	gt.Value(t, prs[0].Author.Type).Equal(model.AuthorTypeUser)
	gt.Value(t, prs[1].Author.Type).Equal(model.AuthorTypeBot)
	gt.Value(t, prs[1].Author.Login).Equal("renovate")
}

func TestFetchMergedPullRequests_FieldFlags(t *testing.T) {
	mock := &mockGitHubClient{
		graphQLFunc: func(ctx context.Context, query string, variables map[string]any, out any) error {
			decodeInto(t, out, `{"search":{"pageInfo":{"hasNextPage":false},"nodes":[]}}`)
			return nil
		},
	}

	_, err := usecase.FetchMergedPullRequests(context.Background(), mock, usecase.SearchParams{
		Owner: "acme", Repo: "widget",
		Fields: usecase.SearchFieldFlags{Body: true, Sponsors: true},
	})
	gt.NoError(t, err)

	gt.Number(t, len(mock.graphQLQueries)).Equal(1)
	gt.String(t, mock.graphQLQueries[0]).Contains("body")
	gt.String(t, mock.graphQLQueries[0]).Contains("sponsorsListing")

	mock2 := &mockGitHubClient{
		graphQLFunc: func(ctx context.Context, query string, variables map[string]any, out any) error {
			decodeInto(t, out, `{"search":{"pageInfo":{"hasNextPage":false},"nodes":[]}}`)
			return nil
		},
	}
	_, err = usecase.FetchMergedPullRequests(context.Background(), mock2, usecase.SearchParams{
		Owner: "acme", Repo: "widget",
	})
	gt.NoError(t, err)
	gt.Value(t, strings.Contains(mock2.graphQLQueries[0], "sponsorsListing")).Equal(false)
	gt.Value(t, strings.Contains(mock2.graphQLQueries[0], "baseRefName")).Equal(false)
}
