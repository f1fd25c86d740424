package interfaces

import (
	"context"

	"github.com/google/go-github/v75/github"
)

// GitHubClient defines operations for interacting with the GitHub API
type GitHubClient interface {
	// GetRepository fetches repository metadata (default branch in particular)
	GetRepository(ctx context.Context, owner, repo string) (*github.Repository, error)

	// GetReleaseByTag fetches a single release by its tag name
	GetReleaseByTag(ctx context.Context, owner, repo, tag string) (*github.RepositoryRelease, error)

	// ListReleases lists releases, newest first
	ListReleases(ctx context.Context, owner, repo string, opts *github.ListOptions) ([]*github.RepositoryRelease, *github.Response, error)

	// ListMatchingRefs lists git refs whose name starts with the given ref prefix
	ListMatchingRefs(ctx context.Context, owner, repo, ref string) ([]*github.Reference, error)

	// GetTag fetches an annotated tag object by SHA
	GetTag(ctx context.Context, owner, repo, sha string) (*github.Tag, error)

	// GetCommit fetches a git commit object by SHA
	GetCommit(ctx context.Context, owner, repo, sha string) (*github.Commit, error)

	// GraphQL executes a GraphQL query and decodes the `data` payload into out
	GraphQL(ctx context.Context, query string, variables map[string]any, out any) error

	// SponsorsPageExists probes the public sponsors page for a login
	// without authentication. Returns true on 200, false on 404, and an
	// error for any other outcome.
	SponsorsPageExists(ctx context.Context, login string) (bool, error)
}
