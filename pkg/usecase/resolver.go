package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/actionutils/gh-release-notes/pkg/domain/interfaces"
	"github.com/actionutils/gh-release-notes/pkg/domain/model"
)

// maxTagHops bounds annotated-tag dereferencing; tags pointing at tags
// pointing at tags deeper than this are treated as unresolvable.
const maxTagHops = 3

// BoundaryHints carries the optional arguments that steer previous-release
// resolution.
type BoundaryHints struct {
	PreviousTag string // Explicit previous release tag
	Target      string // Target commitish for the release being drafted
	Tag         string // Tag for the release being drafted
}

// ResolveBoundary determines the previous release that bounds the PR
// search window. Resolution precedence: explicit previous tag, then an
// existing-tag match on the target/tag hints with its predecessor found
// by walking releases newest-first, then the most recent qualifying
// release. Returns nil with no error when no previous release exists,
// including when the hinted tag is itself the oldest release.
func ResolveBoundary(ctx context.Context, client interfaces.GitHubClient, owner, repo string, hints BoundaryHints, cfg *model.Config) (*model.ReleaseBoundary, error) {
	logger := ctxlog.From(ctx)

	if hints.PreviousTag != "" {
		rel, err := client.GetReleaseByTag(ctx, owner, repo, hints.PreviousTag)
		if err != nil {
			return nil, goerr.Wrap(err, "explicit previous tag has no release",
				goerr.V("previous_tag", hints.PreviousTag))
		}
		return boundaryFromRelease(rel), nil
	}

	releases, err := listAllReleases(ctx, client, owner, repo)
	if err != nil {
		return nil, err
	}
	if len(releases) == 0 {
		logger.Debug("No releases found, generating from beginning of history")
		return nil, nil
	}

	// Tag-hint optimization: failures here are swallowed and the generic
	// fallback proceeds.
	for _, hint := range []string{hints.Target, hints.Tag} {
		if hint == "" {
			continue
		}
		boundary, ok := resolveFromExistingTag(ctx, client, owner, repo, hint, releases, cfg)
		if ok {
			return boundary, nil
		}
	}

	// Generic fallback: most recent qualifying release
	for _, rel := range releases {
		if qualifies(rel, cfg) {
			return boundaryFromRelease(rel), nil
		}
	}

	logger.Debug("No qualifying releases found", "total", len(releases))
	return nil, nil
}

// resolveFromExistingTag checks whether hint names an existing tag ref
// and, if so, locates the release preceding it. A matched tag with no
// qualifying predecessor resolves to a nil boundary (the hint names the
// oldest release, so the window opens at the beginning of history). The
// second return value is false when the hint did not lead to a decision
// and the generic fallback should run.
func resolveFromExistingTag(ctx context.Context, client interfaces.GitHubClient, owner, repo, hint string, releases []*github.RepositoryRelease, cfg *model.Config) (*model.ReleaseBoundary, bool) {
	logger := ctxlog.From(ctx)

	refs, err := client.ListMatchingRefs(ctx, owner, repo, "tags/"+hint)
	if err != nil {
		logger.Debug("Tag ref lookup failed, falling back", "hint", hint, "error", err)
		return nil, false
	}

	var matched *github.Reference
	for _, ref := range refs {
		if ref.GetRef() == "refs/tags/"+hint {
			matched = ref
			break
		}
	}
	if matched == nil {
		return nil, false
	}

	// Direct adjacency: the first qualifying release below the matched
	// tag in the newest-first release list.
	for i, rel := range releases {
		if rel.GetTagName() != hint {
			continue
		}
		for _, prev := range releases[i+1:] {
			if qualifies(prev, cfg) {
				return boundaryFromRelease(prev), true
			}
		}
		// The hint names the oldest qualifying release
		return nil, true
	}

	// No adjacency found; fall back to the newest qualifying release
	// published at or before the tag's commit timestamp.
	boundaryTime, err := tagCommitDate(ctx, client, owner, repo, matched)
	if err != nil {
		logger.Debug("Tag commit date resolution failed, falling back", "hint", hint, "error", err)
		return nil, false
	}
	for _, rel := range releases {
		if !qualifies(rel, cfg) || rel.GetTagName() == hint {
			continue
		}
		if !rel.GetPublishedAt().After(boundaryTime) {
			return boundaryFromRelease(rel), true
		}
	}
	// The tag exists but nothing was published before it; selecting a
	// newer release would invert the window.
	return nil, true
}

// tagCommitDate dereferences a tag ref to its underlying commit and
// returns the commit timestamp. Annotated tags are followed through at
// most maxTagHops indirections.
func tagCommitDate(ctx context.Context, client interfaces.GitHubClient, owner, repo string, ref *github.Reference) (time.Time, error) {
	objType := ref.GetObject().GetType()
	sha := ref.GetObject().GetSHA()

	for hop := 0; objType == "tag"; hop++ {
		if hop >= maxTagHops {
			return time.Time{}, goerr.New("annotated tag dereference exceeded hop limit",
				goerr.V("sha", sha), goerr.V("hops", hop))
		}
		tag, err := client.GetTag(ctx, owner, repo, sha)
		if err != nil {
			return time.Time{}, err
		}
		objType = tag.GetObject().GetType()
		sha = tag.GetObject().GetSHA()
	}

	if objType != "commit" {
		return time.Time{}, goerr.New("tag does not resolve to a commit",
			goerr.V("type", objType), goerr.V("sha", sha))
	}

	commit, err := client.GetCommit(ctx, owner, repo, sha)
	if err != nil {
		return time.Time{}, err
	}
	return commit.GetCommitter().GetDate().Time, nil
}

// qualifies applies the tag-prefix and prerelease filters to a release
func qualifies(rel *github.RepositoryRelease, cfg *model.Config) bool {
	if rel.GetDraft() {
		return false
	}
	if cfg.TagPrefix != "" && !strings.HasPrefix(rel.GetTagName(), cfg.TagPrefix) {
		return false
	}
	if rel.GetPrerelease() && !cfg.IncludePreReleases {
		return false
	}
	return true
}

func boundaryFromRelease(rel *github.RepositoryRelease) *model.ReleaseBoundary {
	return &model.ReleaseBoundary{
		TagName:     rel.GetTagName(),
		Name:        rel.GetName(),
		Body:        rel.GetBody(),
		CreatedAt:   rel.GetCreatedAt().Time,
		PublishedAt: rel.GetPublishedAt().Time,
		Prerelease:  rel.GetPrerelease(),
	}
}

// listAllReleases pages through every release, newest first
func listAllReleases(ctx context.Context, client interfaces.GitHubClient, owner, repo string) ([]*github.RepositoryRelease, error) {
	var all []*github.RepositoryRelease
	opts := &github.ListOptions{PerPage: 100}
	for {
		releases, resp, err := client.ListReleases(ctx, owner, repo, opts)
		if err != nil {
			return nil, err
		}
		all = append(all, releases...)
		if resp == nil || resp.NextPage == 0 {
			return all, nil
		}
		opts.Page = resp.NextPage
	}
}
