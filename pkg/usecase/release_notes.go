package usecase

import (
	"context"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/actionutils/gh-release-notes/pkg/domain/interfaces"
	"github.com/actionutils/gh-release-notes/pkg/domain/model"
	"github.com/actionutils/gh-release-notes/pkg/domain/types"
	"github.com/actionutils/gh-release-notes/pkg/utils/async"
)

type releaseNotesUseCase struct {
	githubClient interfaces.GitHubClient
}

// NewReleaseNotes creates a new instance of ReleaseNotesUseCase
func NewReleaseNotes(githubClient interfaces.GitHubClient) interfaces.ReleaseNotesUseCase {
	return &releaseNotesUseCase{
		githubClient: githubClient,
	}
}

type enrichmentResult struct {
	prs     []model.PullRequest
	changed bool
}

// Generate runs the release-notes pipeline: boundary resolution, PR
// search, path filtering, concurrent sponsor enrichment and
// new-contributor detection, then sorting, categorization, and template
// substitution. Output ordering is deterministic regardless of network
// timing because sorting and categorization always run synchronously on
// completed data.
func (uc *releaseNotesUseCase) Generate(ctx context.Context, req *interfaces.GenerateRequest) (*model.ReleaseNotes, error) {
	logger := ctxlog.From(ctx)

	if req.Owner == "" || req.Repo == "" {
		return nil, goerr.New("owner and repo are required", goerr.Tag(types.ErrTagConfig))
	}
	cfg := req.Config
	if cfg == nil {
		cfg = model.DefaultConfig()
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	repository, err := uc.githubClient.GetRepository(ctx, req.Owner, req.Repo)
	if err != nil {
		return nil, err
	}
	target := req.Target
	if target == "" {
		target = repository.GetDefaultBranch()
	}

	boundary, err := ResolveBoundary(ctx, uc.githubClient, req.Owner, req.Repo, BoundaryHints{
		PreviousTag: req.PreviousTag,
		Target:      req.Target,
		Tag:         req.TagName,
	}, cfg)
	if err != nil {
		return nil, err
	}

	sponsorMode := req.SponsorMode
	if sponsorMode == "" {
		sponsorMode = model.SponsorModeAuto
	}
	sponsorMode = ResolveSponsorMode(sponsorMode, req.Extended, req.Token)

	params := SearchParams{
		Owner:         req.Owner,
		Repo:          req.Repo,
		BaseBranch:    cfg.BaseBranch,
		IncludeLabels: cfg.IncludeLabels,
		ExcludeLabels: cfg.ExcludeLabels,
		Fields: SearchFieldFlags{
			Body:     strings.Contains(cfg.ChangeTemplate, "$BODY"),
			BaseRef:  strings.Contains(cfg.ChangeTemplate, "$BASE_REF_NAME"),
			HeadRef:  strings.Contains(cfg.ChangeTemplate, "$HEAD_REF_NAME"),
			Sponsors: sponsorMode == model.SponsorModeGraphQL,
		},
	}
	if boundary != nil {
		params.Since = boundary.EffectiveDate()
	}
	// Re-drafting a tag that already has a published release closes the
	// window at that release, so later merges do not leak in. A missing
	// release just leaves the upper bound open.
	if req.TagName != "" {
		if rel, err := uc.githubClient.GetReleaseByTag(ctx, req.Owner, req.Repo, req.TagName); err == nil && !rel.GetDraft() {
			params.Until = boundaryFromRelease(rel).EffectiveDate()
		} else if err != nil {
			logger.Debug("Drafted tag has no existing release, window stays open",
				"tag", req.TagName, "error", err)
		}
	}

	prs, err := FetchMergedPullRequests(ctx, uc.githubClient, params)
	if err != nil {
		return nil, err
	}
	logger.Info("Fetched merged pull requests",
		"owner", req.Owner,
		"repo", req.Repo,
		"count", len(prs),
	)

	prs, err = FilterByChangedFiles(ctx, uc.githubClient, req.Owner, req.Repo, prs, cfg.IncludePaths)
	if err != nil {
		return nil, err
	}

	// Sponsor enrichment and new-contributor detection overlap with the
	// synchronous categorization below; both are joined before assembly.
	var enrichTask *async.Task[enrichmentResult]
	if sponsorMode == model.SponsorModeHTML {
		input := prs
		enrichTask = async.Run(ctx, func(ctx context.Context) (enrichmentResult, error) {
			enriched, changed, err := EnrichSponsorsHTML(ctx, uc.githubClient, input)
			return enrichmentResult{prs: enriched, changed: changed}, err
		})
	}

	var detectTask *async.Task[*model.ContributorReport]
	if boundary != nil && uc.shouldDetectNewContributors(req, cfg) {
		input := FindNewContributorsInput{
			Owner:           req.Owner,
			Repo:            req.Repo,
			PullRequests:    prs,
			PrevReleaseDate: boundary.EffectiveDate(),
		}
		detectTask = async.Run(ctx, func(ctx context.Context) (*model.ContributorReport, error) {
			return FindNewContributors(ctx, uc.githubClient, input)
		})
	}

	sorted := SortPullRequests(prs, cfg.SortBy, cfg.SortDirection)
	categorized := Categorize(sorted, cfg)
	contributors := ExtractContributors(sorted, cfg.ExcludeContributors)

	var enrichedAuthors map[string]model.Author
	if enrichTask != nil {
		enrichment, err := enrichTask.Wait(ctx)
		if err != nil {
			return nil, err
		}
		if enrichment.changed {
			// Author records changed, so everything derived from the PR
			// list is rebuilt from the enriched copy.
			sorted = SortPullRequests(enrichment.prs, cfg.SortBy, cfg.SortDirection)
			categorized = Categorize(sorted, cfg)
			contributors = ExtractContributors(sorted, cfg.ExcludeContributors)
			enrichedAuthors = make(map[string]model.Author, len(enrichment.prs))
			for _, pr := range enrichment.prs {
				enrichedAuthors[pr.Author.Login] = pr.Author
			}
		}
	}

	var report *model.ContributorReport
	if detectTask != nil {
		report, err = detectTask.Wait(ctx)
		if err != nil {
			return nil, err
		}
		// Detection ran against the pre-enrichment batch; carry sponsor
		// data over so new-contributor records match the contributor list
		for i := range report.NewContributors {
			if a, ok := enrichedAuthors[report.NewContributors[i].Login]; ok {
				report.NewContributors[i].Author = a
			}
		}
	}

	return uc.assemble(req, cfg, boundary, target, sorted, categorized, contributors, report)
}

// shouldDetectNewContributors decides whether the detection phase runs.
// An explicit extended-output request always wins; otherwise the active
// template is inspected for the placeholder.
func (uc *releaseNotesUseCase) shouldDetectNewContributors(req *interfaces.GenerateRequest, cfg *model.Config) bool {
	if req.Extended {
		return true
	}
	return strings.Contains(cfg.Template, "$NEW_CONTRIBUTORS")
}
