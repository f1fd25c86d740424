package usecase

import (
	"context"
	"strings"

	"github.com/m-mizutani/ctxlog"

	"github.com/actionutils/gh-release-notes/pkg/domain/interfaces"
	"github.com/actionutils/gh-release-notes/pkg/domain/model"
)

// More than this many failed page probes aborts the whole enrichment
// pass: a consistent unenriched dataset beats a partially enriched one,
// and it stops us hammering a rate-limited endpoint.
const sponsorProbeErrorThreshold = 5

// ResolveSponsorMode resolves the auto sponsor mode against the request
// context. Auto becomes none when extended output is not requested, html
// when the credential is an app/installation token (the platform rejects
// the sponsorsListing field for those), and graphql otherwise.
func ResolveSponsorMode(mode model.SponsorMode, extended bool, token string) model.SponsorMode {
	if mode != model.SponsorModeAuto {
		return mode
	}
	if !extended {
		return model.SponsorModeNone
	}
	if isAppToken(token) {
		return model.SponsorModeHTML
	}
	return model.SponsorModeGraphQL
}

// App installation tokens carry the ghs_ prefix by platform convention
func isAppToken(token string) bool {
	return strings.HasPrefix(token, "ghs_")
}

// EnrichSponsorsHTML annotates non-bot PR authors with a sponsorship URL
// by probing the public sponsors page per unique login. The returned
// bool reports whether any author record changed. Individual probe
// failures mean "no sponsor data" for that login; crossing the error
// threshold aborts the pass and returns the input unchanged.
func EnrichSponsorsHTML(ctx context.Context, client interfaces.GitHubClient, prs []model.PullRequest) ([]model.PullRequest, bool, error) {
	logger := ctxlog.From(ctx)

	sponsors := map[string]string{}
	seen := map[string]bool{}
	errored := 0
	for i := range prs {
		author := &prs[i].Author
		if author.Login == "" || author.IsBot() || seen[author.Login] {
			continue
		}
		seen[author.Login] = true

		exists, err := client.SponsorsPageExists(ctx, author.Login)
		if err != nil {
			logger.Debug("Sponsors page probe failed", "login", author.Login, "error", err)
			errored++
			if errored > sponsorProbeErrorThreshold {
				logger.Debug("Sponsor enrichment aborted, too many probe failures",
					"errors", errored)
				return prs, false, nil
			}
			continue
		}
		if exists {
			sponsors[author.Login] = "https://github.com/sponsors/" + author.Login
		}
	}

	if len(sponsors) == 0 {
		return prs, false, nil
	}

	enriched := make([]model.PullRequest, len(prs))
	copy(enriched, prs)
	changed := false
	for i := range enriched {
		url, ok := sponsors[enriched[i].Author.Login]
		if ok && enriched[i].Author.SponsorsURL != url {
			enriched[i].Author.SponsorsURL = url
			changed = true
		}
	}
	return enriched, changed, nil
}
