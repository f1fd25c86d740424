package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/actionutils/gh-release-notes/pkg/domain/interfaces"
	"github.com/actionutils/gh-release-notes/pkg/domain/model"
)

// Logins per batched existence query
const contributorBatchSize = 10

// FindNewContributorsInput describes one detection run. PrevReleaseDate
// must be set; callers skip detection entirely when no boundary exists,
// since "new" is undefined without a cutoff.
type FindNewContributorsInput struct {
	Owner           string
	Repo            string
	PullRequests    []model.PullRequest
	PrevReleaseDate time.Time
}

// FindNewContributors classifies the batch's contributors as first-time
// or returning. A login is new iff it has zero merged PRs in the
// repository strictly before the boundary date; existence checks are
// batched as aliased search sub-queries, ten logins per request.
func FindNewContributors(ctx context.Context, client interfaces.GitHubClient, in FindNewContributorsInput) (*model.ContributorReport, error) {
	logger := ctxlog.From(ctx)

	if in.PrevReleaseDate.IsZero() {
		return nil, goerr.New("new-contributor detection requires a boundary date")
	}

	type loginEntry struct {
		author model.Author
		first  *model.PullRequest
	}
	order := make([]string, 0)
	entries := map[string]*loginEntry{}
	for i := range in.PullRequests {
		pr := &in.PullRequests[i]
		login := pr.Author.Login
		if login == "" {
			continue
		}
		entry, ok := entries[login]
		if !ok {
			entry = &loginEntry{author: pr.Author}
			entries[login] = entry
			order = append(order, login)
		}
		if entry.first == nil || pr.MergedAt.Before(entry.first.MergedAt) {
			entry.first = pr
		}
	}

	report := &model.ContributorReport{
		TotalContributors: len(order),
		APICallsUsed:      ceilDiv(len(in.PullRequests), 50),
	}

	var newContributors []model.NewContributor
	for start := 0; start < len(order); start += contributorBatchSize {
		end := min(start+contributorBatchSize, len(order))
		batch := order[start:end]

		query := buildExistenceQuery(in.Owner, in.Repo, batch, func(login string) model.AuthorType {
			return entries[login].author.Type
		}, in.PrevReleaseDate)
		result := map[string]struct {
			IssueCount int `json:"issueCount"`
		}{}
		if err := client.GraphQL(ctx, query, nil, &result); err != nil {
			return nil, goerr.Wrap(err, "contributor existence query failed",
				goerr.V("batch_start", start))
		}
		report.APICallsUsed++

		for _, login := range batch {
			count, ok := result[loginAlias(login)]
			if !ok {
				logger.Debug("Existence result missing for login", "login", login)
				continue
			}
			if count.IssueCount == 0 {
				newContributors = append(newContributors, model.NewContributor{
					Author:           entries[login].author,
					FirstPullRequest: entries[login].first,
				})
			}
		}
	}

	sort.Slice(newContributors, func(i, j int) bool {
		return newContributors[i].Login < newContributors[j].Login
	})
	report.NewContributors = newContributors

	logger.Debug("New-contributor detection completed",
		"total", report.TotalContributors,
		"new", len(newContributors),
		"api_calls", report.APICallsUsed,
	)
	return report, nil
}

// buildExistenceQuery aliases one prior-PR search per login into a single
// document. Each sub-query only needs the match count.
func buildExistenceQuery(owner, repo string, logins []string, typeOf func(string) model.AuthorType, before time.Time) string {
	var b strings.Builder
	b.WriteString("query {\n")
	for _, login := range logins {
		author := login
		if typeOf(login) == model.AuthorTypeBot && !strings.HasSuffix(login, "[bot]") {
			author += "[bot]"
		}
		searchQuery := fmt.Sprintf("repo:%s/%s type:pr is:merged author:%s merged:<%s",
			owner, repo, author, before.UTC().Format(time.RFC3339))
		fmt.Fprintf(&b, "\t%s: search(query: %q, type: ISSUE, first: 1) { issueCount }\n",
			loginAlias(login), searchQuery)
	}
	b.WriteString("}")
	return b.String()
}

// loginAlias derives a GraphQL alias from a login. Aliases cannot start
// with a digit, so such logins get a "u_" prefix; any character outside
// [A-Za-z0-9] becomes an underscore. GitHub logins never contain
// underscores, so sanitized aliases stay collision-free.
func loginAlias(login string) string {
	var b strings.Builder
	if login != "" && login[0] >= '0' && login[0] <= '9' {
		b.WriteString("u_")
	}
	for _, r := range login {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func ceilDiv(n, d int) int {
	return (n + d - 1) / d
}
