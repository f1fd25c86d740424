package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/actionutils/gh-release-notes/pkg/domain/interfaces"
	"github.com/actionutils/gh-release-notes/pkg/domain/model"
)

const searchPageSize = 100

// SearchFieldFlags controls conditional field selection in the PR search
// so payloads stay small when the active change template does not need
// them.
type SearchFieldFlags struct {
	Body     bool
	BaseRef  bool
	HeadRef  bool
	Sponsors bool // Request sponsorsListing on User authors (graphql sponsor mode)
}

// SearchParams describes one merged-PR search.
type SearchParams struct {
	Owner         string
	Repo          string
	Since         time.Time // Zero means open lower bound
	Until         time.Time // Zero means open upper bound
	BaseBranch    string
	IncludeLabels []string
	ExcludeLabels []string
	Fields        SearchFieldFlags
}

// BuildSearchQuery encodes the search as a single conjunctive query
// string. The merged-date range is always one `merged:lower..upper` term
// because separate comparisons have ambiguous AND semantics in the
// search syntax. Exclude labels become individual negated terms; include
// labels become one comma-separated OR group.
func BuildSearchQuery(p SearchParams) string {
	terms := []string{
		fmt.Sprintf("repo:%s/%s", p.Owner, p.Repo),
		"is:pr",
		"is:merged",
	}
	if p.BaseBranch != "" {
		terms = append(terms, "base:"+p.BaseBranch)
	}
	if !p.Since.IsZero() || !p.Until.IsZero() {
		lower, upper := "*", "*"
		if !p.Since.IsZero() {
			lower = p.Since.UTC().Format(time.RFC3339)
		}
		if !p.Until.IsZero() {
			upper = p.Until.UTC().Format(time.RFC3339)
		}
		terms = append(terms, fmt.Sprintf("merged:%s..%s", lower, upper))
	}
	for _, label := range p.ExcludeLabels {
		terms = append(terms, fmt.Sprintf("-label:%q", label))
	}
	if len(p.IncludeLabels) > 0 {
		quoted := make([]string, 0, len(p.IncludeLabels))
		for _, label := range p.IncludeLabels {
			quoted = append(quoted, fmt.Sprintf("%q", label))
		}
		terms = append(terms, "label:"+strings.Join(quoted, ","))
	}
	return strings.Join(terms, " ")
}

// buildSearchSelection assembles the GraphQL document with conditional
// PR and author fields.
func buildSearchSelection(flags SearchFieldFlags) string {
	var prFields strings.Builder
	if flags.Body {
		prFields.WriteString("\n\t\t\t\t\tbody")
	}
	if flags.BaseRef {
		prFields.WriteString("\n\t\t\t\t\tbaseRefName")
	}
	if flags.HeadRef {
		prFields.WriteString("\n\t\t\t\t\theadRefName")
	}

	authorFields := ""
	if flags.Sponsors {
		authorFields = "\n\t\t\t\t\t\t... on User { sponsorsListing { url } }"
	}

	return fmt.Sprintf(`
	query($searchQuery: String!, $cursor: String) {
		search(query: $searchQuery, type: ISSUE, first: %d, after: $cursor) {
			pageInfo {
				hasNextPage
				endCursor
			}
			nodes {
				... on PullRequest {
					number
					title
					url
					mergedAt
					additions
					deletions%s
					labels(first: 100) {
						nodes { name }
					}
					author {
						login
						url
						avatarUrl
						__typename%s
					}
				}
			}
		}
	}`, searchPageSize, prFields.String(), authorFields)
}

// searchNode mirrors the PR node selection. Fields absent from the
// selection decode to their zero values.
type searchNode struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	MergedAt  time.Time `json:"mergedAt"`
	Body      string    `json:"body"`
	BaseRef   string    `json:"baseRefName"`
	HeadRef   string    `json:"headRefName"`
	Additions int       `json:"additions"`
	Deletions int       `json:"deletions"`
	Labels    struct {
		Nodes []struct {
			Name string `json:"name"`
		} `json:"nodes"`
	} `json:"labels"`
	Author struct {
		Login           string `json:"login"`
		URL             string `json:"url"`
		AvatarURL       string `json:"avatarUrl"`
		TypeName        string `json:"__typename"`
		SponsorsListing struct {
			URL string `json:"url"`
		} `json:"sponsorsListing"`
	} `json:"author"`
}

// FetchMergedPullRequests pages through every merged PR matching the
// params and normalizes the raw nodes into the canonical record.
func FetchMergedPullRequests(ctx context.Context, client interfaces.GitHubClient, p SearchParams) ([]model.PullRequest, error) {
	logger := ctxlog.From(ctx)

	searchQuery := BuildSearchQuery(p)
	document := buildSearchSelection(p.Fields)
	logger.Debug("Searching merged pull requests", "query", searchQuery)

	var prs []model.PullRequest
	var cursor *string
	for page := 1; ; page++ {
		variables := map[string]any{"searchQuery": searchQuery}
		if cursor != nil {
			variables["cursor"] = *cursor
		}

		var result struct {
			Search struct {
				PageInfo struct {
					HasNextPage bool   `json:"hasNextPage"`
					EndCursor   string `json:"endCursor"`
				} `json:"pageInfo"`
				Nodes []searchNode `json:"nodes"`
			} `json:"search"`
		}
		if err := client.GraphQL(ctx, document, variables, &result); err != nil {
			return nil, goerr.Wrap(err, "pull request search failed",
				goerr.V("query", searchQuery), goerr.V("page", page))
		}

		for _, node := range result.Search.Nodes {
			if node.Number == 0 {
				// Non-PR node slipped through the type filter
				continue
			}
			prs = append(prs, normalizeSearchNode(node))
		}

		logger.Debug("Fetched search page",
			"page", page,
			"nodes", len(result.Search.Nodes),
			"total", len(prs),
		)

		if !result.Search.PageInfo.HasNextPage {
			return prs, nil
		}
		end := result.Search.PageInfo.EndCursor
		cursor = &end
	}
}

// normalizeSearchNode reshapes a raw search node into the canonical PR
// record: __typename becomes the author type, label nodes flatten into
// an ordered name list.
func normalizeSearchNode(node searchNode) model.PullRequest {
	labels := make([]string, 0, len(node.Labels.Nodes))
	for _, l := range node.Labels.Nodes {
		labels = append(labels, l.Name)
	}

	return model.PullRequest{
		Number:      node.Number,
		Title:       node.Title,
		MergedAt:    node.MergedAt,
		URL:         node.URL,
		Body:        node.Body,
		BaseRefName: node.BaseRef,
		HeadRefName: node.HeadRef,
		Additions:   node.Additions,
		Deletions:   node.Deletions,
		Labels:      labels,
		Author: model.Author{
			Login:       node.Author.Login,
			Type:        model.AuthorType(node.Author.TypeName),
			URL:         node.Author.URL,
			AvatarURL:   node.Author.AvatarURL,
			SponsorsURL: node.Author.SponsorsListing.URL,
		},
	}
}
