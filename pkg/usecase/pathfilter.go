package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/actionutils/gh-release-notes/pkg/domain/interfaces"
	"github.com/actionutils/gh-release-notes/pkg/domain/model"
)

const (
	// Up to this many PRs share one batched changed-files query
	pathFilterBatchSize = 20
	// File paths requested per PR per round
	pathFilterPageSize = 100
	// Hard cap on query rounds so a pathological repository cannot spin
	// the loop forever
	maxPathFilterRounds = 100
)

// FilterByChangedFiles retains only PRs that touched at least one file
// under any of the include-path prefixes; renamed files match on either
// side of the rename. Different PRs may need a
// different number of file pages, so each pending PR carries its own
// cursor; rounds of batched aliased queries run until every PR is either
// retained or exhausted. Output order follows the input order, not
// discovery order. No-op when includePaths is empty.
func FilterByChangedFiles(ctx context.Context, client interfaces.GitHubClient, owner, repo string, prs []model.PullRequest, includePaths []string) ([]model.PullRequest, error) {
	if len(includePaths) == 0 {
		return prs, nil
	}
	logger := ctxlog.From(ctx)

	// Pending cursors keyed by PR number; nil means first page
	pending := make(map[int]*string, len(prs))
	order := make([]int, 0, len(prs))
	for _, pr := range prs {
		pending[pr.Number] = nil
		order = append(order, pr.Number)
	}
	retained := make(map[int]bool, len(prs))

	for round := 0; len(pending) > 0; round++ {
		if round >= maxPathFilterRounds {
			return nil, goerr.New("path filter exceeded round cap",
				goerr.V("rounds", round), goerr.V("pending", len(pending)))
		}

		batch := make([]int, 0, pathFilterBatchSize)
		for _, number := range order {
			if _, ok := pending[number]; !ok {
				continue
			}
			batch = append(batch, number)
			if len(batch) == pathFilterBatchSize {
				break
			}
		}

		query := buildChangedFilesQuery(owner, repo, batch, pending)
		result := map[string]struct {
			PullRequest struct {
				Files struct {
					PageInfo struct {
						HasNextPage bool   `json:"hasNextPage"`
						EndCursor   string `json:"endCursor"`
					} `json:"pageInfo"`
					Nodes []struct {
						Path         string `json:"path"`
						PreviousPath string `json:"previousFilePath"`
					} `json:"nodes"`
				} `json:"files"`
			} `json:"pullRequest"`
		}{}
		if err := client.GraphQL(ctx, query, nil, &result); err != nil {
			return nil, goerr.Wrap(err, "changed-files query failed", goerr.V("round", round))
		}

		for _, number := range batch {
			node, ok := result[prAlias(number)]
			if !ok {
				// PR vanished between search and filter; drop it
				delete(pending, number)
				continue
			}

			files := node.PullRequest.Files
			matched := false
			for _, f := range files.Nodes {
				// The pre-rename path counts too, so a file moved out of
				// a watched prefix still marks the PR
				if matchesAnyPrefix(f.Path, includePaths) ||
					(f.PreviousPath != "" && matchesAnyPrefix(f.PreviousPath, includePaths)) {
					matched = true
					break
				}
			}

			switch {
			case matched:
				retained[number] = true
				delete(pending, number)
			case files.PageInfo.HasNextPage:
				cursor := files.PageInfo.EndCursor
				pending[number] = &cursor
			default:
				delete(pending, number)
			}
		}

		logger.Debug("Path filter round completed",
			"round", round, "batch", len(batch), "pending", len(pending))
	}

	out := make([]model.PullRequest, 0, len(retained))
	for _, pr := range prs {
		if retained[pr.Number] {
			out = append(out, pr)
		}
	}
	return out, nil
}

// buildChangedFilesQuery aliases one files sub-query per PR, each with
// its own cursor, into a single document.
func buildChangedFilesQuery(owner, repo string, batch []int, cursors map[int]*string) string {
	var b strings.Builder
	b.WriteString("query {\n")
	for _, number := range batch {
		after := "null"
		if cursor := cursors[number]; cursor != nil {
			after = fmt.Sprintf("%q", *cursor)
		}
		fmt.Fprintf(&b, `	%s: repository(owner: %q, name: %q) {
		pullRequest(number: %d) {
			files(first: %d, after: %s) {
				pageInfo { hasNextPage endCursor }
				nodes { path previousFilePath }
			}
		}
	}
`, prAlias(number), owner, repo, number, pathFilterPageSize, after)
	}
	b.WriteString("}")
	return b.String()
}

func prAlias(number int) string {
	return fmt.Sprintf("pr_%d", number)
}

func matchesAnyPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
