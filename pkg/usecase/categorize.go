package usecase

import (
	"sort"
	"strings"

	"github.com/actionutils/gh-release-notes/pkg/domain/model"
)

// SortPullRequests orders a copy of prs by merge time (default) or title,
// ascending or descending. The sort is stable: ties keep input order.
func SortPullRequests(prs []model.PullRequest, sortBy model.SortBy, direction model.SortDirection) []model.PullRequest {
	sorted := make([]model.PullRequest, len(prs))
	copy(sorted, prs)

	less := func(a, b model.PullRequest) bool {
		if sortBy == model.SortByTitle {
			return a.Title < b.Title
		}
		return a.MergedAt.Before(b.MergedAt)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if direction == model.SortAscending {
			return less(sorted[i], sorted[j])
		}
		return less(sorted[j], sorted[i])
	})
	return sorted
}

// ApplyExcludeLabels drops every PR carrying at least one excluded label.
// The filter is idempotent.
func ApplyExcludeLabels(prs []model.PullRequest, exclude []string) []model.PullRequest {
	if len(exclude) == 0 {
		return prs
	}
	out := make([]model.PullRequest, 0, len(prs))
	for _, pr := range prs {
		if !pr.HasAnyLabel(exclude) {
			out = append(out, pr)
		}
	}
	return out
}

// ApplyIncludeLabels keeps only PRs carrying at least one included label.
// An empty include list keeps everything.
func ApplyIncludeLabels(prs []model.PullRequest, include []string) []model.PullRequest {
	if len(include) == 0 {
		return prs
	}
	out := make([]model.PullRequest, 0, len(prs))
	for _, pr := range prs {
		if pr.HasAnyLabel(include) {
			out = append(out, pr)
		}
	}
	return out
}

// Categorize partitions PRs into the configured categories after applying
// the global label filters. A PR with no label intersecting any category
// goes to the catch-all category when one exists, else to the
// uncategorized bucket. Other PRs are replicated into every category
// whose label set intersects theirs. Category order follows configuration
// order; PR order within a category follows the input order.
func Categorize(prs []model.PullRequest, cfg *model.Config) model.Categorized {
	filtered := ApplyIncludeLabels(ApplyExcludeLabels(prs, cfg.ExcludeLabels), cfg.IncludeLabels)

	result := model.Categorized{
		Categories: make([]model.CategorizedCategory, len(cfg.Categories)),
	}
	catchAll := -1
	allLabels := map[string]bool{}
	for i, cat := range cfg.Categories {
		result.Categories[i] = model.CategorizedCategory{
			Title:         cat.Title,
			Labels:        cat.Labels,
			CollapseAfter: cat.CollapseAfter,
		}
		if cat.IsCatchAll() {
			catchAll = i
		}
		for _, label := range cat.Labels {
			allLabels[strings.ToLower(label)] = true
		}
	}

	for _, pr := range filtered {
		if !hasAnyOfSet(&pr, allLabels) {
			if catchAll >= 0 {
				result.Categories[catchAll].PullRequests = append(result.Categories[catchAll].PullRequests, pr)
			} else {
				result.Uncategorized = append(result.Uncategorized, pr)
			}
			continue
		}
		for i, cat := range cfg.Categories {
			if !cat.IsCatchAll() && pr.HasAnyLabel(cat.Labels) {
				result.Categories[i].PullRequests = append(result.Categories[i].PullRequests, pr)
			}
		}
	}
	return result
}

func hasAnyOfSet(pr *model.PullRequest, labels map[string]bool) bool {
	for _, l := range pr.Labels {
		if labels[strings.ToLower(l)] {
			return true
		}
	}
	return false
}

// ExtractContributors returns the first-seen author per unique login in
// PR iteration order, minus any login in the exclude list.
func ExtractContributors(prs []model.PullRequest, exclude []string) []model.Author {
	excluded := make(map[string]bool, len(exclude))
	for _, login := range exclude {
		excluded[strings.ToLower(login)] = true
	}

	seen := map[string]bool{}
	var contributors []model.Author
	for _, pr := range prs {
		login := strings.ToLower(pr.Author.Login)
		if login == "" || seen[login] || excluded[login] {
			continue
		}
		seen[login] = true
		contributors = append(contributors, pr.Author)
	}
	return contributors
}
