package model

// CategorizedCategory is a configured category together with the PRs
// routed into it. A PR whose labels intersect several categories appears
// in each of them.
type CategorizedCategory struct {
	Title         string
	Labels        []string
	CollapseAfter int
	PullRequests  []PullRequest
}

// Categorized is the outcome of partitioning a sorted PR list.
type Categorized struct {
	Uncategorized []PullRequest
	Categories    []CategorizedCategory
}

// ContributorReport is the outcome of new-contributor detection.
type ContributorReport struct {
	NewContributors   []NewContributor
	TotalContributors int
	APICallsUsed      int
}

// ReleaseNotes is the structured generation result handed to callers
// alongside the rendered body.
type ReleaseNotes struct {
	Name          string
	TagName       string
	PreviousTag   string
	Target        string
	Body          string
	MajorVersion  string
	MinorVersion  string
	PatchVersion  string
	PullRequests  []PullRequest
	Uncategorized []PullRequest
	Categories    []CategorizedCategory
	Contributors  []Author
	// NewContributors is nil when detection was skipped (no previous
	// release boundary), as opposed to empty when none were found.
	NewContributors []NewContributor
	ChangelogLink   string
	APICallsUsed    int
}
