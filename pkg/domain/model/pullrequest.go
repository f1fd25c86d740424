package model

import (
	"strings"
	"time"
)

// AuthorType distinguishes human accounts from bot accounts. The value
// comes from the GraphQL __typename of the author object.
type AuthorType string

const (
	AuthorTypeUser AuthorType = "User"
	AuthorTypeBot  AuthorType = "Bot"
)

// Author represents the account that opened a pull request.
type Author struct {
	Login       string
	Type        AuthorType
	URL         string
	AvatarURL   string
	SponsorsURL string // Empty when the account has no public sponsors listing
}

// IsBot reports whether the author is a bot account. Besides the typed
// field, common bot login conventions are checked because the search API
// occasionally reports automation accounts as plain users.
func (a *Author) IsBot() bool {
	if a.Type == AuthorTypeBot {
		return true
	}
	login := strings.ToLower(a.Login)
	return strings.HasSuffix(login, "[bot]")
}

// PullRequest is a merged pull request as returned by the search
// pipeline. Number is the sole join key across categorization,
// contributor extraction, and template data.
type PullRequest struct {
	Number      int
	Title       string
	MergedAt    time.Time
	URL         string
	Body        string
	BaseRefName string
	HeadRefName string
	Additions   int
	Deletions   int
	Labels      []string
	Author      Author
}

// HasLabel reports whether the PR carries the given label. GitHub label
// matching is case-insensitive.
func (p *PullRequest) HasLabel(name string) bool {
	for _, l := range p.Labels {
		if strings.EqualFold(l, name) {
			return true
		}
	}
	return false
}

// HasAnyLabel reports whether the PR carries at least one of the given labels.
func (p *PullRequest) HasAnyLabel(names []string) bool {
	for _, n := range names {
		if p.HasLabel(n) {
			return true
		}
	}
	return false
}

// NewContributor is a contributor whose first merged PR in the repository
// falls inside the current release window.
type NewContributor struct {
	Author
	FirstPullRequest *PullRequest
}
