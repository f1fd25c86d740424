package model

import "time"

// ReleaseBoundary is the previous published release that bounds the PR
// search window. A nil boundary means "no previous release": generation
// covers the whole history and new-contributor detection is skipped.
type ReleaseBoundary struct {
	TagName     string
	Name        string
	Body        string
	CreatedAt   time.Time
	PublishedAt time.Time
	Prerelease  bool
}

// EffectiveDate returns the cutoff timestamp for the boundary, preferring
// the publish time over the creation time.
func (b *ReleaseBoundary) EffectiveDate() time.Time {
	if !b.PublishedAt.IsZero() {
		return b.PublishedAt
	}
	return b.CreatedAt
}
