package model

import (
	"github.com/actionutils/gh-release-notes/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// SortBy selects the field used to order pull requests.
type SortBy string

const (
	SortByMergedAt SortBy = "merged_at"
	SortByTitle    SortBy = "title"
)

// SortDirection selects ascending or descending ordering.
type SortDirection string

const (
	SortAscending  SortDirection = "ascending"
	SortDescending SortDirection = "descending"
)

// SponsorMode selects how sponsorship data is attached to PR authors.
type SponsorMode string

const (
	SponsorModeNone    SponsorMode = "none"
	SponsorModeGraphQL SponsorMode = "graphql"
	SponsorModeHTML    SponsorMode = "html"
	SponsorModeAuto    SponsorMode = "auto"
)

// Category groups pull requests by label membership. A category with no
// labels catches every PR that no other category claims; at most one such
// category may exist.
type Category struct {
	Title         string   `yaml:"title"`
	Labels        []string `yaml:"labels,omitempty"`
	CollapseAfter int      `yaml:"collapse-after,omitempty"`
}

// IsCatchAll reports whether the category collects otherwise uncategorized PRs.
func (c *Category) IsCatchAll() bool {
	return len(c.Labels) == 0
}

// Config is the tool-native configuration shape.
type Config struct {
	Categories          []Category    `yaml:"categories,omitempty"`
	ExcludeLabels       []string      `yaml:"exclude-labels,omitempty"`
	IncludeLabels       []string      `yaml:"include-labels,omitempty"`
	ExcludeContributors []string      `yaml:"exclude-contributors,omitempty"`
	IncludePaths        []string      `yaml:"include-paths,omitempty"`
	BaseBranch          string        `yaml:"base-branch,omitempty"`
	SortBy              SortBy        `yaml:"sort-by,omitempty"`
	SortDirection       SortDirection `yaml:"sort-direction,omitempty"`
	Template            string        `yaml:"template,omitempty"`
	CategoryTemplate    string        `yaml:"category-template,omitempty"`
	ChangeTemplate      string        `yaml:"change-template,omitempty"`
	NoChangesTemplate   string        `yaml:"no-changes-template,omitempty"`
	TagPrefix           string        `yaml:"tag-prefix,omitempty"`
	IncludePreReleases  bool          `yaml:"include-pre-releases,omitempty"`
}

// Default templates matching the hosting platform's generated notes format.
const (
	DefaultTemplate          = "## What's Changed\n\n$CHANGES\n\n$NEW_CONTRIBUTORS\n\n$FULL_CHANGELOG_LINK\n"
	DefaultCategoryTemplate  = "### $TITLE"
	DefaultChangeTemplate    = "* $TITLE by @$AUTHOR in $URL"
	DefaultNoChangesTemplate = "* No changes"
)

// DefaultConfig returns a configuration with all template fields populated.
func DefaultConfig() *Config {
	return &Config{
		SortBy:            SortByMergedAt,
		SortDirection:     SortDescending,
		Template:          DefaultTemplate,
		CategoryTemplate:  DefaultCategoryTemplate,
		ChangeTemplate:    DefaultChangeTemplate,
		NoChangesTemplate: DefaultNoChangesTemplate,
	}
}

// ApplyDefaults fills zero-valued fields with their defaults.
func (c *Config) ApplyDefaults() {
	if c.SortBy == "" {
		c.SortBy = SortByMergedAt
	}
	if c.SortDirection == "" {
		c.SortDirection = SortDescending
	}
	if c.Template == "" {
		c.Template = DefaultTemplate
	}
	if c.CategoryTemplate == "" {
		c.CategoryTemplate = DefaultCategoryTemplate
	}
	if c.ChangeTemplate == "" {
		c.ChangeTemplate = DefaultChangeTemplate
	}
	if c.NoChangesTemplate == "" {
		c.NoChangesTemplate = DefaultNoChangesTemplate
	}
}

// Validate checks structural constraints on the configuration.
func (c *Config) Validate() error {
	catchAll := 0
	for _, cat := range c.Categories {
		if cat.Title == "" {
			return goerr.New("category title is required", goerr.Tag(types.ErrTagConfig))
		}
		if cat.IsCatchAll() {
			catchAll++
		}
	}
	if catchAll > 1 {
		return goerr.New("at most one category may have empty labels",
			goerr.V("count", catchAll), goerr.Tag(types.ErrTagConfig))
	}
	switch c.SortBy {
	case "", SortByMergedAt, SortByTitle:
	default:
		return goerr.New("invalid sort-by", goerr.V("sort_by", c.SortBy), goerr.Tag(types.ErrTagConfig))
	}
	switch c.SortDirection {
	case "", SortAscending, SortDescending:
	default:
		return goerr.New("invalid sort-direction",
			goerr.V("sort_direction", c.SortDirection), goerr.Tag(types.ErrTagConfig))
	}
	return nil
}

// PlatformConfig is the hosting platform's native release-notes
// configuration shape (the `.github/release.yml` format).
type PlatformConfig struct {
	Changelog struct {
		Exclude struct {
			Labels  []string `yaml:"labels"`
			Authors []string `yaml:"authors"`
		} `yaml:"exclude"`
		Categories []PlatformCategory `yaml:"categories"`
	} `yaml:"changelog"`
}

// PlatformCategory is one category entry of the platform-native shape.
type PlatformCategory struct {
	Title   string   `yaml:"title"`
	Labels  []string `yaml:"labels"`
	Exclude struct {
		Labels  []string `yaml:"labels"`
		Authors []string `yaml:"authors"`
	} `yaml:"exclude"`
}
