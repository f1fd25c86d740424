package usecase

import (
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"

	"github.com/actionutils/gh-release-notes/pkg/domain/model"
	"github.com/actionutils/gh-release-notes/pkg/domain/types"
)

// ParseConfig parses raw YAML/JSON configuration content, detecting
// whether it follows the platform-native release-notes schema or the
// tool-native schema, and normalizes to the tool-native representation.
// Lossy conversions are reported as warnings, never applied silently.
func ParseConfig(data []byte) (*model.Config, []string, error) {
	var probe map[string]any
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, nil, goerr.Wrap(err, "malformed configuration", goerr.Tag(types.ErrTagConfig))
	}

	if _, ok := probe["changelog"]; ok {
		var pc model.PlatformConfig
		if err := yaml.Unmarshal(data, &pc); err != nil {
			return nil, nil, goerr.Wrap(err, "malformed platform-native configuration", goerr.Tag(types.ErrTagConfig))
		}
		cfg, warnings := ConvertPlatformConfig(&pc)
		cfg.ApplyDefaults()
		if err := cfg.Validate(); err != nil {
			return nil, warnings, err
		}
		return cfg, warnings, nil
	}

	var cfg model.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, nil, goerr.Wrap(err, "malformed configuration", goerr.Tag(types.ErrTagConfig))
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return &cfg, nil, nil
}

// ConvertPlatformConfig converts the platform-native shape to the
// tool-native one. A wildcard label set (["*"]) becomes an absent label
// set, which marks the catch-all category. Per-category exclude rules
// have no tool-native equivalent and are flattened into the global
// exclude lists, which is only exact for the catch-all case; each such
// flattening produces a warning.
func ConvertPlatformConfig(pc *model.PlatformConfig) (*model.Config, []string) {
	cfg := &model.Config{
		ExcludeLabels:       append([]string(nil), pc.Changelog.Exclude.Labels...),
		ExcludeContributors: append([]string(nil), pc.Changelog.Exclude.Authors...),
	}

	var warnings []string
	for _, pcat := range pc.Changelog.Categories {
		cat := model.Category{Title: pcat.Title}
		if !isWildcard(pcat.Labels) {
			cat.Labels = append([]string(nil), pcat.Labels...)
		}

		if len(pcat.Exclude.Labels) > 0 {
			cfg.ExcludeLabels = append(cfg.ExcludeLabels, pcat.Exclude.Labels...)
			warnings = append(warnings, fmt.Sprintf(
				"category %q: per-category label excludes are flattened to global exclude-labels", pcat.Title))
		}
		if len(pcat.Exclude.Authors) > 0 {
			cfg.ExcludeContributors = append(cfg.ExcludeContributors, pcat.Exclude.Authors...)
			warnings = append(warnings, fmt.Sprintf(
				"category %q: per-category author excludes are flattened to global exclude-contributors", pcat.Title))
		}

		cfg.Categories = append(cfg.Categories, cat)
	}

	return cfg, warnings
}

func isWildcard(labels []string) bool {
	return len(labels) == 1 && labels[0] == "*"
}
