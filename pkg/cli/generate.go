package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/actionutils/gh-release-notes/pkg/cli/config"
	"github.com/actionutils/gh-release-notes/pkg/domain/interfaces"
	"github.com/actionutils/gh-release-notes/pkg/domain/model"
	"github.com/actionutils/gh-release-notes/pkg/domain/types"
	"github.com/actionutils/gh-release-notes/pkg/infra/loader"
	"github.com/actionutils/gh-release-notes/pkg/infra/template"
	"github.com/actionutils/gh-release-notes/pkg/usecase"
)

func cmdGenerate() *cli.Command {
	var (
		githubCfg config.GitHub
		outputCfg config.Output

		repoSlug      string
		tagName       string
		target        string
		previousTag   string
		configLocator string
		tmplLocator   string
		formatLocator string
		sponsorMode   string
		extended      bool
	)

	flags := append(githubCfg.Flags(), outputCfg.Flags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:        "repo",
			Aliases:     []string{"R"},
			Usage:       "Target repository as owner/name",
			Required:    true,
			Destination: &repoSlug,
			Sources:     cli.EnvVars("GH_RELEASE_NOTES_REPO"),
		},
		&cli.StringFlag{
			Name:        "tag",
			Usage:       "Tag for the release being drafted",
			Destination: &tagName,
		},
		&cli.StringFlag{
			Name:        "target",
			Usage:       "Target commitish (defaults to the default branch)",
			Destination: &target,
		},
		&cli.StringFlag{
			Name:        "previous-tag",
			Usage:       "Explicit previous release tag bounding the PR search",
			Destination: &previousTag,
		},
		&cli.StringFlag{
			Name:        "config",
			Usage:       "Configuration locator (local path or HTTPS URL, optional #sha256= qualifier)",
			Destination: &configLocator,
			Sources:     cli.EnvVars("GH_RELEASE_NOTES_CONFIG"),
		},
		&cli.StringFlag{
			Name:        "template",
			Usage:       "Template locator overriding the configured template",
			Destination: &tmplLocator,
		},
		&cli.StringFlag{
			Name:        "format-template",
			Usage:       "Go template locator rendering the structured result instead of the notes body",
			Destination: &formatLocator,
		},
		&cli.StringFlag{
			Name:        "sponsors",
			Usage:       "Sponsor enrichment mode (none, graphql, html, auto)",
			Value:       string(model.SponsorModeAuto),
			Destination: &sponsorMode,
		},
		&cli.BoolFlag{
			Name:        "extended",
			Usage:       "Request enrichment-dependent extended output",
			Destination: &extended,
		},
	)

	return &cli.Command{
		Name:    "generate",
		Aliases: []string{"g"},
		Usage:   "Generate release notes for a repository",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			owner, repo, err := splitRepoSlug(repoSlug)
			if err != nil {
				return err
			}

			client, err := githubCfg.Client(ctx)
			if err != nil {
				return err
			}

			contentLoader := loader.New()
			cfg, err := loadConfig(ctx, contentLoader, configLocator)
			if err != nil {
				return err
			}
			if tmplLocator != "" {
				tmpl, err := contentLoader.Load(ctx, tmplLocator)
				if err != nil {
					return err
				}
				cfg.Template = tmpl
			}

			uc := usecase.NewReleaseNotes(client)
			notes, err := uc.Generate(ctx, &interfaces.GenerateRequest{
				Owner:       owner,
				Repo:        repo,
				TagName:     tagName,
				Target:      target,
				PreviousTag: previousTag,
				Config:      cfg,
				SponsorMode: model.SponsorMode(sponsorMode),
				Extended:    extended,
				Token:       githubCfg.Token,
			})
			if err != nil {
				return err
			}

			logger.Info("Generated release notes",
				"owner", owner,
				"repo", repo,
				"pull_requests", len(notes.PullRequests),
				"contributors", len(notes.Contributors),
			)

			rendered := ""
			if formatLocator != "" {
				rendered, err = formatResult(ctx, contentLoader, formatLocator, notes)
				if err != nil {
					return err
				}
			}

			return writeResult(notes, rendered, &outputCfg)
		},
	}
}

func splitRepoSlug(slug string) (owner, repo string, err error) {
	parts := strings.Split(slug, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", goerr.New("repository must be owner/name",
			goerr.V("repo", slug), goerr.Tag(types.ErrTagConfig))
	}
	return parts[0], parts[1], nil
}

func loadConfig(ctx context.Context, contentLoader interfaces.ContentLoader, locator string) (*model.Config, error) {
	logger := ctxlog.From(ctx)

	if locator == "" {
		return model.DefaultConfig(), nil
	}
	content, err := contentLoader.Load(ctx, locator)
	if err != nil {
		return nil, err
	}
	cfg, warnings, err := usecase.ParseConfig([]byte(content))
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		logger.Warn("Lossy configuration conversion", "detail", w)
	}
	return cfg, nil
}

// formatResult renders the structured result through a user-supplied Go
// template resolved from a locator.
func formatResult(ctx context.Context, contentLoader interfaces.ContentLoader, locator string, notes *model.ReleaseNotes) (string, error) {
	src, err := contentLoader.Load(ctx, locator)
	if err != nil {
		return "", err
	}
	engine := template.New()
	if err := engine.AddTemplate("output", src); err != nil {
		return "", err
	}
	return engine.Render("output", notes)
}

func writeResult(notes *model.ReleaseNotes, rendered string, outputCfg *config.Output) error {
	var out string
	switch {
	case rendered != "":
		out = rendered
		if !strings.HasSuffix(out, "\n") {
			out += "\n"
		}
	case outputCfg.JSON:
		data, err := json.MarshalIndent(notes, "", "  ")
		if err != nil {
			return goerr.Wrap(err, "failed to marshal result")
		}
		out = string(data) + "\n"
	default:
		out = notes.Body
		if !strings.HasSuffix(out, "\n") {
			out += "\n"
		}
	}

	if outputCfg.Path == "" || outputCfg.Path == "-" {
		_, err := fmt.Fprint(os.Stdout, out)
		return err
	}
	if err := os.WriteFile(outputCfg.Path, []byte(out), 0644); err != nil {
		return goerr.Wrap(err, "failed to write output", goerr.V("path", outputCfg.Path))
	}
	return nil
}
