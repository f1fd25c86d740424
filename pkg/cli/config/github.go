package config

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/actionutils/gh-release-notes/pkg/domain/interfaces"
	"github.com/actionutils/gh-release-notes/pkg/domain/types"
	githubinfra "github.com/actionutils/gh-release-notes/pkg/infra/github"
)

// GitHub holds GitHub authentication configuration. Either a token or
// the App triple (app ID, installation ID, private key) must be set.
type GitHub struct {
	Token             string
	AppID             int64
	AppInstallationID int64
	AppPrivateKey     string // Path to the PEM file
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "GitHub token (PAT or installation token)",
			Destination: &c.Token,
			Sources:     cli.EnvVars("GITHUB_TOKEN", "GH_TOKEN"),
		},
		&cli.Int64Flag{
			Name:        "github-app-id",
			Usage:       "GitHub App ID",
			Destination: &c.AppID,
			Sources:     cli.EnvVars("GH_RELEASE_NOTES_APP_ID"),
		},
		&cli.Int64Flag{
			Name:        "github-app-installation-id",
			Usage:       "GitHub App installation ID",
			Destination: &c.AppInstallationID,
			Sources:     cli.EnvVars("GH_RELEASE_NOTES_APP_INSTALLATION_ID"),
		},
		&cli.StringFlag{
			Name:        "github-app-private-key",
			Usage:       "Path to the GitHub App private key PEM file",
			Destination: &c.AppPrivateKey,
			Sources:     cli.EnvVars("GH_RELEASE_NOTES_APP_PRIVATE_KEY"),
		},
	}
}

// Client builds a GitHub client from the configured credential. Runs
// before any network call so a missing credential fails fast.
func (c *GitHub) Client(ctx context.Context) (interfaces.GitHubClient, error) {
	if c.AppID != 0 || c.AppInstallationID != 0 || c.AppPrivateKey != "" {
		if c.AppID == 0 || c.AppInstallationID == 0 || c.AppPrivateKey == "" {
			return nil, goerr.New("GitHub App auth requires app ID, installation ID, and private key",
				goerr.Tag(types.ErrTagAuth))
		}
		key, err := os.ReadFile(c.AppPrivateKey)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read App private key",
				goerr.V("path", c.AppPrivateKey), goerr.Tag(types.ErrTagAuth))
		}
		return githubinfra.NewAppClient(c.AppID, c.AppInstallationID, key)
	}

	return githubinfra.NewClient(ctx, c.Token)
}
