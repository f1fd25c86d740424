package config

import "github.com/urfave/cli/v3"

// Output holds result output configuration
type Output struct {
	Path string
	JSON bool
}

// Flags returns CLI flags for output configuration
func (c *Output) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Write the rendered notes to this path instead of stdout",
			Destination: &c.Path,
			Sources:     cli.EnvVars("GH_RELEASE_NOTES_OUTPUT"),
		},
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "Emit the structured result as JSON instead of the rendered body",
			Destination: &c.JSON,
			Sources:     cli.EnvVars("GH_RELEASE_NOTES_JSON"),
		},
	}
}
