package interfaces

import (
	"context"

	"github.com/actionutils/gh-release-notes/pkg/domain/model"
)

// GenerateRequest carries all inputs for one release-notes generation run.
type GenerateRequest struct {
	Owner       string
	Repo        string
	TagName     string // Tag for the release being drafted
	Target      string // Target commitish, defaults to the default branch
	PreviousTag string // Explicit previous release tag, optional
	Config      *model.Config
	SponsorMode model.SponsorMode
	Extended    bool   // Extended (enrichment-dependent) output requested
	Token       string // Used only for auto sponsor mode resolution
}

// ReleaseNotesUseCase defines the release-notes generation pipeline
type ReleaseNotesUseCase interface {
	// Generate runs the full pipeline and returns the structured result
	// with the rendered body.
	Generate(ctx context.Context, req *GenerateRequest) (*model.ReleaseNotes, error)
}
