package usecase

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/actionutils/gh-release-notes/pkg/domain/interfaces"
	"github.com/actionutils/gh-release-notes/pkg/domain/model"
)

// assemble substitutes the pipeline output into the active template and
// builds the structured result.
func (uc *releaseNotesUseCase) assemble(req *interfaces.GenerateRequest, cfg *model.Config, boundary *model.ReleaseBoundary, target string, prs []model.PullRequest, categorized model.Categorized, contributors []model.Author, report *model.ContributorReport) (*model.ReleaseNotes, error) {
	previousTag := ""
	if boundary != nil {
		previousTag = boundary.TagName
	}
	nextRef := req.TagName
	if nextRef == "" {
		nextRef = target
	}
	link := ChangelogLink(req.Owner, req.Repo, previousTag, nextRef)

	body := cfg.Template
	body = strings.ReplaceAll(body, "$CHANGES", renderChanges(categorized, cfg))
	body = strings.ReplaceAll(body, "$CONTRIBUTORS", renderContributors(contributors))
	body = substituteNewContributors(body, report)
	body = substituteChangelogLink(body, link)

	notes := &model.ReleaseNotes{
		Name:          req.TagName,
		TagName:       req.TagName,
		PreviousTag:   previousTag,
		Target:        target,
		Body:          body,
		PullRequests:  prs,
		Uncategorized: categorized.Uncategorized,
		Categories:    categorized.Categories,
		Contributors:  contributors,
		ChangelogLink: link,
	}
	notes.MajorVersion, notes.MinorVersion, notes.PatchVersion = versionParts(req.TagName)
	if report != nil {
		// Distinguish "ran, found none" from "skipped"
		if report.NewContributors == nil {
			notes.NewContributors = []model.NewContributor{}
		} else {
			notes.NewContributors = report.NewContributors
		}
		notes.APICallsUsed = report.APICallsUsed
	}
	return notes, nil
}

// renderChanges renders the categorized PR list: uncategorized PRs
// first, then each configured category that has PRs, headed by the
// category template. Categories with a collapse-after count larger than
// zero and more PRs than that count render inside a collapsed details
// block.
func renderChanges(categorized model.Categorized, cfg *model.Config) string {
	total := len(categorized.Uncategorized)
	for _, cat := range categorized.Categories {
		total += len(cat.PullRequests)
	}
	if total == 0 {
		return cfg.NoChangesTemplate
	}

	var sections []string
	if len(categorized.Uncategorized) > 0 {
		sections = append(sections, renderChangeList(categorized.Uncategorized, cfg.ChangeTemplate))
	}
	for _, cat := range categorized.Categories {
		if len(cat.PullRequests) == 0 {
			continue
		}
		header := strings.ReplaceAll(cfg.CategoryTemplate, "$TITLE", cat.Title)
		list := renderChangeList(cat.PullRequests, cfg.ChangeTemplate)
		if cat.CollapseAfter > 0 && len(cat.PullRequests) > cat.CollapseAfter {
			list = fmt.Sprintf("<details>\n<summary>%d changes</summary>\n\n%s\n</details>",
				len(cat.PullRequests), list)
		}
		sections = append(sections, header+"\n\n"+list)
	}
	return strings.Join(sections, "\n\n")
}

func renderChangeList(prs []model.PullRequest, changeTemplate string) string {
	lines := make([]string, 0, len(prs))
	for i := range prs {
		lines = append(lines, renderChange(&prs[i], changeTemplate))
	}
	return strings.Join(lines, "\n")
}

func renderChange(pr *model.PullRequest, changeTemplate string) string {
	r := strings.NewReplacer(
		"$TITLE", pr.Title,
		"$AUTHOR", pr.Author.Login,
		"$URL", pr.URL,
		"$BODY", pr.Body,
		"$BASE_REF_NAME", pr.BaseRefName,
		"$HEAD_REF_NAME", pr.HeadRefName,
		"$NUMBER", strconv.Itoa(pr.Number),
	)
	return r.Replace(changeTemplate)
}

// renderContributors formats the contributor list as "@a, @b and @c"
func renderContributors(contributors []model.Author) string {
	handles := make([]string, 0, len(contributors))
	for _, c := range contributors {
		handles = append(handles, "@"+c.Login)
	}
	switch len(handles) {
	case 0:
		return ""
	case 1:
		return handles[0]
	default:
		return strings.Join(handles[:len(handles)-1], ", ") + " and " + handles[len(handles)-1]
	}
}

// substituteNewContributors replaces the new-contributors placeholder
// with the rendered section, or removes it together with one preceding
// blank line when the section is empty or detection was skipped.
func substituteNewContributors(body string, report *model.ContributorReport) string {
	const placeholder = "$NEW_CONTRIBUTORS"
	if !strings.Contains(body, placeholder) {
		return body
	}
	if report == nil || len(report.NewContributors) == 0 {
		body = strings.ReplaceAll(body, "\n\n"+placeholder, "")
		return strings.ReplaceAll(body, placeholder, "")
	}

	var b strings.Builder
	b.WriteString("## New Contributors\n")
	for _, nc := range report.NewContributors {
		b.WriteString(fmt.Sprintf("* @%s made their first contribution", nc.Login))
		if nc.FirstPullRequest != nil {
			b.WriteString(" in " + nc.FirstPullRequest.URL)
		}
		b.WriteString("\n")
	}
	return strings.ReplaceAll(body, placeholder, strings.TrimRight(b.String(), "\n"))
}

// substituteChangelogLink handles both the current and the bracketed
// legacy placeholder form.
func substituteChangelogLink(body, link string) string {
	body = strings.ReplaceAll(body, "[$FULL_CHANGELOG_LINK]", link)
	return strings.ReplaceAll(body, "$FULL_CHANGELOG_LINK", link)
}

// ChangelogLink builds a comparison link between the previous and next
// tags, or a commits-up-to-ref link when no previous tag exists.
func ChangelogLink(owner, repo, previousTag, nextRef string) string {
	if previousTag != "" {
		return fmt.Sprintf("**Full Changelog**: https://github.com/%s/%s/compare/%s...%s",
			owner, repo, previousTag, nextRef)
	}
	return fmt.Sprintf("**Full Changelog**: https://github.com/%s/%s/commits/%s",
		owner, repo, nextRef)
}

// versionParts splits a semver-ish tag into its numeric components.
// Non-numeric or missing components come back empty.
func versionParts(tag string) (major, minor, patch string) {
	v := strings.TrimPrefix(tag, "v")
	if v == "" {
		return "", "", ""
	}
	parts := strings.SplitN(v, ".", 3)
	out := make([]string, 3)
	for i, p := range parts {
		if i >= 3 || p == "" {
			continue
		}
		// Strip prerelease/build suffixes from the last component
		if idx := strings.IndexAny(p, "-+"); idx >= 0 {
			p = p[:idx]
		}
		if _, err := strconv.Atoi(p); err == nil {
			out[i] = p
		}
	}
	return out[0], out[1], out[2]
}
