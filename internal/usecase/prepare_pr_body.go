package usecase

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/botnk/upkeep/internal/domain"
)

const (
	// maxDiffLines caps the inline diff excerpt so PR bodies stay
	// readable for large updates.
	maxDiffLines = 400
)

// PreparePRBodyUseCase renders the generated section of a PR body: the
// human summary, the provenance link, the diff excerpt, and the
// machine-parseable metadata block.
type PreparePRBodyUseCase struct{}

type prBodyData struct {
	Package string
	Before  string
	After   string
	Drift   bool
	RunURL  string
	Diff    string
	Meta    string
}

const prBodyTemplate = `Upgrades {{.Package}} from {{.Before}} to {{.After}}.

This PR was automatically generated by upkeep.
{{- if .Drift}}

> **Note**: the package definition changed but the evaluated version did not.
> This is usually a cosmetic update (e.g. a hash format migration); review the
> diff before merging.
{{- end}}
{{- if .RunURL}}

- [Workflow run]({{.RunURL}}) that created this PR.
{{- end}}
{{- if .Diff}}

<details>
<summary>Diff</summary>

` + "```diff\n{{.Diff}}\n```" + `

</details>
{{- end}}

{{.Meta}}
`

// Execute renders the generated body section for an update outcome.
func (uc *PreparePRBodyUseCase) Execute(
	_ context.Context,
	target domain.PackageTarget,
	outcome domain.UpdateOutcome,
	runURL string,
) (string, error) {
	if outcome.Kind != domain.OutcomeUpdated {
		return "", fmt.Errorf("cannot prepare body for %s outcome", outcome.Kind)
	}
	meta := domain.UpdateMeta{
		Package: target.Name,
		Before:  outcome.Versions.Before,
		After:   outcome.Versions.After,
		Drift:   outcome.Drift,
	}
	data := prBodyData{
		Package: target.Name,
		Before:  outcome.Versions.Before,
		After:   outcome.Versions.After,
		Drift:   outcome.Drift,
		RunURL:  runURL,
		Diff:    diffExcerpt(outcome.Diff),
		Meta:    meta.Encode(),
	}
	tmpl, err := template.New("pr-body").Parse(prBodyTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse PR body template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute PR body template: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// diffExcerpt truncates a diff to maxDiffLines, noting the omission.
func diffExcerpt(diff string) string {
	diff = strings.TrimRight(diff, "\n")
	if diff == "" {
		return ""
	}
	lines := strings.Split(diff, "\n")
	if len(lines) <= maxDiffLines {
		return diff
	}
	omitted := len(lines) - maxDiffLines
	lines = lines[:maxDiffLines]
	return strings.Join(lines, "\n") + fmt.Sprintf("\n... (%d lines omitted)", omitted)
}
