package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	metaOpen  = "<!--upkeep:meta"
	metaClose = "-->"

	// TemplateMarker separates the generated section of a PR body from the
	// repository's pull request template. Everything below the marker is
	// preserved when the body is rewritten on a later run.
	TemplateMarker = "<!-- upkeep:template -->"
)

// UpdateMeta is the machine-parseable block embedded in every PR body so
// downstream tooling can recover the update coordinates without relying on
// the PR title.
type UpdateMeta struct {
	Package string `json:"package"`
	Before  string `json:"before"`
	After   string `json:"after"`
	Drift   bool   `json:"drift,omitempty"`
}

// Encode renders the metadata as an HTML comment block safe to embed in
// markdown. Output is stable for equal inputs.
func (m UpdateMeta) Encode() string {
	data, _ := json.Marshal(m)
	return metaOpen + "\n" + string(data) + "\n" + metaClose
}

// ParseUpdateMeta extracts the metadata block from a PR body. Returns an
// error when no block is present or the payload does not decode.
func ParseUpdateMeta(body string) (UpdateMeta, error) {
	var meta UpdateMeta
	start := strings.Index(body, metaOpen)
	if start < 0 {
		return meta, fmt.Errorf("no metadata block in body")
	}
	rest := body[start+len(metaOpen):]
	end := strings.Index(rest, metaClose)
	if end < 0 {
		return meta, fmt.Errorf("unterminated metadata block")
	}
	payload := strings.TrimSpace(rest[:end])
	if err := json.Unmarshal([]byte(payload), &meta); err != nil {
		return meta, fmt.Errorf("invalid metadata payload: %w", err)
	}
	if meta.Package == "" {
		return meta, fmt.Errorf("metadata block missing package")
	}
	return meta, nil
}

// ComposeBody joins the generated section with the preserved template
// section below the marker.
func ComposeBody(generated, template string) string {
	generated = strings.TrimSpace(generated)
	template = strings.TrimSpace(template)
	if template == "" {
		return generated + "\n"
	}
	return generated + "\n\n" + TemplateMarker + "\n\n" + template + "\n"
}

// ExtractTemplate returns the preserved section of an existing PR body, or
// false when the body carries no marker.
func ExtractTemplate(body string) (string, bool) {
	_, after, found := strings.Cut(body, TemplateMarker)
	if !found {
		return "", false
	}
	return strings.TrimSpace(after), true
}
