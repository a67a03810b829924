// Package digest renders the trending digest as Markdown with YAML frontmatter.
package digest

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

type Item struct {
	Title       string
	URL         string
	Board       string
	Description string
	Stars       int
	Created     string
}

type Data struct {
	Title      string
	Slug       string
	Datetime   string
	Summary    string
	Preface    string
	Postscript string
	Items      []Item
}

// Frontmatter is the YAML header of a digest file.
type Frontmatter struct {
	Title    string `yaml:"title"`
	Slug     string `yaml:"slug"`
	Datetime string `yaml:"datetime"`
	Summary  string `yaml:"summary,omitempty"`
}

//go:embed digest.tmpl
var digestTpl string

var compiled = template.Must(template.New("digest").Parse(digestTpl))

// Render returns the complete Markdown document for d.
func Render(d Data) (string, error) {
	fm, err := yaml.Marshal(Frontmatter{
		Title:    d.Title,
		Slug:     d.Slug,
		Datetime: d.Datetime,
		Summary:  strings.TrimSpace(d.Summary),
	})
	if err != nil {
		return "", fmt.Errorf("digest: encode frontmatter: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(fm)
	buf.WriteString("---\n\n")
	if err := compiled.Execute(&buf, d); err != nil {
		return "", fmt.Errorf("digest: render body: %w", err)
	}
	return buf.String(), nil
}
