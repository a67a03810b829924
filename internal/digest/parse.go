package digest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is a parsed digest file.
type Document struct {
	Frontmatter Frontmatter
	Body        string
}

// ParseFile reads a digest written by Render.
func ParseFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse splits r into its YAML frontmatter, delimited by "---" lines at the
// top, and the Markdown body.
func Parse(r io.Reader) (Document, error) {
	br := bufio.NewReader(r)
	first, err := br.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return Document{}, err
	}
	if strings.TrimSpace(first) != "---" {
		rest, err := io.ReadAll(br)
		if err != nil {
			return Document{}, err
		}
		return Document{Body: first + string(rest)}, nil
	}

	var fm strings.Builder
	for {
		l, err := br.ReadString('\n')
		if strings.TrimSpace(l) == "---" {
			break
		}
		fm.WriteString(l)
		if errors.Is(err, io.EOF) {
			return Document{}, errors.New("digest: unterminated frontmatter")
		}
		if err != nil {
			return Document{}, err
		}
	}
	body, err := io.ReadAll(br)
	if err != nil {
		return Document{}, err
	}

	var d Document
	if err := yaml.Unmarshal([]byte(fm.String()), &d.Frontmatter); err != nil {
		return Document{}, fmt.Errorf("digest: decode frontmatter: %w", err)
	}
	d.Body = strings.TrimLeft(string(body), "\n")
	return d, nil
}
