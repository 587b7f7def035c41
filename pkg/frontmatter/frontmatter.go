// Package frontmatter reads and writes the header block at the top of a
// SKILL.md file.
//
// The header is a flat list of `key: value` lines between two `---`
// delimiter lines. It is deliberately not parsed as YAML: unmigrated headers
// routinely contain unquoted colons and stray quotes that a YAML parser
// rejects, and every such file must still be migrated.
package frontmatter

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// HomepageKey marks a header that has already been migrated
const HomepageKey = "homepage"

var headerPattern = regexp.MustCompile(`(?s)^---\s*\n(.*?)\n---\s*\n`)

// Header is a parsed header block
type Header struct {
	fields map[string]string
	keys   []string
}

// Get returns the value of key and whether it was present
func (h *Header) Get(key string) (string, bool) {
	v, ok := h.fields[key]
	return v, ok
}

// Has reports whether key is present
func (h *Header) Has(key string) bool {
	_, ok := h.fields[key]
	return ok
}

// Keys returns the header keys in first-seen order
func (h *Header) Keys() []string {
	return append([]string(nil), h.keys...)
}

// Len returns the number of distinct keys
func (h *Header) Len() int {
	return len(h.fields)
}

// Parse splits content into its header and body. It returns a nil header
// and the unchanged content when no header block is present or when the
// block holds no `key: value` lines.
func Parse(content string) (*Header, string) {
	loc := headerPattern.FindStringSubmatchIndex(content)
	if loc == nil {
		return nil, content
	}

	h := &Header{fields: make(map[string]string)}
	for _, line := range strings.Split(content[loc[2]:loc[3]], "\n") {
		line = strings.TrimSpace(line)
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.Trim(strings.TrimSpace(value), `"`), "'")
		if _, seen := h.fields[key]; !seen {
			h.keys = append(h.keys, key)
		}
		// later lines override earlier ones
		h.fields[key] = value
	}

	if len(h.fields) == 0 {
		return nil, content
	}
	return h, content[loc[1]:]
}

// Migrated holds the fields of a rewritten header
type Migrated struct {
	Name        string
	Description string
	Homepage    string
	// Metadata is the single-line serialized metadata record.
	Metadata string
}

// Render produces the rewritten file: the five-field header followed by the
// original body unchanged.
func Render(m Migrated, body string) (string, error) {
	if strings.ContainsAny(m.Metadata, "\r\n") {
		return "", errors.New("metadata must be a single line")
	}

	lines := []string{
		"---",
		`name: "` + m.Name + `"`,
		`description: "` + m.Description + `"`,
		HomepageKey + `: "` + m.Homepage + `"`,
		"metadata: " + m.Metadata,
		"---",
	}
	return strings.Join(lines, "\n") + "\n" + body, nil
}
