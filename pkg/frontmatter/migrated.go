package frontmatter

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
)

// OpenClaw is the metadata record read back from a migrated header
type OpenClaw struct {
	Emoji      string
	OS         []string
	Homepage   string
	PrimaryEnv string
	Requires   map[string][]string
}

// Document is a migrated SKILL.md read through a YAML-aware parser
type Document struct {
	Name        string
	Description string
	Homepage    string
	OpenClaw    OpenClaw
}

// ReadMigrated parses a migrated SKILL.md as YAML frontmatter. Unlike Parse
// it is strict: the rewritten header must be valid YAML, which catches
// descriptions whose embedded quotes broke the generated header.
func ReadMigrated(content []byte) (*Document, error) {
	md := goldmark.New(
		goldmark.WithExtensions(meta.Meta),
	)

	var buf bytes.Buffer
	pctx := parser.NewContext()
	if err := md.Convert(content, &buf, parser.WithContext(pctx)); err != nil {
		return nil, errors.Wrap(err, "failed to parse markdown")
	}

	metaData, err := meta.TryGet(pctx)
	if err != nil {
		return nil, errors.Wrap(err, "invalid frontmatter")
	}
	if metaData == nil {
		return nil, errors.New("missing frontmatter")
	}

	doc := &Document{}
	doc.Name, _ = metaData["name"].(string)
	doc.Description, _ = metaData["description"].(string)
	doc.Homepage, _ = metaData[HomepageKey].(string)

	if doc.Name == "" {
		return nil, errors.New("name is required in frontmatter")
	}
	if doc.Homepage == "" {
		return nil, errors.New("homepage is required in frontmatter")
	}

	md2, ok := toStringMap(metaData["metadata"])
	if !ok {
		return nil, errors.New("metadata is missing or not a mapping")
	}
	oc, ok := toStringMap(md2["openclaw"])
	if !ok {
		return nil, errors.New("metadata.openclaw is missing or not a mapping")
	}

	doc.OpenClaw.Emoji, _ = oc["emoji"].(string)
	doc.OpenClaw.Homepage, _ = oc["homepage"].(string)
	doc.OpenClaw.PrimaryEnv, _ = oc["primaryEnv"].(string)
	doc.OpenClaw.OS = toStrings(oc["os"])
	if doc.OpenClaw.Emoji == "" {
		return nil, errors.New("metadata.openclaw.emoji is required")
	}
	if len(doc.OpenClaw.OS) == 0 {
		return nil, errors.New("metadata.openclaw.os is required")
	}

	doc.OpenClaw.Requires = map[string][]string{}
	if req, ok := toStringMap(oc["requires"]); ok {
		for k, v := range req {
			doc.OpenClaw.Requires[k] = toStrings(v)
		}
	}

	return doc, nil
}

// toStringMap normalizes the two map shapes the YAML decoder produces
func toStringMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	}
	return nil, false
}

func toStrings(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
