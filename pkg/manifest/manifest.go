// Package manifest builds the openclaw metadata blob embedded in SKILL.md
// headers and the standalone claw.json manifest.
package manifest

import (
	"bytes"
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"

	"github.com/datadrivenconstruction/skillmig/pkg/classify"
)

// FileName is the manifest written next to SKILL.md
const FileName = "claw.json"

// Defaults reproduce the constants of the openclaw 2.0 format
const (
	DefaultHomepage           = "https://datadrivenconstruction.io"
	DefaultAuthor             = "datadrivenconstruction"
	DefaultLicense            = "MIT"
	DefaultVersion            = "2.0.0"
	DefaultEntry              = "instructions.md"
	DefaultMinOpenClawVersion = "0.8.0"
)

// DefaultModels is the model allow-list written to every manifest
var DefaultModels = []string{"claude-*", "gpt-*"}

// Settings are the fixed values stamped into every manifest
type Settings struct {
	Author             string
	License            string
	Version            string
	Entry              string
	Models             []string
	MinOpenClawVersion string
}

// DefaultSettings returns the settings of the openclaw 2.0 format
func DefaultSettings() Settings {
	return Settings{
		Author:             DefaultAuthor,
		License:            DefaultLicense,
		Version:            DefaultVersion,
		Entry:              DefaultEntry,
		Models:             append([]string(nil), DefaultModels...),
		MinOpenClawVersion: DefaultMinOpenClawVersion,
	}
}

// Manifest is the content of claw.json
type Manifest struct {
	Name               string   `json:"name" jsonschema:"description=Skill name"`
	Version            string   `json:"version"`
	Description        string   `json:"description"`
	Author             string   `json:"author"`
	License            string   `json:"license"`
	Permissions        []string `json:"permissions" jsonschema:"description=filesystem is always present; network when the skill calls remote services"`
	Entry              string   `json:"entry" jsonschema:"description=Instruction document loaded by the host"`
	Tags               []string `json:"tags" jsonschema:"maxItems=5"`
	Models             []string `json:"models"`
	MinOpenClawVersion string   `json:"minOpenClawVersion"`
}

// Build assembles the manifest of a skill
func Build(id classify.Identity, permissions, tags []string, s Settings) Manifest {
	return Manifest{
		Name:               id.Name,
		Version:            s.Version,
		Description:        id.Description,
		Author:             s.Author,
		License:            s.License,
		Permissions:        nonNil(permissions),
		Entry:              s.Entry,
		Tags:               nonNil(tags),
		Models:             nonNil(s.Models),
		MinOpenClawVersion: s.MinOpenClawVersion,
	}
}

// Encode renders the manifest as two-space indented JSON without HTML
// escaping and without a trailing newline. Non-ASCII text is written
// literally, U+2028 and U+2029 included.
func (m Manifest) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return nil, errors.Wrap(err, "failed to encode manifest")
	}
	return unescapeLineSeparators(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// unescapeLineSeparators turns the \u2028 and \u2029 escapes that
// encoding/json always emits back into the characters themselves. Escaped
// backslashes are skipped as a pair so `\\u2028` stays untouched.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] != '\\' || i+1 >= len(data) {
			out = append(out, data[i])
			continue
		}
		if rest := data[i+1:]; bytes.HasPrefix(rest, []byte("u2028")) || bytes.HasPrefix(rest, []byte("u2029")) {
			if rest[4] == '8' {
				out = append(out, "\u2028"...)
			} else {
				out = append(out, "\u2029"...)
			}
			i += 5
			continue
		}
		out = append(out, data[i], data[i+1])
		i++
	}
	return out
}

// Decode parses a claw.json document
func Decode(data []byte) (Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return m, errors.Wrap(err, "failed to decode manifest")
	}
	if m.Name == "" {
		return m, errors.New("manifest name is required")
	}
	if m.Entry == "" {
		return m, errors.New("manifest entry is required")
	}
	return m, nil
}

// Schema returns the JSON schema of claw.json
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		DoNotReference: true,
	}
	s := r.Reflect(&Manifest{})
	s.Title = "claw.json"
	s.Description = "OpenClaw skill manifest"
	return s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
