// Package keywords holds the static keyword tables that drive skill
// classification and instruction synthesis. Tables are loaded once, either
// from the embedded defaults or from a user supplied YAML file, and are
// read-only afterwards so they can be shared between concurrent workers.
package keywords

import (
	"bytes"
	_ "embed"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var defaultTables []byte

// Rule maps a set of keywords to a result. A rule matches when any of its
// keywords occurs as a substring of the inspected text.
type Rule struct {
	Result   string   `yaml:"result"`
	Keywords []string `yaml:"keywords"`
}

// Matches reports whether any keyword of the rule occurs in text
func (r Rule) Matches(text string) bool {
	return ContainsAny(text, r.Keywords)
}

// Rules is an ordered rule list. Order is significant: it decides precedence
// for first-match lookups and output order for collect-all lookups.
type Rules []Rule

// First returns the result of the first rule matching text
func (rs Rules) First(text string) (string, bool) {
	for _, r := range rs {
		if r.Matches(text) {
			return r.Result, true
		}
	}
	return "", false
}

// All returns the results of every rule matching text, in declared order
func (rs Rules) All(text string) []string {
	var out []string
	for _, r := range rs {
		if r.Matches(text) {
			out = append(out, r.Result)
		}
	}
	return out
}

// Tables is the full set of classification tables.
type Tables struct {
	// CategoryEmoji maps a top- or sub-category folder name to an emoji.
	CategoryEmoji map[string]string `yaml:"category_emoji"`
	// NameEmoji is consulted against the skill name when no category matches.
	NameEmoji    Rules  `yaml:"name_emoji"`
	DefaultEmoji string `yaml:"default_emoji"`

	// WindowsOnly markers restrict a skill to win32 when present in its text.
	WindowsOnly []string `yaml:"windows_only"`
	// Network markers add the network permission.
	Network []string `yaml:"network"`

	RequiredBins Rules `yaml:"required_bins"`
	OptionalBins Rules `yaml:"optional_bins"`
	Env          Rules `yaml:"env"`

	BaseTag string `yaml:"base_tag"`
	// TagLimit caps the tag list, base tag included. Tags past the cap are
	// dropped in declaration order.
	TagLimit int   `yaml:"tag_limit"`
	Tags     Rules `yaml:"tags"`

	Actions       Rules  `yaml:"actions"`
	DefaultAction string `yaml:"default_action"`
	Domains       Rules  `yaml:"domains"`
	DefaultDomain string `yaml:"default_domain"`
}

// Default returns the embedded default tables
func Default() (*Tables, error) {
	return Parse(defaultTables)
}

// MustDefault is like Default but panics if the embedded tables are invalid
func MustDefault() *Tables {
	t, err := Default()
	if err != nil {
		panic(err)
	}
	return t
}

// Load reads tables from path, or returns the defaults when path is empty
func Load(path string) (*Tables, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read keyword tables from %s", path)
	}

	t, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid keyword tables in %s", path)
	}
	return t, nil
}

// Parse decodes and validates a YAML tables document
func Parse(data []byte) (*Tables, error) {
	var t Tables
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return nil, errors.Wrap(err, "failed to decode keyword tables")
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks the fields every lookup relies on
func (t *Tables) Validate() error {
	if t.DefaultEmoji == "" {
		return errors.New("default_emoji must be set")
	}
	if t.BaseTag == "" {
		return errors.New("base_tag must be set")
	}
	if t.TagLimit < 1 {
		return errors.Errorf("tag_limit must be at least 1, got %d", t.TagLimit)
	}
	if t.DefaultAction == "" {
		return errors.New("default_action must be set")
	}
	if t.DefaultDomain == "" {
		return errors.New("default_domain must be set")
	}

	for name, rules := range map[string]Rules{
		"name_emoji":    t.NameEmoji,
		"required_bins": t.RequiredBins,
		"optional_bins": t.OptionalBins,
		"env":           t.Env,
		"tags":          t.Tags,
		"actions":       t.Actions,
		"domains":       t.Domains,
	} {
		for i, r := range rules {
			if r.Result == "" {
				return errors.Errorf("%s[%d]: result must be set", name, i)
			}
			if len(r.Keywords) == 0 {
				return errors.Errorf("%s[%d] (%s): at least one keyword is required", name, i, r.Result)
			}
		}
	}

	seen := make(map[string]bool, len(t.Tags))
	for _, r := range t.Tags {
		if r.Result == t.BaseTag || seen[r.Result] {
			return errors.Errorf("tags: duplicate tag %q", r.Result)
		}
		seen[r.Result] = true
	}

	return nil
}

// Marshal renders the tables back to YAML
func (t *Tables) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(t); err != nil {
		return nil, errors.Wrap(err, "failed to encode keyword tables")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to encode keyword tables")
	}
	return buf.Bytes(), nil
}

// ContainsAny reports whether any of the keywords is a substring of text
func ContainsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
