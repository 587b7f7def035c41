// Package classify derives categorical skill metadata from keyword tables.
//
// Classification is a pure function of a skill's Identity and the tables it
// was constructed with: it never fails and never touches the filesystem. An
// absent signal always yields the conservative default (all platforms, no
// extra requirements, filesystem-only permission, the base tag alone).
package classify

import (
	"strings"

	"github.com/datadrivenconstruction/skillmig/pkg/keywords"
)

// Platform identifiers, in output order
const (
	OSDarwin = "darwin"
	OSLinux  = "linux"
	OSWin32  = "win32"
)

// Permission identifiers
const (
	PermissionFilesystem = "filesystem"
	PermissionNetwork    = "network"
)

// Identity is the immutable input of classification
type Identity struct {
	Name        string
	TopCategory string
	SubCategory string
	// RawText is the complete SKILL.md content, header included.
	RawText     string
	Description string
}

// Requirements lists what a host must provide to run a skill
type Requirements struct {
	// Bins must all be present.
	Bins []string
	// AnyBins are alternatives: at least one should be present.
	AnyBins    []string
	Env        []string
	PrimaryEnv string
}

// DerivedMetadata is recomputed from an Identity on every run
type DerivedMetadata struct {
	Emoji        string
	OS           []string
	Requirements Requirements
	Permissions  []string
	Tags         []string
}

// Classifier evaluates the keyword tables against skill identities
type Classifier struct {
	tables *keywords.Tables
}

// New creates a classifier over the given tables. The tables must not be
// modified afterwards.
func New(tables *keywords.Tables) *Classifier {
	return &Classifier{tables: tables}
}

// Classify computes the derived metadata for a skill
func (c *Classifier) Classify(id Identity) DerivedMetadata {
	return DerivedMetadata{
		Emoji:        c.Emoji(id),
		OS:           c.OS(id.RawText),
		Requirements: c.Requirements(id.RawText),
		Permissions:  c.Permissions(id.RawText),
		Tags:         c.Tags(id),
	}
}

// Emoji picks the skill emoji. Sub-category beats top category, and both
// beat the name keyword groups.
func (c *Classifier) Emoji(id Identity) string {
	if e, ok := c.tables.CategoryEmoji[id.SubCategory]; ok {
		return e
	}
	if e, ok := c.tables.CategoryEmoji[id.TopCategory]; ok {
		return e
	}
	if e, ok := c.tables.NameEmoji.First(id.Name); ok {
		return e
	}
	return c.tables.DefaultEmoji
}

// OS returns [win32] when any Windows-only marker appears in text, and every
// platform otherwise.
func (c *Classifier) OS(text string) []string {
	if keywords.ContainsAny(text, c.tables.WindowsOnly) {
		return []string{OSWin32}
	}
	return []string{OSDarwin, OSLinux, OSWin32}
}

// Requirements collects binary and environment requirements. Every rule is
// checked independently; the first matching env rule becomes PrimaryEnv.
func (c *Classifier) Requirements(text string) Requirements {
	req := Requirements{
		Bins:    c.tables.RequiredBins.All(text),
		AnyBins: c.tables.OptionalBins.All(text),
		Env:     c.tables.Env.All(text),
	}
	if len(req.Env) > 0 {
		req.PrimaryEnv = req.Env[0]
	}
	return req
}

// Permissions always grants filesystem access and adds network access when a
// networking marker is present.
func (c *Classifier) Permissions(text string) []string {
	perms := []string{PermissionFilesystem}
	if keywords.ContainsAny(text, c.tables.Network) {
		perms = append(perms, PermissionNetwork)
	}
	return perms
}

// Tags returns the base tag followed by every matching topical tag, capped
// at the table's TagLimit. Matching is case-insensitive over name,
// description and sub-category.
func (c *Classifier) Tags(id Identity) []string {
	combined := strings.ToLower(id.Name + " " + id.Description + " " + id.SubCategory)

	tags := append([]string{c.tables.BaseTag}, c.tables.Tags.All(combined)...)
	if len(tags) > c.tables.TagLimit {
		tags = tags[:c.tables.TagLimit]
	}
	return tags
}
