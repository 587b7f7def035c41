package skills

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gobwas/glob"
	"github.com/pkg/errors"
)

// DefaultInclude matches every SKILL.md below the root
var DefaultInclude = []string{"**/" + FileName}

// DefaultExclude skips VCS metadata and vendored dependencies
var DefaultExclude = []string{"**/.git/**", "**/node_modules/**"}

// Discovery finds skill directories under a root
type Discovery struct {
	root    string
	include []string
	exclude []string
	only    []glob.Glob
}

// Option is a function that configures a Discovery
type Option func(*Discovery) error

// WithInclude sets the doublestar patterns, relative to the root, that
// select SKILL.md files
func WithInclude(patterns ...string) Option {
	return func(d *Discovery) error {
		for _, p := range patterns {
			if !doublestar.ValidatePattern(p) {
				return errors.Errorf("invalid include pattern %q", p)
			}
		}
		if len(patterns) > 0 {
			d.include = patterns
		}
		return nil
	}
}

// WithExclude sets the doublestar patterns of SKILL.md paths to ignore
func WithExclude(patterns ...string) Option {
	return func(d *Discovery) error {
		for _, p := range patterns {
			if !doublestar.ValidatePattern(p) {
				return errors.Errorf("invalid exclude pattern %q", p)
			}
		}
		d.exclude = patterns
		return nil
	}
}

// WithNameFilter restricts discovery to skill directories whose name matches
// at least one glob pattern. An empty list disables the filter.
func WithNameFilter(patterns ...string) Option {
	return func(d *Discovery) error {
		d.only = d.only[:0]
		for _, p := range patterns {
			g, err := glob.Compile(p)
			if err != nil {
				return errors.Wrapf(err, "invalid skill name pattern %q", p)
			}
			d.only = append(d.only, g)
		}
		return nil
	}
}

// NewDiscovery creates a discovery rooted at root
func NewDiscovery(root string, opts ...Option) (*Discovery, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to access skills root %s", root)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("skills root %s is not a directory", root)
	}

	d := &Discovery{
		root:    root,
		include: DefaultInclude,
		exclude: DefaultExclude,
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Root returns the discovery root
func (d *Discovery) Root() string {
	return d.root
}

// Discover returns all matching skills sorted by relative path
func (d *Discovery) Discover() ([]*Skill, error) {
	fsys := os.DirFS(d.root)
	seen := make(map[string]bool)
	var found []*Skill

	for _, pattern := range d.include {
		err := doublestar.GlobWalk(fsys, pattern, func(p string, entry fs.DirEntry) error {
			if entry.IsDir() || entry.Name() != FileName {
				return nil
			}
			if d.excluded(p) {
				return nil
			}

			rel := path.Dir(p)
			if seen[rel] {
				return nil
			}
			seen[rel] = true

			skill := &Skill{
				Dir:     filepath.Join(d.root, filepath.FromSlash(rel)),
				RelPath: rel,
			}
			if !d.selected(skill.DirName()) {
				return nil
			}
			found = append(found, skill)
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to scan %s for %s", d.root, pattern)
		}
	}

	sort.Slice(found, func(i, j int) bool {
		return lessPath(found[i].RelPath, found[j].RelPath)
	})
	return found, nil
}

// lessPath orders slash separated paths component by component, so that
// "a/b" sorts before "a-c" even though '-' < '/'.
func lessPath(a, b string) bool {
	pa, pb := strings.Split(a, "/"), strings.Split(b, "/")
	for i := 0; i < len(pa) && i < len(pb); i++ {
		if pa[i] != pb[i] {
			return pa[i] < pb[i]
		}
	}
	return len(pa) < len(pb)
}

// Lookup builds the Skill for a directory inside the root, applying the
// same exclude and name filters as Discover. It reports false when the
// directory is filtered out or holds no SKILL.md.
func (d *Discovery) Lookup(dir string) (*Skill, bool) {
	rel, err := filepath.Rel(d.root, dir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, false
	}
	rel = filepath.ToSlash(rel)

	if d.excluded(path.Join(rel, FileName)) {
		return nil, false
	}
	if _, err := os.Stat(filepath.Join(dir, FileName)); err != nil {
		return nil, false
	}

	skill := &Skill{Dir: filepath.Join(d.root, filepath.FromSlash(rel)), RelPath: rel}
	if !d.selected(skill.DirName()) {
		return nil, false
	}
	return skill, true
}

func (d *Discovery) excluded(p string) bool {
	for _, pattern := range d.exclude {
		if ok, _ := doublestar.Match(pattern, p); ok {
			return true
		}
	}
	return false
}

func (d *Discovery) selected(name string) bool {
	if len(d.only) == 0 {
		return true
	}
	for _, g := range d.only {
		if g.Match(name) {
			return true
		}
	}
	return false
}
