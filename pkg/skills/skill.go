// Package skills discovers skill directories under a root. A skill is a
// directory containing a SKILL.md file; its position in the tree
// (Category/Subcategory/skill or Category/skill) determines the categories
// used for classification.
package skills

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// FileName is the descriptive document every skill directory holds
const FileName = "SKILL.md"

// Skill is a discovered skill directory
type Skill struct {
	// Dir is the absolute or root-joined path of the skill directory.
	Dir string
	// RelPath is Dir relative to the discovery root, slash separated.
	RelPath string
}

// DirName is the base name of the skill directory
func (s *Skill) DirName() string {
	return filepath.Base(s.Dir)
}

// File is the path of the skill's SKILL.md
func (s *Skill) File() string {
	return filepath.Join(s.Dir, FileName)
}

// Path returns the path of a sibling file in the skill directory
func (s *Skill) Path(name string) string {
	return filepath.Join(s.Dir, name)
}

// Categories returns the top category and sub-category of the skill. The top
// category is the first path component. With three or more components the
// sub-category is the second one; otherwise it equals the top category.
func (s *Skill) Categories() (top, sub string, err error) {
	return Categories(s.RelPath)
}

// Categories derives the top category and sub-category from a slash
// separated path relative to the root
func Categories(relPath string) (top, sub string, err error) {
	relPath = strings.Trim(filepath.ToSlash(relPath), "/")
	if relPath == "" || relPath == "." {
		return "", "", errors.New("skill directory is the root directory and has no category")
	}

	parts := strings.Split(relPath, "/")
	top = parts[0]
	if len(parts) >= 3 {
		return top, parts[1], nil
	}
	return top, top, nil
}
