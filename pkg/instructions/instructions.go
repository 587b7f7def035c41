// Package instructions renders the instructions.md companion document of a
// skill from its name and description.
package instructions

import (
	"bytes"
	_ "embed"
	"strings"
	"text/template"

	"github.com/pkg/errors"

	"github.com/datadrivenconstruction/skillmig/pkg/classify"
	"github.com/datadrivenconstruction/skillmig/pkg/keywords"
)

// FileName is the instruction document written next to SKILL.md
const FileName = "instructions.md"

//go:embed instructions.md.tmpl
var defaultTemplate string

// Data is the template input
type Data struct {
	Name        string
	Description string
	Action      string
	Domain      string
	Meta        classify.DerivedMetadata
}

// Synthesizer selects action and domain phrases and renders the template
type Synthesizer struct {
	tables *keywords.Tables
	tmpl   *template.Template
}

// New creates a synthesizer using the embedded template
func New(tables *keywords.Tables) (*Synthesizer, error) {
	return NewWithTemplate(tables, defaultTemplate)
}

// NewWithTemplate creates a synthesizer with a custom template body
func NewWithTemplate(tables *keywords.Tables, body string) (*Synthesizer, error) {
	tmpl, err := template.New(FileName).Parse(body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse instructions template")
	}
	return &Synthesizer{tables: tables, tmpl: tmpl}, nil
}

// Action picks the action phrase from the lowercased description
func (s *Synthesizer) Action(description string) string {
	if a, ok := s.tables.Actions.First(strings.ToLower(description)); ok {
		return a
	}
	return s.tables.DefaultAction
}

// Domain picks the domain phrase from the skill name
func (s *Synthesizer) Domain(name string) string {
	if d, ok := s.tables.Domains.First(name); ok {
		return d
	}
	return s.tables.DefaultDomain
}

// Synthesize renders the instruction document for a skill. meta is exposed
// to the template but the default template does not use it.
func (s *Synthesizer) Synthesize(id classify.Identity, meta classify.DerivedMetadata) (string, error) {
	data := Data{
		Name:        id.Name,
		Description: id.Description,
		Action:      s.Action(id.Description),
		Domain:      s.Domain(id.Name),
		Meta:        meta,
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		return "", errors.Wrapf(err, "failed to render instructions for %s", id.Name)
	}
	return buf.String(), nil
}
