package instructions

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datadrivenconstruction/skillmig/pkg/classify"
	"github.com/datadrivenconstruction/skillmig/pkg/keywords"
)

func newTestSynthesizer(t *testing.T) *Synthesizer {
	t.Helper()
	s, err := New(keywords.MustDefault())
	require.NoError(t, err)
	return s
}

func TestAction(t *testing.T) {
	s := newTestSynthesizer(t)

	tests := []struct {
		description string
		expected    string
	}{
		{"Convert IFC to CSV", "convert or extract data"},
		{"EXTRACT tables from PDF", "convert or extract data"},
		{"Estimate concrete costs", "create cost estimates or analyze costs"},
		{"Analyze delays", "analyze data and generate insights"},
		{"Run an analysis of KPIs", "analyze data and generate insights"},
		{"Generate daily reports", "generate documents or reports"},
		{"Create submittal logs", "generate documents or reports"},
		{"Track RFIs", "manage and track project data"},
		{"Validate model quality", "validate data quality and compliance"},
		{"Check clashes", "validate data quality and compliance"},
		{"Forecast cash flow", "predict outcomes using data models"},
		{"Scheduling helper", "manage schedules and timelines"},
		{"Semantic search over specs", "search and query data"},
		{"Hello", "assist with construction project tasks"},
		{"", "assist with construction project tasks"},
		// convert beats cost because it is checked first
		{"Convert cost tables", "convert or extract data"},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			assert.Equal(t, tt.expected, s.Action(tt.description))
		})
	}
}

func TestDomain(t *testing.T) {
	s := newTestSynthesizer(t)

	tests := []struct {
		name     string
		expected string
	}{
		{"cwicr-bim-lookup", "construction cost data using CWICR (Construction Work Item Cost Resource) database"},
		{"ifc-validator", "BIM (Building Information Modeling) data processing"},
		{"gantt-chart", "construction project scheduling"},
		{"site-inspection", "construction safety and compliance"},
		{"budget-tracker", "construction cost estimation and management"},
		{"pdf-report", "construction document management and reporting"},
		{"etl-runner", "construction data processing and analytics"},
		{"ml-forecaster", "machine learning for construction"},
		{"n8n-flows", "construction workflow automation"},
		{"material-takeoff", "construction procurement and materials management"},
		{"hello", "construction project management"},
		{"BIM-Upper", "construction project management"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, s.Domain(tt.name))
		})
	}
}

func TestSynthesize(t *testing.T) {
	s := newTestSynthesizer(t)

	id := classify.Identity{
		Name:        "cwicr-cost-lookup",
		Description: "Estimate material costs using the CWICR database",
	}
	out, err := s.Synthesize(id, classify.DerivedMetadata{})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out,
		"You are a construction industry assistant specializing in construction cost data using CWICR (Construction Work Item Cost Resource) database.\n\n"+
			"Estimate material costs using the CWICR database\n\n"+
			"When the user asks to create cost estimates or analyze costs:\n"+
			"1. Gather the required input data from the user\n"))
	for _, section := range []string{"## Input Format", "## Output Format", "## Key Reference", "## Constraints"} {
		assert.Contains(t, out, section)
	}
	assert.True(t, strings.HasSuffix(out, "- Follow construction industry standards and best practices\n"))
}

func TestSynthesizeKeepsDescriptionVerbatim(t *testing.T) {
	s := newTestSynthesizer(t)

	out, err := s.Synthesize(classify.Identity{Name: "x", Description: `Parse <xml> & "quoted" {{ braces }}`}, classify.DerivedMetadata{})
	require.NoError(t, err)
	assert.Contains(t, out, `Parse <xml> & "quoted" {{ braces }}`)
}

func TestNewWithTemplate(t *testing.T) {
	tables := keywords.MustDefault()

	s, err := NewWithTemplate(tables, "{{ .Name }}: {{ .Meta.Emoji }}")
	require.NoError(t, err)
	out, err := s.Synthesize(classify.Identity{Name: "n"}, classify.DerivedMetadata{Emoji: "🔧"})
	require.NoError(t, err)
	assert.Equal(t, "n: 🔧", out)

	_, err = NewWithTemplate(tables, "{{ .Name ")
	assert.Error(t, err)
}
