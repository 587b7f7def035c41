package keywords

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	tables, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "🔧", tables.DefaultEmoji)
	assert.Equal(t, "construction", tables.BaseTag)
	assert.Equal(t, 5, tables.TagLimit)
	assert.Len(t, tables.NameEmoji, 7)
	assert.Len(t, tables.Tags, 16)
	assert.Len(t, tables.Actions, 9)
	assert.Len(t, tables.Domains, 10)
	assert.Equal(t, "🗄️", tables.CategoryEmoji["CWICR-Database"])
	assert.Equal(t, "🚀", tables.CategoryEmoji["5_DDC_Innovative"])
	assert.Equal(t, "📚", tables.CategoryEmoji["1.1-Data-Evolution"])
	assert.Contains(t, tables.WindowsOnly, ".rvt")
	assert.Contains(t, tables.RequiredBins[0].Keywords, "import ")

	tagOrder := make([]string, 0, len(tables.Tags))
	for _, r := range tables.Tags {
		tagOrder = append(tagOrder, r.Result)
	}
	assert.Equal(t, []string{
		"estimation", "BIM", "cost-management", "scheduling", "data-processing",
		"safety", "reporting", "machine-learning", "document-management", "quality",
		"procurement", "sustainability", "automation", "CWICR", "GIS", "CAD",
	}, tagOrder)
}

func TestRulesFirstAndAll(t *testing.T) {
	rules := Rules{
		{Result: "a", Keywords: []string{"foo", "bar"}},
		{Result: "b", Keywords: []string{"bar"}},
		{Result: "c", Keywords: []string{"baz"}},
	}

	first, ok := rules.First("xx bar yy")
	require.True(t, ok)
	assert.Equal(t, "a", first)

	assert.Equal(t, []string{"a", "b"}, rules.All("bar"))
	assert.Nil(t, rules.All("nothing"))

	_, ok = rules.First("nothing")
	assert.False(t, ok)
}

func TestLoad(t *testing.T) {
	t.Run("empty path uses defaults", func(t *testing.T) {
		tables, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "construction", tables.BaseTag)
	})

	t.Run("custom file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tables.yaml")
		content := `default_emoji: "⭐"
base_tag: infra
tag_limit: 2
tags:
  - result: networking
    keywords: [tcp]
default_action: help out
default_domain: infrastructure
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		tables, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "⭐", tables.DefaultEmoji)
		assert.Equal(t, 2, tables.TagLimit)
		assert.Len(t, tables.Tags, 1)
		assert.Empty(t, tables.CategoryEmoji)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})
}

func TestParseValidation(t *testing.T) {
	base := "default_emoji: x\nbase_tag: construction\ndefault_action: a\ndefault_domain: d\n"

	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{"zero tag limit", base + "tag_limit: 0\n", "tag_limit"},
		{"missing emoji", "base_tag: c\ntag_limit: 5\ndefault_action: a\ndefault_domain: d\n", "default_emoji"},
		{"rule without keywords", base + "tag_limit: 5\ntags:\n  - result: x\n", "at least one keyword"},
		{"duplicate tag", base + "tag_limit: 5\ntags:\n  - result: x\n    keywords: [a]\n  - result: x\n    keywords: [b]\n", "duplicate tag"},
		{"base tag repeated", base + "tag_limit: 5\ntags:\n  - result: construction\n    keywords: [a]\n", "duplicate tag"},
		{"unknown field", base + "tag_limit: 5\nbogus: true\n", "bogus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	tables := MustDefault()
	data, err := tables.Marshal()
	require.NoError(t, err)

	reparsed, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, tables, reparsed)
}
