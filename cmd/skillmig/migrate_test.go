package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datadrivenconstruction/skillmig/pkg/config"
	"github.com/datadrivenconstruction/skillmig/pkg/migrate"
	"github.com/datadrivenconstruction/skillmig/pkg/presenter"
)

func newTestViper() *viper.Viper {
	v := viper.New()
	config.SetDefaults(v)
	return v
}

func newTestPresenter() (presenter.Presenter, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return presenter.NewWithOptions(&out, &errOut, presenter.ColorNever), &out, &errOut
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func sampleTree(t *testing.T) string {
	return writeTree(t, map[string]string{
		"1_DDC_Toolkit/CWICR-Database/cwicr-cost-lookup/SKILL.md": "---\nname: cwicr-cost-lookup\ndescription: Estimate material costs using the CWICR database\n---\n\n# CWICR\n",
		"1_DDC_Toolkit/Analytics/kpi-dashboard/SKILL.md":          "# no header\n",
		"5_DDC_Innovative/ai-agent/SKILL.md":                      "---\nslug: ai-agent\nhomepage: https://example.com\n---\n# Agent\n",
	})
}

func TestRunMigrateReport(t *testing.T) {
	root := sampleTree(t)
	p, out, errOut := newTestPresenter()

	code := runMigrate(context.Background(), newTestViper(), p, []string{root})
	assert.Equal(t, 0, code)
	assert.Empty(t, errOut.String())

	rule := strings.Repeat("=", 60)
	expected := "Found 3 skills total\n" +
		rule + "\n" +
		"SKIP (no frontmatter): kpi-dashboard\n" +
		"OK: cwicr-cost-lookup\n" +
		"SKIP (already updated): ai-agent\n" +
		rule + "\n" +
		"Updated: 1\n" +
		"Skipped: 2\n" +
		"Errors:  0\n" +
		"Total:   3\n"
	assert.Equal(t, expected, out.String())

	assert.FileExists(t, filepath.Join(root, "1_DDC_Toolkit/CWICR-Database/cwicr-cost-lookup/claw.json"))
	assert.NoFileExists(t, filepath.Join(root, "1_DDC_Toolkit/Analytics/kpi-dashboard/claw.json"))

	out.Reset()
	code = runMigrate(context.Background(), newTestViper(), p, []string{root})
	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "SKIP (already updated): cwicr-cost-lookup\n")
	assert.Contains(t, out.String(), "Updated: 0\n")
}

func TestRunMigrateQuiet(t *testing.T) {
	root := sampleTree(t)
	p, out, errOut := newTestPresenter()

	v := newTestViper()
	v.Set("quiet", true)
	assert.Equal(t, 0, runMigrate(context.Background(), v, p, []string{root}))
	assert.Empty(t, out.String())
	assert.Empty(t, errOut.String())
	assert.True(t, p.IsQuiet())
	assert.FileExists(t, filepath.Join(root, "1_DDC_Toolkit/CWICR-Database/cwicr-cost-lookup/claw.json"))
}

func TestRunMigrateDryRun(t *testing.T) {
	root := sampleTree(t)
	p, out, _ := newTestPresenter()

	v := newTestViper()
	v.Set("dry_run", true)
	v.Set("only", []string{"cwicr-*"})

	code := runMigrate(context.Background(), v, p, []string{root})
	assert.Equal(t, 0, code)

	assert.Contains(t, out.String(), "⚠ Dry run: no files will be written\n")
	assert.Contains(t, out.String(), "Found 1 skills total\n")
	assert.Contains(t, out.String(), "+homepage: \"https://datadrivenconstruction.io\"\n")
	assert.Contains(t, out.String(), "  would create: claw.json, instructions.md\n")
	assert.NoFileExists(t, filepath.Join(root, "1_DDC_Toolkit/CWICR-Database/cwicr-cost-lookup/claw.json"))
}

func TestRunMigrateFailOnError(t *testing.T) {
	root := writeTree(t, map[string]string{
		"Toolkit/Misc/fine/SKILL.md": "---\nname: fine\n---\n# fine\n",
	})
	file := filepath.Join(root, "Toolkit", "Misc", "fine", "SKILL.md")
	require.NoError(t, os.Chmod(file, 0o000))
	t.Cleanup(func() { _ = os.Chmod(file, 0o644) })
	if _, err := os.ReadFile(file); err == nil {
		t.Skip("file permissions are not enforced for this user")
	}

	p, out, _ := newTestPresenter()
	assert.Equal(t, 0, runMigrate(context.Background(), newTestViper(), p, []string{root}))
	assert.Contains(t, out.String(), "ERROR: fine - ")
	assert.Contains(t, out.String(), "Errors:  1\n")

	v := newTestViper()
	v.Set("fail_on_error", true)
	p, _, errOut := newTestPresenter()
	assert.Equal(t, 1, runMigrate(context.Background(), v, p, []string{root}))
	assert.Contains(t, errOut.String(), "[ERROR] Migration failed: 1 error occurred:")
	assert.Contains(t, errOut.String(), "Toolkit/Misc/fine: failed to read SKILL.md")
}

func TestRunMigrateInvalidConfig(t *testing.T) {
	p, _, errOut := newTestPresenter()

	code := runMigrate(context.Background(), newTestViper(), p, []string{filepath.Join(t.TempDir(), "missing")})
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "[ERROR] Failed to set up skill discovery")

	v := newTestViper()
	v.Set("workers", -2)
	p, _, errOut = newTestPresenter()
	assert.Equal(t, 1, runMigrate(context.Background(), v, p, []string{t.TempDir()}))
	assert.Contains(t, errOut.String(), "[ERROR] Invalid configuration")
}

func TestRunVerify(t *testing.T) {
	root := writeTree(t, map[string]string{
		"1_DDC_Toolkit/CWICR-Database/cwicr-cost-lookup/SKILL.md": "---\nname: cwicr-cost-lookup\ndescription: Estimate costs\n---\n# CWICR\n",
	})

	p, out, _ := newTestPresenter()
	assert.Equal(t, 1, runVerify(context.Background(), newTestViper(), p, []string{root}))
	assert.Contains(t, out.String(), "Verification failures")
	assert.Contains(t, out.String(), "3 problems found in 1 of 1 skills")

	p, _, _ = newTestPresenter()
	require.Equal(t, 0, runMigrate(context.Background(), newTestViper(), p, []string{root}))

	p, out, _ = newTestPresenter()
	assert.Equal(t, 0, runVerify(context.Background(), newTestViper(), p, []string{root}))
	assert.Equal(t, "✓ All 1 skills are migrated\n", out.String())
}

func TestRunVerifyCountsFailingSkills(t *testing.T) {
	root := writeTree(t, map[string]string{
		"Toolkit/Cost/first/SKILL.md":  "---\nname: first\n---\n# First\n",
		"Toolkit/Cost/second/SKILL.md": "---\nname: second\n---\n# Second\n",
		"Toolkit/Cost/third/SKILL.md":  "---\nname: third\n---\n# Third\n",
	})
	p, _, _ := newTestPresenter()
	require.Equal(t, 0, runMigrate(context.Background(), newTestViper(), p, []string{root}))
	require.NoError(t, os.Remove(filepath.Join(root, "Toolkit/Cost/second/instructions.md")))

	p, out, _ := newTestPresenter()
	assert.Equal(t, 1, runVerify(context.Background(), newTestViper(), p, []string{root}))
	assert.Contains(t, out.String(), "1 problems found in 1 of 3 skills")
}

func TestLineStatus(t *testing.T) {
	assert.Equal(t, presenter.StatusOK, lineStatus(migrate.Updated))
	assert.Equal(t, presenter.StatusSkip, lineStatus(migrate.SkippedNoHeader))
	assert.Equal(t, presenter.StatusSkip, lineStatus(migrate.SkippedMigrated))
	assert.Equal(t, presenter.StatusError, lineStatus(migrate.Failed))
}
