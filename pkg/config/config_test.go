package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newViper())
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.Root)
	assert.Equal(t, "https://datadrivenconstruction.io", cfg.Homepage)
	assert.Equal(t, "datadrivenconstruction", cfg.Author)
	assert.Equal(t, "MIT", cfg.License)
	assert.Equal(t, "2.0.0", cfg.ManifestVersion)
	assert.Equal(t, "0.8.0", cfg.MinOpenClawVersion)
	assert.Equal(t, []string{"claude-*", "gpt-*"}, cfg.Models)
	assert.Equal(t, 1, cfg.Workers)
	assert.False(t, cfg.DryRun)
	assert.Equal(t, []string{"**/SKILL.md"}, cfg.Include)
	assert.Equal(t, []string{"**/.git/**", "**/node_modules/**"}, cfg.Exclude)
	assert.Empty(t, cfg.Only)
	assert.False(t, cfg.Quiet)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, "always", cfg.Tracing.Sampler)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SKILLMIG_ROOT", "/skills")
	t.Setenv("SKILLMIG_WORKERS", "4")
	t.Setenv("SKILLMIG_ONLY", "cwicr-*,ifc-*")
	t.Setenv("SKILLMIG_DRY_RUN", "true")
	t.Setenv("SKILLMIG_QUIET", "1")
	t.Setenv("SKILLMIG_TRACING_ENABLED", "true")

	v := newViper()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "/skills", cfg.Root)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, []string{"cwicr-*", "ifc-*"}, cfg.Only)
	assert.True(t, cfg.DryRun)
	assert.True(t, cfg.Quiet)
	assert.True(t, cfg.Tracing.Enabled)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `root: ./skills
author: someone
models: [claude-*]
tracing:
  sampler: ratio
  ratio: 0.25
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	v := newViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "./skills", cfg.Root)
	assert.Equal(t, "someone", cfg.Author)
	assert.Equal(t, "ratio", cfg.Tracing.Sampler)
	assert.InDelta(t, 0.25, cfg.Tracing.Ratio, 1e-9)

	s := cfg.ManifestSettings()
	assert.Equal(t, "someone", s.Author)
	assert.Equal(t, []string{"claude-*"}, s.Models)
	assert.Equal(t, "MIT", s.License)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		value  any
		errMsg string
	}{
		{"empty root", "root", "", "root"},
		{"empty homepage", "homepage", "", "homepage"},
		{"negative workers", "workers", -1, "workers"},
		{"bad sampler", "tracing.sampler", "sometimes", "sampler"},
		{"bad ratio", "tracing.ratio", 2.0, "ratio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViper()
			v.Set(tt.key, tt.value)
			_, err := Load(v)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestZeroWorkersUsesAllCPUs(t *testing.T) {
	v := newViper()
	v.Set("workers", 0)
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
}
