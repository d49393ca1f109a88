package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ".", cfg.OutputRoot)
	assert.Equal(t, "metadata.xml", cfg.RecordName)
	assert.Equal(t, ServiceReject, cfg.ServicePolicy)
	assert.Equal(t, TimestampFail, cfg.TimestampPolicy)
	assert.False(t, cfg.Clean)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	p := filepath.Join(t.TempDir(), "waf.yaml")
	require.NoError(t, os.WriteFile(p, []byte(`
archive: export.zip
client: Example Council
base_url: https://example.org/waf
timestamp_policy: warn
`), 0o644))

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "export.zip", cfg.Archive)
	assert.Equal(t, "Example Council", cfg.Client)
	assert.Equal(t, TimestampWarn, cfg.TimestampPolicy)
	// Untouched fields keep their defaults.
	assert.Equal(t, "metadata.xml", cfg.RecordName)
	assert.Equal(t, ServiceReject, cfg.ServicePolicy)
	require.NoError(t, cfg.Validate())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("client: [unclosed"), 0o644))
	_, err = Load(bad)
	assert.ErrorContains(t, err, "parsing config YAML")
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"GEOWAF_ARCHIVE":        "a.zip",
		"GEOWAF_CLIENT":         "Env Client",
		"GEOWAF_BASE_URL":       "https://env.example.org",
		"GEOWAF_SERVICE_POLICY": "LAST",
		"GEOWAF_CLEAN":          "true",
		"GEOWAF_RUN_DATE":       "2024-02-29",
	}
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}))

	assert.Equal(t, "a.zip", cfg.Archive)
	assert.Equal(t, "Env Client", cfg.Client)
	assert.Equal(t, "https://env.example.org", cfg.BaseURL)
	assert.Equal(t, ServiceLast, cfg.ServicePolicy)
	assert.True(t, cfg.Clean)
	assert.Equal(t, "2024-02-29", cfg.RunDate)

	bad := Default()
	err := bad.ApplyEnv(func(k string) (string, bool) {
		if k == "GEOWAF_CLEAN" {
			return "sometimes", true
		}
		return "", false
	})
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	p := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(p, []byte("GEOWAF_TEST_DOTENV=from-file\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("GEOWAF_TEST_DOTENV") })

	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "absent.env"), p))
	assert.Equal(t, "from-file", os.Getenv("GEOWAF_TEST_DOTENV"))
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Archive = "export.zip"
		cfg.Client = "Example"
		cfg.BaseURL = "https://example.org"
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"missing archive", func(c *Config) { c.Archive = "" }, false},
		{"missing client", func(c *Config) { c.Client = "" }, false},
		{"missing url", func(c *Config) { c.BaseURL = "" }, false},
		{"unusable client", func(c *Config) { c.Client = "..." }, false},
		{"bad service policy", func(c *Config) { c.ServicePolicy = "first" }, false},
		{"bad timestamp policy", func(c *Config) { c.TimestampPolicy = "ignore" }, false},
		{"bad run date", func(c *Config) { c.RunDate = "31/01/2024" }, false},
		{"good run date", func(c *Config) { c.RunDate = "2024-01-31" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestMissing(t *testing.T) {
	cfg := Default()
	assert.Equal(t, []string{"path", "client", "url"}, cfg.Missing())
}

func TestOutputDirAndDate(t *testing.T) {
	cfg := Default()
	cfg.OutputRoot = "/srv/waf"
	cfg.Client = "Example Council"
	assert.Equal(t, filepath.Join("/srv/waf", "example_council"), cfg.OutputDir())

	now := time.Date(2026, 10, 17, 23, 59, 0, 0, time.UTC)
	d, err := cfg.Date(now)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-17", d)

	cfg.RunDate = "2024-01-31"
	d, err = cfg.Date(now)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-31", d)
}
