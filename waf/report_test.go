package waf

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehigh-university-libraries/geowaf/waf/waftest"
)

func TestWriteReport(t *testing.T) {
	cfg := testConfig(t, waftest.WriteArchive(t,
		waftest.Record("abc-123", waftest.Dataset("abc-123", "Road Network 2020")),
		waftest.Record("svc", waftest.Service("svc", "abc-123", "zzz-999")),
	))
	res, _, err := run(t, cfg)
	require.NoError(t, err)

	p := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, res.WriteReport(p))

	data, err := os.ReadFile(p)
	require.NoError(t, err)

	var report struct {
		RunID         string            `json:"run_id"`
		RunDate       string            `json:"run_date"`
		Service       string            `json:"service"`
		IdentifierMap map[string]string `json:"identifier_map"`
		Files         []string          `json:"files"`
		Diagnostics   []struct {
			Kind    string `json:"kind"`
			Subject string `json:"subject"`
		} `json:"diagnostics"`
	}
	require.NoError(t, json.Unmarshal(data, &report))

	assert.Equal(t, "test-run", report.RunID)
	assert.Equal(t, "2024-01-31", report.RunDate)
	assert.Equal(t, "svc", report.Service)
	assert.Equal(t, map[string]string{"abc-123": "Road Network 2020.xml"}, report.IdentifierMap)
	assert.Equal(t, []string{"Road Network 2020.xml", "service.xml"}, report.Files)
	require.Len(t, report.Diagnostics, 1)
	assert.Equal(t, "ReferenceResolutionWarning", report.Diagnostics[0].Kind)
	assert.Equal(t, "zzz-999", report.Diagnostics[0].Subject)
}

func TestMetricsTextfile(t *testing.T) {
	cfg := testConfig(t, waftest.WriteArchive(t,
		waftest.Record("a", waftest.Dataset("a", "Alpha")),
		waftest.Record("svc", waftest.Service("svc", "a")),
	))
	_, m, err := run(t, cfg)
	require.NoError(t, err)

	p := filepath.Join(t.TempDir(), "geowaf.prom")
	require.NoError(t, m.WriteTextfile(p))

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.Contains(text, `geowaf_records_total{kind="dataset"} 1`), text)
	assert.Contains(t, text, `geowaf_references_total{result="resolved"} 1`)
	assert.Contains(t, text, "geowaf_files_written_total 3")

	n, err := testutil.GatherAndCount(m.Registry(), "geowaf_records_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
