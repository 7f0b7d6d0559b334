// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/toolpanel/internal/history"
)

func sampleReport() *Report {
	at := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	return &Report{
		Title:       "Recent runs",
		GeneratedAt: at,
		Entries: []history.Entry{
			{ID: "1", Kind: history.KindValidate, Source: "cli", Status: "invalid",
				Summary: "line 1, column 5: bad | pipe", Duration: 120 * time.Microsecond, CreatedAt: at},
			{ID: "2", Kind: history.KindDiff, Source: "panel", Status: "modified",
				Summary: "Modified +1 -1 (0 unchanged)", Duration: 3 * time.Millisecond, CreatedAt: at},
			{ID: "3", Kind: history.KindValidate, Source: "http", Status: "valid",
				Summary: "<script>", Duration: 2 * time.Second, CreatedAt: at},
		},
	}
}

func TestForFormat(t *testing.T) {
	for _, name := range Formats() {
		e, err := ForFormat(name, nil)
		require.NoError(t, err, name)
		assert.NotEmpty(t, e.FileExtension())
	}
	_, err := ForFormat("pdf", nil)
	assert.Error(t, err)
}

func TestExporters_RejectEmptyReport(t *testing.T) {
	for _, name := range Formats() {
		e, _ := ForFormat(name, nil)
		_, err := e.Export(&Report{Title: "empty"})
		assert.ErrorIs(t, err, ErrEmptyReport, name)
	}
}

func TestJSONExporter(t *testing.T) {
	out, err := NewJSONExporter(nil).Export(sampleReport())
	require.NoError(t, err)

	var got Report
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, "Recent runs", got.Title)
	require.Len(t, got.Entries, 3)
	assert.Equal(t, history.KindDiff, got.Entries[1].Kind)
}

func TestMarkdownExporter(t *testing.T) {
	out, err := NewMarkdownExporter(nil).Export(sampleReport())
	require.NoError(t, err)
	md := string(out)

	require.True(t, strings.HasPrefix(md, "---\n"))
	end := strings.Index(md[4:], "---\n")
	require.Positive(t, end)

	var fm frontmatter
	require.NoError(t, yaml.Unmarshal([]byte(md[4:4+end]), &fm))
	assert.Equal(t, 3, fm.Runs)
	assert.Equal(t, 1, fm.Statuses["invalid"])

	assert.Contains(t, md, "# Recent runs")
	assert.Contains(t, md, `bad \| pipe`)
	assert.Contains(t, md, "| 120µs |")
	assert.Contains(t, md, "| 2.00s |")
}

func TestMarkdownExporter_WithoutMetadata(t *testing.T) {
	out, err := NewMarkdownExporter(&Options{}).Export(sampleReport())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "# Recent runs"))
}

func TestHTMLExporter_EscapesAndThemes(t *testing.T) {
	out, err := NewHTMLExporter(&Options{Theme: "light", IncludeMetadata: true}).Export(sampleReport())
	require.NoError(t, err)
	page := string(out)

	assert.Contains(t, page, `class="light-theme"`)
	assert.Contains(t, page, "&lt;script&gt;")
	assert.NotContains(t, page, "<td><script>")
	assert.Contains(t, page, `<td class="bad">invalid</td>`)
}

func TestExportToFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	opts := &Options{OutputDir: dir}

	path, err := ExportToFile(sampleReport(), NewMarkdownExporter(opts), opts)
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(path))
	assert.Equal(t, "toolpanel_Recent_runs_20250304_050607.md", filepath.Base(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Recent runs")
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "a-b_c", sanitizeFilename("a/b c"))
	assert.Equal(t, "history", sanitizeFilename(""))
	assert.Len(t, []rune(sanitizeFilename(strings.Repeat("x", 80))), 50)
}
