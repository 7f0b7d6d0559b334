// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"
)

func TestNewTheme_ExplicitModes(t *testing.T) {
	dark := NewTheme(ModeDark)
	if !dark.IsDark {
		t.Error("dark mode should report IsDark")
	}

	light := NewTheme("LIGHT")
	if light.IsDark {
		t.Error("light mode should not report IsDark")
	}
}

func TestNewTheme_AutoDoesNotPanic(t *testing.T) {
	theme := NewTheme(ModeAuto)
	if theme == nil {
		t.Fatal("NewTheme returned nil")
	}
}

func TestLayoutMode(t *testing.T) {
	theme := NewTheme(ModeDark)

	tests := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{59, LayoutNarrow},
		{60, LayoutMedium},
		{99, LayoutMedium},
		{100, LayoutWide},
	}
	for _, tt := range tests {
		theme.SetSize(tt.width, 24)
		if got := theme.GetLayoutMode(); got != tt.want {
			t.Errorf("width %d: got %v, want %v", tt.width, got, tt.want)
		}
	}
}

func TestRenderHelpers_IncludeIndicators(t *testing.T) {
	tests := []struct {
		name   string
		render func(string) string
		marker string
	}{
		{"success", RenderSuccess, StatusIndicators.Success},
		{"error", RenderError, StatusIndicators.Error},
		{"warning", RenderWarning, StatusIndicators.Warning},
		{"pending", RenderPending, StatusIndicators.Pending},
		{"muted", RenderMuted, StatusIndicators.Empty},
	}
	for _, tt := range tests {
		out := tt.render("message")
		if !strings.Contains(out, tt.marker) {
			t.Errorf("%s: %q missing marker %q", tt.name, out, tt.marker)
		}
		if !strings.Contains(out, "message") {
			t.Errorf("%s: %q missing message", tt.name, out)
		}
	}
}
