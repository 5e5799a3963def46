package main

import "testing"

// TestDefaultThemeDistinctColors guards against palette entries
// collapsing into one another during palette edits.
func TestDefaultThemeDistinctColors(t *testing.T) {
	theme := DefaultTheme()

	colors := map[string]string{
		"Primary":   string(theme.Primary),
		"Secondary": string(theme.Secondary),
		"Success":   string(theme.Success),
		"Warning":   string(theme.Warning),
		"Error":     string(theme.Error),
		"Muted":     string(theme.Muted),
	}

	seen := make(map[string]string, len(colors))
	for name, color := range colors {
		if color == "" {
			t.Errorf("%s color is empty", name)
			continue
		}
		if prev, dup := seen[color]; dup {
			t.Errorf("%s and %s share color %q", name, prev, color)
		}
		seen[color] = name
	}
}
