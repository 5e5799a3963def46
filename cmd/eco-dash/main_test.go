package main

import (
	"context"
	"encoding/json"
	"testing"
)

// TestRobotMode verifies --json outputs a valid JSON snapshot.
func TestRobotMode(t *testing.T) {
	t.Setenv("ECO_HOME", t.TempDir())

	data, err := robotMode(context.Background())
	if err != nil {
		t.Fatalf("robotMode() error: %v", err)
	}

	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("robotMode() output is not valid JSON: %v\nOutput: %s", err, data)
	}

	for _, key := range []string{"systems", "operations", "requests"} {
		if _, ok := result[key]; !ok {
			t.Errorf("robotMode() JSON missing %q field", key)
		}
	}
}
