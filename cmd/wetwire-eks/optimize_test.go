package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewOptimizeCmd(t *testing.T) {
	cmd := newOptimizeCmd()

	if cmd.Use != "optimize" {
		t.Errorf("Use = %q, want 'optimize'", cmd.Use)
	}
	if cmd.Short == "" {
		t.Error("Short description should not be empty")
	}
	if cmd.Flags().Lookup("format") == nil {
		t.Error("missing --format flag")
	}
	if cmd.Flags().Lookup("category") == nil {
		t.Error("missing --category flag")
	}
}

func TestOptimizeCategories(t *testing.T) {
	for _, cat := range []string{"all", "security", "cost", "performance", "reliability"} {
		if !isValidCategory(cat) {
			t.Errorf("category %q should be valid", cat)
		}
	}
	if isValidCategory("invalid") {
		t.Error("'invalid' should not be a valid category")
	}
}

func TestRunOptimize(t *testing.T) {
	var out bytes.Buffer
	if err := runOptimize(&out, testConfig, "text", "all"); err != nil {
		t.Fatalf("runOptimize() error = %v", err)
	}

	output := out.String()
	if !strings.Contains(output, "=== Security") {
		t.Errorf("expected security section, got:\n%s", output)
	}
	if !strings.Contains(output, "OPT-EKS-001") {
		t.Error("expected public endpoint suggestion")
	}
	if !strings.Contains(output, "Summary:") {
		t.Error("expected summary line")
	}
}

func TestRunOptimize_JSON(t *testing.T) {
	var out bytes.Buffer
	if err := runOptimize(&out, testConfig, "json", "performance"); err != nil {
		t.Fatalf("runOptimize() error = %v", err)
	}
	if !strings.Contains(out.String(), `"OPT-LC-002"`) {
		t.Errorf("expected gp2 volume suggestion, got:\n%s", out.String())
	}
}
