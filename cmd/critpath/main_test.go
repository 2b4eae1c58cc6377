package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joshharrison/critpath/internal/reporter"
	"github.com/joshharrison/critpath/internal/state"
)

const diamondJSON = `{"activities": [
	{"name": "A", "duration": 2, "predecessors": []},
	{"name": "B", "duration": 3, "predecessors": ["A"]},
	{"name": "C", "duration": 1, "predecessors": ["A"]},
	{"name": "D", "duration": 2, "predecessors": ["B", "C"]}
]}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--no-color"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestAnalyze_Table(t *testing.T) {
	path := writeFile(t, "plan.json", diamondJSON)

	out, err := run(t, "analyze", path)
	if err != nil {
		t.Fatalf("analyze: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Duration:    7") {
		t.Errorf("expected total duration in output:\n%s", out)
	}
	if !strings.Contains(out, "A, B, D") {
		t.Errorf("expected critical path in output:\n%s", out)
	}
}

func TestAnalyze_JSON(t *testing.T) {
	path := writeFile(t, "plan.json", diamondJSON)

	out, err := run(t, "analyze", "--json", path)
	if err != nil {
		t.Fatalf("analyze: %v\n%s", err, out)
	}

	var got reporter.Payload
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if got.TotalDuration != 7 || len(got.Activities) != 4 {
		t.Errorf("unexpected payload: %+v", got)
	}
}

func TestAnalyze_YAML(t *testing.T) {
	path := writeFile(t, "plan.yaml", "- name: A\n  duration: 3\n- name: B\n  duration: 2\n  predecessors: [A]\n")

	out, err := run(t, "analyze", "--json", path)
	if err != nil {
		t.Fatalf("analyze: %v\n%s", err, out)
	}
	if !strings.Contains(out, `"total_duration": 5`) {
		t.Errorf("expected total duration 5:\n%s", out)
	}
}

func TestAnalyze_Cycle(t *testing.T) {
	path := writeFile(t, "plan.json", `[
		{"name": "A", "duration": 1, "predecessors": ["B"]},
		{"name": "B", "duration": 1, "predecessors": ["A"]}
	]`)

	out, err := run(t, "analyze", path)
	if err == nil {
		t.Fatalf("expected cycle error, got output:\n%s", out)
	}
	if !strings.Contains(err.Error(), "A -> B -> A") {
		t.Errorf("expected cycle path in error, got %v", err)
	}
}

func TestAnalyze_MissingFile(t *testing.T) {
	if _, err := run(t, "analyze", filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSaveAndShow(t *testing.T) {
	path := writeFile(t, "plan.json", diamondJSON)
	dir := filepath.Join(t.TempDir(), state.DefaultDir)

	if _, err := run(t, "show", "--state-dir", dir); err == nil {
		t.Fatal("expected error before anything is saved")
	}

	out, err := run(t, "analyze", "--save", "--state-dir", dir, path)
	if err != nil {
		t.Fatalf("analyze --save: %v\n%s", err, out)
	}
	if !state.Exists(dir) {
		t.Fatal("expected saved snapshot")
	}

	out, err = run(t, "show", "--state-dir", dir)
	if err != nil {
		t.Fatalf("show: %v\n%s", err, out)
	}
	if !strings.Contains(out, path) || !strings.Contains(out, "Duration:    7") {
		t.Errorf("unexpected show output:\n%s", out)
	}
}

func TestViz(t *testing.T) {
	path := writeFile(t, "plan.json", diamondJSON)

	out, err := run(t, "viz", "--format", "dot", path)
	if err != nil {
		t.Fatalf("viz: %v", err)
	}
	if !strings.HasPrefix(out, "digraph critpath {") {
		t.Errorf("expected DOT output:\n%s", out)
	}

	out, err = run(t, "viz", "--format", "ascii", path)
	if err != nil {
		t.Fatalf("viz: %v", err)
	}
	if !strings.Contains(out, "Activity Network") {
		t.Errorf("expected ASCII output:\n%s", out)
	}

	if _, err := run(t, "viz", "--format", "png", path); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestFlagsResetBetweenCommands(t *testing.T) {
	path := writeFile(t, "plan.json", diamondJSON)
	first := filepath.Join(t.TempDir(), state.DefaultDir)
	second := filepath.Join(t.TempDir(), state.DefaultDir)

	if _, err := run(t, "analyze", "--save", "--json", "--state-dir", first, path); err != nil {
		t.Fatalf("analyze --save --json: %v", err)
	}

	out, err := run(t, "analyze", "--state-dir", second, path)
	if err != nil {
		t.Fatalf("analyze: %v\n%s", err, out)
	}
	if state.Exists(second) {
		t.Error("--save from an earlier command leaked into a later one")
	}
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Errorf("--json from an earlier command leaked into a later one:\n%s", out)
	}
}
