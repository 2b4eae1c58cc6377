package activity

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestParse_JSONArray(t *testing.T) {
	data := []byte(`[
		{"name": "A", "duration": 3, "predecessors": []},
		{"name": "B", "duration": 2.5, "predecessors": ["A"]}
	]`)

	descs, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(descs) != 2 {
		t.Fatalf("expected 2 activities, got %d", len(descs))
	}
	if descs[1].Name != "B" || descs[1].Duration != 2.5 {
		t.Errorf("unexpected second activity: %+v", descs[1])
	}
	if len(descs[1].Predecessors) != 1 || descs[1].Predecessors[0] != "A" {
		t.Errorf("expected predecessors [A], got %v", descs[1].Predecessors)
	}
}

func TestParse_JSONObject(t *testing.T) {
	data := []byte(`{"activities": [{"name": "A", "duration": 1}]}`)

	descs, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(descs) != 1 || descs[0].Name != "A" {
		t.Fatalf("expected [A], got %+v", descs)
	}
	// Missing predecessors normalise to an empty list.
	if descs[0].Predecessors == nil || len(descs[0].Predecessors) != 0 {
		t.Errorf("expected empty predecessors, got %#v", descs[0].Predecessors)
	}
}

func TestParse_YAML(t *testing.T) {
	data := []byte(`
activities:
  - name: A
    duration: 2
  - name: B
    duration: 3
    predecessors: [A]
`)

	descs, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(descs) != 2 {
		t.Fatalf("expected 2 activities, got %d", len(descs))
	}
	if descs[1].Duration != 3 {
		t.Errorf("expected B duration 3, got %v", descs[1].Duration)
	}
}

func TestParse_YAMLSequence(t *testing.T) {
	data := []byte("- name: solo\n  duration: 4\n")

	descs, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(descs) != 1 || descs[0].Duration != 4 {
		t.Errorf("unexpected result: %+v", descs)
	}
}

func TestParse_Empty(t *testing.T) {
	if _, err := Parse([]byte("   \n")); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
}

func TestParse_NoActivities(t *testing.T) {
	_, err := Parse([]byte(`{"activities": []}`))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Problems[0].Path != "activities" || verr.Problems[0].Rule != "min" {
		t.Errorf("unexpected problem: %+v", verr.Problems[0])
	}
}

func TestParse_MissingKey(t *testing.T) {
	if _, err := Parse([]byte(`{"tasks": []}`)); err == nil {
		t.Fatal("expected error for missing activities key")
	}
}

func TestParse_NotAList(t *testing.T) {
	if _, err := Parse([]byte(`{"activities": "A"}`)); err == nil {
		t.Fatal("expected error for non-array activities")
	}
}

func TestParse_MissingDuration(t *testing.T) {
	_, err := Parse([]byte(`[{"name": "A"}]`))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if got := verr.Problems[0].Path; got != "activities[0].duration" {
		t.Errorf("expected path activities[0].duration, got %s", got)
	}
}

func TestParse_NegativeDuration(t *testing.T) {
	_, err := Parse([]byte(`[{"name": "A", "duration": 1}, {"name": "B", "duration": -2}]`))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	p := verr.Problems[0]
	if p.Path != "activities[1].duration" || p.Rule != "gte" {
		t.Errorf("unexpected problem: %+v", p)
	}
	t.Logf("validation error (expected): %v", err)
}

func TestParse_WrongType(t *testing.T) {
	if _, err := Parse([]byte(`[{"name": "A", "duration": "three"}]`)); err == nil {
		t.Fatal("expected error for string duration")
	}
}

func TestValidate(t *testing.T) {
	descs := []Descriptor{
		{Name: "", Duration: 1},
		{Name: "B", Duration: 1, Predecessors: []string{""}},
	}

	err := Validate(descs)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Problems) != 2 {
		t.Fatalf("expected 2 problems, got %v", verr.Problems)
	}
	if verr.Problems[0].Path != "activities[0].name" {
		t.Errorf("unexpected first path: %s", verr.Problems[0].Path)
	}
	if verr.Problems[1].Path != "activities[1].predecessors[0]" {
		t.Errorf("unexpected second path: %s", verr.Problems[1].Path)
	}
}

func TestValidate_OK(t *testing.T) {
	if err := Validate([]Descriptor{{Name: "A", Duration: 0}}); err != nil {
		t.Errorf("zero duration should be valid: %v", err)
	}
	if err := Validate(nil); err != nil {
		t.Errorf("empty list should be valid: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	if err := os.WriteFile(path, []byte("- name: A\n  duration: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	descs, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(descs) != 1 {
		t.Errorf("expected 1 activity, got %d", len(descs))
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParse_NonFiniteDuration(t *testing.T) {
	cases := map[string]string{
		"inf":     "- {name: A, duration: .inf}\n- {name: B, duration: 1, predecessors: [A]}\n",
		"neg inf": "- {name: A, duration: -.inf}\n",
		"nan":     "- {name: A, duration: 1}\n- {name: B, duration: .nan}\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Problems[0].Rule != "finite" {
				t.Errorf("expected finite rule, got %+v", verr.Problems[0])
			}
		})
	}
}

func TestValidate_NonFinite(t *testing.T) {
	err := Validate([]Descriptor{{Name: "A", Duration: math.Inf(1)}})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if got := verr.Problems[0].String(); got != "activities[0].duration must be a finite number" {
		t.Errorf("unexpected message: %s", got)
	}
}
