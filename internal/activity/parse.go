package activity

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// ErrEmptyInput is returned when a document carries no bytes at all.
var ErrEmptyInput = errors.New("empty activity document")

// Parse decodes an activity document. Accepted shapes, in JSON or YAML:
//
//	[{"name": "A", "duration": 3, "predecessors": []}, ...]
//	{"activities": [...]}
//
// The result is schema-validated and contains at least one activity.
func Parse(data []byte) ([]Descriptor, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}

	var (
		raws []rawDescriptor
		err  error
	)
	if gjson.ValidBytes(data) {
		raws, err = parseJSON(data)
	} else {
		raws, err = parseYAML(data)
	}
	if err != nil {
		return nil, err
	}

	if len(raws) == 0 {
		return nil, &ValidationError{Problems: []FieldProblem{{Path: "activities", Rule: "min", Param: "1"}}}
	}
	if err := validateRaw(raws); err != nil {
		return nil, err
	}

	descs := make([]Descriptor, len(raws))
	for i, r := range raws {
		descs[i] = r.descriptor()
	}
	if err := Validate(descs); err != nil {
		return nil, err
	}
	return descs, nil
}

func parseJSON(data []byte) ([]rawDescriptor, error) {
	doc := gjson.ParseBytes(data)
	list := doc
	if doc.IsObject() {
		list = doc.Get("activities")
		if !list.Exists() {
			return nil, fmt.Errorf(`parse activities: missing "activities" key`)
		}
	}
	if !list.IsArray() {
		return nil, fmt.Errorf("parse activities: expected an array, got %s", list.Type)
	}

	var raws []rawDescriptor
	if err := json.Unmarshal([]byte(list.Raw), &raws); err != nil {
		return nil, fmt.Errorf("parse activities: %w", err)
	}
	return raws, nil
}

func parseYAML(data []byte) ([]rawDescriptor, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse activities: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, ErrEmptyInput
	}

	root := doc.Content[0]
	var raws []rawDescriptor
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&raws); err != nil {
			return nil, fmt.Errorf("parse activities: %w", err)
		}
	case yaml.MappingNode:
		var wrapped struct {
			Activities *[]rawDescriptor `yaml:"activities"`
		}
		if err := root.Decode(&wrapped); err != nil {
			return nil, fmt.Errorf("parse activities: %w", err)
		}
		if wrapped.Activities == nil {
			return nil, fmt.Errorf(`parse activities: missing "activities" key`)
		}
		raws = *wrapped.Activities
	default:
		return nil, fmt.Errorf("parse activities: expected a list or a mapping at line %d", root.Line)
	}
	return raws, nil
}

// LoadFile reads and parses an activity document. A path of "-" reads stdin.
func LoadFile(path string) ([]Descriptor, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read activities: %w", err)
	}
	return Parse(data)
}
