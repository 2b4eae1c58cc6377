package activity

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is a singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
	// Report fields by their json names so messages match the input documents.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := validate.RegisterValidation("finite", isFinite); err != nil {
		panic(err)
	}
}

// isFinite rejects NaN and ±Inf, which YAML can express as .nan and .inf.
func isFinite(fl validator.FieldLevel) bool {
	f := fl.Field()
	switch f.Kind() {
	case reflect.Float32, reflect.Float64:
		v := f.Float()
		return !math.IsNaN(v) && !math.IsInf(v, 0)
	}
	return true
}

// FieldProblem is one failed rule on one input field.
type FieldProblem struct {
	Path  string `json:"path"`  // e.g. activities[2].duration
	Rule  string `json:"rule"`  // validator tag, e.g. gte
	Param string `json:"param"` // tag parameter, e.g. 0
}

func (p FieldProblem) String() string {
	switch p.Rule {
	case "required":
		return p.Path + " is required"
	case "finite":
		return p.Path + " must be a finite number"
	case "gte":
		return fmt.Sprintf("%s must be >= %s", p.Path, p.Param)
	case "min":
		return fmt.Sprintf("%s must contain at least %s item(s)", p.Path, p.Param)
	default:
		if p.Param != "" {
			return fmt.Sprintf("%s failed %s=%s", p.Path, p.Rule, p.Param)
		}
		return fmt.Sprintf("%s failed %s", p.Path, p.Rule)
	}
}

// ValidationError reports every schema problem found in an activity list.
type ValidationError struct {
	Problems []FieldProblem
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.String()
	}
	return "invalid activities: " + strings.Join(msgs, "; ")
}

type descriptorList struct {
	Activities []Descriptor `json:"activities" validate:"dive"`
}

type rawDescriptorList struct {
	Activities []rawDescriptor `json:"activities" validate:"dive"`
}

// Validate checks the schema of already-typed descriptors: every name is
// set, durations are finite and non-negative and predecessor names are non-empty.
// Graph-level rules (duplicates, unknown names, cycles) belong to graph.Build.
func Validate(descs []Descriptor) error {
	return structErr(validate.Struct(descriptorList{Activities: descs}))
}

func validateRaw(raws []rawDescriptor) error {
	return structErr(validate.Struct(rawDescriptorList{Activities: raws}))
}

func structErr(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate activities: %w", err)
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		out.Problems = append(out.Problems, FieldProblem{
			Path:  trimRoot(fe.Namespace()),
			Rule:  fe.Tag(),
			Param: fe.Param(),
		})
	}
	return out
}

// trimRoot drops the wrapper struct name from a validator namespace.
func trimRoot(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
