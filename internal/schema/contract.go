// Package schema implements the per-stage output contracts. One Go type per
// artifact is the canonical shape: it drives both validation of the model's
// payload and the schema description embedded in the stage instruction.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Limit bounds a top-level collection field of an artifact. Bounds that
// depend on runtime configuration (query budget, minimum result count) are
// declared here rather than in struct tags so the validator and the schema
// handed to the model read from the same place. Zero means unbounded.
type Limit struct {
	Field string // json name of the collection field
	Min   int
	Max   int
}

// Contract describes the shape a stage's structured output must satisfy.
type Contract struct {
	Name     string     // artifact name used in error messages, e.g. "query plan"
	Artifact func() any // fresh pointer to the artifact type
	Limits   []Limit
}

// Violation is one failed constraint on one field.
type Violation struct {
	Field      string
	Constraint string
}

// ValidationError reports every violated field and constraint of a payload.
type ValidationError struct {
	Artifact   string
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Constraint)
	}
	return fmt.Sprintf("%s invalid: %s", e.Artifact, strings.Join(parts, "; "))
}

var artifactValidator = newArtifactValidator()

func newArtifactValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report violations under json field names, not Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate decodes raw into a fresh artifact value and checks it against the
// declared shape and limits. Failures come back as a *ValidationError naming
// the offending fields; the decoded artifact is returned only when every
// constraint holds.
func (c Contract) Validate(raw []byte) (any, error) {
	out := c.Artifact()
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, &ValidationError{Artifact: c.Name, Violations: []Violation{decodeViolation(err)}}
	}
	var violations []Violation
	if err := artifactValidator.Struct(out); err != nil {
		var ferrs validator.ValidationErrors
		if !errors.As(err, &ferrs) {
			return nil, fmt.Errorf("validate %s: %w", c.Name, err)
		}
		for _, fe := range ferrs {
			violations = append(violations, Violation{Field: fieldPath(fe), Constraint: constraintText(fe)})
		}
	}
	for _, lim := range c.Limits {
		if v := lim.violation(out); v != nil {
			violations = append(violations, *v)
		}
	}
	if len(violations) > 0 {
		return nil, &ValidationError{Artifact: c.Name, Violations: violations}
	}
	return out, nil
}

func decodeViolation(err error) Violation {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "(document)"
		}
		return Violation{Field: field, Constraint: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value)}
	}
	return Violation{Field: "(document)", Constraint: "not a JSON object: " + err.Error()}
}

// fieldPath turns "QueryPlan.queries[1]" into "queries[1]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func constraintText(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "url":
		return "must be a valid URL"
	case "min":
		switch fe.Kind() {
		case reflect.Slice, reflect.Map, reflect.String:
			return "must contain at least " + fe.Param() + " items"
		default:
			return "must be at least " + fe.Param()
		}
	case "max":
		switch fe.Kind() {
		case reflect.Slice, reflect.Map, reflect.String:
			return "must contain at most " + fe.Param() + " items"
		default:
			return "must be at most " + fe.Param()
		}
	default:
		return "failed constraint " + fe.Tag()
	}
}

func (l Limit) violation(artifact any) *Violation {
	v := reflect.ValueOf(artifact)
	for v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		name := strings.SplitN(t.Field(i).Tag.Get("json"), ",", 2)[0]
		if name != l.Field {
			continue
		}
		f := v.Field(i)
		if f.Kind() != reflect.Slice {
			return nil
		}
		n := f.Len()
		if l.Min > 0 && n < l.Min {
			return &Violation{Field: l.Field, Constraint: fmt.Sprintf("must contain at least %d items, got %d", l.Min, n)}
		}
		if l.Max > 0 && n > l.Max {
			return &Violation{Field: l.Field, Constraint: fmt.Sprintf("must contain at most %d items, got %d", l.Max, n)}
		}
		return nil
	}
	return nil
}
