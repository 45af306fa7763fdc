package model

import (
	"context"
	"fmt"
	"math"
	"strconv"
)

// ValidationError carries the full ordered list of field-level problems
// found in a payload. It is a value result, not control flow: the engine
// collects every applicable error instead of stopping at the first.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "validation failed: " + e.Errors[0]
	}
	return fmt.Sprintf("validation failed: %d errors", len(e.Errors))
}

// Validate checks payload against the rule set, resolving cross-type
// references through check. The returned slice is nil when the payload is
// valid. A non-nil error reports a checker failure (e.g. a database error),
// not a data-shape problem.
func (rs *RuleSet) Validate(ctx context.Context, payload Payload, check ReferenceChecker) ([]string, error) {
	var errs []string

	for _, f := range rs.Fields {
		value, present := payload[f.Name]

		if f.Required && isEmpty(value, present) {
			errs = append(errs, fmt.Sprintf("Field '%s' is required", f.Name))
			continue
		}
		if !present || value == nil {
			continue
		}

		if !f.Kind.matches(value) {
			errs = append(errs, fmt.Sprintf("Field '%s' must be %s %s", f.Name, f.Kind.article(), f.Kind))
		}

		if f.ReferenceType != "" && check != nil {
			id, numeric := coerceID(value)
			exists := false
			if numeric {
				var err error
				exists, err = check(ctx, f.ReferenceType, id)
				if err != nil {
					return nil, fmt.Errorf("check reference %s for field %q: %w", f.ReferenceType, f.Name, err)
				}
			}
			if !exists {
				errs = append(errs, fmt.Sprintf("Field '%s' references non-existent %s with id %v", f.Name, f.ReferenceType, value))
			}
		}

		if f.Predicate != nil {
			if perr := f.Predicate(value); perr != nil {
				errs = append(errs, perr.Error())
			}
		}
	}

	return errs, nil
}

// isEmpty reports whether a value counts as missing for a required field:
// absent, null, or the empty string.
func isEmpty(value any, present bool) bool {
	if !present || value == nil {
		return true
	}
	s, ok := value.(string)
	return ok && s == ""
}

func (k FieldKind) matches(value any) bool {
	switch k {
	case KindString:
		_, ok := value.(string)
		return ok
	case KindNumber:
		switch n := value.(type) {
		case float64:
			return !math.IsNaN(n)
		case int, int64:
			return true
		}
		return false
	case KindBoolean:
		_, ok := value.(bool)
		return ok
	case KindArray:
		_, ok := value.([]any)
		return ok
	case KindObject:
		_, ok := value.(map[string]any)
		return ok
	}
	return false
}

// coerceID converts a payload value to a record id. JSON numbers arrive as
// float64 and are truncated; numeric strings are parsed. Anything else is
// not an id: the reference check reports it as non-existent, never as an
// error.
func coerceID(value any) (int64, bool) {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
