package model

import "context"

// FieldKind identifies the JSON type a payload field must carry.
type FieldKind string

const (
	KindString  FieldKind = "string"
	KindNumber  FieldKind = "number"
	KindBoolean FieldKind = "boolean"
	KindArray   FieldKind = "array"
	KindObject  FieldKind = "object"
)

// article returns the indefinite article used in type-mismatch messages.
func (k FieldKind) article() string {
	switch k {
	case KindArray, KindObject:
		return "an"
	}
	return "a"
}

// ReferenceChecker reports whether a record of the given type with the given
// id exists. Implementations are bound to the enclosing transaction so that
// lookups see uncommitted work from earlier steps of the same mutation.
type ReferenceChecker func(ctx context.Context, recordType string, id int64) (bool, error)

// FieldRule declares the constraints on a single payload field.
type FieldRule struct {
	// Name is the payload key this rule applies to.
	Name string
	// Kind is the required JSON type of the value.
	Kind FieldKind
	// Required rejects absent, null, and empty-string values.
	Required bool
	// ReferenceType, when set, requires the value to be the id of an
	// existing record of that type.
	ReferenceType string
	// Predicate, when set, runs a custom check on the value; a non-nil
	// error is reported verbatim.
	Predicate func(value any) error
}

// RuleSet is the ordered list of field rules for one record type. Types
// without a rule set accept any payload; a RuleSet only ever narrows.
type RuleSet struct {
	Fields []FieldRule
}
