// Package schema holds the per-type validation rule sets. Validation is
// opt-in: a type with no registered rule set accepts any payload. Rule sets
// are static configuration assembled once at startup and never mutated
// while the server is running.
package schema

import (
	"context"
	"sort"

	"github.com/alfredjeanlab/refdata/internal/model"
)

// Registry maps record types to their optional rule sets.
type Registry struct {
	rules map[string]*model.RuleSet
}

// NewRegistry builds a registry from the given rule sets.
func NewRegistry(rules map[string]*model.RuleSet) *Registry {
	if rules == nil {
		rules = map[string]*model.RuleSet{}
	}
	return &Registry{rules: rules}
}

// Lookup returns the rule set for a type, or nil if the type is unvalidated.
func (r *Registry) Lookup(recordType string) *model.RuleSet {
	return r.rules[recordType]
}

// HasValidation reports whether a rule set is registered for the type.
func (r *Registry) HasValidation(recordType string) bool {
	_, ok := r.rules[recordType]
	return ok
}

// Types returns the sorted list of types that have a rule set.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.rules))
	for t := range r.rules {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Validate checks payload against the rule set registered for recordType.
// No rule set means no validation: the payload is accepted as-is. The
// returned slice holds every field-level problem in rule order; a non-nil
// error reports a reference-checker failure, not a data problem.
func (r *Registry) Validate(ctx context.Context, recordType string, payload model.Payload, check model.ReferenceChecker) ([]string, error) {
	rs := r.rules[recordType]
	if rs == nil {
		return nil, nil
	}
	return rs.Validate(ctx, payload, check)
}

// Default returns the registry the server ships with. Add rule sets here
// only for types that need them; everything else stays accept-all.
//
// Example:
//
//	"INVOICE_CONCEPT": {Fields: []model.FieldRule{
//		{Name: "code", Kind: model.KindString, Required: true},
//		{Name: "costTypeId", Kind: model.KindNumber, Required: true, ReferenceType: "COST_TYPE"},
//	}},
func Default() *Registry {
	return NewRegistry(map[string]*model.RuleSet{})
}
