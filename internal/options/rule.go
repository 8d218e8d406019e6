package options

import (
	"fmt"

	"github.com/alfredjeanlab/worldchart/internal/model"
)

// Rule patches a schema when the selected value of Key equals Value.
// Patch entries replace the whole entry for their key; a disabled patch
// entry makes the option unavailable.
type Rule struct {
	Key   model.OptionKey
	Value string
	Patch Schema
}

// Matches reports whether the rule's trigger is satisfied by sel.
func (r Rule) Matches(sel model.OptionSet) bool {
	return sel.Get(r.Key) == r.Value
}

// Apply returns s with the patch merged over it.
func (r Rule) Apply(s Schema) Schema {
	for _, k := range r.Patch.Keys() {
		e, _ := r.Patch.Get(k)
		s = s.With(k, e)
	}
	return s
}

// validateRules checks that every key a rule references exists in base, so
// that rule evaluation is total.
func validateRules(base Schema, rules []Rule) error {
	for i, r := range rules {
		if r.Key != model.OptionType {
			return fmt.Errorf("rule %d: trigger key %q is not supported", i, r.Key)
		}
		if _, ok := base.Get(r.Key); !ok {
			return fmt.Errorf("rule %d: trigger key %q missing from base schema", i, r.Key)
		}
		for _, k := range r.Patch.Keys() {
			if _, ok := base.Get(k); !ok {
				return fmt.Errorf("rule %d: patch key %q missing from base schema", i, k)
			}
		}
	}
	return nil
}
