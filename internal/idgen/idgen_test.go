package idgen

import (
	"regexp"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	for _, tc := range []struct {
		name string
		gen  func() (string, error)
		want string
	}{
		{"invocation", Invocation, InvocationPrefix},
		{"export", Export, ExportPrefix},
		{"custom", func() (string, error) { return New("x-") }, "x-"},
	} {
		id, err := tc.gen()
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if !strings.HasPrefix(id, tc.want) {
			t.Errorf("%s: %q lacks prefix %q", tc.name, id, tc.want)
		}
		if len(id) != len(tc.want)+Size {
			t.Errorf("%s: length %d, want %d", tc.name, len(id), len(tc.want)+Size)
		}
	}
}

func TestNew_CharsetAndUniqueness(t *testing.T) {
	pattern := regexp.MustCompile(`^inv-[a-zA-Z0-9]+$`)
	seen := make(map[string]struct{}, 5000)
	for i := range 5000 {
		id, err := Invocation()
		if err != nil {
			t.Fatalf("iteration %d: %v", i, err)
		}
		if !pattern.MatchString(id) {
			t.Fatalf("%q does not match charset", id)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate ID after %d generations: %q", i, id)
		}
		seen[id] = struct{}{}
	}
}
