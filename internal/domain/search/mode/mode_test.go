package mode

import "testing"

func TestIsValid(t *testing.T) {
	for _, m := range []Mode{Perfect, Partial, Fuzzy, Related, Regex} {
		if !m.IsValid() {
			t.Errorf("%q should be valid", m)
		}
	}
	for _, m := range []Mode{"", "exact", "PERFECT", "semantic"} {
		if m.IsValid() {
			t.Errorf("%q should be invalid", m)
		}
	}
}

func TestUsesIndex(t *testing.T) {
	if Regex.UsesIndex() {
		t.Error("regex mode must bypass the index")
	}
	for _, m := range []Mode{Perfect, Partial, Fuzzy, Related} {
		if !m.UsesIndex() {
			t.Errorf("%q should use the index", m)
		}
	}
}
