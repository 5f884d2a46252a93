package mode

import "testing"

func TestIsValid(t *testing.T) {
	valid := []Mode{Default, Landing, Strict}
	for _, m := range valid {
		if !m.IsValid() {
			t.Errorf("%q.IsValid() = false, want true", m)
		}
	}

	invalid := []Mode{"", "parent", "hybrid", "STRICT"}
	for _, m := range invalid {
		if m.IsValid() {
			t.Errorf("%q.IsValid() = true, want false", m)
		}
	}
}
