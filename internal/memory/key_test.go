package memory

import "testing"

func TestDeriveKeyDeterministic(t *testing.T) {
	inputs := []string{"user-42", "user-43", "", "sessão com espaços e acentos", "a:b:c"}
	for _, in := range inputs {
		a := DeriveKey(in)
		b := DeriveKey(in)
		if a != b {
			t.Errorf("DeriveKey(%q) not deterministic: %q vs %q", in, a, b)
		}
	}
}

func TestDeriveKeyFixedLength(t *testing.T) {
	for _, in := range []string{"", "x", "a very long identifier that exceeds forty characters easily"} {
		if got := DeriveKey(in); len(got) != 40 {
			t.Errorf("DeriveKey(%q) length = %d, want 40 hex chars", in, len(got))
		}
	}
}

func TestDeriveKeyDistinguishesInputs(t *testing.T) {
	if DeriveKey("user-1") == DeriveKey("user-2") {
		t.Error("distinct inputs produced the same key")
	}
}

func TestDeriveKeyEmptyUsesPlaceholder(t *testing.T) {
	if DeriveKey("") != DeriveKey(emptyKeyPlaceholder) {
		t.Error("empty input should hash the placeholder literal")
	}
	// The placeholder must not collide with a common real identifier.
	if DeriveKey("") == DeriveKey("default") {
		t.Error("placeholder key collides with a plain identifier")
	}
}
