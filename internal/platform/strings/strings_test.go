package strings

import "testing"

func TestIfEmpty(t *testing.T) {
	if got := IfEmpty(nil, []string{"a"}); len(got) != 1 || got[0] != "a" {
		t.Fatalf("IfEmpty(nil) = %v", got)
	}
	if got := IfEmpty([]string{"b"}, []string{"a"}); len(got) != 1 || got[0] != "b" {
		t.Fatalf("IfEmpty(non-empty) = %v", got)
	}
}

func TestPtrDeref(t *testing.T) {
	if Ptr("") != nil {
		t.Fatalf("Ptr of empty should be nil")
	}
	p := Ptr("x")
	if Deref(p) != "x" || Deref(nil) != "" {
		t.Fatalf("Deref mismatch")
	}
}

func TestMustString(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for blank")
		}
	}()
	_ = MustString("ok", "name")
	_ = MustString("  ", "name")
}
