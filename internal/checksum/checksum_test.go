package checksum

import "testing"

func TestSum_Deterministic(t *testing.T) {
	a := Sum([]byte("hello"))
	b := Sum([]byte("hello"))
	if a != b {
		t.Error("same input should produce same digest")
	}
	if len(a) != 64 {
		t.Errorf("digest length = %d, want 64 hex chars", len(a))
	}
}

func TestSumFields_BoundariesMatter(t *testing.T) {
	// "ab"+"c" must not collide with "a"+"bc".
	if SumFields("ab", "c") == SumFields("a", "bc") {
		t.Error("field boundaries should affect the digest")
	}
}
