package linktree

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParse_Nesting(t *testing.T) {
	forest := Parse("A\n    B\n        C\n    D\n")
	if len(forest) != 1 || forest[0].Keyword != "A" {
		t.Fatalf("forest = %v, want single root A", forest)
	}
	a := forest[0]
	if len(a.Children) != 2 || a.Children[0].Keyword != "B" || a.Children[1].Keyword != "D" {
		t.Fatalf("A.children = %v, want [B D]", a.Children)
	}
	b := a.Children[0]
	if len(b.Children) != 1 || b.Children[0].Keyword != "C" {
		t.Fatalf("B.children = %v, want [C]", b.Children)
	}
	if b.Children[0].Parent != b || b.Parent != a {
		t.Error("parent back-references not set")
	}
}

func TestParse_MultipleRoots(t *testing.T) {
	forest := Parse("A\n    B\nC\n    D\n")
	if len(forest) != 2 {
		t.Fatalf("len(forest) = %d, want 2", len(forest))
	}
	if forest[0].Keyword != "A" || forest[1].Keyword != "C" {
		t.Errorf("roots = %q, %q", forest[0].Keyword, forest[1].Keyword)
	}
}

func TestParse_DedentJump(t *testing.T) {
	// Dedent from depth 2 straight back to depth 0.
	forest := Parse("A\n    B\n        C\nD\n")
	if len(forest) != 2 || forest[1].Keyword != "D" {
		t.Fatalf("forest = %v, want [A D] at top level", forest)
	}
	if forest[1].Depth != 0 {
		t.Errorf("D depth = %d, want 0", forest[1].Depth)
	}
}

func TestParse_BlankLinesSkipped(t *testing.T) {
	forest := Parse("A\n\n    B\n\n\n    C\n")
	if len(forest) != 1 {
		t.Fatalf("len(forest) = %d, want 1", len(forest))
	}
	if len(forest[0].Children) != 2 {
		t.Errorf("A.children = %d, want 2; blank lines must not reset depth", len(forest[0].Children))
	}
}

// Indentation that is not an exact multiple of the unit rounds its depth
// down. 3 spaces parse as depth 0, 6 spaces as depth 1. This is a tolerance
// of the format, kept for compatibility with hand-edited files.
func TestParse_MisalignedIndentRoundsDown(t *testing.T) {
	forest := Parse("A\n   B\n      C\n")
	if len(forest) != 2 {
		t.Fatalf("len(forest) = %d, want 2: 3-space B rounds down to depth 0", len(forest))
	}
	b := forest[1]
	if b.Keyword != "B" || b.Depth != 0 {
		t.Fatalf("B = %q depth %d, want depth 0", b.Keyword, b.Depth)
	}
	if len(b.Children) != 1 || b.Children[0].Keyword != "C" || b.Children[0].Depth != 1 {
		t.Errorf("B.children = %v, want [C] at depth 1", b.Children)
	}
}

func TestParse_Empty(t *testing.T) {
	if forest := Parse(""); len(forest) != 0 {
		t.Errorf("Parse(\"\") = %v, want empty", forest)
	}
}

func TestParseFile_Missing(t *testing.T) {
	forest, err := ParseFile(filepath.Join(t.TempDir(), "nope.txt"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if len(forest) != 0 {
		t.Errorf("forest = %v, want empty", forest)
	}
}

func TestParseFile_Reads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.txt")
	if err := os.WriteFile(path, []byte("X\n    Y\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	forest, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(forest) != 1 || forest[0].Keyword != "X" {
		t.Errorf("forest = %v", forest)
	}
}

func TestAllKeywords(t *testing.T) {
	forest := Parse("A\n    B\n        C\n    D\n")
	set := forest[0].AllKeywords()
	for _, k := range []string{"A", "B", "C", "D"} {
		if _, ok := set[k]; !ok {
			t.Errorf("missing keyword %q in %v", k, set)
		}
	}
	if len(set) != 4 {
		t.Errorf("len(set) = %d, want 4", len(set))
	}
}

func TestFind(t *testing.T) {
	forest := Parse("A\n    B\nC\n")
	if n := Find(forest, "B"); n == nil || n.Keyword != "B" {
		t.Errorf("Find(B) = %v", n)
	}
	if n := Find(forest, "Z"); n != nil {
		t.Errorf("Find(Z) = %v, want nil", n)
	}
}
