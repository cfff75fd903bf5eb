package command

import (
	"reflect"
	"testing"
)

func TestNormalize_Basic(t *testing.T) {
	got := Normalize("ls -la\ncat foo\n")
	want := []string{"ls -la", "cat foo"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize = %v, want %v", got, want)
	}
}

func TestNormalize_Empty(t *testing.T) {
	if got := Normalize(""); len(got) != 0 {
		t.Errorf("Normalize(\"\") = %v, want empty", got)
	}
}

func TestNormalize_DropsBlankLines(t *testing.T) {
	got := Normalize("a\n\n   \nb\n\t\nc")
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize = %v, want %v", got, want)
	}
}

func TestNormalize_TrimsAndPreservesOrder(t *testing.T) {
	got := Normalize("  second thoughts first  \n\tthen this\n")
	want := []string{"second thoughts first", "then this"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize = %v, want %v", got, want)
	}
}

func TestNormalize_CRLF(t *testing.T) {
	got := Normalize("a\r\nb\r\n")
	want := []string{"a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize CRLF = %v, want %v", got, want)
	}
}
