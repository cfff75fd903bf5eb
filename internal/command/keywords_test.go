package command

import (
	"reflect"
	"testing"

	"github.com/starford/raido/internal/models"
)

func TestKeywordCandidates_FrequencyOrder(t *testing.T) {
	bundles := map[int]*models.Bundle{
		1: {Keywords: "net, dns"},
		2: {Keywords: "net; disk"},
		3: {Keywords: "NET"},
	}
	got := KeywordCandidates(bundles, 0)
	if len(got) != 3 || got[0] != "net" {
		t.Fatalf("candidates = %v, want net first", got)
	}
	// dns and disk both occur once; alphabetical tie-break.
	if got[1] != "disk" || got[2] != "dns" {
		t.Errorf("tie-break order = %v, want [disk dns] after net", got[1:])
	}
}

func TestKeywordCandidates_Limit(t *testing.T) {
	bundles := map[int]*models.Bundle{
		1: {Keywords: "a,b,c,d"},
	}
	got := KeywordCandidates(bundles, 2)
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
}

func TestKeywordCandidates_EmptyAndBlank(t *testing.T) {
	bundles := map[int]*models.Bundle{
		1: {Keywords: ""},
		2: {Keywords: " , ; "},
	}
	if got := KeywordCandidates(bundles, 0); len(got) != 0 {
		t.Errorf("candidates = %v, want empty", got)
	}
	if got := KeywordCandidates(map[int]*models.Bundle{}, 0); !reflect.DeepEqual(got, []string{}) {
		t.Errorf("candidates of no bundles = %#v, want empty slice", got)
	}
}
