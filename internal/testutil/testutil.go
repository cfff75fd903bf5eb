// Package testutil provides shared helpers for building temp-dir backed
// services in tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/raido/internal/bundleservice"
	"github.com/starford/raido/internal/storage"
)

// TestService builds a Service over a fresh temp directory with one dataset
// ("main"), a small keyword tree, and two tagged records. It returns the
// service and the data directory.
func TestService(t *testing.T) (*bundleservice.Service, string) {
	t.Helper()
	dir := t.TempDir()

	tree := "Ops\n    Network\n        DNS\n    Disk\n"
	if err := os.WriteFile(filepath.Join(dir, "link_tree.txt"), []byte(tree), 0o644); err != nil {
		t.Fatal(err)
	}

	tagged := "Code,Title,Link,Tag\n" +
		"p1,Flush DNS cache,https://wiki/p1,DNS\n" +
		"p2,Replace failed disk,https://wiki/p2,Disk\n"
	if err := os.WriteFile(filepath.Join(dir, "tagged.csv"), []byte(tagged), 0o644); err != nil {
		t.Fatal(err)
	}

	svc, err := bundleservice.New(
		[]bundleservice.DatasetConfig{{
			ID:    "main",
			Label: "Main",
			Paths: storage.Paths{
				Bundles: filepath.Join(dir, "main_bundles.csv"),
				Memos:   filepath.Join(dir, "main_memos.csv"),
				Links:   filepath.Join(dir, "main_links.csv"),
			},
		}},
		filepath.Join(dir, "link_tree.txt"),
		filepath.Join(dir, "tagged.csv"),
	)
	if err != nil {
		t.Fatalf("New service: %v", err)
	}
	return svc, dir
}
