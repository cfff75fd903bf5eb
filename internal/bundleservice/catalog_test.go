package bundleservice_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/testutil"
)

func TestTree_AnnotatesNodesWithProcedures(t *testing.T) {
	svc, _ := testutil.TestService(t)
	views := svc.Tree(context.Background())
	if len(views) != 1 || views[0].Keyword != "Ops" {
		t.Fatalf("tree roots = %v, want [Ops]", views)
	}
	ops := views[0]
	// Ops subtree covers both DNS and Disk records.
	if len(ops.Procedures) != 2 {
		t.Errorf("Ops procedures = %d, want 2", len(ops.Procedures))
	}
	if len(ops.Children) != 2 {
		t.Fatalf("Ops children = %d, want 2", len(ops.Children))
	}
	network := ops.Children[0]
	if network.Keyword != "Network" || len(network.Procedures) != 1 {
		t.Errorf("Network = %q with %d procedures, want 1 (DNS)", network.Keyword, len(network.Procedures))
	}
}

func TestProceduresByKeyword(t *testing.T) {
	svc, _ := testutil.TestService(t)
	ctx := context.Background()

	got := svc.ProceduresByKeyword(ctx, "Network")
	if len(got) != 1 || got[0].Code != "p1" {
		t.Errorf("Network = %v, want DNS record", got)
	}
	if got := svc.ProceduresByKeyword(ctx, "Unknown"); len(got) != 0 {
		t.Errorf("unknown keyword = %v, want empty", got)
	}
}

func TestSearchProcedures_EmptyQueryPolicy(t *testing.T) {
	svc, _ := testutil.TestService(t)
	ctx := context.Background()

	if got := svc.SearchProcedures(ctx, "disk"); len(got) != 1 {
		t.Errorf("search disk = %v, want 1 hit", got)
	}
	if got := svc.SearchProcedures(ctx, ""); len(got) != 0 {
		t.Errorf("empty query = %v, want empty result", got)
	}
}

func TestAddProcedure_PersistsAndTrims(t *testing.T) {
	svc, _ := testutil.TestService(t)
	ctx := context.Background()

	rec, err := svc.AddProcedure(ctx, models.TaggedRecord{
		Code: " p3 ", Title: " Rotate disk logs ", Tag: " Disk ",
	})
	if err != nil {
		t.Fatalf("AddProcedure: %v", err)
	}
	if rec.Code != "p3" || rec.Tag != "Disk" {
		t.Errorf("record not trimmed: %+v", rec)
	}
	if got := svc.ProceduresByKeyword(ctx, "Disk"); len(got) != 2 {
		t.Errorf("Disk = %d records, want 2 after add", len(got))
	}
}

func TestReloadCatalog_PicksUpTreeEdits(t *testing.T) {
	svc, dir := testutil.TestService(t)
	ctx := context.Background()

	newTree := "Ops\n    Network\n    Backup\n"
	if err := os.WriteFile(filepath.Join(dir, "link_tree.txt"), []byte(newTree), 0o644); err != nil {
		t.Fatal(err)
	}

	var events []string
	svc.SetNotify(func(kind, ref string) { events = append(events, kind) })
	if err := svc.ReloadCatalog(); err != nil {
		t.Fatalf("ReloadCatalog: %v", err)
	}

	views := svc.Tree(ctx)
	if len(views[0].Children) != 2 || views[0].Children[1].Keyword != "Backup" {
		t.Errorf("reloaded tree = %v, want Backup child", views[0].Children)
	}
	if len(events) != 1 || events[0] != "tree.updated" {
		t.Errorf("events = %v, want [tree.updated]", events)
	}
}
