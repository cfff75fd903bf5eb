package command

import (
	"testing"

	"github.com/starford/raido/internal/models"
)

func TestSyncMemos_CountMatchesCommands(t *testing.T) {
	memos := SyncMemos(1, nil, "a\nb\n\nc\n")
	if len(memos) != 3 {
		t.Fatalf("len(memos) = %d, want 3", len(memos))
	}
	for i, m := range memos {
		if m.Order != i+1 {
			t.Errorf("memo[%d].Order = %d, want %d", i, m.Order, i+1)
		}
		if m.BundleID != 1 {
			t.Errorf("memo[%d].BundleID = %d, want 1", i, m.BundleID)
		}
	}
}

func TestSyncMemos_PreservesUnchangedPositions(t *testing.T) {
	existing := []models.CommandMemo{
		{BundleID: 7, Order: 2, CommandText: "b", MemoText: "keep", NoteLink: "http://n"},
	}
	memos := SyncMemos(7, existing, "a\nb\nc\n")
	if len(memos) != 3 {
		t.Fatalf("len(memos) = %d, want 3", len(memos))
	}
	if memos[1].MemoText != "keep" || memos[1].NoteLink != "http://n" {
		t.Errorf("position 2 payload = (%q, %q), want carried over", memos[1].MemoText, memos[1].NoteLink)
	}
	if memos[2].MemoText != "" || memos[2].NoteLink != "" {
		t.Errorf("new position 3 payload = (%q, %q), want empty", memos[2].MemoText, memos[2].NoteLink)
	}
}

func TestSyncMemos_ShiftLosesNotes(t *testing.T) {
	// Insertion at the front shifts every command; both position and text
	// must match, so the old notes are discarded even though the text
	// reappears at the new positions.
	existing := []models.CommandMemo{
		{BundleID: 1, Order: 1, CommandText: "a", MemoText: "note-a"},
		{BundleID: 1, Order: 2, CommandText: "b", MemoText: "note-b"},
	}
	memos := SyncMemos(1, existing, "x\na\nb\n")
	if len(memos) != 3 {
		t.Fatalf("len(memos) = %d, want 3", len(memos))
	}
	for i, m := range memos {
		if m.MemoText != "" {
			t.Errorf("memo[%d].MemoText = %q, want empty after shift", i, m.MemoText)
		}
	}
}

func TestSyncMemos_Idempotent(t *testing.T) {
	existing := []models.CommandMemo{
		{BundleID: 3, Order: 1, CommandText: "a", MemoText: "one"},
		{BundleID: 3, Order: 2, CommandText: "b", MemoText: "two"},
	}
	first := SyncMemos(3, existing, "a\nb")
	second := SyncMemos(3, first, "a\nb")
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("memo[%d] changed on second sync: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestSyncMemos_EmptyCommandText(t *testing.T) {
	existing := []models.CommandMemo{
		{BundleID: 1, Order: 1, CommandText: "a", MemoText: "gone"},
	}
	memos := SyncMemos(1, existing, "")
	if len(memos) != 0 {
		t.Errorf("len(memos) = %d, want 0 for empty command text", len(memos))
	}
}

func TestApplyNotes(t *testing.T) {
	memos := []models.CommandMemo{
		{Order: 1, CommandText: "a"},
		{Order: 2, CommandText: "b"},
	}
	ApplyNotes(memos, []models.CommandMemo{
		{Order: 2, MemoText: "updated", NoteLink: "http://x"},
		{Order: 9, MemoText: "ignored"},
	})
	if memos[0].MemoText != "" {
		t.Errorf("memo 1 should be untouched, got %q", memos[0].MemoText)
	}
	if memos[1].MemoText != "updated" || memos[1].NoteLink != "http://x" {
		t.Errorf("memo 2 = (%q, %q), want updated", memos[1].MemoText, memos[1].NoteLink)
	}
}
