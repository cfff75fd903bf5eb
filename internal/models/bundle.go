// Package models defines the domain types for Raido.
package models

import "time"

// Bundle is a named group of operational commands with descriptive metadata.
// CommandText is a free-text block; one command per line. Memos mirror the
// normalized command list one-to-one.
type Bundle struct {
	ID              int           `json:"id"`
	Part            string        `json:"part"`
	Name            string        `json:"name"`
	CommandText     string        `json:"command_text"`
	Description     string        `json:"description"`
	Keywords        string        `json:"keywords"`
	ExpectedOutcome string        `json:"expected_outcome"`
	Interpretation  string        `json:"interpretation"`
	UpdatedDate     time.Time     `json:"updated_date"`
	Todo            string        `json:"todo"`
	Memos           []CommandMemo `json:"memos,omitempty"`
}

// CommandMemo annotates a single command within a bundle. Order is the
// 1-based position in the bundle's normalized command list. Its lifecycle is
// fully derived: memos are rebuilt whenever the parent's command text changes.
type CommandMemo struct {
	BundleID    int    `json:"bundle_id"`
	Order       int    `json:"order"`
	CommandText string `json:"command_text"`
	MemoText    string `json:"memo_text"`
	NoteLink    string `json:"note_link"`
}

// LinkEntry is a standalone reference record, optionally pointing at a
// bundle command. BundleID 0 means unattached.
type LinkEntry struct {
	ID           int    `json:"id"`
	BundleID     int    `json:"bundle_id,omitempty"`
	CommandOrder int    `json:"command_order,omitempty"`
	URL          string `json:"url"`
	Description  string `json:"description"`
	Tag          string `json:"tag"`
}

// TaggedRecord is a flat procedure record whose Tag is expected to match a
// keyword in the link tree.
type TaggedRecord struct {
	Code  string `json:"code"`
	Title string `json:"title"`
	Link  string `json:"link"`
	Tag   string `json:"tag"`
}
