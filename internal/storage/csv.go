// Package storage reads and writes the flat CSV tables backing Raido.
// Collections load fully into memory and are rewritten wholesale on save;
// there is no incremental persistence.
package storage

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/starford/raido/internal/models"
)

// utf8BOM is written at the start of every file and tolerated on read so the
// tables survive round-trips through spreadsheet tools.
const utf8BOM = "\uFEFF"

var bundleColumns = []string{
	"ID", "Part", "Bundle Name", "Command", "Description", "Keywords",
	"Expected Outcome", "Interpretation", "Updated Date", "Todo",
}

var memoColumns = []string{"Bundle ID", "Command Order", "Command Text", "Memo Text", "Note Link"}

var linkColumns = []string{"ID", "Bundle ID", "Command Order", "URL", "Description", "Tag"}

var taggedColumns = []string{"Code", "Title", "Link", "Tag"}

// Paths holds the CSV file locations for one dataset.
type Paths struct {
	Bundles string
	Memos   string
	Links   string
}

// ParseDate parses a date cell. Accepted layouts, in order: ISO
// (2006-01-02), slash-separated, and day-first. Anything else falls back to
// today rather than failing the load.
func ParseDate(value string) time.Time {
	value = strings.TrimSpace(value)
	if value != "" {
		for _, layout := range []string{"2006-01-02", "2006/01/02", "02-01-2006"} {
			if t, err := time.Parse(layout, value); err == nil {
				return t
			}
		}
	}
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a date cell in the canonical ISO layout.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// row gives trimmed, header-addressed access to one CSV record.
type row struct {
	index  map[string]int
	fields []string
}

func (r row) get(col string) string {
	i, ok := r.index[col]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

func (r row) getInt(col string) int {
	n, _ := strconv.Atoi(r.get(col))
	return n
}

// readTable reads a CSV file into header-addressed rows. A missing file is
// an empty table, not an error.
func readTable(path string) ([]row, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("storage: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("storage: read header %s: %w", path, err)
	}
	index := make(map[string]int, len(header))
	for i, col := range header {
		if i == 0 {
			col = strings.TrimPrefix(col, utf8BOM)
		}
		index[strings.TrimSpace(col)] = i
	}

	var rows []row
	for {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("storage: read %s: %w", path, err)
		}
		rows = append(rows, row{index: index, fields: fields})
	}
	return rows, nil
}

// LoadBundles loads the bundle table keyed by ID. Rows without a positive ID
// are skipped. Memos are attached separately by the caller.
func LoadBundles(path string) (map[int]*models.Bundle, error) {
	rows, err := readTable(path)
	if err != nil {
		return nil, err
	}
	bundles := make(map[int]*models.Bundle, len(rows))
	for _, r := range rows {
		id := r.getInt("ID")
		if id <= 0 {
			continue
		}
		bundles[id] = &models.Bundle{
			ID:              id,
			Part:            r.get("Part"),
			Name:            r.get("Bundle Name"),
			CommandText:     r.get("Command"),
			Description:     r.get("Description"),
			Keywords:        r.get("Keywords"),
			ExpectedOutcome: r.get("Expected Outcome"),
			Interpretation:  r.get("Interpretation"),
			UpdatedDate:     ParseDate(r.get("Updated Date")),
			Todo:            r.get("Todo"),
		}
	}
	return bundles, nil
}

// LoadMemos loads the memo table grouped by bundle ID, sorted by order.
func LoadMemos(path string) (map[int][]models.CommandMemo, error) {
	rows, err := readTable(path)
	if err != nil {
		return nil, err
	}
	memos := make(map[int][]models.CommandMemo)
	for _, r := range rows {
		bundleID := r.getInt("Bundle ID")
		if bundleID <= 0 {
			continue
		}
		memos[bundleID] = append(memos[bundleID], models.CommandMemo{
			BundleID:    bundleID,
			Order:       r.getInt("Command Order"),
			CommandText: r.get("Command Text"),
			MemoText:    r.get("Memo Text"),
			NoteLink:    r.get("Note Link"),
		})
	}
	for id := range memos {
		ms := memos[id]
		sort.Slice(ms, func(i, j int) bool { return ms[i].Order < ms[j].Order })
	}
	return memos, nil
}

// LoadLinks loads the link table keyed by ID.
func LoadLinks(path string) (map[int]models.LinkEntry, error) {
	rows, err := readTable(path)
	if err != nil {
		return nil, err
	}
	links := make(map[int]models.LinkEntry, len(rows))
	for _, r := range rows {
		id := r.getInt("ID")
		if id <= 0 {
			continue
		}
		links[id] = models.LinkEntry{
			ID:           id,
			BundleID:     r.getInt("Bundle ID"),
			CommandOrder: r.getInt("Command Order"),
			URL:          r.get("URL"),
			Description:  r.get("Description"),
			Tag:          r.get("Tag"),
		}
	}
	return links, nil
}

// LoadTagged loads the tagged procedure records in file order, cells trimmed.
func LoadTagged(path string) ([]models.TaggedRecord, error) {
	rows, err := readTable(path)
	if err != nil {
		return nil, err
	}
	records := make([]models.TaggedRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, models.TaggedRecord{
			Code:  r.get("Code"),
			Title: r.get("Title"),
			Link:  r.get("Link"),
			Tag:   r.get("Tag"),
		})
	}
	return records, nil
}

// EncodeBundles writes the bundle table as CSV, rows sorted by ID.
func EncodeBundles(w io.Writer, bundles map[int]*models.Bundle) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(bundleColumns); err != nil {
		return err
	}
	for _, id := range sortedKeys(bundles) {
		b := bundles[id]
		rec := []string{
			strconv.Itoa(b.ID), b.Part, b.Name, b.CommandText, b.Description,
			b.Keywords, b.ExpectedOutcome, b.Interpretation,
			FormatDate(b.UpdatedDate), b.Todo,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// EncodeMemos writes every bundle's memos as CSV, bundles sorted by ID and
// memos by order.
func EncodeMemos(w io.Writer, bundles map[int]*models.Bundle) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(memoColumns); err != nil {
		return err
	}
	for _, id := range sortedKeys(bundles) {
		for _, m := range bundles[id].Memos {
			rec := []string{
				strconv.Itoa(m.BundleID), strconv.Itoa(m.Order),
				m.CommandText, m.MemoText, m.NoteLink,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// EncodeLinks writes the link table as CSV, rows sorted by ID. Optional
// bundle references render as empty cells rather than zeros.
func EncodeLinks(w io.Writer, links map[int]models.LinkEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(linkColumns); err != nil {
		return err
	}
	for _, id := range sortedKeys(links) {
		l := links[id]
		bundleID, order := "", ""
		if l.BundleID > 0 {
			bundleID = strconv.Itoa(l.BundleID)
		}
		if l.CommandOrder > 0 {
			order = strconv.Itoa(l.CommandOrder)
		}
		rec := []string{strconv.Itoa(l.ID), bundleID, order, l.URL, l.Description, l.Tag}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// EncodeTagged writes the tagged records as CSV in input order.
func EncodeTagged(w io.Writer, records []models.TaggedRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(taggedColumns); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write([]string{r.Code, r.Title, r.Link, r.Tag}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveBundles rewrites the bundle table atomically.
func SaveBundles(path string, bundles map[int]*models.Bundle) error {
	return saveTable(path, func(w io.Writer) error { return EncodeBundles(w, bundles) })
}

// SaveMemos rewrites the memo table atomically.
func SaveMemos(path string, bundles map[int]*models.Bundle) error {
	return saveTable(path, func(w io.Writer) error { return EncodeMemos(w, bundles) })
}

// SaveLinks rewrites the link table atomically.
func SaveLinks(path string, links map[int]models.LinkEntry) error {
	return saveTable(path, func(w io.Writer) error { return EncodeLinks(w, links) })
}

// SaveTagged rewrites the tagged-records table atomically.
func SaveTagged(path string, records []models.TaggedRecord) error {
	return saveTable(path, func(w io.Writer) error { return EncodeTagged(w, records) })
}

func saveTable(path string, encode func(io.Writer) error) error {
	var buf bytes.Buffer
	buf.WriteString(utf8BOM)
	if err := encode(&buf); err != nil {
		return fmt.Errorf("storage: encode %s: %w", path, err)
	}
	return writeAtomic(path, buf.Bytes())
}

// writeAtomic writes content via tmp file, fsync, and rename so readers
// never observe a half-written table.
func writeAtomic(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".raido-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

func sortedKeys[T any](m map[int]T) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
