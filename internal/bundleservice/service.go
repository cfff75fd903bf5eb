// Package bundleservice holds the in-memory application state and implements
// every mutating and reading operation over it. State is loaded once from the
// CSV tables and rewritten wholesale after each mutation; a single mutex
// serializes writers, preserving the one-active-writer persistence model
// under concurrent HTTP handlers.
package bundleservice

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/checksum"
	"github.com/starford/raido/internal/command"
	"github.com/starford/raido/internal/linktree"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/storage"
)

// DatasetConfig describes one dataset to load at startup.
type DatasetConfig struct {
	ID    string
	Label string
	Image string
	Paths storage.Paths
}

// DatasetInfo is the public description of a configured dataset.
type DatasetInfo struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Image string `json:"image,omitempty"`
}

// BundleInput carries the writable bundle fields for create and update.
type BundleInput struct {
	Part            string
	Name            string
	CommandText     string
	Description     string
	Keywords        string
	ExpectedOutcome string
	Interpretation  string
	UpdatedDate     string
	Todo            string
}

// BundleSummary is a lightweight list item.
type BundleSummary struct {
	ID          int    `json:"id"`
	Part        string `json:"part"`
	Name        string `json:"name"`
	Keywords    string `json:"keywords"`
	UpdatedDate string `json:"updated_date"`
	Todo        string `json:"todo,omitempty"`
}

// BundleDetail is the full bundle representation, including the normalized
// command list and a revision checksum usable for If-Match updates.
type BundleDetail struct {
	models.Bundle
	Commands    []string `json:"commands"`
	UpdatedDate string   `json:"updated_date"`
	Revision    string   `json:"revision"`
}

// LinkInput carries the writable link fields.
type LinkInput struct {
	BundleID     int
	CommandOrder int
	URL          string
	Description  string
	Tag          string
}

// NotifyFunc receives change events ("bundle.created", "tree.updated", ...)
// with an entity reference such as "ds/3".
type NotifyFunc func(kind, ref string)

type dataset struct {
	info    DatasetInfo
	paths   storage.Paths
	bundles map[int]*models.Bundle
	links   map[int]models.LinkEntry
}

// Service is the application state container.
type Service struct {
	mu       sync.Mutex
	datasets map[string]*dataset
	order    []string

	treePath   string
	taggedPath string
	forest     []*linktree.Node
	records    []models.TaggedRecord

	notify NotifyFunc
}

// New loads every configured dataset plus the keyword-tree catalog and
// returns a ready Service. Missing CSV files yield empty collections.
func New(configs []DatasetConfig, treePath, taggedPath string) (*Service, error) {
	s := &Service{
		datasets:   make(map[string]*dataset, len(configs)),
		treePath:   treePath,
		taggedPath: taggedPath,
	}
	for _, cfg := range configs {
		d, err := loadDataset(cfg)
		if err != nil {
			return nil, fmt.Errorf("load dataset %s: %w", cfg.ID, err)
		}
		s.datasets[cfg.ID] = d
		s.order = append(s.order, cfg.ID)
	}
	if err := s.loadCatalog(); err != nil {
		return nil, err
	}
	return s, nil
}

func loadDataset(cfg DatasetConfig) (*dataset, error) {
	bundles, err := storage.LoadBundles(cfg.Paths.Bundles)
	if err != nil {
		return nil, err
	}
	memos, err := storage.LoadMemos(cfg.Paths.Memos)
	if err != nil {
		return nil, err
	}
	links, err := storage.LoadLinks(cfg.Paths.Links)
	if err != nil {
		return nil, err
	}
	for id, b := range bundles {
		b.Memos = memos[id]
	}
	return &dataset{
		info:    DatasetInfo{ID: cfg.ID, Label: cfg.Label, Image: cfg.Image},
		paths:   cfg.Paths,
		bundles: bundles,
		links:   links,
	}, nil
}

// SetNotify registers the change-event callback. Pass nil to disable.
func (s *Service) SetNotify(fn NotifyFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notify = fn
}

func (s *Service) emit(kind, ref string) {
	if s.notify != nil {
		s.notify(kind, ref)
	}
}

// Datasets lists the configured datasets in configuration order.
func (s *Service) Datasets(_ context.Context) []DatasetInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]DatasetInfo, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.datasets[id].info)
	}
	return out
}

// dataset looks up a dataset by id. Callers must hold the mutex.
func (s *Service) dataset(id string) (*dataset, error) {
	d, ok := s.datasets[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return d, nil
}

// ListBundles returns summaries, newest first, optionally filtered by a
// case-insensitive substring over name and keywords.
func (s *Service) ListBundles(_ context.Context, ds, query string) ([]BundleSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.dataset(ds)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(query)
	items := make([]*models.Bundle, 0, len(d.bundles))
	for _, b := range d.bundles {
		if q != "" &&
			!strings.Contains(strings.ToLower(b.Name), q) &&
			!strings.Contains(strings.ToLower(b.Keywords), q) {
			continue
		}
		items = append(items, b)
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].UpdatedDate.Equal(items[j].UpdatedDate) {
			return items[i].UpdatedDate.After(items[j].UpdatedDate)
		}
		return items[i].ID < items[j].ID
	})

	out := make([]BundleSummary, len(items))
	for i, b := range items {
		out[i] = BundleSummary{
			ID:          b.ID,
			Part:        b.Part,
			Name:        b.Name,
			Keywords:    b.Keywords,
			UpdatedDate: storage.FormatDate(b.UpdatedDate),
			Todo:        b.Todo,
		}
	}
	return out, nil
}

// GetBundle returns the full bundle, or apperr.ErrNotFound.
func (s *Service) GetBundle(_ context.Context, ds string, id int) (*BundleDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.dataset(ds)
	if err != nil {
		return nil, err
	}
	b, ok := d.bundles[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return detail(b), nil
}

// CreateBundle allocates the next ID, synchronizes memos against the command
// text, and persists the dataset.
func (s *Service) CreateBundle(_ context.Context, ds string, in BundleInput) (*BundleDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.dataset(ds)
	if err != nil {
		return nil, err
	}

	b := &models.Bundle{ID: command.NextID(d.bundles)}
	applyInput(b, in)
	b.Memos = command.SyncMemos(b.ID, nil, b.CommandText)
	d.bundles[b.ID] = b

	if err := saveDataset(d); err != nil {
		delete(d.bundles, b.ID)
		return nil, err
	}
	s.emit("bundle.created", fmt.Sprintf("%s/%d", ds, b.ID))
	return detail(b), nil
}

// UpdateBundle overwrites the writable fields and re-synchronizes memos. A
// non-empty ifMatch revision that no longer matches fails with ErrConflict.
func (s *Service) UpdateBundle(_ context.Context, ds string, id int, in BundleInput, ifMatch string) (*BundleDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.dataset(ds)
	if err != nil {
		return nil, err
	}
	b, ok := d.bundles[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	if ifMatch != "" && ifMatch != revision(b) {
		return nil, apperr.ErrConflict
	}

	prev := *b
	prevMemos := b.Memos
	applyInput(b, in)
	b.Memos = command.SyncMemos(b.ID, prevMemos, b.CommandText)

	if err := saveDataset(d); err != nil {
		*b = prev
		b.Memos = prevMemos
		return nil, err
	}
	s.emit("bundle.updated", fmt.Sprintf("%s/%d", ds, id))
	return detail(b), nil
}

// UpdateMemoNotes merges note edits into the bundle's memos by order.
// Unknown orders are ignored; memo structure is untouched.
func (s *Service) UpdateMemoNotes(_ context.Context, ds string, id int, updates []models.CommandMemo) (*BundleDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.dataset(ds)
	if err != nil {
		return nil, err
	}
	b, ok := d.bundles[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}

	command.ApplyNotes(b.Memos, updates)
	if err := saveDataset(d); err != nil {
		return nil, err
	}
	s.emit("bundle.updated", fmt.Sprintf("%s/%d", ds, id))
	return detail(b), nil
}

// DeleteBundle removes a bundle and its memos.
func (s *Service) DeleteBundle(_ context.Context, ds string, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.dataset(ds)
	if err != nil {
		return err
	}
	b, ok := d.bundles[id]
	if !ok {
		return apperr.ErrNotFound
	}
	delete(d.bundles, id)
	if err := saveDataset(d); err != nil {
		d.bundles[id] = b
		return err
	}
	s.emit("bundle.deleted", fmt.Sprintf("%s/%d", ds, id))
	return nil
}

// KeywordCandidates ranks bundle keywords by frequency.
func (s *Service) KeywordCandidates(_ context.Context, ds string, limit int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.dataset(ds)
	if err != nil {
		return nil, err
	}
	return command.KeywordCandidates(d.bundles, limit), nil
}

// ListLinks returns link entries sorted by ID.
func (s *Service) ListLinks(_ context.Context, ds string) ([]models.LinkEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.dataset(ds)
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(d.links))
	for id := range d.links {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]models.LinkEntry, len(ids))
	for i, id := range ids {
		out[i] = d.links[id]
	}
	return out, nil
}

// CreateLink allocates the next link ID and persists.
func (s *Service) CreateLink(_ context.Context, ds string, in LinkInput) (*models.LinkEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.dataset(ds)
	if err != nil {
		return nil, err
	}
	link := models.LinkEntry{
		ID:           command.NextID(d.links),
		BundleID:     in.BundleID,
		CommandOrder: in.CommandOrder,
		URL:          in.URL,
		Description:  in.Description,
		Tag:          in.Tag,
	}
	d.links[link.ID] = link
	if err := saveDataset(d); err != nil {
		delete(d.links, link.ID)
		return nil, err
	}
	s.emit("link.created", fmt.Sprintf("%s/%d", ds, link.ID))
	return &link, nil
}

// DeleteLink removes a link entry.
func (s *Service) DeleteLink(_ context.Context, ds string, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.dataset(ds)
	if err != nil {
		return err
	}
	link, ok := d.links[id]
	if !ok {
		return apperr.ErrNotFound
	}
	delete(d.links, id)
	if err := saveDataset(d); err != nil {
		d.links[id] = link
		return err
	}
	s.emit("link.deleted", fmt.Sprintf("%s/%d", ds, id))
	return nil
}

// ExportBundles streams the bundle table as CSV (with BOM) to w.
func (s *Service) ExportBundles(_ context.Context, ds string, w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.dataset(ds)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, "\uFEFF"); err != nil {
		return err
	}
	return storage.EncodeBundles(w, d.bundles)
}

// ExportMemos streams the memo table as CSV (with BOM) to w.
func (s *Service) ExportMemos(_ context.Context, ds string, w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.dataset(ds)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, "\uFEFF"); err != nil {
		return err
	}
	return storage.EncodeMemos(w, d.bundles)
}

// saveDataset rewrites all three CSV tables of a dataset.
func saveDataset(d *dataset) error {
	if err := storage.SaveBundles(d.paths.Bundles, d.bundles); err != nil {
		return err
	}
	if err := storage.SaveMemos(d.paths.Memos, d.bundles); err != nil {
		return err
	}
	return storage.SaveLinks(d.paths.Links, d.links)
}

func applyInput(b *models.Bundle, in BundleInput) {
	b.Part = in.Part
	b.Name = in.Name
	b.CommandText = strings.TrimSpace(in.CommandText)
	b.Description = in.Description
	b.Keywords = in.Keywords
	b.ExpectedOutcome = in.ExpectedOutcome
	b.Interpretation = in.Interpretation
	b.UpdatedDate = storage.ParseDate(in.UpdatedDate)
	b.Todo = in.Todo
}

// revision derives the optimistic-concurrency token from the writable fields.
func revision(b *models.Bundle) string {
	return checksum.SumFields(
		b.Part, b.Name, b.CommandText, b.Description, b.Keywords,
		b.ExpectedOutcome, b.Interpretation, storage.FormatDate(b.UpdatedDate), b.Todo,
	)
}

func detail(b *models.Bundle) *BundleDetail {
	cp := *b
	cp.Memos = append([]models.CommandMemo(nil), b.Memos...)
	return &BundleDetail{
		Bundle:      cp,
		Commands:    append([]string{}, command.Normalize(b.CommandText)...),
		UpdatedDate: storage.FormatDate(b.UpdatedDate),
		Revision:    revision(b),
	}
}
