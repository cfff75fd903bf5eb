package bundleservice

import (
	"context"
	"fmt"
	"strings"

	"github.com/starford/raido/internal/linktree"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/storage"
)

// TreeNodeView is a keyword node with its matched procedure records,
// serialized recursively for the tree endpoint.
type TreeNodeView struct {
	Keyword    string                `json:"keyword"`
	Depth      int                   `json:"depth"`
	Procedures []models.TaggedRecord `json:"procedures"`
	Children   []TreeNodeView        `json:"children"`
}

// loadCatalog reads the keyword tree and the tagged records. Callers must
// hold the mutex (or be inside New, before the service is shared).
func (s *Service) loadCatalog() error {
	forest, err := linktree.ParseFile(s.treePath)
	if err != nil {
		return fmt.Errorf("load keyword tree: %w", err)
	}
	records, err := storage.LoadTagged(s.taggedPath)
	if err != nil {
		return fmt.Errorf("load tagged records: %w", err)
	}
	s.forest = forest
	s.records = records
	return nil
}

// ReloadCatalog re-reads the keyword tree and tagged records from disk and
// publishes tree.updated. Used by the file watcher.
func (s *Service) ReloadCatalog() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadCatalog(); err != nil {
		return err
	}
	s.emit("tree.updated", s.treePath)
	return nil
}

// Tree returns the keyword forest, each node annotated with the records
// matching its subtree keyword set.
func (s *Service) Tree(_ context.Context) []TreeNodeView {
	s.mu.Lock()
	defer s.mu.Unlock()
	views := make([]TreeNodeView, 0, len(s.forest))
	for _, n := range s.forest {
		views = append(views, s.view(n))
	}
	return views
}

func (s *Service) view(n *linktree.Node) TreeNodeView {
	children := make([]TreeNodeView, 0, len(n.Children))
	for _, c := range n.Children {
		children = append(children, s.view(c))
	}
	return TreeNodeView{
		Keyword:    n.Keyword,
		Depth:      n.Depth,
		Procedures: linktree.FilterByTags(s.records, n.AllKeywords()),
		Children:   children,
	}
}

// ProceduresByKeyword returns the records matching the named node's subtree.
// Unknown keywords yield an empty list, never an error.
func (s *Service) ProceduresByKeyword(_ context.Context, keyword string) []models.TaggedRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return linktree.RecordsForKeyword(s.forest, s.records, keyword)
}

// SearchProcedures searches record titles. Empty queries yield an empty list.
func (s *Service) SearchProcedures(_ context.Context, query string) []models.TaggedRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return linktree.SearchByTitle(s.records, query)
}

// AddProcedure appends a tagged record and persists the table.
func (s *Service) AddProcedure(_ context.Context, rec models.TaggedRecord) (models.TaggedRecord, error) {
	rec.Code = strings.TrimSpace(rec.Code)
	rec.Title = strings.TrimSpace(rec.Title)
	rec.Link = strings.TrimSpace(rec.Link)
	rec.Tag = strings.TrimSpace(rec.Tag)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	if err := storage.SaveTagged(s.taggedPath, s.records); err != nil {
		s.records = s.records[:len(s.records)-1]
		return models.TaggedRecord{}, err
	}
	s.emit("tree.updated", s.taggedPath)
	return rec, nil
}
