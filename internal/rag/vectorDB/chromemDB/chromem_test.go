package chromemDB

import (
	"context"
	"testing"

	"github.com/akolanti/PDFChat/internal/config"
	"github.com/akolanti/PDFChat/internal/domain/commonModels"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewChromemStore(config.ChromemConfig{}, "test-index")
	if err != nil {
		t.Fatalf("NewChromemStore failed: %v", err)
	}
	return s
}

func seed(t *testing.T, s *Store) {
	t.Helper()
	chunks := []commonModels.Chunk{
		{Id: "a1", Text: "alpha one", SourceFile: "a.pdf", PageMetadata: map[string]any{commonModels.MetaPage: 1}},
		{Id: "a2", Text: "alpha two", SourceFile: "a.pdf", PageMetadata: map[string]any{commonModels.MetaPage: 2}},
		{Id: "b1", Text: "beta one", SourceFile: "b.pdf", PageMetadata: map[string]any{commonModels.MetaPage: 1}},
	}
	vectors := [][]float32{{1, 0, 0}, {0.9, 0.1, 0}, {0, 1, 0}}
	if err := s.Upsert(context.Background(), chunks, vectors); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
}

func TestSearch_EmptyCollection(t *testing.T) {
	s := newTestStore(t)
	res, err := s.Search(context.Background(), []float32{1, 0, 0}, 3, nil)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(res) != 0 {
		t.Errorf("expected no results, got %d", len(res))
	}
}

func TestSearch_ClampsKAndFilters(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)
	ctx := context.Background()

	all, err := s.Search(ctx, []float32{1, 0, 0}, 1000, nil)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 results, got %d", len(all))
	}
	if all[0].Id != "a1" {
		t.Errorf("closest chunk = %s, want a1", all[0].Id)
	}
	if all[0].PageMetadata[commonModels.MetaPage] != 1 {
		t.Errorf("page metadata = %v", all[0].PageMetadata)
	}

	filtered, err := s.Search(ctx, []float32{1, 0, 0}, 1, commonModels.Filter{config.SourceFileKey: "b.pdf"})
	if err != nil {
		t.Fatalf("filtered Search failed: %v", err)
	}
	if len(filtered) != 1 || filtered[0].SourceFile != "b.pdf" {
		t.Errorf("unexpected filtered result %+v", filtered)
	}
}

func TestDeleteBySource(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)
	ctx := context.Background()

	if err := s.DeleteBySource(ctx, "a.pdf"); err != nil {
		t.Fatalf("DeleteBySource failed: %v", err)
	}
	if s.Count() != 1 {
		t.Errorf("expected 1 chunk left, got %d", s.Count())
	}
	if err := s.DeleteBySource(ctx, "missing.pdf"); err != nil {
		t.Errorf("deleting an unknown source should be a no-op, got %v", err)
	}
}

func TestUpsert_LengthMismatch(t *testing.T) {
	s := newTestStore(t)
	err := s.Upsert(context.Background(), []commonModels.Chunk{{Id: "x", Text: "x"}}, nil)
	if err == nil {
		t.Error("expected mismatch error")
	}
}
