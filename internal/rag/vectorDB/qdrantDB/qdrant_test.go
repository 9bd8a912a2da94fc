package qdrantDB

import (
	"context"
	"errors"
	"testing"

	"github.com/akolanti/PDFChat/internal/appErrors"
	"github.com/akolanti/PDFChat/internal/config"
	"github.com/akolanti/PDFChat/internal/domain/commonModels"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestToFilter(t *testing.T) {
	if toFilter(nil) != nil {
		t.Error("empty filter should not produce a qdrant filter")
	}
	f := toFilter(commonModels.Filter{config.SourceFileKey: "invoice.pdf"})
	if len(f.GetMust()) != 1 {
		t.Fatalf("expected 1 condition, got %d", len(f.GetMust()))
	}
	field := f.GetMust()[0].GetField()
	if field.GetKey() != config.SourceFileKey || field.GetMatch().GetKeyword() != "invoice.pdf" {
		t.Errorf("unexpected condition %v", field)
	}
}

func TestFromPayload(t *testing.T) {
	chunk := commonModels.Chunk{
		Text:         "Total: $42",
		SourceFile:   "invoice.pdf",
		PageMetadata: map[string]any{commonModels.MetaPage: 1, commonModels.MetaSource: "uploads/invoice.pdf"},
	}
	payload := qdrant.NewValueMap(toPayload(chunk))

	got := fromPayload("id-1", payload)
	if got.Text != chunk.Text || got.SourceFile != chunk.SourceFile || got.Id != "id-1" {
		t.Errorf("unexpected chunk %+v", got)
	}
	if got.PageMetadata[commonModels.MetaPage] != int64(1) {
		t.Errorf("page = %v (%T)", got.PageMetadata[commonModels.MetaPage], got.PageMetadata[commonModels.MetaPage])
	}
	if _, ok := got.PageMetadata[config.ContentKey]; ok {
		t.Error("content should not be copied into page metadata")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want appErrors.Kind
	}{
		{"nil", nil, ""},
		{"deadline", status.Error(codes.DeadlineExceeded, "slow"), appErrors.KindTimeout},
		{"unavailable", status.Error(codes.Unavailable, "down"), appErrors.KindUpstream},
		{"plain", errors.New("dial failed"), appErrors.KindUpstream},
		{"context deadline", context.DeadlineExceeded, appErrors.KindTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := appErrors.KindOf(classify("op", tt.err)); got != tt.want {
				t.Errorf("kind = %q, want %q", got, tt.want)
			}
		})
	}
}
