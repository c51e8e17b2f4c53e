package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	apierrors "github.com/paperless/paperless-go/client/internal/errors"
	"github.com/paperless/paperless-go/client/internal/types"
)

func TestSearchDocuments_Success(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/documents/search" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var req types.SearchRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Query != "invoice" || req.Size != 100 || req.SortBy != "uploadTime" {
			t.Errorf("unexpected request %+v", req)
		}
		_ = json.NewEncoder(w).Encode(types.SearchResponse{
			Results:      []types.SearchResult{{DocumentID: 1, Filename: "invoice.pdf", Author: "Alice", FileType: "pdf"}},
			TotalHits:    1,
			TotalPages:   1,
			SearchTimeMs: 12,
		})
	}))
	defer srv.Close()

	got, err := SearchDocuments(context.Background(), srv.Client(), srv.URL, types.SearchRequest{
		Query: "invoice", Size: 100, SortBy: "uploadTime", SortOrder: "desc",
	})
	if err != nil || got.TotalHits != 1 || got.Results[0].Filename != "invoice.pdf" {
		t.Fatalf("SearchDocuments unexpected: got=%+v err=%v", got, err)
	}
}

func TestSearchDocuments_BlankQueryRejected(t *testing.T) {
	t.Parallel()
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hits++ }))
	defer srv.Close()

	_, err := SearchDocuments(context.Background(), srv.Client(), srv.URL, types.SearchRequest{})
	if !apierrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if hits != 0 {
		t.Fatal("blank query must never be dispatched")
	}
}

func TestSearchDocuments_ServerError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := SearchDocuments(context.Background(), srv.Client(), srv.URL, types.SearchRequest{Query: types.WildcardQuery})
	if err == nil || apierrors.KindOf(err) != apierrors.KindServer {
		t.Fatalf("expected server error, got %v", err)
	}
}
