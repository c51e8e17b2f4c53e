package searchview

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/paperless/paperless-go/client"
)

type fakeSearcher struct {
	mu       sync.Mutex
	requests []client.SearchRequest
	respond  func(req client.SearchRequest) (*client.SearchResponse, error)
}

func (f *fakeSearcher) SearchDocuments(ctx context.Context, req client.SearchRequest) (*client.SearchResponse, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	fn := f.respond
	f.mu.Unlock()
	if fn != nil {
		return fn(req)
	}
	return &client.SearchResponse{}, nil
}

func (f *fakeSearcher) calls() []client.SearchRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]client.SearchRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

func resultsFor(names ...string) *client.SearchResponse {
	resp := &client.SearchResponse{}
	for i, n := range names {
		resp.Results = append(resp.Results, client.SearchResult{
			DocumentID: int64(i + 1),
			Filename:   n,
		})
	}
	resp.TotalHits = int64(len(names))
	return resp
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition never held")
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestDebounceCoalescesRapidEdits(t *testing.T) {
	t.Parallel()
	fs := &fakeSearcher{}
	p := New(fs, WithDebounce(30*time.Millisecond))
	defer p.Close()

	p.SetText("t")
	p.SetText("ta")
	p.SetText("tax")
	p.SetAuthor("kim")

	waitFor(t, func() bool { return len(fs.calls()) >= 1 })
	time.Sleep(60 * time.Millisecond)

	calls := fs.calls()
	if len(calls) != 1 {
		t.Fatalf("issued %d requests, want exactly 1", len(calls))
	}
	if calls[0].Query != "tax" || calls[0].Author != "kim" {
		t.Fatalf("request used intermediate state: %+v", calls[0])
	}
}

func TestFlushNormalizesBlankQuery(t *testing.T) {
	t.Parallel()
	fs := &fakeSearcher{}
	p := New(fs)
	defer p.Close()

	p.SetText("   ")
	if _, err := p.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	calls := fs.calls()
	if len(calls) != 1 {
		t.Fatalf("issued %d requests, want 1", len(calls))
	}
	req := calls[0]
	if req.Query != client.WildcardQuery {
		t.Fatalf("blank text sent as %q, want wildcard", req.Query)
	}
	if req.Page != 0 || req.Size != DefaultPageSize {
		t.Fatalf("paging = %d/%d, want 0/%d", req.Page, req.Size, DefaultPageSize)
	}
	if req.SortBy != DefaultSortBy || req.SortOrder != DefaultSortOrder {
		t.Fatalf("sort = %s %s, want %s %s", req.SortBy, req.SortOrder, DefaultSortBy, DefaultSortOrder)
	}
}

func TestBlankAndWildcardBuildIdenticalRequests(t *testing.T) {
	t.Parallel()
	a := buildRequest(Filters{Text: ""})
	b := buildRequest(Filters{Text: "*"})
	if a != b {
		t.Fatalf("normalization not idempotent: %+v vs %+v", a, b)
	}
}

func TestSlowSupersededQueryCannotOverwriteNewer(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	fs := &fakeSearcher{}
	fs.respond = func(req client.SearchRequest) (*client.SearchResponse, error) {
		if req.Query == "old" {
			<-release
			return resultsFor("old.pdf"), nil
		}
		return resultsFor("new.pdf"), nil
	}
	p := New(fs, WithDebounce(5*time.Millisecond))
	defer p.Close()

	p.SetText("old")
	waitFor(t, func() bool { return len(fs.calls()) == 1 })

	p.SetText("new")
	waitFor(t, func() bool {
		r := p.Results()
		return r.Response != nil && !r.Loading && !r.Stale
	})

	close(release)
	time.Sleep(20 * time.Millisecond)

	r := p.Results()
	if len(r.Response.Results) != 1 || r.Response.Results[0].Filename != "new.pdf" {
		t.Fatalf("stale response overwrote newer one: %+v", r.Response)
	}
}

func TestPreviousResultsRemainVisibleWhileNewQueryLoads(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	fs := &fakeSearcher{}
	fs.respond = func(req client.SearchRequest) (*client.SearchResponse, error) {
		if req.Query == "slow" {
			<-release
		}
		return resultsFor(req.Query + ".pdf"), nil
	}
	p := New(fs, WithDebounce(5*time.Millisecond))
	defer p.Close()

	p.SetText("first")
	waitFor(t, func() bool {
		r := p.Results()
		return r.Response != nil && !r.Loading
	})

	p.SetText("slow")
	waitFor(t, func() bool { return p.Results().Loading })

	r := p.Results()
	if r.Response == nil || !r.Stale {
		t.Fatalf("previous results dropped during refetch: %+v", r)
	}
	if r.Response.Results[0].Filename != "first.pdf" {
		t.Fatalf("unexpected carried value: %+v", r.Response.Results)
	}
	close(release)
}

func TestOnResultsFiresOnlyForCurrentQuery(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	fs := &fakeSearcher{}
	fs.respond = func(req client.SearchRequest) (*client.SearchResponse, error) {
		if req.Query == "old" {
			<-release
		}
		return resultsFor(req.Query + ".pdf"), nil
	}

	var mu sync.Mutex
	var delivered []string
	p := New(fs,
		WithDebounce(5*time.Millisecond),
		WithOnResults(func(resp *client.SearchResponse, err error) {
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				delivered = append(delivered, resp.Results[0].Filename)
			}
		}))
	defer p.Close()

	p.SetText("old")
	waitFor(t, func() bool { return len(fs.calls()) == 1 })
	p.SetText("new")
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(delivered) == 1
	})
	close(release)
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(delivered) != 1 || delivered[0] != "new.pdf" {
		t.Fatalf("delivered = %v, want only new.pdf", delivered)
	}
}

func TestFacetsSortedAndDeduplicated(t *testing.T) {
	t.Parallel()
	fs := &fakeSearcher{}
	fs.respond = func(req client.SearchRequest) (*client.SearchResponse, error) {
		return &client.SearchResponse{Results: []client.SearchResult{
			{DocumentID: 1, Author: "zoe", FileType: "pdf"},
			{DocumentID: 2, Author: "anna", FileType: "docx"},
			{DocumentID: 3, Author: "zoe", FileType: "pdf"},
			{DocumentID: 4, Author: "mike", FileType: ""},
		}}, nil
	}
	p := New(fs)
	defer p.Close()
	if _, err := p.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	authors := p.Authors()
	if len(authors) != 3 || authors[0] != "anna" || authors[1] != "mike" || authors[2] != "zoe" {
		t.Fatalf("authors facet = %v", authors)
	}
	types := p.FileTypes()
	if len(types) != 2 || types[0] != "docx" || types[1] != "pdf" {
		t.Fatalf("fileTypes facet = %v", types)
	}
}

func TestHasActiveFiltersAndClear(t *testing.T) {
	t.Parallel()
	fs := &fakeSearcher{}
	p := New(fs, WithDebounce(5*time.Millisecond))
	defer p.Close()

	if p.HasActiveFilters() {
		t.Fatal("fresh pipeline must report no active filters")
	}
	p.SetText("   ")
	if p.HasActiveFilters() {
		t.Fatal("whitespace-only text is not an active filter")
	}
	p.SetFileType("pdf")
	if !p.HasActiveFilters() {
		t.Fatal("file-type filter must count as active")
	}

	p.ClearFilters()
	if p.HasActiveFilters() {
		t.Fatal("filters survive ClearFilters")
	}
	waitFor(t, func() bool {
		for _, req := range fs.calls() {
			if req.Query == client.WildcardQuery && req.FileType == "" {
				return true
			}
		}
		return false
	})
}
