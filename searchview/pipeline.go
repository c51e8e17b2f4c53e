// Package searchview turns raw filter edits into debounced, deduplicated
// search requests and derives facet lists from the current result set.
// Keystrokes coalesce under a quiet-period timer; only the last filter
// state observed when the timer fires reaches the network, and results are
// slotted by their normalized query key so a slow superseded request can
// never replace a newer one on screen.
package searchview

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/paperless/paperless-go/client"
	"github.com/paperless/paperless-go/fetchcache"
)

const (
	// DefaultDebounce is the quiet period after the last filter edit
	// before a search is dispatched.
	DefaultDebounce = 300 * time.Millisecond
	// DefaultPageSize is deliberately generous; the result view does not
	// paginate.
	DefaultPageSize  = 100
	DefaultSortBy    = "uploadTime"
	DefaultSortOrder = "desc"
)

// Searcher is the slice of the API client the pipeline needs.
// *client.Client satisfies it.
type Searcher interface {
	SearchDocuments(ctx context.Context, req client.SearchRequest) (*client.SearchResponse, error)
}

// Filters is the raw, un-normalized filter state as the user edits it.
type Filters struct {
	Text        string
	Author      string
	FileType    string
	SearchField string
}

// Results is a render snapshot of the current query's outcome.
type Results struct {
	Response *client.SearchResponse
	Loading  bool
	// Stale marks a previous query's response kept visible while the
	// current one loads.
	Stale bool
	Err   error
}

// Pipeline owns one search view. Create with New, release with Close.
type Pipeline struct {
	searcher  Searcher
	cache     *fetchcache.Controller[*client.SearchResponse]
	debounce  time.Duration
	logger    zerolog.Logger
	onResults func(*client.SearchResponse, error)

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	filters Filters
	current fetchcache.Key
	hasKey  bool
	timer   *time.Timer
	wg      sync.WaitGroup
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithDebounce overrides the quiet period.
func WithDebounce(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.debounce = d
		}
	}
}

// WithOnResults registers a callback invoked when a dispatched search
// resolves and its query is still the current one.
func WithOnResults(fn func(*client.SearchResponse, error)) Option {
	return func(p *Pipeline) { p.onResults = fn }
}

// WithLogger routes pipeline diagnostics to a specific logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// New builds an idle pipeline. No search runs until a filter changes or
// Flush is called.
func New(s Searcher, opts ...Option) *Pipeline {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pipeline{
		searcher: s,
		cache:    fetchcache.New[*client.SearchResponse](fetchcache.WithKeepPrevious[*client.SearchResponse]()),
		debounce: DefaultDebounce,
		logger:   log.Logger,
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Close cancels the pending debounce timer and any in-flight dispatch.
func (p *Pipeline) Close() {
	p.mu.Lock()
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.mu.Unlock()
	p.cancel()
	p.wg.Wait()
}

// SetText updates the free-text term and restarts the debounce window.
func (p *Pipeline) SetText(text string) { p.edit(func(f *Filters) { f.Text = text }) }

// SetAuthor updates the author filter and restarts the debounce window.
func (p *Pipeline) SetAuthor(author string) { p.edit(func(f *Filters) { f.Author = author }) }

// SetFileType updates the file-type filter and restarts the debounce window.
func (p *Pipeline) SetFileType(ft string) { p.edit(func(f *Filters) { f.FileType = ft }) }

// SetSearchField restricts matching to one document field.
func (p *Pipeline) SetSearchField(field string) { p.edit(func(f *Filters) { f.SearchField = field }) }

// ClearFilters resets every filter to its default and schedules a search
// for the unfiltered view.
func (p *Pipeline) ClearFilters() { p.edit(func(f *Filters) { *f = Filters{} }) }

func (p *Pipeline) edit(mutate func(*Filters)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	mutate(&p.filters)
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.debounce, p.fire)
}

// fire runs when the quiet period elapses.
func (p *Pipeline) fire() {
	if p.ctx.Err() != nil {
		return
	}
	p.mu.Lock()
	req := buildRequest(p.filters)
	key := requestKey(req)
	p.current = key
	p.hasKey = true
	p.wg.Add(1)
	p.mu.Unlock()

	p.cache.FetchAsync(p.ctx, key, func(ctx context.Context) (*client.SearchResponse, error) {
		return p.searcher.SearchDocuments(ctx, req)
	}, func(resp *client.SearchResponse, err error) {
		defer p.wg.Done()
		if err != nil && p.ctx.Err() == nil {
			p.logger.Debug().Err(err).Str("query", req.Query).Msg("search failed")
		}

		p.mu.Lock()
		isCurrent := p.current == key
		cb := p.onResults
		p.mu.Unlock()
		if isCurrent && cb != nil {
			cb(resp, err)
		}
	})
}

// Flush skips the debounce wait and runs the search for the present filter
// state synchronously. It returns the response for that exact query.
func (p *Pipeline) Flush(ctx context.Context) (*client.SearchResponse, error) {
	p.mu.Lock()
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	req := buildRequest(p.filters)
	key := requestKey(req)
	p.current = key
	p.hasKey = true
	p.mu.Unlock()

	return p.cache.Fetch(ctx, key, func(ctx context.Context) (*client.SearchResponse, error) {
		return p.searcher.SearchDocuments(ctx, req)
	})
}

// Filters returns a copy of the raw filter state.
func (p *Pipeline) Filters() Filters {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.filters
}

// HasActiveFilters reports whether any filter deviates from its default.
// It gates the "clear filters" affordance.
func (p *Pipeline) HasActiveFilters() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	f := p.filters
	return strings.TrimSpace(f.Text) != "" || f.Author != "" || f.FileType != "" || f.SearchField != ""
}

// Results returns the snapshot for the current query. While a new query
// loads the previous query's response stays visible, marked Stale.
func (p *Pipeline) Results() Results {
	p.mu.Lock()
	key, ok := p.current, p.hasKey
	p.mu.Unlock()
	if !ok {
		return Results{}
	}
	r := p.cache.Lookup(key)
	return Results{Response: r.Data, Loading: r.Loading, Stale: r.Stale, Err: r.Err}
}

// Authors returns the author facet for the displayed result set, sorted
// ascending with duplicates removed.
func (p *Pipeline) Authors() []string {
	return p.facet(func(r client.SearchResult) string { return r.Author })
}

// FileTypes returns the file-type facet for the displayed result set,
// sorted ascending with duplicates removed.
func (p *Pipeline) FileTypes() []string {
	return p.facet(func(r client.SearchResult) string { return r.FileType })
}

func (p *Pipeline) facet(field func(client.SearchResult) string) []string {
	res := p.Results()
	if res.Response == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(res.Response.Results))
	var out []string
	for _, item := range res.Response.Results {
		v := field(item)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// buildRequest normalizes raw filters into the wire request. A blank text
// term becomes the match-all wildcard; paging and sorting are fixed.
func buildRequest(f Filters) client.SearchRequest {
	query := strings.TrimSpace(f.Text)
	if query == "" {
		query = client.WildcardQuery
	}
	return client.SearchRequest{
		Query:       query,
		Author:      f.Author,
		FileType:    f.FileType,
		SearchField: f.SearchField,
		Page:        0,
		Size:        DefaultPageSize,
		SortBy:      DefaultSortBy,
		SortOrder:   DefaultSortOrder,
	}
}

func requestKey(req client.SearchRequest) fetchcache.Key {
	return fetchcache.SearchQueryKey(fetchcache.SearchKey{
		Query:       req.Query,
		Author:      req.Author,
		FileType:    req.FileType,
		SearchField: req.SearchField,
		Page:        req.Page,
		Size:        req.Size,
		SortBy:      req.SortBy,
		SortOrder:   req.SortOrder,
	})
}
