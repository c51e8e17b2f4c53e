package fetchcache

import "fmt"

// KeyKind discriminates the composite Key variant.
type KeyKind uint8

const (
	KindNone KeyKind = iota
	KindDocument
	KindSearch
	KindSession
)

// SearchKey is the normalized search query rendered as comparable scalars so
// it can participate in structural key equality.
type SearchKey struct {
	Query       string
	Author      string
	FileType    string
	SearchField string
	Page        int
	Size        int
	SortBy      string
	SortOrder   string
}

// Key identifies one logical request. It is a variant over document id,
// normalized search query and chat session; two keys are the same request
// iff they are ==. Keys are used both for in-flight deduplication and for
// the last-key-wins staleness rule: consumers only ever read the entry for
// their current key, so a slow fetch for a superseded key can never
// overwrite what is rendered.
type Key struct {
	Kind     KeyKind
	Document int64
	Search   SearchKey
	Session  string
}

// DocumentKey builds the cache key for one document record.
func DocumentKey(id int64) Key {
	return Key{Kind: KindDocument, Document: id}
}

// SearchQueryKey builds the cache key for one normalized search query.
func SearchQueryKey(sk SearchKey) Key {
	return Key{Kind: KindSearch, Search: sk}
}

// SessionKey builds the cache key for one chat session's history.
func SessionKey(sessionID string) Key {
	return Key{Kind: KindSession, Session: sessionID}
}

// String renders a short label for logs and metrics.
func (k Key) String() string {
	switch k.Kind {
	case KindDocument:
		return fmt.Sprintf("document/%d", k.Document)
	case KindSearch:
		return fmt.Sprintf("search/%q", k.Search.Query)
	case KindSession:
		return "session/" + k.Session
	default:
		return "none"
	}
}
