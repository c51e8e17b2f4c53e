package fetchcache

import "testing"

func TestKeyEquality(t *testing.T) {
	t.Parallel()
	if DocumentKey(1) != DocumentKey(1) {
		t.Fatal("identical document keys must compare equal")
	}
	if DocumentKey(1) == DocumentKey(2) {
		t.Fatal("distinct document keys must differ")
	}
	a := SearchQueryKey(SearchKey{Query: "tax", Author: "kim", Page: 0, Size: 100})
	b := SearchQueryKey(SearchKey{Query: "tax", Author: "kim", Page: 0, Size: 100})
	if a != b {
		t.Fatal("identical search keys must compare equal")
	}
	c := SearchQueryKey(SearchKey{Query: "tax", Author: "kim", Page: 1, Size: 100})
	if a == c {
		t.Fatal("page change must produce a new key")
	}
	if DocumentKey(1) == SessionKey("1") {
		t.Fatal("kinds must not collide")
	}
}

func TestKeyString(t *testing.T) {
	t.Parallel()
	cases := map[Key]string{
		DocumentKey(42):                       "document/42",
		SearchQueryKey(SearchKey{Query: "*"}): `search/"*"`,
		SessionKey("session-1724-abc"):        "session/session-1724-abc",
		{}:                                    "none",
	}
	for key, want := range cases {
		if got := key.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}
