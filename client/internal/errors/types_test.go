package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestFromStatus_Classification(t *testing.T) {
	t.Parallel()
	cases := []struct {
		status int
		want   Kind
	}{
		{http.StatusConflict, KindConflict},
		{http.StatusNotFound, KindNotFound},
		{http.StatusBadRequest, KindValidation},
		{http.StatusUnprocessableEntity, KindValidation},
		{http.StatusInternalServerError, KindServer},
		{http.StatusBadGateway, KindServer},
		{http.StatusTeapot, KindServer},
	}
	for _, c := range cases {
		if got := FromStatus("op", c.status, "").Kind; got != c.want {
			t.Fatalf("status %d: got %v want %v", c.status, got, c.want)
		}
	}
}

func TestErrorString(t *testing.T) {
	t.Parallel()
	e := FromStatus("upload file", http.StatusConflict, `{"message":"duplicate"}`)
	if got := e.Error(); got != "[conflict] HTTP 409: upload file: status 409" {
		t.Fatalf("unexpected error string %q", got)
	}
	n := NewNetworkError("get file", errors.New("connection refused"))
	if got := n.Error(); got != "[network] get file: connection refused" {
		t.Fatalf("unexpected error string %q", got)
	}
}

func TestHelpers_MatchThroughWrapping(t *testing.T) {
	t.Parallel()
	base := FromStatus("upload file", http.StatusConflict, "")
	wrapped := fmt.Errorf("resolver: %w", base)
	if !IsConflict(wrapped) {
		t.Fatal("IsConflict must match through wrapping")
	}
	if IsNotFound(wrapped) || IsValidation(wrapped) {
		t.Fatal("unrelated helpers must not match")
	}
	if KindOf(wrapped) != KindConflict {
		t.Fatalf("KindOf: got %v", KindOf(wrapped))
	}
	if KindOf(errors.New("plain")) != KindNetwork {
		t.Fatal("unclassified errors default to network")
	}
}

func TestValidationError(t *testing.T) {
	t.Parallel()
	e := NewValidationError(errors.New("author is required"))
	if !IsValidation(e) {
		t.Fatal("expected validation kind")
	}
	if e.StatusCode != 0 {
		t.Fatalf("validation errors carry no status, got %d", e.StatusCode)
	}
}
