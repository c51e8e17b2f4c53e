package job

import (
	"context"
	"errors"
	"testing"
)

func TestDocumentKey_Stable(t *testing.T) {
	t.Parallel()
	if DocumentKey(42) != "document/42" {
		t.Fatalf("unexpected key %q", DocumentKey(42))
	}
	if DocumentKey(42) != DocumentKey(42) {
		t.Fatal("key derivation must be deterministic")
	}
}

func TestShardLabel_Deterministic(t *testing.T) {
	t.Parallel()
	a := ShardLabel(SessionKey("session-1"))
	b := ShardLabel(SessionKey("session-1"))
	if a != b {
		t.Fatalf("labels differ: %q vs %q", a, b)
	}
}

func TestJobFunc_RunsClosure(t *testing.T) {
	t.Parallel()
	ran := false
	j := New(func(context.Context) error { ran = true; return nil })
	if err := j.Run(context.Background()); err != nil {
		t.Fatalf("run error: %v", err)
	}
	if !ran {
		t.Fatal("closure did not run")
	}
}

func TestJobFunc_Nil(t *testing.T) {
	t.Parallel()
	var j jobFunc
	if err := j.Run(context.Background()); !errors.Is(err, ErrNilJobFunc) {
		t.Fatalf("expected ErrNilJobFunc, got %v", err)
	}
}
