package storage

import (
	"context"
	"testing"
)

func TestNewStoreWithoutURLDisablesPersistence(t *testing.T) {
	store, err := NewStore(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if store != nil {
		t.Fatal("empty URL should yield a nil store")
	}

	// Every method must be a safe no-op on the nil store.
	id, err := store.InsertMatchResult(context.Background(), MatchResult{MatchName: "m"})
	if err != nil || id != "" {
		t.Errorf("nil store insert = %q, %v", id, err)
	}
	res, err := store.GetMatchResult(context.Background(), "whatever")
	if err != nil || res != nil {
		t.Errorf("nil store get = %v, %v", res, err)
	}
	list, err := store.ListByPlayer(context.Background(), "alice", 5)
	if err != nil || len(list) != 0 {
		t.Errorf("nil store list = %v, %v", list, err)
	}
	store.Close()
}
