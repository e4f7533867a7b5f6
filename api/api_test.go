package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"poker-dealer-server/storage"
)

// fakeStore serves canned results keyed by id and records the listing
// arguments it was called with.
type fakeStore struct {
	matches    map[string]*storage.MatchResult
	byPlayer   map[string][]storage.MatchResult
	lastLimit  int
	lookupErr  error
	listCalled string
}

func (f *fakeStore) InsertMatchResult(ctx context.Context, res storage.MatchResult) (string, error) {
	return "", nil
}

func (f *fakeStore) GetMatchResult(ctx context.Context, id string) (*storage.MatchResult, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	return f.matches[id], nil
}

func (f *fakeStore) ListByPlayer(ctx context.Context, playerName string, limit int) ([]storage.MatchResult, error) {
	f.listCalled = playerName
	f.lastLimit = limit
	return f.byPlayer[playerName], nil
}

func (f *fakeStore) Close() {}

func newTestServer(store storage.ResultStore) *httptest.Server {
	mux := http.NewServeMux()
	NewHandler(store, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(mux)
	return httptest.NewServer(mux)
}

func TestGetMatch(t *testing.T) {
	store := &fakeStore{matches: map[string]*storage.MatchResult{
		"abc": {
			ID:        "abc",
			MatchName: "nightly",
			Game:      "kuhn.limit.2p",
			ScoreLine: "SCORE:2|-2:alice|bob",
			Names:     []string{"alice", "bob"},
			Totals:    []float64{2, -2},
		},
	}}
	srv := newTestServer(store)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/matches/abc")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var got storage.MatchResult
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.ID != "abc" || got.ScoreLine != "SCORE:2|-2:alice|bob" || len(got.Totals) != 2 {
		t.Errorf("unexpected result %+v", got)
	}
}

func TestGetMatchNotFound(t *testing.T) {
	srv := newTestServer(&fakeStore{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/matches/missing")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing match got status %d", resp.StatusCode)
	}
}

func TestGetMatchStoreFailure(t *testing.T) {
	srv := newTestServer(&fakeStore{lookupErr: errors.New("pool down")})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/matches/abc")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("store failure got status %d", resp.StatusCode)
	}
}

func TestListMatches(t *testing.T) {
	store := &fakeStore{byPlayer: map[string][]storage.MatchResult{
		"alice": {{ID: "m1", MatchName: "nightly"}, {ID: "m2", MatchName: "weekly"}},
	}}
	srv := newTestServer(store)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/matches?player=alice&limit=10")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var got []storage.MatchResult
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != "m1" {
		t.Errorf("unexpected listing %+v", got)
	}
	if store.listCalled != "alice" || store.lastLimit != 10 {
		t.Errorf("store called with %q limit %d", store.listCalled, store.lastLimit)
	}
}

func TestListMatchesValidation(t *testing.T) {
	srv := newTestServer(&fakeStore{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/matches")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing player got status %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/matches?player=alice&limit=-3")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("negative limit got status %d", resp.StatusCode)
	}
}
