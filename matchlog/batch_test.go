package matchlog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func writeLog(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProcessFiles(t *testing.T) {
	r := kuhn3(t)
	dir := t.TempDir()
	good := writeLog(t, dir, "a.log",
		sampleHandLine+"\n"+
			"STATE:0:rfc:Js|Ks|Qs:-2|-1|3:Bluffer|HITSZ_CS|hyperborean3pk.RMPUE\n"+
			"SCORE:-3|1|2:Bluffer|HITSZ_CS|hyperborean3pk.RMPUE\n")
	partial := writeLog(t, dir, "b.log",
		"STATE:1:garbage\n"+sampleHandLine+"\n")
	missing := filepath.Join(dir, "gone.log")

	var mu sync.Mutex
	perPath := make(map[string]int)
	results, err := ProcessFiles(context.Background(), r,
		[]string{good, partial, missing}, 2,
		func(path string, h Hand) error {
			mu.Lock()
			perPath[path]++
			mu.Unlock()
			return nil
		})
	if err == nil {
		t.Fatal("a missing file should surface as a partial failure")
	}

	// Outcomes come back in input order and the healthy units completed.
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Path != good || results[0].Err != nil || results[0].Hands != 2 || results[0].Skipped != 0 {
		t.Errorf("good file result %+v", results[0])
	}
	if results[1].Err != nil || results[1].Hands != 1 || results[1].Skipped != 1 {
		t.Errorf("partial file result %+v", results[1])
	}
	if results[2].Err == nil || !errors.Is(results[2].Err, os.ErrNotExist) {
		t.Errorf("missing file result %+v", results[2])
	}
	if perPath[good] != 2 || perPath[partial] != 1 {
		t.Errorf("callback counts %v", perPath)
	}
}

func TestProcessFilesCallbackFailureFailsOnlyItsUnit(t *testing.T) {
	r := kuhn3(t)
	dir := t.TempDir()
	a := writeLog(t, dir, "a.log", sampleHandLine+"\n")
	b := writeLog(t, dir, "b.log", sampleHandLine+"\n")

	boom := errors.New("boom")
	results, err := ProcessFiles(context.Background(), r, []string{a, b}, 1,
		func(path string, h Hand) error {
			if path == a {
				return boom
			}
			return nil
		})
	if !errors.Is(err, boom) {
		t.Fatalf("expected the unit failure back, got %v", err)
	}
	if !errors.Is(results[0].Err, boom) {
		t.Errorf("failing unit result %+v", results[0])
	}
	if results[1].Err != nil || results[1].Hands != 1 {
		t.Errorf("sibling unit should finish cleanly, got %+v", results[1])
	}
}

func TestProcessFilesHonorsCancellation(t *testing.T) {
	r := kuhn3(t)
	dir := t.TempDir()
	path := writeLog(t, dir, "a.log", sampleHandLine+"\n"+sampleHandLine+"\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := ProcessFiles(ctx, r, []string{path}, 0,
		func(path string, h Hand) error { return nil })
	if err == nil {
		t.Fatal("expected cancellation to surface")
	}
	if results[0].Hands == 2 {
		t.Error("cancelled run should not have processed every hand")
	}
}
