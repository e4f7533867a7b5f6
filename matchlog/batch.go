package matchlog

import (
	"bufio"
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"poker-dealer-server/engine"
)

// FileResult reports one file's outcome from a batch run.
type FileResult struct {
	Path    string
	Hands   int // hand lines successfully processed
	Skipped int // undecodable lines skipped
	Err     error
}

// ProcessFiles applies fn to every decodable hand across the given log
// files, one unit of concurrency per file, at most workers files in flight
// at once (workers <= 0 means unbounded). There is no ordering guarantee
// between or within units, so fn must be safe for concurrent calls.
//
// An undecodable line is skipped and counted; a file that cannot be opened,
// or whose fn invocation returns an error, fails that file's unit only. All
// units are joined before returning. The per-file outcomes are always
// returned in input order; the error is the first unit failure, so callers
// can detect a partial failure without inspecting every result.
func ProcessFiles(ctx context.Context, r engine.Rules, paths []string, workers int, fn func(path string, h Hand) error) ([]FileResult, error) {
	results := make([]FileResult, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, path := range paths {
		g.Go(func() error {
			results[i] = processFile(ctx, r, path, fn)
			return nil
		})
	}
	g.Wait()

	for _, res := range results {
		if res.Err != nil {
			return results, res.Err
		}
	}
	return results, ctx.Err()
}

func processFile(ctx context.Context, r engine.Rules, path string, fn func(path string, h Hand) error) FileResult {
	res := FileResult{Path: path}

	f, err := os.Open(path)
	if err != nil {
		res.Err = err
		return res
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			res.Err = err
			return res
		}
		h, err := ParseHand(r, scanner.Text())
		if errors.Is(err, ErrNotHandLine) {
			continue
		}
		if err != nil {
			res.Skipped++
			continue
		}
		if err := fn(path, h); err != nil {
			res.Err = err
			return res
		}
		res.Hands++
	}
	if err := scanner.Err(); err != nil {
		res.Err = err
	}
	return res
}
