package driver

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"ferroc/internal/trace"
)

// listMIRFiles returns every *.mir file under dir, sorted so runs are
// deterministic regardless of directory iteration order.
func listMIRFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".mir") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// LowerDir lowers every *.mir file under dir in parallel. Each unit gets
// its own decoder, type interner and emitter, so the goroutines share
// nothing but the result slice, which they index disjointly. Results come
// back in input order.
func LowerDir(ctx context.Context, dir string, opts Options) ([]UnitResult, error) {
	files, err := listMIRFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	tr := opts.tracer()
	span := trace.BeginSpan(tr, trace.ScopeDriver, "lower-dir")
	defer func() { span.End(fmt.Sprintf("%d units", len(files))) }()

	results := make([]UnitResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			res, err := LowerFile(gctx, path, opts)
			if err != nil {
				return err
			}
			// No mutex: index i is unique per goroutine.
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
