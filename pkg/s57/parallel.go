package s57

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/golang/glog"
)

// decodeFile is replaced in tests.
var decodeFile = DecodeFile

// DecodeFiles decodes many exchange files, concurrently when opts.Parallel
// is set. Every file gets its own session and map; nothing is shared
// between workers.
//
// Charts are returned in the order of paths, failed files omitted. With
// SkipErrors each failure is collected as "path: error"; without it the
// first failure is returned alone and no charts are returned. Queued files
// are then skipped and DecodeFiles returns once in-flight decodes finish.
//
// Example:
//
//	charts, errs := s57.DecodeFiles(paths, s57.LoadOptions{
//	    Decode:     s57.DefaultDecodeOptions(),
//	    Parallel:   true,
//	    Workers:    8,
//	    SkipErrors: true,
//	    Progress: func(loaded, total int) {
//	        fmt.Printf("\rDecoding: %d/%d", loaded, total)
//	    },
//	})
func DecodeFiles(paths []string, opts LoadOptions) ([]*Chart, []error) {
	if len(paths) == 0 {
		return []*Chart{}, nil
	}

	if !opts.Parallel {
		return decodeFilesSerial(paths, opts)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	type decodeResult struct {
		index int
		chart *Chart
		err   error
	}

	// Both channels are sized for every path so workers never block after
	// an early return.
	jobs := make(chan int, len(paths))
	results := make(chan decodeResult, len(paths))
	done := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range jobs {
				select {
				case <-done:
					return
				default:
				}
				chart, err := decodeFile(paths[index], opts.Decode)
				results <- decodeResult{index: index, chart: chart, err: err}
			}
		}()
	}

	for i := range paths {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	decoded := make([]*Chart, len(paths))
	var errs []error
	loaded := 0

	for result := range results {
		loaded++
		if opts.Progress != nil {
			opts.Progress(loaded, len(paths))
		}

		if result.err != nil {
			err := fmt.Errorf("%s: %w", paths[result.index], result.err)
			logLoadError(opts, err)
			if !opts.SkipErrors {
				close(done)
				wg.Wait()
				return nil, []error{err}
			}
			errs = append(errs, err)
			continue
		}
		decoded[result.index] = result.chart
	}

	charts := make([]*Chart, 0, len(paths))
	for _, c := range decoded {
		if c != nil {
			charts = append(charts, c)
		}
	}
	glog.V(1).Infof("decoded %d of %d files with %d workers", len(charts), len(paths), workers)
	return charts, errs
}

// decodeFilesSerial decodes one file at a time (Parallel=false).
func decodeFilesSerial(paths []string, opts LoadOptions) ([]*Chart, []error) {
	charts := make([]*Chart, 0, len(paths))
	var errs []error

	for i, path := range paths {
		chart, err := decodeFile(path, opts.Decode)
		if opts.Progress != nil {
			opts.Progress(i+1, len(paths))
		}
		if err != nil {
			err := fmt.Errorf("%s: %w", path, err)
			logLoadError(opts, err)
			if !opts.SkipErrors {
				return nil, []error{err}
			}
			errs = append(errs, err)
			continue
		}
		charts = append(charts, chart)
	}

	return charts, errs
}

func logLoadError(opts LoadOptions, err error) {
	if opts.ErrorLog != nil {
		fmt.Fprintf(opts.ErrorLog, "Error decoding chart: %v\n", err)
	}
}
