package scan

import (
	"context"
	"log/slog"
	"sync"

	"mediaorg/internal/logging"
)

// ProbeFunc reports a file's duration in seconds. Implementations wrap an
// external probe (ffprobe or similar) outside this module. A returned error
// means the duration is unavailable for that file; it never aborts the batch.
type ProbeFunc func(ctx context.Context, path string) (float64, error)

// ProbeDurations fills DurationSeconds on each candidate using up to workers
// concurrent probe calls. Results are keyed by path, so completion order never
// affects which candidate receives which duration. Files whose probe fails
// keep a zero duration and are counted in the returned failure total.
func ProbeDurations(ctx context.Context, logger *slog.Logger, probe ProbeFunc, candidates []Candidate, workers int) int {
	if probe == nil || len(candidates) == 0 {
		return 0
	}
	if workers <= 0 {
		workers = 1
	}
	log := logging.NewComponentLogger(logger, "probe")

	type result struct {
		path    string
		seconds float64
		ok      bool
	}

	jobs := make(chan string)
	results := make(chan result)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				seconds, err := probe(ctx, path)
				if err != nil {
					log.Warn("duration probe failed",
						logging.String("path", path),
						logging.Error(err),
					)
					results <- result{path: path}
					continue
				}
				results <- result{path: path, seconds: seconds, ok: true}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, cand := range candidates {
			if cand.Role != RoleVideo && cand.Role != RoleExtra {
				continue
			}
			select {
			case jobs <- cand.Path:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	durations := make(map[string]float64, len(candidates))
	failures := 0
	for res := range results {
		if !res.ok {
			failures++
			continue
		}
		durations[res.path] = res.seconds
	}

	for i := range candidates {
		if seconds, ok := durations[candidates[i].Path]; ok {
			candidates[i].DurationSeconds = seconds
		}
	}
	return failures
}
