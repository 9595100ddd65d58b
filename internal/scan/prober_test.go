package scan

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"mediaorg/internal/logging"
)

func TestProbeDurationsFillsByPath(t *testing.T) {
	candidates := []Candidate{
		{Path: filepath.Join("/src", "a.mkv"), Role: RoleVideo},
		{Path: filepath.Join("/src", "b.mkv"), Role: RoleVideo},
		{Path: filepath.Join("/src", "c.srt"), Role: RoleSubtitle},
		{Path: filepath.Join("/src", "trailer.mkv"), Role: RoleExtra},
	}
	durations := map[string]float64{
		filepath.Join("/src", "a.mkv"):       1320,
		filepath.Join("/src", "b.mkv"):       2450,
		filepath.Join("/src", "trailer.mkv"): 95,
	}

	probe := func(ctx context.Context, path string) (float64, error) {
		seconds, ok := durations[path]
		if !ok {
			return 0, errors.New("unexpected probe target")
		}
		return seconds, nil
	}

	failures := ProbeDurations(context.Background(), logging.NewNop(), probe, candidates, 3)
	if failures != 0 {
		t.Fatalf("failures = %d, want 0", failures)
	}
	for _, cand := range candidates {
		want := durations[cand.Path]
		if cand.Role == RoleSubtitle {
			want = 0
		}
		if cand.DurationSeconds != want {
			t.Fatalf("%s: duration = %v, want %v", cand.Path, cand.DurationSeconds, want)
		}
	}
}

func TestProbeDurationsCountsFailures(t *testing.T) {
	candidates := []Candidate{
		{Path: "/src/a.mkv", Role: RoleVideo},
		{Path: "/src/broken.mkv", Role: RoleVideo},
	}
	probe := func(ctx context.Context, path string) (float64, error) {
		if filepath.Base(path) == "broken.mkv" {
			return 0, errors.New("probe exploded")
		}
		return 1000, nil
	}

	failures := ProbeDurations(context.Background(), logging.NewNop(), probe, candidates, 2)
	if failures != 1 {
		t.Fatalf("failures = %d, want 1", failures)
	}
	if candidates[0].DurationSeconds != 1000 {
		t.Fatalf("a.mkv duration = %v, want 1000", candidates[0].DurationSeconds)
	}
	if candidates[1].DurationSeconds != 0 {
		t.Fatalf("broken.mkv duration = %v, want 0", candidates[1].DurationSeconds)
	}
}

func TestProbeDurationsBoundsConcurrency(t *testing.T) {
	var mu sync.Mutex
	active, peak := 0, 0
	barrier := make(chan struct{})

	candidates := make([]Candidate, 8)
	for i := range candidates {
		candidates[i] = Candidate{Path: filepath.Join("/src", string(rune('a'+i))+".mkv"), Role: RoleVideo}
	}

	probe := func(ctx context.Context, path string) (float64, error) {
		mu.Lock()
		active++
		if active > peak {
			peak = active
		}
		mu.Unlock()
		<-barrier
		mu.Lock()
		active--
		mu.Unlock()
		return 100, nil
	}

	done := make(chan int)
	go func() {
		done <- ProbeDurations(context.Background(), logging.NewNop(), probe, candidates, 2)
	}()
	close(barrier)
	if failures := <-done; failures != 0 {
		t.Fatalf("failures = %d, want 0", failures)
	}
	if peak > 2 {
		t.Fatalf("observed %d concurrent probes, want at most 2", peak)
	}
}
