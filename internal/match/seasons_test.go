package match

import (
	"path/filepath"
	"testing"

	"mediaorg/internal/naming"
	"mediaorg/internal/scan"
)

func candidateFor(t *testing.T, path string) scan.Candidate {
	t.Helper()
	cand := scan.Candidate{Path: path, Role: scan.RoleVideo}
	if parsed, ok := naming.Parse(path); ok {
		cand.Parsed = parsed
		cand.HasParsed = true
	}
	return cand
}

func TestResolveSeasonsFolderHint(t *testing.T) {
	cand := candidateFor(t, filepath.Join("/src", "Season 02", "Episode 5.mkv"))
	assignments, conflicts, _ := ResolveSeasons([]scan.Candidate{cand})
	if len(conflicts) != 0 {
		t.Fatalf("unexpected conflicts: %+v", conflicts)
	}
	if len(assignments) != 1 || assignments[0].Season != 2 || assignments[0].Source != SeasonFromFolder {
		t.Fatalf("got %+v, want season 2 from folder", assignments)
	}
}

func TestResolveSeasonsFilenameHint(t *testing.T) {
	cand := candidateFor(t, filepath.Join("/src", "Show.S03E01.mkv"))
	assignments, conflicts, _ := ResolveSeasons([]scan.Candidate{cand})
	if len(conflicts) != 0 {
		t.Fatalf("unexpected conflicts: %+v", conflicts)
	}
	if len(assignments) != 1 || assignments[0].Season != 3 || assignments[0].Source != SeasonFromFilename {
		t.Fatalf("got %+v, want season 3 from filename", assignments)
	}
}

func TestResolveSeasonsAgreementIsNotAConflict(t *testing.T) {
	cand := candidateFor(t, filepath.Join("/src", "Season 02", "Show.S02E04.mkv"))
	assignments, conflicts, _ := ResolveSeasons([]scan.Candidate{cand})
	if len(conflicts) != 0 {
		t.Fatalf("agreeing hints flagged as conflict: %+v", conflicts)
	}
	if len(assignments) != 1 || assignments[0].Season != 2 {
		t.Fatalf("got %+v, want season 2", assignments)
	}
}

func TestResolveSeasonsDisagreementConflicts(t *testing.T) {
	cand := candidateFor(t, filepath.Join("/src", "Season 02", "Show.S03E04.mkv"))
	assignments, conflicts, _ := ResolveSeasons([]scan.Candidate{cand})
	if len(assignments) != 0 {
		t.Fatalf("conflicted file still assigned: %+v", assignments)
	}
	if len(conflicts) != 1 {
		t.Fatalf("got %d conflicts, want 1", len(conflicts))
	}
	if conflicts[0].FolderSeason != 2 || conflicts[0].FileSeason != 3 {
		t.Fatalf("conflict = %+v, want folder 2 vs file 3", conflicts[0])
	}
}

func TestResolveSeasonsDefaultsToSeasonOne(t *testing.T) {
	cand := candidateFor(t, filepath.Join("/src", "Episode Five.mkv"))
	assignments, _, warnings := ResolveSeasons([]scan.Candidate{cand})
	if len(assignments) != 1 || assignments[0].Season != 1 || assignments[0].Source != SeasonDefaulted {
		t.Fatalf("got %+v, want defaulted season 1", assignments)
	}
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1", len(warnings))
	}
}

func TestResolveSeasonsSpecialsFolder(t *testing.T) {
	cand := candidateFor(t, filepath.Join("/src", "Specials", "Holiday Special.mkv"))
	assignments, conflicts, warnings := ResolveSeasons([]scan.Candidate{cand})
	if len(conflicts) != 0 || len(warnings) != 0 {
		t.Fatalf("unexpected conflicts/warnings: %+v %+v", conflicts, warnings)
	}
	if len(assignments) != 1 || assignments[0].Season != 0 || assignments[0].Source != SeasonFromFolder {
		t.Fatalf("got %+v, want specials season 0 from folder", assignments)
	}
}

func TestGroupBySeason(t *testing.T) {
	assignments := []SeasonAssignment{
		{Candidate: scan.Candidate{Path: "a"}, Season: 1},
		{Candidate: scan.Candidate{Path: "b"}, Season: 2},
		{Candidate: scan.Candidate{Path: "c"}, Season: 1},
	}
	grouped := GroupBySeason(assignments)
	if len(grouped) != 2 || len(grouped[1]) != 2 || len(grouped[2]) != 1 {
		t.Fatalf("unexpected grouping: %+v", grouped)
	}
}
