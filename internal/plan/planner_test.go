package plan

import (
	"path/filepath"
	"strings"
	"testing"

	"mediaorg/internal/logging"
	"mediaorg/internal/match"
	"mediaorg/internal/metadata"
	"mediaorg/internal/naming"
	"mediaorg/internal/scan"
	"mediaorg/internal/testsupport"
)

// stubNFO renders fixed content so tests can assert metadata actions without
// dragging in a real producer.
type stubNFO struct{}

func (stubNFO) ShowNFO(show metadata.Show) (string, error)        { return "<tvshow/>", nil }
func (stubNFO) EpisodeNFO(eps []metadata.Episode) (string, error) { return "<episodedetails/>", nil }
func (stubNFO) MovieNFO(movie metadata.Movie) (string, error)     { return "<movie/>", nil }

func matchedResult(path string, episodes ...metadata.Episode) match.Result {
	return match.Result{
		File:     scan.Candidate{Path: path, Role: scan.RoleVideo},
		Episodes: episodes,
		Outcome:  match.OutcomeMatched,
	}
}

func episode(season, number int, title string) metadata.Episode {
	return metadata.Episode{Season: season, Episode: number, Title: title, RuntimeSeconds: 1320}
}

func newShowPlan(t *testing.T, planner *Planner) *Plan {
	t.Helper()
	show := metadata.Show{Title: "My Show", Year: 2004}
	seasons := map[int][]match.Result{
		1: {
			matchedResult("/src/Show.S01E02.mkv", episode(1, 2, "Second")),
			matchedResult("/src/Show.S01E01.mkv", episode(1, 1, "First")),
		},
		2: {
			matchedResult("/src/Show.S02E01.mkv", episode(2, 1, "Opener")),
		},
	}
	p, err := planner.PlanShow(show, seasons, nil)
	if err != nil {
		t.Fatalf("PlanShow: %v", err)
	}
	return p
}

func TestPlanShowLayout(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	planner := NewPlanner(cfg, stubNFO{}, logging.NewNop())
	planner.SetExistsFunc(func(string) bool { return false })

	p := newShowPlan(t, planner)

	seriesDir := filepath.Join(cfg.Paths.LibraryDir, cfg.Library.TVDir, "My Show (2004)")
	wantDest := filepath.Join(seriesDir, "Season 01", "My Show S01E01 First.mkv")
	var found bool
	for _, action := range p.Actions {
		if action.Kind == KindMoveFile && action.Destination == wantDest {
			found = true
		}
	}
	if !found {
		t.Fatalf("no move targeting %s in %d actions", wantDest, len(p.Actions))
	}

	if p.Summary.CreateDirs == 0 || p.Summary.Moves != 3 || p.Summary.MetadataWrites != 4 {
		t.Fatalf("unexpected summary %+v", p.Summary)
	}
}

func TestPlanShowParentDirsPrecedeDestinations(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	planner := NewPlanner(cfg, stubNFO{}, logging.NewNop())
	planner.SetExistsFunc(func(string) bool { return false })

	p := newShowPlan(t, planner)

	created := map[string]int{}
	for idx, action := range p.Actions {
		if action.Kind == KindCreateDir {
			if _, dup := created[action.Destination]; dup {
				t.Fatalf("directory %s created twice", action.Destination)
			}
			created[action.Destination] = idx
			if parentIdx, ok := created[filepath.Dir(action.Destination)]; ok && parentIdx > idx {
				t.Fatalf("parent of %s created after it", action.Destination)
			}
			continue
		}
		parent := filepath.Dir(action.Destination)
		parentIdx, ok := created[parent]
		if !ok {
			t.Fatalf("action %d targets %s but %s is never created", idx, action.Destination, parent)
		}
		if parentIdx > idx {
			t.Fatalf("action %d targets %s before %s is created", idx, action.Destination, parent)
		}
	}
}

func TestPlanShowEpisodesOrderedWithinSeason(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	planner := NewPlanner(cfg, nil, logging.NewNop())
	planner.SetExistsFunc(func(string) bool { return false })

	p := newShowPlan(t, planner)

	var moves []string
	for _, action := range p.Actions {
		if action.Kind == KindMoveFile {
			moves = append(moves, action.Destination)
		}
	}
	if len(moves) != 3 {
		t.Fatalf("got %d moves, want 3", len(moves))
	}
	if !strings.Contains(moves[0], "S01E01") || !strings.Contains(moves[1], "S01E02") || !strings.Contains(moves[2], "S02E01") {
		t.Fatalf("moves out of order: %v", moves)
	}
}

func TestPlanShowMetadataTrailsMedia(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	planner := NewPlanner(cfg, stubNFO{}, logging.NewNop())
	planner.SetExistsFunc(func(string) bool { return false })

	p := newShowPlan(t, planner)

	lastMove := map[string]int{}
	for idx, action := range p.Actions {
		base := strings.TrimSuffix(filepath.Base(action.Destination), filepath.Ext(action.Destination))
		switch action.Kind {
		case KindMoveFile:
			lastMove[base] = idx
		case KindWriteMetadata:
			if moveIdx, ok := lastMove[base]; ok && moveIdx > idx {
				t.Fatalf("metadata for %s written before its media move", base)
			}
		}
	}
}

func TestPlanShowNFOTrailsAllMoves(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	planner := NewPlanner(cfg, stubNFO{}, logging.NewNop())
	planner.SetExistsFunc(func(string) bool { return false })

	p := newShowPlan(t, planner)

	lastMove, showNFO := -1, -1
	for idx, action := range p.Actions {
		switch {
		case action.Kind == KindMoveFile:
			lastMove = idx
		case action.Kind == KindWriteMetadata && filepath.Base(action.Destination) == "tvshow.nfo":
			showNFO = idx
		}
	}
	if showNFO == -1 {
		t.Fatal("tvshow.nfo write missing from plan")
	}
	if showNFO < lastMove {
		t.Fatalf("tvshow.nfo written at index %d before the last move at %d", showNFO, lastMove)
	}
}

func TestPlanShowSkipsUnconfirmedResults(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	planner := NewPlanner(cfg, nil, logging.NewNop())
	planner.SetExistsFunc(func(string) bool { return false })

	seasons := map[int][]match.Result{
		1: {
			matchedResult("/src/good.S01E01.mkv", episode(1, 1, "Keep")),
			{File: scan.Candidate{Path: "/src/tied.S01E02.mkv"}, Outcome: match.OutcomeConflict, Episodes: []metadata.Episode{episode(1, 2, "Tied")}},
			{File: scan.Candidate{Path: "/src/unknown.mkv"}, Outcome: match.OutcomeUnmatched},
		},
	}
	p, err := planner.PlanShow(metadata.Show{Title: "My Show"}, seasons, nil)
	if err != nil {
		t.Fatalf("PlanShow: %v", err)
	}
	for _, action := range p.Actions {
		if action.Kind == KindMoveFile && action.Source != "/src/good.S01E01.mkv" {
			t.Fatalf("unconfirmed result produced a move: %+v", action)
		}
	}
}

func TestPlanShowSubtitleFollowsEpisode(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	planner := NewPlanner(cfg, nil, logging.NewNop())
	planner.SetExistsFunc(func(string) bool { return false })

	sub := scan.Candidate{Path: "/src/Show.S01E01.srt", Role: scan.RoleSubtitle}
	if parsed, ok := naming.Parse(sub.Path); ok {
		sub.Parsed = parsed
		sub.HasParsed = true
	}
	seasons := map[int][]match.Result{
		1: {matchedResult("/src/Show.S01E01.mkv", episode(1, 1, "First"))},
	}
	p, err := planner.PlanShow(metadata.Show{Title: "My Show", Year: 2004}, seasons, []scan.Candidate{sub})
	if err != nil {
		t.Fatalf("PlanShow: %v", err)
	}

	var srtDest string
	for _, action := range p.Actions {
		if action.Kind == KindMoveFile && filepath.Ext(action.Destination) == ".srt" {
			srtDest = action.Destination
		}
	}
	if srtDest == "" {
		t.Fatal("subtitle move missing from plan")
	}
	if filepath.Base(srtDest) != "My Show S01E01 First.srt" {
		t.Fatalf("subtitle renamed to %s", filepath.Base(srtDest))
	}
}

func TestPlanFlagsConflicts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	planner := NewPlanner(cfg, nil, logging.NewNop())

	seriesDir := filepath.Join(cfg.Paths.LibraryDir, cfg.Library.TVDir, "My Show (2004)")
	occupied := filepath.Join(seriesDir, "Season 01", "My Show S01E01 First.mkv")
	planner.SetExistsFunc(func(path string) bool { return path == occupied })

	seasons := map[int][]match.Result{
		1: {matchedResult("/src/Show.S01E01.mkv", episode(1, 1, "First"))},
	}
	p, err := planner.PlanShow(metadata.Show{Title: "My Show", Year: 2004}, seasons, nil)
	if err != nil {
		t.Fatalf("PlanShow: %v", err)
	}

	conflicts := p.ConflictPaths()
	if len(conflicts) != 1 || conflicts[0] != occupied {
		t.Fatalf("ConflictPaths = %v, want [%s]", conflicts, occupied)
	}
	for _, action := range p.Actions {
		if action.Destination == occupied && action.OverwriteApproved {
			t.Fatal("overwrite approved without configuration opt-in")
		}
	}
}

func TestPlanConflictOverwriteApproval(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithOverwrite())
	planner := NewPlanner(cfg, nil, logging.NewNop())

	seriesDir := filepath.Join(cfg.Paths.LibraryDir, cfg.Library.TVDir, "My Show")
	occupied := filepath.Join(seriesDir, "Season 01", "My Show S01E01 First.mkv")
	planner.SetExistsFunc(func(path string) bool { return path == occupied })

	seasons := map[int][]match.Result{
		1: {matchedResult("/src/Show.S01E01.mkv", episode(1, 1, "First"))},
	}
	p, err := planner.PlanShow(metadata.Show{Title: "My Show"}, seasons, nil)
	if err != nil {
		t.Fatalf("PlanShow: %v", err)
	}
	for _, action := range p.Actions {
		if action.Destination == occupied && !action.OverwriteApproved {
			t.Fatal("configured overwrite approval not carried onto the action")
		}
	}
}

func TestPlanIntraPlanCollision(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	planner := NewPlanner(cfg, nil, logging.NewNop())
	planner.SetExistsFunc(func(string) bool { return false })

	// Two files that sanitize to the same destination name.
	seasons := map[int][]match.Result{
		1: {
			matchedResult("/src/a/Show.S01E01.mkv", episode(1, 1, "First")),
			matchedResult("/src/b/Show.S01E01.mkv", episode(1, 1, "First")),
		},
	}
	p, err := planner.PlanShow(metadata.Show{Title: "My Show"}, seasons, nil)
	if err != nil {
		t.Fatalf("PlanShow: %v", err)
	}
	if p.Summary.Conflicts == 0 {
		t.Fatal("second claim on the same destination not flagged")
	}
}

func TestPlanMovieLayout(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithPreserveOriginals())
	planner := NewPlanner(cfg, stubNFO{}, logging.NewNop())
	planner.SetExistsFunc(func(string) bool { return false })

	movie := metadata.Movie{Title: "Big Film", Year: 1999, RuntimeSeconds: 7200}
	primary := scan.Candidate{Path: "/src/big.film.1999.mkv", Role: scan.RoleVideo, DurationSeconds: 7150}
	extras := []scan.Candidate{{Path: "/src/trailer.mkv", Role: scan.RoleExtra}}
	subtitles := []scan.Candidate{{Path: "/src/big.film.1999.srt", Role: scan.RoleSubtitle}}

	p, err := planner.PlanMovie(movie, primary, extras, subtitles)
	if err != nil {
		t.Fatalf("PlanMovie: %v", err)
	}

	movieDir := filepath.Join(cfg.Paths.LibraryDir, cfg.Library.MoviesDir, "Big Film (1999)")
	wantDests := []string{
		filepath.Join(movieDir, "Big Film (1999).mkv"),
		filepath.Join(movieDir, "Big Film (1999).srt"),
		filepath.Join(movieDir, "extras", "trailer.mkv"),
		filepath.Join(movieDir, "Big Film (1999).nfo"),
	}
	dests := map[string]Mode{}
	for _, action := range p.Actions {
		if action.Kind != KindCreateDir {
			dests[action.Destination] = action.Mode
		}
	}
	for _, want := range wantDests {
		if _, ok := dests[want]; !ok {
			t.Fatalf("missing action for %s; have %v", want, dests)
		}
	}
	if dests[wantDests[0]] != ModeCopy {
		t.Fatal("preserve_originals should plan copies, not moves")
	}
	if p.Summary.Copies != 3 || p.Summary.Moves != 0 {
		t.Fatalf("unexpected summary %+v", p.Summary)
	}
}
