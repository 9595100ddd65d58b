package plan

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"mediaorg/internal/config"
	"mediaorg/internal/logging"
	"mediaorg/internal/match"
	"mediaorg/internal/metadata"
	"mediaorg/internal/naming"
	"mediaorg/internal/scan"
	"mediaorg/internal/services"
)

// NFOProducer renders metadata file contents. Implementations are pure
// formatting layers living outside this package; a nil producer disables
// metadata actions entirely.
type NFOProducer interface {
	ShowNFO(show metadata.Show) (string, error)
	EpisodeNFO(episodes []metadata.Episode) (string, error)
	MovieNFO(movie metadata.Movie) (string, error)
}

// Planner turns confirmed assignments into an ordered ActionPlan. It performs
// no I/O beyond read-only existence checks.
type Planner struct {
	cfg    *config.Config
	nfo    NFOProducer
	logger *slog.Logger
	exists func(string) bool
}

// NewPlanner builds a planner. The producer may be nil to skip metadata files.
func NewPlanner(cfg *config.Config, producer NFOProducer, logger *slog.Logger) *Planner {
	return &Planner{
		cfg:    cfg,
		nfo:    producer,
		logger: logging.NewComponentLogger(logger, "plan"),
		exists: func(path string) bool {
			_, err := os.Stat(path)
			return err == nil
		},
	}
}

// builder accumulates actions while tracking planned destinations and created
// directories, so collision and ordering checks cover both the existing
// filesystem and the plan itself.
type builder struct {
	planner     *Planner
	plan        *Plan
	plannedDirs map[string]struct{}
	plannedDest map[string]struct{}
}

func (p *Planner) newBuilder() *builder {
	return &builder{
		planner:     p,
		plan:        newPlan(),
		plannedDirs: map[string]struct{}{},
		plannedDest: map[string]struct{}{},
	}
}

func (b *builder) createDir(path string) {
	if _, planned := b.plannedDirs[path]; planned {
		return
	}
	b.plannedDirs[path] = struct{}{}
	if b.planner.exists(path) {
		return
	}
	// Parents first keeps the plan topologically valid.
	parent := filepath.Dir(path)
	if parent != path && parent != "." && !b.planner.exists(parent) {
		if _, planned := b.plannedDirs[parent]; !planned {
			b.createDir(parent)
		}
	}
	b.plan.Actions = append(b.plan.Actions, Action{Kind: KindCreateDir, Destination: path})
}

func (b *builder) conflictFor(dest string) bool {
	if _, planned := b.plannedDest[dest]; planned {
		return true
	}
	return b.planner.exists(dest)
}

func (b *builder) moveFile(source, dest string, mode Mode) {
	action := Action{
		Kind:        KindMoveFile,
		Source:      source,
		Destination: dest,
		Mode:        mode,
		Conflict:    b.conflictFor(dest),
	}
	if action.Conflict {
		action.OverwriteApproved = b.planner.cfg.Library.OverwriteExisting
	}
	b.plannedDest[dest] = struct{}{}
	b.plan.Actions = append(b.plan.Actions, action)
}

func (b *builder) writeMetadata(dest string, content ContentFunc) {
	action := Action{
		Kind:        KindWriteMetadata,
		Destination: dest,
		Conflict:    b.conflictFor(dest),
		Content:     content,
	}
	if action.Conflict {
		action.OverwriteApproved = b.planner.cfg.Library.OverwriteExisting
	}
	b.plannedDest[dest] = struct{}{}
	b.plan.Actions = append(b.plan.Actions, action)
}

func (b *builder) finish() *Plan {
	b.plan.summarize()
	return b.plan
}

func (p *Planner) mode() Mode {
	if p.cfg.Execution.PreserveOriginals {
		return ModeCopy
	}
	return ModeMove
}

// PlanShow builds the adoption plan for a show: per-season confirmed
// assignments plus loose subtitle files that carry episode hints. Only
// matched results yield actions; unmatched and conflicted results stay
// behind for the caller to enumerate.
func (p *Planner) PlanShow(show metadata.Show, seasons map[int][]match.Result, subtitles []scan.Candidate) (*Plan, error) {
	title := naming.SanitizeFileName(show.Title)
	if title == "" {
		return nil, services.Wrap(services.ErrValidation, "planning", "resolve series folder", "show title is empty after sanitizing", nil)
	}
	folder := title
	if show.Year > 0 {
		folder = fmt.Sprintf("%s (%d)", title, show.Year)
	}
	seriesDir := filepath.Join(p.cfg.Paths.LibraryDir, p.cfg.Library.TVDir, folder)

	b := p.newBuilder()
	b.createDir(seriesDir)

	seasonNumbers := make([]int, 0, len(seasons))
	for season := range seasons {
		seasonNumbers = append(seasonNumbers, season)
	}
	sort.Ints(seasonNumbers)

	subtitleIndex := indexSubtitles(subtitles)

	for _, season := range seasonNumbers {
		results := confirmedResults(seasons[season])
		if len(results) == 0 {
			continue
		}
		seasonDir := filepath.Join(seriesDir, naming.FormatSeasonFolder(season))
		b.createDir(seasonDir)

		for _, res := range results {
			baseName := episodeBaseName(title, season, res)
			dest := filepath.Join(seasonDir, baseName+filepath.Ext(res.File.Path))
			b.moveFile(res.File.Path, dest, p.mode())

			for _, sub := range subtitleIndex[episodeIndexKey(season, res)] {
				b.moveFile(sub.Path, filepath.Join(seasonDir, baseName+filepath.Ext(sub.Path)), p.mode())
			}

			// Metadata trails the media move for the same episode so a
			// written NFO never outlives an un-moved media file.
			if p.nfo != nil && len(res.Episodes) > 0 {
				episodes := res.Episodes
				b.writeMetadata(filepath.Join(seasonDir, baseName+".nfo"), func() (string, error) {
					return p.nfo.EpisodeNFO(episodes)
				})
			}
		}
	}

	// Show-level metadata trails every media move.
	if p.nfo != nil {
		showRef := show
		b.writeMetadata(filepath.Join(seriesDir, "tvshow.nfo"), func() (string, error) {
			return p.nfo.ShowNFO(showRef)
		})
	}

	planValue := b.finish()
	p.logger.Info("show plan generated",
		logging.String("plan_id", planValue.ID),
		logging.String("series_dir", seriesDir),
		logging.Int("actions", len(planValue.Actions)),
		logging.Int("conflicts", planValue.Summary.Conflicts),
	)
	return planValue, nil
}

// PlanMovie builds the adoption plan for a movie: one primary file plus
// optional extras and subtitles.
func (p *Planner) PlanMovie(movie metadata.Movie, primary scan.Candidate, extras, subtitles []scan.Candidate) (*Plan, error) {
	title := naming.SanitizeFileName(movie.Title)
	if title == "" {
		return nil, services.Wrap(services.ErrValidation, "planning", "resolve movie folder", "movie title is empty after sanitizing", nil)
	}
	folder := title
	if movie.Year > 0 {
		folder = fmt.Sprintf("%s (%d)", title, movie.Year)
	}
	movieDir := filepath.Join(p.cfg.Paths.LibraryDir, p.cfg.Library.MoviesDir, folder)

	b := p.newBuilder()
	b.createDir(movieDir)

	primaryDest := filepath.Join(movieDir, folder+filepath.Ext(primary.Path))
	b.moveFile(primary.Path, primaryDest, p.mode())

	for _, sub := range subtitles {
		b.moveFile(sub.Path, filepath.Join(movieDir, folder+filepath.Ext(sub.Path)), p.mode())
	}

	if len(extras) > 0 {
		extrasDir := filepath.Join(movieDir, "extras")
		b.createDir(extrasDir)
		for _, extra := range extras {
			name := naming.SanitizeFileName(filepath.Base(extra.Path))
			if name == "" {
				name = "extra" + filepath.Ext(extra.Path)
			}
			b.moveFile(extra.Path, filepath.Join(extrasDir, name), p.mode())
		}
	}

	if p.nfo != nil {
		movieRef := movie
		b.writeMetadata(filepath.Join(movieDir, folder+".nfo"), func() (string, error) {
			return p.nfo.MovieNFO(movieRef)
		})
	}

	planValue := b.finish()
	p.logger.Info("movie plan generated",
		logging.String("plan_id", planValue.ID),
		logging.String("movie_dir", movieDir),
		logging.Int("actions", len(planValue.Actions)),
		logging.Int("conflicts", planValue.Summary.Conflicts),
	)
	return planValue, nil
}

func confirmedResults(results []match.Result) []match.Result {
	confirmed := make([]match.Result, 0, len(results))
	for _, res := range results {
		if res.Outcome == match.OutcomeMatched && len(res.Episodes) > 0 {
			confirmed = append(confirmed, res)
		}
	}
	sort.Slice(confirmed, func(i, j int) bool {
		return confirmed[i].Episodes[0].Episode < confirmed[j].Episodes[0].Episode
	})
	return confirmed
}

// episodeBaseName renders "Title S01E02[-E03] Episode Title" with sanitized
// components.
func episodeBaseName(title string, season int, res match.Result) string {
	first := res.Episodes[0]
	last := res.Episodes[len(res.Episodes)-1]
	token := fmt.Sprintf("S%02dE%02d", season, first.Episode)
	if last.Episode > first.Episode {
		token += fmt.Sprintf("-E%02d", last.Episode)
	}
	base := title + " " + token
	if epTitle := naming.SanitizeFileName(first.Title); epTitle != "" {
		base += " " + epTitle
	}
	return naming.TruncateFileName(base, 200)
}

func episodeIndexKey(season int, res match.Result) string {
	return metadata.EpisodeKey(season, res.Episodes[0].Episode)
}

// indexSubtitles groups subtitle candidates by the episode key their parsed
// name implies. Subtitles without usable hints are left out; the caller can
// enumerate them as unmatched.
func indexSubtitles(subtitles []scan.Candidate) map[string][]scan.Candidate {
	index := make(map[string][]scan.Candidate)
	for _, sub := range subtitles {
		if !sub.HasParsed || !sub.Parsed.HasEpisode || sub.Parsed.Absolute {
			continue
		}
		season := 1
		if sub.Parsed.HasSeason {
			season = sub.Parsed.Season
		} else if folderSeason, ok := naming.SeasonFromPath(sub.Path); ok {
			season = folderSeason
		}
		key := metadata.EpisodeKey(season, sub.Parsed.EpisodeStart)
		index[key] = append(index[key], sub)
	}
	return index
}

// SetExistsFunc overrides the filesystem existence check (used in tests).
func (p *Planner) SetExistsFunc(fn func(string) bool) {
	if fn != nil {
		p.exists = fn
	}
}

// Describe renders a short human-readable summary line for an action.
func Describe(action Action) string {
	switch action.Kind {
	case KindCreateDir:
		return "create " + action.Destination
	case KindMoveFile:
		return fmt.Sprintf("%s %s -> %s", action.Mode, action.Source, action.Destination)
	default:
		return "write " + action.Destination
	}
}

// ConflictPaths lists the destinations of conflicting actions.
func (p *Plan) ConflictPaths() []string {
	var paths []string
	for _, action := range p.Actions {
		if action.Conflict {
			paths = append(paths, action.Destination)
		}
	}
	return paths
}
