package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"mediaorg/internal/config"
	"mediaorg/internal/execute"
	"mediaorg/internal/ffprobe"
	"mediaorg/internal/history"
	"mediaorg/internal/logging"
	"mediaorg/internal/match"
	"mediaorg/internal/metadata"
	"mediaorg/internal/nfo"
	"mediaorg/internal/plan"
	"mediaorg/internal/scan"
	"mediaorg/internal/services"
)

type adoptFlags struct {
	metadataPath  string
	live          bool
	yes           bool
	overwrite     bool
	ffprobeBinary string
}

func (f *adoptFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.metadataPath, "metadata", "m", "", "Path to the canonical metadata JSON document (required)")
	cmd.Flags().BoolVar(&f.live, "live", false, "Apply the plan instead of previewing it")
	cmd.Flags().BoolVarP(&f.yes, "yes", "y", false, "Skip the confirmation prompt for live runs")
	cmd.Flags().BoolVar(&f.overwrite, "overwrite", false, "Approve overwriting conflicting destinations")
	cmd.Flags().StringVar(&f.ffprobeBinary, "ffprobe", "", "Path to the ffprobe binary (default: ffprobe on PATH)")
	_ = cmd.MarkFlagRequired("metadata")
}

func newAdoptCommand(ctx *commandContext) *cobra.Command {
	adoptCmd := &cobra.Command{
		Use:   "adopt",
		Short: "Match source files to canonical records and organize them into the library",
	}

	adoptCmd.AddCommand(newAdoptShowCommand(ctx))
	adoptCmd.AddCommand(newAdoptMovieCommand(ctx))

	return adoptCmd
}

func newAdoptShowCommand(ctx *commandContext) *cobra.Command {
	var flags adoptFlags

	cmd := &cobra.Command{
		Use:   "show <directory>",
		Short: "Adopt a TV show source directory",
		Long: `Adopt show scans a source directory, resolves each file's season, matches
files to the canonical episodes in the metadata document, and builds an
ordered action plan. Without --live the plan is previewed as a dry run; every
run, dry or live, appends a JSON action log.

Season conflicts (folder says one season, filename another) and episode ties
(two files claiming the same episode) stop the adoption before planning.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdoptShow(ctx, cmd, args[0], flags)
		},
	}

	flags.register(cmd)
	return cmd
}

func newAdoptMovieCommand(ctx *commandContext) *cobra.Command {
	var flags adoptFlags

	cmd := &cobra.Command{
		Use:   "movie <directory>",
		Short: "Adopt a movie source directory",
		Long: `Adopt movie scans a source directory, picks the main feature (the longest
non-sample video), routes trailers and featurettes into an extras folder, and
builds an ordered action plan. Without --live the plan is previewed as a dry
run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdoptMovie(ctx, cmd, args[0], flags)
		},
	}

	flags.register(cmd)
	return cmd
}

func runAdoptShow(ctx *commandContext, cmd *cobra.Command, sourceArg string, flags adoptFlags) error {
	cfg, logger, candidates, err := adoptSetup(ctx, cmd, sourceArg, flags)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	show, provider, err := metadata.LoadShowFile(flags.metadataPath)
	if err != nil {
		return err
	}

	videos := filterRoles(candidates, scan.RoleVideo)
	subtitles := filterRoles(candidates, scan.RoleSubtitle)
	reportSkipped(out, candidates)

	assignments, seasonConflicts, warnings := match.ResolveSeasons(videos)
	for _, warning := range warnings {
		fmt.Fprintln(out, "Warning:", warning)
	}
	if len(seasonConflicts) > 0 {
		fmt.Fprintln(out, "Season conflicts need manual resolution before adoption:")
		for _, conflict := range seasonConflicts {
			fmt.Fprintln(out, "  -", conflict.String())
		}
		return services.Wrap(services.ErrConflict, "adopt", "resolve seasons",
			fmt.Sprintf("%d file(s) have conflicting season hints", len(seasonConflicts)), nil)
	}

	engine := match.NewEngine(cfg.Matching, logger)
	grouped := match.GroupBySeason(assignments)
	seasonNumbers := make([]int, 0, len(grouped))
	for season := range grouped {
		seasonNumbers = append(seasonNumbers, season)
	}
	sort.Ints(seasonNumbers)

	seasons := make(map[int][]match.Result, len(grouped))
	var matchConflicts, unmatched int
	for _, season := range seasonNumbers {
		episodes, err := provider.SeasonEpisodes(cmd.Context(), show, season)
		if err != nil {
			if !errors.Is(err, services.ErrNotFound) {
				return err
			}
			// A season without canonical records leaves its files
			// unmatched; the rest of the adoption continues.
			fmt.Fprintf(out, "Note: the metadata document has no season %d; its files stay unmatched.\n", season)
			episodes = nil
		}
		results := engine.MatchSeason(grouped[season], episodes)
		seasons[season] = results
		for _, res := range results {
			switch res.Outcome {
			case match.OutcomeConflict:
				matchConflicts++
			case match.OutcomeUnmatched:
				unmatched++
			}
		}
	}

	renderMatchResults(out, seasonNumbers, seasons)
	if matchConflicts > 0 {
		return services.Wrap(services.ErrConflict, "adopt", "match episodes",
			fmt.Sprintf("%d file(s) tie over the same episodes", matchConflicts), nil)
	}
	if unmatched > 0 {
		fmt.Fprintf(out, "Note: %d unmatched file(s) are left in place.\n", unmatched)
	}

	planner := plan.NewPlanner(cfg, nfo.NewProducer(), logger)
	adoptionPlan, err := planner.PlanShow(show, seasons, subtitles)
	if err != nil {
		return err
	}

	return executePlan(cmd, cfg, logger, adoptionPlan, flags)
}

func runAdoptMovie(ctx *commandContext, cmd *cobra.Command, sourceArg string, flags adoptFlags) error {
	cfg, logger, candidates, err := adoptSetup(ctx, cmd, sourceArg, flags)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	movie, err := metadata.LoadMovieFile(flags.metadataPath)
	if err != nil {
		return err
	}

	videos := filterRoles(candidates, scan.RoleVideo)
	extras := filterRoles(candidates, scan.RoleExtra)
	subtitles := filterRoles(candidates, scan.RoleSubtitle)
	reportSkipped(out, candidates)

	if len(videos) == 0 {
		return services.Wrap(services.ErrValidation, "adopt", "pick feature", "no video files found in source", nil)
	}
	primary := pickPrimary(videos)
	extras = append(extras, dropCandidate(videos, primary.Path)...)

	fmt.Fprintf(out, "Main feature: %s (%s)\n", filepath.Base(primary.Path), describeDuration(primary.DurationSeconds))

	planner := plan.NewPlanner(cfg, nfo.NewProducer(), logger)
	adoptionPlan, err := planner.PlanMovie(movie, primary, extras, subtitles)
	if err != nil {
		return err
	}

	return executePlan(cmd, cfg, logger, adoptionPlan, flags)
}

// adoptSetup loads configuration, scans the source, and probes runtimes. The
// returned candidates are every file under the source, samples included.
func adoptSetup(ctx *commandContext, cmd *cobra.Command, sourceArg string, flags adoptFlags) (*config.Config, *slog.Logger, []scan.Candidate, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load configuration: %w", err)
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("setup logging: %w", err)
	}
	if flags.overwrite {
		cfg.Library.OverwriteExisting = true
	}

	source, err := filepath.Abs(sourceArg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("resolve source directory: %w", err)
	}

	candidates, err := scan.NewScanner(logger).Scan(source)
	if err != nil {
		return nil, nil, nil, err
	}

	prober := ffprobe.NewProber(flags.ffprobeBinary)
	failures := scan.ProbeDurations(cmd.Context(), logger, prober.Duration, candidates, cfg.Matching.ProbeWorkers)
	if failures > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Warning: %d file(s) could not be probed; duration matching stays neutral for them.\n", failures)
	}

	return cfg, logger, candidates, nil
}

func executePlan(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, adoptionPlan *plan.Plan, flags adoptFlags) error {
	out := cmd.OutOrStdout()
	renderPlan(out, adoptionPlan)

	if conflicts := adoptionPlan.ConflictPaths(); len(conflicts) > 0 && !cfg.Library.OverwriteExisting {
		fmt.Fprintln(out, "Conflicting destinations (re-run with --overwrite to replace them):")
		for _, path := range conflicts {
			fmt.Fprintln(out, "  -", path)
		}
	}

	mode := execute.ModeDryRun
	if flags.live {
		mode = execute.ModeLive
		if !flags.yes {
			ok, err := confirm(cmd.InOrStdin(), out, fmt.Sprintf("Apply %d action(s) to %s?", len(adoptionPlan.Actions), cfg.Paths.LibraryDir))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(out, "Aborted.")
				return nil
			}
		}
	}

	runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startedAt := time.Now().UTC()
	executor := execute.NewExecutor(cfg, logger)
	result, execErr := executor.Execute(runCtx, adoptionPlan, mode, execute.PolicyFromConfig(cfg))
	if result == nil {
		return execErr
	}

	renderOutcomes(out, result)
	recordRun(cmd.Context(), cfg, logger, adoptionPlan, result, startedAt)

	if execErr != nil {
		return execErr
	}
	if mode == execute.ModeDryRun {
		fmt.Fprintln(out, "Dry run complete. Re-run with --live to apply.")
	}
	return nil
}

func recordRun(ctx context.Context, cfg *config.Config, logger *slog.Logger, adoptionPlan *plan.Plan, result *execute.Result, startedAt time.Time) {
	store, err := history.Open(cfg)
	if err != nil {
		logger.Warn("history store unavailable", logging.Error(err))
		return
	}
	defer store.Close()

	applied := 0
	for _, outcome := range result.Outcomes {
		if outcome.State == execute.StateApplied {
			applied++
		}
	}
	overall := "succeeded"
	if result.Err != nil {
		overall = "failed"
	}
	errText := ""
	if result.Err != nil {
		errText = result.Err.Error()
	}

	run := history.Run{
		PlanID:        adoptionPlan.ID,
		RunID:         result.RunID,
		Mode:          result.Mode.String(),
		Policy:        result.Policy.String(),
		Outcome:       overall,
		ActionCount:   len(adoptionPlan.Actions),
		AppliedCount:  applied,
		ConflictCount: adoptionPlan.Summary.Conflicts,
		RolledBack:    result.RolledBack,
		LogPath:       result.LogPath,
		Error:         errText,
		StartedAt:     startedAt,
		FinishedAt:    time.Now().UTC(),
	}
	if _, err := store.RecordRun(ctx, run); err != nil {
		logger.Warn("history record failed", logging.Error(err))
	}
}

func renderMatchResults(out io.Writer, seasonNumbers []int, seasons map[int][]match.Result) {
	rows := make([][]string, 0)
	for _, season := range seasonNumbers {
		for _, res := range seasons[season] {
			episodes := "-"
			if len(res.Episodes) > 0 {
				first := res.Episodes[0]
				episodes = first.Key()
				if last := res.Episodes[len(res.Episodes)-1]; last.Episode > first.Episode {
					episodes += fmt.Sprintf("-e%02d", last.Episode)
				}
			}
			detail := res.Reason
			rows = append(rows, []string{
				filepath.Base(res.File.Path),
				strconv.Itoa(season),
				episodes,
				fmt.Sprintf("%.0f", res.Confidence),
				res.DurationTier.String(),
				res.Outcome.String(),
				detail,
			})
		}
	}
	printTable(out, []string{"File", "Season", "Episodes", "Confidence", "Duration", "Outcome", "Detail"}, rows, 1, 3)
}

func renderPlan(out io.Writer, adoptionPlan *plan.Plan) {
	rows := make([][]string, 0, len(adoptionPlan.Actions))
	for idx, action := range adoptionPlan.Actions {
		conflict := ""
		if action.Conflict {
			conflict = "conflict"
			if action.OverwriteApproved {
				conflict = "overwrite"
			}
		}
		rows = append(rows, []string{
			strconv.Itoa(idx + 1),
			action.Kind.String(),
			plan.Describe(action),
			conflict,
		})
	}
	summary := adoptionPlan.Summary
	fmt.Fprintf(out, "Plan %s: %d dir(s), %d move(s), %d copy(s), %d metadata write(s), %d conflict(s)\n",
		adoptionPlan.ID, summary.CreateDirs, summary.Moves, summary.Copies, summary.MetadataWrites, summary.Conflicts)
	printTable(out, []string{"#", "Action", "Detail", "Conflict"}, rows, 0)
}

func renderOutcomes(out io.Writer, result *execute.Result) {
	rows := make([][]string, 0, len(result.Outcomes))
	for idx, outcome := range result.Outcomes {
		detail := outcome.Detail
		if outcome.Compensated {
			detail = strings.TrimSpace(detail + " (rolled back)")
		}
		rows = append(rows, []string{
			strconv.Itoa(idx + 1),
			outcome.Action.Kind.String(),
			outcome.State.String(),
			detail,
		})
	}
	printTable(out, []string{"#", "Action", "State", "Detail"}, rows, 0)
	fmt.Fprintf(out, "Run %s (%s, on failure %s), log: %s\n", result.RunID, result.Mode, result.Policy, result.LogPath)
	if result.RolledBack {
		fmt.Fprintln(out, "Run failed; applied actions were rolled back.")
	}
}

func reportSkipped(out io.Writer, candidates []scan.Candidate) {
	for _, cand := range candidates {
		if cand.Role == scan.RoleSample {
			fmt.Fprintf(out, "Skipping sample file: %s\n", filepath.Base(cand.Path))
		}
	}
}

func filterRoles(candidates []scan.Candidate, role scan.Role) []scan.Candidate {
	var filtered []scan.Candidate
	for _, cand := range candidates {
		if cand.Role == role {
			filtered = append(filtered, cand)
		}
	}
	return filtered
}

// pickPrimary selects the movie's main feature: the longest probed video, or
// the first video by path when no durations are known.
func pickPrimary(videos []scan.Candidate) scan.Candidate {
	primary := videos[0]
	for _, cand := range videos[1:] {
		if cand.DurationSeconds > primary.DurationSeconds {
			primary = cand
		}
	}
	return primary
}

func dropCandidate(candidates []scan.Candidate, path string) []scan.Candidate {
	var rest []scan.Candidate
	for _, cand := range candidates {
		if cand.Path != path {
			rest = append(rest, cand)
		}
	}
	return rest
}

func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
