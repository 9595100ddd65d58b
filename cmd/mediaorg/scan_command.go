package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"mediaorg/internal/ffprobe"
	"mediaorg/internal/scan"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var probe bool
	var ffprobeBinary string

	cmd := &cobra.Command{
		Use:   "scan <directory>",
		Short: "Scan a directory and show the detected candidates",
		Long: `Scan walks a source directory, classifies every file (video, subtitle,
extra, sample), and parses season/episode numbering from filenames. Pass
--probe to also measure runtimes with ffprobe.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return fmt.Errorf("setup logging: %w", err)
			}

			root, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve source directory: %w", err)
			}

			candidates, err := scan.NewScanner(logger).Scan(root)
			if err != nil {
				return err
			}
			if len(candidates) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No candidate files found.")
				return nil
			}

			if probe {
				prober := ffprobe.NewProber(ffprobeBinary)
				failures := scan.ProbeDurations(cmd.Context(), logger, prober.Duration, candidates, cfg.Matching.ProbeWorkers)
				if failures > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "Warning: %d file(s) could not be probed; their durations stay unknown.\n\n", failures)
				}
			}

			rows := make([][]string, 0, len(candidates))
			for _, cand := range candidates {
				rel, relErr := filepath.Rel(root, cand.Path)
				if relErr != nil {
					rel = cand.Path
				}
				rows = append(rows, []string{
					rel,
					cand.Role.String(),
					describeParsed(cand),
					describeDuration(cand.DurationSeconds),
				})
			}

			out := cmd.OutOrStdout()
			printTable(out, []string{"File", "Role", "Numbering", "Duration"}, rows, 3)
			fmt.Fprintf(out, "%d candidate(s) under %s\n", len(candidates), root)
			return nil
		},
	}

	cmd.Flags().BoolVar(&probe, "probe", false, "Probe runtimes with ffprobe")
	cmd.Flags().StringVar(&ffprobeBinary, "ffprobe", "", "Path to the ffprobe binary (default: ffprobe on PATH)")

	return cmd
}

func describeParsed(cand scan.Candidate) string {
	if !cand.HasParsed {
		return "-"
	}
	parsed := cand.Parsed
	switch {
	case parsed.DateBased:
		return parsed.AirDate.Format("2006-01-02")
	case parsed.Absolute:
		return fmt.Sprintf("absolute %d", parsed.EpisodeStart)
	case parsed.HasEpisode:
		label := ""
		if parsed.HasSeason {
			label = fmt.Sprintf("S%02d", parsed.Season)
		}
		label += fmt.Sprintf("E%02d", parsed.EpisodeStart)
		if parsed.EpisodeEnd > parsed.EpisodeStart {
			label += fmt.Sprintf("-E%02d", parsed.EpisodeEnd)
		}
		return label
	default:
		return "-"
	}
}

func describeDuration(seconds float64) string {
	if seconds <= 0 {
		return "-"
	}
	return strconv.Itoa(int(seconds+0.5)) + "s"
}
