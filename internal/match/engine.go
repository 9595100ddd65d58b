package match

import (
	"log/slog"

	"mediaorg/internal/config"
	"mediaorg/internal/durations"
	"mediaorg/internal/logging"
	"mediaorg/internal/metadata"
	"mediaorg/internal/scan"
)

// Outcome classifies one file's assignment result. Every input file receives
// exactly one outcome; the engine never drops a file.
type Outcome int

const (
	OutcomeMatched Outcome = iota
	OutcomeUnmatched
	OutcomeConflict
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMatched:
		return "matched"
	case OutcomeConflict:
		return "conflict"
	default:
		return "unmatched"
	}
}

// Result is one proposed file-to-episode assignment. Episodes holds more than
// one entry when a multi-episode filename spans a contiguous canonical range.
// Confidence is a deterministic function of the name and duration factors.
type Result struct {
	File         scan.Candidate
	Episodes     []metadata.Episode
	Confidence   float64
	NameScore    float64
	DurationTier durations.Tier
	Outcome      Outcome
	Override     bool
	Reason       string
}

// Engine assigns one season's files to that season's canonical episodes.
type Engine struct {
	cfg        config.Matching
	classifier durations.Classifier
	logger     *slog.Logger
}

// NewEngine builds a match engine from the matching configuration.
func NewEngine(cfg config.Matching, logger *slog.Logger) *Engine {
	return &Engine{
		cfg:        cfg,
		classifier: durations.NewClassifier(cfg),
		logger:     logging.NewComponentLogger(logger, "match"),
	}
}

// MatchSeason produces one Result per candidate against the season's canonical
// episode list. Multi-episode filenames yield a single result spanning the
// full range. Episodes claimed by more than one file turn every claimant into
// a conflict; confidence values are left untouched so the caller can display
// them while mediating.
func (e *Engine) MatchSeason(candidates []scan.Candidate, episodes []metadata.Episode) []Result {
	byNumber := make(map[int]metadata.Episode, len(episodes))
	for _, ep := range episodes {
		byNumber[ep.Episode] = ep
	}

	results := make([]Result, 0, len(candidates))
	for _, cand := range candidates {
		results = append(results, e.matchOne(cand, episodes, byNumber))
	}
	e.flagTies(results)

	for _, res := range results {
		e.logger.Debug("assignment computed",
			logging.String("path", res.File.Path),
			logging.Float64("confidence", res.Confidence),
			logging.Float64("name_score", res.NameScore),
			logging.String("duration_tier", res.DurationTier.String()),
			logging.String("outcome", res.Outcome.String()),
			logging.Int("episodes", len(res.Episodes)),
		)
	}
	return results
}

func (e *Engine) matchOne(cand scan.Candidate, ordered []metadata.Episode, byNumber map[int]metadata.Episode) Result {
	res := Result{File: cand}
	res.NameScore, res.Episodes = e.nameFactor(cand, ordered, byNumber)
	res.DurationTier = e.classifier.Classify(cand.DurationSeconds, expectedRuntime(res.Episodes))
	res.Confidence = e.cfg.NameWeight*res.NameScore*100 + e.cfg.DurationWeight*res.DurationTier.Weight()

	switch {
	case len(res.Episodes) == 0:
		res.Outcome = OutcomeUnmatched
		res.Reason = "no canonical episode matches the parsed name"
	case res.Confidence < e.cfg.UnmatchedFloor:
		res.Outcome = OutcomeUnmatched
		res.Reason = "confidence below floor"
	default:
		res.Outcome = OutcomeMatched
	}
	return res
}

// nameFactor computes the name-match score and the canonical episodes the
// name claims. Direct episode-number hits score 1.0; absolute numbering that
// aligns with an ordinal position in the canonical list earns partial credit.
func (e *Engine) nameFactor(cand scan.Candidate, ordered []metadata.Episode, byNumber map[int]metadata.Episode) (float64, []metadata.Episode) {
	if !cand.HasParsed || !cand.Parsed.HasEpisode {
		return 0, nil
	}
	if cand.Parsed.Absolute {
		ordinal := cand.Parsed.EpisodeStart
		if ordinal >= 1 && ordinal <= len(ordered) {
			return 0.5, []metadata.Episode{ordered[ordinal-1]}
		}
		return 0, nil
	}

	var claimed []metadata.Episode
	for _, number := range cand.Parsed.Episodes() {
		if ep, ok := byNumber[number]; ok {
			claimed = append(claimed, ep)
		}
	}
	if len(claimed) == 0 {
		return 0, nil
	}
	return 1.0, claimed
}

// expectedRuntime sums the known runtimes of the claimed episodes. Any
// unknown runtime makes the total unknown so the duration factor stays
// neutral instead of comparing against a partial sum.
func expectedRuntime(episodes []metadata.Episode) float64 {
	total := 0
	for _, ep := range episodes {
		if ep.RuntimeSeconds <= 0 {
			return 0
		}
		total += ep.RuntimeSeconds
	}
	return float64(total)
}

// flagTies turns every file claiming an already-claimed episode into a
// conflict. Ties are never auto-resolved by score; the caller mediates.
func (e *Engine) flagTies(results []Result) {
	claimants := make(map[string][]int)
	for idx, res := range results {
		if res.Outcome != OutcomeMatched {
			continue
		}
		for _, ep := range res.Episodes {
			claimants[ep.Key()] = append(claimants[ep.Key()], idx)
		}
	}
	for key, indexes := range claimants {
		if len(indexes) < 2 {
			continue
		}
		for _, idx := range indexes {
			results[idx].Outcome = OutcomeConflict
			results[idx].Reason = "episode " + key + " claimed by multiple files, needs manual resolution"
		}
	}
}
