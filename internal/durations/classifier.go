package durations

import "mediaorg/internal/config"

// Tier classifies how closely a probed duration matches an expected runtime.
type Tier int

const (
	// TierUnknown means one side of the comparison was unavailable. The
	// factor contributes nothing rather than penalizing the file.
	TierUnknown Tier = iota
	TierPoor
	TierClose
	TierExact
)

func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierClose:
		return "close"
	case TierPoor:
		return "poor"
	default:
		return "unknown"
	}
}

// Weight is the confidence contribution of a tier, on a 0-100 scale.
func (t Tier) Weight() float64 {
	switch t {
	case TierExact:
		return 100
	case TierClose:
		return 80
	case TierPoor:
		return 50
	default:
		return 0
	}
}

// Classifier compares probed durations against expected runtimes using
// configured tolerances.
type Classifier struct {
	exactTolerance float64
	closeTolerance float64
}

// NewClassifier builds a classifier from the matching configuration.
func NewClassifier(cfg config.Matching) Classifier {
	return Classifier{
		exactTolerance: float64(cfg.ExactToleranceSeconds),
		closeTolerance: float64(cfg.CloseToleranceSeconds),
	}
}

// Classify tiers the difference between an actual and expected duration, both
// in seconds. Zero or negative values mean the corresponding side is
// unavailable and yield TierUnknown.
func (c Classifier) Classify(actualSeconds, expectedSeconds float64) Tier {
	if actualSeconds <= 0 || expectedSeconds <= 0 {
		return TierUnknown
	}
	diff := actualSeconds - expectedSeconds
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff <= c.exactTolerance:
		return TierExact
	case diff <= c.closeTolerance:
		return TierClose
	default:
		return TierPoor
	}
}
