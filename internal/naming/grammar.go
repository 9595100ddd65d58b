package naming

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ParsedName holds the numbering hints extracted from a single file or folder
// name. At most one numbering scheme (season/episode, absolute, or date) is
// populated per instance.
type ParsedName struct {
	// Series is the cleaned title fragment preceding the matched token.
	Series string
	// Season and EpisodeStart/EpisodeEnd describe season/episode numbering.
	// EpisodeEnd is zero unless the name encodes a multi-episode chain.
	Season       int
	HasSeason    bool
	EpisodeStart int
	EpisodeEnd   int
	HasEpisode   bool
	// Absolute marks absolute numbering; EpisodeStart holds the number.
	Absolute bool
	// DateBased marks date-based naming; AirDate holds the parsed date.
	DateBased bool
	AirDate   time.Time
	// Raw is the matched substring as it appeared in the input.
	Raw string
}

// Episodes returns the inclusive episode range covered by the parsed name.
func (p ParsedName) Episodes() []int {
	if !p.HasEpisode {
		return nil
	}
	if p.EpisodeEnd <= p.EpisodeStart {
		return []int{p.EpisodeStart}
	}
	out := make([]int, 0, p.EpisodeEnd-p.EpisodeStart+1)
	for ep := p.EpisodeStart; ep <= p.EpisodeEnd; ep++ {
		out = append(out, ep)
	}
	return out
}

// Season numbers inside these ranges collide with resolution tokens such as
// 1920x1080 and are rejected.
const (
	invalidSeasonMin       = 200
	invalidSeasonMax       = 1927
	invalidSeasonThreshold = 2500
)

// resolutionValues are vertical resolutions that masquerade as ending episode
// numbers (720p, 1080i, and friends).
var resolutionValues = map[int]struct{}{
	480:  {},
	576:  {},
	720:  {},
	1080: {},
	2160: {},
	4320: {},
}

type ruleKind int

const (
	ruleMultiEpisode ruleKind = iota
	ruleSeasonEpisode
	ruleDate
	ruleAbsolute
)

// patternRule is one entry in the ordered grammar table. Rules are evaluated
// in priority order; the first rule producing a valid result wins. Anchored
// rules match the whole stem, others search anywhere in it.
type patternRule struct {
	tag      string
	kind     ruleKind
	anchored bool
	re       *regexp.Regexp
}

var grammarRules = []patternRule{
	{
		tag:  "multi-episode-chain",
		kind: ruleMultiEpisode,
		re:   regexp.MustCompile(`(?i)(?:s|season\s*)?(\d{1,4})\s*[ex]\s*(\d{1,3})((?:\s*[-xe]\s*e?\d{1,4})+)`),
	},
	{
		tag:  "season-episode",
		kind: ruleSeasonEpisode,
		re:   regexp.MustCompile(`(?i)(?:s|season\s*)?(\d{1,4})\s*[ex]\s*(\d{1,3})(?:\s*[-xe]\s*e?(\d{1,4}))?`),
	},
	{
		tag:  "air-date",
		kind: ruleDate,
		re:   regexp.MustCompile(`(\d{4})[-._ ](\d{1,2})[-._ ](\d{1,2})`),
	},
	{
		tag:      "absolute-number",
		kind:     ruleAbsolute,
		anchored: true,
		re:       regexp.MustCompile(`^(.+?)\s*[-_. ]\s*(\d{1,3})\s*$`),
	},
}

var chainNumberRe = regexp.MustCompile(`(?i)[ex-]\s*e?(\d{1,4})`)

// ValidSeason reports whether a season number falls outside the
// resolution-lookalike rejection ranges.
func ValidSeason(season int) bool {
	if season >= invalidSeasonMin && season <= invalidSeasonMax {
		return false
	}
	return season <= invalidSeasonThreshold
}

// ValidEndingEpisode reports whether an ending episode number is not a common
// vertical resolution.
func ValidEndingEpisode(episode int) bool {
	_, resolution := resolutionValues[episode]
	return !resolution
}

// Parse extracts numbering hints from a file or folder name. The input may
// include a path and extension; both are stripped. Absence of a match is a
// normal outcome and yields (zero value, false). Parse never fails on
// malformed input.
func Parse(name string) (ParsedName, bool) {
	stem := stemOf(name)
	if stem == "" {
		return ParsedName{}, false
	}

	for _, rule := range grammarRules {
		var groups []string
		var start, end int
		if rule.anchored {
			groups = rule.re.FindStringSubmatch(stem)
			end = len(stem)
		} else if loc := rule.re.FindStringSubmatchIndex(stem); loc != nil {
			groups = extractGroups(stem, loc, rule.re.NumSubexp())
			start, end = loc[0], loc[1]
		}
		if groups == nil {
			continue
		}
		if parsed, ok := applyRule(rule, stem, start, end, groups); ok {
			return parsed, true
		}
	}
	return ParsedName{}, false
}

func applyRule(rule patternRule, stem string, start, end int, groups []string) (ParsedName, bool) {
	switch rule.kind {
	case ruleMultiEpisode:
		return parseMultiEpisode(stem, start, end, groups)
	case ruleSeasonEpisode:
		return parseSeasonEpisode(stem, start, end, groups)
	case ruleDate:
		return parseDate(stem, start, groups)
	case ruleAbsolute:
		return parseAbsolute(groups)
	default:
		return ParsedName{}, false
	}
}

func parseMultiEpisode(stem string, start, end int, groups []string) (ParsedName, bool) {
	season := mustInt(groups[1])
	if !ValidSeason(season) {
		return ParsedName{}, false
	}
	episodes := []int{mustInt(groups[2])}
	for _, extra := range chainNumberRe.FindAllStringSubmatch(groups[3], -1) {
		episodes = append(episodes, mustInt(extra[1]))
	}
	// A p/i scan suffix or further digits right after the chain mark the
	// final number as a resolution token, not an episode.
	if trailingResolution(stem, end) {
		episodes = episodes[:len(episodes)-1]
	}
	valid := make([]int, 0, len(episodes))
	for _, ep := range episodes {
		if ValidEndingEpisode(ep) {
			valid = append(valid, ep)
		}
	}
	if len(valid) == 0 {
		return ParsedName{}, false
	}

	parsed := ParsedName{
		Series:       CleanSeries(stem[:start]),
		Season:       season,
		HasSeason:    true,
		EpisodeStart: valid[0],
		HasEpisode:   true,
		Raw:          groups[0],
	}
	if last := valid[len(valid)-1]; len(valid) > 1 && last > valid[0] {
		parsed.EpisodeEnd = last
	}
	return parsed, true
}

func parseSeasonEpisode(stem string, start, end int, groups []string) (ParsedName, bool) {
	season := mustInt(groups[1])
	if !ValidSeason(season) {
		return ParsedName{}, false
	}
	parsed := ParsedName{
		Series:       CleanSeries(stem[:start]),
		Season:       season,
		HasSeason:    true,
		EpisodeStart: mustInt(groups[2]),
		HasEpisode:   true,
		Raw:          groups[0],
	}
	if groups[3] != "" && !trailingResolution(stem, end) {
		if ending := mustInt(groups[3]); ValidEndingEpisode(ending) && ending > parsed.EpisodeStart {
			parsed.EpisodeEnd = ending
		}
	}
	return parsed, true
}

// trailingResolution reports whether the byte after a numbering match marks
// the matched number as a resolution token: a p/i scan suffix or more digits.
func trailingResolution(stem string, end int) bool {
	if end >= len(stem) {
		return false
	}
	switch c := stem[end]; {
	case c == 'p' || c == 'P' || c == 'i' || c == 'I':
		return true
	case c >= '0' && c <= '9':
		return true
	}
	return false
}

func parseDate(stem string, start int, groups []string) (ParsedName, bool) {
	year, month, day := mustInt(groups[1]), mustInt(groups[2]), mustInt(groups[3])
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Year() != year || int(date.Month()) != month || date.Day() != day {
		return ParsedName{}, false
	}
	return ParsedName{
		Series:    CleanSeries(stem[:start]),
		DateBased: true,
		AirDate:   date,
		Raw:       groups[0],
	}, true
}

func parseAbsolute(groups []string) (ParsedName, bool) {
	series := CleanSeries(groups[1])
	if series == "" {
		return ParsedName{}, false
	}
	return ParsedName{
		Series:       series,
		EpisodeStart: mustInt(groups[2]),
		HasEpisode:   true,
		Absolute:     true,
		Raw:          groups[0],
	}, true
}

var samplePattern = regexp.MustCompile(`(?i)(?:^|[^a-z])sample(?:[^a-z]|$)`)

// IsSample reports whether the name contains a whole-word "sample" marker.
// The check applies regardless of other parsing outcomes.
func IsSample(name string) bool {
	return samplePattern.MatchString(filepath.Base(name))
}

// CleanSeries trims leading/trailing separator characters from a title
// fragment and collapses internal separator runs to single spaces.
func CleanSeries(fragment string) string {
	replaced := strings.NewReplacer("_", " ", ".", " ", "-", " ").Replace(fragment)
	return strings.Join(strings.Fields(replaced), " ")
}

func stemOf(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func extractGroups(s string, loc []int, numGroups int) []string {
	groups := make([]string, numGroups+1)
	for i := 0; i <= numGroups; i++ {
		lo, hi := loc[2*i], loc[2*i+1]
		if lo >= 0 {
			groups[i] = s[lo:hi]
		}
	}
	return groups
}

func mustInt(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}
