package naming

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Season folders use the long form ("Season 01", "Season 1"). The abbreviated
// S## form is deliberately not recognized; it collides with episode tokens.
var seasonFolderRe = regexp.MustCompile(`(?i)^season\s*(\d{1,4})$`)

// specialsNames are folder names treated as season 0.
var specialsNames = map[string]struct{}{
	"specials": {},
	"special":  {},
	"extras":   {},
	"extra":    {},
	"season 0": {},
	"season0":  {},
}

// IsSeasonFolder reports whether a folder name follows the season-folder
// grammar, including the specials aliases.
func IsSeasonFolder(folderName string) bool {
	_, ok := SeasonFolderNumber(folderName)
	return ok
}

// SeasonFolderNumber extracts the season number from a folder name. Specials
// aliases yield season 0. The second result is false when the name is not a
// season folder.
func SeasonFolderNumber(folderName string) (int, bool) {
	name := strings.ToLower(strings.TrimSpace(folderName))
	if _, ok := specialsNames[name]; ok {
		return 0, true
	}
	groups := seasonFolderRe.FindStringSubmatch(name)
	if groups == nil {
		return 0, false
	}
	return mustInt(groups[1]), true
}

// FormatSeasonFolder renders the canonical folder name for a season number.
func FormatSeasonFolder(season int) string {
	if season == 0 {
		return "Specials"
	}
	return fmt.Sprintf("Season %02d", season)
}

// SeasonFromPath walks a path's ancestors looking for a season folder and
// returns the first season number found, nearest ancestor first.
func SeasonFromPath(path string) (int, bool) {
	dir := filepath.Dir(path)
	for {
		base := filepath.Base(dir)
		if season, ok := SeasonFolderNumber(base); ok {
			return season, true
		}
		parent := filepath.Dir(dir)
		if parent == dir || base == dir {
			return 0, false
		}
		dir = parent
	}
}
