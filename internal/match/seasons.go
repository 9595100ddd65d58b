package match

import (
	"fmt"
	"path/filepath"

	"mediaorg/internal/naming"
	"mediaorg/internal/scan"
)

// SeasonSource records which hint decided a file's season.
type SeasonSource int

const (
	SeasonFromFolder SeasonSource = iota
	SeasonFromFilename
	SeasonDefaulted
)

func (s SeasonSource) String() string {
	switch s {
	case SeasonFromFolder:
		return "folder"
	case SeasonFromFilename:
		return "filename"
	default:
		return "default"
	}
}

// SeasonAssignment binds one candidate to a resolved season number.
type SeasonAssignment struct {
	Candidate scan.Candidate
	Season    int
	Source    SeasonSource
}

// SeasonConflict reports a file whose folder-implied and filename-implied
// seasons disagree. Conflicts require explicit user resolution; the resolver
// never picks a side.
type SeasonConflict struct {
	Path         string
	FolderSeason int
	FileSeason   int
}

func (c SeasonConflict) String() string {
	return fmt.Sprintf("%s: folder implies season %d, filename implies season %d",
		filepath.Base(c.Path), c.FolderSeason, c.FileSeason)
}

// ResolveSeasons assigns a season to every candidate. Folder hints win over
// filename hints when only one is present; disagreement between the two is a
// conflict. Files with no hint at all default to season 1 and produce a
// warning for the caller to relay. Season 0 is the legitimate specials season.
func ResolveSeasons(candidates []scan.Candidate) (assignments []SeasonAssignment, conflicts []SeasonConflict, warnings []string) {
	for _, cand := range candidates {
		folderSeason, hasFolder := naming.SeasonFromPath(cand.Path)
		fileSeason, hasFile := 0, false
		if cand.HasParsed && cand.Parsed.HasSeason {
			fileSeason, hasFile = cand.Parsed.Season, true
		}

		switch {
		case hasFolder && hasFile && folderSeason != fileSeason:
			conflicts = append(conflicts, SeasonConflict{
				Path:         cand.Path,
				FolderSeason: folderSeason,
				FileSeason:   fileSeason,
			})
		case hasFolder:
			assignments = append(assignments, SeasonAssignment{Candidate: cand, Season: folderSeason, Source: SeasonFromFolder})
		case hasFile:
			assignments = append(assignments, SeasonAssignment{Candidate: cand, Season: fileSeason, Source: SeasonFromFilename})
		default:
			warnings = append(warnings, fmt.Sprintf("no season detected for %s, defaulting to season 1", filepath.Base(cand.Path)))
			assignments = append(assignments, SeasonAssignment{Candidate: cand, Season: 1, Source: SeasonDefaulted})
		}
	}
	return assignments, conflicts, warnings
}

// GroupBySeason buckets assignments by season number.
func GroupBySeason(assignments []SeasonAssignment) map[int][]scan.Candidate {
	grouped := make(map[int][]scan.Candidate)
	for _, assignment := range assignments {
		grouped[assignment.Season] = append(grouped[assignment.Season], assignment.Candidate)
	}
	return grouped
}
