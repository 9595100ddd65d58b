package scan

import (
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"mediaorg/internal/logging"
	"mediaorg/internal/naming"
)

// Role classifies a discovered file's part in an adoption.
type Role int

const (
	RoleUnknown Role = iota
	RoleVideo
	RoleSubtitle
	RoleExtra
	RoleSample
)

func (r Role) String() string {
	switch r {
	case RoleVideo:
		return "video"
	case RoleSubtitle:
		return "subtitle"
	case RoleExtra:
		return "extra"
	case RoleSample:
		return "sample"
	default:
		return "unknown"
	}
}

// Candidate is one discovered input file with its parsed numbering hints.
type Candidate struct {
	// Path is absolute.
	Path string
	Role Role
	// Parsed is valid only when HasParsed is true.
	Parsed    naming.ParsedName
	HasParsed bool
	// DurationSeconds is zero until probed, and stays zero if probing failed.
	DurationSeconds float64
}

var videoExtensions = map[string]struct{}{
	".mkv": {}, ".mp4": {}, ".avi": {}, ".m4v": {}, ".mov": {},
	".wmv": {}, ".ts": {}, ".m2ts": {}, ".webm": {}, ".mpg": {}, ".mpeg": {},
}

var subtitleExtensions = map[string]struct{}{
	".srt": {}, ".ass": {}, ".ssa": {}, ".sub": {}, ".vtt": {}, ".idx": {},
}

var extraFolderNames = map[string]struct{}{
	"extras": {}, "extra": {}, "featurettes": {}, "behind the scenes": {},
	"deleted scenes": {}, "interviews": {}, "trailers": {},
}

var extraKeywords = []string{"trailer", "featurette", "behindthescenes", "deleted"}

// Scanner discovers file candidates under a source directory.
type Scanner struct {
	logger *slog.Logger
}

// NewScanner creates a scanner rooted at the OS filesystem. The logger may be
// nil.
func NewScanner(logger *slog.Logger) *Scanner {
	return &Scanner{logger: logging.NewComponentLogger(logger, "scan")}
}

// Scan walks root and returns every regular file as a Candidate with its role
// and parsed numbering hints. Hidden files and directories are skipped.
// Results are ordered by path so downstream behavior is deterministic.
func (s *Scanner) Scan(root string) ([]Candidate, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var candidates []Candidate
	walkErr := filepath.WalkDir(absRoot, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") && path != absRoot {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if entry.IsDir() {
			return nil
		}
		candidates = append(candidates, s.classify(absRoot, path))
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Path < candidates[j].Path })
	s.logger.Debug("scan completed",
		logging.String("root", absRoot),
		logging.Int("candidates", len(candidates)),
	)
	return candidates, nil
}

func (s *Scanner) classify(root, path string) Candidate {
	cand := Candidate{Path: path, Role: roleFor(root, path)}
	if parsed, ok := naming.Parse(path); ok {
		cand.Parsed = parsed
		cand.HasParsed = true
	}
	return cand
}

func roleFor(root, path string) Role {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := subtitleExtensions[ext]; ok {
		return RoleSubtitle
	}
	if _, ok := videoExtensions[ext]; !ok {
		return RoleUnknown
	}
	// Sample detection applies to every video regardless of other hints.
	if naming.IsSample(path) {
		return RoleSample
	}
	if isExtraPath(root, path) {
		return RoleExtra
	}
	return RoleVideo
}

func isExtraPath(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	for _, segment := range strings.Split(filepath.Dir(rel), string(filepath.Separator)) {
		if _, ok := extraFolderNames[strings.ToLower(segment)]; ok {
			return true
		}
	}
	stem := strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	collapsed := strings.NewReplacer(" ", "", ".", "", "-", "", "_", "").Replace(stem)
	for _, keyword := range extraKeywords {
		if strings.Contains(collapsed, keyword) {
			return true
		}
	}
	return false
}
