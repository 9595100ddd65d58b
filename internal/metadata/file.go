package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"mediaorg/internal/services"
)

type fileEpisode struct {
	Season         int    `json:"season"`
	Episode        int    `json:"episode"`
	Title          string `json:"title"`
	AirDate        string `json:"air_date,omitempty"`
	RuntimeSeconds int    `json:"runtime_seconds,omitempty"`

	AirsAfterSeason   int `json:"airs_after_season,omitempty"`
	AirsBeforeSeason  int `json:"airs_before_season,omitempty"`
	AirsBeforeEpisode int `json:"airs_before_episode,omitempty"`
	DisplaySeason     int `json:"display_season,omitempty"`
	DisplayEpisode    int `json:"display_episode,omitempty"`
}

type showFile struct {
	Title       string            `json:"title"`
	Year        int               `json:"year,omitempty"`
	ProviderIDs map[string]string `json:"provider_ids,omitempty"`
	Episodes    []fileEpisode     `json:"episodes"`
}

type movieFile struct {
	Title          string            `json:"title"`
	Year           int               `json:"year,omitempty"`
	RuntimeSeconds int               `json:"runtime_seconds,omitempty"`
	ProviderIDs    map[string]string `json:"provider_ids,omitempty"`
}

// FileProvider serves canonical episode records loaded from a JSON document
// on disk. It exists so adoptions can run from pre-fetched metadata without
// any network dependency.
type FileProvider struct {
	show    Show
	seasons map[int][]Episode
}

// LoadShowFile reads a show metadata document and returns the show plus a
// provider serving its episodes.
func LoadShowFile(path string) (Show, *FileProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Show{}, nil, services.Wrap(services.ErrValidation, "metadata", "load show file", "read metadata document", err)
	}

	var doc showFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return Show{}, nil, services.Wrap(services.ErrValidation, "metadata", "load show file", "parse metadata document", err)
	}
	if strings.TrimSpace(doc.Title) == "" {
		return Show{}, nil, services.Wrap(services.ErrValidation, "metadata", "load show file", "show title is required", nil)
	}
	if len(doc.Episodes) == 0 {
		return Show{}, nil, services.Wrap(services.ErrValidation, "metadata", "load show file", "at least one episode record is required", nil)
	}

	show := Show{Title: strings.TrimSpace(doc.Title), Year: doc.Year, ProviderIDs: doc.ProviderIDs}
	seasons := make(map[int][]Episode)
	for i, raw := range doc.Episodes {
		episode, err := convertEpisode(raw)
		if err != nil {
			return Show{}, nil, services.Wrap(services.ErrValidation, "metadata", "load show file", fmt.Sprintf("episode record %d", i), err)
		}
		seasons[episode.Season] = append(seasons[episode.Season], episode)
	}
	for season := range seasons {
		episodes := seasons[season]
		sort.Slice(episodes, func(a, b int) bool { return episodes[a].Episode < episodes[b].Episode })
		seasons[season] = episodes
	}

	return show, &FileProvider{show: show, seasons: seasons}, nil
}

// SeasonEpisodes returns the loaded season's episodes ordered by number.
func (p *FileProvider) SeasonEpisodes(ctx context.Context, show Show, season int) ([]Episode, error) {
	episodes, ok := p.seasons[season]
	if !ok {
		return nil, services.Wrap(services.ErrNotFound, "metadata", "season episodes",
			fmt.Sprintf("no records for %s season %d", show.Title, season), nil)
	}
	return episodes, nil
}

// Seasons lists the season numbers present in the loaded document, ascending.
func (p *FileProvider) Seasons() []int {
	seasons := make([]int, 0, len(p.seasons))
	for season := range p.seasons {
		seasons = append(seasons, season)
	}
	sort.Ints(seasons)
	return seasons
}

// LoadMovieFile reads a movie metadata document.
func LoadMovieFile(path string) (Movie, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Movie{}, services.Wrap(services.ErrValidation, "metadata", "load movie file", "read metadata document", err)
	}

	var doc movieFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return Movie{}, services.Wrap(services.ErrValidation, "metadata", "load movie file", "parse metadata document", err)
	}
	if strings.TrimSpace(doc.Title) == "" {
		return Movie{}, services.Wrap(services.ErrValidation, "metadata", "load movie file", "movie title is required", nil)
	}

	return Movie{
		Title:          strings.TrimSpace(doc.Title),
		Year:           doc.Year,
		RuntimeSeconds: doc.RuntimeSeconds,
		ProviderIDs:    doc.ProviderIDs,
	}, nil
}

func convertEpisode(raw fileEpisode) (Episode, error) {
	if raw.Season < 0 || raw.Episode < 1 {
		return Episode{}, fmt.Errorf("invalid numbering s%d e%d", raw.Season, raw.Episode)
	}
	episode := Episode{
		Season:            raw.Season,
		Episode:           raw.Episode,
		Title:             strings.TrimSpace(raw.Title),
		RuntimeSeconds:    raw.RuntimeSeconds,
		AirsAfterSeason:   raw.AirsAfterSeason,
		AirsBeforeSeason:  raw.AirsBeforeSeason,
		AirsBeforeEpisode: raw.AirsBeforeEpisode,
		DisplaySeason:     raw.DisplaySeason,
		DisplayEpisode:    raw.DisplayEpisode,
	}
	if aired := strings.TrimSpace(raw.AirDate); aired != "" {
		parsed, err := time.Parse("2006-01-02", aired)
		if err != nil {
			return Episode{}, fmt.Errorf("invalid air date %q: %w", aired, err)
		}
		episode.AirDate = parsed
	}
	return episode, nil
}
