package metadata

import (
	"context"
	"fmt"
	"time"
)

// Episode is one canonical episode record supplied by a metadata provider.
// Records are read-only within the matching and planning pipeline.
type Episode struct {
	Season  int
	Episode int
	Title   string
	// AirDate is zero when the provider did not supply one.
	AirDate time.Time
	// RuntimeSeconds is zero when unknown.
	RuntimeSeconds int

	// Specials placement hints, meaningful only when Season == 0.
	AirsAfterSeason   int
	AirsBeforeSeason  int
	AirsBeforeEpisode int
	DisplaySeason     int
	DisplayEpisode    int
}

// Key returns the stable sXXeYY identity for the episode.
func (e Episode) Key() string {
	return EpisodeKey(e.Season, e.Episode)
}

// Show describes a canonical series.
type Show struct {
	Title string
	Year  int
	// ProviderIDs maps provider names (tmdb, tvdb, imdb) to their identifiers.
	ProviderIDs map[string]string
}

// Movie describes a canonical movie.
type Movie struct {
	Title          string
	Year           int
	RuntimeSeconds int
	ProviderIDs    map[string]string
}

// Provider supplies canonical records. Implementations live outside this
// module; the HTTP clients and their parsing are collaborator concerns.
type Provider interface {
	// SeasonEpisodes returns the canonical episodes of one season, ordered by
	// episode number.
	SeasonEpisodes(ctx context.Context, show Show, season int) ([]Episode, error)
}

// EpisodeKey formats the stable sXXeYY identity used to key matches and logs.
func EpisodeKey(season, episode int) string {
	return fmt.Sprintf("s%02de%02d", season, episode)
}
