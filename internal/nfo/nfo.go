package nfo

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strings"

	"mediaorg/internal/metadata"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

type uniqueID struct {
	XMLName xml.Name `xml:"uniqueid"`
	Type    string   `xml:"type,attr"`
	Value   string   `xml:",chardata"`
}

type showDocument struct {
	XMLName   xml.Name   `xml:"tvshow"`
	Title     string     `xml:"title"`
	Year      int        `xml:"year,omitempty"`
	UniqueIDs []uniqueID `xml:"uniqueid"`
}

type episodeDocument struct {
	XMLName xml.Name `xml:"episodedetails"`
	Title   string   `xml:"title"`
	Season  int      `xml:"season"`
	Episode int      `xml:"episode"`
	Aired   string   `xml:"aired,omitempty"`
	Runtime int      `xml:"runtime,omitempty"`

	AirsAfterSeason   int `xml:"airsafter_season,omitempty"`
	AirsBeforeSeason  int `xml:"airsbefore_season,omitempty"`
	AirsBeforeEpisode int `xml:"airsbefore_episode,omitempty"`
	DisplaySeason     int `xml:"displayseason,omitempty"`
	DisplayEpisode    int `xml:"displayepisode,omitempty"`
}

type movieDocument struct {
	XMLName   xml.Name   `xml:"movie"`
	Title     string     `xml:"title"`
	Year      int        `xml:"year,omitempty"`
	Runtime   int        `xml:"runtime,omitempty"`
	UniqueIDs []uniqueID `xml:"uniqueid"`
}

// Producer renders Jellyfin-compatible NFO documents.
type Producer struct{}

// NewProducer builds an NFO producer.
func NewProducer() *Producer {
	return &Producer{}
}

// ShowNFO renders a tvshow.nfo document for the series.
func (p *Producer) ShowNFO(show metadata.Show) (string, error) {
	doc := showDocument{
		Title:     show.Title,
		Year:      show.Year,
		UniqueIDs: uniqueIDs(show.ProviderIDs),
	}
	return render(doc)
}

// EpisodeNFO renders an episode NFO document. A file spanning several
// episodes yields one episodedetails element per episode, concatenated the
// way Jellyfin expects multi-episode sidecars.
func (p *Producer) EpisodeNFO(episodes []metadata.Episode) (string, error) {
	if len(episodes) == 0 {
		return "", fmt.Errorf("nfo: no episodes to render")
	}
	var builder strings.Builder
	builder.WriteString(xmlHeader)
	for i, episode := range episodes {
		doc := episodeDocument{
			Title:   episode.Title,
			Season:  episode.Season,
			Episode: episode.Episode,
			Runtime: episode.RuntimeSeconds / 60,
		}
		if !episode.AirDate.IsZero() {
			doc.Aired = episode.AirDate.Format("2006-01-02")
		}
		if episode.Season == 0 {
			doc.AirsAfterSeason = episode.AirsAfterSeason
			doc.AirsBeforeSeason = episode.AirsBeforeSeason
			doc.AirsBeforeEpisode = episode.AirsBeforeEpisode
			doc.DisplaySeason = episode.DisplaySeason
			doc.DisplayEpisode = episode.DisplayEpisode
		}
		body, err := xml.MarshalIndent(doc, "", "  ")
		if err != nil {
			return "", fmt.Errorf("nfo: render episode %s: %w", episode.Key(), err)
		}
		if i > 0 {
			builder.WriteString("\n")
		}
		builder.Write(body)
		builder.WriteString("\n")
	}
	return builder.String(), nil
}

// MovieNFO renders a movie NFO document.
func (p *Producer) MovieNFO(movie metadata.Movie) (string, error) {
	doc := movieDocument{
		Title:     movie.Title,
		Year:      movie.Year,
		Runtime:   movie.RuntimeSeconds / 60,
		UniqueIDs: uniqueIDs(movie.ProviderIDs),
	}
	return render(doc)
}

func render(doc any) (string, error) {
	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("nfo: render: %w", err)
	}
	return xmlHeader + string(body) + "\n", nil
}

func uniqueIDs(providerIDs map[string]string) []uniqueID {
	if len(providerIDs) == 0 {
		return nil
	}
	providers := make([]string, 0, len(providerIDs))
	for provider := range providerIDs {
		providers = append(providers, provider)
	}
	sort.Strings(providers)
	ids := make([]uniqueID, 0, len(providers))
	for _, provider := range providers {
		ids = append(ids, uniqueID{Type: provider, Value: providerIDs[provider]})
	}
	return ids
}
