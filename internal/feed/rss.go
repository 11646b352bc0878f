package feed

import (
	"encoding/xml"
	"fmt"
	"time"
)

const itunesNamespace = "http://www.itunes.com/dtds/podcast-1.0.dtd"

// Item is one published episode entry.
type Item struct {
	GUID            string
	Title           string
	Description     string
	Link            string
	PubDate         time.Time
	EnclosureURL    string
	EnclosureLength int64
	EnclosureType   string
	DurationSeconds int
}

// Channel carries the feed-level metadata written on every publish.
type Channel struct {
	Title       string
	Link        string
	Description string
	Language    string
	Author      string
	ArtworkURL  string
}

// Serialization uses separate encode and decode shapes: encoding/xml
// cannot round-trip prefixed names like itunes:duration through a single
// struct, so the encoder writes prefixes literally while the decoder
// matches on local names.

type rssOut struct {
	XMLName xml.Name      `xml:"rss"`
	Version string        `xml:"version,attr"`
	Itunes  string        `xml:"xmlns:itunes,attr"`
	Channel rssChannelOut `xml:"channel"`
}

type rssChannelOut struct {
	Title         string       `xml:"title"`
	Link          string       `xml:"link"`
	Description   string       `xml:"description"`
	Language      string       `xml:"language,omitempty"`
	LastBuildDate string       `xml:"lastBuildDate,omitempty"`
	Author        string       `xml:"itunes:author,omitempty"`
	Image         *rssImageOut `xml:"itunes:image,omitempty"`
	Items         []rssItemOut `xml:"item"`
}

type rssImageOut struct {
	Href string `xml:"href,attr"`
}

type rssItemOut struct {
	GUID        rssGUIDOut   `xml:"guid"`
	Title       string       `xml:"title"`
	Description string       `xml:"description,omitempty"`
	Link        string       `xml:"link,omitempty"`
	PubDate     string       `xml:"pubDate"`
	Enclosure   rssEnclosure `xml:"enclosure"`
	Duration    string       `xml:"itunes:duration,omitempty"`
}

type rssGUIDOut struct {
	Value       string `xml:",chardata"`
	IsPermaLink string `xml:"isPermaLink,attr"`
}

type rssEnclosure struct {
	URL    string `xml:"url,attr"`
	Length int64  `xml:"length,attr"`
	Type   string `xml:"type,attr"`
}

type rssIn struct {
	Channel rssChannelIn `xml:"channel"`
}

type rssChannelIn struct {
	Items []rssItemIn `xml:"item"`
}

type rssItemIn struct {
	GUID        string       `xml:"guid"`
	Title       string       `xml:"title"`
	Description string       `xml:"description"`
	Link        string       `xml:"link"`
	PubDate     string       `xml:"pubDate"`
	Enclosure   rssEnclosure `xml:"enclosure"`
	Duration    string       `xml:"duration"`
}

func encodeDocument(channel Channel, items []Item) ([]byte, error) {
	doc := rssOut{
		Version: "2.0",
		Itunes:  itunesNamespace,
		Channel: rssChannelOut{
			Title:       channel.Title,
			Link:        channel.Link,
			Description: channel.Description,
			Language:    channel.Language,
			Author:      channel.Author,
		},
	}
	if channel.ArtworkURL != "" {
		doc.Channel.Image = &rssImageOut{Href: channel.ArtworkURL}
	}
	// The newest item's publication time doubles as the build stamp.
	if len(items) > 0 {
		doc.Channel.LastBuildDate = items[len(items)-1].PubDate.Format(time.RFC1123Z)
	}
	for _, item := range items {
		doc.Channel.Items = append(doc.Channel.Items, rssItemOut{
			GUID:        rssGUIDOut{Value: item.GUID, IsPermaLink: "false"},
			Title:       item.Title,
			Description: item.Description,
			Link:        item.Link,
			PubDate:     item.PubDate.Format(time.RFC1123Z),
			Enclosure: rssEnclosure{
				URL:    item.EnclosureURL,
				Length: item.EnclosureLength,
				Type:   item.EnclosureType,
			},
			Duration: formatDuration(item.DurationSeconds),
		})
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode feed: %w", err)
	}
	return append([]byte(xml.Header), append(body, '\n')...), nil
}

func decodeItems(data []byte) ([]Item, error) {
	var doc rssIn
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}

	items := make([]Item, 0, len(doc.Channel.Items))
	for _, raw := range doc.Channel.Items {
		item := Item{
			GUID:            raw.GUID,
			Title:           raw.Title,
			Description:     raw.Description,
			Link:            raw.Link,
			EnclosureURL:    raw.Enclosure.URL,
			EnclosureLength: raw.Enclosure.Length,
			EnclosureType:   raw.Enclosure.Type,
			DurationSeconds: parseDuration(raw.Duration),
		}
		if ts, err := time.Parse(time.RFC1123Z, raw.PubDate); err == nil {
			item.PubDate = ts
		}
		items = append(items, item)
	}
	return items, nil
}

func formatDuration(seconds int) string {
	if seconds <= 0 {
		return ""
	}
	return fmt.Sprintf("%d:%02d:%02d", seconds/3600, seconds/60%60, seconds%60)
}

func parseDuration(value string) int {
	var h, m, s int
	switch n, _ := fmt.Sscanf(value, "%d:%d:%d", &h, &m, &s); n {
	case 3:
		return h*3600 + m*60 + s
	case 2:
		return h*60 + m
	case 1:
		return h
	default:
		return 0
	}
}
