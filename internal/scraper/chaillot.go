package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/dance-events/internal/event"
)

const (
	ChaillotBaseURL      = "https://theatre-chaillot.fr"
	ChaillotCardSelector = "a.posters__item"

	chaillotVenue = "Chaillot"
)

// Chaillot reads the programme of Chaillot, Théâtre national de la Danse.
// Its listing is rendered client-side.
type Chaillot struct {
	baseURL string
}

// NewChaillot creates the adapter. An empty baseURL uses the public site.
func NewChaillot(baseURL string) *Chaillot {
	if baseURL == "" {
		baseURL = ChaillotBaseURL
	}
	return &Chaillot{baseURL: strings.TrimRight(baseURL, "/")}
}

func (c *Chaillot) Name() string { return "chaillot" }

func (c *Chaillot) ListingPages(start time.Time) []ListingPage {
	return []ListingPage{{URL: c.baseURL + "/fr/programmation"}}
}

// ParseListing reads one entry per poster card. Cards carry one <time> for a
// single performance and two for a run.
func (c *Chaillot) ParseListing(doc *goquery.Document, page ListingPage) []event.ListingEntry {
	entries := make([]event.ListingEntry, 0)

	doc.Find(ChaillotCardSelector).Each(func(i int, card *goquery.Selection) {
		href, _ := card.Attr("href")
		dateItem := card.Find("li.date").First()

		entry := event.ListingEntry{
			Site:     c.Name(),
			URL:      absoluteURL(page.URL, href),
			Title:    cleanText(card.Find("h3").First()),
			Date:     chaillotDate(dateItem.Find("time")),
			Location: cleanText(dateItem.Next()),
		}
		if entry.Location == "" {
			entry.Location = chaillotVenue
		}
		if src := imageSource(card.Find(".posters__item-image img").First()); src != "" {
			entry.ImageURL = absoluteURL(c.baseURL, src)
		}

		entries = append(entries, entry)
	})

	return entries
}

func chaillotDate(times *goquery.Selection) event.RawDate {
	switch times.Length() {
	case 0:
		return event.RawDate{}
	case 1:
		return event.Timestamp(times.First().AttrOr("datetime", ""))
	default:
		return event.TimestampRange(times.First().AttrOr("datetime", ""), times.Last().AttrOr("datetime", ""))
	}
}

func (c *Chaillot) ParseDetail(ctx context.Context, doc *goquery.Document, entry event.ListingEntry) (*event.DetailRecord, error) {
	description := doc.Find("div.performances-detail-text").First()
	if description.Length() == 0 {
		description = doc.Find("main").First()
	}
	if description.Length() == 0 {
		return nil, fmt.Errorf("%w: no description block on %s", ErrMissingContent, entry.URL)
	}

	detail := &event.DetailRecord{
		Text:      visibleText(description),
		EventName: cleanText(doc.Find("h1").First()),
		VenueName: entry.Location,
		VenueURL:  c.baseURL,
	}
	if detail.EventName == "" {
		detail.EventName = entry.Title
	}
	if detail.EventName == "" {
		detail.EventName = event.NoEventName
	}
	if detail.VenueName == "" {
		detail.VenueName = chaillotVenue
	}
	if src := imageSource(doc.Find("picture img").First()); src != "" {
		detail.ImageURL = absoluteURL(c.baseURL, src)
	}

	return detail, nil
}
