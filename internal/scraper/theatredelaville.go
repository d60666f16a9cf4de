package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/dance-events/internal/event"
)

const (
	TheatreDeLaVilleBaseURL    = "https://www.theatredelaville-paris.com"
	TheatreDeLaVilleListingURL = TheatreDeLaVilleBaseURL + "/fr/spectacles/saison-24-25/danse"

	theatreDeLaVilleVenue = "Théâtre de la Ville"
)

// TheatreDeLaVille reads the dance season of the Théâtre de la Ville.
// Dates are French text, often in the compact "0618 janv. 2025" form.
type TheatreDeLaVille struct {
	listingURL string
	venueURL   string
}

// NewTheatreDeLaVille creates the adapter. The listing URL names the season,
// so it is configurable; empty uses the current default.
func NewTheatreDeLaVille(listingURL string) *TheatreDeLaVille {
	if listingURL == "" {
		listingURL = TheatreDeLaVilleListingURL
	}
	venueURL := TheatreDeLaVilleBaseURL + "/"
	if u, err := url.Parse(listingURL); err == nil && u.Host != "" {
		venueURL = u.Scheme + "://" + u.Host + "/"
	}
	return &TheatreDeLaVille{listingURL: listingURL, venueURL: venueURL}
}

func (t *TheatreDeLaVille) Name() string { return "theatredelaville" }

func (t *TheatreDeLaVille) ListingPages(start time.Time) []ListingPage {
	return []ListingPage{{URL: t.listingURL}}
}

func (t *TheatreDeLaVille) ParseListing(doc *goquery.Document, page ListingPage) []event.ListingEntry {
	entries := make([]event.ListingEntry, 0)

	doc.Find("article.event-item").Each(func(i int, article *goquery.Selection) {
		link := article.Find("a[href]").First()
		href, _ := link.Attr("href")

		title := cleanText(article.Find(".event-item-title, h2, h3").First())
		if title == "" {
			title = cleanText(link)
		}

		entry := event.ListingEntry{
			Site:  t.Name(),
			URL:   absoluteURL(page.URL, href),
			Title: title,
			Date:  event.LocalizedText(cleanText(article.Find("p.event-item-date").First())),
		}
		if src := imageSource(article.Find("img").First()); src != "" {
			entry.ImageURL = absoluteURL(page.URL, src)
		}

		entries = append(entries, entry)
	})

	return entries
}

func (t *TheatreDeLaVille) ParseDetail(ctx context.Context, doc *goquery.Document, entry event.ListingEntry) (*event.DetailRecord, error) {
	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}
	text := visibleText(body)
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty page %s", ErrMissingContent, entry.URL)
	}

	detail := &event.DetailRecord{
		Text:      text,
		EventName: cleanText(doc.Find("h1.page-title").First()),
		VenueName: cleanText(doc.Find("span.place").First()),
		VenueURL:  t.venueURL,
	}
	if detail.EventName == "" {
		detail.EventName = event.NoEventName
	}
	if detail.VenueName == "" {
		detail.VenueName = theatreDeLaVilleVenue
	}

	return detail, nil
}
