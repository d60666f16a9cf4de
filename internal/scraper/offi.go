package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/dance-events/internal/event"
	"github.com/pfrederiksen/dance-events/internal/logger"
)

const (
	OffiBaseURL = "https://www.offi.fr"
	OffiDays    = 20

	offiWebsiteLabel = "Site web"
)

// Offi reads the opera, ballet and dance listings of offi.fr. The site is
// queried one day at a time, so every entry carries the day it was listed on.
type Offi struct {
	baseURL string
	days    int
	venues  Fetcher
}

// NewOffi creates the adapter scanning the start day plus days following days.
// venues fetches venue pages to find each venue's own website; nil disables
// the lookup.
func NewOffi(baseURL string, days int, venues Fetcher) *Offi {
	if baseURL == "" {
		baseURL = OffiBaseURL
	}
	if days < 0 {
		days = OffiDays
	}
	return &Offi{
		baseURL: strings.TrimRight(baseURL, "/"),
		days:    days,
		venues:  venues,
	}
}

func (o *Offi) Name() string { return "offi" }

func (o *Offi) ListingPages(start time.Time) []ListingPage {
	first := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)

	pages := make([]ListingPage, 0, o.days+1)
	for i := 0; i <= o.days; i++ {
		day := first.AddDate(0, 0, i)
		param := day.Format("02/01/2006")
		pages = append(pages, ListingPage{
			URL: fmt.Sprintf("%s/theatre/operas-ballets-danse.html?criterion_DateDebut=%s&criterion_DateFin=%s",
				o.baseURL, param, param),
			Day: day,
		})
	}
	return pages
}

func (o *Offi) ParseListing(doc *goquery.Document, page ListingPage) []event.ListingEntry {
	entries := make([]event.ListingEntry, 0)

	doc.Find("div.mini-fiche-details").Each(func(i int, fiche *goquery.Selection) {
		link := fiche.Find(`a[itemprop="url"]`).First()
		href, _ := link.Attr("href")

		title := cleanText(fiche.Find(`[itemprop="name"]`).First())
		if title == "" {
			title = cleanText(link)
		}

		entry := event.ListingEntry{
			Site:  o.Name(),
			URL:   absoluteURL(o.baseURL+"/", href),
			Title: title,
		}
		if !page.Day.IsZero() {
			entry.Date = event.Timestamp(page.Day.Format("2006-01-02"))
		}
		if src := imageSource(fiche.Find("img").First()); src != "" {
			entry.ImageURL = absoluteURL(o.baseURL+"/", strings.Replace(src, "/images/120/", "/images/600/", 1))
		}

		entries = append(entries, entry)
	})

	return entries
}

func (o *Offi) ParseDetail(ctx context.Context, doc *goquery.Document, entry event.ListingEntry) (*event.DetailRecord, error) {
	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}
	text := visibleText(body)
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty page %s", ErrMissingContent, entry.URL)
	}

	venueLink := doc.Find("div.page-subtitle a").First()

	detail := &event.DetailRecord{
		Text:      text,
		EventName: cleanText(doc.Find(`h1[itemprop="name"]`).First()),
		VenueName: cleanText(venueLink),
	}
	if detail.EventName == "" {
		detail.EventName = event.NoEventName
	}
	if detail.VenueName == "" {
		detail.VenueName = event.NoVenueName
	}

	if href, ok := venueLink.Attr("href"); ok && o.venues != nil {
		detail.VenueURL = o.venueWebsite(ctx, absoluteURL(o.baseURL+"/", href))
	}

	return detail, nil
}

// venueWebsite reads the venue's own site from its offi.fr page. Failures
// leave the URL empty; they never fail the entry.
func (o *Offi) venueWebsite(ctx context.Context, venuePage string) string {
	doc, err := o.venues.Fetch(ctx, venuePage)
	if err != nil {
		logger.Warn("Venue page fetch failed", logger.Fields{
			"site":  o.Name(),
			"url":   venuePage,
			"error": err.Error(),
		})
		return ""
	}
	return websiteLink(doc)
}

// websiteLink finds the link labelled "Site web :", preferring a label that
// immediately precedes the link.
func websiteLink(doc *goquery.Document) string {
	var found string

	doc.Find("a[href]").EachWithBreak(func(i int, a *goquery.Selection) bool {
		if prev := a.Get(0).PrevSibling; prev != nil && strings.Contains(goquery.NewDocumentFromNode(prev).Text(), offiWebsiteLabel) {
			found = a.AttrOr("href", "")
			return false
		}
		return true
	})
	if found != "" {
		return found
	}

	doc.Find("a[href]").EachWithBreak(func(i int, a *goquery.Selection) bool {
		if strings.Contains(a.Parent().Text(), offiWebsiteLabel) {
			found = a.AttrOr("href", "")
			return false
		}
		return true
	})
	return found
}
