package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/dance-events/internal/event"
	"github.com/pfrederiksen/dance-events/internal/logger"
)

// ListingPage is one listing URL to scrape. Day is set when the page lists
// the performances of a single day.
type ListingPage struct {
	URL string
	Day time.Time
}

// Adapter holds the site-specific knowledge: where the listings are and how
// entries and details are laid out.
type Adapter interface {
	Name() string
	ListingPages(start time.Time) []ListingPage
	ParseListing(doc *goquery.Document, page ListingPage) []event.ListingEntry
	ParseDetail(ctx context.Context, doc *goquery.Document, entry event.ListingEntry) (*event.DetailRecord, error)
}

// Scraper runs one Adapter with its fetchers.
type Scraper struct {
	adapter Adapter
	listing Fetcher
	detail  Fetcher
}

// New creates a Scraper fetching listings with listing and detail pages with detail.
func New(adapter Adapter, listing, detail Fetcher) *Scraper {
	return &Scraper{
		adapter: adapter,
		listing: listing,
		detail:  detail,
	}
}

// Name returns the adapter's site name.
func (s *Scraper) Name() string {
	return s.adapter.Name()
}

// Entries fetches every listing page for start and returns their entries in
// page order. A failing page is logged and skipped; an error is returned only
// when no page could be fetched.
func (s *Scraper) Entries(ctx context.Context, start time.Time) ([]event.ListingEntry, error) {
	pages := s.adapter.ListingPages(start)

	entries := make([]event.ListingEntry, 0)
	var failures int
	var lastErr error

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		doc, err := s.listing.Fetch(ctx, page.URL)
		if err != nil {
			logger.Error("Listing page fetch failed", logger.Fields{
				"site": s.Name(),
				"url":  page.URL,
			}, err)
			failures++
			lastErr = err
			continue
		}

		found := s.adapter.ParseListing(doc, page)
		logger.Debug("Listing page parsed", logger.Fields{
			"site":    s.Name(),
			"url":     page.URL,
			"entries": len(found),
		})
		entries = append(entries, found...)
	}

	if len(pages) > 0 && failures == len(pages) {
		return nil, fmt.Errorf("fetching listing for %s: %w", s.Name(), lastErr)
	}
	return entries, nil
}

// FetchDetail fetches and parses the detail page of entry.
func (s *Scraper) FetchDetail(ctx context.Context, entry event.ListingEntry) (*event.DetailRecord, error) {
	doc, err := s.detail.Fetch(ctx, entry.URL)
	if err != nil {
		return nil, fmt.Errorf("fetching detail page: %w", err)
	}
	return s.adapter.ParseDetail(ctx, doc, entry)
}
