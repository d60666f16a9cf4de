// Package scraper fetches and parses theatre listing and detail pages.
//
// Each site is described by an Adapter that knows its listing URLs and how to
// pull ListingEntry and DetailRecord values out of goquery documents. A
// Fetcher retrieves the documents, either with a plain HTTP GET or through a
// headless browser for listings rendered by JavaScript. Scraper glues one
// adapter to its fetchers.
package scraper
