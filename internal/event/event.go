package event

import (
	"crypto/sha1"
	"fmt"
	"strings"
)

// Field names of the destination table.
const (
	FieldEventName  = "Event Name"
	FieldLocation   = "Location"
	FieldDate       = "Date"
	FieldVenueURL   = "Venue URL"
	FieldImageURL   = "Image URL"
	FieldSummary    = "Summary"
	FieldDetailsURL = "Details URL"
)

// Sentinels used when a detail page lacks the expected element.
const (
	NoEventName = "No event name found"
	NoVenueName = "No venue name found"
)

// ListingEntry is one row scraped from a site's listing page.
type ListingEntry struct {
	Site     string  `json:"site"`
	URL      string  `json:"url"`
	Title    string  `json:"title"`
	Date     RawDate `json:"date"`
	Location string  `json:"location,omitempty"`
	ImageURL string  `json:"image_url,omitempty"`
}

// MissingField returns the name of the first required field that is empty,
// or "" when the entry can be processed.
func (e ListingEntry) MissingField() string {
	switch {
	case strings.TrimSpace(e.URL) == "":
		return "url"
	case strings.TrimSpace(e.Title) == "":
		return "title"
	case e.Date.IsEmpty():
		return "date"
	}
	return ""
}

// DetailRecord is what a detail page yields for one event
type DetailRecord struct {
	Text      string `json:"text"`
	EventName string `json:"event_name"`
	VenueName string `json:"venue_name"`
	VenueURL  string `json:"venue_url"`
	ImageURL  string `json:"image_url,omitempty"`
}

// UploadRecord is one destination row. Date is already rendered as
// long-form localized text.
type UploadRecord struct {
	EventName  string `json:"Event Name"`
	Location   string `json:"Location"`
	Date       string `json:"Date"`
	VenueURL   string `json:"Venue URL"`
	ImageURL   string `json:"Image URL"`
	Summary    string `json:"Summary"`
	DetailsURL string `json:"Details URL"`
}

// Fields flattens the record into the field map sent to the datastore.
func (r UploadRecord) Fields() map[string]string {
	return map[string]string{
		FieldEventName:  r.EventName,
		FieldLocation:   r.Location,
		FieldDate:       r.Date,
		FieldVenueURL:   r.VenueURL,
		FieldImageURL:   r.ImageURL,
		FieldSummary:    r.Summary,
		FieldDetailsURL: r.DetailsURL,
	}
}

// Key returns a deterministic identifier for the (event, date) pair.
// It is only used to correlate log lines; uploads are not deduplicated.
func (r UploadRecord) Key() string {
	h := sha1.New()
	h.Write([]byte(r.DetailsURL + "|" + r.Date))
	return fmt.Sprintf("%x", h.Sum(nil))
}
