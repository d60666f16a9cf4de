package scraper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pfrederiksen/dance-events/internal/event"
)

var testStart = time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)

const tdlvListingHTML = `
<html><body>
  <article class="event-item layout-horizontal page-block">
    <a href="/fr/spectacles/saison-24-25/danse/rosas"><img src="/img/rosas.jpg"></a>
    <h3 class="event-item-title">Rosas danst Rosas</h3>
    <p class="event-item-date"><span>06</span><span>18 janv. 2025</span></p>
  </article>
  <article class="event-item layout-horizontal page-block">
    <a href="https://www.theatredelaville-paris.com/fr/spectacles/solo">Un solo</a>
    <p class="event-item-date">25 févr. 2025</p>
  </article>
  <article class="event-item layout-horizontal page-block">
    <a href="/fr/spectacles/sans-date">Sans date</a>
  </article>
</body></html>`

func TestTheatreDeLaVille_ParseListing(t *testing.T) {
	a := NewTheatreDeLaVille("")
	pages := a.ListingPages(testStart)
	if len(pages) != 1 || pages[0].URL != TheatreDeLaVilleListingURL {
		t.Fatalf("ListingPages() = %+v", pages)
	}

	entries := a.ParseListing(parseHTML(t, tdlvListingHTML), pages[0])
	if len(entries) != 3 {
		t.Fatalf("ParseListing() returned %d entries, want 3", len(entries))
	}

	tests := []struct {
		idx      int
		url      string
		title    string
		kind     event.DateKind
		dateText string
	}{
		{0, "https://www.theatredelaville-paris.com/fr/spectacles/saison-24-25/danse/rosas", "Rosas danst Rosas", event.KindCompactRange, "0618 janv. 2025"},
		{1, "https://www.theatredelaville-paris.com/fr/spectacles/solo", "Un solo", event.KindLocalized, "25 févr. 2025"},
	}

	for _, tt := range tests {
		e := entries[tt.idx]
		if e.URL != tt.url {
			t.Errorf("entries[%d].URL = %q, want %q", tt.idx, e.URL, tt.url)
		}
		if e.Title != tt.title {
			t.Errorf("entries[%d].Title = %q, want %q", tt.idx, e.Title, tt.title)
		}
		if e.Date.Kind != tt.kind || e.Date.Text != tt.dateText {
			t.Errorf("entries[%d].Date = %+v, want %v %q", tt.idx, e.Date, tt.kind, tt.dateText)
		}
	}

	if entries[0].ImageURL != "https://www.theatredelaville-paris.com/img/rosas.jpg" {
		t.Errorf("ImageURL = %q", entries[0].ImageURL)
	}
	if got := entries[2].MissingField(); got != "date" {
		t.Errorf("MissingField() = %q, want date", got)
	}

	span := event.NewParser(event.French).Parse(entries[0].Date)
	if len(span) != 13 {
		t.Errorf("compact range expanded to %d days, want 13", len(span))
	}
}

func TestTheatreDeLaVille_ParseDetail(t *testing.T) {
	a := NewTheatreDeLaVille("")

	tests := []struct {
		name      string
		html      string
		wantName  string
		wantVenue string
		wantErr   error
	}{
		{
			name:      "all elements",
			html:      `<html><body><h1 class="page-title">Rosas danst Rosas</h1><span class="place">Théâtre des Abbesses</span><p>Une pièce culte.</p></body></html>`,
			wantName:  "Rosas danst Rosas",
			wantVenue: "Théâtre des Abbesses",
		},
		{
			name:      "fallbacks",
			html:      `<html><body><h1>Autre titre</h1><p>Une pièce.</p></body></html>`,
			wantName:  event.NoEventName,
			wantVenue: "Théâtre de la Ville",
		},
		{
			name:    "empty page",
			html:    `<html><body>  </body></html>`,
			wantErr: ErrMissingContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detail, err := a.ParseDetail(context.Background(), parseHTML(t, tt.html), event.ListingEntry{URL: "https://x.test"})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ParseDetail() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDetail() error = %v", err)
			}
			if detail.EventName != tt.wantName {
				t.Errorf("EventName = %q, want %q", detail.EventName, tt.wantName)
			}
			if detail.VenueName != tt.wantVenue {
				t.Errorf("VenueName = %q, want %q", detail.VenueName, tt.wantVenue)
			}
			if detail.VenueURL != "https://www.theatredelaville-paris.com/" {
				t.Errorf("VenueURL = %q", detail.VenueURL)
			}
			if detail.Text == "" {
				t.Error("Text is empty")
			}
		})
	}
}

func TestNewTheatreDeLaVille_CustomListing(t *testing.T) {
	a := NewTheatreDeLaVille("http://localhost:8080/fr/spectacles/saison-25-26/danse")
	if a.venueURL != "http://localhost:8080/" {
		t.Errorf("venueURL = %q", a.venueURL)
	}
}
