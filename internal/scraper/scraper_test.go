package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/dance-events/internal/event"
)

func TestHTTPFetcher_Fetch(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		wantErr    bool
		wantStatus int
		wantTitle  string
	}{
		{
			name:       "ok",
			statusCode: http.StatusOK,
			body:       `<html><head><title>Programmation</title></head><body></body></html>`,
			wantTitle:  "Programmation",
		},
		{
			name:       "not found",
			statusCode: http.StatusNotFound,
			wantErr:    true,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "server error",
			statusCode: http.StatusBadGateway,
			wantErr:    true,
			wantStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if ua := r.Header.Get("User-Agent"); !strings.Contains(ua, "dance-events") {
					t.Errorf("User-Agent = %q, should contain 'dance-events'", ua)
				}
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			doc, err := NewHTTPFetcher(time.Second).Fetch(context.Background(), server.URL)

			if tt.wantErr {
				var statusErr *StatusError
				if !errors.As(err, &statusErr) {
					t.Fatalf("Fetch() error = %v, want *StatusError", err)
				}
				if statusErr.Code != tt.wantStatus {
					t.Errorf("StatusError.Code = %d, want %d", statusErr.Code, tt.wantStatus)
				}
				return
			}
			if err != nil {
				t.Fatalf("Fetch() unexpected error: %v", err)
			}
			if got := doc.Find("title").Text(); got != tt.wantTitle {
				t.Errorf("title = %q, want %q", got, tt.wantTitle)
			}
		})
	}
}

func TestHTTPFetcher_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	if _, err := NewHTTPFetcher(20*time.Millisecond).Fetch(context.Background(), server.URL); err == nil {
		t.Error("Fetch() expected timeout error, got nil")
	}
}

func TestVisibleText(t *testing.T) {
	html := `<div>
		<h2>Titre</h2>
		<script>var x = 1;</script>
		<style>.a{}</style>
		<p>Une   pièce
		   pour douze danseurs.</p>
		<p><span>Durée</span> 1h30</p>
	</div>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}

	got := visibleText(doc.Find("div"))
	want := "Titre\nUne pièce pour douze danseurs.\nDurée\n1h30"
	if got != want {
		t.Errorf("visibleText() = %q, want %q", got, want)
	}
}

func TestAbsoluteURL(t *testing.T) {
	tests := []struct {
		base string
		href string
		want string
	}{
		{"https://theatre-chaillot.fr/fr/programmation", "/fr/spectacle/x", "https://theatre-chaillot.fr/fr/spectacle/x"},
		{"https://theatre-chaillot.fr", "https://cdn.example.com/a.jpg", "https://cdn.example.com/a.jpg"},
		{"https://www.offi.fr/", "theatre/x.html", "https://www.offi.fr/theatre/x.html"},
		{"https://www.offi.fr/", "  ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.href, func(t *testing.T) {
			if got := absoluteURL(tt.base, tt.href); got != tt.want {
				t.Errorf("absoluteURL(%q, %q) = %q, want %q", tt.base, tt.href, got, tt.want)
			}
		})
	}
}

// stubFetcher serves canned documents by URL.
type stubFetcher struct {
	pages map[string]string
	calls []string
}

func (f *stubFetcher) Fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	f.calls = append(f.calls, pageURL)
	body, ok := f.pages[pageURL]
	if !ok {
		return nil, &StatusError{URL: pageURL, Code: http.StatusNotFound}
	}
	return goquery.NewDocumentFromReader(strings.NewReader(body))
}

func TestScraper_EntriesSkipsFailedPages(t *testing.T) {
	start := time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)
	adapter := NewOffi("https://offi.test", 2, nil)
	pages := adapter.ListingPages(start)

	fetcher := &stubFetcher{pages: map[string]string{
		pages[0].URL: offiListingHTML,
		pages[2].URL: offiListingHTML,
	}}

	entries, err := New(adapter, fetcher, fetcher).Entries(context.Background(), start)
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("Entries() returned %d entries, want 4", len(entries))
	}
	if len(fetcher.calls) != 3 {
		t.Errorf("fetched %d pages, want 3", len(fetcher.calls))
	}

	want := []string{"2025-01-06", "2025-01-06", "2025-01-08", "2025-01-08"}
	for i, e := range entries {
		if e.Date.Start != want[i] {
			t.Errorf("entries[%d].Date = %q, want %q", i, e.Date.Start, want[i])
		}
	}
}

func TestScraper_EntriesAllPagesFail(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string]string{}}

	_, err := New(NewChaillot("https://chaillot.test"), fetcher, fetcher).Entries(context.Background(), time.Now())

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Errorf("Entries() error = %v, want wrapped *StatusError", err)
	}
}

func TestScraper_FetchDetail(t *testing.T) {
	entry := event.ListingEntry{URL: "https://chaillot.test/fr/spectacle/ballet", Title: "Ballet", Location: "Salle Gémier"}
	fetcher := &stubFetcher{pages: map[string]string{entry.URL: chaillotDetailHTML}}

	s := New(NewChaillot("https://chaillot.test"), fetcher, fetcher)

	detail, err := s.FetchDetail(context.Background(), entry)
	if err != nil {
		t.Fatalf("FetchDetail() error = %v", err)
	}
	if detail.EventName != "Le Lac des cygnes" {
		t.Errorf("EventName = %q", detail.EventName)
	}

	_, err = s.FetchDetail(context.Background(), event.ListingEntry{URL: "https://chaillot.test/missing"})
	if err == nil {
		t.Error("FetchDetail() expected error for missing page")
	}
}
