package pipeline

import (
	"time"
)

// SkipReason categorizes why an entry produced no records.
type SkipReason string

const (
	MissingField   SkipReason = "missing_field"
	ParseFailure   SkipReason = "parse_failure"
	FetchFailure   SkipReason = "fetch_failure"
	ListingFailure SkipReason = "listing_failure"
)

// SkipReasons lists every reason in report order.
var SkipReasons = []SkipReason{MissingField, ParseFailure, FetchFailure, ListingFailure}

// SiteReport holds the counts of one site. A listing failure is counted once
// per site and contributes no found entries.
type SiteReport struct {
	Site              string             `json:"site"`
	Found             int                `json:"entries_found"`
	Skipped           map[SkipReason]int `json:"skipped"`
	DegradedSummaries int                `json:"summaries_degraded"`
	Uploaded          int                `json:"records_uploaded"`
	UploadFailed      int                `json:"uploads_failed"`
}

func newSiteReport(site string) SiteReport {
	return SiteReport{Site: site, Skipped: make(map[SkipReason]int)}
}

// SkippedTotal sums the skips of every reason.
func (s SiteReport) SkippedTotal() int {
	total := 0
	for _, n := range s.Skipped {
		total += n
	}
	return total
}

func (s *SiteReport) add(o SiteReport) {
	s.Found += o.Found
	s.DegradedSummaries += o.DegradedSummaries
	s.Uploaded += o.Uploaded
	s.UploadFailed += o.UploadFailed
	for reason, n := range o.Skipped {
		s.Skipped[reason] += n
	}
}

// Report is the outcome of one run.
type Report struct {
	RunID      string       `json:"run_id"`
	Start      time.Time    `json:"start_date"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Sites      []SiteReport `json:"sites"`
	Total      SiteReport   `json:"total"`
}

func (r *Report) finish(at time.Time) {
	r.FinishedAt = at
	r.Total = newSiteReport("total")
	for _, s := range r.Sites {
		r.Total.add(s)
	}
}
