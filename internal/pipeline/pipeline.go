package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pfrederiksen/dance-events/internal/event"
	"github.com/pfrederiksen/dance-events/internal/logger"
	"github.com/pfrederiksen/dance-events/internal/metrics"
	"github.com/pfrederiksen/dance-events/internal/summarizer"
)

// ListingSource enumerates the entries a site lists from a start date.
type ListingSource interface {
	Name() string
	Entries(ctx context.Context, start time.Time) ([]event.ListingEntry, error)
}

// DetailFetcher loads the detail page of an entry.
type DetailFetcher interface {
	FetchDetail(ctx context.Context, entry event.ListingEntry) (*event.DetailRecord, error)
}

// Summarizer condenses a description. It never fails; degraded output is
// signalled by summarizer.FailureSummary.
type Summarizer interface {
	Summarize(ctx context.Context, text string) string
}

// Uploader stores one record.
type Uploader interface {
	Upload(ctx context.Context, fields map[string]string) error
}

// Site bundles the per-site collaborators. Parser carries the locale used
// both to read the site's dates and to render record dates.
type Site struct {
	Source  ListingSource
	Details DetailFetcher
	Parser  *event.Parser
}

// Orchestrator drives the per-entry steps for every site.
type Orchestrator struct {
	summarizer Summarizer
	uploader   Uploader
	metrics    *metrics.Recorder
	now        func() time.Time
}

// New creates an Orchestrator. A nil recorder gets a private one.
func New(s Summarizer, u Uploader, rec *metrics.Recorder) (*Orchestrator, error) {
	if s == nil {
		return nil, errors.New("pipeline requires a summarizer")
	}
	if u == nil {
		return nil, errors.New("pipeline requires an uploader")
	}
	if rec == nil {
		rec = metrics.New()
	}
	return &Orchestrator{summarizer: s, uploader: u, metrics: rec, now: time.Now}, nil
}

// Run processes every site in order starting from start. Per-entry failures
// are counted in the report; the error is non-nil only when ctx ends the run,
// in which case the report covers the work done so far.
func (o *Orchestrator) Run(ctx context.Context, sites []Site, start time.Time) (Report, error) {
	report := Report{
		RunID:     uuid.NewString(),
		Start:     start,
		StartedAt: o.now(),
		Sites:     make([]SiteReport, 0, len(sites)),
	}

	logger.Info("Run started", logger.Fields{
		"run_id": report.RunID,
		"start":  start.Format("2006-01-02"),
		"sites":  len(sites),
	})

	var runErr error
	for _, site := range sites {
		sr, err := o.runSite(ctx, site, start)
		report.Sites = append(report.Sites, sr)
		if err != nil {
			runErr = err
			break
		}
	}

	report.finish(o.now())
	o.metrics.Finish(report.FinishedAt)

	logger.Info("Run finished", logger.Fields{
		"run_id":   report.RunID,
		"found":    report.Total.Found,
		"skipped":  report.Total.SkippedTotal(),
		"uploaded": report.Total.Uploaded,
		"failed":   report.Total.UploadFailed,
		"duration": report.FinishedAt.Sub(report.StartedAt).String(),
	})

	return report, runErr
}

func (o *Orchestrator) runSite(ctx context.Context, site Site, start time.Time) (SiteReport, error) {
	name := site.Source.Name()
	sr := newSiteReport(name)

	began := time.Now()
	entries, err := site.Source.Entries(ctx, start)
	o.metrics.ObserveStage("listing", time.Since(began))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return sr, ctxErr
		}
		logger.Error("Listing failed", logger.Fields{"site": name}, err)
		sr.Skipped[ListingFailure]++
		o.metrics.EntrySkipped(name, string(ListingFailure))
		return sr, nil
	}

	logger.Info("Listing fetched", logger.Fields{"site": name, "entries": len(entries)})

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return sr, err
		}
		sr.Found++
		o.metrics.EntryFound(name)
		if err := o.processEntry(ctx, site, entry, &sr); err != nil {
			return sr, err
		}
	}

	return sr, nil
}

// processEntry runs the steps for one entry. Entry failures are counted and
// logged; the returned error is non-nil only when ctx has ended, in which
// case nothing about the interrupted step is counted.
func (o *Orchestrator) processEntry(ctx context.Context, site Site, entry event.ListingEntry, sr *SiteReport) error {
	if field := entry.MissingField(); field != "" {
		o.skip(sr, entry, MissingField, fmt.Errorf("missing %s", field))
		return nil
	}

	span, err := site.Parser.ParseSpan(entry.Date)
	if err == nil && len(span) == 0 {
		err = event.ErrUnparseableDate
	}
	if err != nil {
		o.skip(sr, entry, ParseFailure, fmt.Errorf("date %q: %w", entry.Date.String(), err))
		return nil
	}

	began := time.Now()
	detail, err := site.Details.FetchDetail(ctx, entry)
	o.metrics.ObserveStage("detail", time.Since(began))
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil {
		o.skip(sr, entry, FetchFailure, err)
		return nil
	}

	began = time.Now()
	summary := o.summarizer.Summarize(ctx, detail.Text)
	o.metrics.ObserveStage("summarize", time.Since(began))
	if err := ctx.Err(); err != nil {
		return err
	}
	switch summary {
	case summarizer.FailureSummary:
		sr.DegradedSummaries++
		o.metrics.Summary(sr.Site, metrics.SummaryFailed)
	case summarizer.EmptySummary:
		o.metrics.Summary(sr.Site, metrics.SummaryEmpty)
	default:
		o.metrics.Summary(sr.Site, metrics.SummaryOK)
	}

	for _, rec := range event.BuildRecords(entry, *detail, span, summary, site.Parser.Locale()) {
		if err := ctx.Err(); err != nil {
			return err
		}

		began = time.Now()
		err := o.uploader.Upload(ctx, rec.Fields())
		o.metrics.ObserveStage("upload", time.Since(began))
		if ctxErr := ctx.Err(); err != nil && ctxErr != nil {
			return ctxErr
		}
		o.metrics.Upload(sr.Site, err == nil)

		if err != nil {
			sr.UploadFailed++
			logger.Error("Upload failed", logger.Fields{
				"site":  sr.Site,
				"url":   entry.URL,
				"event": rec.EventName,
				"date":  rec.Date,
				"key":   rec.Key(),
			}, err)
			continue
		}
		sr.Uploaded++
		logger.Debug("Record uploaded", logger.Fields{
			"site":  sr.Site,
			"event": rec.EventName,
			"date":  rec.Date,
		})
	}
	return nil
}

func (o *Orchestrator) skip(sr *SiteReport, entry event.ListingEntry, reason SkipReason, err error) {
	sr.Skipped[reason]++
	o.metrics.EntrySkipped(sr.Site, string(reason))
	logger.Warn("Skipping entry", logger.Fields{
		"site":   sr.Site,
		"url":    entry.URL,
		"title":  entry.Title,
		"reason": string(reason),
		"error":  err.Error(),
	})
}
