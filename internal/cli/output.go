package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pfrederiksen/dance-events/internal/config"
	"github.com/pfrederiksen/dance-events/internal/pipeline"
)

// WriteReport writes the run report in the specified format
func WriteReport(w io.Writer, report pipeline.Report, format config.ReportFormat) error {
	switch format {
	case config.ReportJSON:
		return writeJSON(w, report)
	case config.ReportText, "":
		return writeText(w, report)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs the report as JSON
func writeJSON(w io.Writer, report pipeline.Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

// writeText outputs the report as human-readable text
func writeText(w io.Writer, report pipeline.Report) error {
	fmt.Fprintf(w, "Run %s (start %s)\n", report.RunID, report.Start.Format(startDateLayout))

	if len(report.Sites) == 0 {
		fmt.Fprintln(w, "No sites processed.")
		return nil
	}

	for _, site := range report.Sites {
		fmt.Fprintf(w, "\n%s:\n", site.Site)
		writeCounts(w, site)
	}

	fmt.Fprintf(w, "\nTotal: %d found, %d skipped, %d uploaded, %d failed uploads across %d sites\n",
		report.Total.Found, report.Total.SkippedTotal(), report.Total.Uploaded, report.Total.UploadFailed, len(report.Sites))
	return nil
}

func writeCounts(w io.Writer, s pipeline.SiteReport) {
	fmt.Fprintf(w, "  entries found:      %d\n", s.Found)
	fmt.Fprintf(w, "  entries skipped:    %d%s\n", s.SkippedTotal(), skipBreakdown(s))
	fmt.Fprintf(w, "  summaries degraded: %d\n", s.DegradedSummaries)
	fmt.Fprintf(w, "  records uploaded:   %d\n", s.Uploaded)
	fmt.Fprintf(w, "  uploads failed:     %d\n", s.UploadFailed)
}

// skipBreakdown renders non-zero skip reasons in a fixed order.
func skipBreakdown(s pipeline.SiteReport) string {
	var parts []string
	for _, reason := range pipeline.SkipReasons {
		if n := s.Skipped[reason]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", reason, n))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}
