package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pfrederiksen/dance-events/internal/config"
	"github.com/pfrederiksen/dance-events/internal/event"
	"github.com/pfrederiksen/dance-events/internal/logger"
	"github.com/pfrederiksen/dance-events/internal/metrics"
	"github.com/pfrederiksen/dance-events/internal/pipeline"
	"github.com/pfrederiksen/dance-events/internal/scraper"
	"github.com/pfrederiksen/dance-events/internal/storage"
	"github.com/pfrederiksen/dance-events/internal/summarizer"
	"github.com/pfrederiksen/dance-events/internal/uploader"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitError   = 1

	startDateLayout = "02/01/2006"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dance-events [DD/MM/YYYY]",
		Short: "Scrape Paris dance listings into Airtable",
		Long: `A CLI tool that collects dance performances from Paris venue websites,
summarizes each one and uploads one Airtable row per performance day.

The optional argument is the start date in day/month/year order; it
defaults to today. Everything else is configured through the environment
or a .env file.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runScrape,
	}
}

// parseStartDate reads the optional positional date, defaulting to today.
func parseStartDate(args []string, now time.Time) (time.Time, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()), nil
	}
	start, err := time.ParseInLocation(startDateLayout, strings.TrimSpace(args[0]), now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start date %q (expected DD/MM/YYYY)", args[0])
	}
	return start, nil
}

// runScrape is the main command logic
func runScrape(cmd *cobra.Command, args []string) error {
	start, err := parseStartDate(args, time.Now())
	if err != nil {
		return err
	}

	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log, closer := logger.Open(level, logger.FileConfig{Path: cfg.LogFile})
	defer closer.Close()
	logger.SetDefault(log)

	sites, err := buildSites(cfg)
	if err != nil {
		return err
	}

	up, err := buildUploader(cfg, cmd.OutOrStdout())
	if err != nil {
		return fmt.Errorf("initializing uploader: %w", err)
	}

	rec := metrics.New()
	orch, err := pipeline.New(buildSummarizer(cfg), up, rec)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, runErr := orch.Run(ctx, sites, start)

	if err := WriteReport(cmd.OutOrStdout(), report, cfg.ReportFormat); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	if cfg.DataDir != "" {
		saveReport(cfg.DataDir, report)
	}

	if cfg.MetricsFile != "" {
		if err := rec.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Error("Writing metrics textfile failed", logger.Fields{"path": cfg.MetricsFile}, err)
		}
	}

	if errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("run interrupted: %w", runErr)
	}
	return runErr
}

// saveReport stores the report in the history directory and logs how it
// compares to the previous run. Failures are logged only.
func saveReport(dataDir string, report pipeline.Report) {
	store, err := storage.New(dataDir)
	if err != nil {
		logger.Error("Opening report history failed", logger.Fields{"dir": dataDir}, err)
		return
	}

	previous, err := store.LoadLatest()
	if err != nil {
		logger.Warn("Previous report unreadable", logger.Fields{"dir": store.Dir(), "error": err.Error()})
	} else if previous != nil {
		logger.Info("Compared with previous run", logger.Fields{
			"previous_run_id":   previous.RunID,
			"previous_uploaded": previous.Total.Uploaded,
			"uploaded":          report.Total.Uploaded,
		})
	}

	path, err := store.SaveReport(report)
	if err != nil {
		logger.Error("Saving report failed", logger.Fields{"dir": store.Dir()}, err)
		return
	}
	logger.Debug("Report saved", logger.Fields{"path": path})
}

// buildSites wires one pipeline.Site per configured site name, in order.
// Chaillot builds its listing client-side, so only its listing is rendered.
func buildSites(cfg config.Config) ([]pipeline.Site, error) {
	httpFetcher := scraper.NewHTTPFetcher(cfg.Timeout)
	parser := event.NewParser(event.French)

	sites := make([]pipeline.Site, 0, len(cfg.Sites))
	for _, name := range cfg.Sites {
		var sc *scraper.Scraper
		switch name {
		case "chaillot":
			browser := scraper.NewBrowserFetcher(scraper.ChaillotCardSelector, cfg.RenderTimeout, cfg.ChromePath)
			sc = scraper.New(scraper.NewChaillot(""), browser, httpFetcher)
		case "theatredelaville":
			sc = scraper.New(scraper.NewTheatreDeLaVille(cfg.TDLVListingURL), httpFetcher, httpFetcher)
		case "offi":
			sc = scraper.New(scraper.NewOffi("", cfg.OffiDays, httpFetcher), httpFetcher, httpFetcher)
		default:
			return nil, fmt.Errorf("unknown site %q", name)
		}
		sites = append(sites, pipeline.Site{Source: sc, Details: sc, Parser: parser})
	}
	return sites, nil
}

// buildSummarizer returns a summarizer without a backend when no API key is
// set, which only a dry run allows; every summary is then FailureSummary.
func buildSummarizer(cfg config.Config) *summarizer.Summarizer {
	opts := []summarizer.Option{
		summarizer.WithLanguage(cfg.SummaryLanguage),
		summarizer.WithTimeout(cfg.Timeout),
	}
	if cfg.OpenAIAPIKey == "" {
		logger.Warn("No OpenAI API key, summaries disabled", nil)
		return summarizer.New(nil, opts...)
	}

	completer := summarizer.NewOpenAICompleter(summarizer.OpenAIConfig{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		BaseURL: cfg.OpenAIBaseURL,
		Timeout: cfg.Timeout,
	})
	return summarizer.New(completer, opts...)
}

func buildUploader(cfg config.Config, out io.Writer) (pipeline.Uploader, error) {
	if cfg.DryRun {
		return uploader.NewDryRunUploader(out), nil
	}
	client, err := uploader.NewAirtableClient(cfg.AirtableAPIKey, cfg.AirtableBaseID, cfg.AirtableTable,
		uploader.WithAPIURL(cfg.AirtableAPIURL),
		uploader.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
