package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
)

// BrowserFetcher renders pages in headless Chrome before parsing them.
// It is used for listings built client-side.
type BrowserFetcher struct {
	waitSelector string
	timeout      time.Duration
	execPath     string
}

// NewBrowserFetcher creates a fetcher that waits until waitSelector is present.
// An empty execPath lets chromedp locate the browser.
func NewBrowserFetcher(waitSelector string, timeout time.Duration, execPath string) *BrowserFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &BrowserFetcher{
		waitSelector: waitSelector,
		timeout:      timeout,
		execPath:     execPath,
	}
}

func (f *BrowserFetcher) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts, chromedp.UserAgent(UserAgent))
	if f.execPath != "" {
		opts = append(opts, chromedp.ExecPath(f.execPath))
	}
	return opts
}

func (f *BrowserFetcher) actions(pageURL string, out *string) []chromedp.Action {
	actions := []chromedp.Action{chromedp.Navigate(pageURL)}
	if f.waitSelector != "" {
		actions = append(actions, chromedp.WaitReady(f.waitSelector, chromedp.ByQuery))
	}
	return append(actions, chromedp.OuterHTML("html", out, chromedp.ByQuery))
}

// Fetch renders pageURL and parses the resulting DOM.
func (f *BrowserFetcher) Fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, f.allocatorOptions()...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	browserCtx, cancel := context.WithTimeout(browserCtx, f.timeout)
	defer cancel()

	var rendered string
	if err := chromedp.Run(browserCtx, f.actions(pageURL, &rendered)...); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", pageURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rendered))
	if err != nil {
		return nil, fmt.Errorf("parsing rendered HTML: %w", err)
	}
	return doc, nil
}
