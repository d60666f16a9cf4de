// Package summarizer turns event descriptions into short synopses.
//
// Summarize never fails: when the completion backend errors it returns
// FailureSummary, so a broken backend degrades records instead of dropping them.
package summarizer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abadojack/whatlanggo"
	"github.com/pfrederiksen/dance-events/internal/logger"
)

const (
	// FailureSummary replaces the summary when the backend call fails.
	FailureSummary = "Error in generating summary."
	// EmptySummary is used when there is no description to summarize.
	EmptySummary = "No summary available."

	defaultLanguage = "English"
	defaultMaxInput = 12000
)

// Completer sends one system and one user prompt to a text-completion backend.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Summarizer wraps a Completer with the reporter persona and the fallback policy.
type Summarizer struct {
	completer Completer
	language  string
	timeout   time.Duration
	maxInput  int
}

// Option configures a Summarizer.
type Option func(*Summarizer)

// WithLanguage sets the language summaries are written in.
func WithLanguage(language string) Option {
	return func(s *Summarizer) {
		if language != "" {
			s.language = language
		}
	}
}

// WithTimeout bounds each backend call.
func WithTimeout(d time.Duration) Option {
	return func(s *Summarizer) {
		s.timeout = d
	}
}

// WithMaxInput caps the number of characters of description sent to the backend.
func WithMaxInput(n int) Option {
	return func(s *Summarizer) {
		if n > 0 {
			s.maxInput = n
		}
	}
}

// New creates a Summarizer.
func New(completer Completer, opts ...Option) *Summarizer {
	s := &Summarizer{
		completer: completer,
		language:  defaultLanguage,
		maxInput:  defaultMaxInput,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summarize returns a synopsis of text. It makes a single attempt and
// returns FailureSummary on any backend error or empty answer.
func (s *Summarizer) Summarize(ctx context.Context, text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return EmptySummary
	}
	if s.completer == nil {
		return FailureSummary
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	summary, err := s.completer.Complete(ctx, s.systemPrompt(), s.userPrompt(text))
	if err != nil {
		logger.Error("Summarization failed", logger.Fields{"chars": len(text)}, err)
		return FailureSummary
	}

	summary = strings.TrimSpace(summary)
	if summary == "" {
		logger.Error("Summarization returned no text", logger.Fields{"chars": len(text)}, nil)
		return FailureSummary
	}
	return summary
}

func (s *Summarizer) systemPrompt() string {
	return fmt.Sprintf("You are an earnest, intellectual, curious, and positive arts reporter. "+
		"Please summarize the text in full sentences, in %[1]s. "+
		"If the text is not in %[1]s, please translate it first.", s.language)
}

func (s *Summarizer) userPrompt(text string) string {
	if runes := []rune(text); len(runes) > s.maxInput {
		text = string(runes[:s.maxInput])
	}

	var sb strings.Builder
	if lang, ok := detectForeign(text, s.language); ok {
		sb.WriteString(fmt.Sprintf("The text appears to be in %s.\n", lang))
	}
	sb.WriteString("Here is the text from the website: ")
	sb.WriteString(text)
	return sb.String()
}

// detectForeign reports the language of text when it is reliably detected
// and differs from target.
func detectForeign(text, target string) (string, bool) {
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return "", false
	}
	name := info.Lang.String()
	if name == "" || strings.EqualFold(name, target) {
		return "", false
	}
	return name, true
}
