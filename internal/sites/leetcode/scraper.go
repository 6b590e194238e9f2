package leetcode

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tabtalk/internal/content"
	"tabtalk/internal/dom"
	"tabtalk/internal/poll"
	"tabtalk/internal/scraper"
)

const (
	selectorProblem = "#qd-content"
	selectorEditor  = ".monaco-editor"
	selectorLines   = ".view-lines"
)

const (
	StageProblem = "problem"
	StageEditor  = "editor"
)

func init() {
	scraper.Register(&LeetCodeScraper{})
}

// LeetCodeScraper reads a problem statement and the code in its editor.
type LeetCodeScraper struct{}

func (s *LeetCodeScraper) Name() string { return "leetcode" }

func (s *LeetCodeScraper) Scrape(ctx context.Context, page dom.Page, opts scraper.Options) (content.Content, error) {
	sink := opts.Sink()
	url := page.URL()

	sink.Log("leetcode_content_request_start", map[string]any{
		"url":       url,
		"timestamp": time.Now().UnixMilli(),
	})

	problem, err := FetchProblem(ctx, page, opts.Poll)
	if err != nil {
		reason := err.Error()
		var enf *scraper.ElementNotFoundError
		if errors.As(err, &enf) {
			reason = enf.Stage + "_not_found"
		}
		sink.Log("leetcode_error", map[string]any{"error": reason, "url": url})
		opts.Logger.Warn().Err(err).Str("url", url).Msg("leetcode extraction failed")
		return nil, err
	}

	sink.Log("leetcode_content_success", map[string]any{
		"url":       url,
		"timestamp": time.Now().UnixMilli(),
	})
	return problem, nil
}

// FetchProblem waits for the statement and editor and reads both.
// A missing line region inside the editor yields an empty solution.
func FetchProblem(ctx context.Context, page dom.Page, opts poll.Options) (*content.Problem, error) {
	statement, ok, err := dom.WaitFor(ctx, page, selectorProblem, opts)
	if err != nil {
		return nil, scraper.Fault(fmt.Errorf("%s: %w", StageProblem, err))
	}
	if !ok {
		return nil, scraper.NotFound(StageProblem)
	}

	editor, ok, err := dom.WaitFor(ctx, page, selectorEditor, opts)
	if err != nil {
		return nil, scraper.Fault(fmt.Errorf("%s: %w", StageEditor, err))
	}
	if !ok {
		return nil, scraper.NotFound(StageEditor)
	}

	description, err := statement.Text(ctx)
	if err != nil {
		return nil, scraper.Fault(err)
	}

	var solution string
	lines, ok, err := editor.Query(ctx, selectorLines)
	if err != nil {
		return nil, scraper.Fault(err)
	}
	if ok {
		if solution, err = lines.Text(ctx); err != nil {
			return nil, scraper.Fault(err)
		}
	}

	return content.NewProblem(description, solution), nil
}
