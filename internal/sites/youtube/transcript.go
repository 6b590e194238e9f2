package youtube

import (
	"context"
	"fmt"
	"strings"

	"tabtalk/internal/content"
	"tabtalk/internal/dom"
	"tabtalk/internal/poll"
	"tabtalk/internal/scraper"
	"tabtalk/internal/timecode"
)

const (
	selectorExpander       = "ytd-video-description-transcript-section-renderer button"
	selectorShowTranscript = "ytd-button-renderer[button-renderer] button"
	selectorPanel          = "ytd-transcript-renderer"
	selectorSegment        = "ytd-transcript-segment-renderer"
	selectorSegmentText    = ".segment-text"
	selectorSegmentTime    = ".segment-timestamp"
)

// Stages reported by ElementNotFoundError.
const (
	StageExpander       = "expander"
	StageShowTranscript = "show_transcript"
	StagePanel          = "panel"
	StageSegments       = "segments"
)

// FetchTranscript opens the transcript panel and reads every row.
// Each stage gets the full poll timeout of its own.
func FetchTranscript(ctx context.Context, page dom.Page, opts poll.Options) (*content.Transcript, error) {
	if err := reveal(ctx, page, selectorExpander, StageExpander, opts); err != nil {
		return nil, err
	}
	if err := reveal(ctx, page, selectorShowTranscript, StageShowTranscript, opts); err != nil {
		return nil, err
	}

	if _, err := waitRequired(ctx, page, selectorPanel, StagePanel, opts); err != nil {
		return nil, err
	}
	if _, err := waitRequired(ctx, page, selectorSegment, StageSegments, opts); err != nil {
		return nil, err
	}

	els, err := page.QueryAll(ctx, selectorSegment)
	if err != nil {
		return nil, scraper.Fault(err)
	}

	rows := make([]content.Row, 0, len(els))
	for _, el := range els {
		text, err := childText(ctx, el, selectorSegmentText)
		if err != nil {
			return nil, scraper.Fault(err)
		}
		label, err := childText(ctx, el, selectorSegmentTime)
		if err != nil {
			return nil, scraper.Fault(err)
		}
		rows = append(rows, content.Row{Text: strings.TrimSpace(text), Start: float64(timecode.Parse(label))})
	}

	return content.NewTranscript(rows), nil
}

// CurrentPlaybackSeconds reads the position of the page's first media
// element, or 0 when there is none.
func CurrentPlaybackSeconds(ctx context.Context, page dom.Page) float64 {
	pos, ok, err := page.MediaPosition(ctx)
	if err != nil || !ok {
		return 0
	}
	return pos
}

func reveal(ctx context.Context, page dom.Page, selector, stage string, opts poll.Options) error {
	el, err := waitRequired(ctx, page, selector, stage, opts)
	if err != nil {
		return err
	}
	if err := el.Click(ctx); err != nil {
		return scraper.Fault(fmt.Errorf("%s: %w", stage, err))
	}
	return nil
}

func waitRequired(ctx context.Context, page dom.Page, selector, stage string, opts poll.Options) (dom.Element, error) {
	el, ok, err := dom.WaitFor(ctx, page, selector, opts)
	if err != nil {
		return nil, scraper.Fault(fmt.Errorf("%s: %w", stage, err))
	}
	if !ok {
		return nil, scraper.NotFound(stage)
	}
	return el, nil
}

func childText(ctx context.Context, el dom.Element, selector string) (string, error) {
	child, ok, err := el.Query(ctx, selector)
	if err != nil || !ok {
		return "", err
	}
	return child.Text(ctx)
}
