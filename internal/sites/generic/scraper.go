package generic

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"tabtalk/internal/content"
	"tabtalk/internal/dom"
	"tabtalk/internal/scraper"
)

// Extraction modes.
const (
	ModeStructured  = "structured"
	ModeReadability = "readability"
)

func init() {
	scraper.Register(&GenericScraper{})
}

// GenericScraper extracts the title and main text of any page.
type GenericScraper struct{}

// Name returns scraper name
func (g *GenericScraper) Name() string {
	return "generic"
}

// Scrape reads the page title and main content and, when requested, a
// screenshot of the viewport. A failed screenshot is not an error.
func (g *GenericScraper) Scrape(ctx context.Context, page dom.Page, opts scraper.Options) (content.Content, error) {
	sink := opts.Sink()
	url := page.URL()
	logger := opts.Logger.With().Str("scraper", g.Name()).Str("url", url).Logger()

	sink.Log("default_content_request_start", map[string]any{
		"url":       url,
		"timestamp": time.Now().UnixMilli(),
	})

	result, err := g.extract(ctx, page, opts)
	if err != nil {
		sink.Log("default_error", map[string]any{"error": err.Error(), "url": url})
		logger.Error().Err(err).Msg("page extraction failed")
		return nil, scraper.Fault(err)
	}

	if opts.Screenshot && opts.Capturer != nil {
		shot, err := opts.Capturer.CaptureViewport(ctx)
		if err != nil {
			sink.Log("screenshot_error", map[string]any{"error": err.Error(), "url": url})
			logger.Warn().Err(err).Msg("failed to capture screenshot")
		} else {
			result.Screenshot = base64.StdEncoding.EncodeToString(shot)
		}
	}

	sink.Log("default_content_success", map[string]any{
		"url":           url,
		"timestamp":     time.Now().UnixMilli(),
		"hasScreenshot": result.Screenshot != "",
	})
	return result, nil
}

func (g *GenericScraper) extract(ctx context.Context, page dom.Page, opts scraper.Options) (*content.Page, error) {
	title, err := page.Title(ctx)
	if err != nil {
		return nil, err
	}
	source, err := page.HTML(ctx)
	if err != nil {
		return nil, err
	}

	if opts.Mode == ModeReadability {
		text, articleHTML, err := ReadableMarkdown(source, page.URL())
		if err == nil {
			return content.NewPage(title, text, page.URL(), articleHTML), nil
		}
		opts.Logger.Debug().Err(err).Msg("readability failed, using structured extraction")
	}

	ext, err := NewExtractor(source)
	if err != nil {
		return nil, err
	}
	text, rootHTML, err := ext.Extract()
	if err != nil {
		return nil, fmt.Errorf("failed to extract main content: %w", err)
	}
	return content.NewPage(title, text, page.URL(), rootHTML), nil
}
