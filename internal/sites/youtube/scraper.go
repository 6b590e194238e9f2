package youtube

import (
	"context"
	"errors"
	"time"

	"tabtalk/internal/content"
	"tabtalk/internal/dom"
	"tabtalk/internal/scraper"
)

func init() {
	scraper.Register(&YouTubeScraper{})
}

// YouTubeScraper reads the transcript of a YouTube watch page.
type YouTubeScraper struct{}

func (s *YouTubeScraper) Name() string { return "youtube" }

func (s *YouTubeScraper) Scrape(ctx context.Context, page dom.Page, opts scraper.Options) (content.Content, error) {
	sink := opts.Sink()
	url := page.URL()
	logger := opts.Logger.With().Str("scraper", s.Name()).Str("url", url).Logger()

	sink.Log("transcript_request_start", map[string]any{
		"url":       url,
		"timestamp": time.Now().UnixMilli(),
	})

	transcript, err := FetchTranscript(ctx, page, opts.Poll)
	if err != nil {
		reason := err.Error()
		var enf *scraper.ElementNotFoundError
		if errors.As(err, &enf) {
			reason = enf.Stage + "_not_found"
		}
		sink.Log("transcript_error", map[string]any{"error": reason, "url": url})
		logger.Warn().Err(err).Msg("transcript extraction failed")
		return nil, err
	}

	sink.Log("transcript_success", map[string]any{
		"url":      url,
		"segments": len(transcript.Segments),
	})
	logger.Debug().Int("segments", len(transcript.Segments)).Msg("transcript extracted")
	return transcript, nil
}
