package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"tabtalk/internal/content"
	"tabtalk/internal/dispatch"
	"tabtalk/internal/dom"
	"tabtalk/internal/scraper"
	"tabtalk/internal/sites/youtube"
)

// Handler answers requests against one page, the way a content script
// injected into that page would.
type Handler struct {
	page        dom.Page
	dispatcher  *dispatch.Dispatcher
	transcripts scraper.Scraper
	opts        scraper.Options
	logger      zerolog.Logger
}

// NewHandler binds a handler to page. opts is passed to every scraper.
func NewHandler(page dom.Page, d *dispatch.Dispatcher, opts scraper.Options) *Handler {
	h := &Handler{
		page:        page,
		dispatcher:  d,
		transcripts: &youtube.YouTubeScraper{},
		opts:        opts,
		logger:      opts.Logger.With().Str("component", "handler").Logger(),
	}
	opts.Sink().Log("content_script_loaded", map[string]any{
		"url":       page.URL(),
		"timestamp": time.Now().UnixMilli(),
	})
	return h
}

// Send implements Transport by handling the request in-process.
func (h *Handler) Send(ctx context.Context, req Request) (Response, error) {
	return h.Handle(ctx, req)
}

// Handle serves req. The error is non-nil only when the page itself cannot
// be reached.
func (h *Handler) Handle(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	if _, err := h.page.Title(ctx); err != nil {
		return Response{}, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}

	switch req.Action {
	case ActionGetContent:
		return h.getContent(ctx), nil
	case ActionGetTranscript:
		return h.getTranscript(ctx), nil
	case ActionGetCurrentTime:
		pos := youtube.CurrentPlaybackSeconds(ctx, h.page)
		return Response{CurrentTime: &pos}, nil
	default:
		return Response{Error: fmt.Sprintf("unknown action %q", req.Action)}, nil
	}
}

func (h *Handler) getContent(ctx context.Context) Response {
	url := h.page.URL()
	s := h.dispatcher.For(url)
	h.logger.Debug().Str("url", url).Str("scraper", s.Name()).Msg("content requested")

	c, err := s.Scrape(ctx, h.page, h.opts)
	h.sent("content_response_sent", url, c, err)
	if err != nil {
		return Response{}
	}
	return Response{Kind: c.Kind(), Content: c}
}

func (h *Handler) getTranscript(ctx context.Context) Response {
	url := h.page.URL()
	h.opts.Sink().Log("transcript_request_received", map[string]any{
		"url":       url,
		"timestamp": time.Now().UnixMilli(),
	})

	c, err := h.transcripts.Scrape(ctx, h.page, h.opts)
	h.sent("transcript_response_sent", url, c, err)
	if err != nil {
		return Response{}
	}
	t, ok := c.(*content.Transcript)
	if !ok {
		return Response{}
	}
	return Response{Kind: content.KindTranscript, Transcript: t.Segments}
}

func (h *Handler) sent(event, url string, c content.Content, err error) {
	data := map[string]any{
		"url":       url,
		"timestamp": time.Now().UnixMilli(),
		"success":   err == nil,
	}
	if err != nil {
		data["error"] = err.Error()
		h.logger.Warn().Err(err).Str("url", url).Msg("no content found")
	} else if t, ok := c.(*content.Transcript); ok {
		data["segments"] = len(t.Segments)
	}
	h.opts.Sink().Log(event, data)
}
