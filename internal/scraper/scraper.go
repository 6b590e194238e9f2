package scraper

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"tabtalk/internal/content"
	"tabtalk/internal/dom"
	"tabtalk/internal/poll"
	"tabtalk/internal/telemetry"
)

// Scraper extracts one content variant from a loaded page.
type Scraper interface {
	Name() string
	Scrape(ctx context.Context, page dom.Page, opts Options) (content.Content, error)
}

// Capturer takes a PNG screenshot of the visible viewport.
type Capturer interface {
	CaptureViewport(ctx context.Context) ([]byte, error)
}

type Options struct {
	Poll       poll.Options
	Mode       string // generic only: structured/readability
	Screenshot bool
	Capturer   Capturer
	Telemetry  telemetry.Sink
	Logger     zerolog.Logger
}

// Sink returns the configured telemetry sink or a no-op one.
func (o Options) Sink() telemetry.Sink {
	if o.Telemetry == nil {
		return telemetry.Nop{}
	}
	return o.Telemetry
}

var (
	ErrElementNotFound = errors.New("element not found")
	ErrInternalFault   = errors.New("internal fault")
)

// ElementNotFoundError reports a required element that never appeared
// within its poll timeout.
type ElementNotFoundError struct {
	Stage string
}

func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("element not found: %s", e.Stage)
}

func (e *ElementNotFoundError) Unwrap() error {
	return ErrElementNotFound
}

// NotFound returns an ElementNotFoundError for stage.
func NotFound(stage string) error {
	return &ElementNotFoundError{Stage: stage}
}

// Fault wraps err as an internal fault.
func Fault(err error) error {
	return fmt.Errorf("%w: %w", ErrInternalFault, err)
}
