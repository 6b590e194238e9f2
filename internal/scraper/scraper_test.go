package scraper

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"

	"tabtalk/internal/content"
	"tabtalk/internal/dom"
	"tabtalk/internal/telemetry"
)

type stubScraper struct{ name string }

func (s stubScraper) Name() string { return s.name }

func (s stubScraper) Scrape(ctx context.Context, page dom.Page, opts Options) (content.Content, error) {
	return nil, nil
}

func TestRegistry_CaseInsensitive(t *testing.T) {
	Register(stubScraper{name: "Stub"})

	s, ok := Get("STUB")
	assert.True(t, ok)
	assert.Equal(t, "Stub", s.Name())
	assert.Contains(t, Names(), "stub")

	_, ok = Get("absent")
	assert.False(t, ok)
}

func TestElementNotFoundError(t *testing.T) {
	err := NotFound("panel")

	assert.EqualError(t, err, "element not found: panel")
	assert.ErrorIs(t, err, ErrElementNotFound)

	var enf *ElementNotFoundError
	assert.True(t, errors.As(err, &enf))
	assert.Equal(t, "panel", enf.Stage)
}

func TestFault(t *testing.T) {
	err := Fault(io.ErrUnexpectedEOF)
	assert.ErrorIs(t, err, ErrInternalFault)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestOptions_SinkDefaultsToNop(t *testing.T) {
	assert.Equal(t, telemetry.Nop{}, Options{}.Sink())
}
