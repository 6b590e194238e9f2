// Package dom is the read/act surface extraction strategies use to inspect a
// page. It is implemented by a live browser tab and by static HTML documents.
package dom

import (
	"context"

	"tabtalk/internal/poll"
)

// Page is a loaded document.
type Page interface {
	URL() string
	Title(ctx context.Context) (string, error)
	// Query returns the first element matching selector without waiting.
	Query(ctx context.Context, selector string) (Element, bool, error)
	QueryAll(ctx context.Context, selector string) ([]Element, error)
	// HTML returns the serialized document.
	HTML(ctx context.Context) (string, error)
	// MediaPosition reports the playback position of the first media element.
	MediaPosition(ctx context.Context) (float64, bool, error)
}

// Element is a node inside a Page.
type Element interface {
	// Text returns the element's textContent.
	Text(ctx context.Context) (string, error)
	Click(ctx context.Context) error
	Query(ctx context.Context, selector string) (Element, bool, error)
	// HTML returns the element's outer HTML.
	HTML(ctx context.Context) (string, error)
}

// WaitFor polls page until selector matches or opts.Timeout elapses.
// A timeout reports (nil, false, nil).
func WaitFor(ctx context.Context, page Page, selector string, opts poll.Options) (Element, bool, error) {
	return poll.Until(ctx, opts, func() (Element, bool, error) {
		return page.Query(ctx, selector)
	})
}
