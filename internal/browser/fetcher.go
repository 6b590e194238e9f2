package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"tabtalk/internal/dom"
)

// WaitStrategy wait strategy type
type WaitStrategy string

const (
	WaitStrategyLoad    WaitStrategy = "load"    // Wait for page load, then network idle
	WaitStrategyElement WaitStrategy = "element" // Wait for specific element to appear
	WaitStrategyTime    WaitStrategy = "time"    // Wait for fixed time
)

// OpenOptions controls how a tab is opened.
type OpenOptions struct {
	Headers    map[string]string
	WaitFor    WaitStrategy
	WaitTarget string
	Timeout    time.Duration
}

// Tab is an opened page together with the dom view of it.
type Tab struct {
	Page *rod.Page
	DOM  *dom.RodPage
}

// Close closes the tab.
func (t *Tab) Close() error {
	return t.Page.Close()
}

// CaptureViewport takes a PNG of the visible viewport.
func (t *Tab) CaptureViewport(ctx context.Context) ([]byte, error) {
	shot, err := t.Page.Context(ctx).Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}
	return shot, nil
}

// Open navigates a new tab to url and applies the wait strategy.
func (b *Browser) Open(ctx context.Context, url string, opts OpenOptions) (*Tab, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	page, err := b.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	page = page.Context(ctx)

	if len(opts.Headers) > 0 {
		headerList := make([]string, 0, len(opts.Headers)*2)
		for k, v := range opts.Headers {
			headerList = append(headerList, k, v)
		}
		cleanup, err := page.SetExtraHeaders(headerList)
		if err != nil {
			page.Close()
			return nil, fmt.Errorf("failed to set headers: %w", err)
		}
		defer cleanup()
	}

	if err := page.Timeout(opts.Timeout).Navigate(url); err != nil {
		page.Close()
		return nil, fmt.Errorf("failed to navigate: %w", err)
	}

	if err := applyWaitStrategy(page, opts); err != nil {
		page.Close()
		return nil, fmt.Errorf("wait strategy failed: %w", err)
	}

	return &Tab{Page: page, DOM: dom.NewRodPage(page, url)}, nil
}

func applyWaitStrategy(page *rod.Page, opts OpenOptions) error {
	switch opts.WaitFor {
	case WaitStrategyElement:
		if opts.WaitTarget == "" {
			return fmt.Errorf("wait target is required for element strategy")
		}
		if _, err := page.Timeout(opts.Timeout).Element(opts.WaitTarget); err != nil {
			return fmt.Errorf("failed to wait for element '%s': %w", opts.WaitTarget, err)
		}

	case WaitStrategyTime:
		if opts.WaitTarget == "" {
			return fmt.Errorf("wait target is required for time strategy")
		}
		duration, err := time.ParseDuration(opts.WaitTarget + "ms")
		if err != nil {
			return fmt.Errorf("invalid wait time '%s': %w", opts.WaitTarget, err)
		}
		time.Sleep(duration)

	default:
		if err := page.Timeout(opts.Timeout).WaitLoad(); err != nil {
			return fmt.Errorf("failed to wait for page load: %w", err)
		}
		// JS-driven pages keep populating after load; give them until the
		// network goes quiet.
		wait := page.Timeout(opts.Timeout).WaitRequestIdle(
			500*time.Millisecond, nil, nil,
			[]proto.NetworkResourceType{proto.NetworkResourceTypeImage, proto.NetworkResourceTypeMedia},
		)
		wait()
	}

	return nil
}
