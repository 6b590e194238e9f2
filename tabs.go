package main

import (
	"context"
	"fmt"

	"tabtalk/internal/browser"
	"tabtalk/internal/dispatch"
	"tabtalk/internal/dom"
	"tabtalk/internal/messaging"
	"tabtalk/internal/popup"
	"tabtalk/internal/scraper"
	"tabtalk/internal/telemetry"
)

// handlerTab is a page-side handler plus whatever closes the page.
type handlerTab struct {
	*messaging.Handler
	close func() error
}

func (t handlerTab) Close() error {
	if t.close == nil {
		return nil
	}
	return t.close()
}

// browserTabs opens each address in a new tab of one launched browser.
type browserTabs struct {
	browser    *browser.Browser
	open       browser.OpenOptions
	dispatcher *dispatch.Dispatcher
	opts       scraper.Options
	sink       telemetry.Sink
}

func (b *browserTabs) Open(ctx context.Context, url string) (popup.Tab, error) {
	tab, err := b.browser.Open(ctx, url, b.open)
	if err != nil {
		return nil, err
	}

	opts := b.opts
	if opts.Screenshot {
		bg := messaging.NewBackground(tab, b.sink)
		opts.Capturer = messaging.ScreenshotRelay{Background: bg}
	}
	return handlerTab{
		Handler: messaging.NewHandler(tab.DOM, b.dispatcher, opts),
		close:   tab.Close,
	}, nil
}

// fileTabs serves a saved HTML page as if it were loaded from url.
type fileTabs struct {
	path       string
	dispatcher *dispatch.Dispatcher
	opts       scraper.Options
	sink       telemetry.Sink
}

func (f *fileTabs) Open(ctx context.Context, url string) (popup.Tab, error) {
	doc, err := dom.LoadFile(f.path, url)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", f.path, err)
	}

	opts := f.opts
	if opts.Screenshot {
		// A saved page has no viewport; the background answers with an error
		// and extraction continues without a screenshot.
		opts.Capturer = messaging.ScreenshotRelay{Background: messaging.NewBackground(nil, f.sink)}
	}
	return handlerTab{Handler: messaging.NewHandler(doc, f.dispatcher, opts)}, nil
}
