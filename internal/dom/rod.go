package dom

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
)

// RodPage adapts a live rod page.
type RodPage struct {
	page *rod.Page
	url  string
}

// NewRodPage wraps page. url is the address the page was opened at.
func NewRodPage(page *rod.Page, url string) *RodPage {
	return &RodPage{page: page, url: url}
}

// URL returns the current address, falling back to the one it was opened at.
func (p *RodPage) URL() string {
	info, err := p.page.Info()
	if err != nil || info.URL == "" {
		return p.url
	}
	return info.URL
}

func (p *RodPage) Title(ctx context.Context) (string, error) {
	res, err := p.page.Context(ctx).Eval(`() => document.title`)
	if err != nil {
		return "", fmt.Errorf("failed to get page title: %w", err)
	}
	return res.Value.Str(), nil
}

func (p *RodPage) Query(ctx context.Context, selector string) (Element, bool, error) {
	found, el, err := p.page.Context(ctx).Has(selector)
	if err != nil {
		return nil, false, fmt.Errorf("failed to query %q: %w", selector, err)
	}
	if !found {
		return nil, false, nil
	}
	return &rodElement{el: el}, true, nil
}

func (p *RodPage) QueryAll(ctx context.Context, selector string) ([]Element, error) {
	els, err := p.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("failed to query %q: %w", selector, err)
	}
	out := make([]Element, len(els))
	for i, el := range els {
		out[i] = &rodElement{el: el}
	}
	return out, nil
}

func (p *RodPage) HTML(ctx context.Context) (string, error) {
	res, err := p.page.Context(ctx).Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		return "", fmt.Errorf("failed to get full HTML: %w", err)
	}
	return res.Value.Str(), nil
}

func (p *RodPage) MediaPosition(ctx context.Context) (float64, bool, error) {
	res, err := p.page.Context(ctx).Eval(`() => {
		const v = document.querySelector('video');
		return v ? v.currentTime : null;
	}`)
	if err != nil {
		return 0, false, fmt.Errorf("failed to read media position: %w", err)
	}
	if res.Value.Nil() {
		return 0, false, nil
	}
	return res.Value.Num(), true, nil
}

type rodElement struct {
	el *rod.Element
}

func (e *rodElement) Text(ctx context.Context) (string, error) {
	res, err := e.el.Context(ctx).Eval(`() => this.textContent || ''`)
	if err != nil {
		return "", fmt.Errorf("failed to read element text: %w", err)
	}
	return res.Value.Str(), nil
}

// Click dispatches a DOM click, which unlike a synthesized mouse event does
// not require the element to be scrolled into view.
func (e *rodElement) Click(ctx context.Context) error {
	if _, err := e.el.Context(ctx).Eval(`() => this.click()`); err != nil {
		return fmt.Errorf("failed to click element: %w", err)
	}
	return nil
}

func (e *rodElement) Query(ctx context.Context, selector string) (Element, bool, error) {
	found, el, err := e.el.Context(ctx).Has(selector)
	if err != nil {
		return nil, false, fmt.Errorf("failed to query %q: %w", selector, err)
	}
	if !found {
		return nil, false, nil
	}
	return &rodElement{el: el}, true, nil
}

func (e *rodElement) HTML(ctx context.Context) (string, error) {
	html, err := e.el.Context(ctx).HTML()
	if err != nil {
		return "", fmt.Errorf("failed to get element HTML: %w", err)
	}
	return html, nil
}
