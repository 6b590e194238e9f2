package browser

import (
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// Config controls how the browser is launched.
type Config struct {
	ProxyURL string
	Headless bool
	Bin      string // optional path to a Chromium binary
	Stealth  bool   // patch new tabs against headless detection
}

// Browser wraps a launched rod.Browser.
type Browser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	proxyURL string
	stealth  bool
}

// New launches and connects to a browser.
func New(cfg Config) (*Browser, error) {
	l := launcher.New().Headless(cfg.Headless)

	if cfg.ProxyURL != "" {
		l = l.Proxy(cfg.ProxyURL)
	}
	if cfg.Bin != "" {
		l = l.Bin(cfg.Bin)
	}

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	return &Browser{
		browser:  browser,
		launcher: l,
		proxyURL: cfg.ProxyURL,
		stealth:  cfg.Stealth,
	}, nil
}

// GetProxyURL returns the proxy the browser was launched with.
func (b *Browser) GetProxyURL() string {
	return b.proxyURL
}

// NewPage opens a blank tab.
func (b *Browser) NewPage() (*rod.Page, error) {
	if b.stealth {
		return stealth.Page(b.browser)
	}
	page, err := b.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// Close closes the browser and kills the launched process.
func (b *Browser) Close() error {
	if b.browser != nil {
		if err := b.browser.Close(); err != nil {
			return err
		}
	}
	if b.launcher != nil {
		b.launcher.Kill()
	}
	return nil
}
