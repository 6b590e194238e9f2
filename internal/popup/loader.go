// Package popup drives an extraction from the user's side: it opens the tab,
// delivers the content request with retries and reports a single error
// message when that fails.
package popup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"tabtalk/internal/content"
	"tabtalk/internal/messaging"
	"tabtalk/internal/telemetry"
)

const (
	DefaultAttempts = 3
	DefaultPause    = time.Second
)

var (
	ErrNoActiveTab      = errors.New("no active tab")
	ErrConnectionFailed = errors.New("could not connect to the page")
	ErrNoContent        = errors.New("no content available")
)

// Tab is an open page that accepts requests.
type Tab interface {
	messaging.Transport
	Close() error
}

// TabOpener resolves an address to an open tab.
type TabOpener interface {
	Open(ctx context.Context, url string) (Tab, error)
}

// Loader requests content from a tab. Calls are serialized: a second Load
// waits for the first to finish.
type Loader struct {
	opener   TabOpener
	attempts int
	pause    time.Duration
	sink     telemetry.Sink
	logger   zerolog.Logger

	mu  sync.Mutex
	tab Tab
}

type Option func(*Loader)

// WithRetry sets how many times a request is sent and the pause between tries.
func WithRetry(attempts int, pause time.Duration) Option {
	return func(l *Loader) {
		if attempts > 0 {
			l.attempts = attempts
		}
		if pause >= 0 {
			l.pause = pause
		}
	}
}

func WithTelemetry(s telemetry.Sink) Option {
	return func(l *Loader) {
		if s != nil {
			l.sink = s
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

func NewLoader(opener TabOpener, opts ...Option) *Loader {
	l := &Loader{
		opener:   opener,
		attempts: DefaultAttempts,
		pause:    DefaultPause,
		sink:     telemetry.Nop{},
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With().Str("component", "popup").Logger()
	return l
}

// Load opens url and returns its content.
func (l *Loader) Load(ctx context.Context, url string) (content.Content, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.tab != nil {
		_ = l.tab.Close()
		l.tab = nil
	}

	tab, err := l.opener.Open(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoActiveTab, err)
	}
	l.tab = tab

	l.sink.Log("content_request_start", map[string]any{
		"url":       url,
		"timestamp": time.Now().UnixMilli(),
	})

	resp, err := l.send(ctx, tab, messaging.Request{Action: messaging.ActionGetContent})
	if err != nil {
		return nil, err
	}
	if resp.Content == nil {
		return nil, ErrNoContent
	}
	return resp.Content, nil
}

// CurrentTime asks the most recently loaded tab for its playback position.
func (l *Loader) CurrentTime(ctx context.Context) (float64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.tab == nil {
		return 0, ErrNoActiveTab
	}
	resp, err := l.send(ctx, l.tab, messaging.Request{Action: messaging.ActionGetCurrentTime})
	if err != nil {
		return 0, err
	}
	if resp.CurrentTime == nil {
		return 0, nil
	}
	return *resp.CurrentTime, nil
}

// Close closes the open tab, if any.
func (l *Loader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.tab == nil {
		return nil
	}
	err := l.tab.Close()
	l.tab = nil
	return err
}

func (l *Loader) send(ctx context.Context, tab Tab, req messaging.Request) (messaging.Response, error) {
	var lastErr error
	for attempt := 1; attempt <= l.attempts; attempt++ {
		resp, err := tab.Send(ctx, req)
		if err == nil {
			return resp, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return messaging.Response{}, ctxErr
		}
		lastErr = err
		l.logger.Warn().Err(err).Int("attempt", attempt).Str("action", string(req.Action)).Msg("request failed")

		if attempt == l.attempts {
			break
		}
		timer := time.NewTimer(l.pause)
		select {
		case <-ctx.Done():
			timer.Stop()
			return messaging.Response{}, ctx.Err()
		case <-timer.C:
		}
	}
	return messaging.Response{}, fmt.Errorf("%w after %d attempts: %w", ErrConnectionFailed, l.attempts, lastErr)
}

// UserMessage turns a Load error into the text shown to the user.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoActiveTab):
		return "No active tab found."
	case errors.Is(err, ErrConnectionFailed):
		return "Could not connect to the page. Please refresh the page and try again."
	case errors.Is(err, ErrNoContent):
		return "No content could be extracted from this page."
	case errors.Is(err, context.DeadlineExceeded):
		return "Timed out while loading content."
	default:
		return "Failed to load content: " + err.Error()
	}
}
