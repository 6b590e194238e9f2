package messaging

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"tabtalk/internal/scraper"
	"tabtalk/internal/telemetry"
)

// Background serves privileged requests that page-side code cannot make
// itself. It currently only captures screenshots.
type Background struct {
	capturer scraper.Capturer
	sink     telemetry.Sink
}

// NewBackground returns a background service capturing through c. A nil
// capturer makes every capture fail.
func NewBackground(c scraper.Capturer, sink telemetry.Sink) *Background {
	if sink == nil {
		sink = telemetry.Nop{}
	}
	return &Background{capturer: c, sink: sink}
}

func (b *Background) Send(ctx context.Context, req Request) (Response, error) {
	if req.Action != ActionCaptureScreenshot {
		return Response{Error: fmt.Sprintf("unknown action %q", req.Action)}, nil
	}
	if b.capturer == nil {
		return Response{Error: "No tab ID found"}, nil
	}

	shot, err := b.capturer.CaptureViewport(ctx)
	if err != nil {
		b.sink.Log("screenshot_error", map[string]any{"error": err.Error()})
		return Response{Error: "Failed to capture screenshot"}, nil
	}
	b.sink.Log("screenshot_captured", map[string]any{"timestamp": time.Now().UnixMilli()})
	return Response{Screenshot: base64.StdEncoding.EncodeToString(shot)}, nil
}

// ScreenshotRelay lets page-side code capture the viewport by asking the
// background service.
type ScreenshotRelay struct {
	Background Transport
}

func (r ScreenshotRelay) CaptureViewport(ctx context.Context) ([]byte, error) {
	resp, err := r.Background.Send(ctx, Request{Action: ActionCaptureScreenshot})
	if err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, errors.New(resp.Error)
	}
	shot, err := base64.StdEncoding.DecodeString(resp.Screenshot)
	if err != nil {
		return nil, fmt.Errorf("invalid screenshot payload: %w", err)
	}
	return shot, nil
}
