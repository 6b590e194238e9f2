// Package messaging carries requests between the loader, the page-side
// handler and the background screenshot service. Responses are always
// well-formed envelopes; extraction failures show up as a nil content.
package messaging

import (
	"context"
	"errors"

	"tabtalk/internal/content"
)

type Action string

const (
	ActionGetContent        Action = "GET_CONTENT"
	ActionGetTranscript     Action = "GET_TRANSCRIPT"
	ActionGetCurrentTime    Action = "GET_CURRENT_TIME"
	ActionCaptureScreenshot Action = "CAPTURE_SCREENSHOT"
)

type Request struct {
	Action Action `json:"action"`
}

type Response struct {
	Kind        content.Kind      `json:"kind,omitempty"`
	Content     content.Content   `json:"content,omitempty"`
	Transcript  []content.Segment `json:"transcript,omitempty"`
	CurrentTime *float64          `json:"currentTime,omitempty"`
	Screenshot  string            `json:"screenshot,omitempty"` // base64 PNG
	Error       string            `json:"error,omitempty"`
}

// ErrUnreachable means the receiving side of a message could not be reached.
var ErrUnreachable = errors.New("receiving end does not exist")

// Transport delivers a request and returns its response. An error means the
// request was not delivered; it says nothing about extraction success.
type Transport interface {
	Send(ctx context.Context, req Request) (Response, error)
}
