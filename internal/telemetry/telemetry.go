// Package telemetry sends fire-and-forget usage events to a collector.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Sink records named events. Log never blocks on delivery and never fails.
type Sink interface {
	Log(event string, data map[string]any)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Log(string, map[string]any) {}

// HTTPSink posts events as JSON to <endpoint>/api/events.
type HTTPSink struct {
	endpoint string
	client   *http.Client
	logger   zerolog.Logger
	wg       sync.WaitGroup
}

// NewHTTPSink returns a sink for endpoint, e.g. "http://localhost:3000".
func NewHTTPSink(endpoint string, logger zerolog.Logger) *HTTPSink {
	return &HTTPSink{
		endpoint: strings.TrimRight(endpoint, "/") + "/api/events",
		client:   &http.Client{Timeout: 5 * time.Second},
		logger:   logger.With().Str("component", "telemetry").Logger(),
	}
}

type event struct {
	Event string         `json:"event"`
	Data  map[string]any `json:"data"`
}

func (s *HTTPSink) Log(name string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	s.logger.Debug().Str("event", name).Fields(data).Msg("logging event")

	body, err := json.Marshal(event{Event: name, Data: data})
	if err != nil {
		s.logger.Error().Err(err).Str("event", name).Msg("failed to encode event")
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.post(body); err != nil {
			s.logger.Error().Err(err).Str("event", name).Msg("failed to log event")
		}
	}()
}

func (s *HTTPSink) post(body []byte) error {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

// Close waits for in-flight posts to finish.
func (s *HTTPSink) Close() {
	s.wg.Wait()
}

// Recorder keeps events in memory.
type Recorder struct {
	mu     sync.Mutex
	Events []Recorded
}

type Recorded struct {
	Name string
	Data map[string]any
}

func (r *Recorder) Log(name string, data map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, Recorded{Name: name, Data: data})
}

// Names returns recorded event names in order.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.Events))
	for i, e := range r.Events {
		names[i] = e.Name
	}
	return names
}
