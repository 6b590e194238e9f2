package telemetry

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSink_PostsEvent(t *testing.T) {
	var (
		mu   sync.Mutex
		got  event
		path string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewHTTPSink(srv.URL+"/", zerolog.Nop())
	sink.Log("transcript_success", map[string]any{"segments": 3})
	sink.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "/api/events", path)
	assert.Equal(t, "transcript_success", got.Event)
	assert.Equal(t, float64(3), got.Data["segments"])
}

func TestHTTPSink_SwallowsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sink := NewHTTPSink(srv.URL, zerolog.Nop())
	assert.NotPanics(t, func() {
		sink.Log("x", nil)
		sink.Close()
	})

	unreachable := NewHTTPSink("http://127.0.0.1:1", zerolog.Nop())
	assert.NotPanics(t, func() {
		unreachable.Log("y", map[string]any{"a": 1})
		unreachable.Close()
	})
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	r.Log("a", nil)
	r.Log("b", map[string]any{"k": "v"})

	require.Len(t, r.Events, 2)
	assert.Equal(t, []string{"a", "b"}, r.Names())
	assert.Equal(t, "v", r.Events[1].Data["k"])
}
