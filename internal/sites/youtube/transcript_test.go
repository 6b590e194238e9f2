package youtube

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabtalk/internal/content"
	"tabtalk/internal/dom"
	"tabtalk/internal/poll"
	"tabtalk/internal/scraper"
	"tabtalk/internal/telemetry"
)

var fastPoll = poll.Options{Timeout: 100 * time.Millisecond, Interval: 10 * time.Millisecond}

// watchPage mimics a watch page whose transcript controls only render after
// the preceding control is clicked.
type watchPage struct {
	mu       sync.Mutex
	visible  map[string][]dom.Element
	onClick  map[string]func()
	clicks   []string
	position *float64
}

func newWatchPage(rows [][2]string) *watchPage {
	p := &watchPage{visible: map[string][]dom.Element{}, onClick: map[string]func(){}}

	var segments []dom.Element
	for _, r := range rows {
		segments = append(segments, &fakeElement{children: map[string]*fakeElement{
			selectorSegmentText: {text: r[0]},
			selectorSegmentTime: {text: r[1]},
		}})
	}

	p.visible[selectorExpander] = []dom.Element{&fakeElement{page: p, id: "expander"}}
	p.onClick["expander"] = func() {
		p.visible[selectorShowTranscript] = []dom.Element{&fakeElement{page: p, id: "show"}}
	}
	p.onClick["show"] = func() {
		p.visible[selectorPanel] = []dom.Element{&fakeElement{}}
		p.visible[selectorSegment] = segments
	}
	return p
}

func (p *watchPage) URL() string { return "https://www.youtube.com/watch?v=abc" }

func (p *watchPage) Title(ctx context.Context) (string, error) { return "video", nil }

func (p *watchPage) Query(ctx context.Context, selector string) (dom.Element, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	els := p.visible[selector]
	if len(els) == 0 {
		return nil, false, nil
	}
	return els[0], true, nil
}

func (p *watchPage) QueryAll(ctx context.Context, selector string) ([]dom.Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible[selector], nil
}

func (p *watchPage) HTML(ctx context.Context) (string, error) { return "", nil }

func (p *watchPage) MediaPosition(ctx context.Context) (float64, bool, error) {
	if p.position == nil {
		return 0, false, nil
	}
	return *p.position, true, nil
}

type fakeElement struct {
	page     *watchPage
	id       string
	text     string
	children map[string]*fakeElement
}

func (e *fakeElement) Text(ctx context.Context) (string, error) { return e.text, nil }

func (e *fakeElement) Click(ctx context.Context) error {
	if e.page == nil {
		return nil
	}
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	e.page.clicks = append(e.page.clicks, e.id)
	if fn := e.page.onClick[e.id]; fn != nil {
		fn()
	}
	return nil
}

func (e *fakeElement) Query(ctx context.Context, selector string) (dom.Element, bool, error) {
	c, ok := e.children[selector]
	if !ok {
		return nil, false, nil
	}
	return c, true, nil
}

func (e *fakeElement) HTML(ctx context.Context) (string, error) { return "", nil }

func TestFetchTranscript(t *testing.T) {
	page := newWatchPage([][2]string{
		{" Welcome ", "0:00"},
		{"Getting started", "0:10"},
		{"Wrap up", "0:22"},
	})

	tr, err := FetchTranscript(context.Background(), page, fastPoll)
	require.NoError(t, err)

	assert.Equal(t, []string{"expander", "show"}, page.clicks)
	assert.Equal(t, []content.Segment{
		{Text: "Welcome", Start: 0, Duration: 10},
		{Text: "Getting started", Start: 10, Duration: 12},
		{Text: "Wrap up", Start: 22, Duration: 5},
	}, tr.Segments)
}

func TestFetchTranscript_HourLabelsAndGarbage(t *testing.T) {
	page := newWatchPage([][2]string{
		{"a", "1:02:03"},
		{"b", "oops"},
	})

	tr, err := FetchTranscript(context.Background(), page, fastPoll)
	require.NoError(t, err)
	require.Len(t, tr.Segments, 2)
	assert.Equal(t, float64(3723), tr.Segments[0].Start)
	assert.Equal(t, float64(0), tr.Segments[1].Start)
}

func TestFetchTranscript_MissingStages(t *testing.T) {
	tests := []struct {
		name  string
		setup func(p *watchPage)
		stage string
	}{
		{"expander", func(p *watchPage) { delete(p.visible, selectorExpander) }, StageExpander},
		{"show transcript", func(p *watchPage) { delete(p.onClick, "expander") }, StageShowTranscript},
		{"panel", func(p *watchPage) {
			p.onClick["show"] = func() {}
		}, StagePanel},
		{"segments", func(p *watchPage) {
			p.onClick["show"] = func() { p.visible[selectorPanel] = []dom.Element{&fakeElement{}} }
		}, StageSegments},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := newWatchPage([][2]string{{"x", "0:01"}})
			tt.setup(page)

			tr, err := FetchTranscript(context.Background(), page, fastPoll)
			assert.Nil(t, tr)

			var enf *scraper.ElementNotFoundError
			require.True(t, errors.As(err, &enf))
			assert.Equal(t, tt.stage, enf.Stage)
		})
	}
}

func TestFetchTranscript_FromSavedPage(t *testing.T) {
	html := `<html><body>
	<ytd-video-description-transcript-section-renderer><button>More</button></ytd-video-description-transcript-section-renderer>
	<ytd-button-renderer button-renderer><button>Show transcript</button></ytd-button-renderer>
	<ytd-transcript-renderer>
	  <ytd-transcript-segment-renderer><div class="segment-timestamp">0:03</div><div class="segment-text">first line</div></ytd-transcript-segment-renderer>
	  <ytd-transcript-segment-renderer><div class="segment-timestamp">0:08</div><div class="segment-text">second line</div></ytd-transcript-segment-renderer>
	</ytd-transcript-renderer>
	</body></html>`
	doc, err := dom.NewDocument("https://www.youtube.com/watch?v=x", html)
	require.NoError(t, err)

	tr, err := FetchTranscript(context.Background(), doc, fastPoll)
	require.NoError(t, err)
	assert.Equal(t, []string{"[0:03] first line", "[0:08] second line"}, tr.Lines())
	assert.Equal(t, float64(5), tr.Segments[0].Duration)
}

func TestCurrentPlaybackSeconds(t *testing.T) {
	page := newWatchPage(nil)
	assert.Equal(t, float64(0), CurrentPlaybackSeconds(context.Background(), page))

	pos := 42.25
	page.position = &pos
	assert.Equal(t, 42.25, CurrentPlaybackSeconds(context.Background(), page))
}

func TestYouTubeScraper_Telemetry(t *testing.T) {
	rec := &telemetry.Recorder{}
	opts := scraper.Options{Poll: fastPoll, Telemetry: rec}

	c, err := (&YouTubeScraper{}).Scrape(context.Background(), newWatchPage([][2]string{{"x", "0:01"}}), opts)
	require.NoError(t, err)
	assert.Equal(t, content.KindTranscript, c.Kind())
	assert.Equal(t, []string{"transcript_request_start", "transcript_success"}, rec.Names())

	rec = &telemetry.Recorder{}
	opts.Telemetry = rec
	missing := newWatchPage(nil)
	delete(missing.visible, selectorExpander)
	_, err = (&YouTubeScraper{}).Scrape(context.Background(), missing, opts)
	assert.ErrorIs(t, err, scraper.ErrElementNotFound)
	require.Len(t, rec.Events, 2)
	assert.Equal(t, "expander_not_found", rec.Events[1].Data["error"])
}
