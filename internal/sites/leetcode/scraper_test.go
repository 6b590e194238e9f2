package leetcode

import (
	"context"
	"errors"
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

var fastPoll = poll.Options{Timeout: 60 * time.Millisecond, Interval: 10 * time.Millisecond}

func load(t *testing.T, html string) *dom.Document {
	t.Helper()
	doc, err := dom.NewDocument("https://leetcode.com/problems/reverse-linked-list/", html)
	require.NoError(t, err)
	return doc
}

func TestFetchProblem(t *testing.T) {
	doc := load(t, `<html><body>
	<div id="qd-content">
	   Reverse a list
	</div>
	<div class="monaco-editor"><div class="view-lines"><div>def f():</div><div> pass</div></div></div>
	</body></html>`)

	p, err := FetchProblem(context.Background(), doc, fastPoll)
	require.NoError(t, err)
	assert.Equal(t, "Reverse a list", p.ProblemDescription)
	assert.Equal(t, "def f(): pass", p.UserSolution)
}

func TestFetchProblem_EmptyEditor(t *testing.T) {
	doc := load(t, `<div id="qd-content">Two Sum</div><div class="monaco-editor"></div>`)

	p, err := FetchProblem(context.Background(), doc, fastPoll)
	require.NoError(t, err)
	assert.Equal(t, "Two Sum", p.ProblemDescription)
	assert.Empty(t, p.UserSolution)
}

func TestFetchProblem_MissingElements(t *testing.T) {
	tests := []struct {
		name  string
		html  string
		stage string
	}{
		{"no statement", `<div class="monaco-editor"></div>`, StageProblem},
		{"no editor", `<div id="qd-content">Two Sum</div>`, StageEditor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := FetchProblem(context.Background(), load(t, tt.html), fastPoll)
			assert.Nil(t, p)

			var enf *scraper.ElementNotFoundError
			require.True(t, errors.As(err, &enf))
			assert.Equal(t, tt.stage, enf.Stage)
		})
	}
}

func TestLeetCodeScraper_Scrape(t *testing.T) {
	rec := &telemetry.Recorder{}
	doc := load(t, `<div id="qd-content">Two Sum</div><div class="monaco-editor"><div class="view-lines">return []</div></div>`)

	c, err := (&LeetCodeScraper{}).Scrape(context.Background(), doc, scraper.Options{Poll: fastPoll, Telemetry: rec})
	require.NoError(t, err)
	assert.Equal(t, content.KindProblem, c.Kind())
	assert.Equal(t, []string{"leetcode_content_request_start", "leetcode_content_success"}, rec.Names())

	rec = &telemetry.Recorder{}
	_, err = (&LeetCodeScraper{}).Scrape(context.Background(), load(t, `<p>nothing</p>`), scraper.Options{Poll: fastPoll, Telemetry: rec})
	assert.ErrorIs(t, err, scraper.ErrElementNotFound)
	require.Len(t, rec.Events, 2)
	assert.Equal(t, "leetcode_error", rec.Events[1].Name)
	assert.Equal(t, "problem_not_found", rec.Events[1].Data["error"])
}
