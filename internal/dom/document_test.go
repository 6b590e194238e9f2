package dom

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabtalk/internal/poll"
)

const sample = `<!doctype html>
<html>
  <head><title>Sample Page</title></head>
  <body>
    <div id="root"><p class="lead">Hello <b>there</b></p><p>Second</p></div>
    <video data-current-time="12.5"></video>
  </body>
</html>`

func TestDocument_QueryAndText(t *testing.T) {
	ctx := context.Background()
	doc, err := NewDocument("https://example.com/a", sample)
	require.NoError(t, err)

	title, err := doc.Title(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Sample Page", title)
	assert.Equal(t, "https://example.com/a", doc.URL())

	root, ok, err := doc.Query(ctx, "#root")
	require.NoError(t, err)
	require.True(t, ok)

	lead, ok, err := root.Query(ctx, ".lead")
	require.NoError(t, err)
	require.True(t, ok)
	text, err := lead.Text(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Hello there", text)

	html, err := lead.HTML(ctx)
	require.NoError(t, err)
	assert.Equal(t, `<p class="lead">Hello <b>there</b></p>`, html)

	_, ok, err = doc.Query(ctx, ".missing")
	require.NoError(t, err)
	assert.False(t, ok)

	all, err := doc.QueryAll(ctx, "p")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDocument_MediaPosition(t *testing.T) {
	ctx := context.Background()

	doc, err := NewDocument("", sample)
	require.NoError(t, err)
	pos, ok, err := doc.MediaPosition(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 12.5, pos)

	empty, err := NewDocument("", "<p>no media</p>")
	require.NoError(t, err)
	_, ok, err = empty.MediaPosition(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	doc, err := LoadFile(path, "")
	require.NoError(t, err)
	assert.Equal(t, "file://"+path, doc.URL())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.html"), "")
	assert.Error(t, err)
}

func TestWaitFor_TimesOutOnMissingElement(t *testing.T) {
	doc, err := NewDocument("", sample)
	require.NoError(t, err)

	start := time.Now()
	el, ok, err := WaitFor(context.Background(), doc, ".never", poll.Options{Timeout: 50 * time.Millisecond, Interval: 10 * time.Millisecond})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, el)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}
