package dom

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Document is a static page parsed from HTML. Clicks are no-ops, so content
// that needs interaction to render must already be present in the markup.
type Document struct {
	doc *goquery.Document
	url string
}

// NewDocument parses html as the document found at url.
func NewDocument(url, html string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &Document{doc: doc, url: url}, nil
}

// LoadFile parses a saved page. url is reported as the page address; when
// empty the file path is used.
func LoadFile(path, url string) (*Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if url == "" {
		url = "file://" + path
	}
	return NewDocument(url, string(b))
}

func (d *Document) URL() string {
	return d.url
}

func (d *Document) Title(ctx context.Context) (string, error) {
	return d.doc.Find("title").First().Text(), nil
}

func (d *Document) Query(ctx context.Context, selector string) (Element, bool, error) {
	return first(d.doc.Selection, selector)
}

func (d *Document) QueryAll(ctx context.Context, selector string) ([]Element, error) {
	var out []Element
	d.doc.Find(selector).Each(func(i int, s *goquery.Selection) {
		out = append(out, &docElement{sel: s})
	})
	return out, nil
}

func (d *Document) HTML(ctx context.Context) (string, error) {
	html, err := d.doc.Html()
	if err != nil {
		return "", fmt.Errorf("failed to render HTML: %w", err)
	}
	return html, nil
}

// MediaPosition reads the data-current-time attribute of the first video,
// since a static document has no playback state.
func (d *Document) MediaPosition(ctx context.Context) (float64, bool, error) {
	video := d.doc.Find("video").First()
	if video.Length() == 0 {
		return 0, false, nil
	}
	raw, ok := video.Attr("data-current-time")
	if !ok {
		return 0, true, nil
	}
	pos, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, true, nil
	}
	return pos, true, nil
}

type docElement struct {
	sel *goquery.Selection
}

func (e *docElement) Text(ctx context.Context) (string, error) {
	return e.sel.Text(), nil
}

func (e *docElement) Click(ctx context.Context) error {
	return nil
}

func (e *docElement) Query(ctx context.Context, selector string) (Element, bool, error) {
	return first(e.sel, selector)
}

func (e *docElement) HTML(ctx context.Context) (string, error) {
	html, err := goquery.OuterHtml(e.sel)
	if err != nil {
		return "", fmt.Errorf("failed to render element HTML: %w", err)
	}
	return html, nil
}

func first(sel *goquery.Selection, selector string) (Element, bool, error) {
	match := sel.Find(selector).First()
	if match.Length() == 0 {
		return nil, false, nil
	}
	return &docElement{sel: match}, true, nil
}
