package content

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Page is the generic content of an arbitrary web page.
// MainContent is normalized text, never raw markup.
type Page struct {
	Title       string `json:"title"`
	MainContent string `json:"mainContent"`
	Screenshot  string `json:"screenshot,omitempty"` // base64 PNG
	URL         string `json:"url,omitempty"`

	sourceHTML string // HTML of the chosen content root, used by ToCSV
}

// NewPage creates a Page. sourceHTML may be empty.
func NewPage(title, mainContent, url, sourceHTML string) *Page {
	return &Page{
		Title:       title,
		MainContent: mainContent,
		URL:         url,
		sourceHTML:  sourceHTML,
	}
}

func (p *Page) Kind() Kind { return KindPage }

func (p *Page) sealed() {}

func (p *Page) ToText() (string, error) {
	return "Title: " + p.Title + "\n\n" + p.MainContent, nil
}

func (p *Page) ToMarkdown() (string, error) {
	var sb strings.Builder
	if p.Title != "" {
		sb.WriteString("# " + p.Title + "\n\n")
	}
	sb.WriteString(p.MainContent)
	sb.WriteString("\n")
	return sb.String(), nil
}

func (p *Page) ToJSON() ([]byte, error) {
	type jsonOutput struct {
		Kind Kind `json:"kind"`
		*Page
	}
	return json.MarshalIndent(jsonOutput{Kind: KindPage, Page: p}, "", "  ")
}

// ToCSV returns every HTML table of the content root as CSV. Pages without
// tables yield a single Title/URL/Content row.
func (p *Page) ToCSV() (string, error) {
	var buf bytes.Buffer

	if p.sourceHTML != "" {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(p.sourceHTML))
		if err != nil {
			return "", fmt.Errorf("failed to parse HTML: %w", err)
		}

		tableIndex := 0
		doc.Find("table").Each(func(i int, table *goquery.Selection) {
			tableIndex++
			if tableIndex > 1 {
				buf.WriteString("\n")
			}
			buf.WriteString(fmt.Sprintf("# Table %d\n", tableIndex))

			w := csv.NewWriter(&buf)
			table.Find("tr").Each(func(j int, row *goquery.Selection) {
				var record []string
				row.Find("th, td").Each(func(k int, cell *goquery.Selection) {
					record = append(record, strings.TrimSpace(cell.Text()))
				})
				if len(record) > 0 {
					_ = w.Write(record)
				}
			})
			w.Flush()
		})
		if tableIndex > 0 {
			return buf.String(), nil
		}
	}

	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"Title", "URL", "Content"})
	_ = w.Write([]string{p.Title, p.URL, p.MainContent})
	w.Flush()
	return buf.String(), w.Error()
}
