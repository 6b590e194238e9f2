package generic

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	minContentWords = 20
	maxContentWords = 10000
)

// contentSelectors are tried in order before falling back to scoring.
var contentSelectors = []string{
	"article",
	"main",
	`[role="main"]`,
	"#main-content",
	".main-content",
	".content",
	".post-content",
	".article-content",
	".markdown-body",
	".documentation",
}

// boilerplateSelectors are removed from the content root before conversion.
var boilerplateSelectors = []string{
	"nav",
	"header",
	"footer",
	".navigation",
	".nav",
	".menu",
	".sidebar",
	".ads",
	".advertisement",
	"script",
	"style",
	"iframe",
	`[role="navigation"]`,
	`[role="complementary"]`,
	".table-of-contents",
	"#table-of-contents",
}

var structuralTags = map[string]bool{
	"article": true,
	"main":    true,
	"section": true,
}

// Extractor locates and converts the main content of a parsed document.
type Extractor struct {
	doc *goquery.Document
}

// NewExtractor parses source.
func NewExtractor(source string) (*Extractor, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &Extractor{doc: doc}, nil
}

// FindMain returns the content root, or an empty selection when nothing
// qualifies.
func (e *Extractor) FindMain() *goquery.Selection {
	for _, sel := range contentSelectors {
		el := e.doc.Find(sel).First()
		if el.Length() > 0 && isContentRich(el) {
			return el
		}
	}
	return e.findElementWithMostContent()
}

// Extract converts the content root to text. It also returns the HTML of the
// cleaned root. Both are empty when no root is found.
func (e *Extractor) Extract() (text, rootHTML string, err error) {
	root := e.FindMain()
	if root.Length() == 0 {
		return "", "", nil
	}

	cleaned := root.Clone()
	for _, sel := range boilerplateSelectors {
		cleaned.Find(sel).Remove()
	}

	rootHTML, err = goquery.OuterHtml(cleaned)
	if err != nil {
		return "", "", fmt.Errorf("failed to render content root: %w", err)
	}
	return ToStructuredText(cleaned), rootHTML, nil
}

func isContentRich(s *goquery.Selection) bool {
	return wordCount(s.Text()) >= minContentWords
}

// findElementWithMostContent scores every element under body by word count.
// Structural tags get a 1.5x bonus. Ties keep the earlier element.
func (e *Extractor) findElementWithMostContent() *goquery.Selection {
	best := e.doc.Selection.Slice(0, 0)
	maxScore := 0.0

	e.doc.Find("body *").Each(func(i int, s *goquery.Selection) {
		if score := scoreElement(s); score > maxScore {
			maxScore = score
			best = s
		}
	})
	return best
}

func scoreElement(s *goquery.Selection) float64 {
	words := wordCount(s.Text())
	if words < minContentWords || words > maxContentWords {
		return 0
	}
	bonus := 1.0
	if structuralTags[goquery.NodeName(s)] {
		bonus = 1.5
	}
	return float64(words) * bonus
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}

var (
	manyNewlines   = regexp.MustCompile(`\n{3,}`)
	blankLineSpace = regexp.MustCompile(`\n\s+\n`)
)

// ToStructuredText renders the direct children of root as lightweight
// markdown: headings, paragraphs, lists, fenced code and quotes. Other
// elements contribute their text followed by a blank line.
func ToStructuredText(root *goquery.Selection) string {
	var b strings.Builder

	root.Contents().Each(func(i int, s *goquery.Selection) {
		switch s.Nodes[0].Type {
		case html.TextNode:
			if text := strings.TrimSpace(s.Text()); text != "" {
				b.WriteString(text + "\n")
			}
			return
		case html.ElementNode:
		default:
			return
		}

		text := s.Text()
		if strings.TrimSpace(text) == "" {
			return
		}

		switch goquery.NodeName(s) {
		case "h1":
			b.WriteString("# " + text + "\n\n")
		case "h2":
			b.WriteString("## " + text + "\n\n")
		case "h3":
			b.WriteString("### " + text + "\n\n")
		case "h4", "h5", "h6":
			b.WriteString("#### " + text + "\n\n")
		case "p":
			b.WriteString(text + "\n\n")
		case "ul":
			s.Find("li").Each(func(j int, li *goquery.Selection) {
				b.WriteString("* " + li.Text() + "\n")
			})
			b.WriteString("\n")
		case "ol":
			s.Find("li").Each(func(j int, li *goquery.Selection) {
				b.WriteString(fmt.Sprintf("%d. %s\n", j+1, li.Text()))
			})
			b.WriteString("\n")
		case "pre", "code":
			b.WriteString("```\n" + text + "\n```\n\n")
		case "blockquote":
			b.WriteString("> " + text + "\n\n")
		default:
			b.WriteString(text + "\n\n")
		}
	})

	out := manyNewlines.ReplaceAllString(b.String(), "\n\n")
	out = blankLineSpace.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}
