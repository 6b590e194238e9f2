package generic

import (
	"fmt"
	"net/url"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	readability "github.com/go-shiori/go-readability"
)

// ReadableMarkdown picks the article with the readability algorithm and
// renders it as GitHub-flavored markdown, tables included. It returns the
// markdown and the article HTML.
func ReadableMarkdown(source, pageURL string) (string, string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid page URL: %w", err)
	}

	article, err := readability.FromReader(strings.NewReader(source), u)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse article: %w", err)
	}
	if strings.TrimSpace(article.Content) == "" {
		return "", "", fmt.Errorf("no readable article found")
	}

	markdown, err := ToMarkdown(article.Content, u.Host)
	if err != nil {
		return "", "", err
	}
	return markdown, article.Content, nil
}

// ToMarkdown converts an HTML fragment to markdown. Relative links resolve
// against domain.
func ToMarkdown(fragment, domain string) (string, error) {
	converter := md.NewConverter(domain, true, nil)
	converter.Use(plugin.GitHubFlavored())

	markdown, err := converter.ConvertString(fragment)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to Markdown: %w", err)
	}
	return strings.TrimSpace(markdown), nil
}
