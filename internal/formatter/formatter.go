package formatter

import (
	"fmt"
	"path/filepath"
	"strings"

	"tabtalk/internal/content"
	"tabtalk/internal/prompt"
)

// Formats lists the accepted output formats.
var Formats = []string{"prompt", "text", "markdown", "json", "csv"}

func Format(c content.Content, format string) (string, error) {
	if c == nil {
		return "", fmt.Errorf("no content to format")
	}
	switch strings.ToLower(format) {
	case "prompt":
		return prompt.Build(c)
	case "text":
		return c.ToText()
	case "markdown":
		return c.ToMarkdown()
	case "csv":
		return c.ToCSV()
	case "json":
		b, err := c.ToJSON()
		if err != nil {
			return "", err
		}
		return string(b), nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", format)
	}
}

// Valid reports whether format is one of Formats.
func Valid(format string) bool {
	for _, f := range Formats {
		if strings.EqualFold(f, format) {
			return true
		}
	}
	return false
}

// InferFromExtension maps an output file name to a format, or "" when the
// extension says nothing.
func InferFromExtension(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".md", ".markdown":
		return "markdown"
	case ".json":
		return "json"
	case ".txt":
		return "text"
	case ".csv":
		return "csv"
	default:
		return ""
	}
}
