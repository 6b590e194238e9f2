// Package prompt turns extracted content into the opening message of a chat.
package prompt

import (
	"fmt"
	"strings"

	"tabtalk/internal/content"
)

// Build renders c as a chat prompt.
func Build(c content.Content) (string, error) {
	switch v := c.(type) {
	case *content.Transcript:
		if v != nil {
			return transcript(v), nil
		}
	case *content.Problem:
		if v != nil {
			return problem(v), nil
		}
	case *content.Page:
		if v != nil {
			return page(v), nil
		}
	case nil:
	default:
		return "", fmt.Errorf("unsupported content kind %q", c.Kind())
	}
	return "", fmt.Errorf("no content to build a prompt from")
}

func transcript(t *content.Transcript) string {
	return "This is a transcript of a video. Each segment has text, start time, and duration. Here's the transcript:\n\n" +
		strings.Join(t.Lines(), "\n") +
		"\n\nPlease help me understand this video content."
}

func problem(p *content.Problem) string {
	return "This is a LeetCode problem. Here's the problem description and solution:\n\n" +
		"Problem Description:\n" + p.ProblemDescription + "\n\n" +
		"Your Solution:\n" + p.UserSolution + "\n\n" +
		"Please help me understand this problem and solution."
}

func page(p *content.Page) string {
	return "This is the content from the webpage:\n\n" +
		"Title: " + p.Title + "\n\n" +
		"Content:\n" + p.MainContent + "\n\n" +
		"Please help me understand this content."
}
