// Package dispatch picks the extraction strategy for a page address.
package dispatch

import (
	"fmt"
	"strings"

	"tabtalk/internal/content"
	"tabtalk/internal/scraper"
)

type rule struct {
	marker string
	kind   content.Kind
}

// rules are checked in order; the first substring match wins.
var rules = []rule{
	{marker: "youtube.com/watch", kind: content.KindTranscript},
	{marker: "leetcode.com/problems", kind: content.KindProblem},
}

// Select returns the content kind to extract from pageURL. Pages no rule
// claims get the generic page strategy.
func Select(pageURL string) content.Kind {
	for _, r := range rules {
		if strings.Contains(pageURL, r.marker) {
			return r.kind
		}
	}
	return content.KindPage
}

// Dispatcher maps each content kind to its scraper.
type Dispatcher struct {
	byKind map[content.Kind]scraper.Scraper
}

// New builds a dispatcher with an explicit scraper per kind.
func New(transcript, problem, page scraper.Scraper) *Dispatcher {
	return &Dispatcher{byKind: map[content.Kind]scraper.Scraper{
		content.KindTranscript: transcript,
		content.KindProblem:    problem,
		content.KindPage:       page,
	}}
}

// FromRegistry builds a dispatcher from the scrapers registered under
// "youtube", "leetcode" and "generic".
func FromRegistry() (*Dispatcher, error) {
	names := map[content.Kind]string{
		content.KindTranscript: "youtube",
		content.KindProblem:    "leetcode",
		content.KindPage:       "generic",
	}
	d := &Dispatcher{byKind: map[content.Kind]scraper.Scraper{}}
	for kind, name := range names {
		s, ok := scraper.Get(name)
		if !ok {
			return nil, fmt.Errorf("scraper %q is not registered", name)
		}
		d.byKind[kind] = s
	}
	return d, nil
}

// For returns the scraper for pageURL.
func (d *Dispatcher) For(pageURL string) scraper.Scraper {
	return d.byKind[Select(pageURL)]
}

// Forced returns a dispatcher that sends every page to s.
func Forced(s scraper.Scraper) *Dispatcher {
	return New(s, s, s)
}
