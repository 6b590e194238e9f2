package content

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"tabtalk/internal/timecode"
)

// LastSegmentDuration is assigned to the final segment, which has no
// following start time to measure against.
const LastSegmentDuration = 5

// Segment is one transcript row.
type Segment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// Row is a transcript row as read from the page, before durations are known.
type Row struct {
	Text  string
	Start float64
}

// Transcript holds video transcript segments in source order.
type Transcript struct {
	Segments []Segment `json:"segments"`
}

// NewTranscript builds segments from rows, deriving each duration as the
// gap to the next row's start.
func NewTranscript(rows []Row) *Transcript {
	segments := make([]Segment, len(rows))
	for i, r := range rows {
		next := r.Start + LastSegmentDuration
		if i+1 < len(rows) {
			next = rows[i+1].Start
		}
		segments[i] = Segment{
			Text:     r.Text,
			Start:    r.Start,
			Duration: next - r.Start,
		}
	}
	return &Transcript{Segments: segments}
}

func (t *Transcript) Kind() Kind { return KindTranscript }

func (t *Transcript) sealed() {}

// Lines renders each segment as "[M:SS] text".
func (t *Transcript) Lines() []string {
	lines := make([]string, len(t.Segments))
	for i, s := range t.Segments {
		lines[i] = fmt.Sprintf("[%s] %s", timecode.Format(s.Start), s.Text)
	}
	return lines
}

func (t *Transcript) ToText() (string, error) {
	return strings.Join(t.Lines(), "\n"), nil
}

func (t *Transcript) ToMarkdown() (string, error) {
	var sb strings.Builder
	sb.WriteString("# Transcript\n\n")
	sb.WriteString(fmt.Sprintf("%d segments\n\n", len(t.Segments)))
	for _, s := range t.Segments {
		sb.WriteString(fmt.Sprintf("- **%s** %s\n", timecode.Format(s.Start), s.Text))
	}
	return sb.String(), nil
}

func (t *Transcript) ToJSON() ([]byte, error) {
	type jsonOutput struct {
		Kind     Kind      `json:"kind"`
		Segments []Segment `json:"segments"`
	}
	segments := t.Segments
	if segments == nil {
		segments = []Segment{}
	}
	return json.MarshalIndent(jsonOutput{Kind: KindTranscript, Segments: segments}, "", "  ")
}

func (t *Transcript) ToCSV() (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"Start", "Duration", "Text"})
	for _, s := range t.Segments {
		_ = w.Write([]string{
			strconv.FormatFloat(s.Start, 'f', -1, 64),
			strconv.FormatFloat(s.Duration, 'f', -1, 64),
			s.Text,
		})
	}
	w.Flush()
	return buf.String(), w.Error()
}
