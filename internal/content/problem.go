package content

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
)

// Problem is a coding problem statement with the user's current solution.
type Problem struct {
	ProblemDescription string `json:"problemDescription"`
	UserSolution       string `json:"userSolution"`
}

// NewProblem trims both fields.
func NewProblem(description, solution string) *Problem {
	return &Problem{
		ProblemDescription: strings.TrimSpace(description),
		UserSolution:       strings.TrimSpace(solution),
	}
}

func (p *Problem) Kind() Kind { return KindProblem }

func (p *Problem) sealed() {}

func (p *Problem) ToText() (string, error) {
	return "Problem Description:\n" + p.ProblemDescription + "\n\nYour Solution:\n" + p.UserSolution, nil
}

func (p *Problem) ToMarkdown() (string, error) {
	var sb strings.Builder
	sb.WriteString("# Problem\n\n")
	sb.WriteString(p.ProblemDescription)
	sb.WriteString("\n\n## Solution\n\n```\n")
	sb.WriteString(p.UserSolution)
	sb.WriteString("\n```\n")
	return sb.String(), nil
}

func (p *Problem) ToJSON() ([]byte, error) {
	type jsonOutput struct {
		Kind Kind `json:"kind"`
		*Problem
	}
	return json.MarshalIndent(jsonOutput{Kind: KindProblem, Problem: p}, "", "  ")
}

func (p *Problem) ToCSV() (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"ProblemDescription", "UserSolution"})
	_ = w.Write([]string{p.ProblemDescription, p.UserSolution})
	w.Flush()
	return buf.String(), w.Error()
}
