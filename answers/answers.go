// Package answers resolves a spoken query to a reply: first a closest-match
// lookup over a local question/answer table, then the generative fallback.
package answers

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/xuri/excelize/v2"
)

// ApologyReply is spoken when the generative fallback fails.
const ApologyReply = "Sorry, I couldn't get an answer for that right now."

// Table is the local question/answer lookup, keyed by lowercased question.
type Table struct {
	entries []entry
}

type entry struct {
	question string
	answer   string
}

// NewTable builds a table from question/answer pairs.
func NewTable(pairs map[string]string) *Table {
	t := &Table{}
	for q, a := range pairs {
		t.entries = append(t.entries, entry{question: strings.ToLower(q), answer: a})
	}
	return t
}

// LoadTable reads the Q&A workbook. The first sheet must carry Question and
// Answer columns; other columns are ignored.
func LoadTable(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not open Q&A workbook %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("could not read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return &Table{}, nil
	}

	questionCol, answerCol := -1, -1
	for i, title := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(title)) {
		case "question":
			questionCol = i
		case "answer":
			answerCol = i
		}
	}
	if questionCol < 0 || answerCol < 0 {
		return nil, fmt.Errorf("workbook %s is missing Question/Answer columns", path)
	}

	t := &Table{}
	for _, row := range rows[1:] {
		if len(row) <= questionCol || len(row) <= answerCol {
			continue
		}
		q := strings.ToLower(strings.TrimSpace(row[questionCol]))
		a := strings.TrimSpace(row[answerCol])
		if q == "" || a == "" {
			continue
		}
		t.entries = append(t.entries, entry{question: q, answer: a})
	}
	return t, nil
}

// Len returns the number of loaded Q&A pairs.
func (t *Table) Len() int { return len(t.entries) }

// Lookup returns the answer whose question is the closest match to the
// query at or above cutoff.
func (t *Table) Lookup(query string, cutoff float64) (string, bool) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return "", false
	}

	best := -1
	bestRatio := 0.0
	for i, e := range t.entries {
		r := ratio(query, e.question)
		if r > bestRatio {
			best = i
			bestRatio = r
		}
	}
	if best < 0 || bestRatio < cutoff {
		return "", false
	}
	return t.entries[best].answer, true
}

// ratio is the difflib sequence-match ratio over characters.
func ratio(a, b string) float64 {
	m := difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, ""))
	return m.Ratio()
}
