// Package personalize rewrites a research prescription for one employee.
// Every recognized conditional phrase is evaluated against the subject: a
// phrase that holds is stripped and its consequent kept, a phrase that does
// not hold takes its whole clause with it.
package personalize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxPasses bounds the splice loop. Every pass removes at least one
// phrase, so the bound is only reached on pathological input.
const maxPasses = 64

// Action is what a step did to the text
type Action string

const (
	ActionStripPhrase Action = "strip_phrase"
	ActionDropClause  Action = "drop_clause"
)

// Step records one evaluated condition
type Step struct {
	Condition Condition `json:"condition"`
	Holds     bool      `json:"holds"`
	Action    Action    `json:"action"`
	Removed   string    `json:"removed"`
}

// Trace is a personalization with the steps that produced it
type Trace struct {
	Input   string  `json:"input"`
	Output  string  `json:"output"`
	Subject Subject `json:"subject"`
	Steps   []Step  `json:"steps"`
}

// Personalize returns text with every conditional clause resolved for s.
// Text without conditions is returned after separator cleanup only, and
// personalizing an already personalized text is a no-op.
func Personalize(text string, s Subject) string {
	return Explain(text, s).Output
}

// Explain personalizes text and records each splice
func Explain(text string, s Subject) Trace {
	tr := Trace{Input: text, Subject: s, Steps: []Step{}}
	if strings.TrimSpace(text) == "" {
		return tr
	}

	for i := 0; i < maxPasses; i++ {
		m, ok := findFirst(text)
		if !ok {
			break
		}
		from, to, step := splice(text, m, s)
		step.Removed = strings.TrimSpace(text[from:to])
		tr.Steps = append(tr.Steps, step)
		text = text[:from] + " " + text[to:]
	}

	tr.Output = cleanup(text)
	return tr
}

// splice decides which byte range of text to remove for m.
func splice(text string, m match, s Subject) (int, int, Step) {
	cs := clauseStart(text, m.start)
	prefix := strings.TrimSpace(text[cs:m.start]) == ""
	holds := m.cond.Holds(s)
	step := Step{Condition: m.cond, Holds: holds}

	phraseEnd := m.coreEnd
	if prefix {
		phraseEnd = m.end
	}

	if holds {
		step.Action = ActionStripPhrase
		return m.start, phraseEnd, step
	}

	step.Action = ActionDropClause
	if !prefix {
		return cs, nextSep(text, m.coreEnd), step
	}
	if m.open && m.end == m.coreEnd {
		// "при наличии показаний, X": the condition runs to the comma
		// and X is its consequent.
		sep := nextSep(text, m.coreEnd)
		if sep < len(text) && text[sep] == ',' {
			return cs, nextSep(text, sep+1), step
		}
		return cs, sep, step
	}
	return cs, nextSep(text, phraseEnd), step
}

// isSep reports whether the byte at i separates clauses. A period counts
// only when it ends a sentence, so decimals and abbreviations survive.
func isSep(text string, i int) bool {
	switch text[i] {
	case ',', ';', '\n':
		return true
	case '.':
		if i+1 == len(text) {
			return true
		}
		r, _ := utf8.DecodeRuneInString(text[i+1:])
		return unicode.IsSpace(r)
	}
	return false
}

func clauseStart(text string, pos int) int {
	for i := pos - 1; i >= 0; i-- {
		if isSep(text, i) {
			return i + 1
		}
	}
	return 0
}

func nextSep(text string, pos int) int {
	for i := pos; i < len(text); i++ {
		if isSep(text, i) {
			return i
		}
	}
	return len(text)
}

var (
	hspaceRun   = regexp.MustCompile(`[^\S\n]+`)
	lineEdges   = regexp.MustCompile(`[^\S\n]*\n[\s,;]*`)
	sepRun      = regexp.MustCompile(`[,;.](?:[^\S\n]*[,;.])+`)
	spaceBefore = regexp.MustCompile(`[^\S\n]+([,;.])`)
	sepBeforeNL = regexp.MustCompile(`[ \t,;]+\n`)
)

// strongest picks the dominant separator of a collapsed run
func strongest(run string) string {
	switch {
	case strings.Contains(run, "."):
		return "."
	case strings.Contains(run, ";"):
		return ";"
	default:
		return ","
	}
}

func cleanupOnce(text string) string {
	text = hspaceRun.ReplaceAllString(text, " ")
	text = lineEdges.ReplaceAllString(text, "\n")
	text = sepBeforeNL.ReplaceAllString(text, "\n")
	text = sepRun.ReplaceAllStringFunc(text, strongest)
	text = spaceBefore.ReplaceAllString(text, "$1")
	text = strings.TrimLeft(text, " \t\r\n,;.")
	text = strings.TrimRight(text, " \t\r\n,;")
	return text
}

// cleanup normalizes whitespace and the separators splicing leaves behind.
// It iterates to a fixed point so the result is stable under reapplication.
func cleanup(text string) string {
	for i := 0; i < 8; i++ {
		next := cleanupOnce(text)
		if next == text {
			break
		}
		text = next
	}
	return text
}
