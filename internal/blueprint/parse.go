package blueprint

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Generation holds the sections of a generation response.
type Generation struct {
	Summary           string
	RequiredTools     []string
	WorkflowSteps     []string
	JSON              string
	SetupInstructions string
	BonusContent      string
}

type section int

const (
	sectionNone section = iota
	sectionSummary
	sectionPlatform
	sectionTools
	sectionSteps
	sectionJSON
	sectionInstructions
	sectionBonus
)

// Section headings, in the order the generation prompt asks for them.
const (
	headingSummary      = "Automation Summary:"
	headingPlatform     = "Platform:"
	headingTools        = "Required Apps:"
	headingSteps        = "Automation Workflow Steps:"
	headingJSON         = "JSON Automation Template:"
	headingInstructions = "Beginner Setup Instructions:"
	headingBonus        = "Bonus Assets:"
	headingNotes        = "CONVERSION NOTES:"
)

var headings = []struct {
	label   string
	section section
}{
	{headingSummary, sectionSummary},
	{headingPlatform, sectionPlatform},
	{headingTools, sectionTools},
	{headingSteps, sectionSteps},
	{headingJSON, sectionJSON},
	{headingInstructions, sectionInstructions},
	{headingBonus, sectionBonus},
}

var stepPattern = regexp.MustCompile(`^\d+[.)]\s+`)

// normalize strips markdown emphasis and heading marks so "## **🚀 Automation Summary:**"
// and "🚀 Automation Summary:" read the same.
func normalize(line string) string {
	s := strings.ReplaceAll(strings.TrimSpace(line), "**", "")
	return strings.TrimSpace(strings.TrimLeft(s, "# "))
}

// matchHeading returns the section a line opens and any text after the heading.
// Headings may be preceded by a short emoji prefix.
func matchHeading(line string) (section, string, bool) {
	norm := normalize(line)
	for _, h := range headings {
		idx := strings.Index(norm, h.label)
		if idx < 0 || idx > 8 || strings.IndexFunc(norm[:idx], unicode.IsLetter) >= 0 {
			continue
		}
		return h.section, strings.TrimSpace(norm[idx+len(h.label):]), true
	}
	return sectionNone, "", false
}

// ParseGeneration splits a model response into its sections. The summary and a
// syntactically valid JSON block are required.
func ParseGeneration(text string) (*Generation, error) {
	g := &Generation{}
	var (
		current      = sectionNone
		inFence      bool
		fenceDone    bool
		jsonLines    []string
		instructions []string
		bonus        []string
		summary      []string
	)

	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		trimmed := strings.TrimSpace(line)

		if inFence {
			if strings.HasPrefix(trimmed, "```") {
				inFence = false
				fenceDone = true
				continue
			}
			jsonLines = append(jsonLines, line)
			continue
		}

		if strings.HasPrefix(trimmed, "```") {
			lang := strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
			if !fenceDone && (lang == "json" || (lang == "" && current == sectionJSON)) {
				inFence = true
				continue
			}
		}

		// Sections arrive in prompt order; an earlier label inside a body is text.
		if sec, rest, ok := matchHeading(line); ok && sec > current {
			current = sec
			if sec == sectionSummary && rest != "" {
				summary = append(summary, rest)
			}
			continue
		}

		switch current {
		case sectionSummary:
			if trimmed != "" {
				summary = append(summary, trimmed)
			}
		case sectionTools:
			if item, ok := bullet(trimmed); ok {
				g.RequiredTools = append(g.RequiredTools, item)
			}
		case sectionSteps:
			if stepPattern.MatchString(trimmed) {
				g.WorkflowSteps = append(g.WorkflowSteps, trimmed)
			}
		case sectionInstructions:
			instructions = append(instructions, strings.TrimRight(line, " \t"))
		case sectionBonus:
			bonus = append(bonus, strings.TrimRight(line, " \t"))
		}
	}

	g.Summary = strings.Join(summary, " ")
	g.JSON = strings.TrimSpace(strings.Join(jsonLines, "\n"))
	g.SetupInstructions = strings.TrimSpace(strings.Join(instructions, "\n"))
	g.BonusContent = strings.TrimSpace(strings.Join(bonus, "\n"))

	if g.Summary == "" {
		return nil, fmt.Errorf("%w: missing automation summary", ErrMalformedResponse)
	}
	if g.JSON == "" {
		return nil, fmt.Errorf("%w: missing JSON blueprint", ErrMalformedResponse)
	}
	if !json.Valid([]byte(g.JSON)) {
		return nil, fmt.Errorf("%w: JSON blueprint does not parse", ErrMalformedResponse)
	}
	return g, nil
}

func bullet(line string) (string, bool) {
	for _, marker := range []string{"- ", "* ", "• "} {
		if strings.HasPrefix(line, marker) {
			item := strings.TrimSpace(strings.TrimPrefix(line, marker))
			return item, item != ""
		}
	}
	return "", false
}

// Conversion is a parsed converter response.
type Conversion struct {
	JSON  string
	Notes string
}

// ParseConversion extracts the first fenced JSON block and the text following
// the conversion notes heading.
func ParseConversion(text string) (*Conversion, error) {
	var (
		inFence   bool
		fenceDone bool
		inNotes   bool
		jsonLines []string
		notes     []string
	)

	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case inFence && strings.HasPrefix(trimmed, "```"):
			inFence = false
			fenceDone = true
		case inFence:
			jsonLines = append(jsonLines, line)
		case !fenceDone && strings.HasPrefix(trimmed, "```"):
			inFence = true
		case strings.Contains(strings.ToUpper(normalize(line)), headingNotes):
			inNotes = true
		case inNotes:
			notes = append(notes, strings.TrimRight(line, " \t"))
		}
	}

	c := &Conversion{
		JSON:  strings.TrimSpace(strings.Join(jsonLines, "\n")),
		Notes: strings.TrimSpace(strings.Join(notes, "\n")),
	}
	if c.JSON == "" {
		return nil, fmt.Errorf("%w: missing converted JSON", ErrMalformedResponse)
	}
	if !json.Valid([]byte(c.JSON)) {
		return nil, fmt.Errorf("%w: converted JSON does not parse", ErrMalformedResponse)
	}
	return c, nil
}
