// internal/recommend/parser.go
//
// Parses the model's free-text reply into a CritiqueResult. The reply is
// expected, by prompt convention, to follow the fixed-label format of
// prompt.go, but nothing guarantees it: the text source is a third-party
// model, so the parser never fails. Worst case it returns the whole reply
// as the critique with no recommendations.
//
// The parser is a state machine over line tokens rather than chained
// substring scans, which keeps the "first marker wins, stray lines append
// to the open field" policy auditable.
package recommend

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	maxRecommendations = 3
	defaultMatchScore  = 85
)

type parserState int

const (
	statePreamble parserState = iota
	stateOutfit
	stateSkipBlock // outfit markers beyond the third block are ignored
)

var (
	appropriateRe   = regexp.MustCompile(`(?i)^\s*(?:[-*•]\s*)?APPROPRIATE\s*:\s*(.*)$`)
	outfitRe        = regexp.MustCompile(`(?i)^\s*(?:[-*#•]\s*)*OUTFIT\s+(\d+)\s*:\s*(.*)$`)
	preambleFieldRe = regexp.MustCompile(`(?i)^\s*(?:[-*•]\s*)?(CRITIQUE|SUGGESTIONS)\s*:\s*(.*)$`)
	outfitFieldRe   = regexp.MustCompile(`(?i)^\s*(?:[-*•]\s*)?(Name|Description|Top|Bottom|Shoes|Colors|Why\s+it\s+works)\s*:\s*(.*)$`)
	colorSplitRe    = regexp.MustCompile(`(?i)\s*,\s*|\s+and\s+`)
	spaceRe         = regexp.MustCompile(`\s+`)
)

// Parse converts raw model output into a CritiqueResult. It never returns
// an error; malformed input degrades to a less-structured but valid result.
// Image URLs and timing are filled in later by the orchestrator.
func Parse(raw string) *CritiqueResult {
	result := &CritiqueResult{
		IsAppropriate:   true, // documented fallback when the marker is absent
		Recommendations: []OutfitRecommendation{},
	}

	state := statePreamble
	sawMarker := false
	sawAppropriate := false

	// Preamble accumulators. Lines before any CRITIQUE: marker still count
	// as critique commentary.
	var critique, suggestions []string
	sink := &critique
	critiqueOpened := false
	suggestionsOpened := false

	var blocks []*outfitBlock
	var block *outfitBlock

	closeBlock := func() {
		if block != nil {
			blocks = append(blocks, block)
			block = nil
		}
	}

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		// Outfit markers switch state regardless of the current one.
		if m := outfitRe.FindStringSubmatch(trimmed); m != nil {
			sawMarker = true
			closeBlock()
			n, _ := strconv.Atoi(m[1])
			if n >= 1 && n <= maxRecommendations && len(blocks) < maxRecommendations {
				state = stateOutfit
				block = &outfitBlock{number: n, fields: map[string]string{}}
				if rest := strings.TrimSpace(m[2]); rest != "" {
					block.appendLine(rest)
				}
			} else {
				state = stateSkipBlock
			}
			continue
		}

		switch state {
		case statePreamble:
			if m := appropriateRe.FindStringSubmatch(trimmed); m != nil {
				sawMarker = true
				if !sawAppropriate {
					sawAppropriate = true
					result.IsAppropriate = parseYesNo(m[1])
				} else {
					*sink = append(*sink, trimmed)
				}
				continue
			}
			if m := preambleFieldRe.FindStringSubmatch(trimmed); m != nil {
				sawMarker = true
				value := strings.TrimSpace(m[2])
				switch strings.ToLower(m[1]) {
				case "critique":
					if critiqueOpened {
						*sink = append(*sink, trimmed)
						continue
					}
					critiqueOpened = true
					sink = &critique
				case "suggestions":
					if suggestionsOpened {
						*sink = append(*sink, trimmed)
						continue
					}
					suggestionsOpened = true
					sink = &suggestions
				}
				if value != "" {
					*sink = append(*sink, value)
				}
				continue
			}
			*sink = append(*sink, trimmed)

		case stateOutfit:
			if m := outfitFieldRe.FindStringSubmatch(trimmed); m != nil {
				sawMarker = true
				name := strings.ToLower(spaceRe.ReplaceAllString(m[1], " "))
				block.setField(name, strings.TrimSpace(m[2]), trimmed)
			} else {
				block.appendLine(trimmed)
			}

		case stateSkipBlock:
			// Contents of an ignored block are discarded.
		}
	}
	closeBlock()

	// No recognized marker anywhere: return the reply verbatim so the
	// caller always has something renderable.
	if !sawMarker {
		result.Critique = raw
		return result
	}

	result.Critique = strings.TrimSpace(strings.Join(critique, "\n"))
	result.ImprovementSuggestions = strings.TrimSpace(strings.Join(suggestions, "\n"))

	for _, b := range blocks {
		if rec, ok := b.recommendation(); ok {
			result.Recommendations = append(result.Recommendations, rec)
		}
	}

	return result
}

// outfitBlock accumulates one OUTFIT n: section.
type outfitBlock struct {
	number  int
	fields  map[string]string
	current string   // field receiving continuation lines
	stray   []string // lines seen before any field marker
}

// setField records a field value. First marker wins: a repeated marker's
// whole line is treated as trailing prose on the open field.
func (b *outfitBlock) setField(name, value, fullLine string) {
	if _, dup := b.fields[name]; dup {
		b.appendLine(fullLine)
		return
	}
	b.fields[name] = value
	b.current = name
}

// appendLine extends the open field; with no field open the line is kept
// as stray prose destined for whyItWorks, never discarded.
func (b *outfitBlock) appendLine(line string) {
	if b.current != "" {
		if b.fields[b.current] == "" {
			b.fields[b.current] = line
		} else {
			b.fields[b.current] += " " + line
		}
		return
	}
	b.stray = append(b.stray, line)
}

// recommendation builds the output entry. A block missing any garment
// field is dropped entirely: an image lookup on an empty garment name is
// meaningless downstream.
func (b *outfitBlock) recommendation() (OutfitRecommendation, bool) {
	top := strings.TrimSpace(b.fields["top"])
	bottom := strings.TrimSpace(b.fields["bottom"])
	shoes := strings.TrimSpace(b.fields["shoes"])
	if top == "" || bottom == "" || shoes == "" {
		return OutfitRecommendation{}, false
	}

	name := strings.TrimSpace(b.fields["name"])
	if name == "" {
		name = fmt.Sprintf("Outfit Option %d", b.number)
	}

	why := strings.TrimSpace(b.fields["why it works"])
	if why == "" {
		why = strings.TrimSpace(b.fields["description"])
	}
	if len(b.stray) > 0 {
		strayText := strings.Join(b.stray, " ")
		if why == "" {
			why = strayText
		} else {
			why += " " + strayText
		}
	}

	return OutfitRecommendation{
		OutfitName:   name,
		Top:          top,
		Bottom:       bottom,
		Shoes:        shoes,
		WhyItWorks:   why,
		ColorPalette: splitColors(b.fields["colors"]),
		MatchScore:   defaultMatchScore,
	}, true
}

// parseYesNo interprets the appropriateness value. Anything that does not
// read as a negative counts as appropriate.
func parseYesNo(value string) bool {
	token := strings.ToLower(strings.TrimSpace(value))
	token = strings.Trim(token, "[]().,!*")
	return !strings.HasPrefix(token, "no") && !strings.HasPrefix(token, "false")
}

// splitColors breaks a colors value on commas and the word "and" into
// trimmed color names, deduplicated case-insensitively, order preserved.
func splitColors(value string) []string {
	var palette []string
	seen := map[string]bool{}
	for _, c := range colorSplitRe.Split(value, -1) {
		c = strings.Trim(strings.TrimSpace(c), ".")
		if c == "" {
			continue
		}
		key := strings.ToLower(c)
		if seen[key] {
			continue
		}
		seen[key] = true
		palette = append(palette, c)
	}
	return palette
}
