// internal/recommend/prompt.go
package recommend

import (
	"fmt"
	"strings"
)

// buildAnalysisPrompt produces the combined appropriateness-judgment and
// three-alternative prompt. The fixed labels here are what the parser
// segments on, so prompt and parser must agree on them.
func buildAnalysisPrompt(occasion, style string, includeBrands bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Analyze this image and determine if the outfit is appropriate for the occasion: %q with a %q style preference.\n\n", occasion, style)

	b.WriteString("Please provide your analysis in the following format:\n\n")
	b.WriteString("APPROPRIATE: [Yes/No]\n")
	fmt.Fprintf(&b, "CRITIQUE: [Explain why the outfit is or isn't appropriate for %s]\n", occasion)
	b.WriteString("SUGGESTIONS: [If appropriate, suggest minor improvements. If not appropriate, explain what should be worn instead]\n\n")

	fmt.Fprintf(&b, "If the outfit is NOT appropriate, also provide 3 different outfit recommendations for %s:\n\n", occasion)
	b.WriteString("OUTFIT 1:\n")
	b.WriteString("- Name: [Outfit style name]\n")
	b.WriteString("- Description: [Brief description]\n")
	b.WriteString("- Top: [Specific top item]\n")
	b.WriteString("- Bottom: [Specific bottom item]\n")
	b.WriteString("- Shoes: [Specific shoes]\n")
	b.WriteString("- Colors: [Color palette]\n")
	b.WriteString("- Why it works: [Rationale]\n\n")
	b.WriteString("OUTFIT 2:\n[Same format]\n\n")
	b.WriteString("OUTFIT 3:\n[Same format]\n\n")

	b.WriteString("Be specific and practical in your recommendations.")
	if includeBrands {
		b.WriteString(" Mention specific brands where relevant.")
	}

	return b.String()
}

// buildQuickPrompt produces the short free-text description prompt.
func buildQuickPrompt() string {
	return "Briefly describe what this person is wearing. Just the basics: items and colors."
}
