package subtitle

import (
	"regexp"
	"strings"
)

var (
	quoteReplacer = strings.NewReplacer(
		"“", `"`, "”", `"`, "„", `"`, "«", `"`, "»", `"`,
		"‘", "'", "’", "'", "‚", "'",
		"–", "-", "—", "-", "−", "-",
		"…", "...",
	)
	multiDotRe       = regexp.MustCompile(`\.{4,}`)
	spaceBeforeRe    = regexp.MustCompile(`\s+([.,!?;:])`)
	missingSpaceRe   = regexp.MustCompile(`([.!?;:,])(\p{L})`)
	multiWhiteRe     = regexp.MustCompile(`\s+`)
	ellipsisSpacesRe = regexp.MustCompile(`\.\s+\.\s*\.`)
)

// NormalizeText cleans up script/subtitle text before timing and SRT
// generation: quote and dash variants unified, ellipses collapsed,
// newlines flattened, and spacing around punctuation repaired.
func NormalizeText(text string) string {
	text = quoteReplacer.Replace(text)
	text = strings.ReplaceAll(text, "\r\n", " ")
	text = strings.ReplaceAll(text, "\n", " ")
	text = ellipsisSpacesRe.ReplaceAllString(text, "...")
	text = multiDotRe.ReplaceAllString(text, "...")
	text = spaceBeforeRe.ReplaceAllString(text, "$1")
	text = missingSpaceRe.ReplaceAllString(text, "$1 $2")
	text = multiWhiteRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
