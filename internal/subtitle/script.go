package subtitle

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	// DefaultMaxBlockChars bounds the on-screen length of one subtitle.
	DefaultMaxBlockChars = 120
	// DefaultReadingRate is the assumed reading speed in chars per second.
	DefaultReadingRate = 15.0
	// pause inserted between consecutive generated subtitles
	blockPause = 900 * time.Millisecond
)

// words that end with a period without ending a sentence
var abbreviations = map[string]bool{
	"sr": true, "sra": true, "srta": true, "dr": true, "dra": true,
	"prof": true, "profa": true, "etc": true, "ex": true, "obs": true,
	"av": true, "pag": true, "tel": true, "vs": true,
	"jan": true, "fev": true, "mar": true, "abr": true, "mai": true,
	"jun": true, "jul": true, "ago": true, "set": true, "out": true,
	"nov": true, "dez": true,
}

// SplitSentences breaks text at sentence-ending punctuation, keeping the
// punctuation with the sentence. Periods after known abbreviations and
// decimal points do not end a sentence.
func SplitSentences(text string) []string {
	runes := []rune(text)
	var sentences []string
	start := 0

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}

		// consume a run like "..." or "?!"
		j := i
		for j+1 < len(runes) && isSentencePunct(runes[j+1]) {
			j++
		}

		if r == '.' && j == i {
			if i > 0 && i+1 < len(runes) &&
				unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[i+1]) {
				continue
			}
			if abbreviations[strings.ToLower(lastWord(runes[start:i]))] {
				continue
			}
		}

		i = j
		if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
			sentences = append(sentences, s)
		}
		start = i + 1
	}

	if rest := strings.TrimSpace(string(runes[start:])); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}

func isSentencePunct(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func lastWord(runes []rune) string {
	end := len(runes)
	i := end
	for i > 0 && unicode.IsLetter(runes[i-1]) {
		i--
	}
	return string(runes[i:end])
}

// SplitBlocks normalizes a free-form script and packs its sentences into
// blocks of at most maxChars characters. Oversized sentences are cut at a
// comma, then at whitespace, else hard-cut.
func SplitBlocks(text string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = DefaultMaxBlockChars
	}
	sentences := SplitSentences(NormalizeText(text))

	var blocks []string
	current := ""
	flush := func() {
		if current != "" {
			blocks = append(blocks, current)
			current = ""
		}
	}

	for _, sentence := range sentences {
		if utf8.RuneCountInString(sentence) > maxChars {
			flush()
			blocks = append(blocks, splitLong(sentence, maxChars)...)
			continue
		}
		if current == "" {
			current = sentence
			continue
		}
		if utf8.RuneCountInString(current)+1+utf8.RuneCountInString(sentence) <= maxChars {
			current += " " + sentence
		} else {
			flush()
			current = sentence
		}
	}
	flush()
	return blocks
}

func splitLong(s string, maxChars int) []string {
	var out []string
	for utf8.RuneCountInString(s) > maxChars {
		runes := []rune(s)
		window := runes[:maxChars]

		cut := lastIndexFunc(window, func(r rune) bool { return r == ',' })
		if cut <= 0 {
			cut = lastIndexFunc(window, unicode.IsSpace)
		}
		if cut <= 0 {
			cut = maxChars - 1
		}

		if piece := strings.TrimSpace(string(runes[:cut+1])); piece != "" {
			out = append(out, piece)
		}
		s = strings.TrimSpace(string(runes[cut+1:]))
	}
	if s != "" {
		out = append(out, s)
	}
	return out
}

func lastIndexFunc(runes []rune, match func(rune) bool) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if match(runes[i]) {
			return i
		}
	}
	return -1
}

// GenerateEntries times script blocks sequentially from zero: each block
// stays on screen for len/readingRate seconds with a fixed pause between
// blocks.
func GenerateEntries(blocks []string, readingRate float64) []Entry {
	if readingRate <= 0 {
		readingRate = DefaultReadingRate
	}
	entries := make([]Entry, 0, len(blocks))
	cursor := time.Duration(0)
	for i, block := range blocks {
		chars := utf8.RuneCountInString(block)
		d := time.Duration(float64(chars) / readingRate * float64(time.Second))
		entries = append(entries, Entry{
			Index:     i + 1,
			StartTime: cursor,
			EndTime:   cursor + d,
			Text:      block,
		})
		cursor += d + blockPause
	}
	return entries
}

// GenerateFromScript is the full pipeline: normalize, split, time.
func GenerateFromScript(text string, maxChars int, readingRate float64) []Entry {
	return GenerateEntries(SplitBlocks(text, maxChars), readingRate)
}
