package nlp

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	spacedPlus  = regexp.MustCompile(`\s*\+\s*`)
	spacedSlash = regexp.MustCompile(`\s*/\s*`)
	fileToken   = regexp.MustCompile(`^[a-h]$`)
	rankToken   = regexp.MustCompile(`^[1-8]$`)
)

var numberWords = map[string]string{
	"zero":    "0",
	"one":     "1",
	"two":     "2",
	"three":   "3",
	"four":    "4",
	"five":    "5",
	"six":     "6",
	"seven":   "7",
	"eight":   "8",
	"nine":    "9",
	"ten":     "10",
	"fifteen": "15",
	"twenty":  "20",
	"thirty":  "30",
	"forty":   "40",
	"sixty":   "60",
	"ninety":  "90",
}

// Normalize prepares a transcript for matching: lower case, accents removed,
// punctuation other than + / - dropped, number words spelled as digits and
// spoken squares such as "e 4" joined into "e4".
func Normalize(text string) string {
	text = strings.ToLower(text)

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if cleaned, _, err := transform.String(t, text); err == nil {
		text = cleaned
	}

	text = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		switch r {
		case '+', '/', '-':
			return r
		}
		return ' '
	}, text)

	text = spacedPlus.ReplaceAllString(text, "+")
	text = spacedSlash.ReplaceAllString(text, "/")

	words := strings.Fields(text)
	for i, w := range words {
		if digit, ok := numberWords[w]; ok {
			words[i] = digit
		}
	}

	return strings.Join(joinSquares(words), " ")
}

func joinSquares(words []string) []string {
	out := make([]string, 0, len(words))
	for i := 0; i < len(words); i++ {
		if i+1 < len(words) && fileToken.MatchString(words[i]) && rankToken.MatchString(words[i+1]) {
			out = append(out, words[i]+words[i+1])
			i++
			continue
		}
		out = append(out, words[i])
	}
	return out
}
