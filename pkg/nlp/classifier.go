package nlp

import (
	"strings"
)

const (
	ExactConfidence    = 1.0
	ContainsConfidence = 0.85
	// MinConfidence is the lowest score that is acted upon.
	MinConfidence = 0.5

	overlapBase  = 0.5
	overlapScale = 0.3
)

// Classify matches text against the default catalog.
func Classify(text string) (MatchedIntent, bool) {
	return DefaultCatalog.Classify(text)
}

// Classify returns the best scoring intent for text. An exact phrase match
// returns immediately; otherwise the highest of substring containment and word
// overlap wins, with ties going to the earlier catalog entry.
func (c Catalog) Classify(text string) (MatchedIntent, bool) {
	normalized := Normalize(text)
	if normalized == "" {
		return MatchedIntent{}, false
	}

	transcriptWords := strings.Split(normalized, " ")

	var best MatchedIntent
	for _, pattern := range c.patterns {
		for _, phrase := range pattern.Phrases {
			if normalized == phrase {
				return MatchedIntent{
					Intent:     pattern.Intent,
					Confidence: ExactConfidence,
					SourceText: normalized,
					Phrase:     phrase,
				}, true
			}

			if strings.Contains(normalized, phrase) && ContainsConfidence > best.Confidence {
				best = MatchedIntent{
					Intent:     pattern.Intent,
					Confidence: ContainsConfidence,
					SourceText: normalized,
					Phrase:     phrase,
				}
			}

			if confidence, ok := overlapConfidence(strings.Split(phrase, " "), transcriptWords); ok && confidence > best.Confidence {
				best = MatchedIntent{
					Intent:     pattern.Intent,
					Confidence: confidence,
					SourceText: normalized,
					Phrase:     phrase,
				}
			}
		}
	}

	if best.Intent == IntentNone || best.Confidence < MinConfidence {
		return MatchedIntent{}, false
	}
	return best, true
}

// overlapConfidence scores how many phrase words appear among the transcript
// words, counting equal words and words contained in one another.
func overlapConfidence(phraseWords, transcriptWords []string) (float64, bool) {
	if len(phraseWords) == 0 {
		return 0, false
	}

	matched := 0
	for _, word := range phraseWords {
		for _, tw := range transcriptWords {
			if tw == word || strings.Contains(tw, word) || strings.Contains(word, tw) {
				matched++
				break
			}
		}
	}

	// ceil(0.6 * n) without float rounding.
	required := (3*len(phraseWords) + 4) / 5
	if matched < required {
		return 0, false
	}

	fraction := float64(matched) / float64(len(phraseWords))
	return overlapBase + fraction*overlapScale, true
}
