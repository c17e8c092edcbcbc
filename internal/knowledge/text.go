package knowledge

import (
	"strings"
	"unicode"
)

// NormalizeText lowercases s, turns every run of non alphanumeric runes into a
// single space and trims the result. "Chest_Pain!" becomes "chest pain".
func NormalizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := true
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			space = false
			continue
		}
		// apostrophes stay inside words so "can't" is one token
		if r == '\'' && !space {
			b.WriteRune(r)
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(b.String())
}

// NormalizeTag converts a symptom phrase into its tag form: "Weight gain" and
// "weight-gain" both become "weight_gain".
func NormalizeTag(s string) string {
	return strings.ReplaceAll(NormalizeText(strings.ReplaceAll(s, "'", "")), " ", "_")
}

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "at": {}, "by": {}, "for": {}, "if": {}, "in": {},
	"is": {}, "it": {}, "of": {}, "on": {}, "or": {}, "the": {}, "to": {}, "with": {},
	"without": {}, "your": {}, "my": {}, "lbs": {}, "month": {}, "days": {}, "weeks": {},
	"body": {}, "side": {}, "especially": {}, "lasting": {}, "trying": {}, "one": {},
}

// Words too common in symptom descriptions to identify a red flag on their own.
var genericWords = map[string]struct{}{
	"pain": {}, "sudden": {}, "severe": {}, "new": {}, "persistent": {}, "changes": {},
	"changing": {}, "growing": {}, "painful": {}, "intense": {}, "improvement": {},
	"worsening": {}, "blood": {}, "loss": {}, "high": {}, "rest": {}, "life": {},
	"worst": {}, "harm": {}, "self": {}, "others": {}, "intent": {}, "thoughts": {},
	"arm": {}, "pressure": {}, "difficulty": {}, "headache": {}, "weakness": {},
	"abdominal": {}, "vomiting": {}, "coughing": {}, "weight": {}, "black": {},
	"stools": {}, "irregular": {}, "border": {}, "color": {}, "breath": {},
	"bloody": {}, "unexplained": {},
}

// Tokenize splits a red-flag description into its identifying keywords: stop
// words, generic modifiers, numbers and tokens shorter than three runes are dropped.
func Tokenize(description string) []string {
	fields := strings.Fields(NormalizeText(description))
	out := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if len([]rune(f)) < 3 || isNumber(f) {
			continue
		}
		if _, ok := stopwords[f]; ok {
			continue
		}
		if _, ok := genericWords[f]; ok {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

func isNumber(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ContentWords returns the distinct words of free text that are at least
// three runes long and not stop words. Unlike Tokenize it keeps generic
// symptom words such as "pain" and "blood".
func ContentWords(text string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, f := range strings.Fields(NormalizeText(text)) {
		if !contentWord(f) {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// SymptomPhrases turns free text into symptom tags: its content words
// followed by every two and three word run that starts and ends on a content
// word, joined with underscores. "blood in stool" yields blood, stool and
// blood_in_stool.
func SymptomPhrases(text string) []string {
	fields := strings.Fields(strings.ReplaceAll(NormalizeText(text), "'", ""))
	out := ContentWords(strings.Join(fields, " "))
	seen := make(map[string]struct{}, len(out))
	for _, w := range out {
		seen[w] = struct{}{}
	}
	for n := 2; n <= 3; n++ {
		for i := 0; i+n <= len(fields); i++ {
			if !contentWord(fields[i]) || !contentWord(fields[i+n-1]) {
				continue
			}
			p := strings.Join(fields[i:i+n], "_")
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}

func contentWord(w string) bool {
	if len([]rune(w)) < 3 || isNumber(w) {
		return false
	}
	_, stop := stopwords[w]
	return !stop
}
