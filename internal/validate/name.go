package validate

import (
	"regexp"
	"strings"
)

var nameCharset = regexp.MustCompile(`^[A-Za-z\s\-']+$`)

// Keyboard-mash substrings that show up in junk input.
var gibberishRuns = []string{"asdf", "qwer", "zxcv", "hjkl", "ghjk", "lkjh", "poiuy", "mnbv"}

// Words people type instead of a name.
var nameBlacklist = map[string]bool{
	"test":    true,
	"testing": true,
	"hi":      true,
	"hello":   true,
	"hey":     true,
	"ok":      true,
	"okay":    true,
	"yes":     true,
	"no":      true,
	"name":    true,
	"abc":     true,
	"xyz":     true,
	"none":    true,
	"na":      true,
	"nil":     true,
	"null":    true,
}

// Indian names with long consonant clusters that the run check would
// otherwise reject.
var indianNameWhitelist = map[string]bool{
	"lakshmi":   true,
	"krishnan":  true,
	"krishna":   true,
	"shruthi":   true,
	"shreshth":  true,
	"prashant":  true,
	"shradha":   true,
	"shraddha":  true,
	"harshdeep": true,
	"drishti":   true,
	"vaishnavi": true,
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

// longestConsonantRun measures consecutive consonants in a lowercase word.
func longestConsonantRun(word string) int {
	run, best := 0, 0
	for _, r := range word {
		if r >= 'a' && r <= 'z' && !isVowel(r) {
			run++
			if run > best {
				best = run
			}
		} else {
			run = 0
		}
	}
	return best
}

// IsPlausibleName applies heuristic checks for a human name: charset,
// minimum length, vowel and consonant presence, gibberish patterns and
// a junk-word blacklist.
func IsPlausibleName(input string) bool {
	name := strings.TrimSpace(input)
	if name == "" || !nameCharset.MatchString(name) {
		return false
	}

	letters := 0
	hasVowel, hasConsonant := false, false
	for _, r := range strings.ToLower(name) {
		if r >= 'a' && r <= 'z' {
			letters++
			if isVowel(r) {
				hasVowel = true
			} else {
				hasConsonant = true
			}
		}
	}
	if letters < 3 || !hasVowel || !hasConsonant {
		return false
	}

	lower := strings.ToLower(name)
	for _, g := range gibberishRuns {
		if strings.Contains(lower, g) {
			return false
		}
	}

	for _, word := range strings.Fields(lower) {
		word = strings.Trim(word, "-'")
		if word == "" {
			continue
		}
		if nameBlacklist[word] {
			return false
		}
		if indianNameWhitelist[word] {
			continue
		}
		if longestConsonantRun(word) >= 4 {
			return false
		}
	}

	return true
}
