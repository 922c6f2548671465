package nlp

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

var (
	numberRE = regexp.MustCompile(`^[+-]?(\d+([.,/:]\d+)*|\d*[.,]\d+)%?$`)
	urlRE    = regexp.MustCompile(`(?i)^((https?|ftp)://|www\.)\S+$|^[a-z0-9-]+(\.[a-z0-9-]+)*\.(com|org|net|edu|gov|io|tw|jp|cn|uk)(/\S*)?$`)
	emailRE  = regexp.MustCompile(`^[\w.+-]+@[\w-]+(\.[\w-]+)+$`)
)

var numberWords = map[string]bool{
	"zero": true, "one": true, "two": true, "three": true, "four": true,
	"five": true, "six": true, "seven": true, "eight": true, "nine": true,
	"ten": true, "hundred": true, "thousand": true, "million": true, "billion": true,
}

// LikeNum reports whether the text looks like a number. Full-width digits
// are folded before matching.
func LikeNum(s string) bool {
	narrow := width.Narrow.String(s)
	if numberRE.MatchString(narrow) {
		return true
	}
	return numberWords[strings.ToLower(narrow)]
}

// LikeURL reports whether the text looks like a URL.
func LikeURL(s string) bool {
	return urlRE.MatchString(s)
}

// LikeEmail reports whether the text looks like an e-mail address.
func LikeEmail(s string) bool {
	return emailRE.MatchString(width.Narrow.String(s))
}

// IsPunct reports whether every rune in s is punctuation.
func IsPunct(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsPunct(r) {
			return false
		}
	}
	return true
}

// IsSpace reports whether s is non-empty whitespace.
func IsSpace(s string) bool {
	return s != "" && strings.TrimSpace(s) == ""
}

// PunctOrSymbol classifies a token made purely of punctuation or symbols,
// returning "" for anything else.
func PunctOrSymbol(s string) string {
	if s == "" {
		return ""
	}
	if IsSpace(s) {
		return SPACE
	}
	if IsPunct(s) {
		return PUNCT
	}
	for _, r := range s {
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) {
			return ""
		}
	}
	return SYM
}
