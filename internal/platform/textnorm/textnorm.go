// Package textnorm normalizes free-text names coming from the feed so they can
// be compared across locales and spelling variants.
package textnorm

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/valyala/bytebufferpool"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var teamFold = strings.NewReplacer(
	"ё", "е",
	"ә", "а",
	"ғ", "г",
	"қ", "к",
	"ң", "н",
	"ө", "о",
	"ұ", "у",
	"ү", "у",
	"һ", "х",
	"і", "и",
	"й", "и",
)

var personFold = strings.NewReplacer(
	"ё", "е",
	"ә", "а",
	"ұ", "у",
	"і", "и",
	"ғ", "г",
	"қ", "к",
	"ң", "н",
	"ө", "о",
	"ү", "у",
	"ы", "и",
	"һ", "х",
	"й", "и",
)

// Lower trims and lowercases a value. It mirrors lower(btrim(x)) on the database side.
func Lower(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// TeamKey folds a team name into a comparison key: NFC, case folding, Kazakh
// letters mapped onto their Russian counterparts, punctuation collapsed to
// single spaces.
func TeamKey(value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	folded := teamFold.Replace(cases.Fold().String(norm.NFC.String(value)))

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	pendingSpace := false
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			if pendingSpace && buf.Len() > 0 {
				_ = buf.WriteByte(' ')
			}
			pendingSpace = false
			buf.B = utf8.AppendRune(buf.B, r)
			continue
		}
		pendingSpace = true
	}
	return buf.String()
}

// PersonKey folds a person name the way officials are compared.
func PersonKey(value string) string {
	return personFold.Replace(strings.ToLower(strings.TrimSpace(norm.NFC.String(value))))
}

// Similar reports whether two person names differ in at most maxDiff
// positions after folding. Length difference counts towards the budget.
func Similar(a, b string, maxDiff int) bool {
	left := []rune(PersonKey(a))
	right := []rune(PersonKey(b))
	if string(left) == string(right) {
		return true
	}
	lengthDiff := len(left) - len(right)
	if lengthDiff < 0 {
		lengthDiff = -lengthDiff
	}
	if lengthDiff > maxDiff {
		return false
	}

	diff := lengthDiff
	for i := 0; i < len(left) && i < len(right); i++ {
		if left[i] != right[i] {
			diff++
		}
	}
	return diff <= maxDiff
}

// SplitFullName splits "First Middle Last" into first and last token. A single
// token is treated as a last name.
func SplitFullName(value string) (string, string) {
	parts := strings.Fields(value)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return "", parts[0]
	default:
		return parts[0], parts[len(parts)-1]
	}
}

// JoinName builds a display name from first and last name.
func JoinName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}
