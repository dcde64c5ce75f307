package textnorm

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe    = regexp.MustCompile(`\s+`)
	unicodeEscapeRe = regexp.MustCompile(`\\u(?:[a-z]|\d){4}`)

	orgEmailRe = regexp.MustCompile(`(?:[a-zA-Z]|\d|-|\.)*@cms\.hhs\.gov`)
	phoneRe    = regexp.MustCompile(`\(?\d{3}\)?-?\d{3}-\d{4}`)
	urlRe      = regexp.MustCompile(`(https?|ftp)://([a-zA-Z0-9-.]+)(/[^\s]*)?(\?[^\s]*)?`)
)

// Options controls the optional cleanup passes. The zero value matches the
// ingestion defaults: newlines removed, escape residue kept.
type Options struct {
	// KeepNewlines leaves literal \n and \r in place. Needed when page-tag
	// boundaries ride on line breaks.
	KeepNewlines bool
	// StripUnicodeEscapes removes literal \uXXXX sequences left behind by bad
	// decoding.
	StripUnicodeEscapes bool
}

// Normalize cleans raw extracted page text: whitespace runs collapse to a
// single space and common extraction artifacts are repaired. Always returns a
// string, possibly empty. Idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string, opts Options) string {
	if !opts.KeepNewlines {
		text = strings.ReplaceAll(text, "\n", "")
		text = strings.ReplaceAll(text, "\r", "")
	}
	text = whitespaceRe.ReplaceAllString(text, " ")
	if opts.StripUnicodeEscapes {
		text = unicodeEscapeRe.ReplaceAllString(text, "")
	}

	text = replaceToFixedPoint(text, ". ,", "")
	text = replaceToFixedPoint(text, "..", ".")
	text = replaceToFixedPoint(text, ". .", ".")

	// Swap decorations pdftotext tends to mangle for plain equivalents.
	text = strings.ReplaceAll(text, "●", "*")
	text = strings.ReplaceAll(text, "‑", "-")

	// Artifact removal can butt two spaces together; collapse once more so a
	// second pass is a no-op.
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// replaceToFixedPoint applies the substitution until the text stops changing.
// A single ReplaceAll can leave fresh occurrences behind ("..." -> "..").
func replaceToFixedPoint(text, old, new string) string {
	for strings.Contains(text, old) {
		next := strings.ReplaceAll(text, old, new)
		if next == text {
			break
		}
		text = next
	}
	return text
}

// StripContactInfo removes organization email addresses, North-American phone
// numbers and web addresses. Regex based and best effort; not a privacy
// guarantee.
func StripContactInfo(text string) string {
	text = strings.TrimSpace(orgEmailRe.ReplaceAllString(text, ""))
	text = strings.TrimSpace(phoneRe.ReplaceAllString(text, ""))
	text = strings.TrimSpace(urlRe.ReplaceAllString(text, ""))
	return text
}
