package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_CollapsesWhitespace(t *testing.T) {
	got := Normalize("The  quick\tbrown\n\nfox", Options{})
	assert.Equal(t, "The quick brown fox", got)
}

func TestNormalize_RepairsPunctuationArtifacts(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"double dot", "End of sentence.. Next", "End of sentence. Next"},
		{"dot space dot", "End. . Next", "End. Next"},
		{"dot space comma removed", "rates. , were adjusted", "rates were adjusted"},
		{"triple dot collapses fully", "wait...", "wait."},
		{"bullet swapped", "● item one", "* item one"},
		{"non-breaking hyphen swapped", "cost‑sharing", "cost-sharing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in, Options{}))
		})
	}
}

func TestNormalize_KeepNewlines(t *testing.T) {
	got := Normalize("line one\nline two", Options{KeepNewlines: true})
	// Newlines survive only as collapsed whitespace boundaries.
	assert.Equal(t, "line one line two", got)

	got = Normalize("line one\nline two", Options{})
	assert.Equal(t, "line oneline two", got)
}

func TestNormalize_StripUnicodeEscapes(t *testing.T) {
	in := `broken \u00a7 section`

	got := Normalize(in, Options{StripUnicodeEscapes: true})
	assert.Equal(t, "broken section", got)

	got = Normalize(in, Options{})
	assert.Equal(t, in, got)
}

func TestNormalize_EmptyAndWhitespaceOnly(t *testing.T) {
	assert.Equal(t, "", Normalize("", Options{}))
	assert.Equal(t, "", Normalize("   \n\t  ", Options{}))
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain text with no artifacts",
		"The  quick\tbrown\n\nfox.. jumped. . over. , the fence",
		"....",
		". . . .",
		"a . , b",
		"●‑●",
		"  padded  ",
	}
	for _, in := range inputs {
		once := Normalize(in, Options{})
		twice := Normalize(once, Options{})
		assert.Equal(t, once, twice, "input %q", in)
	}
}

func TestStripContactInfo(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"org email", "contact john.doe@cms.hhs.gov for details", "contact  for details"},
		{"phone with parens", "call (555)867-5309 now", "call  now"},
		{"phone plain", "call 555-867-5309 now", "call  now"},
		{"https url", "see https://example.com/path?x=1 for more", "see  for more"},
		{"ftp url", "download ftp://files.example.org/doc.pdf here", "download  here"},
		{"clean text untouched", "no contact details here", "no contact details here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripContactInfo(tt.in))
		})
	}
}
