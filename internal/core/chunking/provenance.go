package chunking

import (
	"fmt"
	"strconv"
	"strings"
)

// Tag vocabulary of the inline provenance format. The format is a deliberate
// lightweight serialization: it survives joining units into a single string,
// being embedded, stored, retrieved and split back apart. Previously stored
// data uses exactly these tags, so they must not change.
const (
	chunkOpen  = "<Chunk>"
	chunkClose = "</Chunk>"
	nameOpen   = "<DocumentName>"
	nameClose  = "</DocumentName>"
	descOpen   = "<DocumentDescription>"
	descClose  = "</DocumentDescription>"
	pageOpen   = "<Page>"
	pageClose  = "</Page>"
	textOpen   = "<Text>"
	textClose  = "</Text>"
)

// chunkBoundary is what two adjacent encoded units look like once joined with
// an empty joining string. Splitting on it recovers the units.
const chunkBoundary = chunkClose + chunkOpen

// TextUnit is one delimiter-bounded piece of normalized page text tagged with
// its provenance.
type TextUnit struct {
	DocumentName        string
	DocumentDescription string
	Page                int
	Text                string
}

// Encode serializes the unit into the inline tag format.
func (u TextUnit) Encode() string {
	var b strings.Builder
	b.WriteString(chunkOpen)
	b.WriteString(nameOpen)
	b.WriteString(u.DocumentName)
	b.WriteString(nameClose)
	b.WriteString(descOpen)
	b.WriteString(u.DocumentDescription)
	b.WriteString(descClose)
	b.WriteString(pageOpen)
	b.WriteString(strconv.Itoa(u.Page))
	b.WriteString(pageClose)
	b.WriteString(textOpen)
	b.WriteString(u.Text)
	b.WriteString(textClose)
	b.WriteString(chunkClose)
	return b.String()
}

// HasProvenanceTags reports whether a stored blob carries the inline markup.
// Blobs written before provenance tagging existed do not, and skip merging.
func HasProvenanceTags(s string) bool {
	return strings.Contains(s, chunkOpen) &&
		strings.Contains(s, nameOpen) &&
		strings.Contains(s, textOpen) &&
		strings.Contains(s, pageOpen)
}

// SplitEncoded cuts a joined blob back into individual encoded unit strings,
// re-wrapping the outer tags the split strips from the first and last pieces.
func SplitEncoded(blob string) []string {
	pieces := strings.Split(blob, chunkBoundary)
	out := make([]string, 0, len(pieces))
	for _, p := range pieces {
		if !strings.HasPrefix(p, chunkOpen) {
			p = chunkOpen + p
		}
		if !strings.HasSuffix(p, chunkClose) {
			p = p + chunkClose
		}
		out = append(out, p)
	}
	return out
}

// DecodeUnit parses a single encoded unit. The decode is structural rather
// than substring-scraping so a document whose text happens to contain a tag
// literal fails loudly instead of silently corrupting the dedup key.
func DecodeUnit(encoded string) (TextUnit, error) {
	body, err := between(encoded, chunkOpen, chunkClose)
	if err != nil {
		return TextUnit{}, err
	}

	name, err := between(body, nameOpen, nameClose)
	if err != nil {
		return TextUnit{}, err
	}
	desc, err := between(body, descOpen, descClose)
	if err != nil {
		// Older blobs omit the description tag entirely.
		desc = ""
	}
	pageStr, err := between(body, pageOpen, pageClose)
	if err != nil {
		return TextUnit{}, err
	}
	page, err := strconv.Atoi(strings.TrimSpace(pageStr))
	if err != nil {
		return TextUnit{}, fmt.Errorf("page %q is not a number: %w", pageStr, err)
	}
	text, err := between(body, textOpen, textClose)
	if err != nil {
		return TextUnit{}, err
	}

	return TextUnit{
		DocumentName:        name,
		DocumentDescription: desc,
		Page:                page,
		Text:                text,
	}, nil
}

// DocumentNameOf extracts just the document name from an encoded unit or
// joined blob, or "" when the tag is absent.
func DocumentNameOf(encoded string) string {
	name, err := between(encoded, nameOpen, nameClose)
	if err != nil {
		return ""
	}
	return name
}

func between(s, open, close string) (string, error) {
	start := strings.Index(s, open)
	if start < 0 {
		return "", fmt.Errorf("missing %s tag", open)
	}
	start += len(open)
	end := strings.Index(s[start:], close)
	if end < 0 {
		return "", fmt.Errorf("missing %s tag", close)
	}
	return s[start : start+end], nil
}
