package chunking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextUnit_EncodeWireFormat(t *testing.T) {
	u := TextUnit{
		DocumentName:        "VT AHEAD Application Project Narrative",
		DocumentDescription: "Vermont's project narrative",
		Page:                12,
		Text:                "The global budget is revised annually",
	}
	want := "<Chunk><DocumentName>VT AHEAD Application Project Narrative</DocumentName>" +
		"<DocumentDescription>Vermont's project narrative</DocumentDescription>" +
		"<Page>12</Page><Text>The global budget is revised annually</Text></Chunk>"
	assert.Equal(t, want, u.Encode())
}

func TestDecodeUnit_RoundTrip(t *testing.T) {
	u := TextUnit{
		DocumentName:        "MD AHEAD Application",
		DocumentDescription: "Maryland's application",
		Page:                3,
		Text:                "Hospitals participate voluntarily",
	}
	got, err := DecodeUnit(u.Encode())
	require.NoError(t, err)
	assert.Equal(t, u, got)
}

func TestDecodeUnit_MissingDescriptionTolerated(t *testing.T) {
	// Blobs from early ingestion runs carry no description tag.
	encoded := "<Chunk><DocumentName>doc</DocumentName><Page>1</Page><Text>body</Text></Chunk>"
	got, err := DecodeUnit(encoded)
	require.NoError(t, err)
	assert.Equal(t, "doc", got.DocumentName)
	assert.Equal(t, "", got.DocumentDescription)
	assert.Equal(t, 1, got.Page)
	assert.Equal(t, "body", got.Text)
}

func TestDecodeUnit_Malformed(t *testing.T) {
	cases := []string{
		"no tags at all",
		"<Chunk><DocumentName>doc</DocumentName><Text>body</Text></Chunk>",       // no page
		"<Chunk><DocumentName>doc</DocumentName><Page>x</Page><Text>t</Text></Chunk>", // page not a number
		"<Chunk><DocumentName>doc</DocumentName><Page>1</Page></Chunk>",          // no text
	}
	for _, in := range cases {
		_, err := DecodeUnit(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestSplitEncoded_RewrapsOuterTags(t *testing.T) {
	a := TextUnit{DocumentName: "d", Page: 1, Text: "first"}.Encode()
	b := TextUnit{DocumentName: "d", Page: 1, Text: "second"}.Encode()
	c := TextUnit{DocumentName: "d", Page: 2, Text: "third"}.Encode()

	pieces := SplitEncoded(a + b + c)
	require.Len(t, pieces, 3)
	assert.Equal(t, a, pieces[0])
	assert.Equal(t, b, pieces[1])
	assert.Equal(t, c, pieces[2])
}

func TestSplitEncoded_SingleUnit(t *testing.T) {
	a := TextUnit{DocumentName: "d", Page: 1, Text: "only"}.Encode()
	pieces := SplitEncoded(a)
	require.Len(t, pieces, 1)
	assert.Equal(t, a, pieces[0])
}

func TestHasProvenanceTags(t *testing.T) {
	tagged := TextUnit{DocumentName: "d", Page: 1, Text: "x"}.Encode()
	assert.True(t, HasProvenanceTags(tagged))
	assert.False(t, HasProvenanceTags("plain pre-tagging blob"))
}

func TestDocumentNameOf(t *testing.T) {
	tagged := TextUnit{DocumentName: "ct-ahead-application", Page: 9, Text: "x"}.Encode()
	assert.Equal(t, "ct-ahead-application", DocumentNameOf(tagged))
	assert.Equal(t, "", DocumentNameOf("untagged"))
}
