// Package merge reverses the ingestion-time overlap at query time. Retrieved
// matches are overlapped chunks, so adjacent results repeat 20-30% of their
// content; merging splits them back into provenance-tagged units and drops
// the duplicates before the context reaches the chat model.
package merge

import (
	"fmt"
	"log"
	"strings"

	"github.com/umccanna/regulation-summarization/internal/core/chunking"
	"github.com/umccanna/regulation-summarization/internal/models"
)

// DefaultGroupName buckets matches that predate document-name tagging.
const DefaultGroupName = "Default"

// Group is one document's worth of retrieved context.
type Group struct {
	Name  string
	Texts []string
}

// Merge splits each retrieved text on unit boundaries and deduplicates on the
// (documentName, text, page) identity. Best effort: blobs without provenance
// tags, or any decode failure, return the input unchanged; merging is an
// optimization, never a correctness requirement. Idempotent on its own
// output.
func Merge(texts []string) []string {
	if len(texts) == 0 || !chunking.HasProvenanceTags(texts[0]) {
		return texts
	}

	merged, err := mergeTagged(texts)
	if err != nil {
		log.Printf("WARN: failed to merge retrieved chunks, defaulting to unmerged: %v", err)
		return texts
	}
	return merged
}

func mergeTagged(texts []string) ([]string, error) {
	var merged []string
	seen := make(map[string]struct{})

	for _, text := range texts {
		for _, piece := range chunking.SplitEncoded(text) {
			unit, err := chunking.DecodeUnit(piece)
			if err != nil {
				return nil, err
			}

			key := fmt.Sprintf("%s_%s_%d", unit.DocumentName, unit.Text, unit.Page)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, piece)
		}
	}
	return merged, nil
}

// GroupByDocument buckets match texts by their document name, preserving the
// order of first appearance. Untagged matches land in a single default group.
func GroupByDocument(matches []models.RetrievedMatch) []Group {
	if len(matches) == 0 {
		return nil
	}

	if chunking.DocumentNameOf(matches[0].Text) == "" {
		g := Group{Name: DefaultGroupName}
		for _, m := range matches {
			g.Texts = append(g.Texts, m.Text)
		}
		return []Group{g}
	}

	var groups []Group
	index := make(map[string]int)
	for _, m := range matches {
		name := chunking.DocumentNameOf(m.Text)
		if name == "" {
			name = DefaultGroupName
		}
		if i, ok := index[name]; ok {
			groups[i].Texts = append(groups[i].Texts, m.Text)
			continue
		}
		index[name] = len(groups)
		groups = append(groups, Group{Name: name, Texts: []string{m.Text}})
	}
	return groups
}

// CombineTexts joins merged chunks into one context string, closing the gaps
// the join introduces between adjacent tags.
func CombineTexts(texts []string) string {
	return strings.ReplaceAll(strings.Join(texts, " "), "> <", "><")
}
