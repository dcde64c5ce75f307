package chunking

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/umccanna/regulation-summarization/internal/core"
)

// Splitter cuts one page of normalized text into text units ready for
// windowing.
type Splitter interface {
	Split(ctx context.Context, pageText string) ([]string, error)
}

// DelimiterSplitter splits deterministically on a configured delimiter,
// usually ". ".
type DelimiterSplitter struct {
	Delimiter string
}

func (s DelimiterSplitter) Split(_ context.Context, pageText string) ([]string, error) {
	return strings.Split(pageText, s.Delimiter), nil
}

// ModelSplitter delegates the split decision to the chat model, which groups
// sentences that belong together semantically. Non-deterministic; guarded by
// a quality-control pass that retries once and falls back to the whole page
// rather than dropping data.
type ModelSplitter struct {
	LLM core.LLMProvider
}

const splitPrompt = `Split the text in "Text:" below into self-contained passages. Keep sentences that describe the same topic together in one passage. Respond with only the passages, one per line, and no other commentary.

Text:
%s`

// minSplitUnits is the quality-control floor; a real page of regulation text
// virtually never splits into fewer units.
const minSplitUnits = 4

func (s ModelSplitter) Split(ctx context.Context, pageText string) ([]string, error) {
	units, err := s.askModel(ctx, pageText)
	if err != nil {
		return nil, err
	}

	if len(units) < minSplitUnits {
		log.Printf("WARN: quality control: model produced %d units, retrying split", len(units))
		units, err = s.askModel(ctx, pageText)
		if err != nil {
			return nil, err
		}
	}

	if len(units) == 0 {
		log.Printf("WARN: quality control: model split produced nothing, indexing page as a single unit")
		return []string{pageText}, nil
	}
	return units, nil
}

func (s ModelSplitter) askModel(ctx context.Context, pageText string) ([]string, error) {
	resp, err := s.LLM.Complete(ctx, []core.ChatMessage{
		{Role: core.RoleSystem, Content: "You are a text segmentation assistant."},
		{Role: core.RoleUser, Content: fmt.Sprintf(splitPrompt, pageText)},
	})
	if err != nil {
		return nil, fmt.Errorf("model split: %w", err)
	}

	var units []string
	for _, line := range strings.Split(resp, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			units = append(units, line)
		}
	}
	return units, nil
}
