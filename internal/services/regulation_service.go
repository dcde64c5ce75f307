package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/umccanna/regulation-summarization/internal/config"
	"github.com/umccanna/regulation-summarization/internal/core"
	"github.com/umccanna/regulation-summarization/internal/core/merge"
	"github.com/umccanna/regulation-summarization/internal/core/textnorm"
	"github.com/umccanna/regulation-summarization/internal/models"
)

// maxTitleLength bounds generated conversation titles.
const maxTitleLength = 30

// summaryConcurrency bounds the per-group summarization fan-out so a broad
// retrieval does not open one chat call per document at once.
const summaryConcurrency = 2

// RegulationService runs the question-answering flow: retrieve context for a
// query, ground the model in it and keep the conversation thread updated.
type RegulationService struct {
	store         core.DocumentStore
	conversations core.ConversationStore
	embedder      core.EmbeddingProvider
	llm           core.LLMProvider
	cfg           *config.Config
}

func NewRegulationService(
	store core.DocumentStore,
	conversations core.ConversationStore,
	embedder core.EmbeddingProvider,
	llm core.LLMProvider,
	cfg *config.Config,
) *RegulationService {
	return &RegulationService{
		store:         store,
		conversations: conversations,
		embedder:      embedder,
		llm:           llm,
		cfg:           cfg,
	}
}

type SummarizeRequest struct {
	Regulation     string `json:"regulation"`
	Query          string `json:"query"`
	UserID         string `json:"userId"`
	ConversationID string `json:"conversationId"`
}

type SummarizeResult struct {
	Result         string `json:"result"`
	ConversationID string `json:"conversationId"`
}

// Summarize answers one user query against a regulation's stored chunks and
// appends the exchange to the conversation log.
func (s *RegulationService) Summarize(ctx context.Context, req *SummarizeRequest) (*SummarizeResult, error) {
	regulation, err := s.findRegulation(ctx, req.Regulation)
	if err != nil {
		return nil, err
	}
	if regulation == nil {
		// Not fatal: chunks may exist under the partition even when the
		// catalog row is missing. Fall back to the generic analyst persona.
		log.Printf("WARN: regulation %q not in catalog, proceeding with generic prompt", req.Regulation)
	}
	systemPrompt := systemPromptFor(regulation)

	conversation, err := s.resolveConversation(ctx, req)
	if err != nil {
		return nil, err
	}

	recent := conversation.Log
	if len(recent) > s.cfg.ConversationContext {
		recent = recent[len(recent)-s.cfg.ConversationContext:]
	}
	history := historyMessages(recent)

	factSheet, err := s.maybePullFactSheet(ctx, regulation, conversation, history, systemPrompt, req.Query)
	if err != nil {
		return nil, err
	}

	improvedQuery := req.Query
	if len(history) > 0 {
		improvedQuery, err = s.improveQuery(ctx, req.Query, history, systemPrompt)
		if err != nil {
			return nil, err
		}
		log.Printf("improved query: %s", improvedQuery)
	}

	queryVec, err := s.embedder.EmbedText(ctx,
		textnorm.Normalize(improvedQuery, textnorm.Options{StripUnicodeEscapes: true}))
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches, err := s.store.SearchDocuments(ctx, req.Regulation, queryVec, s.cfg.SearchTopK)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	var directions, response, contextRaw, contextSummarized string
	if len(matches) == 0 {
		log.Printf("no matches under %s, answering from history only", req.Regulation)
		directions = directionsWithoutContext
		response, err = s.llm.Complete(ctx, withUserTurn(systemPrompt, history,
			buildUserContent(directions, improvedQuery, "", factSheet)))
		if err != nil {
			return nil, fmt.Errorf("answer without context: %w", err)
		}
	} else {
		directions = directionsWithContext
		contextRaw, contextSummarized, response, err = s.answerWithContext(
			ctx, matches, history, systemPrompt, directions, factSheet, improvedQuery)
		if err != nil {
			return nil, err
		}
	}

	entry := &models.ConversationLogEntry{
		ConversationID:    conversation.ID,
		UserID:            req.UserID,
		PromptRaw:         req.Query,
		PromptImproved:    improvedQuery,
		ContextRaw:        contextRaw,
		ContextSummarized: contextSummarized,
		FactSheet:         factSheet,
		Directions:        directions,
		Response:          response,
	}
	if err := s.conversations.AppendConversationLog(ctx, entry); err != nil {
		return nil, fmt.Errorf("save conversation log: %w", err)
	}

	return &SummarizeResult{Result: response, ConversationID: conversation.ID}, nil
}

// answerWithContext merges the retrieved chunks into the raw context, then
// runs the answer call and the bounded per-document summaries concurrently.
// The summaries replace the raw context in the stored history, cutting what
// later turns replay to the model.
func (s *RegulationService) answerWithContext(
	ctx context.Context,
	matches []models.RetrievedMatch,
	history []core.ChatMessage,
	systemPrompt, directions, factSheet, query string,
) (contextRaw, contextSummarized, response string, err error) {
	groups := merge.GroupByDocument(matches)
	for i := range groups {
		groups[i].Texts = merge.Merge(groups[i].Texts)
	}

	texts := make([]string, len(matches))
	for i, m := range matches {
		texts[i] = m.Text
	}
	contextRaw = merge.CombineTexts(merge.Merge(texts))

	g, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(summaryConcurrency)
	summaries := make([]string, len(groups))

	g.Go(func() error {
		var err error
		response, err = s.llm.Complete(gctx, withUserTurn(systemPrompt, history,
			buildUserContent(directions, query, contextRaw, factSheet)))
		if err != nil {
			return fmt.Errorf("answer with context: %w", err)
		}
		return nil
	})
	for i := range groups {
		i := i
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			summary, err := s.summarizeText(gctx, merge.CombineTexts(groups[i].Texts), 0)
			if err != nil {
				return fmt.Errorf("summarize group %s: %w", groups[i].Name, err)
			}
			summaries[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", "", "", err
	}

	return contextRaw, strings.Join(summaries, "\n\n"), response, nil
}

// resolveConversation loads the requested thread or starts a new one with a
// generated title. An unknown conversation id also starts a new thread.
func (s *RegulationService) resolveConversation(ctx context.Context, req *SummarizeRequest) (*models.Conversation, error) {
	if req.ConversationID != "" {
		conversation, err := s.conversations.GetConversation(ctx, req.UserID, req.ConversationID)
		if err != nil {
			return nil, fmt.Errorf("load conversation: %w", err)
		}
		if conversation != nil {
			return conversation, nil
		}
		log.Printf("WARN: conversation %s not found, starting a new one", req.ConversationID)
	}

	title, err := s.generateTitle(ctx, req.Query)
	if err != nil {
		log.Printf("WARN: title generation failed, falling back to the query: %v", err)
		title = truncate(req.Query, maxTitleLength)
	}
	conversation, err := s.conversations.CreateConversation(ctx, req.UserID, title, req.Regulation)
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return conversation, nil
}

// maybePullFactSheet decides whether this turn should carry the fact sheet: the
// regulation must have one, the conversation must not already carry one, and
// the gate model must agree the user is asking for a general list of changes.
// An empty history skips the gate and pulls it unconditionally.
func (s *RegulationService) maybePullFactSheet(
	ctx context.Context,
	regulation *models.Regulation,
	conversation *models.Conversation,
	history []core.ChatMessage,
	systemPrompt, query string,
) (string, error) {
	if regulation == nil || !regulation.HasFactSheet {
		return "", nil
	}
	for _, entry := range conversation.Log {
		if entry.FactSheet != "" {
			log.Println("fact sheet already in conversation")
			return "", nil
		}
	}

	if len(history) > 0 {
		pull, err := s.askYesNo(ctx, systemPrompt, history, fmt.Sprintf(factSheetGatePrompt, query))
		if err != nil {
			return "", fmt.Errorf("fact sheet gate: %w", err)
		}
		if !pull {
			return "", nil
		}
	} else {
		log.Println("no history, pulling the fact sheet")
	}

	pages, err := s.store.GetFactSheetPages(ctx, regulation.PartitionKey, s.cfg.FactSheetPageLimit)
	if err != nil {
		return "", fmt.Errorf("load fact sheet: %w", err)
	}
	if len(pages) == 0 {
		return "", nil
	}
	return s.summarizeText(ctx, strings.Join(pages, "\n\n"), 0)
}

func (s *RegulationService) askYesNo(ctx context.Context, systemPrompt string, history []core.ChatMessage, question string) (bool, error) {
	answer, err := s.llm.Complete(ctx, withUserTurn(systemPrompt, history, question))
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(strings.ToLower(answer)) == "yes", nil
}

// summarizeText condenses a blob; maxLength > 0 asks the model to cap the
// summary at that many characters.
func (s *RegulationService) summarizeText(ctx context.Context, text string, maxLength int) (string, error) {
	if maxLength > 0 {
		text = fmt.Sprintf("Max Length: %d\n\n%s", maxLength, text)
	}
	return s.llm.Complete(ctx, []core.ChatMessage{
		{Role: core.RoleSystem, Content: summarizeSystemPrompt},
		{Role: core.RoleUser, Content: fmt.Sprintf(summarizePrompt, text)},
	})
}

func (s *RegulationService) improveQuery(ctx context.Context, query string, history []core.ChatMessage, systemPrompt string) (string, error) {
	improved, err := s.llm.Complete(ctx, withUserTurn(systemPrompt, history,
		fmt.Sprintf(improveQueryPrompt, query)))
	if err != nil {
		return "", fmt.Errorf("improve query: %w", err)
	}
	improved = strings.TrimSpace(improved)
	if improved == "" {
		return query, nil
	}
	return improved, nil
}

func (s *RegulationService) generateTitle(ctx context.Context, query string) (string, error) {
	title, err := s.llm.Complete(ctx, []core.ChatMessage{
		{Role: core.RoleSystem, Content: summarizeSystemPrompt},
		{Role: core.RoleUser, Content: fmt.Sprintf(generateTitlePrompt, maxTitleLength, query)},
	})
	if err != nil {
		return "", err
	}
	return truncate(strings.TrimSpace(title), maxTitleLength), nil
}

// Regulations lists the catalog.
func (s *RegulationService) Regulations(ctx context.Context) ([]models.Regulation, error) {
	return s.store.ListRegulations(ctx)
}

// Conversations lists a user's recent threads.
func (s *RegulationService) Conversations(ctx context.Context, userID string) ([]models.Conversation, error) {
	return s.conversations.ListConversations(ctx, userID)
}

// Conversation loads one thread with its full log; nil when absent.
func (s *RegulationService) Conversation(ctx context.Context, userID, conversationID string) (*models.Conversation, error) {
	return s.conversations.GetConversation(ctx, userID, conversationID)
}

// MigrateConversations reassigns threads from one user id to another.
func (s *RegulationService) MigrateConversations(ctx context.Context, oldUserID, newUserID string) error {
	return s.conversations.MigrateConversations(ctx, oldUserID, newUserID)
}

func (s *RegulationService) findRegulation(ctx context.Context, partitionKey string) (*models.Regulation, error) {
	regulations, err := s.store.ListRegulations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list regulations: %w", err)
	}
	for i := range regulations {
		if regulations[i].PartitionKey == partitionKey {
			return &regulations[i], nil
		}
	}
	return nil, nil
}

func systemPromptFor(regulation *models.Regulation) string {
	if regulation != nil && regulation.HasFactSheet {
		return regulationSystemPrompt
	}
	return genericSystemPrompt
}

// historyMessages replays prior log entries the way they were originally
// asked: directions plus prompt, with the summarized context and fact sheet
// the turn carried, then the model's response.
func historyMessages(entries []models.ConversationLogEntry) []core.ChatMessage {
	var out []core.ChatMessage
	for _, entry := range entries {
		prompt := entry.PromptImproved
		if prompt == "" {
			prompt = entry.PromptRaw
		}

		var b strings.Builder
		b.WriteString(entry.Directions)
		b.WriteString("\n\nPrompt:\n")
		b.WriteString(prompt)
		if entry.ContextSummarized != "" {
			b.WriteString("\n\nContext:\n")
			b.WriteString(entry.ContextSummarized)
		}
		if entry.FactSheet != "" {
			b.WriteString("\n\nFact Sheet:\n")
			b.WriteString(entry.FactSheet)
		}
		out = append(out, core.ChatMessage{Role: core.RoleUser, Content: b.String()})

		if entry.Response != "" {
			out = append(out, core.ChatMessage{Role: core.RoleAssistant, Content: entry.Response})
		}
	}
	return out
}

// buildUserContent assembles the current turn in the same labeled layout the
// history uses.
func buildUserContent(directions, query, context, factSheet string) string {
	var b strings.Builder
	b.WriteString(directions)
	b.WriteString("\n\nPrompt:\n")
	b.WriteString(query)
	if context != "" {
		b.WriteString("\n\nContext:\n")
		b.WriteString(context)
	}
	if factSheet != "" {
		b.WriteString("\n\nFact Sheet:\n")
		b.WriteString(factSheet)
	}
	return b.String()
}

func withUserTurn(systemPrompt string, history []core.ChatMessage, content string) []core.ChatMessage {
	messages := make([]core.ChatMessage, 0, len(history)+2)
	messages = append(messages, core.ChatMessage{Role: core.RoleSystem, Content: systemPrompt})
	messages = append(messages, history...)
	messages = append(messages, core.ChatMessage{Role: core.RoleUser, Content: content})
	return messages
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
