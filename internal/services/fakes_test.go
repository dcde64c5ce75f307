package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/umccanna/regulation-summarization/internal/config"
	"github.com/umccanna/regulation-summarization/internal/core"
	"github.com/umccanna/regulation-summarization/internal/models"
)

// fakeStore is an in-memory DocumentStore.
type fakeStore struct {
	mu          sync.Mutex
	docs        []models.StoredDocument
	regulations []models.Regulation
	matches     []models.RetrievedMatch
	factPages   []string
	deleted     int
}

func (f *fakeStore) UpsertDocument(_ context.Context, doc *models.StoredDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.docs {
		if f.docs[i].PartitionKey == doc.PartitionKey && f.docs[i].ID == doc.ID {
			f.docs[i] = *doc
			return nil
		}
	}
	f.docs = append(f.docs, *doc)
	return nil
}

func (f *fakeStore) SearchDocuments(_ context.Context, partitionKey string, _ []float32, limit int) ([]models.RetrievedMatch, error) {
	var out []models.RetrievedMatch
	for _, m := range f.matches {
		if m.PartitionKey != partitionKey {
			continue
		}
		out = append(out, m)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) GetFactSheetPages(_ context.Context, _ string, limit int) ([]string, error) {
	if len(f.factPages) > limit {
		return f.factPages[:limit], nil
	}
	return f.factPages, nil
}

func (f *fakeStore) DeleteDocumentsByType(_ context.Context, _, _ string) (int, error) {
	return f.deleted, nil
}

func (f *fakeStore) ListRegulations(_ context.Context) ([]models.Regulation, error) {
	return f.regulations, nil
}

func (f *fakeStore) UpsertRegulation(_ context.Context, reg *models.Regulation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.regulations {
		if f.regulations[i].PartitionKey == reg.PartitionKey {
			f.regulations[i].Title = reg.Title
			f.regulations[i].HasFactSheet = f.regulations[i].HasFactSheet || reg.HasFactSheet
			return nil
		}
	}
	f.regulations = append(f.regulations, *reg)
	return nil
}

// fakeConversations is an in-memory ConversationStore.
type fakeConversations struct {
	mu            sync.Mutex
	conversations map[string]*models.Conversation
	appended      []models.ConversationLogEntry
	nextID        int
}

func newFakeConversations() *fakeConversations {
	return &fakeConversations{conversations: make(map[string]*models.Conversation)}
}

func (f *fakeConversations) CreateConversation(_ context.Context, userID, name, regulationKey string) (*models.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	conv := &models.Conversation{
		ID:            fmt.Sprintf("conv-%d", f.nextID),
		UserID:        userID,
		RegulationKey: regulationKey,
		Name:          name,
	}
	f.conversations[conv.ID] = conv
	return conv, nil
}

func (f *fakeConversations) GetConversation(_ context.Context, userID, conversationID string) (*models.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	conv, ok := f.conversations[conversationID]
	if !ok || conv.UserID != userID {
		return nil, nil
	}
	return conv, nil
}

func (f *fakeConversations) ListConversations(_ context.Context, userID string) ([]models.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Conversation
	for _, conv := range f.conversations {
		if conv.UserID == userID {
			out = append(out, *conv)
		}
	}
	return out, nil
}

func (f *fakeConversations) AppendConversationLog(_ context.Context, entry *models.ConversationLogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	conv, ok := f.conversations[entry.ConversationID]
	if !ok {
		return fmt.Errorf("conversation %s not found", entry.ConversationID)
	}
	conv.SequenceCount++
	entry.Sequence = conv.SequenceCount
	conv.Log = append(conv.Log, *entry)
	f.appended = append(f.appended, *entry)
	return nil
}

func (f *fakeConversations) MigrateConversations(_ context.Context, oldUserID, newUserID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, conv := range f.conversations {
		if conv.UserID == oldUserID {
			conv.UserID = newUserID
		}
	}
	return nil
}

// fakeEmbedder returns a constant vector and counts calls.
type fakeEmbedder struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeEmbedder) EmbedText(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, text)
	return []float32{0.1, 0.2, 0.3}, nil
}

// routingLLM dispatches on marker substrings of the final user message, so
// concurrent calls stay deterministic without shared ordering state.
type routingLLM struct {
	mu    sync.Mutex
	calls [][]core.ChatMessage

	gateAnswer string // yes/no gate reply, default "no"
	improved   string // improve-query reply, default echoes the prompt back
}

func (f *routingLLM) Complete(_ context.Context, messages []core.ChatMessage) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, messages)
	f.mu.Unlock()

	last := messages[len(messages)-1].Content
	switch {
	case strings.Contains(last, `simple "yes" or "no"`):
		if f.gateAnswer == "" {
			return "no", nil
		}
		return f.gateAnswer, nil
	case strings.Contains(last, "Rewrite the"):
		if f.improved == "" {
			return "improved question", nil
		}
		return f.improved, nil
	case strings.Contains(last, "Create a short title"):
		return "Generated Title", nil
	case strings.Contains(last, "Summarize the text provided"):
		return "group summary", nil
	default:
		return "the answer", nil
	}
}

// lastUserContents returns the final user message of every recorded call.
func (f *routingLLM) lastUserContents() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, call := range f.calls {
		out[i] = call[len(call)-1].Content
	}
	return out
}

// fakePages ignores the reader and returns preset page texts.
type fakePages struct {
	pages []string
}

func (f *fakePages) Pages(_ context.Context, _ io.Reader) ([]string, error) {
	return f.pages, nil
}

// fakeObjects records requested keys and serves empty bodies.
type fakeObjects struct {
	mu      sync.Mutex
	gets    []string
	uploads []string
	deletes []string
}

func (f *fakeObjects) GetObjectReader(_ context.Context, bucket, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets = append(f.gets, bucket+"/"+key)
	return io.NopCloser(strings.NewReader("")), nil
}

func (f *fakeObjects) UploadFile(_ context.Context, bucket, key string, _ []byte, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, bucket+"/"+key)
	return "https://" + bucket + ".s3.us-east-2.amazonaws.com/" + key, nil
}

func (f *fakeObjects) DeleteFile(_ context.Context, bucket, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, bucket+"/"+key)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		BucketName:          "test-bucket",
		ChunkSize:           3,
		OverlapSize:         1,
		SpoolingSize:        50,
		ChunkingCharacter:   ". ",
		JoiningCharacter:    "",
		SearchTopK:          10,
		FactSheetPageLimit:  15,
		ConversationContext: 7,
	}
}
