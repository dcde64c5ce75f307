package core

import (
	"context"
	"io"

	"github.com/umccanna/regulation-summarization/internal/models"
)

// DocumentStore defines the vector-searchable keyed store for regulation
// chunks. It abstracts Postgres/pgvector so the pipeline never depends on a
// specific database.
type DocumentStore interface {
	UpsertDocument(ctx context.Context, doc *models.StoredDocument) error
	SearchDocuments(ctx context.Context, partitionKey string, queryVec []float32, limit int) ([]models.RetrievedMatch, error)
	GetFactSheetPages(ctx context.Context, partitionKey string, limit int) ([]string, error)
	DeleteDocumentsByType(ctx context.Context, partitionKey, documentType string) (int, error)

	ListRegulations(ctx context.Context) ([]models.Regulation, error)
	UpsertRegulation(ctx context.Context, reg *models.Regulation) error
}

// ConversationStore persists conversation threads and their append-only logs.
// AppendConversationLog must bump the parent's sequence counter and insert the
// log row as a single atomic unit.
type ConversationStore interface {
	CreateConversation(ctx context.Context, userID, name, regulationKey string) (*models.Conversation, error)
	GetConversation(ctx context.Context, userID, conversationID string) (*models.Conversation, error)
	ListConversations(ctx context.Context, userID string) ([]models.Conversation, error)
	AppendConversationLog(ctx context.Context, entry *models.ConversationLogEntry) error
	MigrateConversations(ctx context.Context, oldUserID, newUserID string) error
}

// EmbeddingProvider turns text into a vector.
type EmbeddingProvider interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// ChatMessage is one turn handed to the chat model.
type ChatMessage struct {
	Role    string
	Content string
}

// Chat model roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// LLMProvider produces a completion for an ordered message list.
type LLMProvider interface {
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
}

// PageSource yields raw extracted text one page at a time. Pages is one-pass
// and finite; callers consume each page exactly once.
type PageSource interface {
	Pages(ctx context.Context, r io.Reader) ([]string, error)
}

// ObjectClient defines interactions with S3 or any object storage holding
// source PDFs.
type ObjectClient interface {
	GetObjectReader(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	UploadFile(ctx context.Context, bucket, key string, data []byte, contentType string) (url string, err error)
	DeleteFile(ctx context.Context, bucket, key string) error
}
