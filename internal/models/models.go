package models

import (
	"time"
)

// Document types stored under a regulation partition.
const (
	DocumentTypeFactSheet   = "FactSheet"
	DocumentTypeFinalRuling = "FinalRuling"
)

// Regulation is one searchable document collection. PartitionKey scopes every
// stored chunk and similarity query for the collection.
type Regulation struct {
	PartitionKey string `db:"partition_key" json:"partitionKey"`
	Title        string `db:"title" json:"title"`
	HasFactSheet bool   `db:"has_fact_sheet" json:"hasFactSheet"`
}

// StoredDocument is the persisted record for one overlapped chunk (or one fact
// sheet page). ID is deterministic: "{documentType}_{sequence}", so re-running
// ingestion from sequence zero overwrites prior records in place.
type StoredDocument struct {
	ID           string    `db:"id" json:"id"`
	PartitionKey string    `db:"partition_key" json:"partitionKey"`
	DocumentType string    `db:"document_type" json:"documentType"`
	PageIndex    int       `db:"page_index" json:"pageIndex"`
	Text         string    `db:"text" json:"text"`
	Embedding    []float32 `db:"embedding" json:"-"`
}

// RetrievedMatch is one row of a top-K similarity query. Score is a distance:
// lower means more similar.
type RetrievedMatch struct {
	ID           string  `db:"id" json:"id"`
	PartitionKey string  `db:"partition_key" json:"partitionKey"`
	DocumentType string  `db:"document_type" json:"documentType"`
	Text         string  `db:"text" json:"text"`
	Score        float64 `db:"score" json:"similarityScore"`
}

// Conversation is a per-user, per-regulation question thread. SequenceCount is
// bumped atomically with every log append.
type Conversation struct {
	ID            string                 `db:"id" json:"id"`
	UserID        string                 `db:"user_id" json:"userId"`
	RegulationKey string                 `db:"regulation_key" json:"regulation"`
	Name          string                 `db:"name" json:"name"`
	SequenceCount int                    `db:"sequence_count" json:"sequenceCount"`
	Created       time.Time              `db:"created" json:"created"`
	Updated       *time.Time             `db:"updated" json:"updated"`
	Log           []ConversationLogEntry `db:"-" json:"log"`
}

// ConversationLogEntry is one exchange in a conversation. Entries are append
// only and strictly ordered by Sequence within their conversation.
type ConversationLogEntry struct {
	ID                string    `db:"id" json:"id"`
	ConversationID    string    `db:"conversation_id" json:"conversationId"`
	UserID            string    `db:"user_id" json:"userId"`
	PromptRaw         string    `db:"prompt_raw" json:"promptRaw"`
	PromptImproved    string    `db:"prompt_improved" json:"promptImproved"`
	ContextRaw        string    `db:"context_raw" json:"contextRaw"`
	ContextSummarized string    `db:"context_summarized" json:"contextSummarized"`
	FactSheet         string    `db:"fact_sheet" json:"factSheet"`
	Directions        string    `db:"directions" json:"directions"`
	Response          string    `db:"response" json:"response"`
	Sequence          int       `db:"sequence" json:"sequence"`
	Created           time.Time `db:"created" json:"created"`
}

// SourceDocument describes one PDF to ingest. Location is a local path or an
// s3://bucket/key URI. StartMarker, when set, suppresses indexing until the
// marker text has been seen in a page.
type SourceDocument struct {
	Location    string `json:"location"`
	Name        string `json:"name"`
	Description string `json:"description"`
	StartMarker string `json:"startMarker,omitempty"`
}
