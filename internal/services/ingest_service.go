package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/umccanna/regulation-summarization/internal/config"
	"github.com/umccanna/regulation-summarization/internal/core"
	"github.com/umccanna/regulation-summarization/internal/core/chunking"
	"github.com/umccanna/regulation-summarization/internal/core/textnorm"
	"github.com/umccanna/regulation-summarization/internal/models"
)

// minPageLength filters cover pages and extraction noise. Pages whose
// normalized text is this short carry nothing worth indexing.
const minPageLength = 3

// IngestService drives the document side of the system: it reads source PDFs,
// normalizes and chunks their text, embeds the chunks and writes them into the
// vector store under a regulation's partition key.
type IngestService struct {
	store    core.DocumentStore
	objects  core.ObjectClient
	embedder core.EmbeddingProvider
	pages    core.PageSource
	splitter chunking.Splitter
	cfg      *config.Config
}

func NewIngestService(
	store core.DocumentStore,
	objects core.ObjectClient,
	embedder core.EmbeddingProvider,
	pages core.PageSource,
	splitter chunking.Splitter,
	cfg *config.Config,
) *IngestService {
	return &IngestService{
		store:    store,
		objects:  objects,
		embedder: embedder,
		pages:    pages,
		splitter: splitter,
		cfg:      cfg,
	}
}

// UploadRulingRequest describes one final ruling ingestion run. Documents are
// processed in order and share a single chunk sequence, so a multi-part ruling
// lands in the store as one continuous collection.
type UploadRulingRequest struct {
	PartitionKey       string
	Title              string
	Documents          []models.SourceDocument
	StartingChunkCount int
}

// UploadRuling ingests every document in the request. Returns the number of
// overlapped chunks written. Running it again with a starting count of zero
// overwrites the prior run record for record; that is the supported way to
// re-index a regulation.
func (s *IngestService) UploadRuling(ctx context.Context, req *UploadRulingRequest) (int, error) {
	if req.PartitionKey == "" {
		return 0, fmt.Errorf("partition key is required")
	}
	if len(req.Documents) == 0 {
		return 0, fmt.Errorf("no documents to ingest")
	}

	written := 0
	sink := func(overlapped []chunking.Chunk, startSequence int) error {
		for k, ch := range overlapped {
			text := ch.Join(s.cfg.JoiningCharacter)
			vec, err := s.embedder.EmbedText(ctx, text)
			if err != nil {
				return fmt.Errorf("embed chunk %d: %w", startSequence+k, err)
			}
			doc := &models.StoredDocument{
				ID:           fmt.Sprintf("%s_%d", models.DocumentTypeFinalRuling, startSequence+k),
				PartitionKey: req.PartitionKey,
				DocumentType: models.DocumentTypeFinalRuling,
				Text:         text,
				Embedding:    vec,
			}
			if err := s.store.UpsertDocument(ctx, doc); err != nil {
				return fmt.Errorf("store chunk %s: %w", doc.ID, err)
			}
			written++
			if written%100 == 0 {
				log.Printf("ingested %d chunks for %s", written, req.PartitionKey)
			}
		}
		return nil
	}

	w := chunking.NewWindower(
		s.cfg.ChunkSize, s.cfg.OverlapSize, s.cfg.SpoolingSize,
		req.StartingChunkCount, sink)

	for _, doc := range req.Documents {
		if err := s.ingestDocument(ctx, w, doc); err != nil {
			return written, fmt.Errorf("ingest %s: %w", doc.Name, err)
		}
	}
	if err := w.Flush(); err != nil {
		return written, err
	}

	title := req.Title
	if title == "" {
		title = req.PartitionKey
	}
	err := s.store.UpsertRegulation(ctx, &models.Regulation{
		PartitionKey: req.PartitionKey,
		Title:        title,
	})
	if err != nil {
		return written, fmt.Errorf("register regulation: %w", err)
	}

	log.Printf("ingestion complete: %d chunks for %s, next sequence %d",
		written, req.PartitionKey, w.Sequence())
	return written, nil
}

// ingestDocument feeds one source document's pages through the splitter and
// into the shared windower.
func (s *IngestService) ingestDocument(ctx context.Context, w *chunking.Windower, doc models.SourceDocument) error {
	r, err := s.openDocument(ctx, doc.Location)
	if err != nil {
		return err
	}
	defer r.Close()

	pages, err := s.pages.Pages(ctx, r)
	if err != nil {
		return err
	}

	// StartMarker gates indexing: preamble pages before the marker first
	// appears are skipped entirely.
	started := doc.StartMarker == ""

	for i, raw := range pages {
		if !started {
			if !strings.Contains(raw, doc.StartMarker) {
				continue
			}
			started = true
		}

		cleaned := textnorm.Normalize(textnorm.StripContactInfo(raw), textnorm.Options{})
		if len(cleaned) <= minPageLength {
			log.Printf("skipping page %d of %s: too short after cleanup", i+1, doc.Name)
			continue
		}

		units, err := s.splitter.Split(ctx, cleaned)
		if err != nil {
			return fmt.Errorf("split page %d: %w", i+1, err)
		}
		for _, unit := range units {
			err := w.Add(chunking.TextUnit{
				DocumentName:        doc.Name,
				DocumentDescription: doc.Description,
				Page:                i + 1,
				Text:                unit,
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// UploadFactSheet stores a fact sheet one page per record, unchunked. Fact
// sheet pages are read back whole for the answer-grounding gate, so they skip
// the windower entirely.
func (s *IngestService) UploadFactSheet(ctx context.Context, partitionKey string, doc models.SourceDocument) (int, error) {
	if partitionKey == "" {
		return 0, fmt.Errorf("partition key is required")
	}

	r, err := s.openDocument(ctx, doc.Location)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	pages, err := s.pages.Pages(ctx, r)
	if err != nil {
		return 0, err
	}

	written := 0
	for i, raw := range pages {
		cleaned := textnorm.Normalize(textnorm.StripContactInfo(raw), textnorm.Options{})
		if len(cleaned) <= minPageLength {
			log.Printf("skipping fact sheet page %d: too short after cleanup", i+1)
			continue
		}

		vec, err := s.embedder.EmbedText(ctx, cleaned)
		if err != nil {
			return written, fmt.Errorf("embed fact sheet page %d: %w", i+1, err)
		}
		stored := &models.StoredDocument{
			ID:           fmt.Sprintf("%s_%d", models.DocumentTypeFactSheet, i+1),
			PartitionKey: partitionKey,
			DocumentType: models.DocumentTypeFactSheet,
			PageIndex:    i + 1,
			Text:         cleaned,
			Embedding:    vec,
		}
		if err := s.store.UpsertDocument(ctx, stored); err != nil {
			return written, fmt.Errorf("store fact sheet page %d: %w", i+1, err)
		}
		written++
	}

	err = s.store.UpsertRegulation(ctx, &models.Regulation{
		PartitionKey: partitionKey,
		Title:        partitionKey,
		HasFactSheet: true,
	})
	if err != nil {
		return written, fmt.Errorf("register regulation: %w", err)
	}

	log.Printf("fact sheet upload complete: %d pages for %s", written, partitionKey)
	return written, nil
}

// StageDocument uploads a local source PDF into the configured bucket and
// returns the s3:// location a manifest entry should reference. Key defaults
// to the file's base name.
func (s *IngestService) StageDocument(ctx context.Context, path, key string) (string, error) {
	if s.objects == nil {
		return "", fmt.Errorf("no object storage client configured")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if key == "" {
		key = filepath.Base(path)
	}

	url, err := s.objects.UploadFile(ctx, s.cfg.BucketName, key, data, "application/pdf")
	if err != nil {
		return "", fmt.Errorf("stage %s: %w", key, err)
	}
	log.Printf("staged %s to %s", path, url)
	return fmt.Sprintf("s3://%s/%s", s.cfg.BucketName, key), nil
}

// DiscardStagedDocument removes a staged source PDF from the bucket once its
// regulation has been ingested.
func (s *IngestService) DiscardStagedDocument(ctx context.Context, key string) error {
	if s.objects == nil {
		return fmt.Errorf("no object storage client configured")
	}
	if err := s.objects.DeleteFile(ctx, s.cfg.BucketName, key); err != nil {
		return fmt.Errorf("discard %s: %w", key, err)
	}
	log.Printf("discarded staged object %s", key)
	return nil
}

// DeleteDocuments removes every stored record of one document type under a
// partition, reporting how many rows went away.
func (s *IngestService) DeleteDocuments(ctx context.Context, partitionKey, documentType string) (int, error) {
	n, err := s.store.DeleteDocumentsByType(ctx, partitionKey, documentType)
	if err != nil {
		return 0, err
	}
	log.Printf("deleted %d %s records under %s", n, documentType, partitionKey)
	return n, nil
}

// openDocument resolves a source location: an s3://bucket/key URI streams from
// object storage, anything else is a local file path.
func (s *IngestService) openDocument(ctx context.Context, location string) (io.ReadCloser, error) {
	if strings.HasPrefix(location, "s3://") {
		if s.objects == nil {
			return nil, fmt.Errorf("no object storage client configured for %q", location)
		}
		rest := strings.TrimPrefix(location, "s3://")
		bucket, key, ok := strings.Cut(rest, "/")
		if !ok || bucket == "" || key == "" {
			return nil, fmt.Errorf("invalid s3 location %q", location)
		}
		return s.objects.GetObjectReader(ctx, bucket, key)
	}
	f, err := os.Open(location)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", location, err)
	}
	return f, nil
}

// LoadManifest reads a JSON array of source documents from disk.
func LoadManifest(path string) ([]models.SourceDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var docs []models.SourceDocument
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return docs, nil
}
