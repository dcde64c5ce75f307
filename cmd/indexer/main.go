// Command indexer runs the ingestion side of the system: it reads source PDFs,
// chunks and embeds their text and writes the results into the vector store.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/umccanna/regulation-summarization/internal/config"
	"github.com/umccanna/regulation-summarization/internal/core"
	"github.com/umccanna/regulation-summarization/internal/core/chunking"
	db "github.com/umccanna/regulation-summarization/internal/core/database"
	"github.com/umccanna/regulation-summarization/internal/core/llm"
	objectclient "github.com/umccanna/regulation-summarization/internal/core/object-client"
	"github.com/umccanna/regulation-summarization/internal/core/pagesource"
	"github.com/umccanna/regulation-summarization/internal/models"
	"github.com/umccanna/regulation-summarization/internal/services"
)

var rootCmd = &cobra.Command{
	Use:           "indexer",
	Short:         "Ingest regulation documents into the vector store",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		<-c
		cancel()
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatalf("indexer failed: %v", err)
	}
}

// buildIngest wires the full ingestion stack. The closer shuts down every
// client the stack opened.
func buildIngest(ctx context.Context, cfg *config.Config, aiSplit bool) (*services.IngestService, func(), error) {
	dbClient, err := db.NewDatabaseClient(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	var objects core.ObjectClient
	if cfg.AwsAccessKey != "" {
		s3Client, err := objectclient.NewS3Client(ctx, cfg)
		if err != nil {
			dbClient.Close()
			return nil, nil, err
		}
		objects = s3Client
	}

	embedder, err := llm.NewGeminiEmbedder(ctx, cfg.AIAPIKey, cfg.EmbedModel)
	if err != nil {
		dbClient.Close()
		return nil, nil, err
	}

	var splitter chunking.Splitter = chunking.DelimiterSplitter{Delimiter: cfg.ChunkingCharacter}
	var chat *llm.GeminiLLM
	if aiSplit {
		chat, err = llm.NewGeminiLLM(ctx, cfg.AIAPIKey, cfg.ChatModel)
		if err != nil {
			embedder.Close()
			dbClient.Close()
			return nil, nil, err
		}
		splitter = chunking.ModelSplitter{LLM: chat}
	}

	closer := func() {
		if chat != nil {
			chat.Close()
		}
		embedder.Close()
		dbClient.Close()
	}
	svc := services.NewIngestService(dbClient, objects, embedder,
		pagesource.NewPDFPageSource(), splitter, cfg)
	return svc, closer, nil
}

var (
	manifestPath  string
	partitionKey  string
	title         string
	startingCount int
	aiSplit       bool
)

var uploadRulingCmd = &cobra.Command{
	Use:   "upload-ruling",
	Short: "Chunk, embed and store a final ruling from a document manifest",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		key := partitionKey
		if key == "" {
			key = cfg.PartitionKey
		}

		docs, err := services.LoadManifest(manifestPath)
		if err != nil {
			return err
		}

		svc, closer, err := buildIngest(cmd.Context(), cfg, aiSplit)
		if err != nil {
			return err
		}
		defer closer()

		written, err := svc.UploadRuling(cmd.Context(), &services.UploadRulingRequest{
			PartitionKey:       key,
			Title:              title,
			Documents:          docs,
			StartingChunkCount: startingCount,
		})
		if err != nil {
			return err
		}
		log.Printf("stored %d chunks under %s", written, key)
		return nil
	},
}

var (
	factSheetLocation    string
	factSheetName        string
	factSheetDescription string
)

var uploadFactSheetCmd = &cobra.Command{
	Use:   "upload-factsheet",
	Short: "Store a fact sheet one page per record",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		key := partitionKey
		if key == "" {
			key = cfg.PartitionKey
		}

		svc, closer, err := buildIngest(cmd.Context(), cfg, false)
		if err != nil {
			return err
		}
		defer closer()

		written, err := svc.UploadFactSheet(cmd.Context(), key, models.SourceDocument{
			Location:    factSheetLocation,
			Name:        factSheetName,
			Description: factSheetDescription,
		})
		if err != nil {
			return err
		}
		log.Printf("stored %d fact sheet pages under %s", written, key)
		return nil
	},
}

// buildStaging wires only the object-storage side, for commands that never
// touch the database or the models.
func buildStaging(ctx context.Context, cfg *config.Config) (*services.IngestService, error) {
	s3Client, err := objectclient.NewS3Client(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return services.NewIngestService(nil, s3Client, nil, nil, nil, cfg), nil
}

var (
	stageLocation string
	stageKey      string
)

var stageCmd = &cobra.Command{
	Use:   "stage",
	Short: "Upload a local source PDF to the bucket and print its manifest location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		svc, err := buildStaging(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		location, err := svc.StageDocument(cmd.Context(), stageLocation, stageKey)
		if err != nil {
			return err
		}
		cmd.Println(location)
		return nil
	},
}

var unstageKey string

var unstageCmd = &cobra.Command{
	Use:   "unstage",
	Short: "Remove a staged source PDF from the bucket",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		svc, err := buildStaging(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		return svc.DiscardStagedDocument(cmd.Context(), unstageKey)
	},
}

var deleteDocumentType string

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete all stored records of one document type under a partition",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		key := partitionKey
		if key == "" {
			key = cfg.PartitionKey
		}

		svc, closer, err := buildIngest(cmd.Context(), cfg, false)
		if err != nil {
			return err
		}
		defer closer()

		n, err := svc.DeleteDocuments(cmd.Context(), key, deleteDocumentType)
		if err != nil {
			return err
		}
		log.Printf("deleted %d records", n)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&partitionKey, "partition-key", "", "regulation partition key (defaults to PARTITION_KEY)")

	uploadRulingCmd.Flags().StringVar(&manifestPath, "manifest", "", "path to the JSON document manifest")
	uploadRulingCmd.Flags().StringVar(&title, "title", "", "regulation title for the catalog")
	uploadRulingCmd.Flags().IntVar(&startingCount, "starting-count", 0, "seed for the chunk sequence; zero overwrites a prior run")
	uploadRulingCmd.Flags().BoolVar(&aiSplit, "ai-split", false, "split pages with the chat model instead of the delimiter")
	_ = uploadRulingCmd.MarkFlagRequired("manifest")

	uploadFactSheetCmd.Flags().StringVar(&factSheetLocation, "location", "", "fact sheet PDF path or s3://bucket/key")
	uploadFactSheetCmd.Flags().StringVar(&factSheetName, "name", "Fact Sheet", "document name")
	uploadFactSheetCmd.Flags().StringVar(&factSheetDescription, "description", "", "document description")
	_ = uploadFactSheetCmd.MarkFlagRequired("location")

	deleteCmd.Flags().StringVar(&deleteDocumentType, "document-type", "", "FactSheet or FinalRuling")
	_ = deleteCmd.MarkFlagRequired("document-type")

	stageCmd.Flags().StringVar(&stageLocation, "location", "", "local PDF path to upload")
	stageCmd.Flags().StringVar(&stageKey, "key", "", "object key (defaults to the file name)")
	_ = stageCmd.MarkFlagRequired("location")

	unstageCmd.Flags().StringVar(&unstageKey, "key", "", "object key to remove")
	_ = unstageCmd.MarkFlagRequired("key")

	rootCmd.AddCommand(uploadRulingCmd, uploadFactSheetCmd, deleteCmd, stageCmd, unstageCmd)
}
