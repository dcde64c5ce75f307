package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config carries every tunable the service and indexer need. It is built once
// at startup and passed into constructors; nothing reads the environment after
// LoadConfig returns.
type Config struct {
	DatabaseURL  string
	SslCertPath  string
	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	BucketName   string

	AIAPIKey   string
	EmbedModel string
	ChatModel  string

	// Ingestion knobs. ChunkSize and OverlapSize are unit counts, not
	// characters. SpoolingSize bounds how many sealed chunks buffer before a
	// forced overlap-and-upload pass.
	PartitionKey      string
	ChunkSize         int
	OverlapSize       int
	SpoolingSize      int
	ChunkingCharacter string
	JoiningCharacter  string

	// Query-time knobs.
	SearchTopK          int
	FactSheetPageLimit  int
	ConversationContext int

	JWTSecret string
	Port      string
}

// LoadConfig loads the environment variables and returns the config.
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		SslCertPath:  getEnv("SSL_CERT_PATH", ""),
		AwsAccessKey: getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey: getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:    getEnv("AWS_REGION", "us-east-2"),
		BucketName:   getEnv("BUCKET_NAME", "regulation-documents"),

		AIAPIKey:   getEnv("GEMINI_API_KEY", ""),
		EmbedModel: getEnv("EMBED_MODEL", "text-embedding-004"),
		ChatModel:  getEnv("CHAT_MODEL", "gemini-1.5-flash"),

		PartitionKey:      getEnv("PARTITION_KEY", ""),
		ChunkSize:         getEnvInt("CHUNK_SIZE", 30),
		OverlapSize:       getEnvInt("OVERLAP_SIZE", 5),
		SpoolingSize:      getEnvInt("SPOOLING_SIZE", 50),
		ChunkingCharacter: getEnv("CHUNKING_CHARACTER", ". "),
		JoiningCharacter:  getEnv("JOINING_CHARACTER", ""),

		SearchTopK:          getEnvInt("SEARCH_TOP_K", 10),
		FactSheetPageLimit:  getEnvInt("FACT_SHEET_PAGE_LIMIT", 15),
		ConversationContext: getEnvInt("CONVERSATION_CONTEXT", 7),

		JWTSecret: getEnv("JWT_SECRET", ""),
		Port:      getEnv("PORT", "8080"),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}
