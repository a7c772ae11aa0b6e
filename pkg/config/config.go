package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	GigaChat GigaChatConfig
	OpenAI   OpenAIConfig
	RAG      RAGConfig
	Dataset  DatasetConfig
	Logger   LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type AuthConfig struct {
	SecretKey string
	TokenTTL  time.Duration
}

type GigaChatConfig struct {
	APIKey             string
	Scope              string
	Model              string
	Temperature        float64
	InsecureSkipVerify bool
}

type OpenAIConfig struct {
	APIKey         string
	EmbeddingModel string
	Dimensions     int
}

type RAGConfig struct {
	TopK            int
	MaxRetries      int
	ContextLimit    int
	HistoryWindow   int
	GenerateTimeout time.Duration
}

type DatasetConfig struct {
	SourceDir string
	OutputDir string
	ChunkSize int
	Overlap   int
}

func Load() (*Config, error) {
	// .env is optional; environment variables win (Docker/K8s deployments).
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	tokenTTL, _ := strconv.Atoi(getEnv("AUTH_TOKEN_TTL_HOURS", "24"))
	temperature, _ := strconv.ParseFloat(getEnv("GIGACHAT_TEMPERATURE", "0.5"), 64)
	dimensions, _ := strconv.Atoi(getEnv("OPENAI_EMBEDDING_DIMENSIONS", "1536"))
	topK, _ := strconv.Atoi(getEnv("RAG_TOP_K", "10"))
	maxRetries, _ := strconv.Atoi(getEnv("RAG_MAX_RETRIES", "5"))
	contextLimit, _ := strconv.Atoi(getEnv("RAG_CONTEXT_LIMIT", "8192"))
	historyWindow, _ := strconv.Atoi(getEnv("RAG_HISTORY_WINDOW", "5"))
	generateTimeout, _ := strconv.Atoi(getEnv("RAG_GENERATE_TIMEOUT", "120"))
	chunkSize, _ := strconv.Atoi(getEnv("DATASET_CHUNK_SIZE", "1000"))
	overlap, _ := strconv.Atoi(getEnv("DATASET_OVERLAP", "200"))
	insecureSkipVerify := getEnv("GIGACHAT_INSECURE_SKIP_VERIFY", "true") == "true"

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "podatkobot"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Auth: AuthConfig{
			SecretKey: getEnv("AUTH_SECRET_KEY", "change-me-in-production"),
			TokenTTL:  time.Duration(tokenTTL) * time.Hour,
		},
		GigaChat: GigaChatConfig{
			APIKey:             getEnv("GIGACHAT_API_KEY", ""),
			Scope:              getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
			Model:              getEnv("GIGACHAT_MODEL", "GigaChat"),
			Temperature:        temperature,
			InsecureSkipVerify: insecureSkipVerify,
		},
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			EmbeddingModel: getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
			Dimensions:     dimensions,
		},
		RAG: RAGConfig{
			TopK:            topK,
			MaxRetries:      maxRetries,
			ContextLimit:    contextLimit,
			HistoryWindow:   historyWindow,
			GenerateTimeout: time.Duration(generateTimeout) * time.Second,
		},
		Dataset: DatasetConfig{
			SourceDir: getEnv("DATASET_SOURCE_DIR", "data"),
			OutputDir: getEnv("DATASET_OUTPUT_DIR", "dataset"),
			ChunkSize: chunkSize,
			Overlap:   overlap,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
