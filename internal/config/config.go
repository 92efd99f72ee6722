package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"` // HTTP listen port
}

// MilvusConfig holds the connection and collection settings for the vector index.
type MilvusConfig struct {
	Address    string `yaml:"address"`    // Milvus service address, e.g. "localhost:19530"
	Collection string `yaml:"collection"` // collection name the chunks live in
	Dim        int    `yaml:"dim"`        // embedding dimension of the collection
	Nlist      int    `yaml:"nlist"`      // IVF_FLAT nlist used when the collection is created
}

// EmbeddingConfig selects the embedding model used at both ingestion and query time.
type EmbeddingConfig struct {
	Model string `yaml:"model"` // GenAI embedding model name
}

// RetrievalConfig controls the similarity search.
type RetrievalConfig struct {
	TopK        int `yaml:"topK"`        // number of passages fetched per query
	TimeoutSecs int `yaml:"timeoutSecs"` // budget for embed + search, in seconds
}

// GenerationConfig controls the answer-generation call.
type GenerationConfig struct {
	Model            string `yaml:"model"`            // chat model name
	BaseURL          string `yaml:"baseURL"`          // OpenAI-compatible API endpoint
	TimeoutSecs      int    `yaml:"timeoutSecs"`      // budget for the generation call, in seconds
	MaxContextTokens int    `yaml:"maxContextTokens"` // token budget for retrieved context in the prompt
}

// IngestionConfig controls the one-time index build.
type IngestionConfig struct {
	DataDir      string `yaml:"dataDir"`      // directory walked for .pdf/.txt files
	ChunkSize    int    `yaml:"chunkSize"`    // splitter chunk size in tokens
	ChunkOverlap int    `yaml:"chunkOverlap"` // splitter overlap in tokens
	BatchSize    int    `yaml:"batchSize"`    // chunks embedded per batch call
}

// AppConfig is the root configuration for the service.
type AppConfig struct {
	Server     ServerConfig     `yaml:"server"`
	Milvus     MilvusConfig     `yaml:"milvus"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Generation GenerationConfig `yaml:"generation"`
	Ingestion  IngestionConfig  `yaml:"ingestion"`
}

// LoadConfig reads a yaml configuration file and applies defaults for any
// value left unset.
func LoadConfig(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a configuration with every value at its default. Used when
// no config file is present.
func Default() *AppConfig {
	cfg := &AppConfig{}
	cfg.applyDefaults()
	return cfg
}

func (c *AppConfig) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Milvus.Address == "" {
		c.Milvus.Address = "localhost:19530"
	}
	if c.Milvus.Collection == "" {
		c.Milvus.Collection = "medibot"
	}
	if c.Milvus.Dim == 0 {
		c.Milvus.Dim = 768
	}
	if c.Milvus.Nlist == 0 {
		c.Milvus.Nlist = 128
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-004"
	}
	if c.Retrieval.TopK == 0 {
		c.Retrieval.TopK = 5
	}
	if c.Retrieval.TimeoutSecs == 0 {
		c.Retrieval.TimeoutSecs = 15
	}
	if c.Generation.Model == "" {
		c.Generation.Model = "llama-3.3-70b-versatile"
	}
	if c.Generation.BaseURL == "" {
		c.Generation.BaseURL = "https://api.groq.com/openai/v1"
	}
	if c.Generation.TimeoutSecs == 0 {
		c.Generation.TimeoutSecs = 60
	}
	if c.Generation.MaxContextTokens == 0 {
		c.Generation.MaxContextTokens = 3072
	}
	if c.Ingestion.DataDir == "" {
		c.Ingestion.DataDir = "data"
	}
	if c.Ingestion.ChunkSize == 0 {
		c.Ingestion.ChunkSize = 1024
	}
	if c.Ingestion.ChunkOverlap == 0 {
		c.Ingestion.ChunkOverlap = 200
	}
	if c.Ingestion.BatchSize == 0 {
		c.Ingestion.BatchSize = 64
	}
}
