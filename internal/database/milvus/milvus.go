package milvus

import (
	"context"
	"fmt"
	"strconv"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"medibot/internal/config"
	"medibot/pkg/logger"
)

// Collection schema field names. The serving path and the ingestion path must
// agree on these, so they live here rather than in either pipeline.
const (
	FieldID        = "id"
	FieldChunk     = "chunk"
	FieldFileName  = "file_name"
	FieldPageLabel = "page_label"
	FieldEmbedding = "embedding"
)

// Client wraps the Milvus SDK client together with its configuration.
// It is constructed once at startup and passed to whoever needs it.
type Client struct {
	Client client.Client
	Config *config.MilvusConfig

	log *logger.Logger
}

// NewClient connects to Milvus at the configured address. An API key may be
// passed for managed deployments; it is ignored when empty.
func NewClient(ctx context.Context, cfg *config.MilvusConfig, apiKey string, log *logger.Logger) (*Client, error) {
	c, err := client.NewClient(ctx, client.Config{
		Address: cfg.Address,
		APIKey:  apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Milvus at %s: %w", cfg.Address, err)
	}
	return &Client{Client: c, Config: cfg, log: log}, nil
}

// Close safely shuts down the Milvus connection.
func (c *Client) Close() {
	if c.Client != nil {
		c.Client.Close()
	}
}

// HealthCheck verifies that the Milvus connection is usable.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.Client == nil {
		return fmt.Errorf("milvus client is nil")
	}
	if _, err := c.Client.ListCollections(ctx); err != nil {
		return fmt.Errorf("milvus health check failed: %w", err)
	}
	return nil
}

// EnsureCollection creates the chunk collection and its vector index if they
// do not exist yet, then loads the collection for searching. Running it
// against an existing collection of the same name is a no-op apart from the
// load, which makes the index build idempotent at the collection-name level.
func (c *Client) EnsureCollection(ctx context.Context) error {
	collName := c.Config.Collection

	exists, err := c.Client.HasCollection(ctx, collName)
	if err != nil {
		return fmt.Errorf("failed to check for collection %s: %w", collName, err)
	}

	if exists {
		c.logf("collection '%s' already exists, skipping creation", collName)
	} else {
		schema := entity.NewSchema().
			WithName(collName).
			WithDescription("document chunks with embeddings").
			WithField(entity.NewField().WithName(FieldID).WithDataType(entity.FieldTypeVarChar).WithMaxLength(64).WithIsPrimaryKey(true)).
			WithField(entity.NewField().WithName(FieldChunk).WithDataType(entity.FieldTypeVarChar).WithMaxLength(65535)).
			WithField(entity.NewField().WithName(FieldFileName).WithDataType(entity.FieldTypeVarChar).WithMaxLength(512)).
			WithField(entity.NewField().WithName(FieldPageLabel).WithDataType(entity.FieldTypeVarChar).WithMaxLength(64)).
			WithField(entity.NewField().WithName(FieldEmbedding).WithDataType(entity.FieldTypeFloatVector).WithDim(int64(c.Config.Dim)))

		if err := c.Client.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
			return fmt.Errorf("failed to create collection %s: %w", collName, err)
		}

		idx, err := entity.NewIndexIvfFlat(entity.COSINE, c.Config.Nlist)
		if err != nil {
			return fmt.Errorf("failed to build index definition: %w", err)
		}
		if err := c.Client.CreateIndex(ctx, collName, FieldEmbedding, idx, false); err != nil {
			return fmt.Errorf("failed to create index on %s: %w", FieldEmbedding, err)
		}
		c.logf("created collection '%s' (dim=%d, metric=COSINE)", collName, c.Config.Dim)
	}

	if err := c.Client.LoadCollection(ctx, collName, false); err != nil {
		return fmt.Errorf("failed to load collection %s: %w", collName, err)
	}
	return nil
}

// Dim reads the embedding dimension back from the live collection schema.
// A mismatch with the configured dimension means the index was built with a
// different embedding model and the service cannot answer queries.
func (c *Client) Dim(ctx context.Context) (int, error) {
	coll, err := c.Client.DescribeCollection(ctx, c.Config.Collection)
	if err != nil {
		return 0, fmt.Errorf("failed to describe collection %s: %w", c.Config.Collection, err)
	}
	for _, field := range coll.Schema.Fields {
		if field.Name != FieldEmbedding {
			continue
		}
		dimStr, ok := field.TypeParams[entity.TypeParamDim]
		if !ok {
			return 0, fmt.Errorf("field %s has no dim parameter", FieldEmbedding)
		}
		dim, err := strconv.Atoi(dimStr)
		if err != nil {
			return 0, fmt.Errorf("field %s has invalid dim parameter %q: %w", FieldEmbedding, dimStr, err)
		}
		return dim, nil
	}
	return 0, fmt.Errorf("collection %s has no %s field", c.Config.Collection, FieldEmbedding)
}

func (c *Client) logf(format string, args ...interface{}) {
	if c.log != nil {
		c.log.Info(fmt.Sprintf(format, args...))
	}
}
