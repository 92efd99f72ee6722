package vectorstore

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"medibot/internal/database/milvus"
	"medibot/internal/rag/interfaces"
	"medibot/internal/rag/schema"
	"medibot/pkg/logger"
)

// MilvusStore is an adapter for the Milvus client to implement the
// VectorStore interface against the chunk collection.
type MilvusStore struct {
	log        *logger.Logger
	client     client.Client
	collection string
}

// NewMilvusStore creates a new MilvusStore adapter over the shared Milvus
// client wrapper.
func NewMilvusStore(milvusClient *milvus.Client, log *logger.Logger) (interfaces.VectorStore, error) {
	if milvusClient == nil || milvusClient.Client == nil {
		return nil, fmt.Errorf("milvus client is not initialized")
	}
	return &MilvusStore{
		log:        log,
		client:     milvusClient.Client,
		collection: milvusClient.Config.Collection,
	}, nil
}

// Add inserts a list of documents into the Milvus collection. Embeddings and
// source metadata are stored in separate columns alongside the chunk text.
func (s *MilvusStore) Add(ctx context.Context, docs []*schema.Document) error {
	if len(docs) == 0 {
		return nil
	}

	ids := make([]string, len(docs))
	chunks := make([]string, len(docs))
	fileNames := make([]string, len(docs))
	pageLabels := make([]string, len(docs))
	embeddings := make([][]float32, len(docs))

	dim := 0
	for i, doc := range docs {
		ids[i] = doc.ID
		chunks[i] = doc.Text
		embeddings[i] = doc.Embedding
		if len(doc.Embedding) > dim {
			dim = len(doc.Embedding)
		}
		if name, ok := doc.Metadata[schema.MetadataKeyFileName].(string); ok {
			fileNames[i] = name
		}
		if page, ok := doc.Metadata[schema.MetadataKeyPageLabel].(string); ok {
			pageLabels[i] = page
		}
	}

	idCol := entity.NewColumnVarChar(milvus.FieldID, ids)
	chunkCol := entity.NewColumnVarChar(milvus.FieldChunk, chunks)
	fileNameCol := entity.NewColumnVarChar(milvus.FieldFileName, fileNames)
	pageLabelCol := entity.NewColumnVarChar(milvus.FieldPageLabel, pageLabels)
	embeddingCol := entity.NewColumnFloatVector(milvus.FieldEmbedding, dim, embeddings)

	s.log.Info(fmt.Sprintf("Inserting %d documents into Milvus collection: %s", len(docs), s.collection))
	_, err := s.client.Insert(ctx, s.collection, "" /* default partition */, idCol, chunkCol, fileNameCol, pageLabelCol, embeddingCol)
	if err != nil {
		s.log.Error(fmt.Sprintf("Failed to insert data into Milvus: %v", err))
		return fmt.Errorf("failed to insert data into Milvus: %w", err)
	}

	return nil
}

// Query performs a cosine-similarity search and returns the matching chunks
// in the order Milvus ranks them, highest similarity first. The score of each
// hit is stored in the document metadata.
func (s *MilvusStore) Query(ctx context.Context, embedding []float32, topK int) ([]*schema.Document, error) {
	searchParams, _ := entity.NewIndexIvfFlatSearchParam(10)
	outputFields := []string{milvus.FieldID, milvus.FieldChunk, milvus.FieldFileName, milvus.FieldPageLabel}

	searchResults, err := s.client.Search(
		ctx, s.collection, []string{}, "", outputFields,
		[]entity.Vector{entity.FloatVector(embedding)},
		milvus.FieldEmbedding, entity.COSINE, topK, searchParams,
	)
	if err != nil {
		s.log.Error(fmt.Sprintf("Failed to search in Milvus: %v", err))
		return nil, fmt.Errorf("failed to search in Milvus: %w", err)
	}

	var results []*schema.Document
	for _, res := range searchResults {
		findColumn := func(name string) entity.Column {
			for _, field := range res.Fields {
				if field.Name() == name {
					return field
				}
			}
			return nil
		}

		idCol, ok := findColumn(milvus.FieldID).(*entity.ColumnVarChar)
		if !ok {
			s.log.Warn("Search result is missing ID field or has wrong type, skipping.")
			continue
		}
		idData := idCol.Data()

		var chunkData, fileNameData, pageLabelData []string
		if chunkCol, ok := findColumn(milvus.FieldChunk).(*entity.ColumnVarChar); ok {
			chunkData = chunkCol.Data()
		}
		if fileNameCol, ok := findColumn(milvus.FieldFileName).(*entity.ColumnVarChar); ok {
			fileNameData = fileNameCol.Data()
		}
		if pageLabelCol, ok := findColumn(milvus.FieldPageLabel).(*entity.ColumnVarChar); ok {
			pageLabelData = pageLabelCol.Data()
		}

		for i := 0; i < res.ResultCount; i++ {
			doc := &schema.Document{
				ID:       idData[i],
				Metadata: map[string]interface{}{schema.MetadataKeyScore: res.Scores[i]},
			}
			if chunkData != nil {
				doc.Text = chunkData[i]
			}
			if fileNameData != nil {
				doc.Metadata[schema.MetadataKeyFileName] = fileNameData[i]
			}
			if pageLabelData != nil {
				doc.Metadata[schema.MetadataKeyPageLabel] = pageLabelData[i]
			}
			results = append(results, doc)
		}
	}

	return results, nil
}

// compile-time check to ensure MilvusStore implements the VectorStore interface
var _ interfaces.VectorStore = (*MilvusStore)(nil)
