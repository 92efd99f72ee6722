package milvus

import (
	"context"
	"testing"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"medibot/internal/config"
)

// fakeMilvus embeds the SDK client interface and overrides only the methods
// EnsureCollection and Dim touch. Anything else panics, which is what we want
// in a test.
type fakeMilvus struct {
	client.Client

	hasCollection     bool
	createCollections int
	createIndexes     int
	loads             int
	describeDim       string
}

func (f *fakeMilvus) HasCollection(ctx context.Context, collName string) (bool, error) {
	return f.hasCollection, nil
}

func (f *fakeMilvus) CreateCollection(ctx context.Context, collSchema *entity.Schema, shardsNum int32, opts ...client.CreateCollectionOption) error {
	f.createCollections++
	f.hasCollection = true
	return nil
}

func (f *fakeMilvus) CreateIndex(ctx context.Context, collName string, fieldName string, idx entity.Index, async bool, opts ...client.IndexOption) error {
	f.createIndexes++
	return nil
}

func (f *fakeMilvus) LoadCollection(ctx context.Context, collName string, async bool, opts ...client.LoadCollectionOption) error {
	f.loads++
	return nil
}

func (f *fakeMilvus) DescribeCollection(ctx context.Context, collName string) (*entity.Collection, error) {
	return &entity.Collection{
		Name: collName,
		Schema: &entity.Schema{
			Fields: []*entity.Field{
				{Name: FieldID},
				{Name: FieldEmbedding, TypeParams: map[string]string{entity.TypeParamDim: f.describeDim}},
			},
		},
	}, nil
}

func newTestClient(fake *fakeMilvus) *Client {
	return &Client{
		Client: fake,
		Config: &config.MilvusConfig{
			Address:    "localhost:19530",
			Collection: "medibot",
			Dim:        768,
			Nlist:      128,
		},
	}
}

func TestEnsureCollection_CreatesWhenAbsent(t *testing.T) {
	fake := &fakeMilvus{}
	c := newTestClient(fake)

	if err := c.EnsureCollection(context.Background()); err != nil {
		t.Fatalf("EnsureCollection() error = %v", err)
	}
	if fake.createCollections != 1 {
		t.Errorf("Expected 1 collection creation, got %d", fake.createCollections)
	}
	if fake.createIndexes != 1 {
		t.Errorf("Expected 1 index creation, got %d", fake.createIndexes)
	}
	if fake.loads != 1 {
		t.Errorf("Expected collection to be loaded, got %d loads", fake.loads)
	}
}

func TestEnsureCollection_SecondRunIsNoOp(t *testing.T) {
	fake := &fakeMilvus{}
	c := newTestClient(fake)

	if err := c.EnsureCollection(context.Background()); err != nil {
		t.Fatalf("First EnsureCollection() error = %v", err)
	}
	if err := c.EnsureCollection(context.Background()); err != nil {
		t.Fatalf("Second EnsureCollection() error = %v", err)
	}

	if fake.createCollections != 1 {
		t.Errorf("Second run must not recreate the collection, got %d creations", fake.createCollections)
	}
	if fake.createIndexes != 1 {
		t.Errorf("Second run must not recreate the index, got %d creations", fake.createIndexes)
	}
}

func TestEnsureCollection_ExistingCollectionUntouched(t *testing.T) {
	fake := &fakeMilvus{hasCollection: true}
	c := newTestClient(fake)

	if err := c.EnsureCollection(context.Background()); err != nil {
		t.Fatalf("EnsureCollection() error = %v", err)
	}
	if fake.createCollections != 0 {
		t.Errorf("Existing collection must not be recreated, got %d creations", fake.createCollections)
	}
}

func TestDim(t *testing.T) {
	fake := &fakeMilvus{hasCollection: true, describeDim: "384"}
	c := newTestClient(fake)

	dim, err := c.Dim(context.Background())
	if err != nil {
		t.Fatalf("Dim() error = %v", err)
	}
	if dim != 384 {
		t.Errorf("Expected dim 384, got %d", dim)
	}
}
