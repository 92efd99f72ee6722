package schema

const (
	// MetadataKeyFileName is the key for the source file name.
	MetadataKeyFileName = "file_name"
	// MetadataKeyPageLabel is the key for the page number or label from the source document.
	MetadataKeyPageLabel = "page_label"
	// MetadataKeyScore is the key under which the similarity score of a
	// retrieved document is stored.
	MetadataKeyScore = "score"
)

// Document is the central data structure representing a piece of text and its
// associated data. It is the primary data carrier throughout the RAG pipeline:
// a chunk at ingestion time, a retrieved passage at query time.
type Document struct {
	// ID is the unique identifier for this document chunk.
	ID string

	// Text is the string content of the document chunk.
	Text string

	// Embedding is the vector representation of the text.
	Embedding []float32

	// Metadata holds arbitrary data about the document, such as file_name,
	// page_label and the similarity score of a retrieval hit.
	Metadata map[string]interface{}
}

// Role identifies the author of a prompt message.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message is a single turn of a chat prompt.
type Message struct {
	Role    Role
	Content string
}

// Prompt is an ordered sequence of messages sent to the generation model.
// It is built fresh for every request and never reused.
type Prompt []Message

// Output is the normalized result of a generation call. Models behind an
// OpenAI-compatible endpoint usually reply with plain text, but a chain that
// was asked for JSON replies with an object; the adapter at the LLM boundary
// decodes that case into Fields so the extractor never has to inspect types.
type Output struct {
	// Fields is non-nil when the model returned a JSON object; values are
	// stringified.
	Fields map[string]string

	// Text carries the raw reply when Fields is nil.
	Text string
}
