package pipeline

// RetrievalError marks a failure to embed the query or search the vector
// index. The boundary maps it to a retrieval error response.
type RetrievalError struct {
	Err error
}

func (e *RetrievalError) Error() string {
	return "retrieval error: " + e.Err.Error()
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// GenerationError marks a failure to invoke the generation model.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return "generation error: " + e.Err.Error()
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
