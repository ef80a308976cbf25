package rag

// Source is one retrieved passage cited alongside an answer.
type Source struct {
	// DocumentID identifies the source document.
	DocumentID string `json:"document_id"`
	// DocumentName is the document's display name (original filename).
	DocumentName string `json:"document_name"`
	// Snippet is a short excerpt of the matched text for display.
	Snippet string `json:"snippet"`
}

// QueryResult is the answer to one question plus its cited sources.
// It is transient and never persisted.
type QueryResult struct {
	// Answer is the generated (or extractive fallback) answer text.
	Answer string `json:"answer"`
	// Sources are the passages the answer was drawn from, best first.
	Sources []Source `json:"sources"`
}
