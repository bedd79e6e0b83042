package vector

// Vectorizer turns a corpus of texts into one sparse vector per text. Every vector
// returned by a call shares the vocabulary of that call and carries the given generation.
type Vectorizer interface {
	Vectorize(texts []string, generation uint64) []SparseVector
}

// Tokenizer splits text into normalized terms.
type Tokenizer interface {
	Tokens(text string) []string
}
